package postdetail

import (
	"context"

	"github.com/circle-dev/circle/shared/logger"
	"github.com/looplab/fsm"
)

// View states. error is terminal for the page visit.
const (
	StateLoading = "loading"
	StateReady   = "ready"
	StateError   = "error"

	eventLoaded = "loaded"
	eventFail   = "fail"
)

// Composer states.
const (
	ComposerIdle     = "idle"
	ComposerHasDraft = "hasDraft"

	eventDraft = "draft"
	eventReset = "reset"
)

func newViewState(threadId int64) *fsm.FSM {
	return fsm.NewFSM(
		StateLoading,
		fsm.Events{
			{Name: eventLoaded, Src: []string{StateLoading}, Dst: StateReady},
			{Name: eventFail, Src: []string{StateLoading}, Dst: StateError},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Log.Debug("post view state changed",
					"component", "postdetail",
					"thread_id", threadId,
					"from", e.Src,
					"to", e.Dst)
			},
		},
	)
}

func newComposerState() *fsm.FSM {
	return fsm.NewFSM(
		ComposerIdle,
		fsm.Events{
			{Name: eventDraft, Src: []string{ComposerIdle}, Dst: ComposerHasDraft},
			{Name: eventReset, Src: []string{ComposerHasDraft}, Dst: ComposerIdle},
		},
		fsm.Callbacks{},
	)
}
