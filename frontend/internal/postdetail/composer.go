package postdetail

import (
	"context"
	"strings"

	"github.com/looplab/fsm"
)

// Composer is the reply draft: free text plus at most one pending image.
type Composer struct {
	text  string
	image *Attachment
	err   *Error
	state *fsm.FSM
}

func newComposer() *Composer {
	return &Composer{state: newComposerState()}
}

// Empty reports whether submitting would be a no-op.
func (c *Composer) Empty() bool {
	return strings.TrimSpace(c.text) == "" && c.image == nil
}

// setText replaces the draft text. An edited text drops the last error;
// resaving the same text keeps it.
func (c *Composer) setText(ctx context.Context, text string) {
	if text != c.text {
		c.err = nil
	}
	c.text = text
	c.sync(ctx)
}

func (c *Composer) attach(ctx context.Context, a *Attachment) {
	c.image = a
	c.err = nil
	c.sync(ctx)
}

func (c *Composer) discardImage(ctx context.Context) {
	c.image = nil
	c.err = nil
	c.sync(ctx)
}

func (c *Composer) clear(ctx context.Context) {
	c.text = ""
	c.image = nil
	c.err = nil
	c.sync(ctx)
}

// fail records err without touching the draft, so the user can retry.
func (c *Composer) fail(err *Error) {
	c.err = err
}

func (c *Composer) imageRef() *string {
	if c.image == nil {
		return nil
	}
	ref := c.image.DataURL
	return &ref
}

func (c *Composer) sync(ctx context.Context) {
	want, event := ComposerHasDraft, eventDraft
	if c.Empty() {
		want, event = ComposerIdle, eventReset
	}
	if c.state.Current() != want {
		_ = c.state.Event(ctx, event)
	}
}
