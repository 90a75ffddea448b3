// Package postdetail implements the post detail view: loading a thread with
// its author and replies, composing and submitting a reply, and reflecting
// the session's like registry.
//
// A View is bound to one thread id for its whole life. Visiting another id
// means building a new View; a response still in flight for the old one can
// only ever land in the old, detached View.
package postdetail

import (
	"context"
	"sync"

	"github.com/circle-dev/circle/frontend/internal/likes"
	"github.com/circle-dev/circle/shared/api"
	"github.com/circle-dev/circle/shared/domain"
	internal_errors "github.com/circle-dev/circle/shared/errors"
	"github.com/circle-dev/circle/shared/logger"
	"github.com/looplab/fsm"
)

// API is the subset of the feed API the view consumes.
type API interface {
	GetUsers(ctx context.Context) ([]domain.User, error)
	GetThread(ctx context.Context, threadId domain.ThreadId) (*domain.Thread, error)
	GetReplies(ctx context.Context, threadId domain.ThreadId) ([]domain.Reply, error)
	CreateReply(ctx context.Context, threadId domain.ThreadId, data api.CreateReplyRequest) (*domain.Reply, error)
}

type LikeRegistry interface {
	Get(threadId domain.ThreadId) likes.Entry
	Toggle(threadId domain.ThreadId) likes.Entry
}

// Identity yields the persisted current-user id, if any.
type Identity interface {
	CurrentUserId() (domain.UserId, bool)
}

// UserId is an Identity backed by a plain id; zero means nobody is signed in.
type UserId domain.UserId

func (id UserId) CurrentUserId() (domain.UserId, bool) {
	return domain.UserId(id), id != 0
}

type Options struct {
	MaxImageSizeBytes int64
}

// View operations are serialized: at most one runs at a time per view,
// network calls included.
type View struct {
	mu sync.Mutex

	threadId domain.ThreadId
	api      API
	likes    LikeRegistry
	opts     Options

	state *fsm.FSM
	err   *Error

	users    []domain.User
	thread   domain.Thread
	author   domain.User
	replies  Replies
	composer *Composer
}

func New(threadId domain.ThreadId, feed API, likes LikeRegistry, opts Options) *View {
	return &View{
		threadId: threadId,
		api:      feed,
		likes:    likes,
		opts:     opts,
		state:    newViewState(threadId),
		composer: newComposer(),
	}
}

func (v *View) ThreadId() domain.ThreadId {
	return v.threadId
}

// State does not wait for a running operation; the fsm guards its own state.
func (v *View) State() string {
	return v.state.Current()
}

// Load runs the fetch sequence once. Later calls return the outcome of the first.
func (v *View) Load(ctx context.Context, id Identity) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.state.Is(StateLoading) {
		if v.err != nil {
			return v.err
		}
		return nil
	}

	if err := v.load(ctx, id); err != nil {
		v.err = err
		_ = v.state.Event(ctx, eventFail)
		logger.Log.Warn("post view failed to load",
			"component", "postdetail",
			"thread_id", v.threadId,
			"kind", err.Kind.String(),
			"error", err)
		return err
	}

	_ = v.state.Event(ctx, eventLoaded)
	return nil
}

func (v *View) load(ctx context.Context, id Identity) *Error {
	if _, ok := id.CurrentUserId(); !ok {
		return ErrUnauthenticated
	}

	users, err := v.api.GetUsers(ctx)
	if err != nil {
		return fetchFailed(err)
	}
	v.users = users

	thread, err := v.api.GetThread(ctx, v.threadId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return wrap(ErrThreadNotFound, err)
		}
		return fetchFailed(err)
	}
	if thread == nil || thread.UserId == 0 {
		return ErrThreadNotFound
	}
	v.thread = *thread

	author, ok := domain.FindUser(users, thread.UserId)
	if !ok {
		return ErrAuthorNotFound
	}
	v.author = author

	replies, err := v.api.GetReplies(ctx, v.threadId)
	if err != nil {
		return fetchFailed(err)
	}
	v.replies = NewReplies(replies)
	return nil
}

// SetDraftText replaces the composer text.
func (v *View) SetDraftText(ctx context.Context, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.state.Is(StateReady) {
		return ErrNotReady
	}
	v.composer.setText(ctx, text)
	return nil
}

// AttachImage validates u and makes it the pending image. A rejected file
// leaves the previous pending image in place.
func (v *View) AttachImage(ctx context.Context, u Upload) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.state.Is(StateReady) {
		return ErrNotReady
	}

	a, err := NewAttachment(u, v.opts.MaxImageSizeBytes)
	if err != nil {
		e, ok := err.(*Error)
		if !ok {
			e = &Error{Kind: KindValidationFailure, Message: msgUnreadableImage, Err: err}
		}
		v.composer.fail(e)
		return e
	}
	v.composer.attach(ctx, a)
	return nil
}

func (v *View) DiscardImage(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.state.Is(StateReady) {
		return ErrNotReady
	}
	v.composer.discardImage(ctx)
	return nil
}

// Submit posts the draft as a new reply. An empty draft is a no-op and
// returns (nil, nil). On failure the draft is kept for a retry.
func (v *View) Submit(ctx context.Context, id Identity) (*domain.Reply, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.state.Is(StateReady) {
		return nil, ErrNotReady
	}
	if v.composer.Empty() {
		return nil, nil
	}

	userId, _ := id.CurrentUserId()
	user, ok := domain.FindUser(v.users, userId)
	if !ok || userId == 0 {
		v.composer.fail(ErrUserNotFound)
		return nil, ErrUserNotFound
	}

	reply, err := v.api.CreateReply(ctx, v.threadId, api.CreateReplyRequest{
		Content: v.composer.text,
		UserId:  user.Id,
		User:    user.FullName,
		FileUrl: v.composer.imageRef(),
	})
	if err != nil {
		e := submitFailed(err)
		v.composer.fail(e)
		logger.Log.Warn("reply submission failed",
			"component", "postdetail",
			"thread_id", v.threadId,
			"user_id", user.Id,
			"error", err)
		return nil, e
	}

	v.replies.Append(*reply)
	v.composer.clear(ctx)
	return reply, nil
}

// ToggleLike flips the like state of this view's thread in the shared registry.
func (v *View) ToggleLike() likes.Entry {
	return v.likes.Toggle(v.threadId)
}

// Snapshot is a read-only copy of the view for rendering.
type Snapshot struct {
	ThreadId domain.ThreadId
	State    string
	Err      *Error // load failure, set in StateError only
	Thread   domain.Thread
	Author   domain.User
	Users    []domain.User
	Replies  []domain.Reply
	Like     likes.Entry
	Draft    Draft
}

type Draft struct {
	Text  string
	Image *Attachment
	State string
	Err   *Error
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	users := make([]domain.User, len(v.users))
	copy(users, v.users)

	return Snapshot{
		ThreadId: v.threadId,
		State:    v.state.Current(),
		Err:      v.err,
		Thread:   v.thread,
		Author:   v.author,
		Users:    users,
		Replies:  v.replies.Items(),
		Like:     v.likes.Get(v.threadId),
		Draft: Draft{
			Text:  v.composer.text,
			Image: v.composer.image,
			State: v.composer.state.Current(),
			Err:   v.composer.err,
		},
	}
}
