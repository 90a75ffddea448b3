package postdetail_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/circle-dev/circle/frontend/internal/apiclient"
	"github.com/circle-dev/circle/frontend/internal/apiclient/apitest"
	"github.com/circle-dev/circle/frontend/internal/likes"
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/circle-dev/circle/shared/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*apitest.Server, *apiclient.APIClient) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)
	srv.Users = []api.User{
		{Id: 7, FullName: "Ann Lee", Username: "ann"},
		{Id: 9, FullName: "Bob Stone", Username: "bob"},
	}
	return srv, apiclient.New(srv.URL, 2*time.Second)
}

func readyView(t *testing.T, srv *apitest.Server, client *apiclient.APIClient, registry *likes.Registry) *postdetail.View {
	t.Helper()
	srv.AddThread(42, 7, "hi")
	v := postdetail.New(42, client, registry, postdetail.Options{})
	require.NoError(t, v.Load(context.Background(), postdetail.UserId(9)))
	require.Equal(t, postdetail.StateReady, v.State())
	return v
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("thread with author and no replies", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		require.NoError(t, v.Load(ctx, postdetail.UserId(9)))

		snap := v.Snapshot()
		assert.Equal(t, postdetail.StateReady, snap.State)
		assert.Nil(t, snap.Err)
		assert.Equal(t, "hi", snap.Thread.Content)
		assert.Equal(t, "Ann Lee", snap.Author.FullName)
		assert.Empty(t, snap.Replies)
		assert.NotNil(t, snap.Replies)
		assert.Equal(t, 0, snap.Like.Count)
		assert.Equal(t, []string{
			"GET /users",
			"GET /threads/42",
			"GET /threads/42/replies",
		}, srv.RequestLog())
	})

	t.Run("unauthenticated issues no requests", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		err := v.Load(ctx, postdetail.UserId(0))

		require.ErrorIs(t, err, postdetail.ErrUnauthenticated)
		assert.Equal(t, postdetail.StateError, v.State())
		assert.Empty(t, srv.RequestLog())
	})

	t.Run("missing thread", func(t *testing.T) {
		srv, client := setup(t)
		v := postdetail.New(5, client, likes.NewRegistry(), postdetail.Options{})

		err := v.Load(ctx, postdetail.UserId(9))

		require.ErrorIs(t, err, postdetail.ErrThreadNotFound)
		assert.Equal(t, postdetail.KindNotFound, postdetail.KindOf(err))
		assert.NotContains(t, srv.RequestLog(), "GET /threads/5/replies")
	})

	t.Run("thread without author reference", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 0, "orphan")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		err := v.Load(ctx, postdetail.UserId(9))
		require.ErrorIs(t, err, postdetail.ErrThreadNotFound)
	})

	t.Run("author absent from listing", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 99, "hi")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		err := v.Load(ctx, postdetail.UserId(9))

		require.ErrorIs(t, err, postdetail.ErrAuthorNotFound)
		assert.Equal(t, postdetail.StateError, v.State())
		assert.Equal(t, []string{"GET /users", "GET /threads/42"}, srv.RequestLog())
	})

	t.Run("replies request fails", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		srv.Fail("GET", "/threads/42/replies")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		err := v.Load(ctx, postdetail.UserId(9))

		assert.Equal(t, postdetail.KindFetchFailure, postdetail.KindOf(err))
		assert.Equal(t, postdetail.StateError, v.Snapshot().State)
	})

	t.Run("missing replies field reads as empty", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		srv.OmitReplies = true
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		require.NoError(t, v.Load(ctx, postdetail.UserId(9)))
		assert.Empty(t, v.Snapshot().Replies)
	})

	t.Run("replies keep server order", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		srv.Replies[42] = []api.Reply{
			{Id: 2, ThreadId: 42, Content: "second"},
			{Id: 1, ThreadId: 42, Content: "first"},
		}
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		require.NoError(t, v.Load(ctx, postdetail.UserId(9)))
		replies := v.Snapshot().Replies
		require.Len(t, replies, 2)
		assert.Equal(t, "second", replies[0].Content)
		assert.Equal(t, "first", replies[1].Content)
	})

	t.Run("second load is a no-op", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		require.NoError(t, v.Load(ctx, postdetail.UserId(9)))
		require.NoError(t, v.Load(ctx, postdetail.UserId(9)))
		assert.Len(t, srv.RequestLog(), 3)
	})

	t.Run("failed load stays failed", func(t *testing.T) {
		srv, client := setup(t)
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

		first := v.Load(ctx, postdetail.UserId(9))
		srv.AddThread(42, 7, "hi")
		second := v.Load(ctx, postdetail.UserId(9))

		assert.Same(t, first, second)
		assert.Equal(t, postdetail.StateError, v.State())
	})
}

func TestOperationsBeforeReady(t *testing.T) {
	ctx := context.Background()
	_, client := setup(t)
	v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})

	assert.ErrorIs(t, v.SetDraftText(ctx, "x"), postdetail.ErrNotReady)
	assert.ErrorIs(t, v.DiscardImage(ctx), postdetail.ErrNotReady)
	_, err := v.Submit(ctx, postdetail.UserId(9))
	assert.ErrorIs(t, err, postdetail.ErrNotReady)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("whitespace draft is a no-op", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		require.NoError(t, v.SetDraftText(ctx, "   \n\t"))
		reply, err := v.Submit(ctx, postdetail.UserId(9))

		require.NoError(t, err)
		assert.Nil(t, reply)
		assert.Empty(t, srv.PostedReplies())
		assert.Empty(t, v.Snapshot().Replies)
		assert.Equal(t, postdetail.ComposerIdle, v.Snapshot().Draft.State)
	})

	t.Run("success appends one reply and clears the draft", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		require.NoError(t, v.SetDraftText(ctx, "nice post"))
		assert.Equal(t, postdetail.ComposerHasDraft, v.Snapshot().Draft.State)

		reply, err := v.Submit(ctx, postdetail.UserId(9))
		require.NoError(t, err)
		require.NotNil(t, reply)

		posted := srv.PostedReplies()
		require.Len(t, posted, 1)
		assert.Equal(t, "nice post", posted[0].Content)
		assert.Equal(t, int64(9), posted[0].UserId)
		assert.Equal(t, "Bob Stone", posted[0].User)
		assert.Nil(t, posted[0].FileUrl)

		snap := v.Snapshot()
		require.Len(t, snap.Replies, 1)
		assert.Equal(t, reply.Id, snap.Replies[0].Id)
		assert.Equal(t, "Bob Stone", snap.Replies[0].Author.FullName)
		assert.Equal(t, "", snap.Draft.Text)
		assert.Nil(t, snap.Draft.Image)
		assert.Nil(t, snap.Draft.Err)
		assert.Equal(t, postdetail.ComposerIdle, snap.Draft.State)
	})

	t.Run("content is sent verbatim", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		require.NoError(t, v.SetDraftText(ctx, "  padded  "))
		_, err := v.Submit(ctx, postdetail.UserId(9))
		require.NoError(t, err)
		assert.Equal(t, "  padded  ", srv.PostedReplies()[0].Content)
	})

	t.Run("image only reply carries a data url", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		require.NoError(t, v.AttachImage(ctx, postdetail.Upload{
			Filename:  "cat.png",
			MediaType: "image/png",
			Body:      bytes.NewReader(pngBytes(t, 3, 2)),
		}))
		_, err := v.Submit(ctx, postdetail.UserId(9))
		require.NoError(t, err)

		posted := srv.PostedReplies()
		require.Len(t, posted, 1)
		require.NotNil(t, posted[0].FileUrl)
		assert.True(t, strings.HasPrefix(*posted[0].FileUrl, "data:image/png;base64,"))
		assert.True(t, v.Snapshot().Replies[0].HasImage())
	})

	t.Run("current user missing from listing", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{})
		require.NoError(t, v.Load(ctx, postdetail.UserId(123)))

		require.NoError(t, v.SetDraftText(ctx, "hello"))
		_, err := v.Submit(ctx, postdetail.UserId(123))

		require.ErrorIs(t, err, postdetail.ErrUserNotFound)
		assert.Empty(t, srv.PostedReplies())
		snap := v.Snapshot()
		assert.Equal(t, "hello", snap.Draft.Text)
		assert.Equal(t, postdetail.ErrUserNotFound, snap.Draft.Err)
		assert.Equal(t, postdetail.StateReady, snap.State)
	})

	t.Run("api failure keeps the draft", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())
		srv.Fail("POST", "/threads/42/replies")

		require.NoError(t, v.SetDraftText(ctx, "retry me"))
		_, err := v.Submit(ctx, postdetail.UserId(9))

		assert.Equal(t, postdetail.KindSubmissionFailure, postdetail.KindOf(err))
		snap := v.Snapshot()
		assert.Equal(t, "retry me", snap.Draft.Text)
		assert.Equal(t, postdetail.ComposerHasDraft, snap.Draft.State)
		assert.Empty(t, snap.Replies)
		require.NotNil(t, snap.Draft.Err)
		assert.Equal(t, postdetail.KindSubmissionFailure, snap.Draft.Err.Kind)

		require.NoError(t, v.SetDraftText(ctx, "retry me"))
		assert.NotNil(t, v.Snapshot().Draft.Err, "unchanged text keeps the error")

		require.NoError(t, v.SetDraftText(ctx, "retry me, edited"))
		assert.Nil(t, v.Snapshot().Draft.Err, "edited text clears the error")
	})

	t.Run("concurrent submits each append once", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		const n = 8
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = v.SetDraftText(ctx, "x")
				_, _ = v.Submit(ctx, postdetail.UserId(9))
			}()
		}
		wg.Wait()

		assert.Len(t, v.Snapshot().Replies, len(srv.PostedReplies()))
	})
}

func TestAttachImage(t *testing.T) {
	ctx := context.Background()

	t.Run("non-image keeps the pending image", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		require.NoError(t, v.AttachImage(ctx, postdetail.Upload{
			Filename:  "a.png",
			MediaType: "image/png",
			Body:      bytes.NewReader(pngBytes(t, 1, 1)),
		}))
		before := v.Snapshot().Draft.Image
		require.NotNil(t, before)

		err := v.AttachImage(ctx, postdetail.Upload{
			Filename:  "notes.txt",
			MediaType: "text/plain",
			Body:      strings.NewReader("hello"),
		})

		require.ErrorIs(t, err, postdetail.ErrInvalidFileType)
		snap := v.Snapshot()
		assert.Same(t, before, snap.Draft.Image)
		assert.Equal(t, postdetail.ErrInvalidFileType, snap.Draft.Err)
	})

	t.Run("discard returns to idle", func(t *testing.T) {
		srv, client := setup(t)
		v := readyView(t, srv, client, likes.NewRegistry())

		require.NoError(t, v.AttachImage(ctx, postdetail.Upload{
			Filename: "a.png",
			Body:     bytes.NewReader(pngBytes(t, 1, 1)),
		}))
		assert.Equal(t, postdetail.ComposerHasDraft, v.Snapshot().Draft.State)

		require.NoError(t, v.DiscardImage(ctx))
		snap := v.Snapshot()
		assert.Nil(t, snap.Draft.Image)
		assert.Equal(t, postdetail.ComposerIdle, snap.Draft.State)
	})

	t.Run("oversized image", func(t *testing.T) {
		srv, client := setup(t)
		srv.AddThread(42, 7, "hi")
		v := postdetail.New(42, client, likes.NewRegistry(), postdetail.Options{MaxImageSizeBytes: 16})
		require.NoError(t, v.Load(ctx, postdetail.UserId(9)))

		err := v.AttachImage(ctx, postdetail.Upload{
			Filename:  "big.png",
			MediaType: "image/png",
			Body:      bytes.NewReader(pngBytes(t, 64, 64)),
		})
		require.ErrorIs(t, err, postdetail.ErrImageTooLarge)
		assert.Nil(t, v.Snapshot().Draft.Image)
	})
}

func TestToggleLike(t *testing.T) {
	srv, client := setup(t)
	registry := likes.NewRegistry()
	v := readyView(t, srv, client, registry)

	entry := v.ToggleLike()
	assert.Equal(t, likes.Entry{Count: 1, Liked: true}, entry)
	assert.Equal(t, entry, v.Snapshot().Like)

	// another view of the same session sees the same registry
	other := postdetail.New(42, client, registry, postdetail.Options{})
	assert.Equal(t, entry, other.Snapshot().Like)

	entry = other.ToggleLike()
	assert.Equal(t, likes.Entry{Count: 0, Liked: false}, entry)
	assert.Equal(t, entry, v.Snapshot().Like)

	assert.Empty(t, srv.PostedReplies(), "likes never reach the feed api")
}

func TestErrorKinds(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), postdetail.ErrAuthorNotFound)
	assert.ErrorIs(t, wrapped, postdetail.ErrAuthorNotFound)
	assert.NotErrorIs(t, wrapped, postdetail.ErrThreadNotFound)
	assert.Equal(t, postdetail.KindNotFound, postdetail.KindOf(wrapped))
	assert.Equal(t, postdetail.Kind(0), postdetail.KindOf(errors.New("other")))

	assert.Equal(t, 401, postdetail.KindUnauthenticated.HTTPStatus())
	assert.Equal(t, 404, postdetail.KindNotFound.HTTPStatus())
	assert.Equal(t, 502, postdetail.KindFetchFailure.HTTPStatus())
	assert.Equal(t, 400, postdetail.KindValidationFailure.HTTPStatus())
	assert.Equal(t, "submission_failure", postdetail.KindSubmissionFailure.String())
}
