package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/circle-dev/circle/frontend/internal/likes"
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/circle-dev/circle/shared/api"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	st := NewStore(ttl)
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	st.now = clock.now
	return st, clock
}

func builder(id domain.ThreadId, built *int) func() *postdetail.View {
	return func() *postdetail.View {
		*built++
		return postdetail.New(id, nil, nil, postdetail.Options{})
	}
}

func TestSessionView(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	built := 0

	first := s.View(42, false, builder(42, &built))
	again := s.View(42, false, builder(42, &built))
	assert.Same(t, first, again)
	assert.Equal(t, 1, built)

	other := s.View(7, false, builder(7, &built))
	assert.NotSame(t, first, other)
	assert.Equal(t, domain.ThreadId(7), s.Current().ThreadId())

	refreshed := s.View(7, true, builder(7, &built))
	assert.NotSame(t, other, refreshed)
	assert.Equal(t, 3, built)

	s.Reset()
	assert.Nil(t, s.Current())
}

func TestSessionViewReplacesFailed(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	built := 0

	v := s.View(42, false, builder(42, &built))
	require.Error(t, v.Load(context.Background(), postdetail.UserId(0)))

	next := s.View(42, false, builder(42, &built))
	assert.NotSame(t, v, next)
	assert.Equal(t, postdetail.StateLoading, next.State())
}

// stalledFeed blocks GetUsers until release is closed.
type stalledFeed struct {
	entered chan struct{}
	release chan struct{}
}

func (f *stalledFeed) GetUsers(ctx context.Context) ([]domain.User, error) {
	close(f.entered)
	<-f.release
	return nil, context.Canceled
}

func (f *stalledFeed) GetThread(context.Context, domain.ThreadId) (*domain.Thread, error) {
	return nil, context.Canceled
}

func (f *stalledFeed) GetReplies(context.Context, domain.ThreadId) ([]domain.Reply, error) {
	return nil, context.Canceled
}

func (f *stalledFeed) CreateReply(context.Context, domain.ThreadId, api.CreateReplyRequest) (*domain.Reply, error) {
	return nil, context.Canceled
}

func TestSessionViewDuringLoad(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	s := st.Create()
	feed := &stalledFeed{entered: make(chan struct{}), release: make(chan struct{})}
	v := s.View(42, false, func() *postdetail.View {
		return postdetail.New(42, feed, likes.NewRegistry(), postdetail.Options{})
	})

	loaded := make(chan struct{})
	go func() {
		defer close(loaded)
		_ = v.Load(context.Background(), postdetail.UserId(9))
	}()
	<-feed.entered

	got := make(chan *postdetail.View, 1)
	go func() {
		got <- s.View(42, false, func() *postdetail.View { t.Error("view rebuilt"); return nil })
	}()

	select {
	case same := <-got:
		assert.Same(t, v, same)
		assert.Equal(t, postdetail.StateLoading, v.State())
	case <-time.After(time.Second):
		t.Error("session blocked behind a running load")
	}

	close(feed.release)
	<-loaded
}

func TestStoreExpiry(t *testing.T) {
	st, clock := newTestStore(time.Minute)
	a := st.Create()
	b := st.Create()
	assert.NotEqual(t, a.ID, b.ID)

	clock.t = clock.t.Add(30 * time.Second)
	_, ok := st.Get(a.ID)
	require.True(t, ok)

	clock.t = clock.t.Add(45 * time.Second)
	_, ok = st.Get(b.ID)
	assert.False(t, ok, "b idle for 75s")

	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 1, st.Len())

	st.Delete(a.ID)
	assert.Equal(t, 0, st.Len())
}

func TestStoreLikesPerSession(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	a, b := st.Create(), st.Create()

	a.Likes.Toggle(42)
	assert.Equal(t, 1, a.Likes.Get(42).Count)
	assert.Equal(t, 0, b.Likes.Get(42).Count)
}

func TestJanitorStops(t *testing.T) {
	st, _ := newTestStore(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	st.StartJanitor(ctx, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	cancel()
	st.Wait()
}

func TestMiddleware(t *testing.T) {
	st := NewStore(time.Hour)
	var seen *Session
	h := Middleware(st, true)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	t.Run("new browser gets a cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotNil(t, seen)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, CookieName, cookies[0].Name)
		assert.Equal(t, seen.ID, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
	})

	t.Run("known cookie reuses the session", func(t *testing.T) {
		existing := st.Create()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: existing.ID})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Same(t, existing, seen)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("unknown cookie is replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.NotNil(t, seen)
		assert.NotEqual(t, "stale", seen.ID)
		assert.Len(t, w.Result().Cookies(), 1)
	})

	assert.Nil(t, FromContext(context.Background()))
}
