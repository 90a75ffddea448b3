// Package session keeps per-browser UI state in memory: the like registry and
// the post view currently shown to that browser.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/circle-dev/circle/frontend/internal/likes"
	"github.com/circle-dev/circle/frontend/internal/postdetail"
	"github.com/circle-dev/circle/shared/domain"
	"github.com/circle-dev/circle/shared/logger"
	"github.com/google/uuid"
)

const CookieName = "sid"

// Session is one browser's application session. Likes outlive page visits;
// the view is replaced whenever a different thread is visited.
type Session struct {
	ID    string
	Likes *likes.Registry

	mu       sync.Mutex
	view     *postdetail.View
	lastSeen time.Time
}

// View returns the session's view of threadId, building a new one with
// build when there is none, it shows another thread, it failed, or fresh is set.
// The view's state is read without waiting for an operation running on it.
func (s *Session) View(threadId domain.ThreadId, fresh bool, build func() *postdetail.View) *postdetail.View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fresh && s.view != nil && s.view.ThreadId() == threadId && s.view.State() != postdetail.StateError {
		return s.view
	}
	s.view = build()
	return s.view
}

// Current returns the view last built for this session, if any.
func (s *Session) Current() *postdetail.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Reset drops the current view; likes are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the live session with id and marks it as seen.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := st.now()
	if now.Sub(s.idleSince()) > st.ttl {
		return nil, false
	}
	s.touch(now)
	return s, true
}

func (st *Store) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Likes:    likes.NewRegistry(),
		lastSeen: st.now(),
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops sessions idle longer than the ttl and returns how many were dropped.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	dropped := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			dropped++
		}
	}
	return dropped
}

// StartJanitor sweeps every interval until ctx is done. Wait blocks until it exits.
func (st *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	st.wg.Add(1)
	go func() {
		defer st.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := st.Sweep(); n > 0 {
					logger.Log.Debug("expired sessions dropped", "component", "session", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (st *Store) Wait() {
	st.wg.Wait()
}

type contextKey struct{}

// Middleware attaches the browser's session to the request context, creating
// one and setting the cookie when the request carries none or an expired one.
func Middleware(st *Store, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var s *Session
			if cookie, err := r.Cookie(CookieName); err == nil {
				s, _ = st.Get(cookie.Value)
			}
			if s == nil {
				s = st.Create()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    s.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, s)))
		})
	}
}

// FromContext returns the session set by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
