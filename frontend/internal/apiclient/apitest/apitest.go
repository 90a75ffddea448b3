// Package apitest runs an in-memory feed API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/circle-dev/circle/shared/api"
	"github.com/go-chi/chi/v5"
)

// Server serves GET /users, GET /threads/{id}, GET/POST /threads/{id}/replies.
// Exported fields may be set directly before the first request; use the
// methods afterwards.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	Users    []api.User
	Threads  map[int64]*api.Thread
	Replies  map[int64][]api.Reply
	Requests []string
	Posted   []api.CreateReplyRequest

	// FailPaths answers 500 for matching "METHOD /path" keys.
	FailPaths map[string]bool
	// OmitReplies answers {} on GET replies instead of {"replies": [...]}.
	OmitReplies bool

	nextReplyId int64
}

func New() *Server {
	s := &Server{
		Threads:     make(map[int64]*api.Thread),
		Replies:     make(map[int64][]api.Reply),
		FailPaths:   make(map[string]bool),
		nextReplyId: 1000,
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/users", s.getUsers)
	r.Get("/threads/{id}", s.getThread)
	r.Get("/threads/{id}/replies", s.getReplies)
	r.Post("/threads/{id}/replies", s.postReply)

	s.Server = httptest.NewServer(r)
	return s
}

// AddThread registers a thread with a creation time of now.
func (s *Server) AddThread(id, userId int64, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.Threads[id] = &api.Thread{Id: id, UserId: userId, Content: content, CreatedAt: &now}
}

// RequestLog returns a copy of "METHOD /path" entries in arrival order.
func (s *Server) RequestLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Requests...)
}

func (s *Server) PostedReplies() []api.CreateReplyRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.CreateReplyRequest(nil), s.Posted...)
}

func (s *Server) Fail(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailPaths[method+" "+path] = true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.Requests = append(s.Requests, key)
		fail := s.FailPaths[key]
		s.mu.Unlock()

		if fail {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.Users
	if users == nil {
		users = []api.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) getThread(w http.ResponseWriter, r *http.Request) {
	id, ok := threadId(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	thread, ok := s.Threads[id]
	if !ok {
		http.Error(w, "thread not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, api.ThreadResponse{Thread: thread})
}

func (s *Server) getReplies(w http.ResponseWriter, r *http.Request) {
	id, ok := threadId(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OmitReplies {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	replies := s.Replies[id]
	if replies == nil {
		replies = []api.Reply{}
	}
	writeJSON(w, http.StatusOK, api.RepliesResponse{Replies: replies})
}

func (s *Server) postReply(w http.ResponseWriter, r *http.Request) {
	id, ok := threadId(w, r)
	if !ok {
		return
	}
	var req api.CreateReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Posted = append(s.Posted, req)
	s.nextReplyId++
	now := time.Now()
	reply := api.Reply{
		Id:        s.nextReplyId,
		ThreadId:  id,
		UserId:    req.UserId,
		User:      api.ReplyAuthor{FullName: req.User},
		Content:   req.Content,
		FileUrl:   req.FileUrl,
		CreatedAt: &now,
	}
	s.Replies[id] = append(s.Replies[id], reply)
	writeJSON(w, http.StatusCreated, api.CreateReplyResponse{Reply: &reply})
}

func threadId(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid thread id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
