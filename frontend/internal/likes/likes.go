// Package likes holds the like registry shared by every post view of one
// application session. Counts here are local feedback only: they are never
// sent to the feed API and never reconciled with thread data.
package likes

import (
	"sync"

	"github.com/circle-dev/circle/shared/domain"
)

// Entry is the like state of one thread. The zero value is "not liked, count 0",
// which is what an absent entry reads as.
type Entry struct {
	Count int
	Liked bool
}

type Registry struct {
	mu      sync.RWMutex
	entries map[domain.ThreadId]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.ThreadId]Entry)}
}

func (r *Registry) Get(threadId domain.ThreadId) Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[threadId]
}

// Toggle flips the liked flag and moves the count one step in the same direction.
func (r *Registry) Toggle(threadId domain.ThreadId) Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.entries[threadId]
	if e.Liked {
		e.Count--
	} else {
		e.Count++
	}
	e.Liked = !e.Liked
	r.entries[threadId] = e
	return e
}

// Likes returns a copy of all counts keyed by thread.
func (r *Registry) Likes() map[domain.ThreadId]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.ThreadId]int, len(r.entries))
	for id, e := range r.entries {
		out[id] = e.Count
	}
	return out
}
