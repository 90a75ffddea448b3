package likes

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_AbsentEntryReadsAsZero(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, Entry{}, r.Get(42))
	assert.Empty(t, r.Likes())
}

func TestRegistry_ToggleParity(t *testing.T) {
	for n := 1; n <= 6; n++ {
		r := NewRegistry()
		original := r.Get(42).Count

		var last Entry
		for i := 0; i < n; i++ {
			last = r.Toggle(42)
		}

		if n%2 == 0 {
			assert.Equal(t, original, r.Get(42).Count, "even toggles restore the count (n=%d)", n)
			assert.False(t, last.Liked)
		} else {
			assert.Equal(t, original+1, r.Get(42).Count, "odd toggles move the count by one (n=%d)", n)
			assert.True(t, last.Liked)
		}
	}
}

func TestRegistry_ThreadsAreIndependent(t *testing.T) {
	r := NewRegistry()
	r.Toggle(1)
	r.Toggle(2)
	r.Toggle(2)
	r.Toggle(3)

	assert.Equal(t, Entry{Count: 1, Liked: true}, r.Get(1))
	assert.Equal(t, Entry{Count: 0, Liked: false}, r.Get(2))
	assert.Equal(t, map[int64]int{1: 1, 2: 0, 3: 1}, r.Likes())
}

func TestRegistry_ConcurrentToggles(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Toggle(7)
		}()
	}
	wg.Wait()

	// 100 toggles is even
	assert.Equal(t, Entry{}, r.Get(7))
}
