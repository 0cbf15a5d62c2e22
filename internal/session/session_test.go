package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestStore(ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(ttl)
	s.now = clock.Now
	return s, clock
}

func TestStore_FirstContactIsUnset(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	assert.Equal(t, ModeUnset, s.Get("psid-1"))
	assert.Equal(t, 1, s.Len(), "first contact creates an entry")
}

func TestStore_SetAndGet(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	s.Set("psid-1", ModeFootball)
	assert.Equal(t, ModeFootball, s.Get("psid-1"))

	s.Set("psid-1", ModeMovie)
	assert.Equal(t, ModeMovie, s.Get("psid-1"))
}

func TestStore_SendersAreIndependent(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	s.Set("alice", ModeMovie)
	s.Set("bob", ModeFootball)

	assert.Equal(t, ModeMovie, s.Get("alice"))
	assert.Equal(t, ModeFootball, s.Get("bob"))
	assert.Equal(t, ModeUnset, s.Get("carol"))
}

func TestStore_IdleExpiry(t *testing.T) {
	s, clock := newTestStore(30 * time.Minute)

	s.Set("psid-1", ModeMovie)
	clock.Advance(29 * time.Minute)
	assert.Equal(t, ModeMovie, s.Get("psid-1"), "reads refresh the idle clock")

	clock.Advance(30 * time.Minute)
	assert.Equal(t, ModeUnset, s.Get("psid-1"))
	assert.Equal(t, 1, s.Len(), "expired entry is reset, not duplicated")
}

func TestStore_Sweep(t *testing.T) {
	s, clock := newTestStore(10 * time.Minute)

	s.Set("old", ModeMovie)
	clock.Advance(8 * time.Minute)
	s.Set("new", ModeFootball)
	clock.Advance(3 * time.Minute)

	removed := s.Sweep(clock.Now())
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, ModeFootball, s.Get("new"))
}

func TestStore_ConcurrentSenders(t *testing.T) {
	s := NewStore(time.Hour)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			id := fmt.Sprintf("psid-%d", i)
			mode := ModeMovie
			if i%2 == 0 {
				mode = ModeFootball
			}
			s.Set(id, mode)
			_ = s.Get(id)
		})
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
	for i := range 50 {
		want := ModeMovie
		if i%2 == 0 {
			want = ModeFootball
		}
		assert.Equal(t, want, s.Get(fmt.Sprintf("psid-%d", i)))
	}
}
