// Package session tracks which search topic each sender has picked.
package session

import (
	"sync"
	"time"
)

// Mode is the active search topic of a conversation.
type Mode string

const (
	ModeUnset    Mode = ""
	ModeMovie    Mode = "movie"
	ModeFootball Mode = "football"
)

type entry struct {
	mode     Mode
	lastSeen time.Time
}

// Store maps sender ids to their mode. Entries idle for longer than the TTL
// read as unset and are removed by Sweep. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates a store whose entries expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the sender's mode. Unknown senders get an unset entry,
// which also starts their idle clock.
func (s *Store) Get(senderID string) Mode {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[senderID]
	if !ok || s.expired(e, now) {
		s.entries[senderID] = entry{mode: ModeUnset, lastSeen: now}
		return ModeUnset
	}
	e.lastSeen = now
	s.entries[senderID] = e
	return e.mode
}

// Set records the sender's mode.
func (s *Store) Set(senderID string, mode Mode) {
	now := s.now()

	s.mu.Lock()
	s.entries[senderID] = entry{mode: mode, lastSeen: now}
	s.mu.Unlock()
}

// Len returns the number of tracked senders, expired ones included until swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes entries idle at now and returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *Store) expired(e entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) >= s.ttl
}
