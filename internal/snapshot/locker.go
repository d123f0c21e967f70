// Package snapshot orchestrates building and publishing daily
// evaluation snapshots of the asset universe.
package snapshot

import (
	"errors"
	"sync"
	"time"
)

// ErrBuildInProgress is returned when another build already holds the
// lock for the same (date, label).
var ErrBuildInProgress = errors.New("snapshot build already in progress")

// LockStore serializes snapshot builds per key. Implementations must
// be safe for concurrent use. The store is injected so tests and
// multi-process deployments can swap it out.
type LockStore interface {
	// TryAcquire takes the lock for key, false when it is already held.
	TryAcquire(key string) bool
	Release(key string)
	// Reset drops every held lock. Crash recovery hook.
	Reset()
}

// MemoryLockStore is the single-process LockStore. Held locks expire
// after the TTL so a crashed build cannot wedge the key forever.
type MemoryLockStore struct {
	mu   sync.Mutex
	held map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryLockStore creates a lock store with the given TTL.
func NewMemoryLockStore(ttl time.Duration) *MemoryLockStore {
	return &MemoryLockStore{
		held: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

var _ LockStore = (*MemoryLockStore)(nil)

func (s *MemoryLockStore) TryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if at, ok := s.held[key]; ok && s.now().Sub(at) < s.ttl {
		return false
	}
	s.held[key] = s.now()
	return true
}

func (s *MemoryLockStore) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
}

func (s *MemoryLockStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = make(map[string]time.Time)
}
