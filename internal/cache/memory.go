package cache

import (
	"context"
	"path"
	"strconv"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used when no Redis address is configured
// (dev setups, tests). Entries carry their own deadline; expired entries are
// treated as absent on read and evicted opportunistically after a threshold
// of lookups to keep memory bounded.
//
// This store is process-local: quota counts and cached responses reset on
// restart. For multi-instance deployments use the Redis store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry

	lookups uint64
	now     func() time.Time // test seam
}

type memEntry struct {
	value    []byte
	deadline time.Time // zero means no expiry
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

// expired reports whether e is past its deadline at time t.
func (e memEntry) expired(t time.Time) bool {
	return !e.deadline.IsZero() && !t.Before(e.deadline)
}

// sweep evicts expired entries. Caller must hold mu.
func (s *MemoryStore) sweep(now time.Time) {
	s.lookups++
	if s.lookups < 5000 {
		return
	}
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
		}
	}
	s.lookups = 0
}

// Get returns the value for key, or ErrNotFound when absent or expired.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)

	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		delete(s.entries, key)
		return nil, ErrNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value under key with the given TTL (zero means no expiry).
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now()
	var deadline time.Time
	if ttl > 0 {
		deadline = now.Add(ttl)
	}
	v := make([]byte, len(value))
	copy(v, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep(now)
	s.entries[key] = memEntry{value: v, deadline: deadline}
	return nil
}

// Del removes key.
func (s *MemoryStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Incr atomically increments the integer at key, treating absence as zero.
// The existing TTL, if any, is preserved.
func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	var n int64
	if ok && !e.expired(now) {
		parsed, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	} else {
		e = memEntry{}
	}
	n++
	e.value = []byte(strconv.FormatInt(n, 10))
	s.entries[key] = e
	return n, nil
}

// Expire sets or resets the TTL on an existing key. Absent keys are a no-op.
func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.expired(now) {
		return nil
	}
	if ttl > 0 {
		e.deadline = now.Add(ttl)
	} else {
		e.deadline = time.Time{}
	}
	s.entries[key] = e
	return nil
}

// Keys returns the live keys matching a glob-style pattern.
func (s *MemoryStore) Keys(_ context.Context, pattern string) ([]string, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for k, e := range s.entries {
		if e.expired(now) {
			continue
		}
		if ok, err := path.Match(pattern, k); err != nil {
			return nil, err
		} else if ok {
			out = append(out, k)
		}
	}
	return out, nil
}
