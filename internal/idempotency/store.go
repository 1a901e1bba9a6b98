package idempotency

import (
	"context"
	"sync"
	"time"
)

// Response is a cached successful response replayed for a repeated key.
type Response struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Store records the state of an idempotency key. Begin claims a fresh key
// (started=true), or reports the completed response of an earlier request
// (existing!=nil), or neither when the key is claimed by an in-flight request.
type Store interface {
	Begin(ctx context.Context, key string, ttl time.Duration) (existing *Response, started bool, err error)
	Complete(ctx context.Context, key string, resp Response, ttl time.Duration) error
	Abort(ctx context.Context, key string) error
}

type memoryEntry struct {
	resp      *Response
	expiresAt time.Time
}

// MemoryStore keeps keys in process memory. Used when Redis is not configured.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Begin(_ context.Context, key string, ttl time.Duration) (*Response, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[key]; ok && now.Before(e.expiresAt) {
		return e.resp, false, nil
	}

	s.entries[key] = memoryEntry{expiresAt: now.Add(ttl)}
	s.evict(now)
	return nil, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, key string, resp Response, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{resp: &resp, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Abort(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func (s *MemoryStore) evict(now time.Time) {
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
