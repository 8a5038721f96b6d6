package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the fallback backend when Redis is unreachable. Sessions
// do not survive a restart, which matches how the portal degrades elsewhere
// when Redis is down.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	flashes map[string][]Flash
}

type memEntry struct {
	userID    uint64
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memEntry),
		flashes: make(map[string][]Flash),
	}
}

func (s *MemoryStore) Create(_ context.Context, userID uint64) (string, error) {
	sid := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sid] = memEntry{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return sid, nil
}

func (s *MemoryStore) Get(_ context.Context, sid string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sid]
	if !ok {
		return 0, ErrNotFound
	}
	if time.Now().After(e.expiresAt) {
		delete(s.entries, sid)
		delete(s.flashes, sid)
		return 0, ErrNotFound
	}
	e.expiresAt = time.Now().Add(s.ttl)
	s.entries[sid] = e
	return e.userID, nil
}

func (s *MemoryStore) Destroy(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sid)
	delete(s.flashes, sid)
	return nil
}

func (s *MemoryStore) AddFlash(_ context.Context, sid string, f Flash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes[sid] = append(s.flashes[sid], f)
	return nil
}

func (s *MemoryStore) PopFlashes(_ context.Context, sid string) ([]Flash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes[sid]
	delete(s.flashes, sid)
	return out, nil
}
