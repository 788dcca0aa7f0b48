package inputcache

import (
	"context"
	"sync"
	"time"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the input cache for tests/dev.
// Entries are stored encoded so callers never share slices with the cache.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, cx, cy int64) (chip.Inputs, bool, error) {
	key := chipKey("", cx, cy)
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return chip.Inputs{}, false, nil
	}
	if !e.expiresAt.IsZero() && e.expiresAt.Before(s.now()) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return chip.Inputs{}, false, nil
	}
	inputs, err := decode(e.payload)
	if err != nil {
		return chip.Inputs{}, false, err
	}
	return inputs, true, nil
}

func (s *MemoryStore) Save(_ context.Context, cx, cy int64, inputs chip.Inputs, ttl time.Duration) error {
	payload, err := encode(inputs)
	if err != nil {
		return err
	}
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[chipKey("", cx, cy)] = entry{payload: payload, expiresAt: exp}
	return nil
}

var _ Store = (*MemoryStore)(nil)
