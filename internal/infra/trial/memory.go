package trial

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps guest trial flags in process. Flags never expire and are
// lost on restart.
type MemoryStore struct {
	flags *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: cache.New(cache.NoExpiration, 0)}
}

func (s *MemoryStore) TrialUsed(_ context.Context, key string) (bool, error) {
	_, ok := s.flags.Get(key)
	return ok, nil
}

func (s *MemoryStore) MarkTrialUsed(_ context.Context, key string) error {
	s.flags.Set(key, true, cache.NoExpiration)
	return nil
}
