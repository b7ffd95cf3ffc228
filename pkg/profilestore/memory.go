package profilestore

import (
	"context"
	"sync"

	"drifty/internal/model"
)

// MemoryStore is the in-process backend for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	profiles map[string]model.Profile

	// FailGets / FailSaves make the respective operations return
	// failErr while set. Used to exercise fail-open paths.
	FailGets  bool
	FailSaves bool
	failErr   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string]model.Profile),
	}
}

// SetFailure configures the error returned while FailGets/FailSaves
// are on.
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *MemoryStore) Get(ctx context.Context, uid string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGets {
		return nil, s.failErr
	}

	p, ok := s.profiles[uid]
	if !ok {
		return nil, nil
	}
	out := p
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, uid string, partial model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailSaves {
		return s.failErr
	}

	s.profiles[uid] = s.profiles[uid].Merge(partial)
	return nil
}
