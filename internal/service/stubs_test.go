package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hostelworks/hostel-core-api/internal/models"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
)

// stubCacheRepo is an in-memory CacheRepository with a working advisory lock,
// safe for concurrent use.
type stubCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
	locks   map[string]bool
	getErr  error
	setErr  error
}

func newStubCacheRepo() *stubCacheRepo {
	return &stubCacheRepo{
		entries: map[string][]byte{},
		locks:   map[string]bool{},
	}
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return s.getErr
	}
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = map[string][]byte{}
	}
	s.entries[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string][]byte{}
	return nil
}

func (s *stubCacheRepo) TryLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = map[string]bool{}
	}
	if s.locks[key] {
		return false, nil
	}
	s.locks[key] = true
	return true, nil
}

func (s *stubCacheRepo) Unlock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

// fakePersonDirectory serves Person lookups from a static map keyed by
// "category/id".
type fakePersonDirectory struct {
	persons map[string]*models.Person
}

func (f *fakePersonDirectory) GetByID(_ context.Context, id string, category models.PersonCategory) (*models.Person, error) {
	if p, ok := f.persons[string(category)+"/"+id]; ok {
		return p, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
}
