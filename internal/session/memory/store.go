package memory

import (
	"context"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
)

const defaultMaxSessions = 10_000

// Store keeps sessions in a local LRU cache. Reading a session extends its lifetime.
type Store struct {
	mu    sync.Mutex
	ttl   time.Duration
	cache *ccache.Cache[map[string]string]
}

func New(ttl time.Duration) *Store {
	//nolint:exhaustruct
	return &Store{
		ttl:   ttl,
		cache: ccache.New(ccache.Configure[map[string]string]().MaxSize(defaultMaxSessions)),
	}
}

func (s *Store) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.cache.Get(sessionID)
	if item == nil || item.Expired() {
		return "", false, nil
	}

	item.Extend(s.ttl)

	value, ok := item.Value()[key]

	return value, ok, nil
}

func (s *Store) Set(_ context.Context, sessionID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.copyOf(sessionID)
	values[key] = value

	s.cache.Set(sessionID, values, s.ttl)

	return nil
}

func (s *Store) Delete(_ context.Context, sessionID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := s.copyOf(sessionID)
	for _, key := range keys {
		delete(values, key)
	}

	if len(values) == 0 {
		s.cache.Delete(sessionID)

		return nil
	}

	s.cache.Set(sessionID, values, s.ttl)

	return nil
}

func (s *Store) Stop() {
	s.cache.Stop()
}

func (s *Store) copyOf(sessionID string) map[string]string {
	values := make(map[string]string)

	if item := s.cache.Get(sessionID); item != nil && !item.Expired() {
		for k, v := range item.Value() {
			values[k] = v
		}
	}

	return values
}
