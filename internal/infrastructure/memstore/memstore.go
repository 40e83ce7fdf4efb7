package memstore

import (
	"context"
	"sync"

	"rubconv-service/internal/application"

	"github.com/patrickmn/go-cache"
)

const stateKey = "state"

// Store keeps the session blob in process memory. Nothing survives a restart.
type Store struct {
	mu sync.Mutex // makes Update atomic; the cache only guards single calls
	c  *cache.Cache
}

var _ application.StateStore = (*Store)(nil)

func New() *Store {
	return &Store{c: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Load(context.Context) ([]byte, error) {
	b := s.get()
	if b == nil {
		return nil, application.ErrNotFound
	}
	return b, nil
}

func (s *Store) Update(_ context.Context, fn application.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.get())
	if err != nil || next == nil {
		return err
	}
	s.c.Set(stateKey, append([]byte(nil), next...), cache.NoExpiration)
	return nil
}

func (s *Store) get() []byte {
	v, ok := s.c.Get(stateKey)
	if !ok {
		return nil
	}
	return append([]byte(nil), v.([]byte)...)
}
