package redisstore

import (
	"context"
	"errors"
	"fmt"

	"rubconv-service/internal/application"

	"github.com/redis/go-redis/v9"
)

// DefaultKey carries the blob format version; a new format gets a new key.
const DefaultKey = "rubconv:state:v1"

// Store keeps the session blob under a single key with no expiry.
type Store struct {
	Client *redis.Client
	Key    string
}

var (
	_ application.StateStore = (*Store)(nil)
	_ application.Pinger     = (*Store)(nil)
)

func New(client *redis.Client, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{Client: client, Key: key}
}

func (s *Store) Load(ctx context.Context) ([]byte, error) {
	b, err := s.Client.Get(ctx, s.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, application.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.Key, err)
	}
	return b, nil
}

// maxUpdateAttempts bounds optimistic retries when another process keeps
// writing the key between our WATCH and EXEC.
const maxUpdateAttempts = 8

// Update runs fn against the current blob under WATCH so a write from another
// process in between aborts and retries instead of being overwritten.
func (s *Store) Update(ctx context.Context, fn application.UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, s.Key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			cur = nil
		case err != nil:
			return fmt.Errorf("redis get %s: %w", s.Key, err)
		}
		next, err := fn(cur)
		if err != nil || next == nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.Key, next, 0)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.Client.Watch(ctx, txf, s.Key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis update %s: %w", s.Key, err)
		}
		return nil
	}
	return fmt.Errorf("redis update %s: %w", s.Key, application.ErrConflict)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
