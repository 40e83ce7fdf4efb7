package memstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"rubconv-service/internal/application"

	"github.com/stretchr/testify/require"
)

func set(blob []byte) application.UpdateFunc {
	return func([]byte) ([]byte, error) { return blob, nil }
}

func TestStore(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, application.ErrNotFound)

	blob := []byte(`{"x":1}`)
	require.NoError(t, s.Update(ctx, set(blob)))
	blob[0] = '!'

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, string(got))
}

func TestUpdate_NoWrite(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, set([]byte("a"))))

	var seen []byte
	require.NoError(t, s.Update(ctx, func(cur []byte) ([]byte, error) {
		seen = cur
		return nil, nil
	}))
	require.Equal(t, "a", string(seen))

	boom := errors.New("boom")
	require.ErrorIs(t, s.Update(ctx, func([]byte) ([]byte, error) { return []byte("b"), boom }), boom)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", string(got))
}

func TestUpdate_Atomic(t *testing.T) {
	s := New()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, func(cur []byte) ([]byte, error) {
				n, _ := strconv.Atoi(string(cur))
				return []byte(strconv.Itoa(n + 1)), nil
			})
		}()
	}
	wg.Wait()
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "50", string(got))
}
