package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_History_Cap(t *testing.T) {
	t.Parallel()
	var h History
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		h = h.Push(HistoryEntry{Timestamp: start.Add(time.Duration(i) * time.Minute), Amount: float64(i)})
	}
	require.Len(t, h, HistoryCap)
	require.Equal(t, 29.0, h[0].Amount)
	require.Equal(t, 5.0, h[HistoryCap-1].Amount)
}

func Test_History_PushDoesNotMutate(t *testing.T) {
	t.Parallel()
	h := History{{Amount: 1}}
	next := h.Push(HistoryEntry{Amount: 2})
	require.Len(t, h, 1)
	require.Equal(t, 1.0, h[0].Amount)
	require.Equal(t, []float64{2, 1}, []float64{next[0].Amount, next[1].Amount})
}
