package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"rubconv-service/internal/domain"
	"rubconv-service/internal/host"
)

var (
	ErrUpstream = errors.New("upstream error")
)

type fakeStore struct {
	mu      sync.Mutex
	blob    []byte
	saves   int
	err     error
	saveErr error
	onSave  func()
}

func (f *fakeStore) Load(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.blob == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), f.blob...), nil
}

func (f *fakeStore) Update(_ context.Context, fn UpdateFunc) error {
	if f.onSave != nil {
		f.onSave()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	var cur []byte
	if f.blob != nil {
		cur = append([]byte(nil), f.blob...)
	}
	next, err := fn(cur)
	if err != nil || next == nil {
		return err
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.blob = append([]byte(nil), next...)
	return nil
}

// put simulates a write by another process.
func (f *fakeStore) put(blob string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blob = []byte(blob)
}

func (f *fakeStore) failSaves(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

func (f *fakeStore) stored() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.blob)
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

type fakeMarket struct {
	mu    sync.Mutex
	rates map[string]float64
	err   error
	hook  func(currency string)
	calls []string
}

func (f *fakeMarket) Get(_ context.Context, currency string) (domain.Quote, error) {
	if f.hook != nil {
		f.hook(currency)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, currency)
	if f.err != nil {
		return domain.Quote{}, f.err
	}
	v, ok := f.rates[currency]
	if !ok {
		return domain.Quote{}, errors.New("no rate")
	}
	return domain.Quote{Currency: currency, RubPerUnit: v, FetchedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
}

func (f *fakeMarket) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeReference struct {
	rates map[string]float64
	err   error
}

func (f *fakeReference) Get(context.Context) (domain.ReferenceTable, error) {
	if f.err != nil {
		return domain.ReferenceTable{}, f.err
	}
	return domain.ReferenceTable{Rates: f.rates}, nil
}

type fakeDepth struct {
	snap domain.DepthSnapshot
	err  error
}

func (f *fakeDepth) Get(_ context.Context, symbol string) (domain.DepthSnapshot, error) {
	if f.err != nil {
		return domain.DepthSnapshot{}, f.err
	}
	s := f.snap
	s.Symbol = symbol
	return s, nil
}

type fakeArchive struct {
	mu   sync.Mutex
	rows []domain.QuoteHistory
}

func (f *fakeArchive) Append(_ context.Context, q domain.QuoteHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, q)
	return nil
}

func (f *fakeArchive) List(_ context.Context, currency string, limit int) ([]domain.QuoteHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.QuoteHistory
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].Currency == currency {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type fakeHost struct {
	mu      sync.Mutex
	label   string
	visible bool
	haptics []host.HapticKind
	theme   domain.Theme
}

func (f *fakeHost) Theme() (domain.Theme, bool) { return f.theme, f.theme != "" }

func (f *fakeHost) SetMainButton(label string, visible bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.label, f.visible = label, visible
}

func (f *fakeHost) Haptic(k host.HapticKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.haptics = append(f.haptics, k)
}

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }
