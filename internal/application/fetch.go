package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rubconv-service/internal/domain"

	"go.uber.org/zap"
)

// cycle groups the fetches started by one user or timer action. Only the
// first failure of a cycle becomes the user-visible message.
type cycle struct {
	svc   *ConverterService
	mu    sync.Mutex
	first error
}

func (s *ConverterService) newCycle(ctx context.Context) *cycle {
	_, _ = s.mutate(ctx, func(st *domain.State) bool {
		if st.Error == "" {
			return false
		}
		st.Error = ""
		return true
	})
	return &cycle{svc: s}
}

func (c *cycle) fail(ctx context.Context, op string, err error) {
	err = fmt.Errorf("%s: %w", op, err)
	c.svc.log.Warn("refresh.provider_failed", zap.String("op", op), zap.Error(err))

	c.mu.Lock()
	if c.first != nil {
		c.mu.Unlock()
		return
	}
	c.first = err
	c.mu.Unlock()

	msg := err.Error()
	_, _ = c.svc.mutate(ctx, func(st *domain.State) bool {
		st.Error = msg
		return true
	})
}

func (c *cycle) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.first
}

// setLoading flips the single shared loading flag. Concurrent fetches race
// on it: the first one to finish clears it for all of them.
func (s *ConverterService) setLoading(ctx context.Context, on bool) {
	_, _ = s.mutate(ctx, func(st *domain.State) bool {
		if st.Loading == on {
			return false
		}
		st.Loading = on
		return true
	})
}

// FetchMarket refreshes the market quote for one currency.
func (s *ConverterService) FetchMarket(ctx context.Context, currency string) (domain.View, error) {
	c, ok := domain.NormalizeCurrency(currency)
	if !ok {
		return domain.View{}, fmt.Errorf("%w: %w %q", ErrBadRequest, domain.ErrUnsupportedCurrency, currency)
	}
	cy := s.newCycle(ctx)
	s.fetchMarket(ctx, cy, c)
	return s.View(ctx), cy.err()
}

// FetchReference refreshes the official rate table.
func (s *ConverterService) FetchReference(ctx context.Context) (domain.View, error) {
	cy := s.newCycle(ctx)
	s.fetchReference(ctx, cy)
	return s.View(ctx), cy.err()
}

// FetchDepth refreshes the tracked pair's order book.
func (s *ConverterService) FetchDepth(ctx context.Context) (domain.View, error) {
	cy := s.newCycle(ctx)
	s.fetchDepth(ctx, cy)
	return s.View(ctx), cy.err()
}

// Refresh fetches what the current selection needs: the reference table
// always, plus the market quote or the order book depending on the source.
// Fetches run independently and the call returns once all have finished.
func (s *ConverterService) Refresh(ctx context.Context) error {
	prefs := s.snapshot(ctx).Preferences

	cy := s.newCycle(ctx)
	var wg sync.WaitGroup
	run := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	run(func() { s.fetchReference(ctx, cy) })
	switch prefs.Source {
	case domain.SourceMarket:
		run(func() { s.fetchMarket(ctx, cy, prefs.Currency) })
	case domain.SourceOrderBook:
		run(func() { s.fetchDepth(ctx, cy) })
	}
	wg.Wait()

	if err := cy.err(); err != nil {
		return err
	}
	s.log.Debug("refresh.done", zap.String("source", string(prefs.Source)), zap.String("currency", prefs.Currency))
	return nil
}

func (s *ConverterService) fetchMarket(ctx context.Context, cy *cycle, currency string) {
	if s.market == nil {
		cy.fail(ctx, "market "+currency, errNoProvider)
		return
	}
	s.setLoading(ctx, true)
	q, err := s.market.Get(ctx, currency)
	if err == nil && q.RubPerUnit <= 0 {
		err = fmt.Errorf("non-positive rate %v", q.RubPerUnit)
	}
	if err != nil {
		s.setLoading(ctx, false)
		cy.fail(ctx, "market "+currency, err)
		return
	}
	q.Currency = currency
	if q.FetchedAt.IsZero() {
		q.FetchedAt = s.clock.Now()
	}
	// written under the fetched currency's key even if the user has
	// switched to another one meanwhile
	_, _ = s.mutate(ctx, func(st *domain.State) bool {
		st.Market[currency] = q
		st.Loading = false
		return true
	})
	s.archiveQuote(ctx, domain.SourceMarket, q.Currency, q.RubPerUnit, q.FetchedAt)
}

func (s *ConverterService) fetchReference(ctx context.Context, cy *cycle) {
	if s.reference == nil {
		cy.fail(ctx, "reference", errNoProvider)
		return
	}
	s.setLoading(ctx, true)
	table, err := s.reference.Get(ctx)
	if err == nil && len(table.Rates) == 0 {
		err = fmt.Errorf("empty rate table")
	}
	if err != nil {
		s.setLoading(ctx, false)
		cy.fail(ctx, "reference", err)
		return
	}
	if table.FetchedAt.IsZero() {
		table.FetchedAt = s.clock.Now()
	}
	_, _ = s.mutate(ctx, func(st *domain.State) bool {
		st.Reference = &table
		st.Loading = false
		return true
	})
	for code, v := range table.Rates {
		if domain.SupportedCurrency[code] {
			s.archiveQuote(ctx, domain.SourceReference, code, v, table.FetchedAt)
		}
	}
}

func (s *ConverterService) fetchDepth(ctx context.Context, cy *cycle) {
	op := "depth " + s.pair.Symbol
	if s.depth == nil {
		cy.fail(ctx, op, errNoProvider)
		return
	}
	s.setLoading(ctx, true)
	snap, err := s.depth.Get(ctx, s.pair.Symbol)
	if err != nil {
		s.setLoading(ctx, false)
		cy.fail(ctx, op, err)
		return
	}
	if snap.Symbol == "" {
		snap.Symbol = s.pair.Symbol
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = s.clock.Now()
	}
	_, _ = s.mutate(ctx, func(st *domain.State) bool {
		st.Depth = &snap
		st.Loading = false
		return true
	})
}

func (s *ConverterService) archiveQuote(ctx context.Context, src domain.Source, currency string, rate float64, at time.Time) {
	err := s.archive.Append(ctx, domain.QuoteHistory{
		Source:     src,
		Currency:   currency,
		RubPerUnit: rate,
		FetchedAt:  at,
	})
	if err != nil {
		s.log.Warn("archive.append_failed",
			zap.String("source", string(src)),
			zap.String("currency", currency),
			zap.Error(err),
		)
	}
}
