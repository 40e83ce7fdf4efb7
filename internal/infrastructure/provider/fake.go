package provider

import (
	"context"
	"fmt"
	"time"

	"rubconv-service/internal/application"
	"rubconv-service/internal/domain"
)

var (
	_ application.MarketProvider    = (*Fake)(nil)
	_ application.ReferenceProvider = (*FakeReference)(nil)
	_ application.DepthProvider     = (*FakeDepth)(nil)
)

// Fake serves fixed market quotes.
type Fake struct {
	rates map[string]float64
}

func NewFake(rates map[string]float64) *Fake { return &Fake{rates: rates} }

// DefaultFakeRates are plausible RUB prices for local runs.
func DefaultFakeRates() map[string]float64 {
	return map[string]float64{
		"USD": 95, "EUR": 102, "CNY": 13.1, "THB": 2.65, "TRY": 2.9,
		"AED": 25.9, "KZT": 0.19, "GBP": 120, "USDT": 95.4,
	}
}

func (f *Fake) Get(_ context.Context, currency string) (domain.Quote, error) {
	v, ok := f.rates[currency]
	if !ok {
		return domain.Quote{}, fmt.Errorf("fake market: no rate for %s", currency)
	}
	return domain.Quote{Currency: currency, RubPerUnit: v, FetchedAt: time.Now().UTC()}, nil
}

// FakeReference serves the fake market rates shaved by one percent.
type FakeReference struct {
	rates map[string]float64
}

func NewFakeReference(rates map[string]float64) *FakeReference {
	return &FakeReference{rates: rates}
}

func (f *FakeReference) Get(context.Context) (domain.ReferenceTable, error) {
	out := make(map[string]float64, len(f.rates))
	for k, v := range f.rates {
		out[k] = v * 0.99
	}
	return domain.ReferenceTable{Rates: out, FetchedAt: time.Now().UTC()}, nil
}

// FakeDepth serves a static book around mid.
type FakeDepth struct {
	mid float64
}

func NewFakeDepth(mid float64) *FakeDepth { return &FakeDepth{mid: mid} }

func (f *FakeDepth) Get(_ context.Context, symbol string) (domain.DepthSnapshot, error) {
	snap := domain.DepthSnapshot{Symbol: symbol, FetchedAt: time.Now().UTC()}
	for i := 1; i <= 5; i++ {
		step := float64(i) * 0.01
		snap.Bids = append(snap.Bids, domain.Level{Price: f.mid - step, Quantity: float64(i) * 500})
		snap.Asks = append(snap.Asks, domain.Level{Price: f.mid + step, Quantity: float64(i) * 500})
	}
	return snap, nil
}
