package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rubconv-service/internal/application"
	"rubconv-service/internal/domain"
	"rubconv-service/internal/infrastructure/httpx"
)

const marketLatestPath = "/latest"

// MarketProvider fetches the live RUB price of one currency.
type MarketProvider struct {
	BaseURL string
	Client  *httpx.Client
	Now     func() time.Time
}

var _ application.MarketProvider = (*MarketProvider)(nil)

type latestResp struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

func (p *MarketProvider) Get(ctx context.Context, currency string) (domain.Quote, error) {
	if p.BaseURL == "" {
		return domain.Quote{}, errors.New("market: missing base url")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("market: invalid base url: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + marketLatestPath
	q := u.Query()
	q.Set("base", currency)
	q.Set("symbols", domain.RUB)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("market: create request: %w", err)
	}
	var body latestResp
	if err := client(p.Client).DoJSON(ctx, req, &body); err != nil {
		return domain.Quote{}, fmt.Errorf("market: %w", err)
	}
	rate, ok := body.Rates[domain.RUB]
	if !ok || !(rate > 0) {
		return domain.Quote{}, fmt.Errorf("market: no RUB rate for %s", currency)
	}
	return domain.Quote{
		Currency:   currency,
		RubPerUnit: rate,
		FetchedAt:  now(p.Now),
	}, nil
}

func client(c *httpx.Client) *httpx.Client {
	if c == nil {
		return &httpx.Client{}
	}
	return c
}

func now(f func() time.Time) time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f()
}
