package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rubconv-service/internal/application"
	"rubconv-service/internal/domain"
	"rubconv-service/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const depthPath = "/api/v3/depth"

// DepthProvider reads an exchange order book.
type DepthProvider struct {
	BaseURL string
	Limit   int
	Client  *httpx.Client
	Now     func() time.Time
}

var _ application.DepthProvider = (*DepthProvider)(nil)

type depthResp struct {
	LastUpdateID int64   `json:"lastUpdateId"`
	Bids         []level `json:"bids"`
	Asks         []level `json:"asks"`
}

// level is a [price, quantity] pair; exchanges send either strings or numbers.
type level [2]decimal.Decimal

func (l *level) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("depth level: want 2 elements, got %d", len(raw))
	}
	for i := 0; i < 2; i++ {
		if err := l[i].UnmarshalJSON(raw[i]); err != nil {
			return fmt.Errorf("depth level: %w", err)
		}
	}
	return nil
}

func (p *DepthProvider) Get(ctx context.Context, symbol string) (domain.DepthSnapshot, error) {
	if p.BaseURL == "" {
		return domain.DepthSnapshot{}, errors.New("depth: missing base url")
	}
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return domain.DepthSnapshot{}, fmt.Errorf("depth: invalid base url: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + depthPath
	q := u.Query()
	q.Set("symbol", symbol)
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.DepthSnapshot{}, fmt.Errorf("depth: create request: %w", err)
	}
	var body depthResp
	if err := client(p.Client).DoJSON(ctx, req, &body); err != nil {
		return domain.DepthSnapshot{}, fmt.Errorf("depth %s: %w", symbol, err)
	}
	return domain.DepthSnapshot{
		Symbol:    symbol,
		Bids:      toLevels(body.Bids),
		Asks:      toLevels(body.Asks),
		FetchedAt: now(p.Now),
	}, nil
}

func toLevels(in []level) []domain.Level {
	out := make([]domain.Level, 0, len(in))
	for _, l := range in {
		out = append(out, domain.Level{
			Price:    l[0].InexactFloat64(),
			Quantity: l[1].InexactFloat64(),
		})
	}
	return out
}
