package provider_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"rubconv-service/internal/infrastructure/httpx"
	"rubconv-service/internal/infrastructure/provider"

	"github.com/stretchr/testify/require"
)

type rtFunc func(*http.Request) *http.Response

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r), nil }

// stub answers every request with body and records the last URL.
func stub(body string, code int, seen *string) *httpx.Client {
	return &httpx.Client{HTTP: &http.Client{
		Timeout: 2 * time.Second,
		Transport: rtFunc(func(r *http.Request) *http.Response {
			if seen != nil {
				*seen = r.URL.String()
			}
			return &http.Response{
				StatusCode: code,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
				Request:    r,
			}
		}),
	}}
}

var fixed = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

func TestMarket_HappyPath(t *testing.T) {
	var seen string
	p := &provider.MarketProvider{
		BaseURL: "https://rates.example.com/v1",
		Client:  stub(`{"base":"USD","rates":{"RUB":95.12}}`, 200, &seen),
		Now:     fixed,
	}
	q, err := p.Get(context.Background(), "USD")
	require.NoError(t, err)
	require.Equal(t, "USD", q.Currency)
	require.InDelta(t, 95.12, q.RubPerUnit, 1e-9)
	require.Equal(t, fixed(), q.FetchedAt)
	require.Equal(t, "https://rates.example.com/v1/latest?base=USD&symbols=RUB", seen)
}

func TestMarket_MissingRate(t *testing.T) {
	p := &provider.MarketProvider{BaseURL: "http://x", Client: stub(`{"rates":{"EUR":1}}`, 200, nil)}
	_, err := p.Get(context.Background(), "USD")
	require.ErrorContains(t, err, "no RUB rate")
}

func TestMarket_NonPositiveRate(t *testing.T) {
	p := &provider.MarketProvider{BaseURL: "http://x", Client: stub(`{"rates":{"RUB":0}}`, 200, nil)}
	_, err := p.Get(context.Background(), "USD")
	require.Error(t, err)
}

func TestMarket_Status(t *testing.T) {
	p := &provider.MarketProvider{BaseURL: "http://x", Client: stub(`oops`, 502, nil)}
	_, err := p.Get(context.Background(), "USD")
	var se *httpx.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, 502, se.Code)
}

func TestMarket_MissingConfig(t *testing.T) {
	_, err := (&provider.MarketProvider{}).Get(context.Background(), "USD")
	require.Error(t, err)
}

const dailySample = `{
  "Date": "2025-01-01T11:30:00+03:00",
  "Valute": {
    "USD": {"CharCode": "USD", "Nominal": 1, "Value": 94.0},
    "KZT": {"CharCode": "KZT", "Nominal": 100, "Value": 19.5},
    "BAD": {"CharCode": "BAD", "Nominal": 0, "Value": 10}
  }
}`

func TestReference_HappyPath(t *testing.T) {
	p := &provider.ReferenceProvider{URL: "http://cbr.example/daily_json.js", Client: stub(dailySample, 200, nil), Now: fixed}
	table, err := p.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 94.0, table.Rates["USD"])
	require.InDelta(t, 0.195, table.Rates["KZT"], 1e-12)
	require.NotContains(t, table.Rates, "BAD")
	require.Equal(t, fixed(), table.FetchedAt)
}

func TestReference_Empty(t *testing.T) {
	p := &provider.ReferenceProvider{URL: "http://x", Client: stub(`{"Valute":{}}`, 200, nil)}
	_, err := p.Get(context.Background())
	require.ErrorContains(t, err, "empty")
}

func TestDepth_StringAndNumberLevels(t *testing.T) {
	var seen string
	body := `{"lastUpdateId": 7, "bids": [["35.10","500"],[35.05, 1000]], "asks": [["35.20","700.5"]]}`
	p := &provider.DepthProvider{BaseURL: "https://api.example.com", Limit: 20, Client: stub(body, 200, &seen), Now: fixed}
	snap, err := p.Get(context.Background(), "USDTTHB")
	require.NoError(t, err)
	require.Equal(t, "USDTTHB", snap.Symbol)
	require.Len(t, snap.Bids, 2)
	require.Equal(t, 35.10, snap.Bids[0].Price)
	require.Equal(t, 1000.0, snap.Bids[1].Quantity)
	require.Equal(t, 700.5, snap.Asks[0].Quantity)
	require.Equal(t, "https://api.example.com/api/v3/depth?limit=20&symbol=USDTTHB", seen)
}

func TestDepth_MalformedLevel(t *testing.T) {
	p := &provider.DepthProvider{BaseURL: "http://x", Client: stub(`{"bids":[["1"]],"asks":[]}`, 200, nil)}
	_, err := p.Get(context.Background(), "USDTTHB")
	require.Error(t, err)
}

func TestFakes(t *testing.T) {
	ctx := context.Background()
	rates := provider.DefaultFakeRates()

	q, err := provider.NewFake(rates).Get(ctx, "USD")
	require.NoError(t, err)
	require.Equal(t, 95.0, q.RubPerUnit)

	_, err = provider.NewFake(rates).Get(ctx, "XXX")
	require.Error(t, err)

	table, err := provider.NewFakeReference(rates).Get(ctx)
	require.NoError(t, err)
	require.Less(t, table.Rates["USD"], 95.0)

	snap, err := provider.NewFakeDepth(35).Get(ctx, "USDTTHB")
	require.NoError(t, err)
	require.Len(t, snap.Bids, 5)
	require.Greater(t, snap.Bids[0].Price, snap.Bids[1].Price)
}
