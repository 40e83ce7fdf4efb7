package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rubconv-service/internal/application"
	"rubconv-service/internal/domain"
	"rubconv-service/internal/infrastructure/httpx"
)

// ReferenceProvider reads the central bank's daily table.
type ReferenceProvider struct {
	URL    string
	Client *httpx.Client
	Now    func() time.Time
}

var _ application.ReferenceProvider = (*ReferenceProvider)(nil)

type dailyResp struct {
	Date   string                 `json:"Date"`
	Valute map[string]dailyValute `json:"Valute"`
}

type dailyValute struct {
	CharCode string  `json:"CharCode"`
	Nominal  float64 `json:"Nominal"`
	Value    float64 `json:"Value"`
}

func (p *ReferenceProvider) Get(ctx context.Context) (domain.ReferenceTable, error) {
	if p.URL == "" {
		return domain.ReferenceTable{}, errors.New("reference: missing url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return domain.ReferenceTable{}, fmt.Errorf("reference: create request: %w", err)
	}
	var body dailyResp
	if err := client(p.Client).DoJSON(ctx, req, &body); err != nil {
		return domain.ReferenceTable{}, fmt.Errorf("reference: %w", err)
	}

	rates := make(map[string]float64, len(body.Valute))
	for code, v := range body.Valute {
		if v.Nominal <= 0 || v.Value <= 0 {
			continue
		}
		rates[code] = v.Value / v.Nominal
	}
	if len(rates) == 0 {
		return domain.ReferenceTable{}, errors.New("reference: empty table")
	}
	return domain.ReferenceTable{Rates: rates, FetchedAt: now(p.Now)}, nil
}
