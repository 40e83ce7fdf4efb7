package domain

import "time"

// RUB is the target currency of every conversion.
const RUB = "RUB"

// Quote is the ruble price of one unit of Currency as reported by a provider.
type Quote struct {
	Currency   string    `json:"currency"`
	RubPerUnit float64   `json:"rub_per_unit"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// ReferenceTable is the official rate document: currency code -> RUB per unit.
type ReferenceTable struct {
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Rate returns the reference RUB per unit for code.
func (t *ReferenceTable) Rate(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	if code == RUB {
		return 1, true
	}
	v, ok := t.Rates[code]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}
