package domain

import "time"

// QuoteHistory is one archived provider observation.
type QuoteHistory struct {
	ID         int64     `json:"id"`
	Source     Source    `json:"source"`
	Currency   string    `json:"currency"`
	RubPerUnit float64   `json:"rub_per_unit"`
	FetchedAt  time.Time `json:"fetched_at"`
	InsertedAt time.Time `json:"inserted_at"`
}
