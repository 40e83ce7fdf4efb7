package domain

import (
	"math"
	"time"
)

// Level is one standing order-book price level.
type Level struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// DepthSnapshot is a point-in-time view of the tracked pair's book.
// Bids and Asks are kept in exchange order, best price first.
type DepthSnapshot struct {
	Symbol    string    `json:"symbol"`
	Bids      []Level   `json:"bids"`
	Asks      []Level   `json:"asks"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fill is the outcome of walking the book for a target quantity.
// OK is false when no average could be computed.
type Fill struct {
	AveragePrice   float64 `json:"average_price"`
	FilledFraction float64 `json:"filled_fraction"`
	OK             bool    `json:"ok"`
}

// AverageFill consumes levels in the given order until q is filled or the
// levels run out. Levels are not sorted here; callers pass them best first.
// Partial coverage is reported through FilledFraction, never as an error.
func AverageFill(levels []Level, q float64) Fill {
	if !(q > 0) || math.IsInf(q, 0) || len(levels) == 0 {
		return Fill{}
	}
	var filled, cost float64
	for _, l := range levels {
		if filled >= q {
			break
		}
		if !(l.Quantity > 0) || !finite(l.Price) || math.IsInf(l.Quantity, 0) {
			continue
		}
		take := math.Min(q-filled, l.Quantity)
		filled += take
		cost += take * l.Price
	}
	if filled <= 0 {
		return Fill{}
	}
	frac := filled / q
	if frac > 1 {
		frac = 1
	}
	return Fill{AveragePrice: cost / filled, FilledFraction: frac, OK: true}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
