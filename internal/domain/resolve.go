package domain

// ResolveInput carries everything the resolver may consult.
type ResolveInput struct {
	Currency      string
	Amount        float64
	Source        Source
	CustomRate    string
	SpreadEnabled bool
	SpreadPercent float64

	Market    map[string]Quote
	Reference *ReferenceTable
	Depth     *DepthSnapshot
	Pair      Pair
}

// Resolution is the active rate together with how it was obtained.
type Resolution struct {
	Rate     float64 `json:"rate"`
	Base     float64 `json:"base"`
	Custom   bool    `json:"custom"`
	Fill     *Fill   `json:"fill,omitempty"`
	Resolved bool    `json:"resolved"`
}

// ParseCustomRate accepts only positive numbers.
func ParseCustomRate(text string) (float64, bool) {
	v, ok := ParseAmount(text)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// ResolveRate picks the RUB-per-unit figure used for conversion.
// A valid custom rate wins outright and is never spread-adjusted.
func ResolveRate(in ResolveInput) Resolution {
	if v, ok := ParseCustomRate(in.CustomRate); ok {
		return Resolution{Rate: v, Base: v, Custom: true, Resolved: true}
	}

	var (
		base float64
		ok   bool
		fill *Fill
	)
	switch in.Source {
	case SourceReference:
		base, ok = in.Reference.Rate(in.Currency)
	case SourceOrderBook:
		base, fill, ok = resolveOrderBook(in)
	default:
		if q, found := in.Market[in.Currency]; found && q.RubPerUnit > 0 {
			base, ok = q.RubPerUnit, true
		}
	}
	if !ok {
		return Resolution{Fill: fill}
	}

	rate := base
	if in.SpreadEnabled {
		rate = base * (1 - clampSpread(in.SpreadPercent)/100)
	}
	return Resolution{Rate: rate, Base: base, Fill: fill, Resolved: true}
}

// resolveOrderBook sells Amount of the pair base into the bids and converts
// the average quote-asset price to RUB through the reference table.
func resolveOrderBook(in ResolveInput) (float64, *Fill, bool) {
	if in.Currency != in.Pair.Base || in.Depth == nil {
		return 0, nil, false
	}
	cross, ok := in.Reference.Rate(in.Pair.Quote)
	if !ok {
		return 0, nil, false
	}
	f := AverageFill(in.Depth.Bids, in.Amount)
	if !f.OK {
		return 0, &f, false
	}
	return f.AveragePrice * cross, &f, true
}
