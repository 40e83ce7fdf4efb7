package domain

import "time"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences are the user-editable parts of the session.
type Preferences struct {
	Theme         Theme   `json:"theme"`
	AutoFetch     bool    `json:"auto_fetch"`
	SpreadEnabled bool    `json:"spread_enabled"`
	SpreadPercent float64 `json:"spread_percent"`
	Source        Source  `json:"source"`
	CustomRate    string  `json:"custom_rate"`
	Currency      string  `json:"currency"`
	Amount        string  `json:"amount"`
}

// State is the whole session. It is persisted as one blob after every
// mutation; derived figures live in View and are never stored.
type State struct {
	Preferences Preferences      `json:"preferences"`
	Market      map[string]Quote `json:"market"`
	Reference   *ReferenceTable  `json:"reference,omitempty"`
	Depth       *DepthSnapshot   `json:"depth,omitempty"`
	History     History          `json:"history"`
	Loading     bool             `json:"loading"`
	Error       string           `json:"error,omitempty"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:         ThemeLight,
		AutoFetch:     true,
		SpreadEnabled: false,
		SpreadPercent: 1.2,
		Source:        SourceMarket,
		Currency:      "USD",
		Amount:        "100",
	}
}

func DefaultState() State {
	return State{
		Preferences: DefaultPreferences(),
		Market:      map[string]Quote{},
		History:     History{},
	}
}

// Normalize repairs a decoded state so that zero-valued fields from an
// older or partial blob behave like defaults.
func (s *State) Normalize() {
	def := DefaultPreferences()
	if s.Market == nil {
		s.Market = map[string]Quote{}
	}
	if s.History == nil {
		s.History = History{}
	}
	if len(s.History) > HistoryCap {
		s.History = s.History[:HistoryCap]
	}
	s.Preferences.Source = ParseSource(string(s.Preferences.Source))
	if c, ok := NormalizeCurrency(s.Preferences.Currency); ok {
		s.Preferences.Currency = c
	} else {
		s.Preferences.Currency = def.Currency
	}
	if s.Preferences.Theme != ThemeDark {
		s.Preferences.Theme = ThemeLight
	}
	if !ValidSpread(s.Preferences.SpreadPercent) {
		s.Preferences.SpreadPercent = def.SpreadPercent
	}
}

// Clone returns a deep copy safe to hand out of the state container.
func (s State) Clone() State {
	out := s
	out.Market = make(map[string]Quote, len(s.Market))
	for k, v := range s.Market {
		out.Market[k] = v
	}
	if s.Reference != nil {
		ref := ReferenceTable{FetchedAt: s.Reference.FetchedAt, Rates: make(map[string]float64, len(s.Reference.Rates))}
		for k, v := range s.Reference.Rates {
			ref.Rates[k] = v
		}
		out.Reference = &ref
	}
	if s.Depth != nil {
		d := *s.Depth
		d.Bids = append([]Level(nil), s.Depth.Bids...)
		d.Asks = append([]Level(nil), s.Depth.Asks...)
		out.Depth = &d
	}
	out.History = append(History{}, s.History...)
	return out
}

// ResolveInput builds the resolver input from the session.
func (s State) ResolveInput(pair Pair) ResolveInput {
	amount, _ := ParseAmount(s.Preferences.Amount)
	return ResolveInput{
		Currency:      s.Preferences.Currency,
		Amount:        amount,
		Source:        s.Preferences.Source,
		CustomRate:    s.Preferences.CustomRate,
		SpreadEnabled: s.Preferences.SpreadEnabled,
		SpreadPercent: s.Preferences.SpreadPercent,
		Market:        s.Market,
		Reference:     s.Reference,
		Depth:         s.Depth,
		Pair:          pair,
	}
}

// View is the session plus every derived figure.
type View struct {
	State      State      `json:"state"`
	Resolution Resolution `json:"resolution"`
	Amount     *float64   `json:"amount"`
	RubResult  float64    `json:"rub_result"`
	Reference  *float64   `json:"reference_rate"`
	Delta      *Delta     `json:"delta"`
	QuoteAge   *Duration  `json:"quote_age,omitempty"`
	Pair       Pair       `json:"pair"`
}

// Duration marshals as whole seconds.
type Duration int64

// Derive computes the view for the session at now.
func Derive(s State, pair Pair, now time.Time) View {
	in := s.ResolveInput(pair)
	res := ResolveRate(in)
	v := View{State: s, Resolution: res, Pair: pair}

	amount, amountOK := ParseAmount(s.Preferences.Amount)
	if amountOK {
		v.Amount = &amount
		v.RubResult = Convert(amount, res.Rate, res.Resolved)
	}

	ref, refOK := s.Reference.Rate(s.Preferences.Currency)
	if refOK {
		v.Reference = &ref
	}
	if d, ok := ComputeDelta(res.Rate, res.Resolved, ref, refOK, amount); ok {
		if !amountOK {
			d.OnTotal = 0
		}
		v.Delta = &d
	}
	if at, ok := s.fetchedAt(); ok && !at.IsZero() {
		age := Duration(now.Sub(at) / time.Second)
		v.QuoteAge = &age
	}
	return v
}

// fetchedAt is the timestamp of the data behind the selected source.
func (s State) fetchedAt() (time.Time, bool) {
	switch s.Preferences.Source {
	case SourceReference:
		if s.Reference != nil {
			return s.Reference.FetchedAt, true
		}
	case SourceOrderBook:
		if s.Depth != nil {
			return s.Depth.FetchedAt, true
		}
	default:
		if q, ok := s.Market[s.Preferences.Currency]; ok {
			return q.FetchedAt, true
		}
	}
	return time.Time{}, false
}
