package domain

import (
	"regexp"
	"strings"
)

type Source string

const (
	SourceMarket    Source = "market"
	SourceReference Source = "reference"
	SourceOrderBook Source = "orderbook"
)

// ParseSource maps unknown values to the market source.
func ParseSource(s string) Source {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceReference:
		return SourceReference
	case SourceOrderBook:
		return SourceOrderBook
	default:
		return SourceMarket
	}
}

func (s Source) Valid() bool {
	return s == SourceMarket || s == SourceReference || s == SourceOrderBook
}

// Pair is the trading pair tracked by the order-book source.
type Pair struct {
	Base   string `json:"base"`
	Quote  string `json:"quote"`
	Symbol string `json:"symbol"`
}

var DefaultPair = Pair{Base: "USDT", Quote: "THB", Symbol: "USDTTHB"}

var SupportedCurrency = map[string]bool{
	"USD":  true,
	"EUR":  true,
	"CNY":  true,
	"THB":  true,
	"TRY":  true,
	"AED":  true,
	"KZT":  true,
	"GBP":  true,
	"USDT": true,
}

var currencyRe = regexp.MustCompile(`^[A-Z]{3,5}$`)

// NormalizeCurrency upper-cases code and reports whether it can be converted to RUB.
func NormalizeCurrency(code string) (string, bool) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !currencyRe.MatchString(c) {
		return "", false
	}
	return c, SupportedCurrency[c]
}
