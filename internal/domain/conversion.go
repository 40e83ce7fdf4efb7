package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses user input, accepting a decimal comma and
// space-grouped thousands ("1 000,50").
func ParseAmount(text string) (float64, bool) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ', '\t':
			return -1
		}
		return r
	}, text)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

// Convert returns amount*rate rounded to kopecks, or 0 when the rate is
// unresolved or the product does not fit a float64.
func Convert(amount, rate float64, resolved bool) float64 {
	if !resolved || !finite(amount) || !finite(rate) {
		return 0
	}
	out := decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(rate)).
		Round(2).
		InexactFloat64()
	if !finite(out) {
		return 0
	}
	return out
}

// Delta is the deviation of the resolved rate from the reference rate.
type Delta struct {
	Abs     float64 `json:"abs"`
	Pct     float64 `json:"pct"`
	OnTotal float64 `json:"on_total"`
}

// ComputeDelta reports false when either rate is missing; a computable
// zero deviation is returned as a zero Delta with true.
func ComputeDelta(resolved float64, resolvedOK bool, reference float64, referenceOK bool, amount float64) (Delta, bool) {
	if !resolvedOK || !referenceOK || reference == 0 || !finite(resolved) || !finite(reference) {
		return Delta{}, false
	}
	abs := resolved - reference
	d := Delta{Abs: abs, Pct: abs / reference * 100}
	if !finite(d.Abs) || !finite(d.Pct) {
		return Delta{}, false
	}
	if finite(amount) {
		d.OnTotal = amount * abs
	}
	if !finite(d.OnTotal) {
		return Delta{}, false
	}
	return d, true
}

// ValidSpread reports whether p is a usable haircut percentage.
func ValidSpread(p float64) bool { return finite(p) && p >= 0 && p < 100 }

// clampSpread ignores percentages outside [0,100).
func clampSpread(p float64) float64 {
	if !ValidSpread(p) {
		return 0
	}
	return p
}
