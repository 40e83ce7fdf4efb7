package application

import (
	"rubconv-service/internal/domain"

	"github.com/leekchan/accounting"
)

const placeholder = "—"

var rub = accounting.Accounting{
	Symbol:    "₽",
	Precision: 2,
	Thousand:  " ",
	Decimal:   ",",
	Format:    "%v %s",
}

// FormatRub renders a ruble amount the way the main button shows it.
func FormatRub(v float64) string {
	return rub.FormatMoneyFloat64(v)
}

// MainButtonLabel returns the host button text and whether it should be shown.
func MainButtonLabel(v domain.View) (string, bool) {
	if !v.Resolution.Resolved || v.Amount == nil {
		return placeholder, false
	}
	return "Save · " + FormatRub(v.RubResult), true
}
