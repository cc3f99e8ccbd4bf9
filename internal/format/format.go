package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	nbsp           = "\u00a0"
	hryvniaSymbol  = "₴"
	missingDisplay = "—"
)

// Money formats a hryvnia amount the way uk-UA prices are shown: whole
// hryvnias, non-breaking space thousands separator, trailing currency sign.
// Example: Money(decimal.NewFromInt(1200)) => "1\u00a0200\u00a0₴".
func Money(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().StringFixed(0)
	out := thousandSep(digits) + nbsp + hryvniaSymbol
	if rounded.IsNegative() {
		return "-" + out
	}
	return out
}

// Missing is the placeholder shown for a value that cannot be computed.
func Missing() string { return missingDisplay }

func thousandSep(s string) string {
	var b strings.Builder
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(c)
	}
	return b.String()
}
