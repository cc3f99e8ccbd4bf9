package cart

import (
	"math"
	"strconv"
	"strings"
)

// Quantity bounds applied to every line item.
const (
	MinQty = 1
	MaxQty = 999
)

// UnknownStock marks an add where the remaining stock is not known.
const UnknownStock = -1

// ClampQty bounds q to [MinQty, MaxQty].
func ClampQty(q int) int {
	if q < MinQty {
		return MinQty
	}
	if q > MaxQty {
		return MaxQty
	}
	return q
}

// ParseQty coerces form input to a quantity. Blank, zero and non-numeric
// input read as one; fractions are truncated; the result is clamped.
func ParseQty(raw string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || v == 0 {
		return MinQty
	}
	if v >= MaxQty {
		return MaxQty
	}
	if v < MinQty {
		return MinQty
	}
	return int(v)
}

// addLimit is the ceiling for the add path: the stock when it is known,
// otherwise MaxQty.
func addLimit(stock int) int {
	if stock < 0 || stock > MaxQty {
		return MaxQty
	}
	return stock
}
