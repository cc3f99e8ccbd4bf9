package catalog

import "strings"

// Category is one of the fixed catalog sections. The set is closed: values
// outside it never reach the rest of the system.
type Category string

// Known categories, in tab order.
const (
	CategoryAll       Category = "all"
	CategorySeeds     Category = "seeds"
	CategoryFert      Category = "fert"
	CategoryProtect   Category = "protect"
	CategoryCovers    Category = "covers"
	CategorySeedlings Category = "seedlings"
	CategoryBulbs     Category = "bulbs"
	CategoryOnionSets Category = "onionsets"
	CategoryMyc       Category = "myc"
)

var categories = []Category{
	CategoryAll,
	CategorySeeds,
	CategoryFert,
	CategoryProtect,
	CategoryCovers,
	CategorySeedlings,
	CategoryBulbs,
	CategoryOnionSets,
	CategoryMyc,
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory validates raw input against the closed set. Matching is exact.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range categories {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }
