// Package filter resolves the catalog filter from the request URL and writes
// filter changes back into it.
package filter

import (
	"net/url"
	"strings"

	"github.com/agrotern2025/agrotern/internal/catalog"
)

// Query parameter names.
const (
	ParamCategory    = "cat"
	ParamSubcategory = "sub"
	ParamBrand       = "brand"
)

// State is the resolved filter: a category from the closed set plus optional
// subcategory and brand valid for it.
type State struct {
	Category    catalog.Category
	Subcategory string
	Brand       string
}

// Default returns the unfiltered state.
func Default() State {
	return State{Category: catalog.CategoryAll}
}

// FromQuery reads the filter from query parameters. Values that are not valid
// for the resolved category collapse to their defaults, so the result never
// names a subcategory or brand its category does not offer.
func FromQuery(q url.Values, tax *catalog.Taxonomy) State {
	st := Default()
	if cat, ok := catalog.ParseCategory(q.Get(ParamCategory)); ok {
		st.Category = cat
	}
	if sub := strings.TrimSpace(q.Get(ParamSubcategory)); tax.ValidSubcategory(st.Category, sub) {
		st.Subcategory = sub
	}
	if brand := strings.TrimSpace(q.Get(ParamBrand)); tax.ValidBrand(st.Category, brand) {
		st.Brand = brand
	}
	return st
}

// Criteria converts the state into catalog selection criteria.
func (s State) Criteria() catalog.Criteria {
	return catalog.Criteria{Category: s.Category, Subcategory: s.Subcategory, Brand: s.Brand}
}

// IsAll reports whether the state shows the multi-category preview.
func (s State) IsAll() bool { return s.Category == catalog.CategoryAll }

// Query encodes the state as URL parameters, omitting defaults.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Category != "" && s.Category != catalog.CategoryAll {
		q.Set(ParamCategory, string(s.Category))
	}
	if s.Subcategory != "" {
		q.Set(ParamSubcategory, s.Subcategory)
	}
	if s.Brand != "" {
		q.Set(ParamBrand, s.Brand)
	}
	return q
}
