package filter

import (
	"net/url"
	"strings"
)

// Navigation selects how a filter change is recorded in browser history.
type Navigation int

const (
	// Push adds a history entry.
	Push Navigation = iota
	// Replace rewrites the current entry.
	Replace
)

// HeaderName returns the htmx response header carrying the new URL.
func (n Navigation) HeaderName() string {
	if n == Replace {
		return "HX-Replace-Url"
	}
	return "HX-Push-Url"
}

// ParseNavigation reads "push" or "replace"; anything else is Push.
func ParseNavigation(raw string) Navigation {
	if strings.EqualFold(strings.TrimSpace(raw), "replace") {
		return Replace
	}
	return Push
}

// Patch is a partial filter change. A nil field is left untouched; a pointer
// to the empty string removes the parameter.
type Patch struct {
	Category    *string
	Subcategory *string
	Brand       *string
}

// PatchFromForm builds a patch from submitted form values. Only fields present
// in the form take part.
func PatchFromForm(form url.Values) Patch {
	var p Patch
	if vals, ok := form[ParamCategory]; ok {
		p.Category = strPtr(first(vals))
	}
	if vals, ok := form[ParamSubcategory]; ok {
		p.Subcategory = strPtr(first(vals))
	}
	if vals, ok := form[ParamBrand]; ok {
		p.Brand = strPtr(first(vals))
	}
	return p
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Category == nil && p.Subcategory == nil && p.Brand == nil
}

// Apply merges the patch into a copy of u. Setting a category clears sub and
// brand; setting a subcategory clears brand. Empty values delete their
// parameter and unrelated parameters are preserved.
func Apply(u *url.URL, p Patch) *url.URL {
	out := &url.URL{}
	if u != nil {
		*out = *u
	}
	q := out.Query()
	if p.Category != nil {
		q.Del(ParamSubcategory)
		q.Del(ParamBrand)
		setOrDelete(q, ParamCategory, *p.Category)
	}
	if p.Subcategory != nil {
		q.Del(ParamBrand)
		setOrDelete(q, ParamSubcategory, *p.Subcategory)
	}
	if p.Brand != nil {
		setOrDelete(q, ParamBrand, *p.Brand)
	}
	out.RawQuery = q.Encode()
	return out
}

func setOrDelete(q url.Values, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		q.Del(key)
		return
	}
	q.Set(key, value)
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

func strPtr(s string) *string { return &s }
