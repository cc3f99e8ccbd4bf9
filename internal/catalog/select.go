package catalog

import "strings"

const (
	// PreviewPerCategory is how many products each category contributes to the "all" view.
	PreviewPerCategory = 2
	// PageSize caps the products shown for a single category.
	PageSize = 12
)

// Criteria is the resolved filter used to pick visible products.
type Criteria struct {
	Category    Category
	Subcategory string
	Brand       string
}

// Select computes the visible product list for the criteria.
//
// For the "all" category the first PreviewPerCategory products of every group
// are taken in feed order. For a specific category the group is filtered by
// subcategory and then brand (case-insensitive exact match) and the filtered
// result is truncated to PageSize.
func Select(feed *Feed, c Criteria) []Product {
	if feed == nil {
		return nil
	}

	var items []Product
	if c.Category == CategoryAll || c.Category == "" {
		for _, g := range feed.Groups {
			n := len(g.Products)
			if n > PreviewPerCategory {
				n = PreviewPerCategory
			}
			items = append(items, g.Products[:n]...)
		}
	} else {
		items = append(items, feed.Group(string(c.Category))...)
	}

	if c.Subcategory != "" {
		items = filterBy(items, c.Subcategory, func(p Product) string { return p.Subcategory })
	}
	if c.Brand != "" {
		items = filterBy(items, c.Brand, func(p Product) string { return p.Brand })
	}

	if c.Category != CategoryAll && c.Category != "" && len(items) > PageSize {
		items = items[:PageSize]
	}
	return items
}

func filterBy(items []Product, want string, field func(Product) string) []Product {
	out := items[:0:0]
	for _, p := range items {
		if strings.EqualFold(field(p), want) {
			out = append(out, p)
		}
	}
	return out
}
