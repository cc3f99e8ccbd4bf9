package httpserver

import (
	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/format"
	"github.com/agrotern2025/agrotern/internal/i18n"
)

// CartView aggregates the data of the cart page and its fragments.
type CartView struct {
	Lang    string
	Rows    []CartRowView
	Empty   bool
	Summary *CartSummaryView
}

// CartRowView is one line item row. Index is the row's position in storage.
type CartRowView struct {
	Lang          string
	Index         int
	Title         string
	Image         string
	CategoryLabel string
	Price         string
	Qty           int
	Subtotal      string
}

// CartSummaryView holds the count and total. It is omitted for an empty cart.
type CartSummaryView struct {
	Lang  string
	Count int
	Total string
}

// BadgeView is the header cart counter.
type BadgeView struct {
	Count int
}

type cartViewBuilder struct {
	taxonomy *catalog.Taxonomy
	images   catalog.ImageResolver
	bundle   *i18n.Bundle
}

func (b cartViewBuilder) build(lang string, items []cart.LineItem) CartView {
	v := CartView{Lang: lang, Empty: len(items) == 0}
	if v.Empty {
		return v
	}
	onRequest := b.bundle.T(lang, "product.price_on_request")
	for i, li := range items {
		row := CartRowView{
			Lang:     lang,
			Index:    i,
			Title:    li.Title,
			Image:    b.images.Resolve(li.Image),
			Qty:      max(li.Qty, cart.MinQty),
			Price:    onRequest,
			Subtotal: format.Missing(),
		}
		if row.Title == "" {
			row.Title = b.bundle.T(lang, "product.fallback_title")
		}
		if li.Category != "" {
			row.CategoryLabel = b.taxonomy.CategoryLabel(li.Category, lang)
		}
		if li.Price != nil {
			row.Price = format.Money(li.Price.Decimal)
		}
		if sub := li.Subtotal(); sub != nil {
			row.Subtotal = format.Money(sub.Decimal)
		}
		v.Rows = append(v.Rows, row)
	}
	sum := cart.Summarize(items)
	v.Summary = &CartSummaryView{Lang: lang, Count: sum.Count, Total: format.Money(sum.Total.Decimal)}
	return v
}
