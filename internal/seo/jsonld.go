package seo

import (
	"encoding/json"
	"html/template"

	"github.com/shopspring/decimal"
)

// Script is a JSON document safe to emit inside <script type="application/ld+json">.
type Script = template.JS

// JSON marshals v for a JSON-LD script. It returns an empty script on error.
// encoding/json escapes <, > and & so the payload cannot close the tag.
func JSON(v any) Script {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return Script(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// ProductItem is one product of an ItemList.
type ProductItem struct {
	Name        string
	Description string
	Image       string
	SKU         string
	Brand       string
	// Price is nil when the product is sold on request; the offer is omitted.
	Price   *decimal.Decimal
	InStock bool
}

// Product returns a product schema payload without @context.
func Product(p ProductItem, currency string) map[string]any {
	m := map[string]any{
		"@type": "Product",
		"name":  p.Name,
	}
	if p.Description != "" {
		m["description"] = p.Description
	}
	if p.Image != "" {
		m["image"] = p.Image
	}
	if p.SKU != "" {
		m["sku"] = p.SKU
	}
	if p.Brand != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": p.Brand}
	}
	if p.Price != nil {
		availability := "https://schema.org/OutOfStock"
		if p.InStock {
			availability = "https://schema.org/InStock"
		}
		m["offers"] = map[string]any{
			"@type":         "Offer",
			"price":         p.Price.StringFixed(2),
			"priceCurrency": currency,
			"availability":  availability,
		}
	}
	return m
}

// ItemList wraps products in a schema.org ItemList, preserving order.
func ItemList(items []ProductItem, currency string) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"item":     Product(it, currency),
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "ItemList",
		"numberOfItems":   len(items),
		"itemListElement": el,
	}
}
