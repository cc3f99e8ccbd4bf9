package httpserver

import (
	"net/url"
	"strings"

	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/filter"
	"github.com/agrotern2025/agrotern/internal/format"
	"github.com/agrotern2025/agrotern/internal/i18n"
)

const (
	catalogPath = "/products"
	gridPath    = "/products/grid"
	// addedRevertMS is how long the add button shows its confirmation label.
	addedRevertMS = 1200
	// currencyCode is the ISO 4217 code of every feed price.
	currencyCode = "UAH"
)

// CatalogView is the model of the filter controls and product grid.
type CatalogView struct {
	Lang          string
	GridURL       string
	Category      catalog.Category
	Tabs          []TabView
	Subcategories []ChipView
	Brands        []ChipView
	Cards         []CardView
}

// TabView is one category tab and select option.
type TabView struct {
	Key      string
	Label    string
	Selected bool
}

// ChipView is a subcategory or brand option rendered as chip and select option.
type ChipView struct {
	Key     string
	Label   string
	Pressed bool
}

// CardView is one product card.
type CardView struct {
	Lang             string
	ID               string
	Title            string
	Alt              string
	Desc             string
	Image            string
	Width            int
	Height           int
	CategoryLabel    string
	SubcategoryLabel string
	BrandLabel       string
	Price            string
	Add              AddButtonView
}

// AddButtonView is the add-to-cart control of a card.
type AddButtonView struct {
	Lang     string
	ID       string
	Added    bool
	Disabled bool
	RevertMS int
}

// HomeView lists the category tiles of the landing page.
type HomeView struct {
	Categories []HomeCategory
}

// HomeCategory links one category tile to the filtered catalog.
type HomeCategory struct {
	Label string
	Href  string
}

type catalogViewBuilder struct {
	taxonomy *catalog.Taxonomy
	images   catalog.ImageResolver
	bundle   *i18n.Bundle
}

func (b catalogViewBuilder) build(lang string, st filter.State, products []catalog.Product) CatalogView {
	v := CatalogView{
		Lang:     lang,
		GridURL:  gridPath,
		Category: st.Category,
	}
	for _, c := range catalog.Categories() {
		v.Tabs = append(v.Tabs, TabView{
			Key:      string(c),
			Label:    b.taxonomy.CategoryLabel(string(c), lang),
			Selected: c == st.Category,
		})
	}
	if !st.IsAll() {
		for _, o := range b.taxonomy.Subcategories(st.Category) {
			v.Subcategories = append(v.Subcategories, ChipView{Key: o.Key, Label: o.Label(lang), Pressed: o.Key == st.Subcategory})
		}
		for _, o := range b.taxonomy.Brands(st.Category) {
			v.Brands = append(v.Brands, ChipView{Key: o.Key, Label: o.Label(lang), Pressed: o.Key == st.Brand})
		}
	}
	for _, p := range products {
		v.Cards = append(v.Cards, b.card(lang, p))
	}
	return v
}

func (b catalogViewBuilder) card(lang string, p catalog.Product) CardView {
	title := p.Title
	if title == "" {
		title = b.bundle.T(lang, "product.untitled")
	}
	alt := p.Title
	if alt == "" {
		alt = b.bundle.T(lang, "product.fallback_title")
	}
	c := CardView{
		Lang:          lang,
		ID:            p.ID,
		Title:         title,
		Alt:           alt,
		Desc:          p.Desc,
		Image:         b.images.Resolve(p.Image),
		Width:         p.DisplayWidth(),
		Height:        p.DisplayHeight(),
		CategoryLabel: b.taxonomy.CategoryLabel(p.Category, lang),
		Add:           AddButtonView{Lang: lang, ID: p.ID, Disabled: !p.Purchasable(), RevertMS: addedRevertMS},
	}
	if p.Category == "" {
		c.CategoryLabel = ""
	}
	if p.Subcategory != "" {
		c.SubcategoryLabel = b.taxonomy.SubcategoryLabel(p.Category, p.Subcategory, lang)
	}
	if p.Brand != "" {
		c.BrandLabel = b.taxonomy.BrandLabel(p.Category, p.Brand, lang)
	}
	// cards leave the price blank when it is on request
	if p.Price != nil {
		c.Price = format.Money(p.Price.Decimal)
	}
	return c
}

func (b catalogViewBuilder) home(lang string) HomeView {
	var v HomeView
	for _, c := range catalog.Categories() {
		if c == catalog.CategoryAll {
			continue
		}
		q := url.Values{filter.ParamCategory: {string(c)}}
		v.Categories = append(v.Categories, HomeCategory{
			Label: b.taxonomy.CategoryLabel(string(c), lang),
			Href:  catalogPath + "?" + q.Encode(),
		})
	}
	return v
}

// catalogURL returns the catalog location for st, omitting defaults.
func catalogURL(st filter.State) string {
	if q := st.Query().Encode(); q != "" {
		return catalogPath + "?" + q
	}
	return catalogPath
}

// currentCatalogURL recovers the catalog URL the browser is showing from the
// htmx current-URL header. Anything that is not the catalog page falls back to
// the bare catalog path.
func currentCatalogURL(raw string) *url.URL {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" || strings.TrimRight(u.Path, "/") != catalogPath {
		return &url.URL{Path: catalogPath}
	}
	return &url.URL{Path: catalogPath, RawQuery: u.RawQuery}
}
