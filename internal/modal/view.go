package modal

import (
	"html/template"

	"github.com/agrotern2025/agrotern/internal/catalog"
	"github.com/agrotern2025/agrotern/internal/format"
)

// Stepper bounds the quantity input to [Min, Max].
type Stepper struct {
	Min      int
	Max      int
	Value    int
	Disabled bool
}

// StepperFor derives the stepper from stock: [1, max(stock, 0)], disabled
// when nothing is in stock.
func StepperFor(p catalog.Product) Stepper {
	stock := max(p.Stock, 0)
	if stock == 0 {
		return Stepper{Min: 1, Max: 0, Value: 1, Disabled: true}
	}
	return Stepper{Min: 1, Max: stock, Value: 1}
}

// Clamp bounds q to the stepper range.
func (s Stepper) Clamp(q int) int {
	if q < s.Min {
		return s.Min
	}
	if s.Max > 0 && q > s.Max {
		return s.Max
	}
	return q
}

// Labels supplies translated strings the view needs.
type Labels struct {
	PriceOnRequest string
	FallbackTitle  string
}

// View is the render model of an open dialog.
type View struct {
	ID               string
	Title            string
	Image            string
	Width            int
	Height           int
	Description      template.HTML
	CategoryLabel    string
	SubcategoryLabel string
	BrandLabel       string
	Price            string
	Stock            int
	Stepper          Stepper
	ConfirmDisabled  bool
	ReturnFocus      string
}

// Builder assembles dialog views.
type Builder struct {
	Taxonomy *catalog.Taxonomy
	Images   catalog.ImageResolver
	RichText *catalog.RichText
}

// Build renders the view of d's product. The long description wins over the
// short one and is rendered as Markdown; the short one is plain text.
func (b Builder) Build(d *Dialog, lang string, labels Labels) (View, error) {
	p, ok := d.Product()
	if !ok {
		return View{}, ErrNotOpen
	}
	title := p.Title
	if title == "" {
		title = labels.FallbackTitle
	}
	var desc template.HTML
	switch {
	case p.LongDesc != "" && b.RichText != nil:
		desc = b.RichText.Render(p.LongDesc)
	case p.LongDesc != "":
		desc = template.HTML(template.HTMLEscapeString(p.LongDesc))
	default:
		desc = template.HTML(template.HTMLEscapeString(p.Desc))
	}
	price := labels.PriceOnRequest
	if p.Price != nil {
		price = format.Money(p.Price.Decimal)
	}
	step := StepperFor(p)
	v := View{
		ID:            p.ID,
		Title:         title,
		Image:         b.Images.Resolve(p.Image),
		Width:         p.DisplayWidth(),
		Height:        p.DisplayHeight(),
		Description:   desc,
		CategoryLabel: b.Taxonomy.CategoryLabel(p.Category, lang),
		Price:         price,
		Stock:         p.Stock,
		Stepper:       step,
		// mirrors the stepper: nothing to confirm without stock
		ConfirmDisabled: step.Disabled,
		ReturnFocus:     d.returnFocus,
	}
	if p.Subcategory != "" {
		v.SubcategoryLabel = b.Taxonomy.SubcategoryLabel(p.Category, p.Subcategory, lang)
	}
	if p.Brand != "" {
		v.BrandLabel = b.Taxonomy.BrandLabel(p.Category, p.Brand, lang)
	}
	return v, nil
}
