package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultLabelLang = "uk"

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// Option is a selectable subcategory or brand.
type Option struct {
	Key    string
	labels map[string]string
}

// Label returns the option label in lang, falling back to Ukrainian and then the key.
func (o Option) Label(lang string) string {
	return pickLabel(o.labels, lang, o.Key)
}

type categoryEntry struct {
	labels        map[string]string
	subcategories []Option
	brands        []Option
}

// Taxonomy holds the static per-category tables: labels, valid subcategories
// and valid brands.
type Taxonomy struct {
	entries map[Category]categoryEntry
}

type taxonomyDoc struct {
	Categories []struct {
		Key           string            `yaml:"key"`
		Labels        map[string]string `yaml:"labels"`
		Subcategories []optionDoc       `yaml:"subcategories"`
		Brands        []optionDoc       `yaml:"brands"`
	} `yaml:"categories"`
}

type optionDoc struct {
	Key    string            `yaml:"key"`
	Labels map[string]string `yaml:"labels"`
}

// DefaultTaxonomy parses the embedded category tables.
func DefaultTaxonomy() (*Taxonomy, error) {
	return ParseTaxonomy(defaultTaxonomy)
}

// ParseTaxonomy decodes a YAML taxonomy document. Category keys outside the
// closed set are rejected.
func ParseTaxonomy(raw []byte) (*Taxonomy, error) {
	var doc taxonomyDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("taxonomy: decode: %w", err)
	}

	t := &Taxonomy{entries: make(map[Category]categoryEntry, len(categories))}
	for _, c := range doc.Categories {
		cat, ok := ParseCategory(c.Key)
		if !ok {
			return nil, fmt.Errorf("taxonomy: unknown category %q", c.Key)
		}
		if _, dup := t.entries[cat]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate category %q", c.Key)
		}
		if cat == CategoryAll && (len(c.Subcategories) > 0 || len(c.Brands) > 0) {
			return nil, fmt.Errorf("taxonomy: %q cannot carry filters", c.Key)
		}
		subs, err := buildOptions(c.Key, "subcategory", c.Subcategories)
		if err != nil {
			return nil, err
		}
		brands, err := buildOptions(c.Key, "brand", c.Brands)
		if err != nil {
			return nil, err
		}
		t.entries[cat] = categoryEntry{
			labels:        c.Labels,
			subcategories: subs,
			brands:        brands,
		}
	}
	return t, nil
}

func buildOptions(cat, kind string, docs []optionDoc) ([]Option, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]Option, 0, len(docs))
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		key := strings.TrimSpace(d.Key)
		if key == "" {
			return nil, fmt.Errorf("taxonomy: %s %s with empty key", cat, kind)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("taxonomy: %s duplicate %s %q", cat, kind, key)
		}
		seen[key] = struct{}{}
		out = append(out, Option{Key: key, labels: d.Labels})
	}
	return out, nil
}

// Subcategories lists the subcategory options valid for cat.
func (t *Taxonomy) Subcategories(cat Category) []Option {
	if t == nil {
		return nil
	}
	return append([]Option(nil), t.entries[cat].subcategories...)
}

// Brands lists the brand options valid for cat.
func (t *Taxonomy) Brands(cat Category) []Option {
	if t == nil {
		return nil
	}
	return append([]Option(nil), t.entries[cat].brands...)
}

// ValidSubcategory reports whether key is a subcategory of cat.
func (t *Taxonomy) ValidSubcategory(cat Category, key string) bool {
	_, ok := t.find(t.Subcategories(cat), key)
	return ok
}

// ValidBrand reports whether key is a brand offered in cat.
func (t *Taxonomy) ValidBrand(cat Category, key string) bool {
	_, ok := t.find(t.Brands(cat), key)
	return ok
}

// CategoryLabel returns the display label for a category key. Unknown keys are
// returned unchanged.
func (t *Taxonomy) CategoryLabel(key, lang string) string {
	cat, ok := ParseCategory(key)
	if !ok || t == nil {
		return key
	}
	return pickLabel(t.entries[cat].labels, lang, key)
}

// SubcategoryLabel returns the label of sub within cat, or sub itself.
func (t *Taxonomy) SubcategoryLabel(catKey, sub, lang string) string {
	cat, _ := ParseCategory(catKey)
	if opt, ok := t.find(t.Subcategories(cat), sub); ok {
		return opt.Label(lang)
	}
	return sub
}

// BrandLabel returns the label of brand within cat, or brand itself.
func (t *Taxonomy) BrandLabel(catKey, brand, lang string) string {
	cat, _ := ParseCategory(catKey)
	if opt, ok := t.find(t.Brands(cat), brand); ok {
		return opt.Label(lang)
	}
	return brand
}

func (t *Taxonomy) find(opts []Option, key string) (Option, bool) {
	if key == "" {
		return Option{}, false
	}
	for _, o := range opts {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

func pickLabel(labels map[string]string, lang, fallback string) string {
	if v := labels[strings.ToLower(lang)]; v != "" {
		return v
	}
	if v := labels[defaultLabelLang]; v != "" {
		return v
	}
	return fallback
}
