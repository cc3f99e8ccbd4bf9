package catalog

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Card dimensions used when the feed omits them.
const (
	DefaultImageWidth  = 320
	DefaultImageHeight = 240
)

// Price is a product price in hryvnias. It encodes as a bare JSON number.
type Price struct {
	decimal.Decimal
}

// NewPrice builds a Price from an integer amount.
func NewPrice(amount int64) *Price {
	return &Price{Decimal: decimal.NewFromInt(amount)}
}

// MarshalJSON implements json.Marshaler.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler. Quoted numbers are accepted.
func (p *Price) UnmarshalJSON(b []byte) error {
	return p.Decimal.UnmarshalJSON(b)
}

// Product is one entry of the read-only feed.
type Product struct {
	ID          string
	Category    string
	Subcategory string
	Brand       string
	Title       string
	Price       *Price
	Image       string
	Desc        string
	LongDesc    string
	Stock       int
	Width       int
	Height      int
}

// Purchasable reports whether at least one unit is in stock.
func (p Product) Purchasable() bool { return p.Stock > 0 }

// DisplayWidth returns the card width, defaulting when the feed has none.
func (p Product) DisplayWidth() int {
	if p.Width > 0 {
		return p.Width
	}
	return DefaultImageWidth
}

// DisplayHeight returns the card height, defaulting when the feed has none.
func (p Product) DisplayHeight() int {
	if p.Height > 0 {
		return p.Height
	}
	return DefaultImageHeight
}

// IdentityKey returns the category|title pair used to deduplicate cart lines.
func IdentityKey(category, title string) string {
	return category + "|" + title
}

// DeriveID builds a stable identifier from the identity key.
func DeriveID(category, title string) string {
	sum := sha1.Sum([]byte(IdentityKey(category, title)))
	prefix := category
	if prefix == "" {
		prefix = "item"
	}
	return prefix + "-" + hex.EncodeToString(sum[:6])
}

type productJSON struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Subcat      string          `json:"subcat"`
	Subcategory string          `json:"subcategory"`
	Brand       string          `json:"brand"`
	Title       string          `json:"title"`
	Price       json.RawMessage `json:"price"`
	Image       string          `json:"image"`
	Desc        string          `json:"desc"`
	LongDesc    string          `json:"longDesc"`
	Stock       json.RawMessage `json:"stock"`
	Width       json.RawMessage `json:"width"`
	Height      json.RawMessage `json:"height"`
}

// UnmarshalJSON decodes a feed entry leniently: malformed prices become
// "on request", malformed stock becomes zero.
func (p *Product) UnmarshalJSON(b []byte) error {
	var raw productJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	sub := raw.Subcat
	if sub == "" {
		sub = raw.Subcategory
	}
	*p = Product{
		ID:          strings.TrimSpace(raw.ID),
		Category:    strings.TrimSpace(raw.Category),
		Subcategory: strings.TrimSpace(sub),
		Brand:       strings.TrimSpace(raw.Brand),
		Title:       raw.Title,
		Price:       DecodePrice(raw.Price),
		Image:       strings.TrimSpace(raw.Image),
		Desc:        raw.Desc,
		LongDesc:    raw.LongDesc,
		Stock:       DecodeCount(raw.Stock),
		Width:       DecodeCount(raw.Width),
		Height:      DecodeCount(raw.Height),
	}
	return nil
}

// MarshalJSON writes the feed representation of the product.
func (p Product) MarshalJSON() ([]byte, error) {
	out := struct {
		ID       string `json:"id,omitempty"`
		Category string `json:"category,omitempty"`
		Subcat   string `json:"subcat,omitempty"`
		Brand    string `json:"brand,omitempty"`
		Title    string `json:"title"`
		Price    *Price `json:"price"`
		Image    string `json:"image,omitempty"`
		Desc     string `json:"desc,omitempty"`
		LongDesc string `json:"longDesc,omitempty"`
		Stock    int    `json:"stock"`
		Width    int    `json:"width,omitempty"`
		Height   int    `json:"height,omitempty"`
	}{p.ID, p.Category, p.Subcategory, p.Brand, p.Title, p.Price, p.Image, p.Desc, p.LongDesc, p.Stock, p.Width, p.Height}
	return json.Marshal(out)
}

// DecodePrice reads a JSON price leniently. Absent, null, empty or
// non-numeric values mean "price on request" and decode to nil.
func DecodePrice(raw json.RawMessage) *Price {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" || string(raw) == `""` {
		return nil
	}
	var price Price
	if err := price.UnmarshalJSON(raw); err != nil {
		return nil
	}
	return &price
}

// DecodeCount reads a non-negative integer. Absent, non-numeric, negative or
// non-finite values decode to zero; fractions are truncated.
func DecodeCount(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0
	}
	s := strings.Trim(string(raw), `"`)
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
