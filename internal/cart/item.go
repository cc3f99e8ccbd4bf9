// Package cart owns the persisted shopping cart: line items, the store that
// mutates them, the storage areas they live in and change notification.
package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agrotern2025/agrotern/internal/catalog"
)

// Key is the storage key the cart is persisted under.
const Key = "agro_cart_v1"

// LineItem is one persisted cart row. Category and Title form its identity.
type LineItem struct {
	Category string         `json:"category"`
	Title    string         `json:"title"`
	Brand    string         `json:"brand,omitempty"`
	Price    *catalog.Price `json:"price"`
	Image    string         `json:"image,omitempty"`
	Qty      int            `json:"qty"`
}

// FromProduct builds a line item for p with its image already resolved.
func FromProduct(p catalog.Product, images catalog.ImageResolver) LineItem {
	return LineItem{
		Category: p.Category,
		Title:    p.Title,
		Brand:    p.Brand,
		Price:    p.Price,
		Image:    images.Resolve(p.Image),
		Qty:      1,
	}
}

// IdentityKey returns the dedup key of the item.
func (li LineItem) IdentityKey() string {
	return catalog.IdentityKey(li.Category, li.Title)
}

// Subtotal returns price times quantity, or nil when the price is unknown.
func (li LineItem) Subtotal() *catalog.Price {
	if li.Price == nil {
		return nil
	}
	return &catalog.Price{Decimal: li.Price.Mul(decimal.NewFromInt(int64(li.Qty)))}
}

type lineItemJSON struct {
	Category string          `json:"category"`
	Title    string          `json:"title"`
	Brand    string          `json:"brand"`
	Price    json.RawMessage `json:"price"`
	Image    string          `json:"image"`
	Qty      json.RawMessage `json:"qty"`
}

// UnmarshalJSON tolerates rows written by older or foreign clients: a
// malformed price reads as unknown and a missing quantity as one.
func (li *LineItem) UnmarshalJSON(b []byte) error {
	var raw lineItemJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*li = LineItem{
		Category: raw.Category,
		Title:    raw.Title,
		Brand:    raw.Brand,
		Price:    catalog.DecodePrice(raw.Price),
		Image:    raw.Image,
		Qty:      ClampQty(catalog.DecodeCount(raw.Qty)),
	}
	return nil
}

// DecodeState describes what Decode found in storage.
type DecodeState int

const (
	// StateEmpty means nothing was stored.
	StateEmpty DecodeState = iota
	// StateMalformed means stored content could not be parsed and was ignored.
	StateMalformed
	// StateOK means the stored list was parsed.
	StateOK
)

func (s DecodeState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateMalformed:
		return "malformed"
	case StateOK:
		return "ok"
	default:
		return "unknown"
	}
}

// Decoded is the result of reading stored cart content. Items is never nil.
type Decoded struct {
	Items []LineItem
	State DecodeState
}

var errNotList = errors.New("cart: stored value is not a list")

// Decode parses stored cart content. It never fails: absent and malformed
// content both yield an empty list, distinguished only by State.
func Decode(raw string, present bool) Decoded {
	if !present || strings.TrimSpace(raw) == "" {
		return Decoded{Items: []LineItem{}, State: StateEmpty}
	}
	items, err := decodeList([]byte(raw))
	if err != nil {
		return Decoded{Items: []LineItem{}, State: StateMalformed}
	}
	return Decoded{Items: items, State: StateOK}
}

func decodeList(raw []byte) ([]LineItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, errNotList
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, err
	}
	items := make([]LineItem, 0, len(elems))
	for _, e := range elems {
		// null rows and non-objects carry nothing renderable.
		if t := bytes.TrimSpace(e); len(t) == 0 || t[0] != '{' {
			continue
		}
		var li LineItem
		if err := json.Unmarshal(e, &li); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, nil
}

// Encode serialises the full list for storage.
func Encode(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
