package catalog

import "errors"

// ErrUnknownProduct is returned when an id does not resolve to a feed product.
var ErrUnknownProduct = errors.New("catalog: unknown product")

// Index maps stable product ids to feed products so UI controls only need to
// carry the id.
type Index struct {
	byID map[string]Product
}

// NewIndex indexes every product of the feed. DecodeFeed guarantees unique
// ids; for hand-built feeds the first product with an id wins.
func NewIndex(feed *Feed) *Index {
	idx := &Index{byID: make(map[string]Product)}
	for _, p := range feed.Products() {
		if _, exists := idx.byID[p.ID]; exists {
			continue
		}
		idx.byID[p.ID] = p
	}
	return idx
}

// Lookup returns the product with the given id.
func (i *Index) Lookup(id string) (Product, error) {
	if i == nil {
		return Product{}, ErrUnknownProduct
	}
	p, ok := i.byID[id]
	if !ok {
		return Product{}, ErrUnknownProduct
	}
	return p, nil
}

// Len reports the number of indexed products.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byID)
}
