package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrOutOfStock is returned when adding a product with no stock left.
var ErrOutOfStock = errors.New("cart: product is out of stock")

// Origin identifies who is writing: the visitor's area and the tab.
type Origin struct {
	Area string
	Tab  string
}

// Store reads and mutates the cart held in one storage area. Every write
// replaces the whole list and notifies subscribers; concurrent writers are
// not coordinated and the last write wins.
type Store struct {
	area     Area
	origin   Origin
	notifier Notifier
	logger   *zap.Logger
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithNotifier sets where change notifications go.
func WithNotifier(n Notifier) StoreOption {
	return func(s *Store) { s.notifier = n }
}

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore binds a store to the area of origin.
func NewStore(area Area, origin Origin, opts ...StoreOption) *Store {
	s := &Store{area: area, origin: origin, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the stored items. Absent or malformed content reads as an
// empty cart; only storage failures are reported.
func (s *Store) Read(ctx context.Context) ([]LineItem, error) {
	raw, ok, err := s.area.GetItem(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	decoded := Decode(raw, ok)
	if decoded.State == StateMalformed {
		s.logger.Debug("ignoring malformed cart content", zap.String("area", s.origin.Area))
	}
	return decoded.Items, nil
}

// Write persists items and then notifies subscribers.
func (s *Store) Write(ctx context.Context, items []LineItem) error {
	raw, err := Encode(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.area.SetItem(ctx, Key, raw); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	if s.notifier != nil {
		change := Change{Area: s.origin.Area, Key: Key, Tab: s.origin.Tab}
		if err := s.notifier.Publish(ctx, change); err != nil {
			s.logger.Warn("cart change notification failed", zap.Error(err))
		}
	}
	return nil
}

// Add merges item into the cart. An existing row with the same identity
// grows by qty; otherwise item is appended. The resulting quantity is capped
// at stock when known (pass UnknownStock otherwise) and never exceeds MaxQty.
// A stock of zero is rejected with ErrOutOfStock and nothing is written.
func (s *Store) Add(ctx context.Context, item LineItem, qty, stock int) (LineItem, error) {
	if stock == 0 {
		return LineItem{}, ErrOutOfStock
	}
	if qty < MinQty {
		qty = MinQty
	}
	limit := addLimit(stock)

	items, err := s.Read(ctx)
	if err != nil {
		return LineItem{}, err
	}
	key := item.IdentityKey()
	pos := -1
	for i := range items {
		if items[i].IdentityKey() == key {
			pos = i
			break
		}
	}
	if pos >= 0 {
		items[pos].Qty = min(items[pos].Qty+qty, limit)
	} else {
		item.Qty = min(qty, limit)
		items = append(items, item)
		pos = len(items) - 1
	}
	if err := s.Write(ctx, items); err != nil {
		return LineItem{}, err
	}
	return items[pos], nil
}

// SetQty sets the quantity of the row at index, clamped to [MinQty, MaxQty].
// Out-of-range indexes are ignored. It reports whether a write happened.
func (s *Store) SetQty(ctx context.Context, index, qty int) (bool, error) {
	items, err := s.Read(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(items) {
		return false, nil
	}
	items[index].Qty = ClampQty(qty)
	return true, s.Write(ctx, items)
}

// RemoveAt deletes the row at index. Out-of-range indexes are ignored.
func (s *Store) RemoveAt(ctx context.Context, index int) (bool, error) {
	items, err := s.Read(ctx)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(items) {
		return false, nil
	}
	items = append(items[:index], items[index+1:]...)
	return true, s.Write(ctx, items)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.Write(ctx, []LineItem{})
}

// Summary reads the cart and aggregates it.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	items, err := s.Read(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(items), nil
}
