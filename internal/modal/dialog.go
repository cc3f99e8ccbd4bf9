// Package modal models the product detail dialog: what it shows, how its
// quantity stepper is bounded, and how confirming commits to the cart.
package modal

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrotern2025/agrotern/internal/cart"
	"github.com/agrotern2025/agrotern/internal/catalog"
)

var (
	// ErrUnavailable is returned when confirming a product with no stock.
	ErrUnavailable = errors.New("modal: product is unavailable")
	// ErrNotOpen is returned when acting on a closed dialog.
	ErrNotOpen = errors.New("modal: dialog is not open")
)

// CloseReason records why the dialog was dismissed.
type CloseReason int

const (
	ReasonButton CloseReason = iota
	ReasonBackdrop
	ReasonEscape
	ReasonConfirm
)

func (r CloseReason) String() string {
	switch r {
	case ReasonButton:
		return "button"
	case ReasonBackdrop:
		return "backdrop"
	case ReasonEscape:
		return "escape"
	case ReasonConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// ParseCloseReason maps the client's dismissal source; unknown values are
// treated as the close button.
func ParseCloseReason(raw string) CloseReason {
	switch raw {
	case "backdrop":
		return ReasonBackdrop
	case "escape":
		return ReasonEscape
	case "confirm":
		return ReasonConfirm
	default:
		return ReasonButton
	}
}

// Adder commits a quantity of a line item to the cart.
type Adder interface {
	Add(ctx context.Context, item cart.LineItem, qty, stock int) (cart.LineItem, error)
}

// Dialog is the Closed/Open state machine. The zero value is closed.
type Dialog struct {
	open        bool
	product     catalog.Product
	returnFocus string
}

// Open shows product and remembers the element that had focus.
func (d *Dialog) Open(p catalog.Product, returnFocus string) {
	d.open = true
	d.product = p
	d.returnFocus = returnFocus
}

// IsOpen reports the dialog state.
func (d *Dialog) IsOpen() bool { return d.open }

// Product returns the displayed product.
func (d *Dialog) Product() (catalog.Product, bool) { return d.product, d.open }

// Close dismisses the dialog and returns the element id focus goes back to.
// Closing a closed dialog is a no-op returning "".
func (d *Dialog) Close(_ CloseReason) string {
	if !d.open {
		return ""
	}
	focus := d.returnFocus
	*d = Dialog{}
	return focus
}

// Confirm adds qty of the open product to the cart and closes the dialog.
// qty is clamped to the stepper bounds. Products without stock are rejected
// with ErrUnavailable and leave the dialog open.
func (d *Dialog) Confirm(ctx context.Context, store Adder, images catalog.ImageResolver, qty int) (cart.LineItem, string, error) {
	if !d.open {
		return cart.LineItem{}, "", ErrNotOpen
	}
	step := StepperFor(d.product)
	if step.Disabled {
		return cart.LineItem{}, "", ErrUnavailable
	}
	line, err := store.Add(ctx, cart.FromProduct(d.product, images), step.Clamp(qty), d.product.Stock)
	if err != nil {
		if errors.Is(err, cart.ErrOutOfStock) {
			return cart.LineItem{}, "", ErrUnavailable
		}
		return cart.LineItem{}, "", fmt.Errorf("confirm %s: %w", d.product.ID, err)
	}
	return line, d.Close(ReasonConfirm), nil
}
