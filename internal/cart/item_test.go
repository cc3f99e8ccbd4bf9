package cart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrotern2025/agrotern/internal/catalog"
)

func TestDecodeStates(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		present bool
		state   DecodeState
		count   int
	}{
		{"absent", "", false, StateEmpty, 0},
		{"blank", "  ", true, StateEmpty, 0},
		{"malformed json", "{not json", true, StateMalformed, 0},
		{"object instead of list", `{"title":"x"}`, true, StateMalformed, 0},
		{"empty list", "[]", true, StateOK, 0},
		{"list", `[{"category":"seeds","title":"Pea A","price":100,"qty":2}]`, true, StateOK, 1},
		{"null rows skipped", `[null, 3, {"title":"x"}]`, true, StateOK, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Decode(tc.raw, tc.present)
			assert.Equal(t, tc.state, got.State)
			require.NotNil(t, got.Items)
			assert.Len(t, got.Items, tc.count)
		})
	}
}

func TestDecodeNormalisesRows(t *testing.T) {
	got := Decode(`[{"category":"seeds","title":"Pea A","price":"n/a"},{"category":"fert","title":"Humate","price":80,"qty":5000}]`, true)
	require.Equal(t, StateOK, got.State)
	require.Len(t, got.Items, 2)

	assert.Nil(t, got.Items[0].Price)
	assert.Equal(t, 1, got.Items[0].Qty, "missing qty reads as one")
	assert.Equal(t, MaxQty, got.Items[1].Qty)
}

func TestEncodeDecodeKeepsItems(t *testing.T) {
	items := []LineItem{
		{Category: "seeds", Title: "Pea A", Brand: "yaskrava", Price: catalog.NewPrice(100), Image: "/agrotern/img/pea.png", Qty: 2},
		{Category: "fert", Title: "Humate", Qty: 1},
	}
	raw, err := Encode(items)
	require.NoError(t, err)

	got := Decode(raw, true)
	require.Equal(t, StateOK, got.State)
	if diff := cmp.Diff(items, got.Items, cmp.Comparer(func(a, b catalog.Price) bool { return a.Equal(b.Decimal) })); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	raw, err = Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestSubtotal(t *testing.T) {
	li := LineItem{Category: "seeds", Title: "Pea A", Price: catalog.NewPrice(100), Qty: 2}
	require.NotNil(t, li.Subtotal())
	assert.Equal(t, "200", li.Subtotal().String())

	li.Price = nil
	assert.Nil(t, li.Subtotal())
}

func TestFromProductResolvesImage(t *testing.T) {
	images := catalog.NewImageResolver("/agrotern", "/agrotern/img/", "placeholder.png")
	p := catalog.Product{ID: "seeds-1", Category: "seeds", Title: "Pea A", Brand: "profi", Price: catalog.NewPrice(100), Image: "pea.png", Stock: 3}

	li := FromProduct(p, images)
	assert.Equal(t, "/agrotern/img/pea.png", li.Image)
	assert.Equal(t, "seeds|Pea A", li.IdentityKey())
	assert.Equal(t, 1, li.Qty)
}
