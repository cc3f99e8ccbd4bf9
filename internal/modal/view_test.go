package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrotern2025/agrotern/internal/catalog"
)

var testLabels = Labels{PriceOnRequest: "за запитом", FallbackTitle: "Товар"}

func newBuilder(t *testing.T) Builder {
	t.Helper()
	tax, err := catalog.DefaultTaxonomy()
	require.NoError(t, err)
	return Builder{Taxonomy: tax, Images: testImages, RichText: catalog.NewRichText()}
}

func TestStepperFor(t *testing.T) {
	s := StepperFor(pea(4))
	assert.Equal(t, Stepper{Min: 1, Max: 4, Value: 1}, s)
	assert.Equal(t, 1, s.Clamp(0))
	assert.Equal(t, 4, s.Clamp(9))
	assert.Equal(t, 2, s.Clamp(2))

	empty := StepperFor(pea(-2))
	assert.True(t, empty.Disabled)
	assert.Equal(t, 0, empty.Max)
}

func TestBuildView(t *testing.T) {
	b := newBuilder(t)
	var d Dialog
	d.Open(pea(5), "card-1")

	v, err := b.Build(&d, "uk", testLabels)
	require.NoError(t, err)
	assert.Equal(t, "Pea A", v.Title)
	assert.Equal(t, "/agrotern/img/pea.png", v.Image)
	assert.Equal(t, "Насіння", v.CategoryLabel)
	assert.Equal(t, "Горох", v.SubcategoryLabel)
	assert.Equal(t, "Яскрава", v.BrandLabel)
	assert.Equal(t, "100\u00a0₴", v.Price)
	assert.Equal(t, "Short &lt;b&gt;text&lt;/b&gt;", string(v.Description))
	assert.False(t, v.ConfirmDisabled)
	assert.Equal(t, "card-1", v.ReturnFocus)
}

func TestBuildViewPrefersLongDescription(t *testing.T) {
	b := newBuilder(t)
	p := pea(0)
	p.Price = nil
	p.Title = ""
	p.LongDesc = "**Rich** text"

	var d Dialog
	d.Open(p, "")
	v, err := b.Build(&d, "en", testLabels)
	require.NoError(t, err)
	assert.Contains(t, string(v.Description), "<strong>Rich</strong>")
	assert.Equal(t, "за запитом", v.Price)
	assert.Equal(t, "Товар", v.Title)
	assert.Equal(t, "Seeds", v.CategoryLabel)
	assert.True(t, v.ConfirmDisabled)
	assert.True(t, v.Stepper.Disabled)
}

func TestBuildViewClosed(t *testing.T) {
	_, err := newBuilder(t).Build(&Dialog{}, "uk", testLabels)
	assert.ErrorIs(t, err, ErrNotOpen)
}
