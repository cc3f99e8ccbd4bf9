package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestApply(t *testing.T) {
	cases := []struct {
		name  string
		start string
		patch Patch
		want  url.Values
	}{
		{
			name:  "category change clears sub and brand",
			start: "/products?cat=seeds&sub=peas&brand=profi&ref=x",
			patch: Patch{Category: strPtr("protect")},
			want:  url.Values{"cat": {"protect"}, "ref": {"x"}},
		},
		{
			name:  "subcategory change clears brand",
			start: "/products?cat=seeds&sub=peas&brand=profi",
			patch: Patch{Subcategory: strPtr("carrots")},
			want:  url.Values{"cat": {"seeds"}, "sub": {"carrots"}},
		},
		{
			name:  "brand change keeps the rest",
			start: "/products?cat=seeds&sub=peas",
			patch: Patch{Brand: strPtr("yaskrava")},
			want:  url.Values{"cat": {"seeds"}, "sub": {"peas"}, "brand": {"yaskrava"}},
		},
		{
			name:  "empty value deletes",
			start: "/products?cat=seeds&sub=peas",
			patch: Patch{Subcategory: strPtr("")},
			want:  url.Values{"cat": {"seeds"}},
		},
		{
			name:  "empty category returns to all",
			start: "/products?cat=seeds",
			patch: Patch{Category: strPtr("")},
			want:  url.Values{},
		},
		{
			name:  "combined patch applies in order",
			start: "/products",
			patch: Patch{Category: strPtr("seeds"), Subcategory: strPtr("peas"), Brand: strPtr("profi")},
			want:  url.Values{"cat": {"seeds"}, "sub": {"peas"}, "brand": {"profi"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := mustURL(t, tc.start)
			got := Apply(start, tc.patch)
			assert.Equal(t, tc.want, got.Query())
			assert.Equal(t, "/products", got.Path)
			assert.Equal(t, mustURL(t, tc.start).RawQuery, start.RawQuery, "input URL is not modified")
		})
	}
}

func TestPatchFromForm(t *testing.T) {
	p := PatchFromForm(url.Values{"sub": {"peas"}})
	assert.Nil(t, p.Category)
	require.NotNil(t, p.Subcategory)
	assert.Equal(t, "peas", *p.Subcategory)
	assert.Nil(t, p.Brand)

	assert.True(t, PatchFromForm(url.Values{"other": {"1"}}).Empty())

	p = PatchFromForm(url.Values{"brand": {""}})
	require.NotNil(t, p.Brand)
	assert.Equal(t, "", *p.Brand)
}

func TestNavigation(t *testing.T) {
	assert.Equal(t, Push, ParseNavigation(""))
	assert.Equal(t, Replace, ParseNavigation("Replace"))
	assert.Equal(t, "HX-Push-Url", Push.HeaderName())
	assert.Equal(t, "HX-Replace-Url", Replace.HeaderName())
}
