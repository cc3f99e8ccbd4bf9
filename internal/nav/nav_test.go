package nav

import "testing"

func TestIsActive(t *testing.T) {
	cases := []struct {
		href, current string
		want          bool
	}{
		{"/", "/", true},
		{"/", "/products", false},
		{"/products", "/products", true},
		{"/products?cat=seeds", "/products", true},
		{"/products/", "/products", true},
		{"/products", "/products/seeds-1/modal", true},
		{"/productsx", "/products", false},
		{"/cart", "/products", false},
		{"/agrotern/index.html", "/agrotern/", true},
		{"https://example.com/products", "/products", false},
		{"#top", "/products", false},
	}
	for _, tc := range cases {
		if got := IsActive(tc.href, tc.current); got != tc.want {
			t.Errorf("IsActive(%q, %q) = %v, want %v", tc.href, tc.current, got, tc.want)
		}
	}
}

func TestBreadcrumbs(t *testing.T) {
	crumbs := Breadcrumbs("/products", Crumb{Href: "/products?cat=seeds", Label: "Насіння"})
	if len(crumbs) != 3 {
		t.Fatalf("expected 3 crumbs, got %d", len(crumbs))
	}
	if crumbs[1].LabelKey != "nav.products" || crumbs[1].Active {
		t.Fatalf("unexpected section crumb %+v", crumbs[1])
	}
	if !crumbs[2].Active || crumbs[2].Label != "Насіння" {
		t.Fatalf("unexpected leaf crumb %+v", crumbs[2])
	}

	crumbs = Breadcrumbs("/cart")
	if len(crumbs) != 2 || !crumbs[1].Active || crumbs[1].LabelKey != "nav.cart" {
		t.Fatalf("unexpected cart crumbs %+v", crumbs)
	}

	crumbs = Breadcrumbs("/about-us")
	if crumbs[1].Label != "About us" {
		t.Fatalf("expected prettified label, got %q", crumbs[1].Label)
	}
}
