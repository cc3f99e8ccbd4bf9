package catalog

import (
	"strings"
	"testing"
)

func TestRichTextRendersAndSanitises(t *testing.T) {
	rt := NewRichText()

	got := string(rt.Render("**Early** variety.\n\n<script>alert(1)</script>"))
	if !strings.Contains(got, "<strong>Early</strong>") {
		t.Fatalf("expected markdown emphasis, got %q", got)
	}
	if strings.Contains(got, "<script>") {
		t.Fatalf("expected script to be stripped, got %q", got)
	}
	if rt.Render("   ") != "" {
		t.Fatalf("expected empty output for blank input")
	}
}
