package catalog

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// RichText renders long product descriptions. The feed is authored as
// Markdown; output is sanitised before it reaches templates.
type RichText struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewRichText constructs the Markdown renderer with a UGC sanitisation policy.
func NewRichText() *RichText {
	return &RichText{
		md:     goldmark.New(),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts Markdown to sanitised HTML. Render errors fall back to the
// escaped source text.
func (r *RichText) Render(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}
