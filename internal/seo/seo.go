// Package seo builds page metadata and schema.org payloads for the base layout.
package seo

import (
	"net/http"
	"strings"
)

// OpenGraph carries og:* tags.
type OpenGraph struct {
	Title       string
	Description string
	Image       string
	URL         string
	SiteName    string
	Type        string
	Locale      string
}

// Twitter carries twitter:* tags.
type Twitter struct {
	Card  string
	Image string
}

// Meta is the head metadata of one page.
type Meta struct {
	Canonical string
	Robots    string
	OG        OpenGraph
	Twitter   Twitter
	// JSONLD holds encoded schema.org documents, one script tag each.
	JSONLD []Script
}

// NewMeta fills the social tags from the page title and description.
func NewMeta(r *http.Request, siteName, title, description string) Meta {
	canonical := AbsoluteURL(r, r.URL.Path)
	return Meta{
		Canonical: canonical,
		OG: OpenGraph{
			Title:       title,
			Description: description,
			URL:         canonical,
			SiteName:    siteName,
			Type:        "website",
		},
		Twitter: Twitter{Card: "summary_large_image"},
	}
}

// WithImage sets the share image on both tag families.
func (m Meta) WithImage(url string) Meta {
	m.OG.Image = url
	m.Twitter.Image = url
	return m
}

// AbsoluteURL resolves path against the scheme and host the request arrived on.
// X-Forwarded-Proto is honoured for deployments behind a TLS terminating proxy.
func AbsoluteURL(r *http.Request, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return scheme + "://" + r.Host + path
}
