// Package templates embeds the storefront page layouts, pages and fragments.
package templates

import "embed"

// FS holds every *.tmpl file under layouts/, pages/ and partials/.
//
//go:embed layouts/*.tmpl pages/*.tmpl partials/*.tmpl
var FS embed.FS
