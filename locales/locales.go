// Package locales embeds the translation dictionaries.
package locales

import "embed"

// FS holds <lang>.json dictionaries.
//
//go:embed *.json
var FS embed.FS
