package catalog

import (
	"regexp"
	"strings"
)

var absoluteURLPattern = regexp.MustCompile(`(?i)^https?://`)

// ImageResolver normalises image references from the feed and the cart.
type ImageResolver struct {
	// SiteRoot is the path prefix of the site, e.g. "/agrotern".
	SiteRoot string
	// ImageBase is where bare file names live, e.g. "/agrotern/img/".
	ImageBase string
	// Placeholder is the file under ImageBase used when no image is set.
	Placeholder string
}

// NewImageResolver builds a resolver for the given layout.
func NewImageResolver(siteRoot, imageBase, placeholder string) ImageResolver {
	return ImageResolver{
		SiteRoot:    strings.TrimRight(siteRoot, "/"),
		ImageBase:   imageBase,
		Placeholder: placeholder,
	}
}

// Resolve applies the path rules in order:
//   - empty -> placeholder under the image base
//   - http(s) URLs pass through
//   - paths under the site root pass through
//   - legacy /img/... paths move under the site's image directory
//   - other absolute paths get the site root prefixed
//   - bare file names resolve under the image base
func (r ImageResolver) Resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return r.ImageBase + r.Placeholder
	}
	if absoluteURLPattern.MatchString(p) {
		return p
	}
	if r.SiteRoot != "" && strings.HasPrefix(p, r.SiteRoot+"/") {
		return p
	}
	if strings.HasPrefix(p, "/img/") {
		return r.SiteRoot + "/img/" + strings.TrimPrefix(p, "/img/")
	}
	if strings.HasPrefix(p, "/") {
		return r.SiteRoot + p
	}
	return r.ImageBase + p
}
