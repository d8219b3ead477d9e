package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^\p{L}\p{N}-]+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe identifier from a display name.
// Unicode letters (including Persian) are kept as-is; everything else
// collapses into single hyphens. Returns "" when the name has no
// slug-safe characters at all.
func Slugify(name string) string {
	// NFKC folds presentation forms and ZWNJ-adjacent ligatures
	slug := norm.NFKC.String(name)
	slug = strings.ToLower(slug)
	slug = slugInvalidChars.ReplaceAllString(slug, "-")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
