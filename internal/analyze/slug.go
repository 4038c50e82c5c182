package analyze

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Path markers whose following segment uniquely identifies a product on
// its origin. Checked in order.
var slugMarkers = []string{
	"/startups/",
	"/item?id=",
	"/post/",
	"/products/",
	"/software/",
}

// DeriveSlug maps a listing URL to the product's canonical cache key. The
// segment after a known origin marker wins; URLs without one degrade to a
// normalized form of the whole URL. Pure: the same URL always yields the
// same slug.
func DeriveSlug(sourceURL string) string {
	for _, marker := range slugMarkers {
		i := strings.Index(sourceURL, marker)
		if i < 0 {
			continue
		}
		seg := sourceURL[i+len(marker):]
		if j := strings.IndexAny(seg, "/?#&"); j >= 0 {
			seg = seg[:j]
		}
		if seg != "" {
			return normalizeSlug(seg, true)
		}
	}
	return normalizeSlug(sourceURL, false)
}

var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeSlug lowercases, folds diacritics, and strips everything that is
// not alphanumeric. Marker-derived segments additionally keep hyphens, since
// those are part of the origin's identifier.
func normalizeSlug(s string, keepHyphens bool) string {
	folded, _, err := transform.String(foldDiacritics, s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case keepHyphens && r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
