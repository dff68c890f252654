// SPDX-License-Identifier: MIT

package jobs

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 50

// Slugify converts a free-form name into a lowercase file and URL safe slug.
// Unicode is NFD-decomposed so accented letters keep their base character,
// combining marks are dropped, and anything outside [a-z0-9] collapses into
// single dashes. Example: "Böx Breathing" → "box-breathing".
func Slugify(name string) string {
	s := norm.NFD.String(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from the NFD decomposition
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		return "video"
	}
	return slug
}
