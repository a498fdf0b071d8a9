// internal/pkg/slug/slug.go
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	dashRuns = regexp.MustCompile(`-{2,}`)
	edgeDash = regexp.MustCompile(`^-+|-+$`)
)

// Make converts a name into a URL-safe slug. Accented characters fold
// to their ASCII base so "Café" slugs as "cafe", not "caf-".
func Make(name string) string {
	s := asciiFold(strings.TrimSpace(name))
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = edgeDash.ReplaceAllString(s, "")
	return s
}

// asciiFold decomposes to NFD and drops combining marks, stripping
// diacritics while leaving ASCII untouched
func asciiFold(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExistsFunc reports whether a candidate slug is already taken
type ExistsFunc func(slug string) bool

// MakeUnique generates a slug for name, appending -1, -2, ... until
// the candidate no longer collides with an existing slug.
func MakeUnique(name string, exists ExistsFunc) string {
	base := Make(name)
	candidate := base
	counter := 1
	for exists(candidate) {
		candidate = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
	return candidate
}
