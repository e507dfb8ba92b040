package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case, strips diacritics and turns every rune that is not a
// letter or digit into a space. Runs of spaces collapse to one.
func Normalize(s string) string {
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), s)
	if err != nil {
		stripped = s
	}

	folded := cases.Fold().String(stripped)

	var b strings.Builder

	b.Grow(len(folded))

	space := true

	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)

			space = false

			continue
		}

		if !space {
			b.WriteByte(' ')

			space = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}
