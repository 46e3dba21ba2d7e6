package fairness

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block (U+0300–U+036F).
var combiningMarks = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}},
})

// Normalize canonicalises a person name for cross-table matching: uppercase,
// NFD, diacritics stripped, whitespace collapsed and trimmed. It is total and
// idempotent.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	upper := strings.ToUpper(name)

	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks))
	stripped, _, err := transform.String(t, upper)
	if err != nil {
		// The chain only drops runes; fall back to the uppercased input.
		stripped = upper
	}

	return strings.Join(strings.Fields(stripped), " ")
}
