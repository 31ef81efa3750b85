package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// residual covers letters that survive canonical decomposition because the
// glyph is a distinct letter rather than a base letter plus combining mark
// (stroked and crossed letters, ligatures).
var residual = strings.NewReplacer(
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ø", "o", "Ø", "O",
	"æ", "ae", "Æ", "Ae",
	"œ", "oe", "Œ", "Oe",
	"ß", "ss",
)

// Normalize canonicalizes a player display name for cross-source matching.
// Accented characters are decomposed to their base Latin letter, residual
// non-decomposable letters are substituted, and whitespace runs collapse to
// single spaces. Normalize is idempotent.
func Normalize(name string) string {
	if name == "" {
		return ""
	}

	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(strip, name)
	if err != nil {
		ascii = name
	}

	ascii = residual.Replace(ascii)

	return strings.Join(strings.Fields(ascii), " ")
}
