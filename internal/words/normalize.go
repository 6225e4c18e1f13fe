package words

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize converts raw chat text into the canonical form used for lookups
// and use counting: NFC, lower case, surrounding whitespace and punctuation
// trimmed.
func Normalize(raw string) string {
	s := norm.NFC.String(strings.TrimSpace(raw))
	s = cases.Lower(language.Und).String(s)
	return strings.Trim(s, ".,!?;:\"'`*_~()[]{}")
}
