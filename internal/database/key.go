package database

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keySeparator replaces characters that users type interchangeably in
// hardware names ("i7-3770", "i7 3770").
const keySeparator = "_"

var keyReplacer = strings.NewReplacer(
	" ", keySeparator,
	"+", keySeparator,
	"-", keySeparator,
)

// NormalizeKey maps a free-text identifier to its storage key.
//
// The identifier is lower-cased and every space, '+' and '-' becomes '_'.
// Nothing else is touched. Distinct identifiers that normalize to the same key
// share one cache entry; "Intel i7-3770" and "intel i7 3770" are the same CPU.
func NormalizeKey(identifier string) string {
	// A Caser is stateful, so one is created per call.
	lower := cases.Lower(language.Und).String(identifier)
	return keyReplacer.Replace(lower)
}
