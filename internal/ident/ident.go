package ident

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Sanitize removes double quotes, single quotes and "--" from name.
// Quotes are removed before comment markers so that sequences like "-'-"
// cannot reassemble into "--".
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, `"`, "")
	name = strings.ReplaceAll(name, "'", "")
	return strings.ReplaceAll(name, "--", "")
}

// Quote returns the bracket-quoted, sanitized form of name for literal
// inclusion in generated SQL.
func Quote(name string) string {
	return "[" + Sanitize(name) + "]"
}

// Normalize converts an attribute name to Unicode NFC so that canonically
// equivalent spellings resolve to the same column.
func Normalize(name string) string {
	return norm.NFC.String(name)
}

// Clean applies Normalize then Sanitize. The result is the name under which
// an attribute is registered and stored.
func Clean(name string) string {
	return Sanitize(Normalize(name))
}
