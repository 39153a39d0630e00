// Package staffname provides canonical staff-name normalization.
// Names are normalized once at write time (professional-title prefix
// stripped, whitespace collapsed); reads then use exact folded comparison.
// This is part of the platform layer and contains no business logic.
package staffname

import (
	"strings"
)

// titlePrefixes are professional-title prefixes stripped during
// normalization. Matching is case-insensitive and tolerates a missing dot.
var titlePrefixes = []string{
	"dr.", "dr", "mag.", "mag", "prof.", "prof", "dipl.-ing.", "ing.",
}

// Normalize returns the canonical form of a staff name: title prefix
// removed, interior whitespace collapsed to single spaces, outer whitespace
// trimmed. Capitalization is preserved.
func Normalize(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}

	for len(fields) > 0 && isTitle(fields[0]) {
		fields = fields[1:]
	}

	return strings.Join(fields, " ")
}

// Equal reports whether two names refer to the same staff member after
// normalization, ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(Normalize(a), Normalize(b))
}

// Fold returns the lowercase canonical form, suitable as a comparison or
// lookup key.
func Fold(name string) string {
	return strings.ToLower(Normalize(name))
}

// Initials returns the uppercase initials of the normalized name, e.g.
// "Anna Maier" -> "AM". An empty name yields "XX" so generated identifiers
// stay well-formed.
func Initials(name string) string {
	fields := strings.Fields(Normalize(name))
	if len(fields) == 0 {
		return "XX"
	}

	var b strings.Builder
	for _, field := range fields {
		b.WriteString(strings.ToUpper(field[:1]))
	}
	return b.String()
}

func isTitle(word string) bool {
	lowered := strings.ToLower(word)
	for _, prefix := range titlePrefixes {
		if lowered == prefix {
			return true
		}
	}
	return false
}
