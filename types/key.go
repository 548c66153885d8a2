package types

import (
	"strings"
	"unicode"
)

// Sanitization of entity types and ids into filesystem-safe key components.
// The same rules run at split time (producing file names) and at lookup time
// (producing the key to fetch), so the two always agree.

/*
SanitizeComponent maps an arbitrary string to a key component:

  - filesystem-hostile characters (< > : " / \ | ? *) and control bytes
    become "_"
  - runs of whitespace collapse to a single "_"
  - runs of "_" collapse to one
  - leading and trailing "_" are trimmed

The function is idempotent: sanitizing an already-sanitized string returns
it unchanged.
*/
func SanitizeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		case unicode.IsSpace(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	// Collapse runs of '_' and trim the ends.
	var out strings.Builder
	out.Grow(b.Len())
	prevUnderscore := false
	for _, r := range b.String() {
		if r == '_' {
			prevUnderscore = true
			continue
		}
		if prevUnderscore && out.Len() > 0 {
			out.WriteByte('_')
		}
		prevUnderscore = false
		out.WriteRune(r)
	}
	return out.String()
}

// EntityKey builds the composite key a pre-split record is stored under.
func EntityKey(entityType, entityID string) string {
	return SanitizeComponent(entityType) + "_" + SanitizeComponent(entityID)
}
