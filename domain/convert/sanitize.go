package convert

import "strings"

// EmptyTag is the placeholder element name for labels that are empty or
// reduce to nothing after sanitization.
const EmptyTag = "EMPTY_TAG"

// Sanitize derives a valid XML element name from an arbitrary column label.
// Whitespace runs become a single underscore, characters outside
// [A-Za-z0-9_.-] are dropped, and a leading underscore is prepended when the
// result would not start with a letter or underscore. Total function: every
// input maps to a well-formed name, empty inputs to EmptyTag.
func Sanitize(name string) string {
	collapsed := strings.Join(strings.Fields(name), "_")
	if collapsed == "" {
		return EmptyTag
	}

	var b strings.Builder
	b.Grow(len(collapsed))
	for _, r := range collapsed {
		if isTagRune(r) {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "" {
		return EmptyTag
	}

	if !isTagStart(rune(out[0])) {
		out = "_" + out
	}
	return out
}

func isTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	}
	return false
}

func isTagStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
