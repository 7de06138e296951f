package validation

import "strings"

var sqlInjectionKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "DROP", "UNION", "OR", "AND",
	"WHERE", "FROM", "TABLE", "DATABASE", "ALTER", "CREATE", "EXEC", "SCRIPT",
}

var xssSubstrings = []string{
	"<script", "javascript:", "onload=", "onerror=", "onclick=",
	"eval(", "alert(", "document.cookie", "<iframe",
}

// Sanitize strips NUL bytes, collapses \n \r \t to a single space, escapes
// '  "  \ for safe embedding in legacy string-concatenated SQL, and trims
// outer whitespace. A single pass over the runes: each character is
// classified once, so an escape introduced for one character is never
// re-escaped by a later rule.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 0:
			// drop NUL entirely
		case '\n', '\r', '\t':
			b.WriteByte(' ')
		case '\'':
			b.WriteString("''")
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// LooksLikeSQLInjection reports whether s contains any SQL keyword as a
// word-boundary-respecting token (neighbors are non-alphanumeric and not
// underscore), after uppercasing.
func LooksLikeSQLInjection(s string) bool {
	upper := strings.ToUpper(s)
	for _, kw := range sqlInjectionKeywords {
		if containsWord(upper, kw) {
			return true
		}
	}
	return false
}

func containsWord(haystack, word string) bool {
	start := 0
	for {
		idx := strings.Index(haystack[start:], word)
		if idx < 0 {
			return false
		}
		pos := start + idx
		before := byte(0)
		if pos > 0 {
			before = haystack[pos-1]
		}
		after := byte(0)
		end := pos + len(word)
		if end < len(haystack) {
			after = haystack[end]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		start = pos + 1
		if start >= len(haystack) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9', b == '_':
		return true
	default:
		return false
	}
}

// LooksLikeXSS reports whether s, lowercased, contains any of a fixed set
// of markup/script injection substrings.
func LooksLikeXSS(s string) bool {
	lower := strings.ToLower(s)
	for _, sub := range xssSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// SecurityClean sanitizes s and rejects it outright (returns empty string)
// if either heuristic fires on the sanitized result.
func SecurityClean(s string) string {
	if s == "" {
		return ""
	}
	cleaned := Sanitize(s)
	if cleaned == "" {
		return cleaned
	}
	if LooksLikeSQLInjection(cleaned) || LooksLikeXSS(cleaned) {
		return ""
	}
	return cleaned
}
