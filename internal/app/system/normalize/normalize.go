// internal/app/system/normalize/normalize.go
package normalize

import (
	"strings"
)

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a raw query-string value. Case is preserved.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Tag trims a single tag name. Case is preserved so "Exam" and "exam" are
// distinct tags.
func Tag(s string) string {
	return strings.TrimSpace(s)
}

// TagList splits a comma-separated tag string and returns the trimmed,
// non-empty, de-duplicated entries in first-seen order.
//
//	TagList("a, b, ,a") == []string{"a", "b"}
func TagList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return Tags(strings.Split(s, ","))
}

// Tags trims each entry, drops empties and removes duplicates, keeping the
// first occurrence. The result is never nil.
func Tags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = Tag(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Lower trims and lowercases an enumerated value such as a priority or type.
func Lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
