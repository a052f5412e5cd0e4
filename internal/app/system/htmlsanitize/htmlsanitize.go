// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richOnce   sync.Once
	richPolicy *bluemonday.Policy

	plainOnce   sync.Once
	plainPolicy *bluemonday.Policy
)

func rich() *bluemonday.Policy {
	richOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td", "code", "pre")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		p.AllowElements("u", "s", "mark")
		richPolicy = p
	})
	return richPolicy
}

func plain() *bluemonday.Policy {
	plainOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return plainPolicy
}

// Sanitize keeps formatting markup (paragraphs, lists, tables, links, code)
// and strips scripts, event handlers and unsafe URLs. Used for note content
// and group descriptions.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return rich().Sanitize(s)
}

// StripTags removes all markup and returns trimmed text. Entities produced by
// the policy are decoded so "A & B" round-trips unchanged. Used for chat
// messages and event descriptions, which are rendered as text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plain().Sanitize(s)))
}

// IsPlainText reports whether s has no tag-like content.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
