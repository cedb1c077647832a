// Package mathspan hides LaTeX math spans behind opaque placeholder tokens
// so text passes can rewrite the surrounding prose without touching them.
package mathspan

import (
	"regexp"
	"strconv"
	"strings"
)

// Placeholder tokens are plain alphanumerics so markdown renderers pass them
// through untouched. The suffix terminates the index, which keeps token 1
// from matching the head of token 12.
const (
	placeholderPrefix = "MATHSPANX9Q"
	placeholderSuffix = "QX9"
)

var (
	// Display math is tried first so "$$a$$" is one span, not two empty ones.
	spanPattern        = regexp.MustCompile(`\$\$[\s\S]*?\$\$|\$[\s\S]*?\$`)
	placeholderPattern = regexp.MustCompile(placeholderPrefix + `(\d+)` + placeholderSuffix)
)

// Protect replaces every math span in text with a placeholder and returns the
// rewritten text together with the extracted spans in order of appearance.
// An unterminated "$" is left as literal text.
func Protect(text string) (string, []string) {
	if !strings.Contains(text, "$") {
		return text, nil
	}
	var spans []string
	out := spanPattern.ReplaceAllStringFunc(text, func(m string) string {
		spans = append(spans, m)
		return Placeholder(len(spans) - 1)
	})
	return out, spans
}

// Placeholder returns the token that stands in for span i.
func Placeholder(i int) string {
	return placeholderPrefix + strconv.Itoa(i) + placeholderSuffix
}

// Restore puts the spans back in place of their placeholders. Tokens whose
// index has no matching span are left as they are.
func Restore(text string, spans []string) string {
	return restore(text, spans, func(s string) string { return s })
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// RestoreHTML is Restore for text that has already been rendered to HTML.
// Markup-significant characters inside a span are escaped so the span shows
// up literally in the page.
func RestoreHTML(text string, spans []string) string {
	return restore(text, spans, htmlEscaper.Replace)
}

func restore(text string, spans []string, conv func(string) string) string {
	if len(spans) == 0 || !strings.Contains(text, placeholderPrefix) {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(tok string) string {
		sub := placeholderPattern.FindStringSubmatch(tok)
		i, err := strconv.Atoi(sub[1])
		if err != nil || i < 0 || i >= len(spans) {
			return tok
		}
		return conv(spans[i])
	})
}

// Count reports how many math spans text contains.
func Count(text string) int {
	return len(spanPattern.FindAllStringIndex(text, -1))
}
