package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var terminologyPattern = regexp.MustCompile(`(?i)siswa|peserta didik`)

// FixTerminology replaces "siswa" and "peserta didik" with "Murid", the term
// the current curriculum uses.
func FixTerminology(s string) string {
	return terminologyPattern.ReplaceAllString(s, "Murid")
}

// SafeString turns a loosely typed model value into display text. Objects
// are read through their text, content, value or description field, arrays
// are joined with commas, and nil becomes "".
func SafeString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return FixTerminology(x)
	case fmt.Stringer:
		return FixTerminology(x.String())
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = SafeString(e)
		}
		return strings.Join(parts, ", ")
	case []string:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FixTerminology(e)
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, k := range []string{"text", "content", "value", "description"} {
			if s, ok := x[k].(string); ok && s != "" {
				return FixTerminology(s)
			}
		}
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return FixTerminology(string(b))
	default:
		return fmt.Sprint(x)
	}
}

var plainNumberMath = regexp.MustCompile(`\$(\d+(?:[.,]\d+)?\s?%?)\$`)

// CleanupLatex drops dollar delimiters that are not needed. Outside math and
// science subjects every "$" is removed so prose is never typeset as a
// formula. For math subjects only plain numbers such as "$10$" or "$50%$"
// are unwrapped.
func CleanupLatex(text string, mathSubject bool) string {
	if !mathSubject {
		return strings.ReplaceAll(text, "$", "")
	}
	return plainNumberMath.ReplaceAllString(text, "$1")
}

var (
	leadingNumber = regexp.MustCompile(`^\d+\.`)
	listLead      = regexp.MustCompile(`^(\d+\.|[-•])`)
)

// ActivityMarkdown prepares worksheet activity text for rendering. Tables and
// text that already starts as a list pass through; plain multi-line text is
// numbered so each line reads as a task.
func ActivityMarkdown(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.Contains(trimmed, "|") && strings.Contains(trimmed, "---") {
		return trimmed
	}
	if listLead.MatchString(trimmed) {
		return trimmed
	}

	var lines []string
	for _, l := range strings.Split(trimmed, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) <= 1 {
		return trimmed
	}
	for i, l := range lines {
		if !leadingNumber.MatchString(l) {
			lines[i] = strconv.Itoa(i+1) + ". " + l
		}
	}
	return strings.Join(lines, "\n")
}
