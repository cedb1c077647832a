package mdtable

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	colonHeader     = "| Aspek / Kategori | Keterangan |"
	colonSeparator  = "|---|---|"
	numberedHeader  = "| No | Poin Penting |"
	numberedDivider = "|:-:|---|"
)

var (
	listItemPattern = regexp.MustCompile(`^(\d+\.|[-•·])`)
	numberMarker    = regexp.MustCompile(`^(\d+\.)+`)
	bulletMarker    = regexp.MustCompile(`^[-•·]+`)
	starMarker      = regexp.MustCompile(`^\*\s+`)
)

// ConvertBulletPoints turns list-shaped text into a two-column table.
//
// Text that already holds a table is returned unchanged. Otherwise, when
// every non-empty line is a list item or there are at least two lines, the
// lines become rows. If the first line reads "key: value" every line is
// split on its first colon under an Aspek / Kategori header; otherwise rows
// are numbered under a No / Poin Penting header.
func ConvertBulletPoints(text string) string {
	if strings.Contains(text, "|") && strings.Contains(text, "---") {
		return text
	}

	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		// A pipe row without its separator is repaired by FixTableFormat.
		if strings.HasPrefix(l, "|") {
			return text
		}
		lines = append(lines, l)
	}
	if len(lines) == 0 {
		return text
	}

	allItems := true
	for _, l := range lines {
		if !listItemPattern.MatchString(l) {
			allItems = false
			break
		}
	}
	if !allItems && len(lines) < 2 {
		return text
	}

	table, ok := tableFromList(lines)
	if !ok {
		return text
	}
	return table
}

func tableFromList(lines []string) (string, bool) {
	cleaned := make([]string, 0, len(lines))
	for _, l := range lines {
		c := strings.ReplaceAll(stripListMarker(l), "|", "/")
		if c == "" {
			continue
		}
		cleaned = append(cleaned, c)
	}
	if len(cleaned) == 0 {
		return "", false
	}

	out := make([]string, 0, len(cleaned)+2)
	if strings.Contains(cleaned[0], ":") {
		out = append(out, colonHeader, colonSeparator)
		for i, c := range cleaned {
			key, value, found := strings.Cut(c, ":")
			if !found {
				out = append(out, JoinRow([]string{strconv.Itoa(i + 1), c}))
				continue
			}
			out = append(out, JoinRow([]string{strings.TrimSpace(key), strings.TrimSpace(value)}))
		}
		return strings.Join(out, "\n"), true
	}

	out = append(out, numberedHeader, numberedDivider)
	for i, c := range cleaned {
		out = append(out, JoinRow([]string{strconv.Itoa(i + 1), c}))
	}
	return strings.Join(out, "\n"), true
}

// stripListMarker removes a leading "1.", "2.3.", "-", "•", "·" or "* "
// marker. Digits that belong to the content, as in "1.5 kg" or "-3 °C", are
// kept.
func stripListMarker(line string) string {
	if m := numberMarker.FindString(line); m != "" {
		rest := line[len(m):]
		if rest == "" || !isDigit(rest[0]) {
			return strings.TrimSpace(rest)
		}
		return line
	}
	if m := bulletMarker.FindString(line); m != "" {
		rest := line[len(m):]
		if rest == "" || !isDigit(rest[0]) {
			return strings.TrimSpace(rest)
		}
		return line
	}
	if m := starMarker.FindString(line); m != "" {
		return strings.TrimSpace(line[len(m):])
	}
	return line
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
