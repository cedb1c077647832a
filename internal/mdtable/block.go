package mdtable

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// FixTableFormat repairs every pipe table in text. Lines outside tables are
// copied through unchanged.
//
// Within a table the first line is the header and fixes the column count.
// A missing separator is synthesized, in which case the second line is kept
// as data. Stray separators further down are dropped, every other row is
// padded or truncated to the header width, and rows left without content
// are removed.
func FixTableFormat(text string) string {
	if !strings.Contains(text, "|") {
		return text
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines)+4)
	for i := 0; i < len(lines); {
		if !IsTableLine(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		j := i
		for j < len(lines) && IsTableLine(lines[j]) {
			j++
		}
		out = append(out, processBlock(lines[i:j])...)
		i = j
	}
	return strings.Join(out, "\n")
}

func processBlock(block []string) []string {
	header := NormalizeRow(block[0], 0)
	cols := ColumnCount(header)
	if len(block) < 2 {
		return []string{header}
	}

	out := make([]string, 0, len(block)+1)
	out = append(out, header)

	start := 1
	if sep, ok := separatorForm(block[1]); ok {
		out = append(out, fitSeparator(sep, cols))
		start = 2
	} else {
		out = append(out, SeparatorRow(cols))
	}

	for _, line := range block[start:] {
		if _, ok := separatorForm(line); ok {
			continue
		}
		cells := Cells(line)
		if len(cells) > cols {
			zap.L().Debug("table row wider than header, extra cells dropped",
				zap.Int("cells", len(cells)),
				zap.Int("columns", cols),
			)
		}
		row := JoinRow(fit(cells, cols))
		// Truncation can leave nothing but dash cells.
		if separatorPattern.MatchString(row) {
			continue
		}
		if hasContent(row) {
			out = append(out, row)
		}
	}
	return out
}

// separatorForm reports whether line is a separator row, either as written
// or once its edge pipes are restored, and returns it in pipe-edged form.
func separatorForm(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if separatorPattern.MatchString(t) {
		if !strings.HasSuffix(t, "|") {
			t += "|"
		}
		return t, true
	}
	if n := JoinRow(Cells(t)); separatorPattern.MatchString(n) {
		return n, true
	}
	return "", false
}

// fitSeparator keeps the alignment markers of sep when it already matches the
// header width and replaces it otherwise.
func fitSeparator(sep string, cols int) string {
	if ColumnCount(sep) != cols {
		return SeparatorRow(cols)
	}
	return sep
}

var tableAfterText = regexp.MustCompile(`([^\n|])\n(\|)`)

// EnsureTableSpacing puts a blank line between a line of prose and a table
// that follows it directly, which CommonMark needs to start the table.
func EnsureTableSpacing(text string) string {
	return tableAfterText.ReplaceAllString(text, "${1}\n\n${2}")
}
