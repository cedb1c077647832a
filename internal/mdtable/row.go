package mdtable

import "strings"

// Cells splits a table row into trimmed cell values. Missing edge pipes are
// tolerated. A row always has at least one cell.
func Cells(row string) []string {
	t := strings.TrimSpace(row)
	if !strings.HasPrefix(t, "|") {
		t = "| " + t
	}
	if !strings.HasSuffix(t, "|") {
		t += " |"
	}

	parts := strings.Split(t, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts[1 : len(parts)-1] {
		cells = append(cells, strings.TrimSpace(p))
	}
	if len(cells) == 0 {
		cells = append(cells, "")
	}
	return cells
}

// NormalizeRow rewrites row as "| a | b |". When cols is positive the row is
// padded with empty cells or truncated from the end to exactly cols cells;
// otherwise the row keeps its own width.
func NormalizeRow(row string, cols int) string {
	cells := Cells(row)
	if cols > 0 {
		cells = fit(cells, cols)
	}
	return JoinRow(cells)
}

// JoinRow formats cells as a pipe table row.
func JoinRow(cells []string) string {
	return "| " + strings.Join(cells, " | ") + " |"
}

// ColumnCount returns the number of pipe-delimited segments in row minus the
// two edge artifacts, which is the cell count of a row with edge pipes.
func ColumnCount(row string) int {
	return len(strings.Split(row, "|")) - 2
}

// SeparatorRow returns "|---|---|" with n dash cells. n is clamped to 1.
func SeparatorRow(n int) string {
	if n < 1 {
		n = 1
	}
	dashes := make([]string, n)
	for i := range dashes {
		dashes[i] = "---"
	}
	return "|" + strings.Join(dashes, "|") + "|"
}

func fit(cells []string, n int) []string {
	if len(cells) > n {
		return cells[:n]
	}
	for len(cells) < n {
		cells = append(cells, "")
	}
	return cells
}

// hasContent reports whether row has anything left once pipes and
// whitespace are removed.
func hasContent(row string) bool {
	return strings.TrimSpace(strings.ReplaceAll(row, "|", "")) != ""
}
