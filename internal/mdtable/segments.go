package mdtable

import "strings"

// SegmentKind tells prose and tables apart.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentTable
)

// Segment is a run of prose lines or one parsed table.
type Segment struct {
	Kind  SegmentKind
	Lines []string // prose lines, SegmentText only
	Table *Table   // SegmentTable only
}

// Split cuts text into alternating prose and table segments. Runs of table
// lines become tables whose first row is the header; separator rows are
// dropped. Blank lines end a prose segment and are not kept.
//
// Callers normally pass text that has been through Normalize, so rows are
// already padded to the header width.
func Split(text string) []Segment {
	var (
		segs  []Segment
		prose []string
		table *Table
	)
	flushProse := func() {
		if len(prose) > 0 {
			segs = append(segs, Segment{Kind: SegmentText, Lines: prose})
			prose = nil
		}
	}
	flushTable := func() {
		if table != nil {
			if table.Rows == nil {
				table.Rows = [][]string{}
			}
			segs = append(segs, Segment{Kind: SegmentTable, Table: table})
			table = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if IsTableLine(line) {
			flushProse()
			if IsSeparatorRow(line) {
				continue
			}
			if table == nil {
				table = &Table{Headers: Cells(line)}
				continue
			}
			table.Rows = append(table.Rows, Cells(line))
			continue
		}
		flushTable()
		if strings.TrimSpace(line) == "" {
			flushProse()
			continue
		}
		prose = append(prose, line)
	}
	flushTable()
	flushProse()
	return segs
}
