// Package docx writes minimal WordprocessingML (.docx) documents: paragraphs
// with formatted runs, bullet lists, shaded and borderless tables, page
// breaks and a single portrait section.
package docx

import (
	"strings"
)

// PageSize is a page size in twips (1/1440 inch).
type PageSize struct {
	Width  int
	Height int
}

var (
	A4     = PageSize{Width: 11906, Height: 16838}
	Letter = PageSize{Width: 12240, Height: 15840}
)

// Align is a paragraph justification value.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
	AlignBoth   Align = "both"
)

// Block is a body element: *Paragraph or *Table.
type Block interface {
	write(w *xmlWriter, d *Document)
}

// Run is a span of uniformly formatted text. Newlines become line breaks.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	// Size in half-points. Zero uses the document default.
	Size  int
	Color string
}

// Spacing is paragraph spacing in twips; Line is in 240ths of a line.
type Spacing struct {
	Before int
	After  int
	Line   int
}

// Indent is paragraph indentation in twips.
type Indent struct {
	Left    int
	Hanging int
}

// Border is a single paragraph border line. Size is in eighths of a point.
type Border struct {
	Size  int
	Color string
}

type Paragraph struct {
	Runs  []Run
	Align Align
	// Spacing overrides the document default when set.
	Spacing *Spacing
	Indent  *Indent
	// Bullet marks the paragraph as a bullet list item at BulletLevel.
	Bullet      bool
	BulletLevel int
	// Shading is a hex fill colour.
	Shading         string
	BorderBottom    *Border
	PageBreakBefore bool
	KeepNext        bool
}

// P returns a paragraph holding runs.
func P(runs ...Run) *Paragraph {
	return &Paragraph{Runs: runs}
}

// Text returns a plain run.
func Text(s string) Run {
	return Run{Text: s}
}

// Bold returns a bold run.
func Bold(s string) Run {
	return Run{Text: s, Bold: true}
}

// Italic returns an italic run.
func Italic(s string) Run {
	return Run{Text: s, Italic: true}
}

// PlainText joins the run texts.
func (p *Paragraph) PlainText() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type Table struct {
	Rows []Row
	// Widths are column widths in percent of the text width. Nil spreads the
	// columns evenly.
	Widths     []int
	Borderless bool
}

type Row struct {
	Cells []Cell
}

// Cell holds paragraphs or nested tables. An empty cell still gets the
// empty paragraph Word requires.
type Cell struct {
	Blocks  []Block
	Shading string
}

// TextCell returns a cell with one paragraph.
func TextCell(runs ...Run) Cell {
	return Cell{Blocks: []Block{P(runs...)}}
}

// Columns returns the widest row's cell count.
func (t *Table) Columns() int {
	n := len(t.Widths)
	for _, r := range t.Rows {
		if len(r.Cells) > n {
			n = len(r.Cells)
		}
	}
	return n
}

// Document is an in-memory document. The zero value is not usable; call New.
type Document struct {
	Title    string
	Page     PageSize
	Margin   int
	Font     string
	FontSize int
	Spacing  Spacing

	blocks []Block
}

// New returns an empty document with one-inch margins, 12pt Cambria body
// text and 1.3 line spacing.
func New(page PageSize) *Document {
	return &Document{
		Page:     page,
		Margin:   1440,
		Font:     "Cambria",
		FontSize: 24,
		Spacing:  Spacing{After: 160, Line: 312},
	}
}

// Add appends blocks to the body. Nil blocks are skipped.
func (d *Document) Add(blocks ...Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case nil:
			continue
		case *Paragraph:
			if v == nil {
				continue
			}
		case *Table:
			if v == nil {
				continue
			}
		}
		d.blocks = append(d.blocks, b)
	}
}

// Blocks returns the body elements in order.
func (d *Document) Blocks() []Block {
	return d.blocks
}

// textWidth is the printable width in twips.
func (d *Document) textWidth() int {
	w := d.Page.Width - 2*d.Margin
	if w <= 0 {
		return d.Page.Width
	}
	return w
}

// PlainText renders the body as text: one line per paragraph and one line
// per table row with cells separated by " | ".
func (d *Document) PlainText() string {
	var lines []string
	for _, b := range d.blocks {
		lines = appendText(lines, b)
	}
	return strings.Join(lines, "\n")
}

func appendText(lines []string, b Block) []string {
	switch v := b.(type) {
	case *Paragraph:
		return append(lines, v.PlainText())
	case *Table:
		for _, r := range v.Rows {
			cells := make([]string, 0, len(r.Cells))
			for _, c := range r.Cells {
				var inner []string
				for _, cb := range c.Blocks {
					inner = appendText(inner, cb)
				}
				cells = append(cells, strings.Join(inner, " / "))
			}
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return lines
}
