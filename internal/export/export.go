// Package export turns a generated plan into a .docx document.
package export

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pakarguru/modulajar/internal/docx"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/mathspan"
	"github.com/pakarguru/modulajar/internal/mdtable"
	"github.com/pakarguru/modulajar/internal/render"
)

// Layout constants in twips, half-points and 240ths of a line.
const (
	lineBody   = 312
	lineSig    = 264
	afterPara  = 160
	afterList  = 120
	sizeH1     = 48
	sizeH2     = 28
	colorBand  = "87CEFA"
	colorTable = "F3F4F6"
)

// Build lays out plan and its attachments. Missing attachments are skipped.
func Build(plan *lessonplan.Plan, settings lessonplan.DocumentSettings) *docx.Document {
	page := docx.A4
	if settings.PaperSize == lessonplan.PaperLetter {
		page = docx.Letter
	}
	d := docx.New(page)
	d.Title = strings.TrimSuffix(FileName(plan), ".docx")
	d.FontSize = settings.FontSize.Points() * 2
	d.Spacing = docx.Spacing{After: afterPara, Line: lineBody}

	if plan == nil {
		return d
	}
	b := &builder{
		doc:   d,
		math:  plan.IsMath(),
		upper: cases.Upper(language.Indonesian),
	}
	b.plan(plan)
	b.assessment(plan.Assessment)
	b.reflection(plan.Reflection)
	b.approval(plan.Approval)
	b.materials(plan.Materials)
	b.lkpd(plan.LKPD)
	b.questionBank(plan.QuestionBank)
	return d
}

// Write builds the document and writes it to w.
func Write(w io.Writer, plan *lessonplan.Plan, settings lessonplan.DocumentSettings) error {
	_, err := Build(plan, settings).WriteTo(w)
	return err
}

var unsafeFileChars = regexp.MustCompile(`[\\/:*?"<>|\x00-\x1f]+`)

// FileName returns "Modul Ajar - <topic>.docx" with characters that are not
// allowed in file names replaced.
func FileName(plan *lessonplan.Plan) string {
	if plan == nil {
		return "Modul Ajar.docx"
	}
	topic := strings.TrimSpace(unsafeFileChars.ReplaceAllString(plan.IdentitySection.Topic, "-"))
	if topic == "" {
		return "Modul Ajar.docx"
	}
	return "Modul Ajar - " + topic + ".docx"
}

type builder struct {
	doc   *docx.Document
	math  bool
	upper cases.Caser
}

func (b *builder) add(blocks ...docx.Block) {
	b.doc.Add(blocks...)
}

var (
	markerStrip   = strings.NewReplacer("💡", "", "**", "", "#", "")
	quotePrefix   = regexp.MustCompile(`^>\s*`)
	numberPrefix  = regexp.MustCompile(`^\d+\.\s*`)
	numberedStart = regexp.MustCompile(`^\d+\.`)
)

// prepare applies terminology and math cleanup to model text.
func (b *builder) prepare(s string) string {
	return render.CleanupLatex(render.FixTerminology(s), b.math)
}

// clean strips markdown markers a Word run cannot show.
func (b *builder) clean(s string) string {
	s = quotePrefix.ReplaceAllString(b.prepare(s), "")
	return strings.TrimSpace(markerStrip.Replace(s))
}

func (b *builder) para(runs ...docx.Run) *docx.Paragraph {
	return &docx.Paragraph{Runs: runs, Align: docx.AlignLeft, Spacing: &docx.Spacing{After: afterPara, Line: lineBody}}
}

func (b *builder) heading(text string) *docx.Paragraph {
	return &docx.Paragraph{
		Runs:    []docx.Run{{Text: b.upper.String(render.FixTerminology(text)), Bold: true, Size: sizeH1}},
		Align:   docx.AlignCenter,
		Spacing: &docx.Spacing{After: 240, Line: lineBody},
	}
}

func (b *builder) topic(text string) *docx.Paragraph {
	return &docx.Paragraph{
		Runs:    []docx.Run{{Text: b.upper.String(render.FixTerminology(text)), Bold: true, Size: sizeH2}},
		Align:   docx.AlignCenter,
		Spacing: &docx.Spacing{After: 360, Line: lineBody},
	}
}

func (b *builder) section(text string, pageBreak bool) *docx.Paragraph {
	return &docx.Paragraph{
		Runs:            []docx.Run{{Text: b.upper.String(text), Bold: true, Size: sizeH2}},
		Align:           docx.AlignCenter,
		Spacing:         &docx.Spacing{Before: 240, After: 240, Line: lineBody},
		PageBreakBefore: pageBreak,
		KeepNext:        true,
	}
}

func (b *builder) subsection(text string, underline bool) *docx.Paragraph {
	p := &docx.Paragraph{
		Runs:     []docx.Run{{Text: text, Bold: true, Size: sizeH2}},
		Spacing:  &docx.Spacing{Before: 240, After: 80, Line: lineBody},
		KeepNext: true,
	}
	if underline {
		p.BorderBottom = &docx.Border{Size: 6, Color: colorBand}
	}
	return p
}

// label is a bold run-in heading such as "1. Memahami:".
func (b *builder) label(text string) *docx.Paragraph {
	return &docx.Paragraph{
		Runs:     []docx.Run{docx.Bold(text)},
		Spacing:  &docx.Spacing{Before: 120, After: 60, Line: lineBody},
		KeepNext: true,
	}
}

func (b *builder) listItem(text string, level int) *docx.Paragraph {
	return &docx.Paragraph{
		Runs:        []docx.Run{docx.Text(numberPrefix.ReplaceAllString(b.clean(text), ""))},
		Bullet:      true,
		BulletLevel: level,
		Spacing:     &docx.Spacing{After: afterList, Line: lineBody},
		Indent:      &docx.Indent{Left: 425 * (level + 1), Hanging: 283},
	}
}

func (b *builder) list(items []string, level int) {
	for _, it := range items {
		if strings.TrimSpace(it) == "" {
			continue
		}
		b.add(b.listItem(it, level))
	}
}

// text lays out free model text. Tables found after normalization become
// native tables; other lines become paragraphs, bullets or hanging-indent
// numbered lines.
func (b *builder) text(s string) {
	b.add(b.textBlocks(s)...)
}

func (b *builder) textBlocks(s string) []docx.Block {
	return b.convert(s, mdtable.Normalize)
}

// convert runs pass over s with its math spans hidden, so a "|" inside a
// span never splits a table row. Spans are put back before cleaning.
func (b *builder) convert(s string, pass func(string) string) []docx.Block {
	protected, spans := mathspan.Protect(b.prepare(s))
	var out []docx.Block
	for _, seg := range mdtable.Split(pass(protected)) {
		if seg.Kind == mdtable.SegmentTable {
			headers := restoreAll(seg.Table.Headers, spans)
			rows := make([][]string, len(seg.Table.Rows))
			for i, r := range seg.Table.Rows {
				rows[i] = restoreAll(r, spans)
			}
			out = append(out, b.gridTable(headers, rows, colorTable), b.spacer())
			continue
		}
		for _, line := range seg.Lines {
			if p := b.line(mathspan.Restore(line, spans)); p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

func restoreAll(cells []string, spans []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = mathspan.Restore(c, spans)
	}
	return out
}

func (b *builder) line(line string) *docx.Paragraph {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		text := b.clean(trimmed[2:])
		if text == "" {
			return nil
		}
		return &docx.Paragraph{
			Runs:    []docx.Run{docx.Text(text)},
			Bullet:  true,
			Spacing: &docx.Spacing{After: afterList, Line: lineBody},
		}
	}
	text := b.clean(trimmed)
	if text == "" {
		return nil
	}
	p := &docx.Paragraph{
		Runs:    []docx.Run{docx.Text(text)},
		Spacing: &docx.Spacing{After: afterList, Line: lineBody},
	}
	if numberedStart.MatchString(text) {
		p.Indent = &docx.Indent{Left: 425, Hanging: 283}
	}
	return p
}

func (b *builder) spacer() *docx.Paragraph {
	return &docx.Paragraph{}
}

func (b *builder) cellPara(runs ...docx.Run) *docx.Paragraph {
	return &docx.Paragraph{Runs: runs, Spacing: &docx.Spacing{After: 0, Line: lineBody}}
}

// cell holds cleaned text. Multi-line text keeps its line structure.
func (b *builder) cell(text string) docx.Cell {
	var blocks []docx.Block
	for _, line := range strings.Split(text, "\n") {
		if l := b.clean(line); l != "" {
			blocks = append(blocks, b.cellPara(docx.Text(l)))
		}
	}
	return docx.Cell{Blocks: blocks}
}

func (b *builder) headerRow(fill string, labels ...string) docx.Row {
	cells := make([]docx.Cell, len(labels))
	for i, l := range labels {
		p := b.cellPara(docx.Bold(l))
		p.Align = docx.AlignCenter
		cells[i] = docx.Cell{Blocks: []docx.Block{p}, Shading: fill}
	}
	return docx.Row{Cells: cells}
}

// gridTable builds a bordered table with a shaded header row.
func (b *builder) gridTable(headers []string, rows [][]string, fill string, widths ...int) *docx.Table {
	clean := make([]string, len(headers))
	for i, h := range headers {
		clean[i] = b.clean(h)
	}
	t := &docx.Table{Widths: widths, Rows: []docx.Row{b.headerRow(fill, clean...)}}
	for _, r := range rows {
		cells := make([]docx.Cell, len(r))
		for i, c := range r {
			cells[i] = b.cell(c)
		}
		t.Rows = append(t.Rows, docx.Row{Cells: cells})
	}
	return t
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
