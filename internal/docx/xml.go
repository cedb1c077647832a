package docx

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// cellMargin is the padding of every table cell in twips.
const cellMargin = 120

// xmlWriter appends escaped markup to a buffer. Attributes are passed as
// name, value pairs.
type xmlWriter struct {
	buf bytes.Buffer
}

func (w *xmlWriter) raw(s string) {
	w.buf.WriteString(s)
}

func (w *xmlWriter) tag(name string, attrs []string, selfClose bool) {
	w.buf.WriteByte('<')
	w.buf.WriteString(name)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.buf.WriteByte(' ')
		w.buf.WriteString(attrs[i])
		w.buf.WriteString(`="`)
		xml.EscapeText(&w.buf, []byte(attrs[i+1]))
		w.buf.WriteByte('"')
	}
	if selfClose {
		w.buf.WriteString("/>")
		return
	}
	w.buf.WriteByte('>')
}

func (w *xmlWriter) open(name string, attrs ...string) {
	w.tag(name, attrs, false)
}

func (w *xmlWriter) empty(name string, attrs ...string) {
	w.tag(name, attrs, true)
}

func (w *xmlWriter) close(name string) {
	w.buf.WriteString("</")
	w.buf.WriteString(name)
	w.buf.WriteByte('>')
}

func (w *xmlWriter) text(s string) {
	xml.EscapeText(&w.buf, []byte(s))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func (p *Paragraph) write(w *xmlWriter, d *Document) {
	w.open("w:p")
	w.open("w:pPr")
	if p.KeepNext {
		w.empty("w:keepNext")
	}
	if p.PageBreakBefore {
		w.empty("w:pageBreakBefore")
	}
	if p.Bullet {
		w.open("w:numPr")
		w.empty("w:ilvl", "w:val", itoa(clampLevel(p.BulletLevel)))
		w.empty("w:numId", "w:val", "1")
		w.close("w:numPr")
	}
	if p.BorderBottom != nil {
		w.open("w:pBdr")
		w.empty("w:bottom", "w:val", "single", "w:sz", itoa(p.BorderBottom.Size), "w:space", "1", "w:color", colorOrAuto(p.BorderBottom.Color))
		w.close("w:pBdr")
	}
	if p.Shading != "" {
		w.empty("w:shd", "w:val", "clear", "w:color", "auto", "w:fill", p.Shading)
	}
	if p.Spacing != nil {
		attrs := []string{"w:before", itoa(p.Spacing.Before), "w:after", itoa(p.Spacing.After)}
		if p.Spacing.Line > 0 {
			attrs = append(attrs, "w:line", itoa(p.Spacing.Line), "w:lineRule", "auto")
		}
		w.empty("w:spacing", attrs...)
	}
	if p.Indent != nil {
		attrs := []string{"w:left", itoa(p.Indent.Left)}
		if p.Indent.Hanging > 0 {
			attrs = append(attrs, "w:hanging", itoa(p.Indent.Hanging))
		}
		w.empty("w:ind", attrs...)
	}
	if p.Align != "" {
		w.empty("w:jc", "w:val", string(p.Align))
	}
	w.close("w:pPr")

	for _, r := range p.Runs {
		r.write(w)
	}
	w.close("w:p")
}

func (r Run) write(w *xmlWriter) {
	w.open("w:r")
	if r.Bold || r.Italic || r.Underline || r.Size > 0 || r.Color != "" {
		w.open("w:rPr")
		if r.Bold {
			w.empty("w:b")
		}
		if r.Italic {
			w.empty("w:i")
		}
		if r.Color != "" {
			w.empty("w:color", "w:val", r.Color)
		}
		if r.Size > 0 {
			w.empty("w:sz", "w:val", itoa(r.Size))
			w.empty("w:szCs", "w:val", itoa(r.Size))
		}
		if r.Underline {
			w.empty("w:u", "w:val", "single")
		}
		w.close("w:rPr")
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			w.empty("w:br")
		}
		if line == "" {
			continue
		}
		w.open("w:t", "xml:space", "preserve")
		w.text(line)
		w.close("w:t")
	}
	w.close("w:r")
}

func (t *Table) write(w *xmlWriter, d *Document) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	widths := t.columnWidths(cols)

	w.open("w:tbl")
	w.open("w:tblPr")
	w.empty("w:tblW", "w:w", "5000", "w:type", "pct")
	w.open("w:tblBorders")
	for _, side := range []string{"w:top", "w:left", "w:bottom", "w:right", "w:insideH", "w:insideV"} {
		if t.Borderless {
			w.empty(side, "w:val", "nil")
		} else {
			w.empty(side, "w:val", "single", "w:sz", "4", "w:space", "0", "w:color", "auto")
		}
	}
	w.close("w:tblBorders")
	w.empty("w:tblLayout", "w:type", "fixed")
	w.open("w:tblCellMar")
	for _, side := range []string{"w:top", "w:left", "w:bottom", "w:right"} {
		w.empty(side, "w:w", itoa(cellMargin), "w:type", "dxa")
	}
	w.close("w:tblCellMar")
	w.close("w:tblPr")

	w.open("w:tblGrid")
	total := d.textWidth()
	for _, pct := range widths {
		w.empty("w:gridCol", "w:w", itoa(total*pct/100))
	}
	w.close("w:tblGrid")

	for _, row := range t.Rows {
		w.open("w:tr")
		for i := 0; i < cols; i++ {
			var c Cell
			if i < len(row.Cells) {
				c = row.Cells[i]
			}
			w.open("w:tc")
			w.open("w:tcPr")
			w.empty("w:tcW", "w:w", itoa(widths[i]*50), "w:type", "pct")
			if c.Shading != "" {
				w.empty("w:shd", "w:val", "clear", "w:color", "auto", "w:fill", c.Shading)
			}
			w.close("w:tcPr")
			for _, b := range c.Blocks {
				b.write(w, d)
			}
			// A cell must end with a paragraph.
			if n := len(c.Blocks); n == 0 {
				w.raw("<w:p/>")
			} else if _, ok := c.Blocks[n-1].(*Table); ok {
				w.raw("<w:p/>")
			}
			w.close("w:tc")
		}
		w.close("w:tr")
	}
	w.close("w:tbl")
}

// columnWidths returns cols percentages. Missing or non-positive widths
// share what is left of 100.
func (t *Table) columnWidths(cols int) []int {
	out := make([]int, cols)
	used, unset := 0, 0
	for i := range out {
		if i < len(t.Widths) && t.Widths[i] > 0 {
			out[i] = t.Widths[i]
			used += out[i]
		} else {
			unset++
		}
	}
	if unset == 0 {
		return out
	}
	share := (100 - used) / unset
	if share < 1 {
		share = 1
	}
	for i := range out {
		if out[i] == 0 {
			out[i] = share
		}
	}
	return out
}

func clampLevel(l int) int {
	if l < 0 {
		return 0
	}
	if l > 1 {
		return 1
	}
	return l
}

func colorOrAuto(c string) string {
	if c == "" {
		return "auto"
	}
	return c
}

func (d *Document) documentXML() []byte {
	w := &xmlWriter{}
	w.raw(xml.Header)
	w.open("w:document", "xmlns:w", nsW, "xmlns:r", nsR)
	w.open("w:body")
	for _, b := range d.blocks {
		b.write(w, d)
	}
	w.open("w:sectPr")
	w.empty("w:pgSz", "w:w", itoa(d.Page.Width), "w:h", itoa(d.Page.Height))
	m := itoa(d.Margin)
	w.empty("w:pgMar", "w:top", m, "w:right", m, "w:bottom", m, "w:left", m, "w:header", "720", "w:footer", "720", "w:gutter", "0")
	w.close("w:sectPr")
	w.close("w:body")
	w.close("w:document")
	return w.buf.Bytes()
}

func (d *Document) stylesXML() []byte {
	w := &xmlWriter{}
	w.raw(xml.Header)
	w.open("w:styles", "xmlns:w", nsW)
	w.open("w:docDefaults")
	w.open("w:rPrDefault")
	w.open("w:rPr")
	w.empty("w:rFonts", "w:ascii", d.Font, "w:hAnsi", d.Font, "w:cs", d.Font, "w:eastAsia", d.Font)
	w.empty("w:color", "w:val", "000000")
	w.empty("w:sz", "w:val", itoa(d.FontSize))
	w.empty("w:szCs", "w:val", itoa(d.FontSize))
	w.empty("w:lang", "w:val", "id-ID")
	w.close("w:rPr")
	w.close("w:rPrDefault")
	w.open("w:pPrDefault")
	w.open("w:pPr")
	w.empty("w:spacing", "w:after", itoa(d.Spacing.After), "w:line", itoa(d.Spacing.Line), "w:lineRule", "auto")
	w.close("w:pPr")
	w.close("w:pPrDefault")
	w.close("w:docDefaults")
	w.open("w:style", "w:type", "paragraph", "w:default", "1", "w:styleId", "Normal")
	w.empty("w:name", "w:val", "Normal")
	w.empty("w:qFormat")
	w.close("w:style")
	w.close("w:styles")
	return w.buf.Bytes()
}

// numberingXML defines numId 1: a two-level bullet list with a hanging
// indent.
func numberingXML() []byte {
	w := &xmlWriter{}
	w.raw(xml.Header)
	w.open("w:numbering", "xmlns:w", nsW)
	w.open("w:abstractNum", "w:abstractNumId", "0")
	w.empty("w:multiLevelType", "w:val", "hybridMultilevel")
	for lvl, glyph := range []string{"•", "◦"} {
		w.open("w:lvl", "w:ilvl", itoa(lvl))
		w.empty("w:start", "w:val", "1")
		w.empty("w:numFmt", "w:val", "bullet")
		w.empty("w:lvlText", "w:val", glyph)
		w.empty("w:lvlJc", "w:val", "left")
		w.open("w:pPr")
		w.empty("w:ind", "w:left", itoa(425*(lvl+1)), "w:hanging", "283")
		w.close("w:pPr")
		w.close("w:lvl")
	}
	w.close("w:abstractNum")
	w.open("w:num", "w:numId", "1")
	w.empty("w:abstractNumId", "w:val", "0")
	w.close("w:num")
	w.close("w:numbering")
	return w.buf.Bytes()
}
