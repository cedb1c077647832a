package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

// readPart unzips data and returns the named part.
func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		return string(b)
	}
	t.Fatalf("part %s not found", name)
	return ""
}

// wellFormed decodes every token of s.
func wellFormed(t *testing.T, s string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(s))
	for {
		_, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatalf("malformed xml: %v\n%s", err, s)
		}
	}
}

func sampleDocument() *Document {
	d := New(A4)
	d.Title = "Modul Ajar - Ekosistem"
	d.Add(
		&Paragraph{Runs: []Run{{Text: "MODUL AJAR", Bold: true, Size: 48}}, Align: AlignCenter},
		&Paragraph{Runs: []Run{Text("Rantai makanan")}, Bullet: true},
		&Paragraph{Runs: []Run{Text("Energi <mengalir> & berpindah")}, PageBreakBefore: true, KeepNext: true},
		&Table{
			Widths: []int{30, 70},
			Rows: []Row{
				{Cells: []Cell{{Blocks: []Block{P(Bold("Aspek"))}, Shading: "87CEFA"}, TextCell(Bold("Keterangan"))}},
				{Cells: []Cell{TextCell(Text("Produsen"))}},
			},
		},
		nil,
		(*Paragraph)(nil),
	)
	return d
}

func TestDocumentParts(t *testing.T) {
	data, err := sampleDocument().Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	for _, name := range []string{
		"[Content_Types].xml", "_rels/.rels", "docProps/core.xml",
		"word/_rels/document.xml.rels", "word/document.xml", "word/styles.xml", "word/numbering.xml",
	} {
		wellFormed(t, readPart(t, data, name))
	}

	doc := readPart(t, data, "word/document.xml")
	for _, want := range []string{
		`<w:t xml:space="preserve">MODUL AJAR</w:t>`,
		`<w:jc w:val="center"/>`,
		`<w:sz w:val="48"/>`,
		`<w:numId w:val="1"/>`,
		`<w:pageBreakBefore/>`,
		`Energi &lt;mengalir&gt; &amp; berpindah`,
		`<w:shd w:val="clear" w:color="auto" w:fill="87CEFA"/>`,
		`<w:pgSz w:w="11906" w:h="16838"/>`,
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document.xml missing %s", want)
		}
	}
	if got := strings.Count(doc, "<w:tc>"); got != 4 {
		t.Errorf("short rows should be padded to the grid: got %d cells, want 4", got)
	}

	if core := readPart(t, data, "docProps/core.xml"); !strings.Contains(core, "Modul Ajar - Ekosistem") {
		t.Errorf("core.xml missing title: %s", core)
	}
	if styles := readPart(t, data, "word/styles.xml"); !strings.Contains(styles, `w:ascii="Cambria"`) {
		t.Errorf("styles.xml missing default font")
	}
}

func TestNilBlocksSkipped(t *testing.T) {
	if n := len(sampleDocument().Blocks()); n != 4 {
		t.Fatalf("got %d blocks, want 4", n)
	}
}

func TestBorderlessTable(t *testing.T) {
	d := New(Letter)
	d.Add(&Table{Borderless: true, Rows: []Row{{Cells: []Cell{{}, {}}}}})
	data, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	doc := readPart(t, data, "word/document.xml")
	if strings.Contains(doc, `w:val="single" w:sz="4"`) {
		t.Error("borderless table has borders")
	}
	if !strings.Contains(doc, `<w:insideV w:val="nil"/>`) {
		t.Error("borderless table should clear inside borders")
	}
	if !strings.Contains(doc, "<w:tc><w:tcPr><w:tcW w:w=\"2500\" w:type=\"pct\"/></w:tcPr><w:p/></w:tc>") {
		t.Errorf("empty cell needs a paragraph:\n%s", doc)
	}
	if !strings.Contains(doc, `<w:pgSz w:w="12240" w:h="15840"/>`) {
		t.Error("letter page size")
	}
}

func TestLineBreaksInRun(t *testing.T) {
	d := New(A4)
	d.Add(P(Text("satu\ndua")))
	data, err := d.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	doc := readPart(t, data, "word/document.xml")
	if !strings.Contains(doc, `<w:t xml:space="preserve">satu</w:t><w:br/><w:t xml:space="preserve">dua</w:t>`) {
		t.Errorf("line break not written:\n%s", doc)
	}
}

func TestColumnWidths(t *testing.T) {
	tests := []struct {
		widths []int
		cols   int
		want   []int
	}{
		{nil, 4, []int{25, 25, 25, 25}},
		{[]int{30}, 3, []int{30, 35, 35}},
		{[]int{5, 45, 40, 10}, 4, []int{5, 45, 40, 10}},
		{[]int{90, 20}, 3, []int{90, 20, 1}},
	}
	for _, tt := range tests {
		tbl := &Table{Widths: tt.widths}
		got := tbl.columnWidths(tt.cols)
		if len(got) != len(tt.want) {
			t.Fatalf("columnWidths(%v, %d) = %v", tt.widths, tt.cols, got)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("columnWidths(%v, %d) = %v, want %v", tt.widths, tt.cols, got, tt.want)
				break
			}
		}
	}
}

func TestPlainText(t *testing.T) {
	got := sampleDocument().PlainText()
	want := "MODUL AJAR\nRantai makanan\nEnergi <mengalir> & berpindah\nAspek | Keterangan\nProdusen"
	if got != want {
		t.Fatalf("PlainText =\n%s\nwant\n%s", got, want)
	}
}
