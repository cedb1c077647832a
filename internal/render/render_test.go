package render

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pakarguru/modulajar/internal/mdtable"
)

// cellTexts returns the text of every th and td element in doc.
func cellTexts(t *testing.T, doc string) []string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	var cells []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			cells = append(cells, strings.TrimSpace(textOf(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return cells
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}

func TestBlock_MathSurvivesTableRepair(t *testing.T) {
	r := New(true)
	out := string(r.Block("| Rumus | Contoh |\n| Luas = $\\pi r^2$ | 3 |"))

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "$\\pi r^2$")
	assert.Equal(t, []string{"Rumus", "Contoh", "Luas = $\\pi r^2$", "3"}, cellTexts(t, out))
}

func TestBlock_PipeInsideMathIsNotAColumn(t *testing.T) {
	r := New(true)
	out := string(r.Block("| Nilai | Keterangan |\n|---|---|\n| $|x|$ | mutlak |"))

	assert.Equal(t, []string{"Nilai", "Keterangan", "$|x|$", "mutlak"}, cellTexts(t, out))
}

func TestTable_RendersRowsAsGiven(t *testing.T) {
	r := New(true)
	tbl := &mdtable.Table{
		Headers: []string{"Nilai", "Keterangan"},
		Rows:    [][]string{{"$|x|$", "mutlak"}, {"", ""}},
	}

	out := string(r.Table(tbl))
	assert.Equal(t, []string{"Nilai", "Keterangan", "$|x|$", "mutlak", "", ""}, cellTexts(t, out))

	repaired := string(r.Block(tbl.Markdown()))
	assert.Equal(t, []string{"Nilai", "Keterangan", "$|x|$", "mutlak"}, cellTexts(t, repaired), "the repair pass drops the empty row")
}

func TestBlock_NonMathSubjectDropsDollars(t *testing.T) {
	r := New(false)
	out := string(r.Block("Harga $5$ dan $10$"))
	assert.Equal(t, "<p>Harga 5 dan 10</p>", strings.TrimSpace(out))
}

func TestBlock_MathSubjectUnwrapsPlainNumbers(t *testing.T) {
	r := New(true)
	out := string(r.Block("$10$ dan $x^2$ serta $50%$"))
	assert.Equal(t, "<p>10 dan $x^2$ serta 50%</p>", strings.TrimSpace(out))
}

func TestBlock_EscapesMarkupInsideMath(t *testing.T) {
	r := New(true)
	out := string(r.Block("Jika $a < b$ maka"))
	assert.Contains(t, out, "$a &lt; b$")
}

func TestBlock_Terminology(t *testing.T) {
	r := New(false)
	out := string(r.Block("Peserta didik dan siswa berdiskusi"))
	assert.Contains(t, out, "Murid dan Murid berdiskusi")
}

func TestBlock_Sanitizes(t *testing.T) {
	r := New(false)
	out := string(r.Block("**aman** <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "<strong>aman</strong>")
}

func TestInline_StripsNumberAndParagraph(t *testing.T) {
	r := New(false)
	out := string(r.Inline("1. **Tebal** teks"))
	assert.Equal(t, "<strong>Tebal</strong> teks", out)
}

type failingConverter struct{}

func (failingConverter) Convert([]byte, io.Writer, ...parser.ParseOption) error {
	return errors.New("renderer down")
}

func TestBlock_FallbackWhenRendererFails(t *testing.T) {
	r := New(true, WithLogger(zap.NewNop()))
	r.md = failingConverter{}

	out := string(r.Block("**Penting**: $x^2$\nbaris <dua>"))
	assert.Contains(t, out, "<strong>Penting</strong>")
	assert.Contains(t, out, "$x^2$")
	assert.Contains(t, out, "&lt;dua&gt;")
}

func TestFallback(t *testing.T) {
	assert.Equal(t, "<strong>a</strong> &amp; b<br>\nc", Fallback("**a** & b\nc"))
}

func TestCleanupLatex(t *testing.T) {
	tests := []struct {
		in   string
		math bool
		want string
	}{
		{"$x$ dan $$y$$", false, "x dan y"},
		{"$5.5$ dan $3,2$", true, "5.5 dan 3,2"},
		{"$50 %$", true, "50 %"},
		{"$\\frac{1}{2}$", true, "$\\frac{1}{2}$"},
	}
	for _, tt := range tests {
		if got := CleanupLatex(tt.in, tt.math); got != tt.want {
			t.Errorf("CleanupLatex(%q, %v) = %q, want %q", tt.in, tt.math, got, tt.want)
		}
	}
}

func TestSafeString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "para siswa", "para Murid"},
		{"number", float64(12), "12"},
		{"array", []any{"a", float64(2)}, "a, 2"},
		{"object content", map[string]any{"content": "isi peserta didik"}, "isi Murid"},
		{"object description", map[string]any{"description": "uraian"}, "uraian"},
		{"object fallback", map[string]any{"x": "y"}, `{"x":"y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeString(tt.in))
		})
	}
}

func TestActivityMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain lines are numbered", "Amati gambar\n\nTulis hasil", "1. Amati gambar\n2. Tulis hasil"},
		{"numbered lines kept", "Amati\n2. Tulis", "1. Amati\n2. Tulis"},
		{"list passes through", "1. a\n2. b", "1. a\n2. b"},
		{"bullet passes through", "- a\nb", "- a\nb"},
		{"table passes through", "| a |\n|---|\n| 1 |", "| a |\n|---|\n| 1 |"},
		{"single line", "  Diskusikan.  ", "Diskusikan."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ActivityMarkdown(tt.in))
		})
	}
}
