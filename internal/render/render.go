// Package render turns model-generated field text into sanitized HTML.
//
// Every field goes through the same steps: terminology fix, LaTeX cleanup,
// math protection, table normalization, markdown rendering, sanitizing and
// finally restoring the math spans for MathJax to typeset in the browser.
package render

import (
	"bytes"
	"html"
	"html/template"
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"

	"github.com/pakarguru/modulajar/internal/mathspan"
	"github.com/pakarguru/modulajar/internal/mdtable"
)

// converter is the subset of goldmark.Markdown the renderer uses.
type converter interface {
	Convert(source []byte, w io.Writer, opts ...parser.ParseOption) error
}

// Renderer renders markdown fields for one document. It is safe for
// concurrent use.
type Renderer struct {
	md          converter
	policy      *bluemonday.Policy
	mathSubject bool
	log         *zap.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for renderer fallbacks.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New returns a Renderer. mathSubject keeps LaTeX delimiters in the output;
// for other subjects dollar signs are stripped before rendering.
func New(mathSubject bool, opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		policy:      newPolicy(),
		mathSubject: mathSubject,
		log:         zap.L(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("align").OnElements("th", "td")
	return p
}

// MathSubject reports whether LaTeX is kept for this renderer.
func (r *Renderer) MathSubject() bool { return r.mathSubject }

// Block renders a multi-paragraph field. Tables and lists in the text are
// normalized into pipe tables first.
func (r *Renderer) Block(text string) template.HTML {
	return r.render(text, true)
}

var (
	inlineNumber = regexp.MustCompile(`^\d+\.\s*`)
	paragraphTag = regexp.MustCompile(`</?p[^>]*>`)
)

// Inline renders a short field that sits inside other markup, such as a
// list item or table cell. A leading "1." is dropped and no paragraph tags
// are emitted.
func (r *Renderer) Inline(text string) template.HTML {
	text = inlineNumber.ReplaceAllString(text, "")
	out := r.render(text, false)
	return template.HTML(strings.TrimSpace(paragraphTag.ReplaceAllString(string(out), "")))
}

// Table renders a structured table exactly as given. It skips the table
// repair pass, so rows are neither padded, truncated nor dropped.
func (r *Renderer) Table(t *mdtable.Table) template.HTML {
	return r.render(t.Markdown(), false)
}

// Activity renders worksheet activity content.
func (r *Renderer) Activity(content string) template.HTML {
	return r.Block(ActivityMarkdown(content))
}

func (r *Renderer) render(text string, tables bool) template.HTML {
	text = FixTerminology(text)
	text = CleanupLatex(text, r.mathSubject)

	protected, spans := mathspan.Protect(text)
	if tables {
		protected = mdtable.Normalize(protected)
	}

	var buf bytes.Buffer
	out := ""
	if err := r.md.Convert([]byte(protected), &buf); err != nil {
		r.log.Warn("markdown rendering failed, using plain fallback", zap.Error(err))
		out = Fallback(protected)
	} else {
		out = buf.String()
	}

	out = r.policy.Sanitize(out)
	return template.HTML(mathspan.RestoreHTML(out, spans))
}

var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Fallback is the minimal markdown transform used when the renderer fails:
// the text is escaped, "**bold**" becomes <strong> and newlines become <br>.
func Fallback(text string) string {
	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	return strings.ReplaceAll(out, "\n", "<br>\n")
}
