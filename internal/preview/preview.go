// Package preview renders a generated plan as a printable HTML page.
package preview

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/mdtable"
	"github.com/pakarguru/modulajar/internal/render"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageTemplates = template.Must(template.New("preview").Funcs(template.FuncMap{
	"upper":         upper,
	"dash":          dash,
	"safe":          render.SafeString,
	"inc":           func(i int) int { return i + 1 },
	"letter":        lessonplan.Letter,
	"groups":        lessonplan.GroupQuestions,
	"sortedAnswers": lessonplan.SortedAnswers,
	"answerKey":     lessonplan.AnswerKey,
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// Tab selects which parts of the plan are shown.
type Tab string

const (
	TabAll          Tab = "SEMUA"
	TabPlan         Tab = "RPP_PLUS"
	TabMaterials    Tab = "MATERI"
	TabWorksheet    Tab = "LKPD"
	TabQuestionBank Tab = "SOAL"
)

var tabSections = map[Tab][]string{
	TabAll:          {"rpp", "assessment", "reflection", "approval", "materials", "lkpd", "questions"},
	TabPlan:         {"rpp", "assessment", "reflection", "approval"},
	TabMaterials:    {"materials"},
	TabWorksheet:    {"lkpd"},
	TabQuestionBank: {"questions"},
}

var (
	ErrNoPlan     = errors.New("no plan to preview")
	ErrUnknownTab = errors.New("unknown tab")
)

// ParseTab accepts a tab name in any case. The empty string selects TabAll.
func ParseTab(s string) (Tab, error) {
	t := Tab(strings.ToUpper(strings.TrimSpace(s)))
	if t == "" {
		return TabAll, nil
	}
	if _, ok := tabSections[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
	return t, nil
}

type Options struct {
	Tab      Tab
	Settings lessonplan.DocumentSettings
	Logger   *zap.Logger
}

// view is the data every section template receives.
type view struct {
	Plan        *lessonplan.Plan
	R           *render.Renderer
	HasApproval bool
}

// Visual renders the materials summary table. Structured tables are shown
// as given; legacy text without pipes goes through bullet conversion first.
func (v view) Visual() template.HTML {
	if v.Plan.Materials == nil {
		return ""
	}
	c := v.Plan.Materials.KonsepInti.TabelVisual
	if c.IsZero() {
		return v.R.Block("-")
	}
	if c.IsStructured() {
		return v.R.Table(c.Table)
	}
	text := c.Raw
	if !strings.Contains(text, "|") {
		text = mdtable.ConvertBulletPoints(text)
	}
	return v.R.Block(text)
}

type page struct {
	Title    string
	Paper    template.CSS
	FontSize template.CSS
	Math     bool
	Sections []template.HTML
}

// Render writes the page for plan to w. Math handling follows the lesson
// subject, or the plan's own subject when the lesson has none.
func Render(ctx context.Context, w io.Writer, plan *lessonplan.Plan, lesson lessonplan.LessonIdentity, opts Options) error {
	if plan == nil {
		return ErrNoPlan
	}
	tab := opts.Tab
	if tab == "" {
		tab = TabAll
	}
	names, ok := tabSections[tab]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTab, tab)
	}
	settings := opts.Settings
	if settings.PaperSize == "" {
		settings.PaperSize = lessonplan.PaperA4
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	subject := lesson.Subject
	if subject == "" {
		subject = plan.IdentitySection.Subject
	}
	math := lessonplan.IsMathSubject(subject)
	v := view{
		Plan:        plan,
		R:           render.New(math, render.WithLogger(log)),
		HasApproval: plan.Approval != (lessonplan.Approval{}),
	}

	sections := make([]template.HTML, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := pageTemplates.ExecuteTemplate(&buf, name, v); err != nil {
				return fmt.Errorf("render %s: %w", name, err)
			}
			sections[i] = template.HTML(buf.String())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	p := page{
		Title:    title(plan),
		Paper:    paperCSS(settings.PaperSize),
		FontSize: template.CSS(fmt.Sprintf("%dpt", settings.FontSize.Points())),
		Math:     math,
		Sections: sections,
	}
	log.Debug("preview rendered", zap.String("tab", string(tab)), zap.Int("sections", len(sections)))
	return pageTemplates.ExecuteTemplate(w, "page", p)
}

func paperCSS(p lessonplan.PaperSize) template.CSS {
	if p == lessonplan.PaperLetter {
		return "letter"
	}
	return "A4"
}

func title(plan *lessonplan.Plan) string {
	if t := strings.TrimSpace(plan.IdentitySection.Topic); t != "" {
		return "Modul Ajar - " + t
	}
	return "Modul Ajar"
}

// upper uses Indonesian casing. A Caser is not safe for concurrent use, so
// each call gets its own.
func upper(s string) string {
	return cases.Upper(language.Indonesian).String(render.FixTerminology(s))
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
