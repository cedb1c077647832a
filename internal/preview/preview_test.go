package preview

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/net/html"

	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/mdtable"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testPlan() *lessonplan.Plan {
	return &lessonplan.Plan{
		IdentitySection: lessonplan.IdentitySection{
			SchoolName:     "SMP Negeri 1 Bandung",
			Subject:        "Sejarah",
			Grade:          "Fase D / Kelas VIII",
			Semester:       "Genap",
			TimeAllocation: "2 JP x 40 Menit",
			Topic:          "Kerajaan Majapahit",
		},
		GraduateProfile: []string{"Penalaran Kritis"},
		Design: lessonplan.Design{
			Objectives:          []string{"Siswa dapat menjelaskan masa kejayaan Majapahit."},
			PedagogicalPractice: "Model PBL:\n| Fase | Kegiatan |\n| Orientasi | siswa membaca sumber |",
			Environment:         "Ruang kelas.",
		},
		LearningExperience: []lessonplan.LearningStep{{
			MeetingNo: 1,
			Intro:     []string{"Salam dan doa"},
			Core:      lessonplan.Core{Memahami: []string{"Membaca teks"}},
			Closing:   []string{"Menyimpulkan"},
		}},
		Assessment: &lessonplan.Assessment{
			KKTP: []lessonplan.KKTPItem{{Criteria: "Menjelaskan", NeedsGuidance: "Belum", Basic: "Sebagian", Proficient: "Tepat", Advanced: "Rinci"}},
		},
		Reflection: &lessonplan.Reflection{Teacher: []string{"Apakah tujuan tercapai?"}},
		Materials: &lessonplan.Materials{
			Judul: "Majapahit",
			KonsepInti: lessonplan.KonsepInti{
				Definisi:    "Kerajaan Hindu-Buddha terakhir.",
				TabelVisual: mdtable.Structured([]string{"Raja", "Masa"}, [][]string{{"Hayam Wuruk", "1350-1389"}}),
			},
		},
		LKPD: &lessonplan.LKPD{
			Title: "Jejak Majapahit",
			Activities: lessonplan.Activities{
				Level1: lessonplan.Activity{Content: "Sebutkan raja Majapahit"},
			},
		},
		QuestionBank: &lessonplan.QuestionBank{Items: []lessonplan.QuestionItem{
			{Number: 1, Type: lessonplan.TypeMultipleChoice, Question: "Raja terbesar Majapahit", Options: []string{"Hayam Wuruk", "Ken Arok"}, AnswerKey: "A"},
			{Number: 2, Type: lessonplan.TypeMatching, Question: "Jodohkan", MatchingPairs: []lessonplan.MatchingPair{{Left: "Gajah Mada", Right: "Patih"}, {Left: "Hayam Wuruk", Right: "Maharaja"}}},
			{Number: 3, Type: lessonplan.TypeTrueFalse, Question: "Majapahit berdiri 1293", AnswerKey: "Benar", Stimulus: "stimulus-tersembunyi"},
		}},
		Approval: lessonplan.Approval{Location: "Bandung", Date: "2 Januari 2026", AuthorName: "Rina", PrincipalName: "Budi"},
	}
}

func renderPage(t *testing.T, plan *lessonplan.Plan, lesson lessonplan.LessonIdentity, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Render(context.Background(), &buf, plan, lesson, opts))
	return buf.String()
}

// texts returns the trimmed text of every element with the given tag, and
// class when class is not empty.
func texts(t *testing.T, doc, tag, class string) []string {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag && (class == "" || hasClass(n, class)) {
			out = append(out, strings.TrimSpace(textOf(n)))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
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

func TestRender_TabsSelectSections(t *testing.T) {
	tests := []struct {
		tab  Tab
		want []string
	}{
		{TabAll, []string{"MODUL AJAR", "LAMPIRAN 1: MATERI AJAR", "LEMBAR KERJA", "LAMPIRAN 3: BANK SOAL & EVALUASI"}},
		{"", []string{"MODUL AJAR", "LAMPIRAN 1: MATERI AJAR", "LEMBAR KERJA", "LAMPIRAN 3: BANK SOAL & EVALUASI"}},
		{TabPlan, []string{"MODUL AJAR"}},
		{TabMaterials, []string{"LAMPIRAN 1: MATERI AJAR"}},
		{TabWorksheet, []string{"LEMBAR KERJA"}},
		{TabQuestionBank, []string{"LAMPIRAN 3: BANK SOAL & EVALUASI"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			out := renderPage(t, testPlan(), lessonplan.LessonIdentity{}, Options{Tab: tt.tab})
			assert.Equal(t, tt.want, texts(t, out, "h1", ""))
		})
	}
}

func TestRender_PlanTabIncludesAssessmentAndApproval(t *testing.T) {
	out := renderPage(t, testPlan(), lessonplan.LessonIdentity{}, Options{Tab: TabPlan})

	h3 := texts(t, out, "h3", "")
	assert.Equal(t, []string{"I. IDENTITAS UMUM", "II. KOMPONEN INTI", "III. LANGKAH PEMBELAJARAN", "IV. ASESMEN PEMBELAJARAN", "V. REFLEKSI PEMBELAJARAN"}, h3)
	assert.Contains(t, out, "Mengetahui,")
	assert.Equal(t, []string{"Budi", "Rina"}, texts(t, out, "p", "signer"))
	assert.Equal(t, []string{"TOPIK: KERAJAAN MAJAPAHIT"}, texts(t, out, "h2", ""))
}

func TestRender_SkipsMissingParts(t *testing.T) {
	plan := testPlan()
	plan.Approval = lessonplan.Approval{}
	plan.Materials = nil
	plan.Assessment = &lessonplan.Assessment{}

	out := renderPage(t, plan, lessonplan.LessonIdentity{}, Options{})

	assert.NotContains(t, out, "Mengetahui,")
	assert.NotContains(t, out, "LAMPIRAN 1")
	assert.Contains(t, out, "Data KKTP tidak tersedia.")
	assert.Contains(t, out, "Checklist tidak tersedia.")
	assert.Contains(t, out, "Kisi-kisi tidak tersedia.")
}

func TestRender_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := Render(context.Background(), &buf, nil, lessonplan.LessonIdentity{}, Options{})
	assert.ErrorIs(t, err, ErrNoPlan)

	err = Render(context.Background(), &buf, testPlan(), lessonplan.LessonIdentity{}, Options{Tab: "RAPOR"})
	assert.ErrorIs(t, err, ErrUnknownTab)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = Render(ctx, &buf, testPlan(), lessonplan.LessonIdentity{}, Options{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, buf.Len())
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab(" materi ")
	require.NoError(t, err)
	assert.Equal(t, TabMaterials, tab)

	tab, err = ParseTab("")
	require.NoError(t, err)
	assert.Equal(t, TabAll, tab)

	_, err = ParseTab("rapor")
	assert.ErrorIs(t, err, ErrUnknownTab)
}

func TestRender_PrintSettings(t *testing.T) {
	out := renderPage(t, testPlan(), lessonplan.LessonIdentity{}, Options{
		Settings: lessonplan.DocumentSettings{PaperSize: lessonplan.PaperLetter, FontSize: lessonplan.Font10},
	})
	assert.Contains(t, out, "size: letter;")
	assert.Contains(t, out, "font-size: 10pt;")

	out = renderPage(t, testPlan(), lessonplan.LessonIdentity{}, Options{})
	assert.Contains(t, out, "size: A4;")
	assert.Contains(t, out, "font-size: 12pt;")
	assert.Contains(t, out, "<title>Modul Ajar - Kerajaan Majapahit</title>")
}

func TestRender_MathFollowsLessonSubject(t *testing.T) {
	plan := testPlan()
	plan.Design.Objectives = []string{"Menghitung $x^2$ dan harga $5$"}

	out := renderPage(t, plan, lessonplan.LessonIdentity{}, Options{Tab: TabPlan})
	assert.NotContains(t, out, "mathjax")
	assert.NotContains(t, out, "$x^2$")

	out = renderPage(t, plan, lessonplan.LessonIdentity{Subject: "Matematika"}, Options{Tab: TabPlan})
	assert.Contains(t, out, "mathjax")
	assert.Contains(t, out, "$x^2$")
}

func TestRender_EscapesAndSanitizes(t *testing.T) {
	plan := testPlan()
	plan.IdentitySection.SchoolName = "<b>SMP</b>"
	plan.Design.Environment = "Kelas <script>alert(1)</script>"

	out := renderPage(t, plan, lessonplan.LessonIdentity{}, Options{Tab: TabPlan})
	assert.Contains(t, out, "&lt;b&gt;SMP&lt;/b&gt;")
	assert.NotContains(t, out, "<script>alert")
}

func TestRender_TablesInFields(t *testing.T) {
	out := renderPage(t, testPlan(), lessonplan.LessonIdentity{}, Options{})

	cells := texts(t, out, "td", "")
	assert.Contains(t, cells, "Orientasi")
	assert.Contains(t, cells, "Hayam Wuruk")
	assert.Contains(t, texts(t, out, "th", ""), "Raja")
}

func TestRender_StructuredVisualIsNotRepaired(t *testing.T) {
	cells := func(rows [][]string) []string {
		plan := testPlan()
		plan.Materials.KonsepInti.TabelVisual = mdtable.Structured([]string{"Raja", "Masa"}, rows)
		return texts(t, renderPage(t, plan, lessonplan.LessonIdentity{}, Options{Tab: TabMaterials}), "td", "")
	}

	base := cells([][]string{{"Hayam Wuruk", "1350-1389"}})
	withEmpty := cells([][]string{{"Hayam Wuruk", "1350-1389"}, {"", ""}})
	assert.Len(t, withEmpty, len(base)+2, "an empty row of a table object is kept")
}

func TestRender_QuestionBank(t *testing.T) {
	out := renderPage(t, testPlan(), lessonplan.LessonIdentity{}, Options{Tab: TabQuestionBank})

	assert.Equal(t, []string{"A. PILIHAN GANDA", "B. MENJODOHKAN", "C. BENAR/SALAH"}, texts(t, out, "h3", "group-heading"))
	assert.Equal(t, []string{"A", "1 - B, 2 - A", "Benar"}, texts(t, out, "li", ""))
	assert.NotContains(t, out, "stimulus-tersembunyi")
	assert.Contains(t, out, "( ) Benar")
}
