package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pakarguru/modulajar/internal/docx"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/mdtable"
	"github.com/pakarguru/modulajar/internal/render"
)

func (b *builder) plan(p *lessonplan.Plan) {
	id := p.IdentitySection
	b.add(
		b.heading("Modul Ajar"),
		b.topic("Topik: "+id.Topic),
		b.section("I. Identitas Umum", false),
		b.identityTable(p),
		b.subsection("Asesmen Awal (Opsional)", true),
	)
	if strings.TrimSpace(p.InitialAssessment) == "" {
		b.text("Belum ada data")
	} else {
		b.text(p.InitialAssessment)
	}

	b.add(
		b.subsection("Dimensi Profil Lulusan", true),
		b.para(docx.Italic("Dimensi yang dikuatkan:")),
	)
	b.list(p.GraduateProfile, 0)

	b.add(
		b.section("II. Komponen Inti", false),
		b.subsection("1. Tujuan Pembelajaran", true),
	)
	b.list(p.Design.Objectives, 0)
	b.add(b.subsection("2. Praktik Pedagogis", true))
	b.text(p.Design.PedagogicalPractice)

	n := 3
	if p.Design.Partnership != "" {
		b.add(b.subsection("3. Kemitraan (Opsional)", true))
		b.text(p.Design.Partnership)
		n++
	}
	b.add(b.subsection(fmt.Sprintf("%d. Lingkungan Belajar", n), true))
	b.text(p.Design.Environment)
	if p.Design.Digital != "" {
		b.add(b.subsection(fmt.Sprintf("%d. Pemanfaatan Digital (Opsional)", n+1), true))
		b.text(p.Design.Digital)
	}

	b.add(b.section("III. Langkah Pembelajaran", false))
	for _, step := range p.LearningExperience {
		b.add(&docx.Paragraph{
			Runs:    []docx.Run{docx.Bold("PERTEMUAN " + strconv.Itoa(step.MeetingNo))},
			Align:   docx.AlignCenter,
			Shading: colorBand,
			Spacing: &docx.Spacing{Before: 240, After: 240, Line: lineBody},
		})

		b.add(b.subsection("A. Pendahuluan", false), b.principle(step.IntroPrinciple))
		b.list(step.Intro, 0)

		b.add(b.subsection("B. Kegiatan Inti", false), b.principle(step.CorePrinciple))
		b.add(b.label("1. Memahami:"))
		b.list(step.Core.Memahami, 1)
		b.add(b.label("2. Mengaplikasi:"))
		b.list(step.Core.Mengaplikasi, 1)
		b.add(b.label("3. Merefleksi:"))
		b.list(step.Core.Merefleksi, 1)

		b.add(b.subsection("C. Penutup", false), b.principle(step.ClosingPrinciple))
		b.list(step.Closing, 0)
	}
}

func (b *builder) principle(s string) *docx.Paragraph {
	return b.para(docx.Italic("Prinsip: " + render.FixTerminology(s)))
}

func (b *builder) identityTable(p *lessonplan.Plan) *docx.Table {
	id := p.IdentitySection
	meetings := id.MeetingCount
	if meetings == "" {
		meetings = "1 Pertemuan"
	}
	rows := []struct{ label, value string }{
		{"Nama Sekolah", id.SchoolName},
		{"Nama Penyusun", p.Approval.AuthorName},
		{"Mata Pelajaran", id.Subject},
		{"Kelas / Fase", id.Grade},
		{"Semester", id.Semester},
		{"Alokasi Waktu", id.TimeAllocation},
		{"Jumlah Pertemuan", meetings},
	}
	t := &docx.Table{Widths: []int{30, 2, 68}, Borderless: true}
	for _, r := range rows {
		t.Rows = append(t.Rows, docx.Row{Cells: []docx.Cell{
			{Blocks: []docx.Block{b.cellPara(docx.Bold(r.label))}},
			{Blocks: []docx.Block{b.cellPara(docx.Text(":"))}},
			{Blocks: []docx.Block{b.cellPara(docx.Text(orDash(render.FixTerminology(r.value))))}},
		}})
	}
	return t
}

func (b *builder) assessment(a *lessonplan.Assessment) {
	if a == nil {
		return
	}
	b.add(
		b.section("IV. Asesmen Pembelajaran", false),
		b.subsection("1. KKTP (Rubrik Pembelajaran Mendalam)", true),
		b.para(docx.Italic("Menggunakan Taksonomi Bloom (Revisi Anderson & Krathwohl)")),
	)
	if len(a.KKTP) == 0 {
		b.add(b.para(docx.Italic("Data KKTP tidak tersedia.")))
	} else {
		rows := make([][]string, len(a.KKTP))
		for i, k := range a.KKTP {
			rows[i] = []string{k.Criteria, k.NeedsGuidance, k.Basic, k.Proficient, k.Advanced}
		}
		b.add(b.gridTable([]string{"Kriteria", "Perlu Bimbingan", "Cukup", "Baik", "Sangat Baik"}, rows, colorBand, 20, 20, 20, 20, 20))
	}

	b.add(b.subsection("2. Asesmen Formatif", true))
	if len(a.Formative.Checklist) > 0 {
		b.add(b.para(docx.Bold("A. Lembar Observasi (Checklist)")))
		rows := make([][]string, len(a.Formative.Checklist))
		for i, c := range a.Formative.Checklist {
			rows[i] = []string{strconv.Itoa(i + 1), orDash(c.Aspect), orDash(c.Indicator), ""}
		}
		b.add(b.gridTable([]string{"No", "Aspek Pengamatan", "Indikator Perilaku", "Ceklis"}, rows, colorBand, 5, 45, 40, 10))
	}

	fb := a.Formative.FeedbackGuide
	b.add(&docx.Paragraph{
		Runs:    []docx.Run{docx.Bold("B. Tangga Umpan Balik")},
		Spacing: &docx.Spacing{Before: 240, After: afterPara, Line: lineBody},
	})
	b.add(
		b.listItem("Klarifikasi: "+orDash(fb.Clarification), 0),
		b.listItem("Apresiasi: "+orDash(fb.Appreciation), 0),
		b.listItem("Saran: "+orDash(fb.Suggestion), 0),
	)

	b.add(b.subsection("3. Asesmen Sumatif (Kisi-Kisi)", true))
	if len(a.Summative.Grid) > 0 {
		rows := make([][]string, len(a.Summative.Grid))
		for i, g := range a.Summative.Grid {
			rows[i] = []string{strconv.Itoa(i + 1), orDash(g.Indicator), orDash(g.Level), orDash(g.Technique)}
		}
		b.add(b.gridTable([]string{"No", "Indikator Soal", "Level Kognitif", "Bentuk Soal"}, rows, colorBand, 5, 55, 20, 20))
	} else {
		b.add(b.para(docx.Italic("Kisi-kisi tidak tersedia.")))
	}

	iv := a.Intervention
	b.add(
		b.subsection("4. Tindak Lanjut & Intervensi Guru", true),
		b.gridTable([]string{"Kondisi Murid", "Strategi Intervensi"}, [][]string{
			{"Perlu Bimbingan", orDash(iv.NeedsGuidance)},
			{"Cukup", orDash(iv.Basic)},
			{"Baik", orDash(iv.Proficient)},
			{"Sangat Baik", orDash(iv.Advanced)},
		}, colorBand, 33, 67),
	)
}

func (b *builder) reflection(r *lessonplan.Reflection) {
	if r == nil {
		return
	}
	b.add(b.section("V. Refleksi Pembelajaran", false), b.subsection("1. Refleksi Guru", false))
	b.list(r.Teacher, 0)
	b.add(b.subsection("2. Refleksi Murid", false))
	b.list(r.Student, 0)
}

// approval writes the two-column signature block: principal on the left,
// author on the right.
func (b *builder) approval(a lessonplan.Approval) {
	if a == (lessonplan.Approval{}) {
		return
	}
	sig := func(lines ...docx.Run) []docx.Block {
		out := make([]docx.Block, len(lines))
		for i, r := range lines {
			out[i] = &docx.Paragraph{Runs: []docx.Run{r}, Align: docx.AlignCenter, Spacing: &docx.Spacing{After: 0, Line: lineSig}}
		}
		return out
	}
	gap := docx.Text("\n\n\n\n")
	left := sig(
		docx.Text("Mengetahui,"),
		docx.Text("Kepala Sekolah"),
		gap,
		docx.Run{Text: orDash(a.PrincipalName), Bold: true, Underline: true},
		docx.Text("NIP. "+orDash(a.PrincipalNip)),
	)
	right := sig(
		docx.Text(strings.Trim(a.Location+", "+a.Date, ", ")),
		docx.Text("Guru Mata Pelajaran"),
		gap,
		docx.Run{Text: orDash(a.AuthorName), Bold: true, Underline: true},
		docx.Text("NIP. "+orDash(a.AuthorNip)),
	)
	b.add(b.spacer(), &docx.Table{
		Widths:     []int{50, 50},
		Borderless: true,
		Rows:       []docx.Row{{Cells: []docx.Cell{{Blocks: left}, {Blocks: right}}}},
	})
}

func (b *builder) materials(m *lessonplan.Materials) {
	if m == nil {
		return
	}
	b.add(b.section("Lampiran 1: Materi Ajar", true), b.heading(m.Judul))

	b.add(b.subsection("Pemantik", true))
	b.text(m.Pemantik)

	if len(m.SubTopik) > 0 {
		b.add(b.subsection("Sub Topik", true))
		b.list(m.SubTopik, 0)
	}

	k := m.KonsepInti
	b.add(
		b.subsection("Konsep Inti", true),
		b.para(docx.Bold("Definisi: "), docx.Text(b.clean(k.Definisi))),
		b.para(docx.Bold("Uraian Materi:")),
	)
	for _, p := range k.PenjelasanBertahap {
		b.text(p)
	}
	if strings.TrimSpace(k.ContohKonkret) != "" {
		b.add(b.para(docx.Bold("Contoh Konkret:")))
		b.text(k.ContohKonkret)
	}

	b.add(b.para(docx.Bold("Visualisasi:")))
	b.visual(k.TabelVisual)

	if strings.TrimSpace(m.Trivia) != "" {
		b.add(b.subsection("Tahukah Kamu?", true))
		b.text(m.Trivia)
	}

	b.add(b.subsection("Glosarium", true))
	for _, g := range m.Glosarium {
		b.add(b.listItem(g.Istilah+": "+g.Definisi, 0))
	}
}

// visual writes the summary table: structured content becomes a native
// table as is, legacy text goes through the list converter first.
func (b *builder) visual(c mdtable.Content) {
	switch {
	case c.IsStructured():
		b.add(b.gridTable(c.Table.Headers, c.Table.Rows, colorTable), b.spacer())
	case c.IsZero():
		b.add(b.para(docx.Italic("-")))
	default:
		b.add(b.convert(c.Raw, legacyTable)...)
	}
}

// legacyTable turns a list without pipes into a table before the usual
// repair. Math spans are already hidden, so a pipe inside one does not count.
func legacyTable(s string) string {
	if !strings.Contains(s, "|") {
		s = mdtable.ConvertBulletPoints(s)
	}
	return mdtable.Normalize(s)
}

func (b *builder) lkpd(l *lessonplan.LKPD) {
	if l == nil {
		return
	}
	b.add(
		b.section("Lampiran 2: Lembar Kerja (LKPD)", true),
		b.heading(l.Title),
		&docx.Paragraph{
			Runs:    []docx.Run{docx.Text("Nama: ...................................  Kelas: ...................................")},
			Spacing: &docx.Spacing{After: 240, Line: lineBody},
		},
		b.subsection("Tujuan", true),
	)
	b.text(l.Objectives)

	b.add(b.subsection("Petunjuk", true))
	b.list(l.Instructions, 0)

	if strings.TrimSpace(l.Stimulus) != "" {
		b.add(b.subsection("Stimulus", true))
		b.text(l.Stimulus)
	}

	for i, lv := range l.Activities.Levels() {
		b.add(b.subsection(fmt.Sprintf("Aktivitas %d %s", i+1, strings.TrimPrefix(lv.Label, fmt.Sprintf("Level %d ", i+1))), true))
		b.text(render.ActivityMarkdown(lv.Activity.Content))
	}

	b.add(b.subsection("Refleksi Diri", true))
	b.list(l.Reflection, 0)
}

func (b *builder) questionBank(qb *lessonplan.QuestionBank) {
	if qb == nil {
		return
	}
	b.add(b.section("Lampiran 3: Bank Soal", true))

	groups := lessonplan.GroupQuestions(qb.Items)
	for _, g := range groups {
		b.add(b.subsection(b.upper.String(g.Heading()), true))
		for i, q := range g.Items {
			b.question(i+1, q)
		}
	}

	b.add(b.subsection("Kunci Jawaban", true))
	for _, g := range groups {
		b.add(b.label(b.upper.String(g.Heading())))
		for i, q := range g.Items {
			b.add(b.para(docx.Text(fmt.Sprintf("%d. %s", i+1, b.clean(lessonplan.AnswerKey(q))))))
		}
	}
}

func (b *builder) question(n int, q lessonplan.QuestionItem) {
	if q.ShowsStimulus() {
		for _, blk := range b.textBlocks(q.Stimulus) {
			if p, ok := blk.(*docx.Paragraph); ok {
				for i := range p.Runs {
					p.Runs[i].Italic = true
				}
			}
			b.add(blk)
		}
	}
	b.add(&docx.Paragraph{
		Runs:    []docx.Run{docx.Bold(strconv.Itoa(n) + ". "), docx.Text(b.clean(q.Question))},
		Spacing: &docx.Spacing{Before: 120, After: afterList, Line: lineBody},
	})

	if q.HasOptions() {
		for i, opt := range q.Options {
			b.add(&docx.Paragraph{
				Runs:    []docx.Run{docx.Text(lessonplan.Letter(i) + ". " + b.clean(opt))},
				Indent:  &docx.Indent{Left: 425},
				Spacing: &docx.Spacing{After: 60, Line: lineBody},
			})
		}
	}

	if q.Type == lessonplan.TypeMatching && len(q.MatchingPairs) > 0 {
		b.add(b.matchingTable(q.MatchingPairs), b.spacer())
	}

	if q.Type == lessonplan.TypeTrueFalse {
		b.add(&docx.Paragraph{
			Runs:    []docx.Run{docx.Bold("( ) Benar        ( ) Salah")},
			Indent:  &docx.Indent{Left: 425},
			Spacing: &docx.Spacing{After: afterList, Line: lineBody},
		})
	}
}

// matchingTable lays the premises and the sorted answers side by side in a
// borderless two-column table.
func (b *builder) matchingTable(pairs []lessonplan.MatchingPair) *docx.Table {
	item := func(text string) docx.Block {
		return &docx.Paragraph{
			Runs:    []docx.Run{docx.Text(text)},
			Indent:  &docx.Indent{Left: 240, Hanging: 240},
			Spacing: &docx.Spacing{After: 60, Line: lineBody},
		}
	}
	left := []docx.Block{b.cellPara(docx.Run{Text: "Premis", Bold: true, Underline: true})}
	for i, p := range pairs {
		left = append(left, item(fmt.Sprintf("%d. %s", i+1, b.clean(p.Left))))
	}
	right := []docx.Block{b.cellPara(docx.Run{Text: "Pilihan Jawaban", Bold: true, Underline: true})}
	for i, a := range lessonplan.SortedAnswers(pairs) {
		right = append(right, item(lessonplan.Letter(i)+". "+b.clean(a)))
	}
	return &docx.Table{
		Widths:     []int{50, 50},
		Borderless: true,
		Rows:       []docx.Row{{Cells: []docx.Cell{{Blocks: left}, {Blocks: right}}}},
	}
}
