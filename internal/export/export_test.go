package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pakarguru/modulajar/internal/config"
	"github.com/pakarguru/modulajar/internal/docx"
	"github.com/pakarguru/modulajar/internal/lessonplan"
	"github.com/pakarguru/modulajar/internal/mdtable"
)

func testPlan() *lessonplan.Plan {
	return &lessonplan.Plan{
		IdentitySection: lessonplan.IdentitySection{
			SchoolName:     "SMP Negeri 1 Bandung",
			Subject:        "IPA",
			Grade:          "Fase D / Kelas VII",
			Semester:       "Ganjil",
			TimeAllocation: "2 JP x 40 Menit",
			MeetingCount:   "1 Pertemuan",
			Topic:          "Ekosistem",
		},
		InitialAssessment: "Tanya jawab tentang makhluk hidup di sekitar sekolah.",
		GraduateProfile:   []string{"Penalaran Kritis", "Kolaborasi"},
		Design: lessonplan.Design{
			Objectives:          []string{"1. Siswa dapat menjelaskan rantai makanan."},
			PedagogicalPractice: "Model PBL:\n| Fase | Kegiatan |\n| Orientasi | siswa mengamati kolam |",
			Environment:         "Kelas dan halaman sekolah.",
		},
		LearningExperience: []lessonplan.LearningStep{{
			MeetingNo:        1,
			Intro:            []string{"Salam dan doa"},
			IntroPrinciple:   "Berkesadaran",
			Core:             lessonplan.Core{Memahami: []string{"Mengamati"}, Mengaplikasi: []string{"Membuat bagan"}, Merefleksi: []string{"Menulis jurnal"}},
			CorePrinciple:    "Bermakna",
			Closing:          []string{"Menyimpulkan"},
			ClosingPrinciple: "Menggembirakan",
		}},
		Assessment: &lessonplan.Assessment{
			KKTP: []lessonplan.KKTPItem{{Criteria: "Menjelaskan", NeedsGuidance: "Belum", Basic: "Sebagian", Proficient: "Tepat", Advanced: "Tepat dan rinci"}},
			Formative: lessonplan.Formative{
				Checklist:     []lessonplan.ChecklistItem{{Aspect: "Keaktifan", Indicator: "Bertanya"}},
				FeedbackGuide: lessonplan.FeedbackGuide{Clarification: "Apa maksudmu?", Appreciation: "Bagus", Suggestion: "Tambahkan contoh"},
			},
			Summative:    lessonplan.Summative{Grid: []lessonplan.GridItem{{Indicator: "Menentukan produsen", Level: "C2", Technique: "Pilihan Ganda"}}},
			Intervention: lessonplan.Intervention{NeedsGuidance: "Bimbingan individu"},
		},
		Materials: &lessonplan.Materials{
			Judul:    "Ekosistem di Sekitar Kita",
			Pemantik: "Pernahkah kamu melihat kolam?",
			SubTopik: []string{"Komponen biotik"},
			KonsepInti: lessonplan.KonsepInti{
				Definisi:           "Ekosistem adalah **hubungan timbal balik**.",
				PenjelasanBertahap: []string{"Produsen membuat makanan."},
				TabelVisual:        mdtable.Structured([]string{"Komponen", "Contoh"}, [][]string{{"Produsen", "Rumput"}}),
			},
			Glosarium: []lessonplan.GlossaryEntry{{Istilah: "Produsen", Definisi: "Pembuat makanan"}},
		},
		LKPD: &lessonplan.LKPD{
			Title:        "Mengamati Kolam",
			Objectives:   "Mengidentifikasi komponen ekosistem.",
			Instructions: []string{"Baca petunjuk"},
			Activities: lessonplan.Activities{
				Level1: lessonplan.Activity{Content: "Sebutkan produsen\nSebutkan konsumen"},
				Level2: lessonplan.Activity{Content: "| Hewan | Makanan |\n|---|---|\n| Ikan | |", Type: lessonplan.ActivityTable, Structured: true},
				Level3: lessonplan.Activity{Content: "Diskusikan dampak polusi."},
			},
			Reflection: []string{"Apa yang kamu pelajari?"},
		},
		QuestionBank: &lessonplan.QuestionBank{Items: []lessonplan.QuestionItem{
			{Number: 1, Type: lessonplan.TypeMultipleChoice, Question: "Contoh produsen adalah", Options: []string{"Rumput", "Kambing"}, AnswerKey: "A", Stimulus: "Perhatikan kolam."},
			{Number: 2, Type: lessonplan.TypeMatching, Question: "Jodohkan", MatchingPairs: []lessonplan.MatchingPair{{Left: "Rumput", Right: "Produsen"}, {Left: "Jamur", Right: "Pengurai"}}},
			{Number: 3, Type: lessonplan.TypeTrueFalse, Question: "Jamur adalah produsen", AnswerKey: "Salah", Stimulus: "hidden"},
		}},
		Reflection: &lessonplan.Reflection{Teacher: []string{"Apakah tujuan tercapai?"}, Student: []string{"Bagian mana yang sulit?"}},
		Approval: lessonplan.Approval{
			Location: "Bandung", Date: "2 Januari 2026",
			AuthorName: "Rina", AuthorNip: "1987", PrincipalName: "Budi", PrincipalNip: "1970",
		},
	}
}

// tables returns every top-level table as rows of cell text.
func tables(d *docx.Document) [][][]string {
	var out [][][]string
	for _, b := range d.Blocks() {
		t, ok := b.(*docx.Table)
		if !ok {
			continue
		}
		var rows [][]string
		for _, r := range t.Rows {
			var cells []string
			for _, c := range r.Cells {
				var parts []string
				for _, cb := range c.Blocks {
					if p, ok := cb.(*docx.Paragraph); ok {
						parts = append(parts, p.PlainText())
					}
				}
				cells = append(cells, strings.Join(parts, "\n"))
			}
			rows = append(rows, cells)
		}
		out = append(out, rows)
	}
	return out
}

func findTable(t *testing.T, d *docx.Document, header string) [][]string {
	t.Helper()
	for _, tbl := range tables(d) {
		if len(tbl) > 0 && len(tbl[0]) > 0 && tbl[0][0] == header {
			return tbl
		}
	}
	t.Fatalf("no table with header %q", header)
	return nil
}

func TestBuildSectionsInOrder(t *testing.T) {
	text := Build(testPlan(), lessonplan.DefaultDocumentSettings()).PlainText()

	order := []string{
		"MODUL AJAR",
		"TOPIK: EKOSISTEM",
		"I. IDENTITAS UMUM",
		"Nama Sekolah | : | SMP Negeri 1 Bandung",
		"Nama Penyusun | : | Rina",
		"II. KOMPONEN INTI",
		"III. LANGKAH PEMBELAJARAN",
		"PERTEMUAN 1",
		"Prinsip: Berkesadaran",
		"IV. ASESMEN PEMBELAJARAN",
		"Klarifikasi: Apa maksudmu?",
		"V. REFLEKSI PEMBELAJARAN",
		"Mengetahui,",
		"LAMPIRAN 1: MATERI AJAR",
		"EKOSISTEM DI SEKITAR KITA",
		"LAMPIRAN 2: LEMBAR KERJA (LKPD)",
		"Aktivitas 1 (Dasar)",
		"LAMPIRAN 3: BANK SOAL",
		"Kunci Jawaban",
	}
	pos := 0
	for _, want := range order {
		i := strings.Index(text[pos:], want)
		if i < 0 {
			t.Fatalf("%q missing or out of order in:\n%s", want, text)
		}
		pos += i + len(want)
	}
}

func TestBuildCleansText(t *testing.T) {
	text := Build(testPlan(), lessonplan.DefaultDocumentSettings()).PlainText()

	assert.Contains(t, text, "Murid dapat menjelaskan rantai makanan.", "terminology fixed and list number dropped")
	assert.NotContains(t, text, "1. Siswa")
	assert.Contains(t, text, "Definisi: Ekosistem adalah hubungan timbal balik.")
	assert.NotContains(t, text, "**")
}

func TestBuildConvertsMarkdownTables(t *testing.T) {
	d := Build(testPlan(), lessonplan.DefaultDocumentSettings())

	pbl := findTable(t, d, "Fase")
	assert.Equal(t, [][]string{{"Fase", "Kegiatan"}, {"Orientasi", "Murid mengamati kolam"}}, pbl)

	visual := findTable(t, d, "Komponen")
	assert.Equal(t, [][]string{{"Komponen", "Contoh"}, {"Produsen", "Rumput"}}, visual)

	activity := findTable(t, d, "Hewan")
	require.Len(t, activity, 2)
	assert.Equal(t, []string{"Ikan", ""}, activity[1])

	kktp := findTable(t, d, "Kriteria")
	assert.Len(t, kktp[0], 5)
}

func TestBuildLegacyVisualText(t *testing.T) {
	p := testPlan()
	p.Materials.KonsepInti.TabelVisual = mdtable.Text("- Produsen: membuat makanan\n- Konsumen: memakan makhluk lain")
	d := Build(p, lessonplan.DefaultDocumentSettings())

	tbl := findTable(t, d, "Aspek / Kategori")
	assert.Equal(t, []string{"Konsumen", "memakan makhluk lain"}, tbl[2])
}

func TestBuildKeepsPipesInsideMath(t *testing.T) {
	p := testPlan()
	p.Design.PedagogicalPractice = "| Soal | Jawaban |\n|---|---|\n| Nilai $|x-2|$ untuk x=5 | 3 |"
	p.Design.Environment = "Ingat bahwa $|a| \\geq 0$ untuk setiap a."
	p.Materials.KonsepInti.TabelVisual = mdtable.Text("- Nilai mutlak: $|x|$\n- Peluang bersyarat: $P(A|B)$")
	d := Build(p, lessonplan.DefaultDocumentSettings())

	soal := findTable(t, d, "Soal")
	assert.Equal(t, [][]string{{"Soal", "Jawaban"}, {"Nilai $|x-2|$ untuk x=5", "3"}}, soal)

	visual := findTable(t, d, "Aspek / Kategori")
	require.Len(t, visual, 3)
	assert.Equal(t, []string{"Nilai mutlak", "$|x|$"}, visual[1])
	assert.Equal(t, []string{"Peluang bersyarat", "$P(A|B)$"}, visual[2])

	assert.Contains(t, d.PlainText(), "Ingat bahwa $|a| \\geq 0$ untuk setiap a.")
}

func TestBuildActivityNumbering(t *testing.T) {
	text := Build(testPlan(), lessonplan.DefaultDocumentSettings()).PlainText()
	assert.Contains(t, text, "1. Sebutkan produsen\n2. Sebutkan konsumen")
}

func TestBuildQuestionBank(t *testing.T) {
	d := Build(testPlan(), lessonplan.DefaultDocumentSettings())
	text := d.PlainText()

	assert.Contains(t, text, "A. PILIHAN GANDA")
	assert.Contains(t, text, "Perhatikan kolam.")
	assert.NotContains(t, text, "hidden", "true/false hides its stimulus")
	assert.Contains(t, text, "A. Rumput\nB. Kambing")
	assert.Contains(t, text, "( ) Benar")

	var matching *docx.Table
	for _, b := range d.Blocks() {
		if tbl, ok := b.(*docx.Table); ok && tbl.Borderless && strings.Contains(docText(tbl), "Premis") {
			matching = tbl
		}
	}
	require.NotNil(t, matching, "matching pairs table")
	assert.Contains(t, docText(matching), "A. Pengurai")
	assert.Contains(t, docText(matching), "B. Produsen")

	key := text[strings.Index(text, "Kunci Jawaban"):]
	assert.Contains(t, key, "1. A")
	assert.Contains(t, key, "1. 1 - B, 2 - A")
	assert.Contains(t, key, "1. Salah")
}

func docText(t *docx.Table) string {
	d := docx.New(docx.A4)
	d.Add(t)
	return d.PlainText()
}

func TestBuildNonMathDropsDollar(t *testing.T) {
	p := testPlan()
	p.IdentitySection.Subject = "Bahasa Indonesia"
	p.Design.Environment = "Harga $10$ rupiah"
	assert.Contains(t, Build(p, lessonplan.DefaultDocumentSettings()).PlainText(), "Harga 10 rupiah")
}

func TestBuildSettings(t *testing.T) {
	d := Build(testPlan(), lessonplan.DocumentSettings{PaperSize: lessonplan.PaperLetter, FontSize: lessonplan.Font10})
	assert.Equal(t, docx.Letter, d.Page)
	assert.Equal(t, 20, d.FontSize)
	assert.Equal(t, "Modul Ajar - Ekosistem", d.Title)
}

func TestBuildMinimalPlan(t *testing.T) {
	p := &lessonplan.Plan{IdentitySection: lessonplan.IdentitySection{Topic: "Pecahan"}}
	text := Build(p, lessonplan.DefaultDocumentSettings()).PlainText()
	assert.Contains(t, text, "Belum ada data")
	assert.Contains(t, text, "Jumlah Pertemuan | : | 1 Pertemuan")
	assert.NotContains(t, text, "ASESMEN PEMBELAJARAN")
	assert.NotContains(t, text, "Mengetahui,")
}

func TestWriteProducesPackage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testPlan(), lessonplan.DefaultDocumentSettings()))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var doc string
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			doc = string(b)
		}
	}
	assert.Contains(t, doc, "LAMPIRAN 3: BANK SOAL")
	assert.Contains(t, doc, "<w:pageBreakBefore/>")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"Ekosistem", "Modul Ajar - Ekosistem.docx"},
		{"Pecahan 1/2", "Modul Ajar - Pecahan 1-2.docx"},
		{"  ", "Modul Ajar.docx"},
	}
	for _, tt := range tests {
		p := &lessonplan.Plan{IdentitySection: lessonplan.IdentitySection{Topic: tt.topic}}
		assert.Equal(t, tt.want, FileName(p))
	}
	assert.Equal(t, "Modul Ajar.docx", FileName(nil))
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestUploader(t *testing.T) {
	fake := &fakePutter{}
	u := NewUploader(fake, config.ExportConfig{
		S3Endpoint: "https://s3.example.org/",
		S3Bucket:   "modul",
		S3Prefix:   "/exports/",
	}, nil)

	link, err := u.Upload(context.Background(), "Modul Ajar - Ekosistem.docx", []byte("PK"))
	require.NoError(t, err)

	key := *fake.input.Key
	assert.True(t, strings.HasPrefix(key, "exports/"), key)
	assert.True(t, strings.HasSuffix(key, "/Modul Ajar - Ekosistem.docx"), key)
	assert.Equal(t, "modul", *fake.input.Bucket)
	assert.Equal(t, docx.ContentType, *fake.input.ContentType)
	assert.Equal(t, []byte("PK"), fake.body)
	assert.True(t, strings.HasPrefix(link, "https://s3.example.org/modul/exports/"), link)
	assert.True(t, strings.HasSuffix(link, "/Modul%20Ajar%20-%20Ekosistem.docx"), link)
}

func TestUploaderError(t *testing.T) {
	boom := errors.New("boom")
	u := NewUploader(&fakePutter{err: boom}, config.ExportConfig{S3Endpoint: "http://x", S3Bucket: "b"}, nil)
	_, err := u.Upload(context.Background(), "a.docx", nil)
	assert.ErrorIs(t, err, boom)
}
