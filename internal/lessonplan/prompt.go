package lessonplan

import (
	"fmt"
	"strings"
)

const planSystemPrompt = `Anda adalah Pakar Kurikulum & Deep Learning.
Tugas: Menyusun Modul Ajar dan konten pembelajaran berkualitas tinggi.

ATURAN STRICT (JANGAN DILANGGAR):
1. TERMINOLOGI:
   Gunakan kata "Murid" (bukan siswa/peserta didik). Gunakan huruf kapital standar (Sentence case), jangan gunakan huruf besar semua untuk kata murid.

2. FORMAT MATEMATIKA & LATEX (SANGAT PENTING):
   - DILARANG MENGGUNAKAN LaTeX ($...$) untuk:
     * Operasi aritmatika dasar (+, -, x, :, =, %)
     * Mata uang (Rp)
     * Teks biasa atau variabel sederhana
   - Gunakan LaTeX ($...$) HANYA untuk rumus kompleks (integral, akar, pangkat, sigma).
   - Contoh BENAR: "Zakat = 2,5% x Total Harta", "Luas = Panjang x Lebar".
   - Contoh SALAH: "$Z = 2,5\% \\times \\text{Total Harta}$", "$L = p \\times l$".

3. LANGKAH PEMBELAJARAN:
   Instruksi harus detail per aksi (Micro-steps). Pilih prinsip: "Berkesadaran", "Bermakna", atau "Mengembirakan".

4. FORMAT TABEL:
   Jika diminta membuat tabel, gunakan format Markdown Table standar.

Output wajib JSON valid sesuai Schema.`

const assessmentSystemPrompt = `Anda adalah Pakar Penilaian & Deep Learning.
Tugas: Menyusun Asesmen Pembelajaran berkualitas tinggi.

ATURAN STRICT:
1. KKTP (Kriteria Ketercapaian Tujuan Pembelajaran):
   - Cantumkan 4 level: Perlu Bimbingan, Dasar, Profisien, Mahir
   - Setiap criteria WAJIB punya indicator yang jelas

2. PENILAIAN FORMATIF:
   - Checklist: Aspek + Indikator (bukan rubrik)
   - Feedback Guide: Klarifikasi (koreksi), Apresiasi (pujian), Saran (improvement)

3. PENILAIAN SUMATIF:
   - Grid: Indikator, Level (1-4), Teknik (Tes Tulis, Wawancara, Praktik, dll)
   - Sesuaikan dengan jenjang murid

4. PROGRAM INTERVENSI:
   - Untuk setiap level: Perlu Bimbingan, Dasar, Profisien, Mahir
   - Intervensi konkret, bukan hanya penjelasan

5. TERMINOLOGI:
   - Gunakan kata "Murid" (bukan siswa/peserta didik)

6. OUTPUT: JSON VALID dengan structure yang tepat.`

const plainMathRule = `DILARANG pakai LaTeX ($...$) untuk aritmatika dasar, persen, atau uang. Tulis biasa`

func buildPlanUserMessage(school SchoolIdentity, lesson LessonIdentity) string {
	var b strings.Builder

	b.WriteString("Susun MODUL AJAR (RPM) Deep Learning.\n")
	fmt.Fprintf(&b, "Sekolah: %s, Mapel: %s, Kelas: %s, Topik: %s\n",
		school.SchoolName, lesson.Subject, lesson.Grade, lesson.Topic)
	fmt.Fprintf(&b, "Tujuan: %s\n", lesson.Objectives)
	fmt.Fprintf(&b, "Jumlah Pertemuan: %d\n", MeetingCount(lesson.MeetingCount))
	if lesson.Semester != "" {
		fmt.Fprintf(&b, "Semester: %s, Alokasi Waktu: %s\n", lesson.Semester, lesson.TimeAllocation)
	}

	// Optional teacher hints. Empty fields are left to the model.
	hints := []struct{ label, value string }{
		{"Asesmen Awal", lesson.InitialAssessment},
		{"Praktik Pedagogis", lesson.PedagogicalPractice},
		{"Lingkungan Belajar", lesson.LearningEnvironment},
		{"Pemanfaatan Digital", lesson.DigitalUtilization},
		{"Kemitraan Pembelajaran", lesson.LearningPartnership},
		{"Dimensi Profil Lulusan", strings.Join(lesson.GraduateProfileDimensions, ", ")},
		{"Gaya Penulisan", lesson.CustomStyle},
	}
	for _, h := range hints {
		if strings.TrimSpace(h.value) != "" {
			fmt.Fprintf(&b, "%s: %s\n", h.label, h.value)
		}
	}

	b.WriteString("\n")
	b.WriteString(ComplexityInstruction(lesson.Grade))
	b.WriteString(`

DETAIL:
1. Prinsip (intro/core/closing): Pilih salah satu -> Berkesadaran, Bermakna, Mengembirakan.
2. Langkah: Micro-steps (Wajib detail, konkret, dan interaktif. Tuliskan skenario aksi/reaksi Guru & Murid yang spesifik).
3. Format Math: ` + plainMathRule + ` (misal: "2,5% x Harta").
4. Profil Lulusan: List saja dimensinya (contoh: "Bernalar Kritis", "Kreatif"), jangan ada penjelasan.
5. Praktik Pedagogis: Pilih SATU Model/Metode (misal: PBL), lalu jelaskan singkat dalam 1 paragraf.

Wajib JSON Valid.`)

	return b.String()
}

// writePlanContext writes the topic, subject and objectives every
// attachment prompt starts from.
func writePlanContext(b *strings.Builder, plan *Plan) {
	fmt.Fprintf(b, "Mata Pelajaran: %s.\n", plan.IdentitySection.Subject)
	fmt.Fprintf(b, "Tujuan Pembelajaran: %s.\n", strings.Join(plan.Design.Objectives, ", "))
}

func buildMaterialsUserMessage(plan *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buat Materi Ajar: %s.\n", plan.IdentitySection.Topic)
	writePlanContext(&b, plan)
	b.WriteString("Bahasa untuk Murid.\n")
	b.WriteString(ComplexityInstruction(plan.IdentitySection.Grade))
	b.WriteString(`

Aturan Konten:
1. Sub Topik: Buatlah sub-topik yang bersifat akademik dan merupakan turunan spesifik dari Topik utama. Jangan membuat sub-topik yang tidak relevan.
2. Penjelasan Bertahap: JANGAN BUAT LANGKAH-LANGKAH/PROSEDUR. Berikan URAIAN MATERI/PENJELASAN KONSEP TOPIK & SUB-TOPIK secara naratif dan mendalam.
3. Tabel Visual: Bagian ini WAJIB berformat TABLE OBJECT dengan 'headers' dan 'rows'. Buatlah rangkuman, perbandingan, atau data penting.
4. Trivia: Berikan fakta unik yang menarik ("Tahukah Kamu?").
5. Format Math: ` + plainMathRule + `.
Output JSON.`)
	return b.String()
}

func buildLKPDUserMessage(plan *Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buat Lembar Kerja Murid (Tanpa kata \"LKPD\" di judul): %s.\n", plan.IdentitySection.Topic)
	writePlanContext(&b, plan)
	b.WriteString(ComplexityInstruction(plan.IdentitySection.Grade))
	b.WriteString(`

Aturan:
1. Petunjuk Pengerjaan: Berikan langkah teknis cara mengerjakan lembar ini.
2. Aktivitas: Buat 3 level aktivitas (Dasar, Menengah, Lanjut).
 - activityType: Pilih "Teks", "Tabel", "ListSoal", atau "Diskusi".
 - JIKA 'activityType' adalah 'ListSoal' (Uraian/Esai), MAKA format content WAJIB menggunakan penomoran (1. ..., 2. ...) untuk setiap butir soal.
 - WAJIB: MINIMAL SATU aktivitas harus bertipe "Tabel".
 - JANGAN tuliskan prinsip pembelajaran di teks aktivitas.
3. Gunakan kata "Murid".
Output JSON.`)
	return b.String()
}

func buildAssessmentUserMessage(plan *Plan) string {
	var b strings.Builder
	b.WriteString("Buat Asesmen Deep Learning: KKTP, Rubrik, Checklist, Kisi-kisi Sumatif.\n")
	fmt.Fprintf(&b, "Topik: %s.\n", plan.IdentitySection.Topic)
	writePlanContext(&b, plan)
	b.WriteString(ComplexityInstruction(plan.IdentitySection.Grade))
	b.WriteString("\nOutput JSON.")
	return b.String()
}

func buildQuestionBankUserMessage(plan *Plan, cfg QuestionBankConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buat %d Soal (%s).\n", cfg.Count, strings.Join(cfg.Types, ", "))
	if cfg.Level != "" {
		fmt.Fprintf(&b, "Level Kognitif: %s.\n", cfg.Level)
	}
	b.WriteString(ComplexityInstruction(plan.IdentitySection.Grade))
	fmt.Fprintf(&b, "\nTopik: %s.\n", plan.IdentitySection.Topic)
	writePlanContext(&b, plan)
	b.WriteString(`
Aturan Khusus:
1. Menjodohkan: Field 'matchingPairs' wajib diisi array object {left: "pertanyaan/premis", right: "jawaban/pasangan"}.
2. Benar/Salah: Soal berupa pernyataan.
3. Gunakan kata "Murid".
4. Format Math: ` + plainMathRule + `.

Output JSON.`)
	return b.String()
}
