package lessonplan

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// GraduateProfileDimensions are the eight dimensions of the graduate profile.
var GraduateProfileDimensions = []string{
	"Keimanan dan Ketakwaan terhadap Tuhan Yang Maha Esa",
	"Kewargaan",
	"Penalaran Kritis",
	"Kreativitas",
	"Kolaborasi",
	"Kemandirian",
	"Kesehatan",
	"Komunikasi",
}

// Principles a learning step may be tagged with.
var Principles = []string{"Berkesadaran", "Bermakna", "Mengembirakan"}

// IndonesianMonths holds month names, January first.
var IndonesianMonths = []string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// DefaultLessonIdentity returns the form defaults for a new lesson.
func DefaultLessonIdentity() LessonIdentity {
	return LessonIdentity{
		Semester:                  "Ganjil",
		TimeAllocation:            "2 JP x 45 Menit",
		MeetingCount:              "1 Pertemuan",
		GraduateProfileDimensions: []string{},
	}
}

// DefaultSchoolIdentity returns an empty identity dated now.
func DefaultSchoolIdentity(now time.Time) SchoolIdentity {
	return SchoolIdentity{Date: FormatDate(now)}
}

// FormatDate formats t as "2 Januari 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), IndonesianMonths[t.Month()-1], t.Year())
}

// ParseDate parses a date written by FormatDate.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("parse date %q: want \"<day> <month> <year>\"", s)
	}
	month := -1
	for i, m := range IndonesianMonths {
		if strings.EqualFold(m, parts[1]) {
			month = i + 1
			break
		}
	}
	if month < 0 {
		return time.Time{}, fmt.Errorf("parse date %q: unknown month %q", s, parts[1])
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("parse date %q: day out of range", s)
	}
	return t, nil
}

// complexityRule maps grade keywords to a complexity instruction. Rules are
// checked in order and the first match wins.
type complexityRule struct {
	keywords    []string
	instruction string
}

var complexityRules = []complexityRule{
	{
		keywords:    []string{"fase f", "xii", "xi"},
		instruction: "TINGKAT KOMPLEKSITAS: TINGGI (High School / Advanced). Gunakan bahasa akademis, analisis mendalam, HOTS Level C4-C6 (Menganalisis, Mengevaluasi, Mencipta), dan studi kasus yang kompleks.",
	},
	{
		keywords:    []string{"fase e", "kelas x"},
		instruction: "TINGKAT KOMPLEKSITAS: MENENGAH-TINGGI (High School). Fokus pada pemahaman konsep abstrak dan aplikasi kontekstual.",
	},
	{
		keywords:    []string{"fase d", "vii", "viii", "ix"},
		instruction: "TINGKAT KOMPLEKSITAS: MENENGAH (Middle School). Bahasa lugas, fokus pada eksplorasi dan aplikasi konsep.",
	},
	{
		keywords:    []string{"fase a", "fase b", "fase c", "sd"},
		instruction: "TINGKAT KOMPLEKSITAS: DASAR (Elementary). Gunakan bahasa konkret, sederhana, mudah dipahami anak, dan instruksi yang sangat jelas.",
	},
}

const defaultComplexity = "TINGKAT KOMPLEKSITAS: Sesuaikan dengan jenjang pendidikan yang diinput."

// ComplexityInstruction returns the prompt line that sets the language and
// cognitive level for a grade such as "Fase D / Kelas VIII".
func ComplexityInstruction(grade string) string {
	g := strings.ToLower(grade)
	for _, r := range complexityRules {
		for _, k := range r.keywords {
			if strings.Contains(g, k) {
				return r.instruction
			}
		}
	}
	return defaultComplexity
}

// MeetingCount reads the leading number of a value like "3 Pertemuan".
// Anything unparseable, or zero, counts as one meeting.
func MeetingCount(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 1
	}
	digits := strings.IndexFunc(fields[0], func(r rune) bool { return !unicode.IsDigit(r) })
	if digits < 0 {
		digits = len(fields[0])
	}
	n, err := strconv.Atoi(fields[0][:digits])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

var mathKeywords = []string{
	"matematika", "fisika", "kimia", "ipa", "sains", "ilmu pengetahuan alam",
	"kalkulus", "statistik", "aljabar", "geometri", "numerasi",
}

// IsMathSubject reports whether a subject keeps LaTeX formulas.
func IsMathSubject(subject string) bool {
	s := strings.ToLower(subject)
	for _, k := range mathKeywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
