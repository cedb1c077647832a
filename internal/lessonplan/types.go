package lessonplan

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pakarguru/modulajar/internal/mdtable"
)

// SchoolIdentity describes the school and the people who sign the module.
type SchoolIdentity struct {
	SchoolName    string `json:"schoolName" yaml:"schoolName"`
	AuthorName    string `json:"authorName" yaml:"authorName"`
	AuthorNip     string `json:"authorNip" yaml:"authorNip"`
	PrincipalName string `json:"principalName" yaml:"principalName"`
	PrincipalNip  string `json:"principalNip" yaml:"principalNip"`
	Location      string `json:"location" yaml:"location"`
	Date          string `json:"date" yaml:"date"`
}

// LessonIdentity is the teacher's input for one module.
type LessonIdentity struct {
	Subject                   string   `json:"subject" yaml:"subject"`
	Grade                     string   `json:"grade" yaml:"grade"`
	Semester                  string   `json:"semester" yaml:"semester"`
	TimeAllocation            string   `json:"timeAllocation" yaml:"timeAllocation"`
	MeetingCount              string   `json:"meetingCount" yaml:"meetingCount"`
	Topic                     string   `json:"topic" yaml:"topic"`
	Objectives                string   `json:"objectives" yaml:"objectives"`
	InitialAssessment         string   `json:"initialAssessment" yaml:"initialAssessment"`
	PedagogicalPractice       string   `json:"pedagogicalPractice" yaml:"pedagogicalPractice"`
	LearningEnvironment       string   `json:"learningEnvironment" yaml:"learningEnvironment"`
	DigitalUtilization        string   `json:"digitalUtilization" yaml:"digitalUtilization"`
	LearningPartnership       string   `json:"learningPartnership" yaml:"learningPartnership"`
	GraduateProfileDimensions []string `json:"graduateProfileDimensions" yaml:"graduateProfileDimensions"`
	CustomStyle               string   `json:"customStyle" yaml:"customStyle"`
}

// Plan is a generated Modul Ajar with its optional attachments.
type Plan struct {
	IdentitySection    IdentitySection `json:"identitySection"`
	InitialAssessment  string          `json:"initialAssessment"`
	GraduateProfile    []string        `json:"graduateProfile"`
	Design             Design          `json:"design"`
	LearningExperience []LearningStep  `json:"learningExperience"`

	Assessment   *Assessment   `json:"assessment,omitempty"`
	LKPD         *LKPD         `json:"lkpd,omitempty"`
	QuestionBank *QuestionBank `json:"questionBank,omitempty"`
	Materials    *Materials    `json:"materials,omitempty"`

	Reflection *Reflection `json:"reflection,omitempty"`
	Approval   Approval    `json:"approval"`
}

type IdentitySection struct {
	SchoolName     string `json:"schoolName"`
	Subject        string `json:"subject"`
	Grade          string `json:"grade"`
	Semester       string `json:"semester"`
	TimeAllocation string `json:"timeAllocation"`
	MeetingCount   string `json:"meetingCount,omitempty"`
	Topic          string `json:"topic"`
}

type Design struct {
	Objectives          []string `json:"objectives"`
	PedagogicalPractice string   `json:"pedagogicalPractice"`
	Partnership         string   `json:"partnership"`
	Environment         string   `json:"environment"`
	Digital             string   `json:"digital"`
}

// LearningStep is the intro, core and closing sequence of one meeting.
type LearningStep struct {
	MeetingNo        int      `json:"meetingNo"`
	Intro            []string `json:"intro"`
	IntroPrinciple   string   `json:"introPrinciple"`
	Core             Core     `json:"core"`
	CorePrinciple    string   `json:"corePrinciple"`
	Closing          []string `json:"closing"`
	ClosingPrinciple string   `json:"closingPrinciple"`
}

type Core struct {
	Memahami     []string `json:"memahami"`
	Mengaplikasi []string `json:"mengaplikasi"`
	Merefleksi   []string `json:"merefleksi"`
}

type Reflection struct {
	Teacher []string `json:"teacher"`
	Student []string `json:"student"`
}

// Approval is the signature block. It is copied from SchoolIdentity, never
// generated.
type Approval struct {
	Location      string `json:"location"`
	Date          string `json:"date"`
	AuthorName    string `json:"authorName"`
	AuthorNip     string `json:"authorNip"`
	PrincipalName string `json:"principalName"`
	PrincipalNip  string `json:"principalNip"`
}

// Materials is the reading material attachment.
type Materials struct {
	Judul      string          `json:"judul"`
	Pemantik   string          `json:"pemantik"`
	SubTopik   []string        `json:"subTopik"`
	KonsepInti KonsepInti      `json:"konsepInti"`
	Trivia     string          `json:"trivia"`
	Glosarium  []GlossaryEntry `json:"glosarium"`
}

type KonsepInti struct {
	Definisi           string   `json:"definisi"`
	PenjelasanBertahap []string `json:"penjelasanBertahap"`
	// TabelVisual is a {headers, rows} object in current output and a
	// markdown string in older saved plans.
	TabelVisual   mdtable.Content `json:"tabelVisual"`
	ContohKonkret string          `json:"contohKonkret"`
}

type GlossaryEntry struct {
	Istilah  string `json:"istilah"`
	Definisi string `json:"definisi"`
}

// LKPD is the student worksheet attachment.
type LKPD struct {
	Title        string     `json:"title"`
	Objectives   string     `json:"objectives"`
	Instructions []string   `json:"instructions"`
	Stimulus     string     `json:"stimulus"`
	Activities   Activities `json:"activities"`
	Reflection   []string   `json:"reflection"`
}

type Activities struct {
	Level1 Activity `json:"level1"`
	Level2 Activity `json:"level2"`
	Level3 Activity `json:"level3"`
}

// Levels returns the activities with their display labels.
func (a Activities) Levels() []LeveledActivity {
	return []LeveledActivity{
		{Label: "Level 1 (Dasar)", Activity: a.Level1},
		{Label: "Level 2 (Menengah)", Activity: a.Level2},
		{Label: "Level 3 (Lanjut)", Activity: a.Level3},
	}
}

type LeveledActivity struct {
	Label    string
	Activity Activity
}

// Activity types the worksheet prompt asks for.
const (
	ActivityText       = "Teks"
	ActivityTable      = "Tabel"
	ActivityQuestions  = "ListSoal"
	ActivityDiscussion = "Diskusi"
)

// Activity is a worksheet activity. Older plans store a bare string; newer
// ones store {content, activityType}. Structured records which form arrived
// so it is written back the same way.
type Activity struct {
	Content    string
	Type       string
	Structured bool
}

func (a *Activity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = Activity{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &a.Content)
	}
	var obj struct {
		Content      string `json:"content"`
		ActivityType string `json:"activityType"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode activity: %w", err)
	}
	a.Content, a.Type, a.Structured = obj.Content, obj.ActivityType, true
	return nil
}

func (a Activity) MarshalJSON() ([]byte, error) {
	if !a.Structured {
		return json.Marshal(a.Content)
	}
	return json.Marshal(struct {
		Content      string `json:"content"`
		ActivityType string `json:"activityType"`
	}{a.Content, a.Type})
}

// Assessment is the deep-learning assessment attachment.
type Assessment struct {
	KKTP         []KKTPItem   `json:"kktp"`
	Formative    Formative    `json:"formative"`
	Summative    Summative    `json:"summative"`
	Intervention Intervention `json:"intervention"`
}

// KKTPItem is one criterion of the learning-goal achievement rubric.
type KKTPItem struct {
	Criteria      string `json:"criteria"`
	NeedsGuidance string `json:"needsGuidance"`
	Basic         string `json:"basic"`
	Proficient    string `json:"proficient"`
	Advanced      string `json:"advanced"`
}

type Formative struct {
	Checklist     []ChecklistItem `json:"checklist"`
	FeedbackGuide FeedbackGuide   `json:"feedbackGuide"`
}

type ChecklistItem struct {
	Aspect    string `json:"aspect"`
	Indicator string `json:"indicator"`
}

type FeedbackGuide struct {
	Clarification string `json:"clarification"`
	Appreciation  string `json:"appreciation"`
	Suggestion    string `json:"suggestion"`
}

type Summative struct {
	Grid []GridItem `json:"grid"`
}

type GridItem struct {
	Indicator string `json:"indicator"`
	Level     string `json:"level"`
	Technique string `json:"technique"`
}

type Intervention struct {
	NeedsGuidance string `json:"needsGuidance"`
	Basic         string `json:"basic"`
	Proficient    string `json:"proficient"`
	Advanced      string `json:"advanced"`
}

// QuestionLevel is the cognitive level requested for a question bank.
type QuestionLevel string

const (
	LevelLOTS  QuestionLevel = "LOTS"
	LevelHOTS  QuestionLevel = "HOTS"
	LevelMixed QuestionLevel = "CAMPURAN"
)

// Question types.
const (
	TypeMultipleChoice        = "Pilihan Ganda"
	TypeComplexMultipleChoice = "Pilihan Ganda Kompleks"
	TypeMatching              = "Menjodohkan"
	TypeTrueFalse             = "Benar/Salah"
	TypeShortAnswer           = "Isian Singkat"
	TypeEssay                 = "Uraian"
)

// QuestionTypes lists every question type in display order.
var QuestionTypes = []string{
	TypeMultipleChoice,
	TypeComplexMultipleChoice,
	TypeMatching,
	TypeTrueFalse,
	TypeShortAnswer,
	TypeEssay,
}

type QuestionBankConfig struct {
	Count int           `json:"count" yaml:"count"`
	Level QuestionLevel `json:"level" yaml:"level"`
	Types []string      `json:"types" yaml:"types"`
}

type QuestionBank struct {
	Config *QuestionBankConfig `json:"config,omitempty"`
	Items  []QuestionItem      `json:"items"`
}

type QuestionItem struct {
	Number        float64        `json:"number"`
	Type          string         `json:"type"`
	Question      string         `json:"question"`
	Stimulus      string         `json:"stimulus,omitempty"`
	Options       []string       `json:"options,omitempty"`
	MatchingPairs []MatchingPair `json:"matchingPairs,omitempty"`
	AnswerKey     string         `json:"answerKey"`
}

// HasOptions reports whether the item shows lettered options.
func (q QuestionItem) HasOptions() bool {
	return (q.Type == TypeMultipleChoice || q.Type == TypeComplexMultipleChoice) && len(q.Options) > 0
}

// ShowsStimulus reports whether the stimulus is displayed. Matching and
// true/false items never show it.
func (q QuestionItem) ShowsStimulus() bool {
	return q.Stimulus != "" && q.Type != TypeMatching && q.Type != TypeTrueFalse
}

type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// PaperSize and FontSize control the printed and exported layout.
type (
	PaperSize string
	FontSize  string
)

const (
	PaperA4     PaperSize = "A4"
	PaperLetter PaperSize = "LETTER"

	Font10 FontSize = "10pt"
	Font11 FontSize = "11pt"
	Font12 FontSize = "12pt"
)

type DocumentSettings struct {
	PaperSize PaperSize `json:"paperSize" yaml:"paperSize"`
	FontSize  FontSize  `json:"fontSize" yaml:"fontSize"`
}

// DefaultDocumentSettings is A4 at 12pt.
func DefaultDocumentSettings() DocumentSettings {
	return DocumentSettings{PaperSize: PaperA4, FontSize: Font12}
}

// Points returns the font size in points, defaulting to 12.
func (f FontSize) Points() int {
	switch f {
	case Font10:
		return 10
	case Font11:
		return 11
	default:
		return 12
	}
}
