package lessonplan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGroupQuestions(t *testing.T) {
	items := []QuestionItem{
		{Number: 1, Type: TypeMultipleChoice},
		{Number: 2, Type: TypeEssay},
		{Number: 3, Type: TypeMultipleChoice},
		{Number: 4, Type: TypeTrueFalse},
	}
	groups := GroupQuestions(items)

	var got [][]float64
	var headings []string
	for _, g := range groups {
		headings = append(headings, g.Heading())
		var nums []float64
		for _, it := range g.Items {
			nums = append(nums, it.Number)
		}
		got = append(got, nums)
	}

	wantHeadings := []string{"A. PILIHAN GANDA", "B. URAIAN", "C. BENAR/SALAH"}
	if diff := cmp.Diff(wantHeadings, headings); diff != "" {
		t.Errorf("headings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]float64{{1, 3}, {2}, {4}}, got); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func TestGroupQuestionsEmpty(t *testing.T) {
	if g := GroupQuestions(nil); len(g) != 0 {
		t.Fatalf("got %d groups", len(g))
	}
}

func TestMatchingKey(t *testing.T) {
	pairs := []MatchingPair{
		{Left: "Rumput", Right: "Produsen"},
		{Left: "Jamur", Right: "Pengurai"},
		{Left: "Kambing", Right: "Herbivora"},
	}
	if got := MatchingKey(pairs); got != "1 - C, 2 - B, 3 - A" {
		t.Fatalf("MatchingKey = %q", got)
	}
	if diff := cmp.Diff([]string{"Herbivora", "Pengurai", "Produsen"}, SortedAnswers(pairs)); diff != "" {
		t.Errorf("sorted answers (-want +got):\n%s", diff)
	}
}

func TestMatchingKeyIgnoresCase(t *testing.T) {
	// Collation orders "apel" before "Bola"; byte order would not.
	pairs := []MatchingPair{{Left: "1", Right: "Bola"}, {Left: "2", Right: "apel"}}
	if got := MatchingKey(pairs); got != "1 - B, 2 - A" {
		t.Fatalf("MatchingKey = %q", got)
	}
}

func TestMatchingKeyDuplicates(t *testing.T) {
	pairs := []MatchingPair{{Left: "a", Right: "Sama"}, {Left: "b", Right: "Sama"}}
	if got := MatchingKey(pairs); got != "1 - A, 2 - A" {
		t.Fatalf("MatchingKey = %q", got)
	}
}

func TestAnswerKey(t *testing.T) {
	mc := QuestionItem{Type: TypeMultipleChoice, AnswerKey: "B"}
	if AnswerKey(mc) != "B" {
		t.Fatal("multiple choice key should pass through")
	}
	m := QuestionItem{Type: TypeMatching, AnswerKey: "ignored", MatchingPairs: []MatchingPair{{Left: "x", Right: "y"}}}
	if AnswerKey(m) != "1 - A" {
		t.Fatalf("matching key = %q", AnswerKey(m))
	}
}

func TestQuestionItemDisplay(t *testing.T) {
	if !(QuestionItem{Type: TypeMultipleChoice, Options: []string{"a"}}).HasOptions() {
		t.Error("multiple choice with options should show options")
	}
	if (QuestionItem{Type: TypeEssay, Options: []string{"a"}}).HasOptions() {
		t.Error("essay should not show options")
	}
	if (QuestionItem{Type: TypeMatching, Stimulus: "s"}).ShowsStimulus() {
		t.Error("matching hides stimulus")
	}
	if !(QuestionItem{Type: TypeEssay, Stimulus: "s"}).ShowsStimulus() {
		t.Error("essay shows stimulus")
	}
	if Letter(0) != "A" || Letter(25) != "Z" {
		t.Error("Letter")
	}
}
