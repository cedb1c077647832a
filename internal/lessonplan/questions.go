package lessonplan

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Letter returns the option letter for a zero-based index: 0 is "A".
func Letter(i int) string {
	return string(rune('A' + i))
}

// QuestionGroup is the run of items sharing one question type.
type QuestionGroup struct {
	Letter string
	Type   string
	Items  []QuestionItem
}

// Heading returns the group heading, e.g. "A. PILIHAN GANDA".
func (g QuestionGroup) Heading() string {
	return g.Letter + ". " + strings.ToUpper(g.Type)
}

// GroupQuestions groups items by type. Groups appear in the order their type
// is first seen and keep the item order within each group.
func GroupQuestions(items []QuestionItem) []QuestionGroup {
	var groups []QuestionGroup
	index := map[string]int{}
	for _, it := range items {
		i, ok := index[it.Type]
		if !ok {
			i = len(groups)
			index[it.Type] = i
			groups = append(groups, QuestionGroup{Letter: Letter(i), Type: it.Type})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// SortedAnswers returns the right-hand column of a matching question in the
// order it is printed: sorted with Indonesian collation.
func SortedAnswers(pairs []MatchingPair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Right
	}
	c := collate.New(language.Indonesian)
	sort.SliceStable(out, func(i, j int) bool {
		return c.CompareString(out[i], out[j]) < 0
	})
	return out
}

// MatchingKey builds the answer key for a matching question against the
// printed answer order, e.g. "1 - B, 2 - A". Duplicate answers resolve to
// their first printed position.
func MatchingKey(pairs []MatchingPair) string {
	sorted := SortedAnswers(pairs)
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		pos := -1
		for j, s := range sorted {
			if s == p.Right {
				pos = j
				break
			}
		}
		parts[i] = fmt.Sprintf("%d - %s", i+1, Letter(pos))
	}
	return strings.Join(parts, ", ")
}

// AnswerKey returns the displayed answer key of an item. Matching items get
// a key computed from their pairs.
func AnswerKey(q QuestionItem) string {
	if q.Type == TypeMatching && len(q.MatchingPairs) > 0 {
		return MatchingKey(q.MatchingPairs)
	}
	return q.AnswerKey
}
