package scoring

import (
	"testing"

	"github.com/gdhanush27/Form-Pulse/internal/model"
)

func sampleSet() *model.QuestionSet {
	return &model.QuestionSet{
		FormName: "maths-quiz",
		Questions: []model.Question{
			{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4", Marks: 2},
			{Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris", Marks: 3},
		},
	}
}

func TestScore(t *testing.T) {
	qs := sampleSet()

	tests := []struct {
		name   string
		sheet  model.AnswerSheet
		earned int
	}{
		{name: "empty sheet", sheet: model.AnswerSheet{}, earned: 0},
		{name: "all correct", sheet: model.AnswerSheet{0: "4", 1: "Paris"}, earned: 5},
		{name: "partially correct", sheet: model.AnswerSheet{0: "4", 1: "Rome"}, earned: 2},
		{name: "all wrong", sheet: model.AnswerSheet{0: "3", 1: "Rome"}, earned: 0},
		{name: "unanswered contribute zero", sheet: model.AnswerSheet{1: "Paris"}, earned: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.sheet, qs)
			if got.MarksEarned != tc.earned {
				t.Errorf("MarksEarned = %d, want %d", got.MarksEarned, tc.earned)
			}
			if got.MaxMarks != 5 {
				t.Errorf("MaxMarks = %d, want 5", got.MaxMarks)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	qs := sampleSet()

	res := Score(model.AnswerSheet{0: "4", 1: "Rome"}, qs)
	pct, ok := res.Percentage()
	if !ok {
		t.Fatal("Percentage() ok = false, want true")
	}
	if pct != 40.0 {
		t.Errorf("Percentage() = %v, want 40.0", pct)
	}
}

func TestPercentageZeroMaxMarks(t *testing.T) {
	empty := &model.QuestionSet{FormName: "empty"}

	res := Score(model.AnswerSheet{}, empty)
	if res.MaxMarks != 0 || res.MarksEarned != 0 {
		t.Fatalf("Score on empty set = %+v, want zeros", res)
	}
	if _, ok := res.Percentage(); ok {
		t.Error("Percentage() ok = true for MaxMarks 0, want false")
	}
}

func TestPercentageRounding(t *testing.T) {
	qs := &model.QuestionSet{
		Questions: []model.Question{
			{Text: "a", Options: []string{"x", "y"}, CorrectAnswer: "x", Marks: 1},
			{Text: "b", Options: []string{"x", "y"}, CorrectAnswer: "x", Marks: 1},
			{Text: "c", Options: []string{"x", "y"}, CorrectAnswer: "x", Marks: 1},
		},
	}
	res := Score(model.AnswerSheet{0: "x"}, qs)
	pct, ok := res.Percentage()
	if !ok {
		t.Fatal("Percentage() ok = false, want true")
	}
	if pct != 33.33 {
		t.Errorf("Percentage() = %v, want 33.33", pct)
	}
}
