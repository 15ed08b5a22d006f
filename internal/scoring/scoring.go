// Package scoring computes the advisory score for a submitted answer sheet.
// The upstream forms API holds the authoritative score; this result is shown
// while the network round-trip is pending or as a fallback.
package scoring

import (
	"math"

	"github.com/gdhanush27/Form-Pulse/internal/model"
)

// Result is the outcome of scoring a sheet against a question set.
type Result struct {
	MarksEarned int `json:"marks_earned"`
	MaxMarks    int `json:"max_marks"`
}

// Score awards each question's marks when the recorded answer equals the
// correct answer. Unanswered questions contribute zero. Pure and total.
func Score(sheet model.AnswerSheet, qs *model.QuestionSet) Result {
	earned := 0
	for i, q := range qs.Questions {
		if answer, ok := sheet[i]; ok && answer == q.CorrectAnswer {
			earned += q.Marks
		}
	}
	return Result{MarksEarned: earned, MaxMarks: qs.MaxMarks()}
}

// Percentage returns the score as a percentage rounded to two decimals.
// ok is false when MaxMarks is zero; callers must render a placeholder
// instead of dividing by zero.
func (r Result) Percentage() (pct float64, ok bool) {
	if r.MaxMarks == 0 {
		return 0, false
	}
	raw := float64(r.MarksEarned) / float64(r.MaxMarks) * 100
	return math.Round(raw*100) / 100, true
}
