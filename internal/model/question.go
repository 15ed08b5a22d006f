package model

import (
	"encoding/json"
	"fmt"
)

// Question is a single multiple-choice question of a form.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Marks         int      `json:"marks"`
}

// QuestionSet is the immutable definition of a form as served by the
// upstream forms API. It is validated once at load and never mutated.
type QuestionSet struct {
	FormName      string     `json:"form_name"`
	Questions     []Question `json:"questions"`
	Protected     bool       `json:"protected"`
	RevealAnswers bool       `json:"show_answers"`
}

// ParseQuestionSet decodes and validates a raw form payload.
// Returns a *ValidationError describing the first offending question.
func ParseQuestionSet(raw []byte) (*QuestionSet, error) {
	var qs QuestionSet
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, &ValidationError{Reason: fmt.Sprintf("malformed form payload: %v", err)}
	}
	if err := qs.Validate(); err != nil {
		return nil, err
	}
	return &qs, nil
}

// Validate checks every question against the load invariants:
// at least two unique options, the correct answer among them, positive marks.
func (qs *QuestionSet) Validate() error {
	for i, q := range qs.Questions {
		if len(q.Options) < 2 {
			return &ValidationError{Index: i, Reason: "question needs at least 2 options"}
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if _, dup := seen[opt]; dup {
				return &ValidationError{Index: i, Reason: fmt.Sprintf("duplicate option %q", opt)}
			}
			seen[opt] = struct{}{}
		}
		if _, ok := seen[q.CorrectAnswer]; !ok {
			return &ValidationError{Index: i, Reason: fmt.Sprintf("correct answer %q not in options", q.CorrectAnswer)}
		}
		if q.Marks <= 0 {
			return &ValidationError{Index: i, Reason: "marks must be positive"}
		}
	}
	return nil
}

// MaxMarks returns the sum of marks across all questions. It is always
// derived, never stored.
func (qs *QuestionSet) MaxMarks() int {
	total := 0
	for _, q := range qs.Questions {
		total += q.Marks
	}
	return total
}

// HasOption reports whether value is one of the options of question idx.
func (qs *QuestionSet) HasOption(idx int, value string) bool {
	if idx < 0 || idx >= len(qs.Questions) {
		return false
	}
	for _, opt := range qs.Questions[idx].Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Redacted returns a copy of the set with correct answers stripped, for
// serving to a respondent who has not submitted yet.
func (qs *QuestionSet) Redacted() *QuestionSet {
	out := &QuestionSet{
		FormName:      qs.FormName,
		Protected:     qs.Protected,
		RevealAnswers: qs.RevealAnswers,
		Questions:     make([]Question, len(qs.Questions)),
	}
	for i, q := range qs.Questions {
		q.CorrectAnswer = ""
		out.Questions[i] = q
	}
	return out
}
