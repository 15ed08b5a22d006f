package model

import "strconv"

// AnswerSheet maps a 0-based question index to the chosen option.
type AnswerSheet map[int]string

// Set records an answer after validating it against the question set.
// An out-of-range index or an unknown option is a programming/UI error
// and is rejected with ErrInvalidAnswer.
func (s AnswerSheet) Set(qs *QuestionSet, idx int, value string) error {
	if idx < 0 || idx >= len(qs.Questions) {
		return ErrInvalidAnswer
	}
	if !qs.HasOption(idx, value) {
		return ErrInvalidAnswer
	}
	s[idx] = value
	return nil
}

// IsComplete reports whether every question of the set has an answer.
func (s AnswerSheet) IsComplete(qs *QuestionSet) bool {
	return len(s) == len(qs.Questions)
}

// Clone returns an independent copy of the sheet.
func (s AnswerSheet) Clone() AnswerSheet {
	out := make(AnswerSheet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Wire converts the sheet to the string-keyed map the upstream submit
// endpoint expects ({"0": "Paris"}).
func (s AnswerSheet) Wire() map[string]string {
	out := make(map[string]string, len(s))
	for idx, v := range s {
		out[strconv.Itoa(idx)] = v
	}
	return out
}

// SheetFromWire rebuilds an AnswerSheet from its wire form, dropping
// entries that no longer validate against the question set. Used when
// rehydrating autosaved answers into a fresh session.
func SheetFromWire(qs *QuestionSet, wire map[string]string) AnswerSheet {
	sheet := make(AnswerSheet, len(wire))
	for key, value := range wire {
		idx, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		_ = sheet.Set(qs, idx, value)
	}
	return sheet
}
