package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the session, upstream, and handler layers.
var (
	// ErrNotFound — the upstream API has no form with that name.
	ErrNotFound = errors.New("form not found")
	// ErrForbidden — the upstream API rejected the respondent's credentials.
	ErrForbidden = errors.New("authentication required")
	// ErrInvalidAnswer — answer index out of range or option not offered.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrIncompleteSheet — manual submit attempted before every question is answered.
	ErrIncompleteSheet = errors.New("answer sheet is incomplete")
	// ErrFullscreenRequired — protected session left fullscreen; answers are gated.
	ErrFullscreenRequired = errors.New("fullscreen must be re-entered")
	// ErrSubmission — the upstream submit call failed; the session stays retryable.
	ErrSubmission = errors.New("submission failed")
	// ErrAlreadySubmitted — upstream reported a duplicate submission. Benign.
	ErrAlreadySubmitted = errors.New("form already submitted")
	// ErrSubmitPending — another submit attempt holds the single-flight latch.
	ErrSubmitPending = errors.New("submission already in flight")
	// ErrSessionNotReady — an operation requires an IN_PROGRESS session.
	ErrSessionNotReady = errors.New("session is not in progress")
)

// ValidationError describes a malformed question set. Fatal to load;
// there is no retry path.
type ValidationError struct {
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid form: question %d: %s", e.Index, e.Reason)
}
