package model

import "time"

// SessionState enumerates the states of a proctored session.
type SessionState string

const (
	StateLoading            SessionState = "LOADING"
	StateAwaitingAuth       SessionState = "AWAITING_AUTH"
	StateAwaitingFullscreen SessionState = "AWAITING_FULLSCREEN"
	StateInProgress         SessionState = "IN_PROGRESS"
	StateSubmitted          SessionState = "SUBMITTED"
)

// ViolationKind identifies an integrity-rule breach.
type ViolationKind string

// ViolationTabSwitch is emitted when the document goes hidden mid-session.
// Fullscreen exit is a blocking gate, not a countable violation.
const ViolationTabSwitch ViolationKind = "TAB_SWITCH"

// ViolationThreshold is the number of violations that forces auto-submission.
const ViolationThreshold = 3

// ViolationRecord counts integrity violations for one session. Incremented
// only by the integrity monitor path, never decremented.
type ViolationRecord struct {
	Count     int `json:"count"`
	Threshold int `json:"threshold"`
}

// Exhausted reports whether the violation budget is spent.
func (r ViolationRecord) Exhausted() bool {
	return r.Count >= r.Threshold
}

// Remaining returns how many violations are left before auto-submission.
func (r ViolationRecord) Remaining() int {
	if r.Exhausted() {
		return 0
	}
	return r.Threshold - r.Count
}

// Respondent is the externally-authenticated identity taking the form.
type Respondent struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SubmissionResult is the score attached to a submitted session. The
// upstream API's marks are authoritative; the locally computed value is
// advisory and used when upstream does not echo one back.
type SubmissionResult struct {
	MarksEarned int  `json:"marks_earned"`
	MaxMarks    int  `json:"max_marks"`
	Auto        bool `json:"auto_submitted"`
}

// ProctorMetrics travels with the upstream submission.
type ProctorMetrics struct {
	TabSwitchCount        int  `json:"tab_switch_count"`
	WasFullscreenAtSubmit bool `json:"was_fullscreen"`
}

// ViolationEvent is the audit record queued for persistence whenever the
// monitor reports a violation.
type ViolationEvent struct {
	FormName        string        `json:"form_name"`
	RespondentEmail string        `json:"respondent_email"`
	Kind            ViolationKind `json:"kind"`
	Count           int           `json:"count"`
	OccurredAt      time.Time     `json:"occurred_at"`
}

// SubmissionAudit is the audit record queued once a session reaches SUBMITTED.
type SubmissionAudit struct {
	FormName        string    `json:"form_name"`
	RespondentEmail string    `json:"respondent_email"`
	MarksEarned     int       `json:"marks_earned"`
	MaxMarks        int       `json:"max_marks"`
	TabSwitches     int       `json:"tab_switches"`
	AutoSubmitted   bool      `json:"auto_submitted"`
	WasFullscreen   bool      `json:"was_fullscreen"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// ─── Request payloads ───────────────────────────────────────────────

// BeginSessionRequest is the payload for joining a form session.
type BeginSessionRequest struct {
	FullscreenActive bool `json:"fullscreen_active"`
}

// AnswerRequest is the payload for recording a single answer.
type AnswerRequest struct {
	Index int    `json:"index" binding:"min=0"`
	Value string `json:"value" binding:"required"`
}
