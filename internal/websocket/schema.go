package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer     Action = "answer"
	ActionVisibility Action = "visibility"
	ActionFullscreen Action = "fullscreen"
	ActionSubmit     Action = "submit"
	ActionPing       Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest is sent by the client to record a single answer.
type AnswerRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Value  string `json:"value"`
}

// VisibilityRequest reports a document visibility flip. Hidden means the
// respondent left the tab.
type VisibilityRequest struct {
	Action Action `json:"action"`
	Hidden bool   `json:"hidden"`
}

// FullscreenRequest reports a fullscreen enter or exit.
type FullscreenRequest struct {
	Action Action `json:"action"`
	Active bool   `json:"active"`
}

// SubmitRequest is sent by the client to finalize the session.
type SubmitRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError              Event = "error"
	EventSaved              Event = "saved"
	EventViolationWarning   Event = "violation_warning"
	EventFullscreenRequired Event = "fullscreen_required"
	EventSubmitted          Event = "submitted"
	EventPong               Event = "pong"
)

type SavedResponse struct {
	Event Event `json:"event"`
	Index int   `json:"index"`
}

// ViolationWarningResponse tells the respondent how much of the
// violation budget is spent.
type ViolationWarningResponse struct {
	Event     Event `json:"event"`
	Count     int   `json:"count"`
	Remaining int   `json:"remaining"`
}

type FullscreenRequiredResponse struct {
	Event Event `json:"event"`
}

type SubmittedResponse struct {
	Event         Event `json:"event"`
	MarksEarned   int   `json:"marks_earned"`
	MaxMarks      int   `json:"max_marks"`
	AutoSubmitted bool  `json:"auto_submitted"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
