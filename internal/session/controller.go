// Package session implements the proctored session controller: the state
// machine that governs one respondent's attempt at a form, enforces the
// integrity rules, and drives the single idempotent submission upstream.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/model"
	"github.com/gdhanush27/Form-Pulse/internal/scoring"
)

// FormFetcher loads a question set from the upstream forms API.
type FormFetcher interface {
	FetchForm(ctx context.Context, formName string) (*model.QuestionSet, error)
}

// SubmitRequest is the payload handed to the Submitter when a session
// transitions to SUBMITTED.
type SubmitRequest struct {
	FormName   string
	Respondent model.Respondent
	Answers    map[string]string
	Metrics    model.ProctorMetrics
}

// SubmitOutcome is the upstream's acknowledgement of a submission.
// HasMarks is false when the upstream did not echo a score back.
type SubmitOutcome struct {
	MarksEarned int
	HasMarks    bool
}

// Submitter performs the one network submission for a session.
type Submitter interface {
	Submit(ctx context.Context, req *SubmitRequest) (*SubmitOutcome, error)
}

// Recorder receives audit events. Implementations must be fire-and-forget;
// the session path never fails on audit errors.
type Recorder interface {
	RecordViolation(ev model.ViolationEvent)
	RecordSubmission(a model.SubmissionAudit)
}

// Notifier pushes session directives back to the respondent's browser.
// Attached per WebSocket connection; all methods must be non-blocking-safe.
type Notifier interface {
	ViolationWarning(count, remaining int)
	FullscreenRequired()
	Submitted(res model.SubmissionResult)
}

// Deps are the collaborators a controller is wired with.
type Deps struct {
	Fetcher   FormFetcher
	Submitter Submitter
	Recorder  Recorder
	Log       zerolog.Logger
}

// Controller owns the aggregate state of one session. All mutation goes
// through its methods; the integrity monitor and scoring policy only get
// read access and callbacks.
type Controller struct {
	mu sync.Mutex

	formName   string
	respondent model.Respondent

	state       model.SessionState
	qs          *model.QuestionSet
	sheet       model.AnswerSheet
	violations  model.ViolationRecord
	fullscreen  bool
	inFlight    bool
	result      *model.SubmissionResult
	submittedAt time.Time

	monitor   *Monitor
	fetcher   FormFetcher
	submitter Submitter
	recorder  Recorder
	notifier  Notifier

	log zerolog.Logger
}

// NewController creates a session in LOADING for the given form/respondent.
func NewController(formName string, respondent model.Respondent, deps Deps) *Controller {
	c := &Controller{
		formName:   formName,
		respondent: respondent,
		state:      model.StateLoading,
		sheet:      model.AnswerSheet{},
		violations: model.ViolationRecord{Threshold: model.ViolationThreshold},
		fetcher:    deps.Fetcher,
		submitter:  deps.Submitter,
		recorder:   deps.Recorder,
		log: deps.Log.With().
			Str("component", "session").
			Str("form", formName).
			Str("respondent", respondent.Email).
			Logger(),
	}
	c.monitor = NewMonitor(c.handleViolation, c.handleFullscreenExit)
	return c
}

// SetNotifier attaches (or detaches, with nil) the live connection used for
// server-to-client directives. Safe across reconnects.
func (c *Controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	c.notifier = n
	c.mu.Unlock()
}

// Begin resolves LOADING: it fetches the question set and advances to
// IN_PROGRESS or AWAITING_FULLSCREEN. Calling Begin on an already started
// session is an idempotent no-op that reports the current state; calling it
// from AWAITING_AUTH retries the fetch after re-authentication.
func (c *Controller) Begin(ctx context.Context, fullscreenActive bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case model.StateLoading, model.StateAwaitingAuth:
		// Proceed with the fetch below.
	case model.StateAwaitingFullscreen:
		c.fullscreen = fullscreenActive
		if fullscreenActive {
			c.enterInProgressLocked()
		} else {
			// A reloading client needs the directive again.
			c.notifyFullscreenRequiredLocked()
		}
		return nil
	default:
		// IN_PROGRESS or SUBMITTED: joining again is a no-op.
		return nil
	}

	qs, err := c.fetcher.FetchForm(ctx, c.formName)
	if err != nil {
		if errors.Is(err, model.ErrForbidden) {
			// Re-authentication is handled by the external identity
			// provider; the session waits for the redirect to come back.
			c.state = model.StateAwaitingAuth
		}
		return err
	}

	c.qs = qs
	c.fullscreen = fullscreenActive

	if !qs.Protected || fullscreenActive {
		c.enterInProgressLocked()
		return nil
	}

	c.state = model.StateAwaitingFullscreen
	c.notifyFullscreenRequiredLocked()
	return nil
}

// enterInProgressLocked performs the entry actions of IN_PROGRESS.
// Caller must hold c.mu.
func (c *Controller) enterInProgressLocked() {
	c.state = model.StateInProgress
	if c.qs.Protected {
		c.monitor.Start()
	}
	c.log.Info().Bool("protected", c.qs.Protected).Msg("Session in progress")
}

// HydrateAnswers restores autosaved answers into a freshly created session.
// Entries that no longer validate are dropped silently.
func (c *Controller) HydrateAnswers(wire map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.qs == nil || len(c.sheet) > 0 {
		return
	}
	if c.state != model.StateInProgress && c.state != model.StateAwaitingFullscreen {
		return
	}
	c.sheet = model.SheetFromWire(c.qs, wire)
}

// SetAnswer records one answer. Protected sessions that left fullscreen are
// gated until fullscreen is re-entered.
func (c *Controller) SetAnswer(idx int, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case model.StateSubmitted:
		return model.ErrAlreadySubmitted
	case model.StateInProgress:
		// ok
	default:
		return model.ErrSessionNotReady
	}

	if c.qs.Protected && !c.fullscreen {
		return model.ErrFullscreenRequired
	}

	return c.sheet.Set(c.qs, idx, value)
}

// VisibilityChanged feeds the document-visibility signal to the monitor.
// Each transition to hidden while monitored counts as one violation.
func (c *Controller) VisibilityChanged(hidden bool) {
	c.monitor.VisibilityChanged(hidden)
}

// FullscreenChanged feeds the fullscreen signal. Entering fullscreen from
// AWAITING_FULLSCREEN starts the attempt; exiting mid-attempt gates answers
// without ever counting as a violation.
func (c *Controller) FullscreenChanged(active bool) {
	c.mu.Lock()
	c.fullscreen = active
	if c.state == model.StateAwaitingFullscreen && active {
		c.enterInProgressLocked()
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.monitor.FullscreenChanged(active)
}

// Submit is the user-initiated submission. It requires a complete sheet.
func (c *Controller) Submit(ctx context.Context) (*model.SubmissionResult, error) {
	return c.submit(ctx, false)
}

// handleViolation is the monitor's violation callback. It increments the
// budget, records the audit event, and forces submission once exhausted.
func (c *Controller) handleViolation(kind model.ViolationKind) {
	c.mu.Lock()
	if c.state != model.StateInProgress {
		c.mu.Unlock()
		return
	}
	c.violations.Count++
	record := c.violations
	ev := model.ViolationEvent{
		FormName:        c.formName,
		RespondentEmail: c.respondent.Email,
		Kind:            kind,
		Count:           record.Count,
		OccurredAt:      time.Now().UTC(),
	}
	rec, notif := c.recorder, c.notifier
	c.mu.Unlock()

	c.log.Warn().
		Str("kind", string(kind)).
		Int("count", record.Count).
		Msg("Integrity violation")

	if rec != nil {
		rec.RecordViolation(ev)
	}

	if !record.Exhausted() {
		if notif != nil {
			notif.ViolationWarning(record.Count, record.Remaining())
		}
		return
	}

	if _, err := c.submit(context.Background(), true); err != nil {
		c.log.Error().Err(err).Msg("Forced auto-submit failed")
	}
}

// handleFullscreenExit is the monitor's fullscreen callback. No counter;
// the client is told to re-enter fullscreen before answers flow again.
func (c *Controller) handleFullscreenExit() {
	c.mu.Lock()
	notify := c.state == model.StateInProgress
	c.mu.Unlock()

	if notify {
		c.log.Info().Msg("Fullscreen exited, gating answers")
		c.notifyFullscreenRequired()
	}
}

// submit performs the single-flight IN_PROGRESS -> SUBMITTED transition.
// SUBMITTED itself is the latch: once reached, every further attempt is an
// idempotent no-op returning the stored result. A concurrent attempt while
// the network call is in flight observes ErrSubmitPending and must not issue
// a second call.
func (c *Controller) submit(ctx context.Context, forced bool) (*model.SubmissionResult, error) {
	c.mu.Lock()
	switch {
	case c.state == model.StateSubmitted:
		res := *c.result
		c.mu.Unlock()
		return &res, nil
	case c.state != model.StateInProgress:
		c.mu.Unlock()
		return nil, model.ErrSessionNotReady
	case c.inFlight:
		c.mu.Unlock()
		return nil, model.ErrSubmitPending
	}
	if !forced && !c.sheet.IsComplete(c.qs) {
		c.mu.Unlock()
		return nil, model.ErrIncompleteSheet
	}

	c.inFlight = true
	req := &SubmitRequest{
		FormName:   c.formName,
		Respondent: c.respondent,
		Answers:    c.sheet.Wire(),
		Metrics: model.ProctorMetrics{
			TabSwitchCount:        c.violations.Count,
			WasFullscreenAtSubmit: c.fullscreen,
		},
	}
	advisory := scoring.Score(c.sheet, c.qs)
	c.mu.Unlock()

	out, err := c.submitter.Submit(ctx, req)

	c.mu.Lock()
	c.inFlight = false
	if err != nil && !errors.Is(err, model.ErrAlreadySubmitted) {
		// The session stays IN_PROGRESS and remains submittable: no
		// success was ever acknowledged.
		c.mu.Unlock()
		c.log.Error().Err(err).Bool("forced", forced).Msg("Submission failed")
		return nil, err
	}

	res := model.SubmissionResult{
		MarksEarned: advisory.MarksEarned,
		MaxMarks:    advisory.MaxMarks,
		Auto:        forced,
	}
	if err == nil && out != nil && out.HasMarks {
		// Upstream score is authoritative when present.
		res.MarksEarned = out.MarksEarned
	}

	c.result = &res
	c.state = model.StateSubmitted
	c.submittedAt = time.Now().UTC()
	audit := model.SubmissionAudit{
		FormName:        c.formName,
		RespondentEmail: c.respondent.Email,
		MarksEarned:     res.MarksEarned,
		MaxMarks:        res.MaxMarks,
		TabSwitches:     c.violations.Count,
		AutoSubmitted:   forced,
		WasFullscreen:   c.fullscreen,
		SubmittedAt:     c.submittedAt,
	}
	rec, notif := c.recorder, c.notifier
	c.mu.Unlock()

	// No violations can be recorded past this point.
	c.monitor.Stop()

	c.log.Info().
		Int("marks_earned", res.MarksEarned).
		Int("max_marks", res.MaxMarks).
		Bool("forced", forced).
		Msg("Session submitted")

	if rec != nil {
		rec.RecordSubmission(audit)
	}
	if notif != nil {
		// The client releases fullscreen on this event.
		notif.Submitted(res)
	}
	return &res, nil
}

func (c *Controller) notifyFullscreenRequired() {
	c.mu.Lock()
	notif := c.notifier
	c.mu.Unlock()
	if notif != nil {
		notif.FullscreenRequired()
	}
}

// notifyFullscreenRequiredLocked fires the directive while holding c.mu.
// Only used from entry actions where the lock is already held.
func (c *Controller) notifyFullscreenRequiredLocked() {
	if c.notifier != nil {
		c.notifier.FullscreenRequired()
	}
}

// ─── Read access ────────────────────────────────────────────────────

// Snapshot is a read-only view of the session for API responses. Correct
// answers are redacted until the session is submitted on a form that
// reveals them.
type Snapshot struct {
	FormName    string                  `json:"form_name"`
	Respondent  model.Respondent        `json:"respondent"`
	State       model.SessionState      `json:"state"`
	QuestionSet *model.QuestionSet      `json:"question_set,omitempty"`
	Answers     map[string]string       `json:"answers"`
	Violations  model.ViolationRecord   `json:"violations"`
	Fullscreen  bool                    `json:"fullscreen_active"`
	Result      *model.SubmissionResult `json:"result,omitempty"`
	Percentage  *float64                `json:"percentage,omitempty"`
}

// Snapshot returns the current view of the session.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		FormName:   c.formName,
		Respondent: c.respondent,
		State:      c.state,
		Answers:    c.sheet.Wire(),
		Violations: c.violations,
		Fullscreen: c.fullscreen,
	}
	if c.qs != nil {
		if c.state == model.StateSubmitted && c.qs.RevealAnswers {
			snap.QuestionSet = c.qs
		} else {
			snap.QuestionSet = c.qs.Redacted()
		}
	}
	if c.result != nil {
		res := *c.result
		snap.Result = &res
		score := scoring.Result{MarksEarned: res.MarksEarned, MaxMarks: res.MaxMarks}
		if pct, ok := score.Percentage(); ok {
			snap.Percentage = &pct
		}
	}
	return snap
}

// State returns the current state.
func (c *Controller) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmittedAt reports when the session was submitted, if it was.
func (c *Controller) SubmittedAt() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != model.StateSubmitted {
		return time.Time{}, false
	}
	return c.submittedAt, true
}

// Respondent returns the session's owner.
func (c *Controller) Respondent() model.Respondent {
	return c.respondent
}

// FormName returns the form this session is attempting.
func (c *Controller) FormName() string {
	return c.formName
}
