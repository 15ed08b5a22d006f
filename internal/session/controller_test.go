package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/model"
)

// ─── Test doubles ───────────────────────────────────────────────────

type fakeFetcher struct {
	qs  *model.QuestionSet
	err error
}

func (f *fakeFetcher) FetchForm(ctx context.Context, formName string) (*model.QuestionSet, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.qs, nil
}

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	requests []*SubmitRequest
	outcome  *SubmitOutcome
	err      error
	block    chan struct{} // when set, Submit waits until closed
	entered  chan struct{} // when set, closed once Submit is reached
}

func (f *fakeSubmitter) Submit(ctx context.Context, req *SubmitRequest) (*SubmitOutcome, error) {
	f.mu.Lock()
	f.calls++
	f.requests = append(f.requests, req)
	entered, block := f.entered, f.block
	f.mu.Unlock()

	if entered != nil {
		close(entered)
		f.mu.Lock()
		f.entered = nil
		f.mu.Unlock()
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu          sync.Mutex
	violations  []model.ViolationEvent
	submissions []model.SubmissionAudit
}

func (f *fakeRecorder) RecordViolation(ev model.ViolationEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.violations = append(f.violations, ev)
}

func (f *fakeRecorder) RecordSubmission(a model.SubmissionAudit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, a)
}

func (f *fakeRecorder) violationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.violations)
}

type fakeNotifier struct {
	mu         sync.Mutex
	warnings   []int
	fullscreen int
	submitted  []model.SubmissionResult
}

func (f *fakeNotifier) ViolationWarning(count, remaining int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnings = append(f.warnings, count)
}

func (f *fakeNotifier) FullscreenRequired() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullscreen++
}

func (f *fakeNotifier) Submitted(res model.SubmissionResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, res)
}

func protectedSet() *model.QuestionSet {
	return &model.QuestionSet{
		FormName:  "final-exam",
		Protected: true,
		Questions: []model.Question{
			{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4", Marks: 2},
			{Text: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectAnswer: "Paris", Marks: 3},
		},
	}
}

func openSet() *model.QuestionSet {
	qs := protectedSet()
	qs.Protected = false
	return qs
}

func newTestController(qs *model.QuestionSet, sub *fakeSubmitter) (*Controller, *fakeRecorder, *fakeNotifier) {
	rec := &fakeRecorder{}
	notif := &fakeNotifier{}
	ctrl := NewController(qs.FormName, model.Respondent{Name: "Ada", Email: "ada@example.com"}, Deps{
		Fetcher:   &fakeFetcher{qs: qs},
		Submitter: sub,
		Recorder:  rec,
		Log:       zerolog.Nop(),
	})
	ctrl.SetNotifier(notif)
	return ctrl, rec, notif
}

// ─── State machine ──────────────────────────────────────────────────

func TestBeginUnprotectedGoesInProgress(t *testing.T) {
	ctrl, _, _ := newTestController(openSet(), &fakeSubmitter{})

	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state = %s, want %s", got, model.StateInProgress)
	}
}

func TestBeginProtectedWithoutFullscreenAwaits(t *testing.T) {
	ctrl, _, notif := newTestController(protectedSet(), &fakeSubmitter{})

	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := ctrl.State(); got != model.StateAwaitingFullscreen {
		t.Fatalf("state = %s, want %s", got, model.StateAwaitingFullscreen)
	}
	if notif.fullscreen == 0 {
		t.Error("fullscreen was not requested on entering AWAITING_FULLSCREEN")
	}

	ctrl.FullscreenChanged(true)
	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state after fullscreen = %s, want %s", got, model.StateInProgress)
	}
}

func TestRejoinWhileAwaitingFullscreenReprompts(t *testing.T) {
	ctrl, _, notif := newTestController(protectedSet(), &fakeSubmitter{})

	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if notif.fullscreen != 1 {
		t.Fatalf("fullscreen requests = %d, want 1", notif.fullscreen)
	}

	// A page reload joins again, still outside fullscreen.
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatalf("rejoin Begin() error = %v", err)
	}
	if got := ctrl.State(); got != model.StateAwaitingFullscreen {
		t.Fatalf("state after rejoin = %s, want %s", got, model.StateAwaitingFullscreen)
	}
	if notif.fullscreen != 2 {
		t.Errorf("fullscreen requests after rejoin = %d, want 2", notif.fullscreen)
	}

	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatalf("fullscreen rejoin Begin() error = %v", err)
	}
	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state = %s, want %s", got, model.StateInProgress)
	}
}

func TestBeginProtectedWithFullscreenGoesInProgress(t *testing.T) {
	ctrl, _, _ := newTestController(protectedSet(), &fakeSubmitter{})

	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state = %s, want %s", got, model.StateInProgress)
	}
}

func TestBeginForbiddenRoutesToAwaitingAuth(t *testing.T) {
	fetcher := &fakeFetcher{err: model.ErrForbidden}
	ctrl := NewController("final-exam", model.Respondent{Email: "ada@example.com"}, Deps{
		Fetcher:   fetcher,
		Submitter: &fakeSubmitter{},
		Log:       zerolog.Nop(),
	})

	err := ctrl.Begin(context.Background(), false)
	if !errors.Is(err, model.ErrForbidden) {
		t.Fatalf("Begin() error = %v, want ErrForbidden", err)
	}
	if got := ctrl.State(); got != model.StateAwaitingAuth {
		t.Fatalf("state = %s, want %s", got, model.StateAwaitingAuth)
	}

	// After re-authentication the fetch is retried.
	fetcher.err = nil
	fetcher.qs = openSet()
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatalf("Begin() retry error = %v", err)
	}
	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state after retry = %s, want %s", got, model.StateInProgress)
	}
}

func TestBeginNotFoundStaysLoading(t *testing.T) {
	ctrl := NewController("ghost", model.Respondent{Email: "ada@example.com"}, Deps{
		Fetcher:   &fakeFetcher{err: model.ErrNotFound},
		Submitter: &fakeSubmitter{},
		Log:       zerolog.Nop(),
	})

	err := ctrl.Begin(context.Background(), false)
	if !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Begin() error = %v, want ErrNotFound", err)
	}
	if got := ctrl.State(); got != model.StateLoading {
		t.Errorf("state = %s, want %s", got, model.StateLoading)
	}
}

func TestBeginIsIdempotentOnceStarted(t *testing.T) {
	ctrl, _, _ := newTestController(openSet(), &fakeSubmitter{})

	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.SetAnswer(0, "4"); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatalf("second Begin() error = %v", err)
	}
	if snap := ctrl.Snapshot(); snap.Answers["0"] != "4" {
		t.Error("second Begin() lost recorded answers")
	}
}

// ─── Violation budget ───────────────────────────────────────────────

func TestViolationBudget(t *testing.T) {
	sub := &fakeSubmitter{}
	ctrl, rec, notif := newTestController(protectedSet(), sub)
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	// Two tab switches: warnings only, session continues.
	ctrl.VisibilityChanged(true)
	ctrl.VisibilityChanged(false)
	ctrl.VisibilityChanged(true)
	ctrl.VisibilityChanged(false)

	if got := ctrl.State(); got != model.StateInProgress {
		t.Fatalf("state after 2 violations = %s, want %s", got, model.StateInProgress)
	}
	if len(notif.warnings) != 2 || notif.warnings[0] != 1 || notif.warnings[1] != 2 {
		t.Errorf("warnings = %v, want [1 2]", notif.warnings)
	}

	// Third tab switch forces submission of the incomplete sheet.
	ctrl.VisibilityChanged(true)

	if got := ctrl.State(); got != model.StateSubmitted {
		t.Fatalf("state after 3rd violation = %s, want %s", got, model.StateSubmitted)
	}
	snap := ctrl.Snapshot()
	if snap.Violations.Count != 3 {
		t.Errorf("violation count = %d, want 3", snap.Violations.Count)
	}
	if snap.Result == nil || !snap.Result.Auto {
		t.Errorf("result = %+v, want auto-submitted", snap.Result)
	}
	if sub.callCount() != 1 {
		t.Errorf("network submissions = %d, want 1", sub.callCount())
	}
	if rec.violationCount() != 3 {
		t.Errorf("recorded violations = %d, want 3", rec.violationCount())
	}

	req := sub.requests[0]
	if req.Metrics.TabSwitchCount != 3 {
		t.Errorf("metrics tab switches = %d, want 3", req.Metrics.TabSwitchCount)
	}
}

func TestVisibilityShownNeverCounts(t *testing.T) {
	ctrl, rec, _ := newTestController(protectedSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	ctrl.VisibilityChanged(false)
	ctrl.VisibilityChanged(false)

	if rec.violationCount() != 0 {
		t.Errorf("recorded violations = %d, want 0", rec.violationCount())
	}
}

func TestUnprotectedSessionNeverMonitored(t *testing.T) {
	ctrl, rec, _ := newTestController(openSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	ctrl.VisibilityChanged(true)
	ctrl.VisibilityChanged(true)
	ctrl.VisibilityChanged(true)

	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state = %s, want %s", got, model.StateInProgress)
	}
	if rec.violationCount() != 0 {
		t.Errorf("recorded violations = %d, want 0", rec.violationCount())
	}
}

func TestNoViolationsBeforeInProgress(t *testing.T) {
	ctrl, rec, _ := newTestController(protectedSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	// Still AWAITING_FULLSCREEN: the monitor has not started.
	ctrl.VisibilityChanged(true)

	if rec.violationCount() != 0 {
		t.Errorf("recorded violations = %d, want 0", rec.violationCount())
	}
}

func TestNoViolationsAfterSubmitted(t *testing.T) {
	sub := &fakeSubmitter{}
	ctrl, rec, _ := newTestController(protectedSet(), sub)
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)
	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctrl.VisibilityChanged(true)

	if rec.violationCount() != 0 {
		t.Errorf("recorded violations after submit = %d, want 0", rec.violationCount())
	}
}

// ─── Fullscreen gate ────────────────────────────────────────────────

func TestFullscreenExitGatesWithoutCounting(t *testing.T) {
	ctrl, rec, notif := newTestController(protectedSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	ctrl.FullscreenChanged(false)

	if got := ctrl.State(); got != model.StateInProgress {
		t.Fatalf("state = %s, want %s", got, model.StateInProgress)
	}
	if rec.violationCount() != 0 {
		t.Errorf("fullscreen exit counted as violation: %d", rec.violationCount())
	}
	if notif.fullscreen == 0 {
		t.Error("fullscreen re-entry was not requested")
	}

	if err := ctrl.SetAnswer(0, "4"); !errors.Is(err, model.ErrFullscreenRequired) {
		t.Errorf("SetAnswer() while gated error = %v, want ErrFullscreenRequired", err)
	}

	ctrl.FullscreenChanged(true)
	if err := ctrl.SetAnswer(0, "4"); err != nil {
		t.Errorf("SetAnswer() after re-entry error = %v", err)
	}
}

func TestRepeatedFullscreenExitNeverAutoSubmits(t *testing.T) {
	sub := &fakeSubmitter{}
	ctrl, _, _ := newTestController(protectedSet(), sub)
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		ctrl.FullscreenChanged(false)
		ctrl.FullscreenChanged(true)
	}

	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state = %s, want %s", got, model.StateInProgress)
	}
	if sub.callCount() != 0 {
		t.Errorf("network submissions = %d, want 0", sub.callCount())
	}
}

// ─── Answers ────────────────────────────────────────────────────────

func TestSetAnswerValidation(t *testing.T) {
	ctrl, _, _ := newTestController(openSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.SetAnswer(5, "4"); !errors.Is(err, model.ErrInvalidAnswer) {
		t.Errorf("out-of-range index error = %v, want ErrInvalidAnswer", err)
	}
	if err := ctrl.SetAnswer(0, "42"); !errors.Is(err, model.ErrInvalidAnswer) {
		t.Errorf("unknown option error = %v, want ErrInvalidAnswer", err)
	}
}

func TestHydrateAnswers(t *testing.T) {
	ctrl, _, _ := newTestController(openSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	ctrl.HydrateAnswers(map[string]string{"0": "4", "1": "nonsense"})

	snap := ctrl.Snapshot()
	if snap.Answers["0"] != "4" {
		t.Error("valid autosaved answer was not restored")
	}
	if _, ok := snap.Answers["1"]; ok {
		t.Error("invalid autosaved answer was restored")
	}
	if snap.Violations.Count != 0 {
		t.Errorf("violation count after hydrate = %d, want 0", snap.Violations.Count)
	}
}

// ─── Submission ─────────────────────────────────────────────────────

func fillSheet(t *testing.T, ctrl *Controller) {
	t.Helper()
	if err := ctrl.SetAnswer(0, "4"); err != nil {
		t.Fatal(err)
	}
	if err := ctrl.SetAnswer(1, "Rome"); err != nil {
		t.Fatal(err)
	}
}

func TestManualSubmitRequiresCompleteSheet(t *testing.T) {
	ctrl, _, _ := newTestController(openSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, model.ErrIncompleteSheet) {
		t.Fatalf("Submit() error = %v, want ErrIncompleteSheet", err)
	}
	if got := ctrl.State(); got != model.StateInProgress {
		t.Errorf("state = %s, want %s", got, model.StateInProgress)
	}
}

func TestManualSubmitAdvisoryScore(t *testing.T) {
	sub := &fakeSubmitter{}
	ctrl, _, notif := newTestController(openSet(), sub)
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)

	res, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if res.MarksEarned != 2 || res.MaxMarks != 5 {
		t.Errorf("result = %+v, want 2/5", res)
	}
	if res.Auto {
		t.Error("manual submit flagged as auto")
	}
	if len(notif.submitted) != 1 {
		t.Errorf("submitted notifications = %d, want 1", len(notif.submitted))
	}
}

func TestUpstreamMarksAreAuthoritative(t *testing.T) {
	sub := &fakeSubmitter{outcome: &SubmitOutcome{MarksEarned: 4, HasMarks: true}}
	ctrl, _, _ := newTestController(openSet(), sub)
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)

	res, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.MarksEarned != 4 {
		t.Errorf("MarksEarned = %d, want upstream value 4", res.MarksEarned)
	}
}

func TestSubmitIdempotent(t *testing.T) {
	sub := &fakeSubmitter{}
	ctrl, rec, _ := newTestController(openSet(), sub)
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)

	first, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}
	if *first != *second {
		t.Errorf("second result %+v differs from first %+v", second, first)
	}
	if sub.callCount() != 1 {
		t.Errorf("network submissions = %d, want 1", sub.callCount())
	}
	rec.mu.Lock()
	audits := len(rec.submissions)
	rec.mu.Unlock()
	if audits != 1 {
		t.Errorf("submission audits = %d, want 1", audits)
	}
}

func TestForcedSubmitWhileManualInFlight(t *testing.T) {
	sub := &fakeSubmitter{
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	ctrl, _, _ := newTestController(protectedSet(), sub)
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)

	entered := sub.entered
	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background())
		done <- err
	}()
	<-entered // manual submission reached the network

	// Violations pour in while the call is pending; the forced path must
	// detect the in-flight submission and stay silent on the wire.
	ctrl.VisibilityChanged(true)
	ctrl.VisibilityChanged(true)
	ctrl.VisibilityChanged(true)

	close(sub.block)
	if err := <-done; err != nil {
		t.Fatalf("manual Submit() error = %v", err)
	}

	if got := ctrl.State(); got != model.StateSubmitted {
		t.Fatalf("state = %s, want %s", got, model.StateSubmitted)
	}
	if sub.callCount() != 1 {
		t.Errorf("network submissions = %d, want exactly 1", sub.callCount())
	}
}

func TestManualSubmitWhileForcedInFlight(t *testing.T) {
	sub := &fakeSubmitter{
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	ctrl, _, _ := newTestController(protectedSet(), sub)
	if err := ctrl.Begin(context.Background(), true); err != nil {
		t.Fatal(err)
	}

	entered := sub.entered
	go func() {
		// Third violation triggers the forced submission on this goroutine.
		ctrl.VisibilityChanged(true)
		ctrl.VisibilityChanged(true)
		ctrl.VisibilityChanged(true)
	}()
	<-entered

	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, model.ErrSubmitPending) {
		t.Errorf("Submit() during forced submission error = %v, want ErrSubmitPending", err)
	}

	close(sub.block)

	// The forced path runs synchronously on the violation goroutine; wait
	// for the state to settle.
	waitForState(t, ctrl, model.StateSubmitted)
	if sub.callCount() != 1 {
		t.Errorf("network submissions = %d, want exactly 1", sub.callCount())
	}
}

func TestSubmitFailureStaysRetryable(t *testing.T) {
	sub := &fakeSubmitter{err: fmt.Errorf("%w: upstream unreachable", model.ErrSubmission)}
	ctrl, _, _ := newTestController(openSet(), sub)
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)

	if _, err := ctrl.Submit(context.Background()); !errors.Is(err, model.ErrSubmission) {
		t.Fatalf("Submit() error = %v, want ErrSubmission", err)
	}
	if got := ctrl.State(); got != model.StateInProgress {
		t.Fatalf("state after failure = %s, want %s", got, model.StateInProgress)
	}

	sub.err = nil
	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("retry Submit() error = %v", err)
	}
	if got := ctrl.State(); got != model.StateSubmitted {
		t.Errorf("state after retry = %s, want %s", got, model.StateSubmitted)
	}
}

func TestDuplicateRejectionIsBenign(t *testing.T) {
	sub := &fakeSubmitter{err: model.ErrAlreadySubmitted}
	ctrl, _, _ := newTestController(openSet(), sub)
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)

	res, err := ctrl.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v, duplicate must be benign", err)
	}
	if got := ctrl.State(); got != model.StateSubmitted {
		t.Errorf("state = %s, want %s", got, model.StateSubmitted)
	}
	// Advisory score is used when upstream acknowledged nothing.
	if res.MarksEarned != 2 || res.MaxMarks != 5 {
		t.Errorf("result = %+v, want advisory 2/5", res)
	}
}

func TestSetAnswerAfterSubmit(t *testing.T) {
	ctrl, _, _ := newTestController(openSet(), &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	fillSheet(t, ctrl)
	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := ctrl.SetAnswer(0, "3"); !errors.Is(err, model.ErrAlreadySubmitted) {
		t.Errorf("SetAnswer() after submit error = %v, want ErrAlreadySubmitted", err)
	}
}

func TestSnapshotRedactsUntilRevealed(t *testing.T) {
	qs := openSet()
	qs.RevealAnswers = true
	ctrl, _, _ := newTestController(qs, &fakeSubmitter{})
	if err := ctrl.Begin(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	if snap := ctrl.Snapshot(); snap.QuestionSet.Questions[0].CorrectAnswer != "" {
		t.Error("correct answers leaked before submission")
	}

	fillSheet(t, ctrl)
	if _, err := ctrl.Submit(context.Background()); err != nil {
		t.Fatal(err)
	}

	snap := ctrl.Snapshot()
	if snap.QuestionSet.Questions[0].CorrectAnswer != "4" {
		t.Error("correct answers not revealed after submission on a show_answers form")
	}
	if snap.Percentage == nil || *snap.Percentage != 40.0 {
		t.Errorf("percentage = %v, want 40.0", snap.Percentage)
	}
}

func waitForState(t *testing.T, ctrl *Controller, want model.SessionState) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if ctrl.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("state = %s, want %s", ctrl.State(), want)
}
