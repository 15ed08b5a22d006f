package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/config"
	"github.com/gdhanush27/Form-Pulse/internal/model"
	"github.com/gdhanush27/Form-Pulse/internal/session"
	"github.com/gdhanush27/Form-Pulse/internal/upstream"
)

// SessionService owns the live session registry and glues the session
// core to the upstream platform, the Redis live-state mirror, and the
// audit queues.
type SessionService struct {
	cfg      *config.Config
	registry *session.Registry
	client   *upstream.Client
	rdb      *redis.Client
	log      zerolog.Logger

	// Upstream credentials are carried per session so a Begin retry
	// after re-authentication uses the fresh token.
	tokens sync.Map // sessionKey → *tokenHolder
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	cfg *config.Config,
	registry *session.Registry,
	client *upstream.Client,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	s := &SessionService{
		cfg:      cfg,
		registry: registry,
		client:   client,
		rdb:      rdb,
		log:      log.With().Str("component", "session_service").Logger(),
	}
	// Credentials live exactly as long as their session.
	registry.SetEvictionHook(s.dropToken)
	return s
}

// dropToken releases the upstream credential of an evicted session.
func (s *SessionService) dropToken(ctrl *session.Controller) {
	s.tokens.Delete(sessionKey(ctrl.FormName(), ctrl.Respondent().Email))
}

// tokenHolder is a mutable upstream credential shared by the adapters
// of one session.
type tokenHolder struct {
	mu    sync.Mutex
	token string
}

func (h *tokenHolder) set(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

func (h *tokenHolder) get() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func sessionKey(formName, email string) string {
	return formName + "|" + email
}

func (s *SessionService) holder(formName, email, token string) *tokenHolder {
	actual, _ := s.tokens.LoadOrStore(sessionKey(formName, email), &tokenHolder{})
	h := actual.(*tokenHolder)
	if token != "" {
		h.set(token)
	}
	return h
}

// Join returns the live session for a respondent on a form, creating
// and starting one on first contact. Rejoining an existing session is
// idempotent: answers and the violation count survive reconnects.
func (s *SessionService) Join(ctx context.Context, formName string, claims *Claims, fullscreenActive bool) (*session.Controller, error) {
	respondent := model.Respondent{Name: claims.Name, Email: claims.Email}
	h := s.holder(formName, claims.Email, claims.UpstreamToken)

	ctrl, created := s.registry.GetOrCreate(formName, claims.Email, func() *session.Controller {
		return session.NewController(formName, respondent, session.Deps{
			Fetcher:   &cachedFetcher{svc: s, holder: h},
			Submitter: &tokenSubmitter{svc: s, holder: h},
			Recorder:  &queueRecorder{rdb: s.rdb, log: s.log},
			Log:       s.log,
		})
	})

	if err := ctrl.Begin(ctx, fullscreenActive); err != nil {
		// A form that does not exist or cannot be attempted leaves no
		// session behind; auth and transport failures keep it so the
		// respondent can retry.
		var verr *model.ValidationError
		if errors.Is(err, model.ErrNotFound) || errors.As(err, &verr) {
			s.Remove(formName, claims.Email)
		}
		return nil, err
	}

	if created {
		s.hydrate(ctx, ctrl, formName, claims.Email)
	}
	return ctrl, nil
}

// LiveCount reports the number of sessions currently held in memory.
func (s *SessionService) LiveCount() int {
	return s.registry.Len()
}

// Get returns an existing live session, or ErrNotFound.
func (s *SessionService) Get(formName, email string) (*session.Controller, error) {
	ctrl, ok := s.registry.Get(formName, email)
	if !ok {
		return nil, model.ErrNotFound
	}
	return ctrl, nil
}

// Remove drops a live session and its upstream credential.
func (s *SessionService) Remove(formName, email string) {
	s.registry.Remove(formName, email)
	s.tokens.Delete(sessionKey(formName, email))
}

// Answer records one answer and mirrors it to Redis so a process
// restart can rehydrate the sheet. The mirror is best effort.
func (s *SessionService) Answer(ctx context.Context, ctrl *session.Controller, index int, value string) error {
	if err := ctrl.SetAnswer(index, value); err != nil {
		return err
	}

	key := config.CacheKey.RespondentAnswersKey(ctrl.FormName(), ctrl.Respondent().Email)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(index), value)
	pipe.Expire(ctx, key, s.cfg.SessionRetention+time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn().Err(err).Str("form", ctrl.FormName()).Msg("Answer mirror write failed")
	}
	return nil
}

// Submit finalizes a session on the respondent's request.
func (s *SessionService) Submit(ctx context.Context, ctrl *session.Controller, claims *Claims) (*model.SubmissionResult, error) {
	s.holder(ctrl.FormName(), claims.Email, claims.UpstreamToken)
	return ctrl.Submit(ctx)
}

// hydrate restores autosaved answers from the Redis mirror into a
// freshly created session.
func (s *SessionService) hydrate(ctx context.Context, ctrl *session.Controller, formName, email string) {
	key := config.CacheKey.RespondentAnswersKey(formName, email)
	mirror, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		s.log.Warn().Err(err).Str("form", formName).Msg("Answer mirror read failed")
		return
	}
	if len(mirror) > 0 {
		ctrl.HydrateAnswers(mirror)
		s.log.Info().Str("form", formName).Str("respondent", email).
			Int("answers", len(mirror)).Msg("Session rehydrated from autosave mirror")
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Upstream adapters
// ────────────────────────────────────────────────────────────────────────────

// cachedFetcher serves unprotected form payloads from Redis and falls
// through to the platform. Protected forms always hit upstream so the
// platform can enforce access per respondent.
type cachedFetcher struct {
	svc    *SessionService
	holder *tokenHolder
}

func (f *cachedFetcher) FetchForm(ctx context.Context, formName string) (*model.QuestionSet, error) {
	s := f.svc
	key := config.CacheKey.FormPayloadKey(formName)

	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		qs, perr := model.ParseQuestionSet(raw)
		if perr == nil && !qs.Protected {
			return qs, nil
		}
		// Stale or protected payloads are dropped from the cache.
		s.rdb.Del(ctx, key)
	}

	qs, err := s.client.FetchForm(ctx, formName, f.holder.get())
	if err != nil {
		return nil, err
	}

	if !qs.Protected {
		if raw, merr := json.Marshal(qs); merr == nil {
			if serr := s.rdb.Set(ctx, key, raw, s.cfg.FormCacheTTL).Err(); serr != nil {
				s.log.Warn().Err(serr).Str("form", formName).Msg("Form cache write failed")
			}
		}
	}
	return qs, nil
}

// tokenSubmitter forwards submissions with the session's current
// upstream credential.
type tokenSubmitter struct {
	svc    *SessionService
	holder *tokenHolder
}

func (t *tokenSubmitter) Submit(ctx context.Context, req *session.SubmitRequest) (*session.SubmitOutcome, error) {
	return t.svc.client.Submit(ctx, req, t.holder.get())
}

// queueRecorder pushes audit records onto the Redis worker queues.
// Persistence must never block or fail a live session, so errors are
// only logged.
type queueRecorder struct {
	rdb *redis.Client
	log zerolog.Logger
}

func (r *queueRecorder) RecordViolation(ev model.ViolationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(ev)
	if err != nil {
		r.log.Error().Err(err).Msg("Encode violation event")
		return
	}
	if err := r.rdb.RPush(ctx, config.WorkerKey.ProctorEventsQueue, payload).Err(); err != nil {
		r.log.Warn().Err(err).Str("form", ev.FormName).Msg("Enqueue violation event failed")
	}
}

func (r *queueRecorder) RecordSubmission(a model.SubmissionAudit) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(a)
	if err != nil {
		r.log.Error().Err(err).Msg("Encode submission audit")
		return
	}
	if err := r.rdb.RPush(ctx, config.WorkerKey.SubmissionAuditQueue, payload).Err(); err != nil {
		r.log.Warn().Err(err).Str("form", a.FormName).Msg("Enqueue submission audit failed")
	}
}
