package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gdhanush27/Form-Pulse/internal/config"
	"github.com/gdhanush27/Form-Pulse/internal/model"
)

const (
	AuditBatchSize    = 50
	AuditBatchTimeout = 2 * time.Second
	AuditPollTimeout  = 1 * time.Second
)

// AuditWorker persists submission audits and clears the answer mirrors
// of finished sessions. One row per (form, respondent); duplicate
// deliveries of the same audit are no-ops.
type AuditWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

func NewAuditWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AuditWorker {
	return &AuditWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "audit_worker").Logger(),
	}
}

func (w *AuditWorker) Start(ctx context.Context) {
	w.log.Info().Msg("AuditWorker started")

	batch := make([]*model.SubmissionAudit, 0, AuditBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= AuditBatchSize || time.Since(lastFlush) >= AuditBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, AuditPollTimeout, config.WorkerKey.SubmissionAuditQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var a model.SubmissionAudit
			if err := json.Unmarshal([]byte(item[1]), &a); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, &a)
		}
	}
}

func (w *AuditWorker) flushSafe(ctx context.Context, batch []*model.SubmissionAudit) {
	if len(batch) == 0 {
		return
	}

	if err := w.bulkInsertAudits(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk audit insert failed, using fallback")

		for _, a := range batch {
			if err := w.persistSingle(ctx, a); err != nil {
				w.log.Error().Err(err).Msg("persistSingle failed, requeueing")
				raw, _ := json.Marshal(a)
				w.rdb.RPush(ctx, config.WorkerKey.SubmissionAuditQueue, raw)
			}
		}
		return
	}

	// After durable audits the autosave mirrors are no longer needed.
	w.bulkClearAnswerMirrors(ctx, batch)
}

// bulkInsertAudits writes a batch in one UNNEST insert. The unique
// (form_name, respondent_email) constraint makes redelivery idempotent.
func (w *AuditWorker) bulkInsertAudits(ctx context.Context, batch []*model.SubmissionAudit) error {
	n := len(batch)

	forms := make([]string, 0, n)
	emails := make([]string, 0, n)
	earned := make([]int, 0, n)
	max := make([]int, 0, n)
	tabs := make([]int, 0, n)
	auto := make([]bool, 0, n)
	fullscreen := make([]bool, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, a := range batch {
		forms = append(forms, a.FormName)
		emails = append(emails, a.RespondentEmail)
		earned = append(earned, a.MarksEarned)
		max = append(max, a.MaxMarks)
		tabs = append(tabs, a.TabSwitches)
		auto = append(auto, a.AutoSubmitted)
		fullscreen = append(fullscreen, a.WasFullscreen)
		submittedAts = append(submittedAts, a.SubmittedAt)
	}

	query := `
		INSERT INTO submission_audit
			(form_name, respondent_email, marks_earned, max_marks,
			 tab_switches, auto_submitted, was_fullscreen, submitted_at)
		SELECT * FROM UNNEST(
			$1::text[],
			$2::text[],
			$3::int[],
			$4::int[],
			$5::int[],
			$6::bool[],
			$7::bool[],
			$8::timestamptz[]
		)
		ON CONFLICT (form_name, respondent_email) DO NOTHING
	`

	_, err := w.pool.Exec(ctx, query, forms, emails, earned, max, tabs, auto, fullscreen, submittedAts)
	return err
}

func (w *AuditWorker) bulkClearAnswerMirrors(ctx context.Context, batch []*model.SubmissionAudit) {
	pipe := w.rdb.Pipeline()

	for _, a := range batch {
		key := config.CacheKey.RespondentAnswersKey(a.FormName, a.RespondentEmail)
		pipe.Del(ctx, key)
	}

	_, _ = pipe.Exec(ctx)
}

func (w *AuditWorker) persistSingle(ctx context.Context, a *model.SubmissionAudit) error {
	_, err := w.pool.Exec(ctx,
		`INSERT INTO submission_audit
			(form_name, respondent_email, marks_earned, max_marks,
			 tab_switches, auto_submitted, was_fullscreen, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (form_name, respondent_email) DO NOTHING`,
		a.FormName, a.RespondentEmail, a.MarksEarned, a.MaxMarks,
		a.TabSwitches, a.AutoSubmitted, a.WasFullscreen, a.SubmittedAt,
	)
	return err
}
