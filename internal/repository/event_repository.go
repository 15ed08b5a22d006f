package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gdhanush27/Form-Pulse/internal/model"
)

// EventRepository reads the durable proctoring and submission audit trail.
// Writes go through the background workers, never through here.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

// ListViolations retrieves violation events for a form, newest first.
func (r *EventRepository) ListViolations(ctx context.Context, formName string, limit, offset int) ([]model.ViolationEvent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM proctor_events WHERE form_name = $1`, formName,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT form_name, respondent_email, kind, violation_count, occurred_at
		 FROM proctor_events
		 WHERE form_name = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2 OFFSET $3`, formName, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []model.ViolationEvent
	for rows.Next() {
		var ev model.ViolationEvent
		var kind string
		if err := rows.Scan(&ev.FormName, &ev.RespondentEmail, &kind, &ev.Count, &ev.OccurredAt); err != nil {
			return nil, 0, err
		}
		ev.Kind = model.ViolationKind(kind)
		events = append(events, ev)
	}
	return events, total, rows.Err()
}

// ListSubmissions retrieves submission audits for a form, newest first.
func (r *EventRepository) ListSubmissions(ctx context.Context, formName string, limit, offset int) ([]model.SubmissionAudit, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM submission_audit WHERE form_name = $1`, formName,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT form_name, respondent_email, marks_earned, max_marks,
		        tab_switches, auto_submitted, was_fullscreen, submitted_at
		 FROM submission_audit
		 WHERE form_name = $1
		 ORDER BY submitted_at DESC
		 LIMIT $2 OFFSET $3`, formName, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var audits []model.SubmissionAudit
	for rows.Next() {
		var a model.SubmissionAudit
		if err := rows.Scan(&a.FormName, &a.RespondentEmail, &a.MarksEarned, &a.MaxMarks,
			&a.TabSwitches, &a.AutoSubmitted, &a.WasFullscreen, &a.SubmittedAt); err != nil {
			return nil, 0, err
		}
		audits = append(audits, a)
	}
	return audits, total, rows.Err()
}

// GetSubmission retrieves one respondent's audit row, or pgx.ErrNoRows.
func (r *EventRepository) GetSubmission(ctx context.Context, formName, email string) (*model.SubmissionAudit, error) {
	a := &model.SubmissionAudit{}
	err := r.pool.QueryRow(ctx,
		`SELECT form_name, respondent_email, marks_earned, max_marks,
		        tab_switches, auto_submitted, was_fullscreen, submitted_at
		 FROM submission_audit
		 WHERE form_name = $1 AND respondent_email = $2`, formName, email,
	).Scan(&a.FormName, &a.RespondentEmail, &a.MarksEarned, &a.MaxMarks,
		&a.TabSwitches, &a.AutoSubmitted, &a.WasFullscreen, &a.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
