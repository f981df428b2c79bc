package postgres

import (
	"context"
	"database/sql"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"

	"github.com/lib/pq"
)

const messageLogColumns = `id, application_id, event_id, channel_id, channel_type, recipient_type, recipient_id, recipient_name, recipient_contact, template_id, subject, body, status, provider_message_id, sent_at, delivered_at, opened_at, replied_at, failure_reason, escalated_from, escalation_attempt`

func scanMessageLog(row interface{ Scan(...interface{}) error }) (models.MessageLog, error) {
	var l models.MessageLog
	var templateID, providerMessageID, failureReason, escalatedFrom sql.NullString
	err := row.Scan(&l.ID, &l.ApplicationID, &l.EventID, &l.ChannelID, &l.ChannelType,
		&l.RecipientType, &l.RecipientID, &l.RecipientName, &l.RecipientContact,
		&templateID, &l.Subject, &l.Body, &l.Status, &providerMessageID,
		&l.SentAt, &l.DeliveredAt, &l.OpenedAt, &l.RepliedAt,
		&failureReason, &escalatedFrom, &l.EscalationAttempt)
	l.TemplateID = templateID.String
	l.ProviderMessageID = providerMessageID.String
	l.FailureReason = failureReason.String
	l.EscalatedFrom = escalatedFrom.String
	return l, err
}

func messageLogArgs(l *models.MessageLog) []interface{} {
	return []interface{}{
		l.ID, l.ApplicationID, l.EventID, l.ChannelID, l.ChannelType,
		l.RecipientType, l.RecipientID, l.RecipientName, l.RecipientContact,
		nullable(l.TemplateID), l.Subject, l.Body, l.Status, nullable(l.ProviderMessageID),
		l.SentAt, l.DeliveredAt, l.OpenedAt, l.RepliedAt,
		nullable(l.FailureReason), nullable(l.EscalatedFrom), l.EscalationAttempt,
	}
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *messageLogStore) Create(ctx context.Context, log *models.MessageLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_logs (`+messageLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		messageLogArgs(log)...)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("message_logs.create", err)
	}
	return nil
}

func (s *messageLogStore) Get(ctx context.Context, id string) (*models.MessageLog, error) {
	l, err := scanMessageLog(s.db.QueryRowContext(ctx, `
		SELECT `+messageLogColumns+`
		FROM message_logs
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("message log", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("message_logs.get", err)
	}
	return &l, nil
}

func (s *messageLogStore) List(ctx context.Context) ([]models.MessageLog, error) {
	return s.list(ctx, `
		SELECT `+messageLogColumns+`
		FROM message_logs
		ORDER BY sent_at DESC`)
}

func (s *messageLogStore) ListForApplication(ctx context.Context, applicationID string) ([]models.MessageLog, error) {
	return s.list(ctx, `
		SELECT `+messageLogColumns+`
		FROM message_logs
		WHERE application_id = $1
		ORDER BY sent_at DESC`, applicationID)
}

func (s *messageLogStore) ListByStatus(ctx context.Context, statuses []models.MessageStatus, after store.LogCursor, limit int) ([]models.MessageLog, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	vals := make([]string, len(statuses))
	for i, st := range statuses {
		vals[i] = string(st)
	}
	// Keyset pagination: (sent_at, id) row comparison skips everything at or
	// before the cursor. The zero cursor compares below every real row.
	query := `
		SELECT ` + messageLogColumns + `
		FROM message_logs
		WHERE status = ANY($1) AND (sent_at, id) > ($2, $3)
		ORDER BY sent_at, id`
	if limit > 0 {
		return s.list(ctx, query+` LIMIT $4`, pq.Array(vals), after.SentAt, after.ID, limit)
	}
	return s.list(ctx, query, pq.Array(vals), after.SentAt, after.ID)
}

func (s *messageLogStore) ListSuccessors(ctx context.Context, id string) ([]models.MessageLog, error) {
	return s.list(ctx, `
		SELECT `+messageLogColumns+`
		FROM message_logs
		WHERE escalated_from = $1
		ORDER BY sent_at`, id)
}

func (s *messageLogStore) list(ctx context.Context, query string, args ...interface{}) ([]models.MessageLog, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("message_logs.list", err)
	}
	defer rows.Close()

	var out []models.MessageLog
	for rows.Next() {
		l, err := scanMessageLog(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("message_logs.list", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Transition applies mutate under SELECT ... FOR UPDATE so concurrent
// callbacks for the same row serialize instead of clobbering each other.
func (s *messageLogStore) Transition(ctx context.Context, id string, mutate func(*models.MessageLog) error) (*models.MessageLog, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("message_logs.transition", err)
	}
	defer tx.Rollback()

	l, err := scanMessageLog(tx.QueryRowContext(ctx, `
		SELECT `+messageLogColumns+`
		FROM message_logs
		WHERE id = $1
		FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("message log", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("message_logs.transition", err)
	}

	if err := mutate(&l); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE message_logs
		SET status = $2, provider_message_id = $3, delivered_at = $4, opened_at = $5,
		    replied_at = $6, failure_reason = $7
		WHERE id = $1`,
		l.ID, l.Status, nullable(l.ProviderMessageID),
		l.DeliveredAt, l.OpenedAt, l.RepliedAt, nullable(l.FailureReason))
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("message_logs.transition", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("message_logs.transition", err)
	}
	return &l, nil
}
