package postgres

import (
	"context"
	"database/sql"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"

	"github.com/lib/pq"
)

const templateColumns = `id, event_id, channel_id, recipient_type, subject, body, variables, is_active, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (models.MessageTemplate, error) {
	var t models.MessageTemplate
	err := row.Scan(&t.ID, &t.EventID, &t.ChannelID, &t.RecipientType, &t.Subject,
		&t.Body, pq.Array(&t.Variables), &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (s *templateStore) List(ctx context.Context) ([]models.MessageTemplate, error) {
	return s.list(ctx, `
		SELECT `+templateColumns+`
		FROM message_templates
		ORDER BY created_at`)
}

func (s *templateStore) FindForKey(ctx context.Context, eventID, channelID string, rt models.RecipientType) ([]models.MessageTemplate, error) {
	return s.list(ctx, `
		SELECT `+templateColumns+`
		FROM message_templates
		WHERE event_id = $1 AND channel_id = $2 AND recipient_type = $3 AND is_active
		ORDER BY created_at`, eventID, channelID, rt)
}

func (s *templateStore) list(ctx context.Context, query string, args ...interface{}) ([]models.MessageTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("templates.list", err)
	}
	defer rows.Close()

	var out []models.MessageTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("templates.list", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *templateStore) Get(ctx context.Context, id string) (*models.MessageTemplate, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, `
		SELECT `+templateColumns+`
		FROM message_templates
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("template", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("templates.get", err)
	}
	return &t, nil
}

func (s *templateStore) Create(ctx context.Context, tpl models.MessageTemplate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO message_templates (id, event_id, channel_id, recipient_type, subject, body, variables, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		tpl.ID, tpl.EventID, tpl.ChannelID, tpl.RecipientType, tpl.Subject, tpl.Body,
		pq.Array(tpl.Variables), tpl.IsActive, tpl.CreatedAt, tpl.UpdatedAt)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("templates.create", err)
	}
	return nil
}

func (s *templateStore) Update(ctx context.Context, tpl models.MessageTemplate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE message_templates
		SET subject = $2, body = $3, variables = $4, is_active = $5, updated_at = $6
		WHERE id = $1`,
		tpl.ID, tpl.Subject, tpl.Body, pq.Array(tpl.Variables), tpl.IsActive, tpl.UpdatedAt)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("templates.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("template", tpl.ID)
	}
	return nil
}

func (s *templateStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM message_templates WHERE id = $1`, id)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("templates.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("template", id)
	}
	return nil
}
