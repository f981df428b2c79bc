package postgres

import (
	"context"
	"database/sql"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
)

const eventColumns = `id, code, name, description, category, severity, requires_response, is_active, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (models.OnboardingEvent, error) {
	var ev models.OnboardingEvent
	err := row.Scan(&ev.ID, &ev.Code, &ev.Name, &ev.Description, &ev.Category,
		&ev.Severity, &ev.RequiresResponse, &ev.IsActive, &ev.CreatedAt)
	return ev, err
}

func (s *eventStore) List(ctx context.Context) ([]models.OnboardingEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM onboarding_events
		ORDER BY created_at`)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("events.list", err)
	}
	defer rows.Close()

	var out []models.OnboardingEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("events.list", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *eventStore) Get(ctx context.Context, id string) (*models.OnboardingEvent, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM onboarding_events
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("event", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("events.get", err)
	}
	return &ev, nil
}

func (s *eventStore) GetByCode(ctx context.Context, code string) (*models.OnboardingEvent, error) {
	ev, err := scanEvent(s.db.QueryRowContext(ctx, `
		SELECT `+eventColumns+`
		FROM onboarding_events
		WHERE code = $1`, code))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("event", code)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("events.get_by_code", err)
	}
	return &ev, nil
}

func (s *eventStore) Create(ctx context.Context, ev models.OnboardingEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO onboarding_events (id, code, name, description, category, severity, requires_response, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ev.ID, ev.Code, ev.Name, ev.Description, ev.Category, ev.Severity,
		ev.RequiresResponse, ev.IsActive, ev.CreatedAt)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("events.create", err)
	}
	return nil
}

func (s *eventStore) Update(ctx context.Context, ev models.OnboardingEvent) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE onboarding_events
		SET name = $2, description = $3, category = $4, severity = $5, requires_response = $6, is_active = $7
		WHERE id = $1`,
		ev.ID, ev.Name, ev.Description, ev.Category, ev.Severity, ev.RequiresResponse, ev.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("events.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("event", ev.ID)
	}
	return nil
}

func (s *eventStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM onboarding_events WHERE id = $1`, id)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("events.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("event", id)
	}
	return nil
}
