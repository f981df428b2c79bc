package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
)

const applicationColumns = `id, applicant_name, applicant_email, applicant_phone, type, status, submitted_at, last_updated_at, assigned_staff_id, metadata`

func scanApplication(row interface{ Scan(...interface{}) error }) (models.Application, error) {
	var a models.Application
	var assignedStaffID sql.NullString
	var metadata []byte
	err := row.Scan(&a.ID, &a.ApplicantName, &a.ApplicantEmail, &a.ApplicantPhone,
		&a.Type, &a.Status, &a.SubmittedAt, &a.LastUpdatedAt, &assignedStaffID, &metadata)
	if err != nil {
		return a, err
	}
	a.AssignedStaffID = assignedStaffID.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &a.Metadata); err != nil {
			return a, err
		}
	}
	return a, nil
}

func (s *applicationStore) List(ctx context.Context) ([]models.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		ORDER BY submitted_at`)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("applications.list", err)
	}
	defer rows.Close()

	var out []models.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("applications.list", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *applicationStore) Get(ctx context.Context, id string) (*models.Application, error) {
	a, err := scanApplication(s.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("application", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("applications.get", err)
	}
	return &a, nil
}

func (s *applicationStore) Update(ctx context.Context, app models.Application) error {
	metadata, err := json.Marshal(app.Metadata)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET applicant_name = $2, applicant_email = $3, applicant_phone = $4, type = $5,
		    status = $6, last_updated_at = $7, assigned_staff_id = NULLIF($8, ''), metadata = $9
		WHERE id = $1`,
		app.ID, app.ApplicantName, app.ApplicantEmail, app.ApplicantPhone, app.Type,
		app.Status, app.LastUpdatedAt, app.AssignedStaffID, metadata)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("applications.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("application", app.ID)
	}
	return nil
}
