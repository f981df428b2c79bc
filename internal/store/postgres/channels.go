package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
)

const channelColumns = `id, type, name, description, is_active, config`

func scanChannel(row interface{ Scan(...interface{}) error }) (models.Channel, error) {
	var ch models.Channel
	var config []byte
	err := row.Scan(&ch.ID, &ch.Type, &ch.Name, &ch.Description, &ch.IsActive, &config)
	if err != nil {
		return ch, err
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &ch.Config); err != nil {
			return ch, err
		}
	}
	return ch, nil
}

func (s *channelStore) List(ctx context.Context) ([]models.Channel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+channelColumns+`
		FROM channels
		ORDER BY created_at`)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("channels.list", err)
	}
	defer rows.Close()

	var out []models.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("channels.list", err)
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (s *channelStore) Get(ctx context.Context, id string) (*models.Channel, error) {
	ch, err := scanChannel(s.db.QueryRowContext(ctx, `
		SELECT `+channelColumns+`
		FROM channels
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("channel", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("channels.get", err)
	}
	return &ch, nil
}

func (s *channelStore) Create(ctx context.Context, ch models.Channel) error {
	config, err := json.Marshal(ch.Config)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO channels (id, type, name, description, is_active, config)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ch.ID, ch.Type, ch.Name, ch.Description, ch.IsActive, config)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("channels.create", err)
	}
	return nil
}

func (s *channelStore) Update(ctx context.Context, ch models.Channel) error {
	config, err := json.Marshal(ch.Config)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE channels
		SET type = $2, name = $3, description = $4, is_active = $5, config = $6
		WHERE id = $1`,
		ch.ID, ch.Type, ch.Name, ch.Description, ch.IsActive, config)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("channels.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("channel", ch.ID)
	}
	return nil
}
