package postgres

import (
	"context"
	"database/sql"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"

	"github.com/lib/pq"
)

const routingRuleColumns = `id, event_id, channel_id, recipient_type, priority, staff_role_ids, wait_days_before_escalation, escalation_channel_id, is_active`

func scanRoutingRule(row interface{ Scan(...interface{}) error }) (models.RoutingRule, error) {
	var r models.RoutingRule
	var escalationChannelID sql.NullString
	err := row.Scan(&r.ID, &r.EventID, &r.ChannelID, &r.RecipientType, &r.Priority,
		pq.Array(&r.StaffRoleIDs), &r.WaitDaysBeforeEscalation, &escalationChannelID, &r.IsActive)
	r.EscalationChannelID = escalationChannelID.String
	return r, err
}

func (s *routingRuleStore) List(ctx context.Context) ([]models.RoutingRule, error) {
	return s.list(ctx, `
		SELECT `+routingRuleColumns+`
		FROM routing_rules
		ORDER BY created_at`)
}

func (s *routingRuleStore) ListForEvent(ctx context.Context, eventID string) ([]models.RoutingRule, error) {
	return s.list(ctx, `
		SELECT `+routingRuleColumns+`
		FROM routing_rules
		WHERE event_id = $1
		ORDER BY created_at`, eventID)
}

func (s *routingRuleStore) list(ctx context.Context, query string, args ...interface{}) ([]models.RoutingRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("routing_rules.list", err)
	}
	defer rows.Close()

	var out []models.RoutingRule
	for rows.Next() {
		r, err := scanRoutingRule(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("routing_rules.list", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *routingRuleStore) Get(ctx context.Context, id string) (*models.RoutingRule, error) {
	r, err := scanRoutingRule(s.db.QueryRowContext(ctx, `
		SELECT `+routingRuleColumns+`
		FROM routing_rules
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("routing rule", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("routing_rules.get", err)
	}
	return &r, nil
}

func (s *routingRuleStore) Create(ctx context.Context, rule models.RoutingRule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routing_rules (id, event_id, channel_id, recipient_type, priority, staff_role_ids, wait_days_before_escalation, escalation_channel_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9)`,
		rule.ID, rule.EventID, rule.ChannelID, rule.RecipientType, rule.Priority,
		pq.Array(rule.StaffRoleIDs), rule.WaitDaysBeforeEscalation, rule.EscalationChannelID, rule.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("routing_rules.create", err)
	}
	return nil
}

func (s *routingRuleStore) Update(ctx context.Context, rule models.RoutingRule) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE routing_rules
		SET channel_id = $2, recipient_type = $3, priority = $4, staff_role_ids = $5,
		    wait_days_before_escalation = $6, escalation_channel_id = NULLIF($7, ''), is_active = $8
		WHERE id = $1`,
		rule.ID, rule.ChannelID, rule.RecipientType, rule.Priority, pq.Array(rule.StaffRoleIDs),
		rule.WaitDaysBeforeEscalation, rule.EscalationChannelID, rule.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("routing_rules.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("routing rule", rule.ID)
	}
	return nil
}

func (s *routingRuleStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM routing_rules WHERE id = $1`, id)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("routing_rules.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("routing rule", id)
	}
	return nil
}

const escalationRuleColumns = `id, event_id, from_channel_id, to_channel_id, wait_days, max_attempts, is_active`

func scanEscalationRule(row interface{ Scan(...interface{}) error }) (models.EscalationRule, error) {
	var r models.EscalationRule
	err := row.Scan(&r.ID, &r.EventID, &r.FromChannelID, &r.ToChannelID,
		&r.WaitDays, &r.MaxAttempts, &r.IsActive)
	return r, err
}

func (s *escalationRuleStore) List(ctx context.Context) ([]models.EscalationRule, error) {
	return s.list(ctx, `
		SELECT `+escalationRuleColumns+`
		FROM escalation_rules
		ORDER BY created_at`)
}

func (s *escalationRuleStore) ListForEvent(ctx context.Context, eventID string) ([]models.EscalationRule, error) {
	return s.list(ctx, `
		SELECT `+escalationRuleColumns+`
		FROM escalation_rules
		WHERE event_id = $1
		ORDER BY created_at`, eventID)
}

func (s *escalationRuleStore) list(ctx context.Context, query string, args ...interface{}) ([]models.EscalationRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("escalation_rules.list", err)
	}
	defer rows.Close()

	var out []models.EscalationRule
	for rows.Next() {
		r, err := scanEscalationRule(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("escalation_rules.list", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *escalationRuleStore) Find(ctx context.Context, eventID, fromChannelID string) (*models.EscalationRule, error) {
	r, err := scanEscalationRule(s.db.QueryRowContext(ctx, `
		SELECT `+escalationRuleColumns+`
		FROM escalation_rules
		WHERE event_id = $1 AND from_channel_id = $2 AND is_active
		ORDER BY created_at
		LIMIT 1`, eventID, fromChannelID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("escalation_rules.find", err)
	}
	return &r, nil
}

func (s *escalationRuleStore) Get(ctx context.Context, id string) (*models.EscalationRule, error) {
	r, err := scanEscalationRule(s.db.QueryRowContext(ctx, `
		SELECT `+escalationRuleColumns+`
		FROM escalation_rules
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("escalation rule", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("escalation_rules.get", err)
	}
	return &r, nil
}

func (s *escalationRuleStore) Create(ctx context.Context, rule models.EscalationRule) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO escalation_rules (id, event_id, from_channel_id, to_channel_id, wait_days, max_attempts, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rule.ID, rule.EventID, rule.FromChannelID, rule.ToChannelID,
		rule.WaitDays, rule.MaxAttempts, rule.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("escalation_rules.create", err)
	}
	return nil
}

func (s *escalationRuleStore) Update(ctx context.Context, rule models.EscalationRule) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE escalation_rules
		SET from_channel_id = $2, to_channel_id = $3, wait_days = $4, max_attempts = $5, is_active = $6
		WHERE id = $1`,
		rule.ID, rule.FromChannelID, rule.ToChannelID, rule.WaitDays, rule.MaxAttempts, rule.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("escalation_rules.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("escalation rule", rule.ID)
	}
	return nil
}

func (s *escalationRuleStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM escalation_rules WHERE id = $1`, id)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("escalation_rules.delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("escalation rule", id)
	}
	return nil
}
