package postgres

import (
	"context"
	"database/sql"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"

	"github.com/lib/pq"
)

const roleColumns = `id, name, description, permissions, is_active`

func scanRole(row interface{ Scan(...interface{}) error }) (models.StaffRole, error) {
	var r models.StaffRole
	err := row.Scan(&r.ID, &r.Name, &r.Description, pq.Array(&r.Permissions), &r.IsActive)
	return r, err
}

func (s *roleStore) List(ctx context.Context) ([]models.StaffRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+roleColumns+`
		FROM staff_roles
		ORDER BY created_at`)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("roles.list", err)
	}
	defer rows.Close()

	var out []models.StaffRole
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("roles.list", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *roleStore) Get(ctx context.Context, id string) (*models.StaffRole, error) {
	r, err := scanRole(s.db.QueryRowContext(ctx, `
		SELECT `+roleColumns+`
		FROM staff_roles
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("role", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("roles.get", err)
	}
	return &r, nil
}

func (s *roleStore) Create(ctx context.Context, role models.StaffRole) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_roles (id, name, description, permissions, is_active)
		VALUES ($1, $2, $3, $4, $5)`,
		role.ID, role.Name, role.Description, pq.Array(role.Permissions), role.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("roles.create", err)
	}
	return nil
}

func (s *roleStore) Update(ctx context.Context, role models.StaffRole) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff_roles
		SET name = $2, description = $3, permissions = $4, is_active = $5
		WHERE id = $1`,
		role.ID, role.Name, role.Description, pq.Array(role.Permissions), role.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("roles.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("role", role.ID)
	}
	return nil
}

const staffColumns = `id, name, email, phone, role_ids, contact_preferences, is_active`

func scanStaff(row interface{ Scan(...interface{}) error }) (models.StaffMember, error) {
	var m models.StaffMember
	var prefs []string
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Phone,
		pq.Array(&m.RoleIDs), pq.Array(&prefs), &m.IsActive)
	for _, p := range prefs {
		m.ContactPreferences = append(m.ContactPreferences, models.ChannelType(p))
	}
	return m, err
}

func channelTypeStrings(prefs []models.ChannelType) []string {
	out := make([]string, len(prefs))
	for i, p := range prefs {
		out[i] = string(p)
	}
	return out
}

func (s *staffStore) List(ctx context.Context) ([]models.StaffMember, error) {
	return s.list(ctx, `
		SELECT `+staffColumns+`
		FROM staff_members
		ORDER BY created_at`)
}

// ListActiveByRoles relies on Postgres array overlap; one row per member
// regardless of how many of the roles they hold.
func (s *staffStore) ListActiveByRoles(ctx context.Context, roleIDs []string) ([]models.StaffMember, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	return s.list(ctx, `
		SELECT `+staffColumns+`
		FROM staff_members
		WHERE is_active AND role_ids && $1
		ORDER BY created_at`, pq.Array(roleIDs))
}

func (s *staffStore) list(ctx context.Context, query string, args ...interface{}) ([]models.StaffMember, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("staff.list", err)
	}
	defer rows.Close()

	var out []models.StaffMember
	for rows.Next() {
		m, err := scanStaff(rows)
		if err != nil {
			return nil, hberrors.NewQueryExecutionFailedError("staff.list", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *staffStore) Get(ctx context.Context, id string) (*models.StaffMember, error) {
	m, err := scanStaff(s.db.QueryRowContext(ctx, `
		SELECT `+staffColumns+`
		FROM staff_members
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, hberrors.NewNotFoundError("staff member", id)
	}
	if err != nil {
		return nil, hberrors.NewQueryExecutionFailedError("staff.get", err)
	}
	return &m, nil
}

func (s *staffStore) Create(ctx context.Context, m models.StaffMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_members (id, name, email, phone, role_ids, contact_preferences, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.Name, m.Email, m.Phone, pq.Array(m.RoleIDs),
		pq.Array(channelTypeStrings(m.ContactPreferences)), m.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("staff.create", err)
	}
	return nil
}

func (s *staffStore) Update(ctx context.Context, m models.StaffMember) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff_members
		SET name = $2, email = $3, phone = $4, role_ids = $5, contact_preferences = $6, is_active = $7
		WHERE id = $1`,
		m.ID, m.Name, m.Email, m.Phone, pq.Array(m.RoleIDs),
		pq.Array(channelTypeStrings(m.ContactPreferences)), m.IsActive)
	if err != nil {
		return hberrors.NewQueryExecutionFailedError("staff.update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hberrors.NewNotFoundError("staff member", m.ID)
	}
	return nil
}
