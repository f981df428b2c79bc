// Package postgres implements the hub's repositories on PostgreSQL with
// database/sql and lib/pq. List/array columns use text[], loosely structured
// maps use jsonb.
package postgres

import (
	"database/sql"

	"onboarding-hub/internal/store"
)

// Store implements store.Store on a single *sql.DB.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Channels() store.ChannelStore               { return (*channelStore)(s) }
func (s *Store) Events() store.EventStore                   { return (*eventStore)(s) }
func (s *Store) RoutingRules() store.RoutingRuleStore       { return (*routingRuleStore)(s) }
func (s *Store) EscalationRules() store.EscalationRuleStore { return (*escalationRuleStore)(s) }
func (s *Store) Templates() store.TemplateStore             { return (*templateStore)(s) }
func (s *Store) Roles() store.RoleStore                     { return (*roleStore)(s) }
func (s *Store) Staff() store.StaffStore                    { return (*staffStore)(s) }
func (s *Store) Applications() store.ApplicationStore       { return (*applicationStore)(s) }
func (s *Store) MessageLogs() store.MessageLogStore         { return (*messageLogStore)(s) }

type channelStore Store
type eventStore Store
type routingRuleStore Store
type escalationRuleStore Store
type templateStore Store
type roleStore Store
type staffStore Store
type applicationStore Store
type messageLogStore Store
