// Package store defines the repository contracts the engine runs against.
// Implementations must be safe for concurrent use; MessageLogStore.Transition
// must apply its mutation atomically per row.
package store

import (
	"context"
	"time"

	"onboarding-hub/internal/models"
)

// LogCursor is a keyset position in the (sentAt, id) ordering of message
// logs. The zero value starts from the beginning.
type LogCursor struct {
	SentAt time.Time
	ID     string
}

// Before reports whether the cursor sorts strictly before the log, i.e.
// whether a scan positioned at the cursor still has the log ahead of it.
func (c LogCursor) Before(l models.MessageLog) bool {
	if !l.SentAt.Equal(c.SentAt) {
		return l.SentAt.After(c.SentAt)
	}
	return l.ID > c.ID
}

type ChannelStore interface {
	List(ctx context.Context) ([]models.Channel, error)
	Get(ctx context.Context, id string) (*models.Channel, error)
	Create(ctx context.Context, ch models.Channel) error
	Update(ctx context.Context, ch models.Channel) error
}

type EventStore interface {
	List(ctx context.Context) ([]models.OnboardingEvent, error)
	Get(ctx context.Context, id string) (*models.OnboardingEvent, error)
	GetByCode(ctx context.Context, code string) (*models.OnboardingEvent, error)
	Create(ctx context.Context, ev models.OnboardingEvent) error
	Update(ctx context.Context, ev models.OnboardingEvent) error
	Delete(ctx context.Context, id string) error
}

type RoutingRuleStore interface {
	List(ctx context.Context) ([]models.RoutingRule, error)
	// ListForEvent returns the event's rules in insertion order; the resolver
	// relies on that order to break priority ties deterministically.
	ListForEvent(ctx context.Context, eventID string) ([]models.RoutingRule, error)
	Get(ctx context.Context, id string) (*models.RoutingRule, error)
	Create(ctx context.Context, rule models.RoutingRule) error
	Update(ctx context.Context, rule models.RoutingRule) error
	Delete(ctx context.Context, id string) error
}

type EscalationRuleStore interface {
	List(ctx context.Context) ([]models.EscalationRule, error)
	ListForEvent(ctx context.Context, eventID string) ([]models.EscalationRule, error)
	// Find returns the active edge out of fromChannelID for the event, nil
	// when no such edge exists.
	Find(ctx context.Context, eventID, fromChannelID string) (*models.EscalationRule, error)
	Get(ctx context.Context, id string) (*models.EscalationRule, error)
	Create(ctx context.Context, rule models.EscalationRule) error
	Update(ctx context.Context, rule models.EscalationRule) error
	Delete(ctx context.Context, id string) error
}

type TemplateStore interface {
	List(ctx context.Context) ([]models.MessageTemplate, error)
	Get(ctx context.Context, id string) (*models.MessageTemplate, error)
	// FindForKey returns all active templates matching the lookup key.
	FindForKey(ctx context.Context, eventID, channelID string, rt models.RecipientType) ([]models.MessageTemplate, error)
	Create(ctx context.Context, tpl models.MessageTemplate) error
	Update(ctx context.Context, tpl models.MessageTemplate) error
	Delete(ctx context.Context, id string) error
}

type RoleStore interface {
	List(ctx context.Context) ([]models.StaffRole, error)
	Get(ctx context.Context, id string) (*models.StaffRole, error)
	Create(ctx context.Context, role models.StaffRole) error
	Update(ctx context.Context, role models.StaffRole) error
}

type StaffStore interface {
	List(ctx context.Context) ([]models.StaffMember, error)
	Get(ctx context.Context, id string) (*models.StaffMember, error)
	// ListActiveByRoles returns active members holding any of the roles,
	// deduplicated, in roster order.
	ListActiveByRoles(ctx context.Context, roleIDs []string) ([]models.StaffMember, error)
	Create(ctx context.Context, m models.StaffMember) error
	Update(ctx context.Context, m models.StaffMember) error
}

type ApplicationStore interface {
	List(ctx context.Context) ([]models.Application, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	Update(ctx context.Context, app models.Application) error
}

type MessageLogStore interface {
	Create(ctx context.Context, log *models.MessageLog) error
	Get(ctx context.Context, id string) (*models.MessageLog, error)
	List(ctx context.Context) ([]models.MessageLog, error)
	ListForApplication(ctx context.Context, applicationID string) ([]models.MessageLog, error)
	// ListByStatus returns logs currently in any of the given statuses,
	// ordered by (sentAt, id) ascending, starting strictly after the
	// cursor, capped at limit (0 = no cap). Callers page through the full
	// set by feeding the last row of one batch back as the next cursor.
	ListByStatus(ctx context.Context, statuses []models.MessageStatus, after LogCursor, limit int) ([]models.MessageLog, error)
	// ListSuccessors returns logs escalated directly from the given log.
	ListSuccessors(ctx context.Context, id string) ([]models.MessageLog, error)
	// Transition loads the row, applies mutate under a per-row lock and
	// persists the result. mutate returning an error aborts without writing.
	Transition(ctx context.Context, id string, mutate func(*models.MessageLog) error) (*models.MessageLog, error)
}

// Store aggregates every repository the hub uses.
type Store interface {
	Channels() ChannelStore
	Events() EventStore
	RoutingRules() RoutingRuleStore
	EscalationRules() EscalationRuleStore
	Templates() TemplateStore
	Roles() RoleStore
	Staff() StaffStore
	Applications() ApplicationStore
	MessageLogs() MessageLogStore
}
