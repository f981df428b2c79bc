// Package memory provides an in-memory Store used by tests and local demos.
// Unlike a shared singleton, every New call returns isolated state.
package memory

import (
	"context"
	"sort"
	"sync"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"
)

type Store struct {
	mu sync.RWMutex

	channels        []models.Channel
	events          []models.OnboardingEvent
	routingRules    []models.RoutingRule
	escalationRules []models.EscalationRule
	templates       []models.MessageTemplate
	roles           []models.StaffRole
	staff           []models.StaffMember
	applications    []models.Application
	messageLogs     []models.MessageLog
}

func New() *Store {
	return &Store{}
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

// --- Channels ---

type channelStore Store

func (s *channelStore) List(_ context.Context) ([]models.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Channel, len(s.channels))
	copy(out, s.channels)
	return out, nil
}

func (s *channelStore) Get(_ context.Context, id string) (*models.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.channels {
		if ch.ID == id {
			c := ch
			return &c, nil
		}
	}
	return nil, hberrors.NewNotFoundError("channel", id)
}

func (s *channelStore) Create(_ context.Context, ch models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, ch)
	return nil
}

func (s *channelStore) Update(_ context.Context, ch models.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.channels {
		if s.channels[i].ID == ch.ID {
			s.channels[i] = ch
			return nil
		}
	}
	return hberrors.NewNotFoundError("channel", ch.ID)
}

// --- Events ---

type eventStore Store

func (s *eventStore) List(_ context.Context) ([]models.OnboardingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.OnboardingEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

func (s *eventStore) Get(_ context.Context, id string) (*models.OnboardingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.ID == id {
			e := ev
			return &e, nil
		}
	}
	return nil, hberrors.NewNotFoundError("event", id)
}

func (s *eventStore) GetByCode(_ context.Context, code string) (*models.OnboardingEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.Code == code {
			e := ev
			return &e, nil
		}
	}
	return nil, hberrors.NewNotFoundError("event", code)
}

func (s *eventStore) Create(_ context.Context, ev models.OnboardingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *eventStore) Update(_ context.Context, ev models.OnboardingEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == ev.ID {
			s.events[i] = ev
			return nil
		}
	}
	return hberrors.NewNotFoundError("event", ev.ID)
}

func (s *eventStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return hberrors.NewNotFoundError("event", id)
}

// --- Routing rules ---

type routingRuleStore Store

func (s *routingRuleStore) List(_ context.Context) ([]models.RoutingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.RoutingRule, len(s.routingRules))
	copy(out, s.routingRules)
	return out, nil
}

func (s *routingRuleStore) ListForEvent(_ context.Context, eventID string) ([]models.RoutingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RoutingRule
	for _, r := range s.routingRules {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *routingRuleStore) Get(_ context.Context, id string) (*models.RoutingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.routingRules {
		if r.ID == id {
			rule := r
			return &rule, nil
		}
	}
	return nil, hberrors.NewNotFoundError("routing rule", id)
}

func (s *routingRuleStore) Create(_ context.Context, rule models.RoutingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routingRules = append(s.routingRules, rule)
	return nil
}

func (s *routingRuleStore) Update(_ context.Context, rule models.RoutingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routingRules {
		if s.routingRules[i].ID == rule.ID {
			s.routingRules[i] = rule
			return nil
		}
	}
	return hberrors.NewNotFoundError("routing rule", rule.ID)
}

func (s *routingRuleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.routingRules {
		if s.routingRules[i].ID == id {
			s.routingRules = append(s.routingRules[:i], s.routingRules[i+1:]...)
			return nil
		}
	}
	return hberrors.NewNotFoundError("routing rule", id)
}

// --- Escalation rules ---

type escalationRuleStore Store

func (s *escalationRuleStore) List(_ context.Context) ([]models.EscalationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EscalationRule, len(s.escalationRules))
	copy(out, s.escalationRules)
	return out, nil
}

func (s *escalationRuleStore) ListForEvent(_ context.Context, eventID string) ([]models.EscalationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.EscalationRule
	for _, r := range s.escalationRules {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *escalationRuleStore) Find(_ context.Context, eventID, fromChannelID string) (*models.EscalationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.escalationRules {
		if r.IsActive && r.EventID == eventID && r.FromChannelID == fromChannelID {
			rule := r
			return &rule, nil
		}
	}
	return nil, nil
}

func (s *escalationRuleStore) Get(_ context.Context, id string) (*models.EscalationRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.escalationRules {
		if r.ID == id {
			rule := r
			return &rule, nil
		}
	}
	return nil, hberrors.NewNotFoundError("escalation rule", id)
}

func (s *escalationRuleStore) Create(_ context.Context, rule models.EscalationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.escalationRules = append(s.escalationRules, rule)
	return nil
}

func (s *escalationRuleStore) Update(_ context.Context, rule models.EscalationRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.escalationRules {
		if s.escalationRules[i].ID == rule.ID {
			s.escalationRules[i] = rule
			return nil
		}
	}
	return hberrors.NewNotFoundError("escalation rule", rule.ID)
}

func (s *escalationRuleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.escalationRules {
		if s.escalationRules[i].ID == id {
			s.escalationRules = append(s.escalationRules[:i], s.escalationRules[i+1:]...)
			return nil
		}
	}
	return hberrors.NewNotFoundError("escalation rule", id)
}

// --- Templates ---

type templateStore Store

func (s *templateStore) List(_ context.Context) ([]models.MessageTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MessageTemplate, len(s.templates))
	copy(out, s.templates)
	return out, nil
}

func (s *templateStore) Get(_ context.Context, id string) (*models.MessageTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.ID == id {
			tpl := t
			return &tpl, nil
		}
	}
	return nil, hberrors.NewNotFoundError("template", id)
}

func (s *templateStore) FindForKey(_ context.Context, eventID, channelID string, rt models.RecipientType) ([]models.MessageTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MessageTemplate
	for _, t := range s.templates {
		if t.IsActive && t.EventID == eventID && t.ChannelID == channelID && t.RecipientType == rt {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *templateStore) Create(_ context.Context, tpl models.MessageTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates = append(s.templates, tpl)
	return nil
}

func (s *templateStore) Update(_ context.Context, tpl models.MessageTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == tpl.ID {
			s.templates[i] = tpl
			return nil
		}
	}
	return hberrors.NewNotFoundError("template", tpl.ID)
}

func (s *templateStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.templates {
		if s.templates[i].ID == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return nil
		}
	}
	return hberrors.NewNotFoundError("template", id)
}

// --- Roles ---

type roleStore Store

func (s *roleStore) List(_ context.Context) ([]models.StaffRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StaffRole, len(s.roles))
	copy(out, s.roles)
	return out, nil
}

func (s *roleStore) Get(_ context.Context, id string) (*models.StaffRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.ID == id {
			role := r
			return &role, nil
		}
	}
	return nil, hberrors.NewNotFoundError("role", id)
}

func (s *roleStore) Create(_ context.Context, role models.StaffRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles = append(s.roles, role)
	return nil
}

func (s *roleStore) Update(_ context.Context, role models.StaffRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.roles {
		if s.roles[i].ID == role.ID {
			s.roles[i] = role
			return nil
		}
	}
	return hberrors.NewNotFoundError("role", role.ID)
}

// --- Staff ---

type staffStore Store

func (s *staffStore) List(_ context.Context) ([]models.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.StaffMember, len(s.staff))
	copy(out, s.staff)
	return out, nil
}

func (s *staffStore) Get(_ context.Context, id string) (*models.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.staff {
		if m.ID == id {
			member := m
			return &member, nil
		}
	}
	return nil, hberrors.NewNotFoundError("staff member", id)
}

func (s *staffStore) ListActiveByRoles(_ context.Context, roleIDs []string) ([]models.StaffMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		wanted[id] = struct{}{}
	}

	var out []models.StaffMember
	for _, m := range s.staff {
		if !m.IsActive {
			continue
		}
		for _, roleID := range m.RoleIDs {
			if _, ok := wanted[roleID]; ok {
				out = append(out, m)
				break
			}
		}
	}
	return out, nil
}

func (s *staffStore) Create(_ context.Context, m models.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append(s.staff, m)
	return nil
}

func (s *staffStore) Update(_ context.Context, m models.StaffMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.staff {
		if s.staff[i].ID == m.ID {
			s.staff[i] = m
			return nil
		}
	}
	return hberrors.NewNotFoundError("staff member", m.ID)
}

// --- Applications ---

type applicationStore Store

func (s *applicationStore) List(_ context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Application, len(s.applications))
	copy(out, s.applications)
	return out, nil
}

func (s *applicationStore) Get(_ context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if a.ID == id {
			app := a
			return &app, nil
		}
	}
	return nil, hberrors.NewNotFoundError("application", id)
}

func (s *applicationStore) Update(_ context.Context, app models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.applications {
		if s.applications[i].ID == app.ID {
			s.applications[i] = app
			return nil
		}
	}
	return hberrors.NewNotFoundError("application", app.ID)
}

// Seed inserts an application directly; used by tests and demo fixtures.
func (s *Store) SeedApplication(app models.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = append(s.applications, app)
}

// --- Message logs ---

type messageLogStore Store

func (s *messageLogStore) Create(_ context.Context, log *models.MessageLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messageLogs = append(s.messageLogs, *log)
	return nil
}

func (s *messageLogStore) Get(_ context.Context, id string) (*models.MessageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.messageLogs {
		if l.ID == id {
			entry := l
			return &entry, nil
		}
	}
	return nil, hberrors.NewNotFoundError("message log", id)
}

func (s *messageLogStore) List(_ context.Context) ([]models.MessageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.MessageLog, len(s.messageLogs))
	copy(out, s.messageLogs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	return out, nil
}

func (s *messageLogStore) ListForApplication(_ context.Context, applicationID string) ([]models.MessageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MessageLog
	for _, l := range s.messageLogs {
		if l.ApplicationID == applicationID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SentAt.After(out[j].SentAt)
	})
	return out, nil
}

func (s *messageLogStore) ListByStatus(_ context.Context, statuses []models.MessageStatus, after store.LogCursor, limit int) ([]models.MessageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	match := make(map[models.MessageStatus]struct{}, len(statuses))
	for _, st := range statuses {
		match[st] = struct{}{}
	}

	var out []models.MessageLog
	for _, l := range s.messageLogs {
		if _, ok := match[l.Status]; !ok {
			continue
		}
		if !after.Before(l) {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.Before(out[j].SentAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *messageLogStore) ListSuccessors(_ context.Context, id string) ([]models.MessageLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.MessageLog
	for _, l := range s.messageLogs {
		if l.EscalatedFrom == id {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *messageLogStore) Transition(_ context.Context, id string, mutate func(*models.MessageLog) error) (*models.MessageLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messageLogs {
		if s.messageLogs[i].ID == id {
			updated := s.messageLogs[i]
			if err := mutate(&updated); err != nil {
				return nil, err
			}
			s.messageLogs[i] = updated
			result := updated
			return &result, nil
		}
	}
	return nil, hberrors.NewNotFoundError("message log", id)
}
