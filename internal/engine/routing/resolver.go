// Package routing computes the ordered set of delivery targets for a fired
// event.
package routing

import (
	"context"
	"sort"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"
)

type Resolver struct {
	store  store.Store
	logger logger.Logger
}

func NewResolver(st store.Store, log logger.Logger) *Resolver {
	return &Resolver{
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "routing-resolver"}),
	}
}

// Resolve returns the targets for an event firing on an application, sorted
// by ascending priority with ties kept in rule insertion order. An empty
// result means no notification is due; it is not an error. Targets whose
// recipient cannot be contacted on the rule's channel are skipped with a
// configuration warning.
func (r *Resolver) Resolve(ctx context.Context, eventID, applicationID string) ([]models.Target, error) {
	rules, err := r.store.RoutingRules().ListForEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	app, err := r.store.Applications().Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	var targets []models.Target
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		channel, err := r.store.Channels().Get(ctx, rule.ChannelID)
		if err != nil {
			r.warnSkip(rule, hberrors.NewNotFoundError("channel", rule.ChannelID))
			continue
		}
		if !channel.IsActive {
			r.warnSkip(rule, hberrors.NewChannelInactiveError(channel.ID))
			continue
		}

		switch rule.RecipientType {
		case models.RecipientCustomer:
			contact, ok := app.ContactFor(channel.Type)
			if !ok {
				r.warnSkip(rule, hberrors.NewRecipientUnresolvableError(app.ID, string(channel.Type)))
				continue
			}
			targets = append(targets, models.Target{
				ChannelID:        channel.ID,
				ChannelType:      channel.Type,
				RecipientType:    models.RecipientCustomer,
				RecipientID:      app.ID,
				RecipientName:    app.ApplicantName,
				RecipientContact: contact,
				Priority:         rule.Priority,
				RuleID:           rule.ID,
			})

		case models.RecipientInternalStaff:
			// A staff rule with no roles has no recipients.
			if len(rule.StaffRoleIDs) == 0 {
				continue
			}
			members, err := r.store.Staff().ListActiveByRoles(ctx, rule.StaffRoleIDs)
			if err != nil {
				return nil, err
			}
			targets = append(targets, fanOut(members, *channel, rule)...)
		}
	}

	sort.SliceStable(targets, func(i, j int) bool {
		return targets[i].Priority < targets[j].Priority
	})

	return targets, nil
}

// fanOut expands a staff routing rule into one target per member who has
// opted into the rule's channel, deduplicated per (member, channel).
func fanOut(members []models.StaffMember, channel models.Channel, rule models.RoutingRule) []models.Target {
	seen := make(map[string]struct{}, len(members))
	var out []models.Target
	for _, m := range members {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}

		contact, ok := m.ContactFor(channel.Type)
		if !ok {
			// Not opted in, or no address on file. Never force a channel the
			// member didn't choose.
			continue
		}
		out = append(out, models.Target{
			ChannelID:        channel.ID,
			ChannelType:      channel.Type,
			RecipientType:    models.RecipientInternalStaff,
			RecipientID:      m.ID,
			RecipientName:    m.Name,
			RecipientContact: contact,
			Priority:         rule.Priority,
			RuleID:           rule.ID,
		})
	}
	return out
}

func (r *Resolver) warnSkip(rule models.RoutingRule, err error) {
	r.logger.Warn("routing rule skipped", map[string]interface{}{
		"ruleId":    rule.ID,
		"eventId":   rule.EventID,
		"channelId": rule.ChannelID,
		"reason":    err.Error(),
	})
}
