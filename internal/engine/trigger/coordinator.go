// Package trigger fires an onboarding event for an application: it resolves
// routing targets, renders per-target content and dispatches the results.
// Per-target failures are isolated so one broken route never blocks the rest.
package trigger

import (
	"context"

	"onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/engine/dispatch"
	"onboarding-hub/internal/engine/routing"
	"onboarding-hub/internal/engine/template"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"
)

type Coordinator struct {
	store      store.Store
	resolver   *routing.Resolver
	renderer   *template.Renderer
	dispatcher *dispatch.Dispatcher
	logger     logger.Logger
}

func NewCoordinator(st store.Store, resolver *routing.Resolver, renderer *template.Renderer, dispatcher *dispatch.Dispatcher, log logger.Logger) *Coordinator {
	return &Coordinator{
		store:      st,
		resolver:   resolver,
		renderer:   renderer,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "trigger-coordinator"}),
	}
}

// Trigger fires eventID for applicationID and returns the message logs it
// created, failed hand-offs included. An event with no resolvable targets
// triggers nothing and returns an empty slice. The error is non-nil only when
// the trigger as a whole could not run (inactive event, unknown application).
func (c *Coordinator) Trigger(ctx context.Context, eventID, applicationID string) ([]*models.MessageLog, error) {
	event, err := c.store.Events().Get(ctx, eventID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewEventInactiveError(eventID)
		}
		return nil, err
	}
	if !event.IsActive {
		return nil, errors.NewEventInactiveError(eventID)
	}

	app, err := c.store.Applications().Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	targets, err := c.resolver.Resolve(ctx, eventID, applicationID)
	if err != nil {
		return nil, err
	}

	logs := make([]*models.MessageLog, 0, len(targets))
	for _, target := range targets {
		tpl, content, err := c.renderer.Render(ctx, eventID, target.ChannelID, target.RecipientType, *app, nil)
		if err != nil {
			c.warnTarget(eventID, applicationID, target, err)
			continue
		}

		entry, err := c.dispatcher.Dispatch(ctx, dispatch.Request{
			ApplicationID: applicationID,
			EventID:       eventID,
			Target:        target,
			TemplateID:    tpl.ID,
			Content:       content,
		})
		if err != nil && !errors.IsDelivery(err) {
			c.warnTarget(eventID, applicationID, target, err)
			continue
		}
		// Delivery failures still produced a log row; keep it in the result.
		logs = append(logs, entry)
	}

	c.logger.Info("event triggered", map[string]interface{}{
		"eventId":       eventID,
		"applicationId": applicationID,
		"targets":       len(targets),
		"messages":      len(logs),
	})
	return logs, nil
}

func (c *Coordinator) warnTarget(eventID, applicationID string, target models.Target, err error) {
	c.logger.Warn("target skipped", map[string]interface{}{
		"eventId":       eventID,
		"applicationId": applicationID,
		"channelId":     target.ChannelID,
		"recipientType": target.RecipientType,
		"recipientId":   target.RecipientID,
		"error":         err,
	})
}
