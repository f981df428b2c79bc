// Package dispatch hands rendered messages to channel providers and owns the
// message log lifecycle: every hand-off is recorded before the provider is
// called, and delivery callbacks only ever move a log forward.
package dispatch

import (
	"context"
	"time"

	"onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/common/metrics"
	"onboarding-hub/internal/common/observability"
	"onboarding-hub/internal/events"
	"onboarding-hub/internal/logindex"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/sender"
	"onboarding-hub/internal/store"

	"github.com/google/uuid"
)

// Request describes one message to hand off to a provider.
type Request struct {
	ApplicationID     string
	EventID           string
	Target            models.Target
	TemplateID        string
	Content           models.Content
	EscalatedFrom     string
	EscalationAttempt int
}

// Dispatcher records and sends messages, and applies delivery callbacks.
type Dispatcher struct {
	logs      store.MessageLogStore
	senders   *sender.Registry
	publisher *events.Publisher
	indexer   *logindex.Indexer
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
}

func NewDispatcher(logs store.MessageLogStore, senders *sender.Registry, publisher *events.Publisher, indexer *logindex.Indexer, obs *observability.Observability, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		logs:      logs,
		senders:   senders,
		publisher: publisher,
		indexer:   indexer,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		now:       time.Now,
	}
}

// WithClock overrides the dispatcher clock, for tests.
func (d *Dispatcher) WithClock(now func() time.Time) *Dispatcher {
	d.now = now
	return d
}

// Dispatch records the message as queued, hands it to the channel's sender
// and advances the log to sent or failed. The log row is returned in both
// cases; the error is non-nil only when the provider rejected the send.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*models.MessageLog, error) {
	entry := &models.MessageLog{
		ID:                uuid.NewString(),
		ApplicationID:     req.ApplicationID,
		EventID:           req.EventID,
		ChannelID:         req.Target.ChannelID,
		ChannelType:       req.Target.ChannelType,
		RecipientType:     req.Target.RecipientType,
		RecipientID:       req.Target.RecipientID,
		RecipientName:     req.Target.RecipientName,
		RecipientContact:  req.Target.RecipientContact,
		TemplateID:        req.TemplateID,
		Subject:           req.Content.Subject,
		Body:              req.Content.Body,
		Status:            models.MessageQueued,
		SentAt:            d.now().UTC(),
		EscalatedFrom:     req.EscalatedFrom,
		EscalationAttempt: req.EscalationAttempt,
	}

	if err := d.logs.Create(ctx, entry); err != nil {
		return nil, errors.NewQueryExecutionFailedError("message_log.create", err)
	}

	snd, err := d.senders.For(req.Target.ChannelType)
	if err != nil {
		return d.markFailed(ctx, entry, errors.NewDeliveryFailedError(string(req.Target.ChannelType), err))
	}

	started := d.now()
	receipt, err := snd.Send(ctx, req.Target.RecipientContact, req.Content)
	d.obs.RecordDispatchDuration(ctx, d.now().Sub(started), string(req.Target.ChannelType))
	if err != nil {
		return d.markFailed(ctx, entry, errors.NewDeliveryFailedError(string(req.Target.ChannelType), err))
	}

	entry, err = d.logs.Transition(ctx, entry.ID, func(l *models.MessageLog) error {
		l.Status = models.MessageSent
		l.ProviderMessageID = receipt.ProviderMessageID
		return nil
	})
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("message_log.transition", err)
	}

	metrics.MessagesDispatched.WithLabelValues(string(entry.ChannelType), string(entry.RecipientType)).Inc()
	d.obs.RecordDispatch(ctx, string(entry.ChannelType), string(models.MessageSent))

	d.logger.Info("message dispatched", map[string]interface{}{
		"messageId":     entry.ID,
		"applicationId": entry.ApplicationID,
		"eventId":       entry.EventID,
		"channelType":   entry.ChannelType,
		"recipientType": entry.RecipientType,
	})

	if entry.EscalatedFrom != "" {
		d.publisher.MessageEscalated(ctx, *entry)
	} else {
		d.publisher.MessageDispatched(ctx, *entry)
	}
	d.indexer.Index(ctx, *entry)

	return entry, nil
}

func (d *Dispatcher) markFailed(ctx context.Context, entry *models.MessageLog, cause *errors.HubError) (*models.MessageLog, error) {
	entry, terr := d.logs.Transition(ctx, entry.ID, func(l *models.MessageLog) error {
		l.Status = models.MessageFailed
		l.FailureReason = cause.Details
		return nil
	})
	if terr != nil {
		return nil, errors.NewQueryExecutionFailedError("message_log.transition", terr)
	}

	metrics.MessagesFailed.WithLabelValues(string(entry.ChannelType)).Inc()
	d.obs.RecordDispatch(ctx, string(entry.ChannelType), string(models.MessageFailed))

	d.logger.Error("message send failed", map[string]interface{}{
		"messageId":     entry.ID,
		"applicationId": entry.ApplicationID,
		"channelType":   entry.ChannelType,
		"reason":        cause.Details,
	})

	d.publisher.MessageStatusChanged(ctx, *entry, models.MessageQueued)
	d.indexer.Index(ctx, *entry)

	return entry, cause
}

// ApplyCallback applies one provider delivery callback to the log. Callbacks
// may only move the status forward; anything else is recorded as an anomaly
// and leaves the log untouched.
func (d *Dispatcher) ApplyCallback(ctx context.Context, messageID string, reported models.MessageStatus, at time.Time, reason string) (*models.MessageLog, error) {
	if reported.Rank() < 0 {
		metrics.CallbackAnomalies.WithLabelValues("unknown_status").Inc()
		return nil, errors.NewCallbackOutOfOrderError(messageID, "", string(reported))
	}

	var previous models.MessageStatus
	entry, err := d.logs.Transition(ctx, messageID, func(l *models.MessageLog) error {
		previous = l.Status
		if !allows(l.Status, reported) {
			return errors.NewCallbackOutOfOrderError(messageID, string(l.Status), string(reported))
		}

		l.Status = reported
		switch reported {
		case models.MessageDelivered:
			l.DeliveredAt = &at
		case models.MessageOpened, models.MessageClicked:
			if l.OpenedAt == nil {
				l.OpenedAt = &at
			}
		case models.MessageReplied:
			l.RepliedAt = &at
		case models.MessageFailed, models.MessageBounced:
			l.FailureReason = reason
		}
		return nil
	})
	if err != nil {
		if errors.IsAnomaly(err) {
			metrics.CallbackAnomalies.WithLabelValues("out_of_order").Inc()
			d.logger.Warn("out-of-order delivery callback ignored", map[string]interface{}{
				"messageId": messageID,
				"current":   previous,
				"reported":  reported,
			})
			return nil, err
		}
		if errors.IsNotFound(err) {
			metrics.CallbackAnomalies.WithLabelValues("unknown_message").Inc()
			d.logger.Warn("delivery callback for unknown message", map[string]interface{}{
				"messageId": messageID,
				"reported":  reported,
			})
			return nil, errors.NewCallbackUnknownMessageError(messageID)
		}
		return nil, errors.NewQueryExecutionFailedError("message_log.transition", err)
	}

	metrics.DeliveryCallbacks.WithLabelValues(string(reported)).Inc()
	d.logger.Info("delivery callback applied", map[string]interface{}{
		"messageId": entry.ID,
		"from":      previous,
		"to":        reported,
	})

	d.publisher.MessageStatusChanged(ctx, *entry, previous)
	d.indexer.Index(ctx, *entry)

	return entry, nil
}

// allows reports whether a callback may move a log from current to reported.
// The machine only moves forward; failed and bounced may replace delivered
// when the provider revises its verdict.
func allows(current, reported models.MessageStatus) bool {
	if current.IsTerminal() {
		return false
	}
	if reported.Rank() > current.Rank() {
		return true
	}
	if current == models.MessageDelivered {
		return reported == models.MessageFailed || reported == models.MessageBounced
	}
	return false
}
