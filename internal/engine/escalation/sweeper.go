// Package escalation runs the periodic sweep that moves unanswered messages
// to their fallback channel. The sweep is idempotent: a message escalates at
// most once, and re-running over the same rows is harmless.
package escalation

import (
	"context"
	"time"

	"onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/common/metrics"
	"onboarding-hub/internal/engine/dispatch"
	"onboarding-hub/internal/engine/template"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"

	"github.com/google/uuid"
)

const lockKey = "onboarding-hub:escalation:sweep"

// Locker is the distributed lock used to keep concurrent hub instances from
// sweeping at the same time. A nil Locker disables locking.
type Locker interface {
	AcquireLock(ctx context.Context, key, owner string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, owner string) error
}

type Config struct {
	SweepInterval time.Duration
	LockTTL       time.Duration
	BatchSize     int
	// Horizon bounds how far back the sweep looks. A log whose SentAt is
	// older than Horizon is past escalating: a rule or channel fixed months
	// after the fact must not fire a stale follow-up.
	Horizon time.Duration
}

type Sweeper struct {
	store      store.Store
	renderer   *template.Renderer
	dispatcher *dispatch.Dispatcher
	locker     Locker
	cfg        Config
	logger     logger.Logger
	now        func() time.Time
}

func NewSweeper(st store.Store, renderer *template.Renderer, dispatcher *dispatch.Dispatcher, locker Locker, cfg Config, log logger.Logger) *Sweeper {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 200
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 30 * 24 * time.Hour
	}
	return &Sweeper{
		store:      st,
		renderer:   renderer,
		dispatcher: dispatcher,
		locker:     locker,
		cfg:        cfg,
		logger:     log.WithFields(map[string]interface{}{"component": "escalation-sweeper"}),
		now:        time.Now,
	}
}

// WithClock overrides the sweeper clock, for tests.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("escalation sweeper started", map[string]interface{}{
		"interval": s.cfg.SweepInterval.String(),
	})

	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Error("escalation sweep failed", map[string]interface{}{"error": err})
	}

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("escalation sweeper stopped", nil)
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("escalation sweep failed", map[string]interface{}{"error": err})
			}
		}
	}
}

// Sweep scans unanswered messages and escalates every one that is due.
// It returns the number of escalation messages created.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	started := s.now()
	defer func() {
		metrics.SweepDuration.Observe(s.now().Sub(started).Seconds())
	}()

	if s.locker != nil {
		owner := uuid.NewString()
		ok, err := s.locker.AcquireLock(ctx, lockKey, owner, s.cfg.LockTTL)
		if err != nil {
			return 0, err
		}
		if !ok {
			s.logger.Debug("sweep lock held elsewhere, skipping", nil)
			return 0, nil
		}
		defer func() {
			if err := s.locker.ReleaseLock(ctx, lockKey, owner); err != nil {
				s.logger.Warn("sweep lock release failed", map[string]interface{}{"error": err})
			}
		}()
	}

	statuses := []models.MessageStatus{
		models.MessageSent,
		models.MessageDelivered,
		models.MessageFailed,
	}
	oldest := s.now().Add(-s.cfg.Horizon)

	// Keyset-paginate through every candidate. A fixed head-of-table batch
	// would let permanently-ineligible rows (no rule, no response expected,
	// already escalated) crowd out newer due logs once the backlog passes
	// BatchSize.
	var cursor store.LogCursor
	scanned, created := 0, 0
	for {
		batch, err := s.store.MessageLogs().ListByStatus(ctx, statuses, cursor, s.cfg.BatchSize)
		if err != nil {
			return created, errors.NewQueryExecutionFailedError("message_log.list_by_status", err)
		}
		if len(batch) == 0 {
			break
		}

		for i := range batch {
			scanned++
			if batch[i].SentAt.Before(oldest) {
				continue
			}
			escalated, err := s.escalate(ctx, batch[i])
			if err != nil {
				s.logger.Error("escalation failed", map[string]interface{}{
					"messageId": batch[i].ID,
					"error":     err,
				})
				continue
			}
			if escalated {
				created++
			}
		}

		if len(batch) < s.cfg.BatchSize {
			break
		}
		last := batch[len(batch)-1]
		cursor = store.LogCursor{SentAt: last.SentAt, ID: last.ID}
	}

	if created > 0 {
		s.logger.Info("escalation sweep finished", map[string]interface{}{
			"scanned": scanned,
			"created": created,
		})
	}
	return created, nil
}

// escalate decides whether one unanswered message is due and, if so,
// dispatches its follow-up on the fallback channel.
func (s *Sweeper) escalate(ctx context.Context, entry models.MessageLog) (bool, error) {
	rule, err := s.store.EscalationRules().Find(ctx, entry.EventID, entry.ChannelID)
	if err != nil {
		return false, err
	}
	if rule == nil {
		return false, nil
	}

	// Only events that expect a response are watched.
	event, err := s.store.Events().Get(ctx, entry.EventID)
	if err != nil {
		return false, err
	}
	if !event.RequiresResponse {
		return false, nil
	}

	due := entry.SentAt.Add(time.Duration(rule.WaitDays) * 24 * time.Hour)
	if s.now().Before(due) {
		return false, nil
	}

	if entry.EscalationAttempt >= rule.MaxAttempts {
		return false, nil
	}

	// Idempotence: a message escalates at most once.
	successors, err := s.store.MessageLogs().ListSuccessors(ctx, entry.ID)
	if err != nil {
		return false, err
	}
	if len(successors) > 0 {
		return false, nil
	}

	app, err := s.store.Applications().Get(ctx, entry.ApplicationID)
	if err != nil {
		return false, err
	}
	if app.Status.IsTerminal() {
		s.logger.Debug("escalation cancelled, application closed", map[string]interface{}{
			"messageId":     entry.ID,
			"applicationId": app.ID,
			"status":        app.Status,
		})
		return false, nil
	}

	channel, err := s.store.Channels().Get(ctx, rule.ToChannelID)
	if err != nil {
		return false, err
	}
	if !channel.IsActive {
		s.logger.Warn("escalation target channel inactive", map[string]interface{}{
			"messageId": entry.ID,
			"channelId": channel.ID,
		})
		return false, errors.NewChannelInactiveError(channel.ID)
	}

	visited, err := s.chainChannels(ctx, entry)
	if err != nil {
		return false, err
	}
	if visited[channel.ID] {
		s.logger.Warn("escalation would repeat a channel, stopping chain", map[string]interface{}{
			"messageId": entry.ID,
			"channelId": channel.ID,
		})
		return false, nil
	}

	contact, err := s.contactFor(ctx, entry, *app, channel.Type)
	if err != nil {
		return false, err
	}

	tpl, content, err := s.renderer.Render(ctx, entry.EventID, channel.ID, entry.RecipientType, *app, nil)
	if err != nil {
		return false, err
	}

	_, err = s.dispatcher.Dispatch(ctx, dispatch.Request{
		ApplicationID: entry.ApplicationID,
		EventID:       entry.EventID,
		Target: models.Target{
			ChannelID:        channel.ID,
			ChannelType:      channel.Type,
			RecipientType:    entry.RecipientType,
			RecipientID:      entry.RecipientID,
			RecipientName:    entry.RecipientName,
			RecipientContact: contact,
		},
		TemplateID:        tpl.ID,
		Content:           content,
		EscalatedFrom:     entry.ID,
		EscalationAttempt: entry.EscalationAttempt + 1,
	})
	if err != nil && !errors.IsDelivery(err) {
		return false, err
	}

	// A failed hand-off still counts: the escalated row exists and the next
	// sweep may move it further along the chain.
	metrics.EscalationsCreated.WithLabelValues(entry.EventID).Inc()
	s.logger.Info("message escalated", map[string]interface{}{
		"messageId":     entry.ID,
		"applicationId": entry.ApplicationID,
		"eventId":       entry.EventID,
		"fromChannelId": entry.ChannelID,
		"toChannelId":   channel.ID,
		"attempt":       entry.EscalationAttempt + 1,
	})
	return true, nil
}

// chainChannels walks the escalation ancestry of entry and returns every
// channel the chain has already used, entry's own channel included.
func (s *Sweeper) chainChannels(ctx context.Context, entry models.MessageLog) (map[string]bool, error) {
	visited := map[string]bool{entry.ChannelID: true}
	cur := entry
	for cur.EscalatedFrom != "" {
		prev, err := s.store.MessageLogs().Get(ctx, cur.EscalatedFrom)
		if err != nil {
			if errors.IsNotFound(err) {
				break
			}
			return nil, err
		}
		if visited[prev.ChannelID] {
			break
		}
		visited[prev.ChannelID] = true
		cur = *prev
	}
	return visited, nil
}

// contactFor resolves the recipient's address on the fallback channel.
func (s *Sweeper) contactFor(ctx context.Context, entry models.MessageLog, app models.Application, ct models.ChannelType) (string, error) {
	if entry.RecipientType == models.RecipientCustomer {
		contact, ok := app.ContactFor(ct)
		if !ok {
			return "", errors.NewRecipientUnresolvableError(app.ID, string(ct))
		}
		return contact, nil
	}

	member, err := s.store.Staff().Get(ctx, entry.RecipientID)
	if err != nil {
		return "", err
	}
	contact, ok := member.ContactFor(ct)
	if !ok {
		return "", errors.NewRecipientUnresolvableError(member.ID, string(ct))
	}
	return contact, nil
}
