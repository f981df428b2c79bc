package escalation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/engine/dispatch"
	"onboarding-hub/internal/engine/template"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/sender"
	"onboarding-hub/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *stubSender) Send(_ context.Context, destination string, _ models.Content) (sender.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, destination)
	return sender.Receipt{ProviderMessageID: "provider-1"}, nil
}

type stubLocker struct {
	held     bool
	acquired int
	released int
}

func (l *stubLocker) AcquireLock(context.Context, string, string, time.Duration) (bool, error) {
	l.acquired++
	return !l.held, nil
}

func (l *stubLocker) ReleaseLock(context.Context, string, string) error {
	l.released++
	return nil
}

var sweepBase = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func seedSweeperStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	channels := []models.Channel{
		{ID: "ch_email", Type: models.ChannelEmail, Name: "Email", IsActive: true},
		{ID: "ch_sms", Type: models.ChannelSMS, Name: "SMS", IsActive: true},
		{ID: "ch_wa", Type: models.ChannelWhatsApp, Name: "WhatsApp", IsActive: false},
	}
	for _, ch := range channels {
		require.NoError(t, st.Channels().Create(ctx, ch))
	}

	require.NoError(t, st.Events().Create(ctx, models.OnboardingEvent{
		ID: "evt_1", Code: "DOCUMENTS_PENDING", Name: "Documents pending",
		RequiresResponse: true, IsActive: true,
	}))

	require.NoError(t, st.EscalationRules().Create(ctx, models.EscalationRule{
		ID: "esc_1", EventID: "evt_1", FromChannelID: "ch_email", ToChannelID: "ch_sms",
		WaitDays: 3, MaxAttempts: 2, IsActive: true,
	}))

	require.NoError(t, st.Templates().Create(ctx, models.MessageTemplate{
		ID: "tpl_sms", EventID: "evt_1", ChannelID: "ch_sms", RecipientType: models.RecipientCustomer,
		Body: "Reminder for {{applicant_name}}", IsActive: true, UpdatedAt: sweepBase,
	}))

	st.SeedApplication(models.Application{
		ID:             "app_1",
		ApplicantName:  "Ravi Kumar",
		ApplicantEmail: "ravi@example.com",
		ApplicantPhone: "+919800000001",
		Status:         models.StatusUnderReview,
	})

	return st
}

func seedUnansweredEmail(t *testing.T, st *memory.Store, id string, status models.MessageStatus, sentAt time.Time, attempt int) {
	t.Helper()
	require.NoError(t, st.MessageLogs().Create(context.Background(), &models.MessageLog{
		ID:                id,
		ApplicationID:     "app_1",
		EventID:           "evt_1",
		ChannelID:         "ch_email",
		ChannelType:       models.ChannelEmail,
		RecipientType:     models.RecipientCustomer,
		RecipientID:       "app_1",
		RecipientName:     "Ravi Kumar",
		RecipientContact:  "ravi@example.com",
		Status:            status,
		SentAt:            sentAt,
		EscalationAttempt: attempt,
	}))
}

func newTestSweeper(t *testing.T, st *memory.Store, snd sender.ChannelSender, locker Locker, now time.Time) *Sweeper {
	return newTestSweeperCfg(t, st, snd, locker, now, Config{})
}

func newTestSweeperCfg(t *testing.T, st *memory.Store, snd sender.ChannelSender, locker Locker, now time.Time, cfg Config) *Sweeper {
	t.Helper()
	log := logger.NewTestLogger(t)
	clock := func() time.Time { return now }

	registry := sender.NewRegistry()
	if snd != nil {
		registry.Register(models.ChannelSMS, snd)
	}
	dispatcher := dispatch.NewDispatcher(st.MessageLogs(), registry, nil, nil, nil, log).WithClock(clock)
	renderer := template.NewRenderer(st.Templates(), template.SupportContacts{}, log)

	return NewSweeper(st, renderer, dispatcher, locker, cfg, log).WithClock(clock)
}

func TestSweep_EscalatesDueMessage(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	snd := &stubSender{}
	s := newTestSweeper(t, st, snd, nil, sweepBase.Add(3*24*time.Hour+time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"+919800000001"}, snd.sent)

	successors, err := st.MessageLogs().ListSuccessors(ctx, "msg_1")
	require.NoError(t, err)
	require.Len(t, successors, 1)
	assert.Equal(t, "ch_sms", successors[0].ChannelID)
	assert.Equal(t, 1, successors[0].EscalationAttempt)
	assert.Equal(t, models.MessageSent, successors[0].Status)
	assert.Contains(t, successors[0].Body, "Ravi Kumar")
}

func TestSweep_SecondSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	snd := &stubSender{}
	s := newTestSweeper(t, st, snd, nil, sweepBase.Add(4*24*time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	created, err = s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, snd.sent, 1)
}

func TestSweep_NotDueYet(t *testing.T) {
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(2*24*time.Hour))

	created, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_MaxAttemptsBound(t *testing.T) {
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 2)

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(10*24*time.Hour))

	created, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_TerminalApplicationCancels(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	app, err := st.Applications().Get(ctx, "app_1")
	require.NoError(t, err)
	app.Status = models.StatusApproved
	require.NoError(t, st.Applications().Update(ctx, *app))

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(4*24*time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_AnsweredMessageIsNotACandidate(t *testing.T) {
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageOpened, sweepBase, 0)

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(10*24*time.Hour))

	created, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_EventNotRequiringResponseIsSkipped(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)

	ev, err := st.Events().Get(ctx, "evt_1")
	require.NoError(t, err)
	ev.RequiresResponse = false
	require.NoError(t, st.Events().Update(ctx, *ev))

	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(10*24*time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_ChannelRepeatStopsChain(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)

	// Rule pointing the chain back at email from sms.
	require.NoError(t, st.EscalationRules().Create(ctx, models.EscalationRule{
		ID: "esc_2", EventID: "evt_1", FromChannelID: "ch_sms", ToChannelID: "ch_email",
		WaitDays: 3, MaxAttempts: 3, IsActive: true,
	}))

	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)
	require.NoError(t, st.MessageLogs().Create(ctx, &models.MessageLog{
		ID:                "msg_2",
		ApplicationID:     "app_1",
		EventID:           "evt_1",
		ChannelID:         "ch_sms",
		ChannelType:       models.ChannelSMS,
		RecipientType:     models.RecipientCustomer,
		RecipientID:       "app_1",
		RecipientName:     "Ravi Kumar",
		RecipientContact:  "+919800000001",
		Status:            models.MessageSent,
		SentAt:            sweepBase.Add(3 * 24 * time.Hour),
		EscalatedFrom:     "msg_1",
		EscalationAttempt: 1,
	}))

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(10*24*time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_InactiveTargetChannelIsSkipped(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)

	rule, err := st.EscalationRules().Get(ctx, "esc_1")
	require.NoError(t, err)
	rule.ToChannelID = "ch_wa"
	require.NoError(t, st.EscalationRules().Update(ctx, *rule))

	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	s := newTestSweeper(t, st, &stubSender{}, nil, sweepBase.Add(4*24*time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestSweep_IneligibleBacklogDoesNotStarveNewerLogs(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)

	// Five sms logs with no escalation edge stay in sent forever. With a
	// batch of two, a single head-of-table read would never reach the due
	// email log behind them.
	for i := 0; i < 5; i++ {
		require.NoError(t, st.MessageLogs().Create(ctx, &models.MessageLog{
			ID:            fmt.Sprintf("msg_noise_%d", i),
			ApplicationID: "app_1",
			EventID:       "evt_1",
			ChannelID:     "ch_sms",
			ChannelType:   models.ChannelSMS,
			RecipientType: models.RecipientCustomer,
			RecipientID:   "app_1",
			Status:        models.MessageSent,
			SentAt:        sweepBase.Add(-time.Duration(i+1) * time.Hour),
		}))
	}
	seedUnansweredEmail(t, st, "msg_due", models.MessageSent, sweepBase, 0)

	snd := &stubSender{}
	s := newTestSweeperCfg(t, st, snd, nil, sweepBase.Add(4*24*time.Hour), Config{BatchSize: 2})

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	successors, err := st.MessageLogs().ListSuccessors(ctx, "msg_due")
	require.NoError(t, err)
	require.Len(t, successors, 1)
	assert.Equal(t, "ch_sms", successors[0].ChannelID)
}

func TestSweep_LogBeyondHorizonIsLeftAlone(t *testing.T) {
	ctx := context.Background()
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	snd := &stubSender{}
	s := newTestSweeper(t, st, snd, nil, sweepBase.Add(40*24*time.Hour))

	created, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Empty(t, snd.sent)
}

func TestSweep_LockHeldElsewhereSkips(t *testing.T) {
	st := seedSweeperStore(t)
	seedUnansweredEmail(t, st, "msg_1", models.MessageSent, sweepBase, 0)

	locker := &stubLocker{held: true}
	s := newTestSweeper(t, st, &stubSender{}, locker, sweepBase.Add(4*24*time.Hour))

	created, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 0, locker.released)
}

func TestSweep_LockAcquiredAndReleased(t *testing.T) {
	st := seedSweeperStore(t)

	locker := &stubLocker{}
	s := newTestSweeper(t, st, &stubSender{}, locker, sweepBase)

	_, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
}
