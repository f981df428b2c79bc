package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/sender"
	"onboarding-hub/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	SendFunc func(ctx context.Context, destination string, content models.Content) (sender.Receipt, error)
}

func (m *MockSender) Send(ctx context.Context, destination string, content models.Content) (sender.Receipt, error) {
	return m.SendFunc(ctx, destination, content)
}

func testTarget() models.Target {
	return models.Target{
		ChannelID:        "ch_email",
		ChannelType:      models.ChannelEmail,
		RecipientType:    models.RecipientCustomer,
		RecipientID:      "app_1",
		RecipientName:    "Ravi Kumar",
		RecipientContact: "ravi@example.com",
	}
}

func newTestDispatcher(t *testing.T, st *memory.Store, snd sender.ChannelSender) *Dispatcher {
	t.Helper()
	registry := sender.NewRegistry()
	if snd != nil {
		registry.Register(models.ChannelEmail, snd)
	}
	return NewDispatcher(st.MessageLogs(), registry, nil, nil, nil, logger.NewTestLogger(t))
}

func TestDispatch_Success(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	var gotDestination string
	snd := &MockSender{
		SendFunc: func(_ context.Context, destination string, content models.Content) (sender.Receipt, error) {
			gotDestination = destination
			assert.Equal(t, "Welcome", content.Subject)
			return sender.Receipt{ProviderMessageID: "ses-123"}, nil
		},
	}

	d := newTestDispatcher(t, st, snd)
	entry, err := d.Dispatch(ctx, Request{
		ApplicationID: "app_1",
		EventID:       "evt_1",
		Target:        testTarget(),
		TemplateID:    "tpl_1",
		Content:       models.Content{Subject: "Welcome", Body: "Hello"},
	})
	require.NoError(t, err)

	assert.Equal(t, "ravi@example.com", gotDestination)
	assert.Equal(t, models.MessageSent, entry.Status)
	assert.Equal(t, "ses-123", entry.ProviderMessageID)
	assert.NotEmpty(t, entry.ID)

	stored, err := st.MessageLogs().Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, stored.Status)
}

func TestDispatch_ProviderFailureRecordsFailedLog(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	snd := &MockSender{
		SendFunc: func(context.Context, string, models.Content) (sender.Receipt, error) {
			return sender.Receipt{}, errors.New("smtp 550")
		},
	}

	d := newTestDispatcher(t, st, snd)
	entry, err := d.Dispatch(ctx, Request{
		ApplicationID: "app_1",
		EventID:       "evt_1",
		Target:        testTarget(),
		Content:       models.Content{Body: "Hello"},
	})

	require.Error(t, err)
	assert.True(t, hberrors.IsDelivery(err))
	require.NotNil(t, entry)
	assert.Equal(t, models.MessageFailed, entry.Status)
	assert.Contains(t, entry.FailureReason, "smtp 550")
}

func TestDispatch_NoSenderRegisteredFails(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	d := newTestDispatcher(t, st, nil)
	entry, err := d.Dispatch(ctx, Request{
		ApplicationID: "app_1",
		EventID:       "evt_1",
		Target:        testTarget(),
		Content:       models.Content{Body: "Hello"},
	})

	require.Error(t, err)
	assert.True(t, hberrors.IsDelivery(err))
	assert.Equal(t, models.MessageFailed, entry.Status)
}

func TestDispatch_EscalationFieldsCarried(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	snd := &MockSender{
		SendFunc: func(context.Context, string, models.Content) (sender.Receipt, error) {
			return sender.Receipt{}, nil
		},
	}

	d := newTestDispatcher(t, st, snd)
	entry, err := d.Dispatch(ctx, Request{
		ApplicationID:     "app_1",
		EventID:           "evt_1",
		Target:            testTarget(),
		Content:           models.Content{Body: "Reminder"},
		EscalatedFrom:     "msg_original",
		EscalationAttempt: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, "msg_original", entry.EscalatedFrom)
	assert.Equal(t, 2, entry.EscalationAttempt)
}

func dispatchSent(t *testing.T, d *Dispatcher, st *memory.Store) *models.MessageLog {
	t.Helper()
	entry, err := d.Dispatch(context.Background(), Request{
		ApplicationID: "app_1",
		EventID:       "evt_1",
		Target:        testTarget(),
		Content:       models.Content{Body: "Hello"},
	})
	require.NoError(t, err)
	return entry
}

func TestApplyCallback_ForwardTransitions(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := newTestDispatcher(t, st, &MockSender{
		SendFunc: func(context.Context, string, models.Content) (sender.Receipt, error) {
			return sender.Receipt{}, nil
		},
	})
	entry := dispatchSent(t, d, st)

	at := time.Now().UTC()
	updated, err := d.ApplyCallback(ctx, entry.ID, models.MessageDelivered, at, "")
	require.NoError(t, err)
	assert.Equal(t, models.MessageDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)
	assert.True(t, updated.DeliveredAt.Equal(at))

	updated, err = d.ApplyCallback(ctx, entry.ID, models.MessageOpened, at.Add(time.Minute), "")
	require.NoError(t, err)
	assert.Equal(t, models.MessageOpened, updated.Status)
	require.NotNil(t, updated.OpenedAt)

	updated, err = d.ApplyCallback(ctx, entry.ID, models.MessageReplied, at.Add(2*time.Minute), "")
	require.NoError(t, err)
	assert.Equal(t, models.MessageReplied, updated.Status)
	require.NotNil(t, updated.RepliedAt)
}

func TestApplyCallback_RegressionIsAnomaly(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := newTestDispatcher(t, st, &MockSender{
		SendFunc: func(context.Context, string, models.Content) (sender.Receipt, error) {
			return sender.Receipt{}, nil
		},
	})
	entry := dispatchSent(t, d, st)

	_, err := d.ApplyCallback(ctx, entry.ID, models.MessageOpened, time.Now(), "")
	require.NoError(t, err)

	// Late "delivered" after "opened" must be ignored.
	_, err = d.ApplyCallback(ctx, entry.ID, models.MessageDelivered, time.Now(), "")
	require.Error(t, err)
	assert.True(t, hberrors.IsAnomaly(err))

	stored, err := st.MessageLogs().Get(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MessageOpened, stored.Status)
}

func TestApplyCallback_FailedMayReplaceDelivered(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := newTestDispatcher(t, st, &MockSender{
		SendFunc: func(context.Context, string, models.Content) (sender.Receipt, error) {
			return sender.Receipt{}, nil
		},
	})
	entry := dispatchSent(t, d, st)

	_, err := d.ApplyCallback(ctx, entry.ID, models.MessageDelivered, time.Now(), "")
	require.NoError(t, err)

	updated, err := d.ApplyCallback(ctx, entry.ID, models.MessageBounced, time.Now(), "mailbox full")
	require.NoError(t, err)
	assert.Equal(t, models.MessageBounced, updated.Status)
	assert.Equal(t, "mailbox full", updated.FailureReason)
}

func TestApplyCallback_TerminalStatusIsImmutable(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := newTestDispatcher(t, st, &MockSender{
		SendFunc: func(context.Context, string, models.Content) (sender.Receipt, error) {
			return sender.Receipt{}, nil
		},
	})
	entry := dispatchSent(t, d, st)

	_, err := d.ApplyCallback(ctx, entry.ID, models.MessageReplied, time.Now(), "")
	require.NoError(t, err)

	_, err = d.ApplyCallback(ctx, entry.ID, models.MessageFailed, time.Now(), "late failure")
	require.Error(t, err)
	assert.True(t, hberrors.IsAnomaly(err))
}

func TestApplyCallback_UnknownMessage(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := newTestDispatcher(t, st, nil)

	_, err := d.ApplyCallback(ctx, "msg_missing", models.MessageDelivered, time.Now(), "")
	require.Error(t, err)
	assert.True(t, hberrors.IsAnomaly(err))
}

func TestApplyCallback_UnknownStatus(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	d := newTestDispatcher(t, st, nil)

	_, err := d.ApplyCallback(ctx, "msg_1", models.MessageStatus("exploded"), time.Now(), "")
	require.Error(t, err)
	assert.True(t, hberrors.IsAnomaly(err))
}
