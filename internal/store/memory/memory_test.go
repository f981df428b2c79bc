package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannels_CRUD(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.Channels().Create(ctx, models.Channel{
		ID: "ch_1", Type: models.ChannelEmail, Name: "Email", IsActive: true,
	}))

	ch, err := st.Channels().Get(ctx, "ch_1")
	require.NoError(t, err)
	assert.Equal(t, "Email", ch.Name)

	ch.Name = "Primary email"
	require.NoError(t, st.Channels().Update(ctx, *ch))

	updated, err := st.Channels().Get(ctx, "ch_1")
	require.NoError(t, err)
	assert.Equal(t, "Primary email", updated.Name)

	_, err = st.Channels().Get(ctx, "ch_missing")
	assert.True(t, hberrors.IsNotFound(err))
}

func TestEvents_GetByCode(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.Events().Create(ctx, models.OnboardingEvent{
		ID: "evt_1", Code: "DOCUMENTS_PENDING", Name: "Documents pending", IsActive: true,
	}))

	ev, err := st.Events().GetByCode(ctx, "DOCUMENTS_PENDING")
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)

	_, err = st.Events().GetByCode(ctx, "NOPE")
	assert.True(t, hberrors.IsNotFound(err))
}

func TestEscalationRules_FindMatchesActiveEdgeOnly(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.EscalationRules().Create(ctx, models.EscalationRule{
		ID: "esc_off", EventID: "evt_1", FromChannelID: "ch_email", ToChannelID: "ch_sms", IsActive: false,
	}))
	require.NoError(t, st.EscalationRules().Create(ctx, models.EscalationRule{
		ID: "esc_on", EventID: "evt_1", FromChannelID: "ch_email", ToChannelID: "ch_wa", IsActive: true,
	}))

	rule, err := st.EscalationRules().Find(ctx, "evt_1", "ch_email")
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, "esc_on", rule.ID)

	// No edge is not an error.
	rule, err = st.EscalationRules().Find(ctx, "evt_1", "ch_wa")
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestStaff_ListActiveByRoles(t *testing.T) {
	ctx := context.Background()
	st := New()

	require.NoError(t, st.Staff().Create(ctx, models.StaffMember{
		ID: "staff_1", Name: "Asha", RoleIDs: []string{"role_ops", "role_review"}, IsActive: true,
	}))
	require.NoError(t, st.Staff().Create(ctx, models.StaffMember{
		ID: "staff_2", Name: "Vikram", RoleIDs: []string{"role_ops"}, IsActive: false,
	}))
	require.NoError(t, st.Staff().Create(ctx, models.StaffMember{
		ID: "staff_3", Name: "Meera", RoleIDs: []string{"role_legal"}, IsActive: true,
	}))

	members, err := st.Staff().ListActiveByRoles(ctx, []string{"role_ops"})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "staff_1", members[0].ID)
}

func seedLog(t *testing.T, st *Store, id string, status models.MessageStatus, sentAt time.Time, escalatedFrom string) {
	t.Helper()
	require.NoError(t, st.MessageLogs().Create(context.Background(), &models.MessageLog{
		ID:            id,
		ApplicationID: "app_1",
		EventID:       "evt_1",
		ChannelID:     "ch_email",
		Status:        status,
		SentAt:        sentAt,
		EscalatedFrom: escalatedFrom,
	}))
}

func TestMessageLogs_ListByStatusOldestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	seedLog(t, st, "msg_new", models.MessageSent, base.Add(2*time.Hour), "")
	seedLog(t, st, "msg_old", models.MessageSent, base, "")
	seedLog(t, st, "msg_mid", models.MessageDelivered, base.Add(time.Hour), "")
	seedLog(t, st, "msg_done", models.MessageReplied, base, "")

	out, err := st.MessageLogs().ListByStatus(ctx, []models.MessageStatus{
		models.MessageSent, models.MessageDelivered,
	}, store.LogCursor{}, 0)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "msg_old", out[0].ID)
	assert.Equal(t, "msg_mid", out[1].ID)
	assert.Equal(t, "msg_new", out[2].ID)

	out, err = st.MessageLogs().ListByStatus(ctx, []models.MessageStatus{
		models.MessageSent, models.MessageDelivered,
	}, store.LogCursor{}, 2)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "msg_old", out[0].ID)
}

func TestMessageLogs_ListByStatusPagesWithCursor(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	seedLog(t, st, "msg_a", models.MessageSent, base, "")
	seedLog(t, st, "msg_b", models.MessageSent, base.Add(time.Hour), "")
	seedLog(t, st, "msg_c", models.MessageSent, base.Add(2*time.Hour), "")
	// Same SentAt as msg_c: the id breaks the tie.
	seedLog(t, st, "msg_d", models.MessageSent, base.Add(2*time.Hour), "")

	statuses := []models.MessageStatus{models.MessageSent}

	first, err := st.MessageLogs().ListByStatus(ctx, statuses, store.LogCursor{}, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "msg_a", first[0].ID)
	assert.Equal(t, "msg_b", first[1].ID)

	cursor := store.LogCursor{SentAt: first[1].SentAt, ID: first[1].ID}
	second, err := st.MessageLogs().ListByStatus(ctx, statuses, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, "msg_c", second[0].ID)
	assert.Equal(t, "msg_d", second[1].ID)

	cursor = store.LogCursor{SentAt: second[1].SentAt, ID: second[1].ID}
	third, err := st.MessageLogs().ListByStatus(ctx, statuses, cursor, 2)
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestMessageLogs_ListForApplicationNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	seedLog(t, st, "msg_1", models.MessageSent, base, "")
	seedLog(t, st, "msg_2", models.MessageSent, base.Add(time.Hour), "")

	out, err := st.MessageLogs().ListForApplication(ctx, "app_1")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "msg_2", out[0].ID)
}

func TestMessageLogs_ListSuccessors(t *testing.T) {
	ctx := context.Background()
	st := New()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	seedLog(t, st, "msg_1", models.MessageSent, base, "")
	seedLog(t, st, "msg_2", models.MessageSent, base.Add(time.Hour), "msg_1")
	seedLog(t, st, "msg_3", models.MessageSent, base.Add(2*time.Hour), "msg_2")

	out, err := st.MessageLogs().ListSuccessors(ctx, "msg_1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "msg_2", out[0].ID)

	out, err = st.MessageLogs().ListSuccessors(ctx, "msg_3")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMessageLogs_TransitionMutateErrorLeavesRowUntouched(t *testing.T) {
	ctx := context.Background()
	st := New()
	seedLog(t, st, "msg_1", models.MessageSent, time.Now(), "")

	boom := errors.New("rejected")
	_, err := st.MessageLogs().Transition(ctx, "msg_1", func(l *models.MessageLog) error {
		l.Status = models.MessageReplied
		return boom
	})
	require.ErrorIs(t, err, boom)

	entry, err := st.MessageLogs().Get(ctx, "msg_1")
	require.NoError(t, err)
	assert.Equal(t, models.MessageSent, entry.Status)
}

func TestMessageLogs_TransitionUnknownID(t *testing.T) {
	_, err := New().MessageLogs().Transition(context.Background(), "msg_missing", func(*models.MessageLog) error {
		return nil
	})
	assert.True(t, hberrors.IsNotFound(err))
}
