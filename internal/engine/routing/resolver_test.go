package routing

import (
	"context"
	"testing"
	"time"

	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedResolverStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	st := memory.New()

	channels := []models.Channel{
		{ID: "ch_email", Type: models.ChannelEmail, Name: "Email", IsActive: true},
		{ID: "ch_sms", Type: models.ChannelSMS, Name: "SMS", IsActive: true},
		{ID: "ch_teams", Type: models.ChannelTeams, Name: "Teams", IsActive: true},
		{ID: "ch_whatsapp", Type: models.ChannelWhatsApp, Name: "WhatsApp", IsActive: false},
	}
	for _, ch := range channels {
		require.NoError(t, st.Channels().Create(ctx, ch))
	}

	require.NoError(t, st.Roles().Create(ctx, models.StaffRole{ID: "role_reviewer", Name: "Reviewer", IsActive: true}))
	require.NoError(t, st.Roles().Create(ctx, models.StaffRole{ID: "role_manager", Name: "Manager", IsActive: true}))

	staff := []models.StaffMember{
		{
			ID: "staff_1", Name: "Priya", Email: "priya@example.com", Phone: "+911111111111",
			RoleIDs:            []string{"role_reviewer", "role_manager"},
			ContactPreferences: []models.ChannelType{models.ChannelEmail, models.ChannelTeams},
			IsActive:           true,
		},
		{
			ID: "staff_2", Name: "Arun", Email: "arun@example.com",
			RoleIDs:            []string{"role_reviewer"},
			ContactPreferences: []models.ChannelType{models.ChannelSMS},
			IsActive:           true,
		},
		{
			ID: "staff_3", Name: "Inactive", Email: "gone@example.com",
			RoleIDs:            []string{"role_reviewer"},
			ContactPreferences: []models.ChannelType{models.ChannelEmail},
			IsActive:           false,
		},
	}
	for _, m := range staff {
		require.NoError(t, st.Staff().Create(ctx, m))
	}

	st.SeedApplication(models.Application{
		ID:             "app_1",
		ApplicantName:  "Ravi Kumar",
		ApplicantEmail: "ravi@example.com",
		ApplicantPhone: "+919999999999",
		Type:           "franchise",
		Status:         models.StatusSubmitted,
		SubmittedAt:    time.Now().Add(-48 * time.Hour),
		LastUpdatedAt:  time.Now().Add(-24 * time.Hour),
	})

	return st
}

func TestResolve_CustomerAndStaffTargets(t *testing.T) {
	ctx := context.Background()
	st := seedResolverStore(t)

	rules := []models.RoutingRule{
		{ID: "rule_staff", EventID: "evt_1", ChannelID: "ch_teams", RecipientType: models.RecipientInternalStaff,
			Priority: 2, StaffRoleIDs: []string{"role_reviewer"}, IsActive: true},
		{ID: "rule_customer", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
			Priority: 1, IsActive: true},
	}
	for _, r := range rules {
		require.NoError(t, st.RoutingRules().Create(ctx, r))
	}

	resolver := NewResolver(st, logger.NewTestLogger(t))
	targets, err := resolver.Resolve(ctx, "evt_1", "app_1")
	require.NoError(t, err)

	// Priority 1 customer target first, then the teams staff target. staff_2
	// never opted into teams and staff_3 is inactive.
	require.Len(t, targets, 2)
	assert.Equal(t, "rule_customer", targets[0].RuleID)
	assert.Equal(t, "ravi@example.com", targets[0].RecipientContact)
	assert.Equal(t, models.RecipientCustomer, targets[0].RecipientType)

	assert.Equal(t, "staff_1", targets[1].RecipientID)
	assert.Equal(t, "priya@example.com", targets[1].RecipientContact)
	assert.Equal(t, models.ChannelTeams, targets[1].ChannelType)
}

func TestResolve_SkipsInactiveRulesAndChannels(t *testing.T) {
	ctx := context.Background()
	st := seedResolverStore(t)

	rules := []models.RoutingRule{
		{ID: "rule_disabled", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
			Priority: 0, IsActive: false},
		{ID: "rule_dead_channel", EventID: "evt_1", ChannelID: "ch_whatsapp", RecipientType: models.RecipientCustomer,
			Priority: 0, IsActive: true},
		{ID: "rule_ok", EventID: "evt_1", ChannelID: "ch_sms", RecipientType: models.RecipientCustomer,
			Priority: 5, IsActive: true},
	}
	for _, r := range rules {
		require.NoError(t, st.RoutingRules().Create(ctx, r))
	}

	resolver := NewResolver(st, logger.NewTestLogger(t))
	targets, err := resolver.Resolve(ctx, "evt_1", "app_1")
	require.NoError(t, err)

	require.Len(t, targets, 1)
	assert.Equal(t, "rule_ok", targets[0].RuleID)
	assert.Equal(t, "+919999999999", targets[0].RecipientContact)
}

func TestResolve_StaffDedupAcrossRoles(t *testing.T) {
	ctx := context.Background()
	st := seedResolverStore(t)

	require.NoError(t, st.RoutingRules().Create(ctx, models.RoutingRule{
		ID: "rule_both_roles", EventID: "evt_1", ChannelID: "ch_email",
		RecipientType: models.RecipientInternalStaff,
		StaffRoleIDs:  []string{"role_reviewer", "role_manager"},
		IsActive:      true,
	}))

	resolver := NewResolver(st, logger.NewTestLogger(t))
	targets, err := resolver.Resolve(ctx, "evt_1", "app_1")
	require.NoError(t, err)

	// staff_1 holds both roles but must appear once; staff_2 has no email
	// opt-in and staff_3 is inactive.
	require.Len(t, targets, 1)
	assert.Equal(t, "staff_1", targets[0].RecipientID)
}

func TestResolve_EmptyStaffRolesProducesNoTargets(t *testing.T) {
	ctx := context.Background()
	st := seedResolverStore(t)

	require.NoError(t, st.RoutingRules().Create(ctx, models.RoutingRule{
		ID: "rule_no_roles", EventID: "evt_1", ChannelID: "ch_email",
		RecipientType: models.RecipientInternalStaff,
		IsActive:      true,
	}))

	resolver := NewResolver(st, logger.NewTestLogger(t))
	targets, err := resolver.Resolve(ctx, "evt_1", "app_1")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestResolve_NoRulesIsNotAnError(t *testing.T) {
	ctx := context.Background()
	st := seedResolverStore(t)

	resolver := NewResolver(st, logger.NewTestLogger(t))
	targets, err := resolver.Resolve(ctx, "evt_without_rules", "app_1")
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestResolve_PriorityTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	st := seedResolverStore(t)

	rules := []models.RoutingRule{
		{ID: "rule_first", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
			Priority: 3, IsActive: true},
		{ID: "rule_second", EventID: "evt_1", ChannelID: "ch_sms", RecipientType: models.RecipientCustomer,
			Priority: 3, IsActive: true},
	}
	for _, r := range rules {
		require.NoError(t, st.RoutingRules().Create(ctx, r))
	}

	resolver := NewResolver(st, logger.NewTestLogger(t))
	targets, err := resolver.Resolve(ctx, "evt_1", "app_1")
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.Equal(t, "rule_first", targets[0].RuleID)
	assert.Equal(t, "rule_second", targets[1].RuleID)
}
