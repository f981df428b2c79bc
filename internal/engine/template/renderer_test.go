package template

import (
	"context"
	"testing"
	"time"

	hberrors "onboarding-hub/internal/common/errors"
	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSupport = SupportContacts{
	Email:     "support@example.com",
	Phone:     "+911234567890",
	PortalURL: "https://portal.example.com",
}

func testApplication() models.Application {
	return models.Application{
		ID:             "app_1",
		ApplicantName:  "Ravi Kumar",
		ApplicantEmail: "ravi@example.com",
		Type:           "franchise",
		Status:         models.StatusDocumentsPending,
		SubmittedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		LastUpdatedAt:  time.Now().Add(-72 * time.Hour),
	}
}

func TestSubstitute(t *testing.T) {
	vars := map[string]string{
		"applicant_name": "Ravi Kumar",
		"application_id": "app_1",
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "known tokens replaced",
			in:   "Hello {{applicant_name}}, ref {{application_id}}",
			want: "Hello Ravi Kumar, ref app_1",
		},
		{
			name: "unknown token left verbatim",
			in:   "Deadline: {{deadline}}",
			want: "Deadline: {{deadline}}",
		},
		{
			name: "value containing braces is not re-expanded",
			in:   "{{applicant_name}} {{note}}",
			want: "Ravi Kumar {{note}}",
		},
		{
			name: "empty text",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.in, vars))
		})
	}
}

func TestSubstitute_SinglePass(t *testing.T) {
	// A substituted value holding {{...}} must be emitted literally.
	vars := map[string]string{
		"applicant_name": "{{application_id}}",
		"application_id": "app_1",
	}
	assert.Equal(t, "{{application_id}}", Substitute("{{applicant_name}}", vars))
}

func TestScanVariables(t *testing.T) {
	vars := ScanVariables("Reminder for {{applicant_name}}", "Hi {{applicant_name}}, days inactive: {{days_inactive}}, portal: {{portal_url}}")
	assert.Equal(t, []string{"applicant_name", "days_inactive", "portal_url"}, vars)
}

func TestRender_SubstitutesApplicationAndSupportVars(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Templates().Create(ctx, models.MessageTemplate{
		ID: "tpl_1", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
		Subject:  "Update on {{application_id}}",
		Body:     "Dear {{applicant_name}}, status is {{current_status}}. Questions? {{support_email}}",
		IsActive: true,
	}))

	r := NewRenderer(st.Templates(), testSupport, logger.NewTestLogger(t))
	tpl, content, err := r.Render(ctx, "evt_1", "ch_email", models.RecipientCustomer, testApplication(), nil)
	require.NoError(t, err)

	assert.Equal(t, "tpl_1", tpl.ID)
	assert.Equal(t, "Update on app_1", content.Subject)
	assert.Equal(t, "Dear Ravi Kumar, status is documents_pending. Questions? support@example.com", content.Body)
}

func TestRender_MissingTemplateIsConfigurationError(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	r := NewRenderer(st.Templates(), testSupport, logger.NewTestLogger(t))
	_, _, err := r.Render(ctx, "evt_1", "ch_email", models.RecipientCustomer, testApplication(), nil)

	require.Error(t, err)
	assert.True(t, hberrors.IsConfiguration(err))
}

func TestRender_InactiveTemplateDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Templates().Create(ctx, models.MessageTemplate{
		ID: "tpl_off", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
		Body: "hi", IsActive: false,
	}))

	r := NewRenderer(st.Templates(), testSupport, logger.NewTestLogger(t))
	_, _, err := r.Render(ctx, "evt_1", "ch_email", models.RecipientCustomer, testApplication(), nil)
	assert.True(t, hberrors.IsConfiguration(err))
}

func TestRender_MostRecentlyUpdatedWinsOnAmbiguity(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	older := models.MessageTemplate{
		ID: "tpl_old", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
		Body: "old", IsActive: true, UpdatedAt: time.Now().Add(-time.Hour),
	}
	newer := models.MessageTemplate{
		ID: "tpl_new", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
		Body: "new", IsActive: true, UpdatedAt: time.Now(),
	}
	require.NoError(t, st.Templates().Create(ctx, older))
	require.NoError(t, st.Templates().Create(ctx, newer))

	r := NewRenderer(st.Templates(), testSupport, logger.NewTestLogger(t))
	tpl, content, err := r.Render(ctx, "evt_1", "ch_email", models.RecipientCustomer, testApplication(), nil)
	require.NoError(t, err)

	assert.Equal(t, "tpl_new", tpl.ID)
	assert.Equal(t, "new", content.Body)
}

func TestRender_ExtraVariablesOverride(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Templates().Create(ctx, models.MessageTemplate{
		ID: "tpl_1", EventID: "evt_1", ChannelID: "ch_email", RecipientType: models.RecipientCustomer,
		Body: "Deadline: {{deadline}}", IsActive: true,
	}))

	r := NewRenderer(st.Templates(), testSupport, logger.NewTestLogger(t))
	_, content, err := r.Render(ctx, "evt_1", "ch_email", models.RecipientCustomer, testApplication(),
		map[string]string{"deadline": "2026-09-15"})
	require.NoError(t, err)

	assert.Equal(t, "Deadline: 2026-09-15", content.Body)
}
