package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store/memory"
)

const fixtureYAML = `
channels:
  - id: ch_email
    type: email
    name: Transactional Email
    isActive: true
  - id: ch_sms
    type: sms
    name: SMS Gateway
    isActive: false

events:
  - id: evt_1
    code: APPLICATION_SUBMITTED
    name: Application Submitted
    category: application
    severity: medium
    requiresResponse: false
    isActive: true
  - id: evt_2
    code: DOCUMENTS_PENDING
    name: Documents Pending
    category: document
    severity: high
    requiresResponse: true
    isActive: true
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixtureYAML), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeFixture(t))
	require.NoError(t, err)

	require.Len(t, f.Channels, 2)
	assert.Equal(t, "ch_email", f.Channels[0].ID)
	assert.Equal(t, models.ChannelEmail, f.Channels[0].Type)
	assert.True(t, f.Channels[0].IsActive)
	assert.False(t, f.Channels[1].IsActive)

	require.Len(t, f.Events, 2)
	assert.Equal(t, "DOCUMENTS_PENDING", f.Events[1].Code)
	assert.True(t, f.Events[1].RequiresResponse)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApply_PopulatesEmptyStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()

	f, err := Load(writeFixture(t))
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, st, f, logger.NewTestLogger(t)))

	channels, err := st.Channels().List(ctx)
	require.NoError(t, err)
	assert.Len(t, channels, 2)

	ev, err := st.Events().GetByCode(ctx, "APPLICATION_SUBMITTED")
	require.NoError(t, err)
	assert.False(t, ev.CreatedAt.IsZero())
}

func TestApply_SkipsPopulatedStore(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	require.NoError(t, st.Channels().Create(ctx, models.Channel{
		ID: "ch_existing", Type: models.ChannelTeams, Name: "Ops", IsActive: true,
	}))

	f, err := Load(writeFixture(t))
	require.NoError(t, err)
	require.NoError(t, Apply(ctx, st, f, logger.NewTestLogger(t)))

	channels, err := st.Channels().List(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "ch_existing", channels[0].ID)
}
