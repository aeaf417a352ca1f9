package service

import (
	"testing"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) endCampaign(t *testing.T, campaignID uint) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, e.db.Model(&models.PitchCampaign{}).
		Where("id = ?", campaignID).Update("ends_at", past).Error)
}

func TestPitchContributionFeeSplit(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	fan := env.newUser(t, "fan", domain.RoleFan)
	env.fund(t, fan.ID, 2000)

	campaign, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "New album", GoalAmount: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PitchDefaultDurationDays, campaign.DurationDays)

	view, err := env.pitches.Contribute(campaign.ID, fan.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(50), view.PlatformFee)  // 5%
	assert.Equal(t, int64(10), view.EcosystemFee) // 1%
	assert.Equal(t, int64(940), view.CreatorReceived)
	assert.False(t, view.Funded)

	assert.Equal(t, int64(1000), env.wallet(t, fan.ID).Balance)
	assert.Equal(t, int64(940), env.wallet(t, creator.ID).Balance)

	got, err := env.pitches.Get(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.RaisedAmount)
	assert.Equal(t, 1, got.TotalContributors)
}

func TestPitchFundsAtGoal(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	fan := env.newUser(t, "fan", domain.RoleFan)
	env.fund(t, fan.ID, 2000)

	campaign, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "Short film", GoalAmount: 1000,
	})
	require.NoError(t, err)

	view, err := env.pitches.Contribute(campaign.ID, fan.ID, 1000)
	require.NoError(t, err)
	assert.True(t, view.Funded)

	got, err := env.pitches.Get(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusFunded, got.Status)

	// A funded campaign accepts no more money.
	_, err = env.pitches.Contribute(campaign.ID, fan.ID, 100)
	require.Error(t, err)
	assert.Equal(t, int64(1000), env.wallet(t, fan.ID).Balance)
}

func TestPitchRejectsSelfAndBadGoals(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, creator.ID, 5000)

	_, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "Tiny", GoalAmount: 500,
	})
	assert.Error(t, err)

	campaign, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "Real", GoalAmount: 1000,
	})
	require.NoError(t, err)
	_, err = env.pitches.Contribute(campaign.ID, creator.ID, 100)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
}

func TestPitchRefundRestoresContributors(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	fan := env.newUser(t, "fan", domain.RoleFan)
	env.fund(t, fan.ID, 1000)

	campaign, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "Doc", GoalAmount: 10000,
	})
	require.NoError(t, err)
	_, err = env.pitches.Contribute(campaign.ID, fan.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, int64(500), env.wallet(t, fan.ID).Balance)

	refunded, err := env.pitches.RefundCampaign(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refunded)
	assert.Equal(t, int64(1000), env.wallet(t, fan.ID).Balance)

	got, err := env.pitches.Get(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusFailed, got.Status)

	// A second pass finds every contribution already refunded.
	refunded, err = env.pitches.RefundCampaign(campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, refunded)
	assert.Equal(t, int64(1000), env.wallet(t, fan.ID).Balance)
}

func TestPitchSweepSettlesEndedCampaigns(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	fan := env.newUser(t, "fan", domain.RoleFan)
	env.fund(t, fan.ID, 5000)

	// Below goal at the deadline: contributions come back.
	failing, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "Underfunded", GoalAmount: 10000,
	})
	require.NoError(t, err)
	_, err = env.pitches.Contribute(failing.ID, fan.ID, 1000)
	require.NoError(t, err)
	env.endCampaign(t, failing.ID)

	// At goal: flips to funded, nothing moves.
	funded, err := env.pitches.CreateCampaign(creator.ID, CreateCampaignParams{
		Title: "Funded", GoalAmount: 1000,
	})
	require.NoError(t, err)
	_, err = env.pitches.Contribute(funded.ID, fan.ID, 1000)
	require.NoError(t, err)
	env.endCampaign(t, funded.ID)

	processed, total, err := env.pitches.SweepEnded(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, processed)

	got, err := env.pitches.Get(failing.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusFailed, got.Status)
	assert.Equal(t, int64(4000), env.wallet(t, fan.ID).Balance)

	got, err = env.pitches.Get(funded.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignStatusFunded, got.Status)
}
