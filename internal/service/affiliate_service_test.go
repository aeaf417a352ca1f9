package service

import (
	"testing"

	"fandreams/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureProgramEnforcesCaps(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)

	_, err := env.affiliates.ConfigureProgram(creator.ID, true, []LevelConfig{
		{Level: 1, Percent: 40},
		{Level: 2, Percent: 20},
	})
	assert.Error(t, err) // 60% combined exceeds the cap

	_, err = env.affiliates.ConfigureProgram(creator.ID, true, []LevelConfig{
		{Level: 2, Percent: 10},
	})
	assert.Error(t, err) // levels must start at 1

	view, err := env.affiliates.ConfigureProgram(creator.ID, true, []LevelConfig{
		{Level: 1, Percent: 30},
		{Level: 2, Percent: 20},
	})
	require.NoError(t, err)
	assert.True(t, view.Program.IsActive)
	require.Len(t, view.Levels, 2)
}

func TestCreateLinkNeedsActiveProgram(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	affiliate := env.newUser(t, "affiliate", domain.RoleFan)

	_, err := env.affiliates.CreateLink(affiliate.ID, creator.ID)
	assert.Error(t, err)

	_, err = env.affiliates.ConfigureProgram(creator.ID, true, []LevelConfig{{Level: 1, Percent: 10}})
	require.NoError(t, err)

	_, err = env.affiliates.CreateLink(creator.ID, creator.ID)
	assert.Error(t, err) // self-affiliation

	link, err := env.affiliates.CreateLink(affiliate.ID, creator.ID)
	require.NoError(t, err)
	assert.Len(t, link.Code, domain.AffiliateCodeLength)

	// Repeated calls return the same link.
	again, err := env.affiliates.CreateLink(affiliate.ID, creator.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ID, again.ID)
	assert.Equal(t, link.Code, again.Code)
}

func TestRegisterReferralBindsOnce(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	affiliate := env.newUser(t, "affiliate", domain.RoleFan)
	fan := env.newUser(t, "fan", domain.RoleFan)

	_, err := env.affiliates.ConfigureProgram(creator.ID, true, []LevelConfig{{Level: 1, Percent: 10}})
	require.NoError(t, err)
	link, err := env.affiliates.CreateLink(affiliate.ID, creator.ID)
	require.NoError(t, err)

	// Unknown codes and self-referrals are silently ignored.
	referral, err := env.affiliates.RegisterReferral(fan.ID, creator.ID, "nope1234")
	require.NoError(t, err)
	assert.Nil(t, referral)
	referral, err = env.affiliates.RegisterReferral(affiliate.ID, creator.ID, link.Code)
	require.NoError(t, err)
	assert.Nil(t, referral)

	referral, err = env.affiliates.RegisterReferral(fan.ID, creator.ID, link.Code)
	require.NoError(t, err)
	require.NotNil(t, referral)
	assert.Equal(t, affiliate.ID, referral.L1AffiliateID)
	assert.Nil(t, referral.L2AffiliateID) // no upstream chain

	// The first binding sticks.
	referral, err = env.affiliates.RegisterReferral(fan.ID, creator.ID, link.Code)
	require.NoError(t, err)
	assert.Nil(t, referral)
}

func TestTrackClickIgnoresUnknownCodes(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.affiliates.TrackClick("missing1"))
}
