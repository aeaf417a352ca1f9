package service

import (
	"context"
	"testing"

	"fandreams/internal/domain"
	"fandreams/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseSettlesExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)

	p, charge, err := env.settlement.CreatePurchasePayment(
		context.Background(), fan.ID, "popular", "stub", "fan@example.com")
	require.NoError(t, err)
	require.NotNil(t, charge)
	assert.Equal(t, domain.PaymentStatusPending, p.Status)
	assert.InDelta(t, 10.0, p.Amount, 0.001)

	conf := &payment.Confirmation{
		OrderID:      p.OrderID,
		Status:       payment.StatusCompleted,
		ProviderTxID: "tx-1",
	}
	require.NoError(t, env.settlement.ProcessConfirmation(conf))

	// 1000 coins plus the 50 bonus, all non-withdrawable.
	w := env.wallet(t, fan.ID)
	assert.Equal(t, int64(1050), w.Balance)
	assert.Equal(t, int64(1050), w.BonusBalance)

	// A replayed webhook is a no-op.
	require.NoError(t, env.settlement.ProcessConfirmation(conf))
	assert.Equal(t, int64(1050), env.wallet(t, fan.ID).Balance)

	settled, err := env.settlement.GetPayment(p.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, settled.Status)
	assert.Equal(t, "tx-1", settled.ProviderTxID)
}

func TestFailedConfirmationCreditsNothing(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)

	p, _, err := env.settlement.CreatePurchasePayment(
		context.Background(), fan.ID, "starter", "stub", "fan@example.com")
	require.NoError(t, err)

	require.NoError(t, env.settlement.ProcessConfirmation(&payment.Confirmation{
		OrderID: p.OrderID,
		Status:  payment.StatusFailed,
	}))

	assert.Equal(t, int64(0), env.wallet(t, fan.ID).Balance)
	settled, err := env.settlement.GetPayment(p.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, settled.Status)
}

func TestUnknownOrderConfirmationIsAcknowledged(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.settlement.ProcessConfirmation(&payment.Confirmation{
		OrderID: "never-created",
		Status:  payment.StatusCompleted,
	}))
}

func TestTipSettlementPaysTwoAffiliateLevels(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	aff2 := env.newUser(t, "recruiter", domain.RoleFan)
	aff1 := env.newUser(t, "promoter", domain.RoleFan)
	fan := env.newUser(t, "fan", domain.RoleFan)

	_, err := env.affiliates.ConfigureProgram(creator.ID, true, []LevelConfig{
		{Level: 1, Percent: 10},
		{Level: 2, Percent: 5},
	})
	require.NoError(t, err)

	// aff2 recruits aff1, aff1 recruits the fan.
	link2, err := env.affiliates.CreateLink(aff2.ID, creator.ID)
	require.NoError(t, err)
	_, err = env.affiliates.RegisterReferral(aff1.ID, creator.ID, link2.Code)
	require.NoError(t, err)
	link1, err := env.affiliates.CreateLink(aff1.ID, creator.ID)
	require.NoError(t, err)
	referral, err := env.affiliates.RegisterReferral(fan.ID, creator.ID, link1.Code)
	require.NoError(t, err)
	require.NotNil(t, referral)
	require.NotNil(t, referral.L2AffiliateID)
	assert.Equal(t, aff2.ID, *referral.L2AffiliateID)

	p, _, err := env.settlement.CreateRevenuePayment(
		context.Background(), fan.ID, creator.ID, domain.PaymentTypeTip,
		100, "stub", "fan@example.com", "")
	require.NoError(t, err)
	assert.InDelta(t, 8.0, p.PlatformFee, 0.001)
	assert.InDelta(t, 92.0, p.CreatorAmount, 0.001)

	conf := &payment.Confirmation{OrderID: p.OrderID, Status: payment.StatusCompleted, ProviderTxID: "tx-2"}
	require.NoError(t, env.settlement.ProcessConfirmation(conf))

	// Creator gross R$92: L1 gets 10% (R$9.20 = 920 coins), L2 gets 5%
	// (R$4.60 = 460 coins), creator nets R$78.20 = 7820 coins.
	assert.Equal(t, int64(7820), env.wallet(t, creator.ID).Balance)
	assert.Equal(t, int64(920), env.wallet(t, aff1.ID).Balance)
	assert.Equal(t, int64(460), env.wallet(t, aff2.ID).Balance)

	// Earned commissions are withdrawable.
	assert.Equal(t, int64(920), env.wallet(t, aff1.ID).Withdrawable())

	// Replay changes nothing.
	require.NoError(t, env.settlement.ProcessConfirmation(conf))
	assert.Equal(t, int64(7820), env.wallet(t, creator.ID).Balance)
	assert.Equal(t, int64(920), env.wallet(t, aff1.ID).Balance)
	assert.Equal(t, int64(460), env.wallet(t, aff2.ID).Balance)
}

func TestSubscriptionSettlementUnlocksWelcomeBonus(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.settings.Update(map[string]string{
		domain.SettingCreatorBonusEnabled: "true",
	}))
	creator := env.newUser(t, "creator", domain.RoleCreator)
	fan := env.newUser(t, "fan", domain.RoleFan)

	require.NoError(t, env.bonus.CreateForCreator(creator.ID))
	status, err := env.bonus.Status(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CreatorBonusPending, status.Status)

	p, _, err := env.settlement.CreateRevenuePayment(
		context.Background(), fan.ID, creator.ID, domain.PaymentTypeSubscription,
		10, "stub", "fan@example.com", "")
	require.NoError(t, err)
	require.NoError(t, env.settlement.ProcessConfirmation(&payment.Confirmation{
		OrderID: p.OrderID,
		Status:  payment.StatusCompleted,
	}))

	// One subscriber meets the default requirement.
	status, err = env.bonus.Status(creator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CreatorBonusClaimable, status.Status)

	_, err = env.bonus.Claim(creator.ID)
	require.NoError(t, err)
	w := env.wallet(t, creator.ID)
	assert.Equal(t, int64(920+1000), w.Balance) // R$9.20 earnings + 1000 bonus coins
	assert.Equal(t, int64(1000), w.BonusBalance)

	_, err = env.bonus.Claim(creator.ID)
	require.Error(t, err)
	assert.Equal(t, int64(1920), env.wallet(t, creator.ID).Balance)
}

func TestGuildComboSettlementSplitsAcrossMembers(t *testing.T) {
	env := newTestEnv(t)
	leader := env.newUser(t, "leader", domain.RoleCreator)
	member := env.newUser(t, "member", domain.RoleCreator)
	fan := env.newUser(t, "fan", domain.RoleFan)

	guild, err := env.guildSvc.Create(leader.ID, CreateGuildParams{
		Name:       "Studio",
		Slug:       "studio",
		ComboPrice: 10,
	})
	require.NoError(t, err)
	require.NoError(t, env.guildSvc.Join(guild.ID, member.ID))

	p, _, err := env.settlement.CreateRevenuePayment(
		context.Background(), fan.ID, leader.ID, domain.PaymentTypeGuildCombo,
		10, "stub", "fan@example.com", ComboMetadata(guild.ID))
	require.NoError(t, err)
	require.NoError(t, env.settlement.ProcessConfirmation(&payment.Confirmation{
		OrderID: p.OrderID,
		Status:  payment.StatusCompleted,
	}))

	// R$10 minus the 8% platform fee is R$9.20 = 920 coins, split evenly.
	assert.Equal(t, int64(460), env.wallet(t, leader.ID).Balance)
	assert.Equal(t, int64(460), env.wallet(t, member.ID).Balance)

	g, err := env.guildSvc.Get(guild.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), g.TreasuryBalance)
}
