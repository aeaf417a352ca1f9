package service

import (
	"testing"

	"fandreams/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTipConservesCoins(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 1000)

	result, err := env.fancoin.SendTip(fan.ID, creator.ID, 100, "tip-1")
	require.NoError(t, err)

	assert.Equal(t, int64(100), result.Sent)
	assert.Equal(t, int64(8), result.PlatformFee)
	assert.Equal(t, int64(92), result.CreatorReceived)
	assert.Equal(t, result.Sent, result.PlatformFee+result.CreatorReceived)

	assert.Equal(t, int64(900), env.wallet(t, fan.ID).Balance)
	assert.Equal(t, int64(92), env.wallet(t, creator.ID).Balance)
}

func TestSendTipRejectsSelf(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	env.fund(t, fan.ID, 1000)

	_, err := env.fancoin.SendTip(fan.ID, fan.ID, 100, "tip-2")
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)
	assert.Equal(t, int64(1000), env.wallet(t, fan.ID).Balance)
}

func TestSendTipInsufficientLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 50)

	_, err := env.fancoin.SendTip(fan.ID, creator.ID, 100, "tip-3")
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, int64(0), env.wallet(t, creator.ID).Balance)

	entries, err := env.fancoin.GetTransactions(creator.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnlockPpvIdempotentPerPost(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 5000)

	result, err := env.fancoin.UnlockPpv(fan.ID, creator.ID, "post-9", 10) // R$10 = 1000 coins
	require.NoError(t, err)
	assert.True(t, result.Unlocked)
	assert.Equal(t, int64(1000), result.FancoinsSpent)
	assert.Equal(t, int64(4000), result.NewBalance)

	_, err = env.fancoin.UnlockPpv(fan.ID, creator.ID, "post-9", 10)
	require.Error(t, err)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeAlreadyExists, derr.Code)
	assert.Equal(t, int64(4000), env.wallet(t, fan.ID).Balance)

	// Creator got the post-fee share exactly once.
	assert.Equal(t, int64(920), env.wallet(t, creator.ID).Balance)
}

func TestCreditPurchaseDuplicateOrderIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)

	balance, duplicate, err := env.fancoin.CreditPurchase(fan.ID, 500, "Starter Pack", "order-1")
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Equal(t, int64(500), balance)

	balance, duplicate, err = env.fancoin.CreditPurchase(fan.ID, 500, "Starter Pack", "order-1")
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, int64(500), balance)

	// Purchased coins are spendable but not withdrawable.
	w := env.wallet(t, fan.ID)
	assert.Equal(t, int64(500), w.BonusBalance)
	assert.Equal(t, int64(0), w.Withdrawable())
}

func TestRewardEngagementIsNonWithdrawable(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)

	_, err := env.fancoin.RewardEngagement(fan.ID, "daily_login", 10)
	require.NoError(t, err)

	w := env.wallet(t, fan.ID)
	assert.Equal(t, int64(10), w.Balance)
	assert.Equal(t, int64(10), w.BonusBalance)

	entries, err := env.fancoin.GetTransactions(fan.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "reward_daily_login", entries[0].Type)
}

func TestLedgerBalanceAfterMatchesWallet(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 300)

	_, err := env.fancoin.SendTip(fan.ID, creator.ID, 100, "tip-4")
	require.NoError(t, err)
	_, err = env.fancoin.SendTip(fan.ID, creator.ID, 50, "tip-5")
	require.NoError(t, err)

	entries, err := env.fancoin.GetTransactions(fan.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Newest first.
	assert.Equal(t, int64(150), entries[0].BalanceAfter)
	assert.Equal(t, int64(-50), entries[0].Amount)
	assert.Equal(t, int64(200), entries[1].BalanceAfter)
	assert.Equal(t, int64(300), entries[2].BalanceAfter)
}
