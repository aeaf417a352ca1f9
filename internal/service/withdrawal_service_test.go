package service

import (
	"testing"
	"time"

	"fandreams/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// agedCreator returns a creator whose wallet and profile are old enough that
// account-age risk flags stay out of the way.
func agedCreator(t *testing.T, env *testEnv, username string) uint {
	t.Helper()
	creator := env.newUser(t, username, domain.RoleCreator)
	env.backdateWallet(t, creator.ID, 60*24*time.Hour)
	env.backdateProfile(t, creator.ID, 60*24*time.Hour)
	return creator.ID
}

func TestWithdrawalBelowMinPayout(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 10000)

	// 1000 coins is R$10, below the R$50 minimum.
	_, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 1000,
		PixKey:     "creator@bank",
	})
	require.Error(t, err)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeBelowMinPayout, derr.Code)
	assert.Equal(t, int64(10000), env.wallet(t, creatorID).Balance)
}

func TestWithdrawalRejectsBonusCoins(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fundBonus(t, creatorID, 10000)

	_, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 6000,
		PixKey:     "creator@bank",
	})
	require.Error(t, err)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeBonusNotWithdrawable, derr.Code)
	assert.Equal(t, int64(10000), env.wallet(t, creatorID).Balance)
}

func TestWithdrawalCleanRequestGoesPending(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 100000)

	result, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 6000,
		PixKey:     "creator@bank",
	})
	require.NoError(t, err)
	assert.False(t, result.NeedsApproval)
	assert.Equal(t, domain.PayoutStatusPending, result.Payout.Status)
	assert.Equal(t, 0, result.Risk.Score)
	assert.Empty(t, result.Risk.Flags)
	assert.InDelta(t, 60.0, result.EstimatedBrl, 0.001)

	// Coins left the wallet at request time.
	assert.Equal(t, int64(94000), env.wallet(t, creatorID).Balance)
}

func TestWithdrawalDailyLimitBlocksFourth(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 100000)

	for i := 0; i < 3; i++ {
		_, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
			Method:     domain.WithdrawMethodPix,
			CoinAmount: 6000,
			PixKey:     "creator@bank",
		})
		require.NoError(t, err)
	}

	_, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 6000,
		PixKey:     "creator@bank",
	})
	require.Error(t, err)
	var derr *domain.Error
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeWithdrawalBlocked, derr.Code)

	// The blocked request never touched the balance.
	assert.Equal(t, int64(82000), env.wallet(t, creatorID).Balance)
}

func TestWithdrawalAboveThresholdNeedsApproval(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 300000)

	// 50000 coins is R$500, exactly the manual approval threshold.
	result, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 50000,
		PixKey:     "creator@bank",
	})
	require.NoError(t, err)
	assert.True(t, result.NeedsApproval)
	assert.Equal(t, domain.PayoutStatusPendingApproval, result.Payout.Status)
	assert.Contains(t, result.Risk.Flags, domain.FlagAboveManualThreshold)
	assert.False(t, result.Risk.Blocked)
}

func TestWithdrawalNewAccountScoreNeedsApproval(t *testing.T) {
	env := newTestEnv(t)
	// Freshly created wallet and creator profile: VERY_NEW_ACCOUNT plus
	// NEW_CREATOR_LOW_EARNINGS push the score past the approval bar even for
	// a small amount.
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, creator.ID, 100000)

	result, err := env.withdrawals.Request(creator.ID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 6000,
		PixKey:     "creator@bank",
	})
	require.NoError(t, err)
	assert.True(t, result.NeedsApproval)
	assert.Contains(t, result.Risk.Flags, domain.FlagVeryNewAccount)
	assert.Contains(t, result.Risk.Flags, domain.FlagNewCreatorLowEarnings)
	assert.GreaterOrEqual(t, result.Risk.Score, manualApprovalScore)
}

func TestAssessRiskDrainAndRatioFlags(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 10000)

	risk, err := env.withdrawals.AssessRisk(creatorID, 96, 9600)
	require.NoError(t, err)
	assert.Contains(t, risk.Flags, domain.FlagHighWithdrawalRatio)
	assert.Contains(t, risk.Flags, domain.FlagFullWithdrawableDrain)
	assert.False(t, risk.Blocked)
	assert.Equal(t, scoreHighRatio+scoreFullDrain, risk.Score)
}

func TestWithdrawalRejectRefundsOnce(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 100000)

	result, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 6000,
		PixKey:     "creator@bank",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(94000), env.wallet(t, creatorID).Balance)

	require.NoError(t, env.withdrawals.Reject(result.Payout.ID, 1, "docs missing"))
	assert.Equal(t, int64(100000), env.wallet(t, creatorID).Balance)

	// A repeated reject loses the status transition and must not pay again.
	err = env.withdrawals.Reject(result.Payout.ID, 1, "again")
	require.Error(t, err)
	assert.Equal(t, int64(100000), env.wallet(t, creatorID).Balance)
}

func TestWithdrawalApproveThenCompleteFromProvider(t *testing.T) {
	env := newTestEnv(t)
	creatorID := agedCreator(t, env, "creator")
	env.fund(t, creatorID, 300000)

	result, err := env.withdrawals.Request(creatorID, WithdrawalRequest{
		Method:     domain.WithdrawMethodPix,
		CoinAmount: 50000,
		PixKey:     "creator@bank",
	})
	require.NoError(t, err)
	require.Equal(t, domain.PayoutStatusPendingApproval, result.Payout.Status)

	// Provider confirmations cannot settle a payout still held for review.
	won, err := env.withdrawals.CompleteFromProvider(result.Payout.OrderID)
	require.NoError(t, err)
	assert.False(t, won)

	require.NoError(t, env.withdrawals.Approve(result.Payout.ID, 1))

	won, err = env.withdrawals.CompleteFromProvider(result.Payout.OrderID)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = env.withdrawals.CompleteFromProvider(result.Payout.OrderID)
	require.NoError(t, err)
	assert.False(t, won)
}
