package service

import (
	"testing"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) matureCommitment(t *testing.T, commitmentID uint) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	require.NoError(t, e.db.Model(&models.FanCommitment{}).
		Where("id = ?", commitmentID).Update("ends_at", past).Error)
}

func TestCommitmentCreateLocksCoins(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 1000)

	commitment, err := env.commitments.Create(fan.ID, creator.ID, 500, 30)
	require.NoError(t, err)
	assert.Equal(t, domain.CommitmentStatusActive, commitment.Status)
	assert.Equal(t, int64(500), env.wallet(t, fan.ID).Balance)
}

func TestCommitmentCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 1000)

	_, err := env.commitments.Create(fan.ID, fan.ID, 500, 30)
	assert.ErrorIs(t, err, domain.ErrSelfTransfer)

	_, err = env.commitments.Create(fan.ID, creator.ID, 50, 30)
	assert.Error(t, err) // below minimum

	_, err = env.commitments.Create(fan.ID, creator.ID, 500, 45)
	assert.Error(t, err) // unsupported duration

	// A failed debit leaves no active lock behind.
	_, err = env.commitments.Create(fan.ID, creator.ID, 5000, 30)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	active, err := env.commitments.ListByFan(fan.ID)
	require.NoError(t, err)
	for _, c := range active {
		assert.NotEqual(t, domain.CommitmentStatusActive, c.Status)
	}
	assert.Equal(t, int64(1000), env.wallet(t, fan.ID).Balance)
}

func TestCommitmentCompletePaysPrincipalPlusBonus(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 1000)

	commitment, err := env.commitments.Create(fan.ID, creator.ID, 500, 30)
	require.NoError(t, err)

	// Not matured yet.
	_, err = env.commitments.Complete(commitment.ID)
	require.Error(t, err)

	env.matureCommitment(t, commitment.ID)
	result, err := env.commitments.Complete(commitment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.Refunded)
	assert.Equal(t, int64(25), result.Bonus) // 5% of 500

	w := env.wallet(t, fan.ID)
	assert.Equal(t, int64(1025), w.Balance)
	assert.Equal(t, int64(25), w.BonusBalance)

	// The settled commitment cannot pay twice.
	_, err = env.commitments.Complete(commitment.ID)
	require.Error(t, err)
	assert.Equal(t, int64(1025), env.wallet(t, fan.ID).Balance)
}

func TestCommitmentEarlyWithdrawalPenalty(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	other := env.newUser(t, "other", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 1000)

	commitment, err := env.commitments.Create(fan.ID, creator.ID, 500, 60)
	require.NoError(t, err)

	_, err = env.commitments.WithdrawEarly(commitment.ID, other.ID)
	require.Error(t, err) // someone else's commitment

	result, err := env.commitments.WithdrawEarly(commitment.ID, fan.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(450), result.Refunded)
	assert.Equal(t, int64(50), result.Penalty) // 10% of 500

	w := env.wallet(t, fan.ID)
	assert.Equal(t, int64(950), w.Balance)
	assert.Equal(t, int64(0), w.BonusBalance)

	_, err = env.commitments.WithdrawEarly(commitment.ID, fan.ID)
	require.Error(t, err)
	assert.Equal(t, int64(950), env.wallet(t, fan.ID).Balance)
}

func TestCommitmentSweepCompletesMatured(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.RoleFan)
	creator := env.newUser(t, "creator", domain.RoleCreator)
	env.fund(t, fan.ID, 1000)

	matured, err := env.commitments.Create(fan.ID, creator.ID, 300, 30)
	require.NoError(t, err)
	_, err = env.commitments.Create(fan.ID, creator.ID, 200, 30)
	require.NoError(t, err)
	env.matureCommitment(t, matured.ID)

	processed, total, err := env.commitments.SweepMatured(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, processed)

	// 500 spendable + 300 returned + 15 bonus; the second lock stays active.
	assert.Equal(t, int64(815), env.wallet(t, fan.ID).Balance)
}
