package repository

import (
	"sync"
	"testing"

	"fandreams/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletGetOrCreate(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))

	w1, err := repo.GetOrCreate(1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), w1.UserID)
	assert.Equal(t, int64(0), w1.Balance)

	w2, err := repo.GetOrCreate(1)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
}

func TestWalletDebitInsufficient(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	_, err := repo.Credit(1, 50, false)
	require.NoError(t, err)

	_, err = repo.Debit(1, 100, false)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), w.Balance)
	assert.Equal(t, int64(0), w.TotalSpent)
}

func TestWalletDebitConsumesBonusFirst(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	_, err := repo.Credit(1, 100, false)
	require.NoError(t, err)
	_, err = repo.Credit(1, 60, true)
	require.NoError(t, err)

	newBalance, err := repo.Debit(1, 40, false)
	require.NoError(t, err)
	assert.Equal(t, int64(120), newBalance)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), w.BonusBalance)
	assert.Equal(t, int64(100), w.Withdrawable())
}

func TestWalletDebitBonusNeverNegative(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	_, err := repo.Credit(1, 100, false)
	require.NoError(t, err)
	_, err = repo.Credit(1, 30, true)
	require.NoError(t, err)

	_, err = repo.Debit(1, 80, false)
	require.NoError(t, err)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), w.Balance)
	assert.Equal(t, int64(0), w.BonusBalance)
}

func TestWalletDebitWithdrawableOnly(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	// 100 total of which 100 is bonus: withdrawable portion is zero.
	_, err := repo.Credit(1, 100, true)
	require.NoError(t, err)

	_, err = repo.Debit(1, 50, true)
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// Regular spending of the same coins works.
	_, err = repo.Debit(1, 50, false)
	require.NoError(t, err)

	// Earned coins raise the withdrawable portion.
	_, err = repo.Credit(1, 200, false)
	require.NoError(t, err)
	_, err = repo.Debit(1, 150, true)
	require.NoError(t, err)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(100), w.Balance)
	// Withdrawable-only debits leave the bonus portion untouched.
	assert.Equal(t, int64(50), w.BonusBalance)
}

func TestWalletConcurrentDebitsExactlyK(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	_, err := repo.Credit(1, 1000, false)
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Debit(1, 100, false)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 10, succeeded)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.Balance)
	assert.Equal(t, int64(1000), w.TotalSpent)
}

func TestWalletRefundRestoresBalanceOnly(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	_, err := repo.Credit(1, 500, false)
	require.NoError(t, err)
	_, err = repo.Debit(1, 200, false)
	require.NoError(t, err)

	newBalance, err := repo.Refund(1, 200)
	require.NoError(t, err)
	assert.Equal(t, int64(500), newBalance)

	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	// Audit counters stay monotonic across the refund.
	assert.Equal(t, int64(500), w.TotalEarned)
	assert.Equal(t, int64(200), w.TotalSpent)
}

func TestWalletUnlock(t *testing.T) {
	repo := NewWalletRepository(newTestDB(t))
	_, err := repo.Credit(1, 300, true)
	require.NoError(t, err)

	require.NoError(t, repo.Unlock(1, 120))
	w, err := repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), w.Balance)
	assert.Equal(t, int64(180), w.BonusBalance)
	assert.Equal(t, int64(120), w.Withdrawable())

	// Unlocking more than remains clamps at zero.
	require.NoError(t, repo.Unlock(1, 999))
	w, err = repo.GetByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), w.BonusBalance)
	assert.Equal(t, int64(300), w.Balance)
}
