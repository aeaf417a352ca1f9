package repository

import (
	"testing"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayout(t *testing.T, repo *PayoutRepository, orderID, status string) *models.Payout {
	t.Helper()
	p := &models.Payout{
		CreatorID:     7,
		OrderID:       orderID,
		Amount:        100,
		FancoinAmount: 10000,
		Method:        domain.WithdrawMethodPix,
		Status:        status,
	}
	require.NoError(t, repo.Create(p))
	return p
}

func TestPayoutApproveReleasesToPending(t *testing.T) {
	repo := NewPayoutRepository(newTestDB(t))
	p := newPayout(t, repo, "po-1", domain.PayoutStatusPendingApproval)

	won, err := repo.Approve(p.ID, 99)
	require.NoError(t, err)
	assert.True(t, won)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusPending, got.Status)
	assert.Equal(t, uint(99), *got.ApprovedBy)

	// Second approval finds nothing to transition.
	won, err = repo.Approve(p.ID, 99)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestPayoutRejectWinsOnce(t *testing.T) {
	repo := NewPayoutRepository(newTestDB(t))
	p := newPayout(t, repo, "po-2", domain.PayoutStatusPending)

	won, err := repo.Reject(p.ID, 99, "suspicious")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.Reject(p.ID, 99, "again")
	require.NoError(t, err)
	assert.False(t, won)

	got, err := repo.GetByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PayoutStatusRejected, got.Status)
	assert.Equal(t, "suspicious", got.RejectedReason)
}

func TestPayoutCompleteRequiresPending(t *testing.T) {
	repo := NewPayoutRepository(newTestDB(t))
	newPayout(t, repo, "po-3", domain.PayoutStatusPendingApproval)

	// Held payouts cannot be completed by a provider callback.
	won, err := repo.Complete("po-3")
	require.NoError(t, err)
	assert.False(t, won)

	newPayout(t, repo, "po-4", domain.PayoutStatusPending)
	won, err = repo.Complete("po-4")
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.Complete("po-4")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestPayoutDailyCountersIncludeAllStatuses(t *testing.T) {
	repo := NewPayoutRepository(newTestDB(t))
	newPayout(t, repo, "po-5", domain.PayoutStatusPending)
	newPayout(t, repo, "po-6", domain.PayoutStatusRejected)
	newPayout(t, repo, "po-7", domain.PayoutStatusCompleted)

	count, err := repo.CountSince(7, dayStartForTest())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	total, err := repo.SumAmountSince(7, dayStartForTest())
	require.NoError(t, err)
	assert.InDelta(t, 300.0, total, 0.001)
}

func dayStartForTest() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
