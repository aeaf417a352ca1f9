package repository

import (
	"testing"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPendingPayment(t *testing.T, repo *PaymentRepository, orderID string) *models.ExternalPayment {
	t.Helper()
	p := &models.ExternalPayment{
		OrderID:  orderID,
		UserID:   1,
		Type:     domain.PaymentTypeFancoinPurchase,
		Amount:   10,
		Provider: "stub",
		Status:   domain.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(p))
	return p
}

func TestMarkCompletedWinsOnce(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	newPendingPayment(t, repo, "order-1")

	won, err := repo.MarkCompleted("order-1", "tx-1")
	require.NoError(t, err)
	assert.True(t, won)

	// Duplicate webhook delivery loses the transition.
	won, err = repo.MarkCompleted("order-1", "tx-1")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMarkStatusNeverDowngradesCompleted(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	newPendingPayment(t, repo, "order-2")

	_, err := repo.MarkCompleted("order-2", "tx-2")
	require.NoError(t, err)

	changed, err := repo.MarkStatus("order-2", domain.PaymentStatusFailed)
	require.NoError(t, err)
	assert.False(t, changed)

	p, err := repo.GetByOrderID("order-2")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, p.Status)
}

func TestExpireStale(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	stale := newPendingPayment(t, repo, "order-3")
	stale.ExpiresAt = &past
	require.NoError(t, repo.db.Save(stale).Error)
	fresh := newPendingPayment(t, repo, "order-4")
	fresh.ExpiresAt = &future
	require.NoError(t, repo.db.Save(fresh).Error)

	expired, err := repo.ExpireStale(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	p, err := repo.GetByOrderID("order-3")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusExpired, p.Status)
}
