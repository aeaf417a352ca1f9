package repository

import (
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository is the sole mutation path for FanCoin balances. Every
// mutation is a single conditional UPDATE whose guard the database re-evaluates
// at execution time; RowsAffected == 0 means the guard did not hold and nothing
// was written. No in-process lock is involved; the row-level atomic update is
// the concurrency boundary, which also holds across multiple service instances.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreate provisions a zero-balance wallet on first access. The
// insert-on-conflict-do-nothing plus re-fetch makes concurrent first accesses
// safe: the unique index on user_id guarantees a single row.
func (r *WalletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	w := models.Wallet{UserID: userID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&w).Error; err == nil && w.ID != 0 {
		return &w, nil
	}
	return r.GetByUserID(userID)
}

// Debit subtracts amount under the guard balance >= amount (and, when
// withdrawableOnly, balance - bonus_balance >= amount). Regular spending
// consumes bonus coins first; withdrawable-only debits leave bonus_balance
// untouched. Returns the balance immediately after the mutation, read inside
// the same transaction. Fails with domain.ErrInsufficientBalance when the
// guard does not hold.
func (r *WalletRepository) Debit(userID uint, amount int64, withdrawableOnly bool) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	var newBalance int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"balance":     gorm.Expr("balance - ?", amount),
			"total_spent": gorm.Expr("total_spent + ?", amount),
			"updated_at":  time.Now(),
		}
		q := tx.Model(&models.Wallet{}).Where("user_id = ? AND balance >= ?", userID, amount)
		if withdrawableOnly {
			q = q.Where("balance - bonus_balance >= ?", amount)
		} else {
			updates["bonus_balance"] = gorm.Expr(
				"CASE WHEN bonus_balance >= ? THEN bonus_balance - ? ELSE 0 END", amount, amount)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInsufficientBalance
		}
		var w models.Wallet
		if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
			return err
		}
		newBalance = w.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Credit adds amount unconditionally and bumps total_earned. Bonus credits
// also raise bonus_balance, keeping the coins spendable but non-withdrawable.
func (r *WalletRepository) Credit(userID uint, amount int64, isBonus bool) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if _, err := r.GetOrCreate(userID); err != nil {
		return 0, err
	}
	var newBalance int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"balance":      gorm.Expr("balance + ?", amount),
			"total_earned": gorm.Expr("total_earned + ?", amount),
			"updated_at":   time.Now(),
		}
		if isBonus {
			updates["bonus_balance"] = gorm.Expr("bonus_balance + ?", amount)
		}
		res := tx.Model(&models.Wallet{}).Where("user_id = ?", userID).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		var w models.Wallet
		if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
			return err
		}
		newBalance = w.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Refund is the compensating credit for a previously committed debit
// (rejected payout, failed campaign, completed commitment principal). It
// restores balance only, leaving the monotonic audit counters alone.
func (r *WalletRepository) Refund(userID uint, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if _, err := r.GetOrCreate(userID); err != nil {
		return 0, err
	}
	var newBalance int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Wallet{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		var w models.Wallet
		if err := tx.Where("user_id = ?", userID).First(&w).Error; err != nil {
			return err
		}
		newBalance = w.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Unlock moves amount from the bonus portion to the withdrawable portion by
// decrementing bonus_balance only. Unlocking changes withdrawability, never
// the total balance, since bonus funds are already counted in balance.
func (r *WalletRepository) Unlock(userID uint, amount int64) error {
	if amount <= 0 {
		return domain.ErrInvalidAmount
	}
	return r.db.Model(&models.Wallet{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"bonus_balance": gorm.Expr(
			"CASE WHEN bonus_balance >= ? THEN bonus_balance - ? ELSE 0 END", amount, amount),
		"updated_at": time.Now(),
	}).Error
}
