package repository

import (
	"time"

	"fandreams/internal/models"

	"gorm.io/gorm"
)

type GuildRepository struct {
	db *gorm.DB
}

func NewGuildRepository(db *gorm.DB) *GuildRepository {
	return &GuildRepository{db: db}
}

func (r *GuildRepository) Create(g *models.Guild, leader *models.GuildMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		leader.GuildID = g.ID
		return tx.Create(leader).Error
	})
}

func (r *GuildRepository) GetByID(id uint) (*models.Guild, error) {
	var g models.Guild
	if err := r.db.First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuildRepository) GetBySlug(slug string) (*models.Guild, error) {
	var g models.Guild
	if err := r.db.Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuildRepository) GetMemberByUserID(userID uint) (*models.GuildMember, error) {
	var m models.GuildMember
	err := r.db.Where("user_id = ?", userID).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GuildRepository) ListMembers(guildID uint) ([]models.GuildMember, error) {
	var members []models.GuildMember
	err := r.db.Where("guild_id = ?", guildID).Order("joined_at ASC").Find(&members).Error
	return members, err
}

// AddMember claims a seat with a conditional increment on total_members, then
// inserts the member row inside the same transaction. Returns false when the
// guild is full or inactive.
func (r *GuildRepository) AddMember(guildID uint, member *models.GuildMember) (bool, error) {
	joined := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Guild{}).
			Where("id = ? AND is_active = ? AND total_members < max_members", guildID, true).
			Updates(map[string]interface{}{
				"total_members": gorm.Expr("total_members + 1"),
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		member.GuildID = guildID
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		joined = true
		return nil
	})
	return joined, err
}

// CreditTreasury adds amount to the guild treasury and appends the treasury
// ledger row with the balance captured in the same transaction.
func (r *GuildRepository) CreditTreasury(guildID, userID uint, amount int64, txType, description string) (int64, error) {
	var balanceAfter int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Guild{}).Where("id = ?", guildID).
			Updates(map[string]interface{}{
				"treasury_balance": gorm.Expr("treasury_balance + ?", amount),
				"updated_at":       time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var g models.Guild
		if err := tx.First(&g, guildID).Error; err != nil {
			return err
		}
		balanceAfter = g.TreasuryBalance
		entry := models.GuildTreasuryTx{
			GuildID:      guildID,
			UserID:       userID,
			Type:         txType,
			Amount:       amount,
			BalanceAfter: balanceAfter,
			Description:  description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.GuildMember{}).
			Where("guild_id = ? AND user_id = ?", guildID, userID).
			Update("total_contributed", gorm.Expr("total_contributed + ?", amount)).Error
	})
	return balanceAfter, err
}

func (r *GuildRepository) IncrementSubscribers(guildID uint, delta int) error {
	return r.db.Model(&models.Guild{}).Where("id = ?", guildID).
		Updates(map[string]interface{}{
			"total_subscribers": gorm.Expr("total_subscribers + ?", delta),
			"updated_at":        time.Now(),
		}).Error
}

func (r *GuildRepository) ListTreasuryTransactions(guildID uint, limit int) ([]models.GuildTreasuryTx, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var txs []models.GuildTreasuryTx
	err := r.db.Where("guild_id = ?", guildID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&txs).Error
	return txs, err
}
