package database

import (
	"fandreams/config"
	"fandreams/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CreatorProfile{},
		&models.Wallet{},
		&models.LedgerEntry{},
		&models.BonusGrant{},
		&models.CreatorBonus{},
		&models.Payout{},
		&models.ExternalPayment{},
		&models.AffiliateProgram{},
		&models.AffiliateLevel{},
		&models.AffiliateLink{},
		&models.AffiliateReferral{},
		&models.AffiliateCommission{},
		&models.Guild{},
		&models.GuildMember{},
		&models.GuildTreasuryTx{},
		&models.PitchCampaign{},
		&models.PitchContribution{},
		&models.FanCommitment{},
		&models.SystemSetting{},
		&models.ReconciliationItem{},
	)
}
