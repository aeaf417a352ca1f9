package service

import (
	"testing"
	"time"

	"fandreams/internal/database"
	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"
	"fandreams/pkg/payment"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service graph over an in-memory database.
type testEnv struct {
	db          *gorm.DB
	wallets     *repository.WalletRepository
	ledger      *repository.LedgerRepository
	payments    *repository.PaymentRepository
	payouts     *repository.PayoutRepository
	guilds      *repository.GuildRepository
	recon       *repository.ReconciliationRepository
	settings    *SettingsService
	vesting     *VestingService
	fancoin     *FancoinService
	withdrawals *WithdrawalService
	affiliates  *AffiliateService
	guildSvc    *GuildService
	pitches     *PitchService
	commitments *CommitmentService
	bonus       *CreatorBonusService
	settlement  *SettlementService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	users := repository.NewUserRepository(db)
	profiles := repository.NewCreatorProfileRepository(db)
	wallets := repository.NewWalletRepository(db)
	ledger := repository.NewLedgerRepository(db)
	payments := repository.NewPaymentRepository(db)
	payouts := repository.NewPayoutRepository(db)
	grants := repository.NewBonusGrantRepository(db)
	settings := repository.NewSettingRepository(db)
	recon := repository.NewReconciliationRepository(db)
	affiliates := repository.NewAffiliateRepository(db)
	guilds := repository.NewGuildRepository(db)
	pitches := repository.NewPitchRepository(db)
	commitments := repository.NewCommitmentRepository(db)
	creatorBonuses := repository.NewCreatorBonusRepository(db)

	settingsSvc := NewSettingsService(settings)
	require.NoError(t, settingsSvc.Seed())
	vestingSvc := NewVestingService(grants, wallets, ledger)
	fancoinSvc := NewFancoinService(wallets, ledger, users, profiles, payments, recon, settingsSvc, vestingSvc)
	withdrawalSvc := NewWithdrawalService(wallets, payouts, profiles, fancoinSvc, settingsSvc)
	affiliateSvc := NewAffiliateService(affiliates, fancoinSvc)
	guildSvc := NewGuildService(guilds, fancoinSvc)
	pitchSvc := NewPitchService(pitches, fancoinSvc)
	commitmentSvc := NewCommitmentService(commitments, fancoinSvc)
	bonusSvc := NewCreatorBonusService(creatorBonuses, profiles, fancoinSvc, settingsSvc)
	settlementSvc := NewSettlementService(payments, recon, profiles, fancoinSvc,
		affiliateSvc, guildSvc, bonusSvc, settingsSvc,
		[]payment.Provider{payment.NewStub()}, 30*time.Minute)

	return &testEnv{
		db:          db,
		wallets:     wallets,
		ledger:      ledger,
		payments:    payments,
		payouts:     payouts,
		guilds:      guilds,
		recon:       recon,
		settings:    settingsSvc,
		vesting:     vestingSvc,
		fancoin:     fancoinSvc,
		withdrawals: withdrawalSvc,
		affiliates:  affiliateSvc,
		guildSvc:    guildSvc,
		pitches:     pitchSvc,
		commitments: commitmentSvc,
		bonus:       bonusSvc,
		settlement:  settlementSvc,
	}
}

// newUser inserts a user and provisions a wallet.
func (e *testEnv) newUser(t *testing.T, username, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, e.db.Create(u).Error)
	_, err := e.wallets.GetOrCreate(u.ID)
	require.NoError(t, err)
	if role == domain.RoleCreator {
		p := &models.CreatorProfile{UserID: u.ID}
		require.NoError(t, e.db.Create(p).Error)
	}
	return u
}

// fund credits withdrawable (earned) coins through the service so the
// credit is reflected in the ledger like any other mutation.
func (e *testEnv) fund(t *testing.T, userID uint, coins int64) {
	t.Helper()
	_, err := e.fancoin.Credit(userID, coins, false, "fund", "", "test funding")
	require.NoError(t, err)
}

// fundBonus credits non-withdrawable coins directly.
func (e *testEnv) fundBonus(t *testing.T, userID uint, coins int64) {
	t.Helper()
	_, err := e.wallets.Credit(userID, coins, true)
	require.NoError(t, err)
}

func (e *testEnv) wallet(t *testing.T, userID uint) *models.Wallet {
	t.Helper()
	w, err := e.wallets.GetByUserID(userID)
	require.NoError(t, err)
	return w
}

// backdateWallet ages the wallet so risk flags about account age stay quiet.
func (e *testEnv) backdateWallet(t *testing.T, userID uint, d time.Duration) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Wallet{}).Where("user_id = ?", userID).
		Update("created_at", time.Now().Add(-d)).Error)
}

func (e *testEnv) backdateProfile(t *testing.T, userID uint, d time.Duration) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.CreatorProfile{}).Where("user_id = ?", userID).
		Update("created_at", time.Now().Add(-d)).Error)
}
