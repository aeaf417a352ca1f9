package service

import (
	"strconv"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/repository"
)

// SettingsService wraps the system_settings table with typed accessors.
// Every getter falls back to a compiled-in default when the key is missing or
// malformed, so a half-seeded table never breaks money paths.
type SettingsService struct {
	settings *repository.SettingRepository
}

func NewSettingsService(settings *repository.SettingRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Defaults returns the seed values for a fresh installation.
func Defaults() map[string]string {
	return map[string]string{
		domain.SettingPlatformFeePercent:      "8",
		domain.SettingFancoinToBrl:            "0.01",
		domain.SettingMinPayout:               "50",
		domain.SettingManualApprovalThreshold: "500",
		domain.SettingMaxDailyWithdrawals:     "3",
		domain.SettingMaxDailyAmount:          "10000",
		domain.SettingCooldownHours:           "24",
		domain.SettingCreatorBonusEnabled:     "false",
		domain.SettingCreatorBonusCoins:       "1000",
		domain.SettingCreatorBonusSubs:        "1",
	}
}

func (s *SettingsService) Seed() error {
	return s.settings.SeedDefaults(Defaults())
}

func (s *SettingsService) getFloat(key string, fallback float64) float64 {
	raw, err := s.settings.Get(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func (s *SettingsService) getInt(key string, fallback int) int {
	raw, err := s.settings.Get(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func (s *SettingsService) getBool(key string, fallback bool) bool {
	raw, err := s.settings.Get(key)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// PlatformFeeRate returns the fee as a fraction (8 -> 0.08).
func (s *SettingsService) PlatformFeeRate() float64 {
	return s.getFloat(domain.SettingPlatformFeePercent, 8) / 100
}

// CoinRate returns how much one FanCoin is worth in BRL.
func (s *SettingsService) CoinRate() float64 {
	return s.getFloat(domain.SettingFancoinToBrl, 0.01)
}

func (s *SettingsService) MinPayout() float64 {
	return s.getFloat(domain.SettingMinPayout, 50)
}

func (s *SettingsService) ManualApprovalThreshold() float64 {
	return s.getFloat(domain.SettingManualApprovalThreshold, 500)
}

func (s *SettingsService) MaxDailyWithdrawals() int {
	return s.getInt(domain.SettingMaxDailyWithdrawals, 3)
}

func (s *SettingsService) MaxDailyAmount() float64 {
	return s.getFloat(domain.SettingMaxDailyAmount, 10000)
}

func (s *SettingsService) Cooldown() time.Duration {
	return time.Duration(s.getInt(domain.SettingCooldownHours, 24)) * time.Hour
}

func (s *SettingsService) CreatorBonusEnabled() bool {
	return s.getBool(domain.SettingCreatorBonusEnabled, false)
}

func (s *SettingsService) CreatorBonusCoins() int64 {
	return int64(s.getInt(domain.SettingCreatorBonusCoins, 1000))
}

func (s *SettingsService) CreatorBonusRequiredSubs() int {
	return s.getInt(domain.SettingCreatorBonusSubs, 1)
}

func (s *SettingsService) GetAll() (map[string]string, error) {
	return s.settings.GetAll()
}

// Update applies admin changes, restricted to known keys.
func (s *SettingsService) Update(updates map[string]string) error {
	allowed := Defaults()
	for key, value := range updates {
		if _, ok := allowed[key]; !ok {
			return domain.Errorf(domain.CodeInvalidConfiguration, "unknown setting %q", key)
		}
		if err := s.settings.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}
