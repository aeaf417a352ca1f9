package domain

const (
	RoleFan     = "FAN"
	RoleCreator = "CREATOR"
	RoleAdmin   = "ADMIN"
)

// Ledger entry types. Entries are append-only; a financial event that must
// apply at most once is keyed by (reference_id, type).
const (
	LedgerPurchase            = "purchase"
	LedgerTipSent             = "tip_sent"
	LedgerTipReceived         = "tip_received"
	LedgerPpvUnlock           = "ppv_unlock"
	LedgerPpvReceived         = "ppv_received"
	LedgerSubscriptionEarned  = "subscription_earned"
	LedgerWithdrawal          = "withdrawal"
	LedgerWithdrawalRefund    = "withdrawal_refund"
	LedgerAffiliateCommission = "affiliate_commission"
	LedgerGuildContribution   = "guild_contribution"
	LedgerGuildComboShare     = "guild_combo_share"
	LedgerGuildComboSub       = "guild_combo_subscription"
	LedgerPitchContribution   = "pitch_contribution"
	LedgerPitchReceived       = "pitch_received"
	LedgerPitchRefund         = "pitch_refund"
	LedgerCommitmentLock      = "commitment_lock"
	LedgerCommitmentComplete  = "commitment_complete"
	LedgerCommitmentBonus     = "commitment_bonus"
	LedgerCommitmentEarly     = "commitment_early_withdraw"
	LedgerBonusPrefix         = "bonus_"  // bonus_<grant type>
	LedgerRewardPrefix        = "reward_" // reward_<engagement type>
)

// External payment types.
const (
	PaymentTypeFancoinPurchase = "fancoin_purchase"
	PaymentTypeTip             = "tip"
	PaymentTypePpv             = "ppv"
	PaymentTypeSubscription    = "subscription"
	PaymentTypeGuildCombo      = "guild_combo"
)

// External payment statuses. The pending -> completed transition is the single
// irreversible trigger for ledger effects.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusExpired   = "expired"
)

// Payout statuses.
const (
	PayoutStatusPending         = "pending"
	PayoutStatusPendingApproval = "pending_approval"
	PayoutStatusCompleted       = "completed"
	PayoutStatusRejected        = "rejected"
)

const (
	WithdrawMethodPix          = "pix"
	WithdrawMethodBankTransfer = "bank_transfer"
	WithdrawMethodCrypto       = "crypto"
)

// Bonus grant vesting rules.
const (
	VestingNever     = "never"
	VestingRevenue   = "revenue"
	VestingTime      = "time"
	VestingCondition = "condition"
)

// Bonus grant statuses.
const (
	GrantStatusPending     = "pending"
	GrantStatusActive      = "active"
	GrantStatusFullyVested = "fully_vested"
)

// Creator welcome bonus statuses.
const (
	CreatorBonusPending   = "pending"
	CreatorBonusClaimable = "claimable"
	CreatorBonusClaimed   = "claimed"
)

// Withdrawal risk flags. DAILY_LIMIT_EXCEEDED and DAILY_AMOUNT_EXCEEDED block
// the withdrawal outright; the rest are advisory and only raise the score.
const (
	FlagDailyLimitExceeded     = "DAILY_LIMIT_EXCEEDED"
	FlagDailyAmountExceeded    = "DAILY_AMOUNT_EXCEEDED"
	FlagCooldownActive         = "COOLDOWN_ACTIVE"
	FlagAboveManualThreshold   = "ABOVE_MANUAL_THRESHOLD"
	FlagVeryNewAccount         = "VERY_NEW_ACCOUNT"
	FlagNewAccount             = "NEW_ACCOUNT"
	FlagHighWithdrawalRatio    = "HIGH_WITHDRAWAL_RATIO"
	FlagFullWithdrawableDrain  = "FULL_WITHDRAWABLE_DRAIN"
	FlagNewCreatorLowEarnings  = "NEW_CREATOR_LOW_EARNINGS"
)

// Dynamic setting keys (system_settings table).
const (
	SettingPlatformFeePercent      = "platform_fee_percent"
	SettingFancoinToBrl            = "fancoin_to_brl"
	SettingMinPayout               = "min_payout"
	SettingManualApprovalThreshold = "manual_approval_threshold"
	SettingMaxDailyWithdrawals     = "max_daily_withdrawals"
	SettingMaxDailyAmount          = "max_daily_amount"
	SettingCooldownHours           = "cooldown_hours"
	SettingCreatorBonusEnabled     = "creator_bonus_enabled"
	SettingCreatorBonusCoins       = "creator_bonus_coins"
	SettingCreatorBonusSubs        = "creator_bonus_required_subs"
)

// Commitment configuration.
const (
	CommitmentMinAmount           = 100
	CommitmentMaxAmount           = 1_000_000
	CommitmentCompletionBonusRate = 0.05
	CommitmentEarlyPenaltyRate    = 0.10
)

var CommitmentDurations = []int{30, 60, 90}

const (
	CommitmentStatusActive         = "active"
	CommitmentStatusCompleted      = "completed"
	CommitmentStatusWithdrawnEarly = "withdrawn_early"
)

// Pitch (crowdfunding) configuration.
const (
	PitchMinGoal             = 1000
	PitchMaxGoal             = 10_000_000
	PitchMinDurationDays     = 7
	PitchMaxDurationDays     = 90
	PitchDefaultDurationDays = 30
	PitchPlatformFeeRate     = 0.05
	EcosystemFundRate        = 0.01
)

const (
	CampaignStatusActive = "active"
	CampaignStatusFunded = "funded"
	CampaignStatusFailed = "failed"
)

const (
	ContributionStatusActive   = "active"
	ContributionStatusRefunded = "refunded"
)

// Guild configuration.
const (
	GuildMaxMembers                  = 20
	GuildDefaultContributionPercent  = 3.0
	GuildMaxContributionPercent      = 10.0
)

const (
	GuildRoleLeader = "leader"
	GuildRoleMember = "member"
)

// Affiliate program limits: at most two levels, combined commission <= 50%.
const (
	AffiliateMaxLevels         = 2
	AffiliateMaxTotalPercent   = 50.0
	AffiliateCodeLength        = 8
)

// MaxAffiliateCodeAttempts bounds the retry loop for unique code generation.
const MaxAffiliateCodeAttempts = 10

// CoinPackage is a purchasable FanCoin bundle. Bonus coins are granted on top
// of the base amount; all purchased coins are non-withdrawable.
type CoinPackage struct {
	ID       string  `json:"id"`
	Label    string  `json:"label"`
	Coins    int64   `json:"coins"`
	Bonus    int64   `json:"bonus"`
	PriceBRL float64 `json:"price_brl"`
}

var CoinPackages = []CoinPackage{
	{ID: "starter", Label: "Starter Pack", Coins: 500, Bonus: 0, PriceBRL: 5},
	{ID: "popular", Label: "Popular Pack", Coins: 1000, Bonus: 50, PriceBRL: 10},
	{ID: "plus", Label: "Plus Pack", Coins: 5000, Bonus: 500, PriceBRL: 50},
	{ID: "pro", Label: "Pro Pack", Coins: 10000, Bonus: 1500, PriceBRL: 100},
}

func FindCoinPackage(id string) *CoinPackage {
	for i := range CoinPackages {
		if CoinPackages[i].ID == id {
			return &CoinPackages[i]
		}
	}
	return nil
}
