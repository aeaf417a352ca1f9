package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"fandreams/internal/domain"
	"fandreams/internal/models"
	"fandreams/internal/repository"
	"fandreams/pkg/payment"

	"github.com/google/uuid"
)

// SettlementService turns confirmed external payments into wallet effects.
// The payment row's pending -> completed transition is the only trigger: a
// webhook replayed ten times produces one credit. Effect failures after the
// transition are logged and queued for reconciliation; the settlement itself
// still reports success so the provider stops retrying.
type SettlementService struct {
	payments  *repository.PaymentRepository
	recon     *repository.ReconciliationRepository
	profiles  *repository.CreatorProfileRepository
	fancoin   *FancoinService
	affiliate *AffiliateService
	guild     *GuildService
	bonus     *CreatorBonusService
	settings  *SettingsService
	providers map[string]payment.Provider
	expiry    time.Duration
}

func NewSettlementService(
	payments *repository.PaymentRepository,
	recon *repository.ReconciliationRepository,
	profiles *repository.CreatorProfileRepository,
	fancoin *FancoinService,
	affiliate *AffiliateService,
	guild *GuildService,
	bonus *CreatorBonusService,
	settings *SettingsService,
	providers []payment.Provider,
	expiry time.Duration,
) *SettlementService {
	byName := make(map[string]payment.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &SettlementService{
		payments:  payments,
		recon:     recon,
		profiles:  profiles,
		fancoin:   fancoin,
		affiliate: affiliate,
		guild:     guild,
		bonus:     bonus,
		settings:  settings,
		providers: byName,
		expiry:    expiry,
	}
}

func (s *SettlementService) Provider(name string) (payment.Provider, bool) {
	p, ok := s.providers[name]
	return p, ok
}

type purchaseMetadata struct {
	PackageID string `json:"package_id"`
}

type comboMetadata struct {
	GuildID uint `json:"guild_id"`
}

// CreatePurchasePayment opens a charge for a coin package.
func (s *SettlementService) CreatePurchasePayment(ctx context.Context, userID uint, packageID, providerName, payerEmail string) (*models.ExternalPayment, *payment.Charge, error) {
	pkg := domain.FindCoinPackage(packageID)
	if pkg == nil {
		return nil, nil, domain.Errorf(domain.CodeNotFound, "unknown coin package %q", packageID)
	}
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown payment provider %q", providerName)
	}

	meta, _ := json.Marshal(purchaseMetadata{PackageID: pkg.ID})
	orderID := uuid.NewString()
	expiresAt := time.Now().Add(s.expiry)
	p := &models.ExternalPayment{
		OrderID:   orderID,
		UserID:    userID,
		Type:      domain.PaymentTypeFancoinPurchase,
		Amount:    pkg.PriceBRL,
		Provider:  provider.Name(),
		Status:    domain.PaymentStatusPending,
		Metadata:  string(meta),
		ExpiresAt: &expiresAt,
	}
	if err := s.payments.Create(p); err != nil {
		return nil, nil, err
	}
	charge, err := provider.CreateCharge(ctx, payment.ChargeRequest{
		OrderID:     orderID,
		AmountBRL:   pkg.PriceBRL,
		Description: fmt.Sprintf("FanDreams %s (%d FanCoins)", pkg.Label, pkg.Coins),
		PayerEmail:  payerEmail,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		if _, markErr := s.payments.MarkStatus(orderID, domain.PaymentStatusFailed); markErr != nil {
			log.Printf("[settlement] mark failed after charge error (order=%s): %v", orderID, markErr)
		}
		return nil, nil, err
	}
	return p, charge, nil
}

// CreateRevenuePayment opens a fiat charge whose proceeds go to a creator
// (tip, ppv, subscription) or a guild (combo). The platform fee split is fixed
// at creation time so a later fee change cannot alter an in-flight payment.
func (s *SettlementService) CreateRevenuePayment(ctx context.Context, userID, recipientID uint, paymentType string, amountBRL float64, providerName, payerEmail, metadata string) (*models.ExternalPayment, *payment.Charge, error) {
	if amountBRL <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	switch paymentType {
	case domain.PaymentTypeTip, domain.PaymentTypePpv, domain.PaymentTypeSubscription, domain.PaymentTypeGuildCombo:
	default:
		return nil, nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown payment type %q", paymentType)
	}
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, nil, domain.Errorf(domain.CodeInvalidConfiguration, "unknown payment provider %q", providerName)
	}

	fee, creatorAmount := SplitFiat(amountBRL, s.settings.PlatformFeeRate())
	orderID := uuid.NewString()
	expiresAt := time.Now().Add(s.expiry)
	p := &models.ExternalPayment{
		OrderID:       orderID,
		UserID:        userID,
		RecipientID:   &recipientID,
		Type:          paymentType,
		Amount:        amountBRL,
		PlatformFee:   fee,
		CreatorAmount: creatorAmount,
		Provider:      provider.Name(),
		Status:        domain.PaymentStatusPending,
		Metadata:      metadata,
		ExpiresAt:     &expiresAt,
	}
	if err := s.payments.Create(p); err != nil {
		return nil, nil, err
	}
	charge, err := provider.CreateCharge(ctx, payment.ChargeRequest{
		OrderID:     orderID,
		AmountBRL:   amountBRL,
		Description: fmt.Sprintf("FanDreams %s", paymentType),
		PayerEmail:  payerEmail,
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		if _, markErr := s.payments.MarkStatus(orderID, domain.PaymentStatusFailed); markErr != nil {
			log.Printf("[settlement] mark failed after charge error (order=%s): %v", orderID, markErr)
		}
		return nil, nil, err
	}
	return p, charge, nil
}

// ProcessConfirmation settles one provider confirmation. Unknown orders and
// duplicate completions are quiet no-ops so the webhook endpoint can always
// acknowledge.
func (s *SettlementService) ProcessConfirmation(conf *payment.Confirmation) error {
	p, err := s.payments.GetByOrderID(conf.OrderID)
	if err != nil {
		log.Printf("[settlement] confirmation for unknown order %s (status=%s)", conf.OrderID, conf.Status)
		return nil
	}

	switch conf.Status {
	case payment.StatusFailed, payment.StatusRefunded, payment.StatusExpired:
		if _, err := s.payments.MarkStatus(conf.OrderID, conf.Status); err != nil {
			return err
		}
		return nil
	case payment.StatusCompleted:
	default:
		log.Printf("[settlement] ignoring intermediate status %q for order %s", conf.Status, conf.OrderID)
		return nil
	}

	won, err := s.payments.MarkCompleted(conf.OrderID, conf.ProviderTxID)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}
	if err := s.applyEffects(p); err != nil {
		log.Printf("[settlement] effects failed for completed order %s: %v", conf.OrderID, err)
		item := &models.ReconciliationItem{
			Kind:        "settlement",
			UserID:      p.UserID,
			ReferenceID: p.OrderID,
			Detail:      fmt.Sprintf("effects for %s payment failed: %v", p.Type, err),
		}
		if reconErr := s.recon.Create(item); reconErr != nil {
			log.Printf("[settlement] reconciliation write failed (order=%s): %v", p.OrderID, reconErr)
		}
	}
	return nil
}

func (s *SettlementService) applyEffects(p *models.ExternalPayment) error {
	switch p.Type {
	case domain.PaymentTypeFancoinPurchase:
		return s.applyPurchase(p)
	case domain.PaymentTypeTip, domain.PaymentTypePpv, domain.PaymentTypeSubscription:
		return s.applyCreatorRevenue(p)
	case domain.PaymentTypeGuildCombo:
		return s.applyGuildCombo(p)
	default:
		return domain.Errorf(domain.CodeInvalidConfiguration, "unknown payment type %q", p.Type)
	}
}

func (s *SettlementService) applyPurchase(p *models.ExternalPayment) error {
	var meta purchaseMetadata
	if err := json.Unmarshal([]byte(p.Metadata), &meta); err != nil {
		return fmt.Errorf("purchase metadata: %w", err)
	}
	pkg := domain.FindCoinPackage(meta.PackageID)
	if pkg == nil {
		return domain.Errorf(domain.CodeNotFound, "coin package %q no longer exists", meta.PackageID)
	}
	_, duplicate, err := s.fancoin.CreditPurchase(p.UserID, pkg.Coins+pkg.Bonus, pkg.Label, p.OrderID)
	if err != nil {
		return err
	}
	if duplicate {
		log.Printf("[settlement] purchase %s already credited", p.OrderID)
	}
	return nil
}

var revenueLedgerTypes = map[string]string{
	domain.PaymentTypeTip:          domain.LedgerTipReceived,
	domain.PaymentTypePpv:          domain.LedgerPpvReceived,
	domain.PaymentTypeSubscription: domain.LedgerSubscriptionEarned,
}

func (s *SettlementService) applyCreatorRevenue(p *models.ExternalPayment) error {
	if p.RecipientID == nil {
		return domain.Errorf(domain.CodeInvalidConfiguration, "revenue payment %s has no recipient", p.OrderID)
	}
	creatorID := *p.RecipientID

	totalCommission, _, err := s.affiliate.DistributeCommissions(p.ID, p.UserID, creatorID, p.CreatorAmount)
	if err != nil {
		log.Printf("[settlement] commission distribution failed (order=%s): %v", p.OrderID, err)
	}
	creatorNet := Round2(p.CreatorAmount - totalCommission)
	coins, err := s.fancoin.CreditEarnings(creatorID, creatorNet, revenueLedgerTypes[p.Type], p.OrderID,
		fmt.Sprintf("Earnings from %s payment", p.Type))
	if err != nil {
		return err
	}
	if _, err := s.guild.ContributeFromEarnings(creatorID, coins); err != nil {
		log.Printf("[settlement] guild contribution failed (order=%s creator=%d): %v", p.OrderID, creatorID, err)
	}
	if p.Type == domain.PaymentTypeSubscription {
		if err := s.profiles.IncrementSubscribers(creatorID, 1); err != nil {
			log.Printf("[settlement] subscriber bump failed (creator=%d): %v", creatorID, err)
		}
		if err := s.bonus.CheckEligibility(creatorID); err != nil {
			log.Printf("[settlement] bonus eligibility check failed (creator=%d): %v", creatorID, err)
		}
	}
	return nil
}

func (s *SettlementService) applyGuildCombo(p *models.ExternalPayment) error {
	var meta comboMetadata
	if err := json.Unmarshal([]byte(p.Metadata), &meta); err != nil || meta.GuildID == 0 {
		return fmt.Errorf("combo metadata for order %s: %w", p.OrderID, err)
	}
	coins := CoinsFromFiat(p.CreatorAmount, s.settings.CoinRate())
	if coins <= 0 {
		return nil
	}
	_, err := s.guild.DistributeCombo(meta.GuildID, coins, p.OrderID)
	return err
}

func (s *SettlementService) GetPayment(orderID string) (*models.ExternalPayment, error) {
	return s.payments.GetByOrderID(orderID)
}

func (s *SettlementService) ListByUser(userID uint, limit int) ([]models.ExternalPayment, error) {
	return s.payments.ListByUser(userID, limit)
}

// ComboMetadata builds the metadata blob for a guild combo payment.
func ComboMetadata(guildID uint) string {
	meta, _ := json.Marshal(comboMetadata{GuildID: guildID})
	return string(meta)
}

// ParseUintParam is a small helper shared by handlers for path IDs.
func ParseUintParam(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.Errorf(domain.CodeInvalidConfiguration, "invalid id %q", raw)
	}
	return uint(v), nil
}
