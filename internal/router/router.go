package router

import (
	"time"

	"fandreams/config"
	"fandreams/internal/domain"
	"fandreams/internal/handler"
	"fandreams/internal/middleware"
	"fandreams/internal/repository"
	"fandreams/internal/service"
	"fandreams/internal/ws"
	"fandreams/pkg/payment"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// App wires repositories, services, and handlers together and owns the
// background sweeper.
type App struct {
	Engine  *gin.Engine
	Sweeper *service.Sweeper
}

func New(cfg *config.Config, db *gorm.DB) *App {
	// repositories
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

	// services
	settingsSvc := service.NewSettingsService(settings)
	vestingSvc := service.NewVestingService(grants, wallets, ledger)
	fancoinSvc := service.NewFancoinService(wallets, ledger, users, profiles, payments, recon, settingsSvc, vestingSvc)
	withdrawalSvc := service.NewWithdrawalService(wallets, payouts, profiles, fancoinSvc, settingsSvc)
	affiliateSvc := service.NewAffiliateService(affiliates, fancoinSvc)
	guildSvc := service.NewGuildService(guilds, fancoinSvc)
	pitchSvc := service.NewPitchService(pitches, fancoinSvc)
	commitmentSvc := service.NewCommitmentService(commitments, fancoinSvc)
	bonusSvc := service.NewCreatorBonusService(creatorBonuses, profiles, fancoinSvc, settingsSvc)
	authSvc := service.NewAuthService(&cfg.JWT, users, profiles, wallets, bonusSvc)

	providers := []payment.Provider{
		payment.NewMercadoPago(cfg.Payment.MercadoPagoAccessToken, cfg.Payment.WebhookSecret),
		payment.NewNowPayments(cfg.Payment.NowPaymentsAPIKey, cfg.Payment.WebhookSecret),
	}
	if cfg.Server.Env != "production" {
		providers = append(providers, payment.NewStub())
	}
	settlementSvc := service.NewSettlementService(payments, recon, profiles, fancoinSvc,
		affiliateSvc, guildSvc, bonusSvc, settingsSvc, providers, cfg.Payment.PaymentExpiry)

	hub := ws.NewHub()
	fancoinSvc.SetNotifier(hub)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	walletH := handler.NewWalletHandler(fancoinSvc, vestingSvc)
	withdrawalH := handler.NewWithdrawalHandler(withdrawalSvc, settingsSvc)
	paymentH := handler.NewPaymentHandler(settlementSvc, withdrawalSvc)
	affiliateH := handler.NewAffiliateHandler(affiliateSvc)
	guildH := handler.NewGuildHandler(guildSvc)
	pitchH := handler.NewPitchHandler(pitchSvc)
	commitmentH := handler.NewCommitmentHandler(commitmentSvc)
	bonusH := handler.NewBonusHandler(bonusSvc)
	adminH := handler.NewAdminHandler(withdrawalSvc, settingsSvc, vestingSvc, fancoinSvc, pitchSvc, recon)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	limiter := middleware.NewInMemoryRateLimiter(120, time.Minute)
	r.Use(middleware.RateLimit(limiter))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	api := r.Group("/api/v1")

	// public
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/refresh", authH.Refresh)
	api.GET("/packages", paymentH.ListPackages)
	api.GET("/affiliates/r/:code", affiliateH.TrackClick)
	api.GET("/pitches", pitchH.ListActive)
	api.GET("/pitches/:id", pitchH.Get)
	api.GET("/guilds/:id", guildH.Get)
	api.POST("/webhooks/payments/:provider", paymentH.Webhook)
	api.POST("/webhooks/payouts/:provider", paymentH.PayoutWebhook)

	// authenticated
	authed := api.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT))
	{
		authed.POST("/auth/become-creator", authH.BecomeCreator)

		authed.GET("/wallet", walletH.GetWallet)
		authed.GET("/wallet/transactions", walletH.GetTransactions)
		authed.GET("/wallet/grants", walletH.ListGrants)
		authed.POST("/wallet/tip", walletH.SendTip)
		authed.POST("/wallet/ppv", walletH.UnlockPpv)

		authed.POST("/payments/purchase", paymentH.CreatePurchase)
		authed.POST("/payments/revenue", paymentH.CreateRevenuePayment)
		authed.GET("/payments", paymentH.ListPayments)
		authed.GET("/payments/:orderId", paymentH.GetPayment)

		authed.POST("/affiliates/links", affiliateH.CreateLink)
		authed.POST("/affiliates/referrals", affiliateH.RegisterReferral)
		authed.GET("/affiliates/dashboard", affiliateH.Dashboard)
		authed.GET("/affiliates/programs/:creatorId", affiliateH.GetProgram)

		authed.GET("/me/guild", guildH.MyGuild)
		authed.POST("/guilds/:id/join", guildH.Join)
		authed.POST("/guilds/:id/combo", guildH.SubscribeCombo)
		authed.GET("/guilds/:id/treasury", guildH.TreasuryHistory)

		authed.POST("/pitches/:id/contribute", pitchH.Contribute)

		authed.POST("/commitments", commitmentH.Create)
		authed.GET("/commitments", commitmentH.List)
		authed.POST("/commitments/:id/complete", commitmentH.Complete)
		authed.POST("/commitments/:id/withdraw-early", commitmentH.WithdrawEarly)

		authed.GET("/ws", func(c *gin.Context) {
			hub.Serve(c, middleware.GetUserID(c))
		})
	}

	// creator-only
	creator := authed.Group("")
	creator.Use(middleware.RequireRole(domain.RoleCreator, domain.RoleAdmin))
	{
		creator.POST("/withdrawals", withdrawalH.Request)
		creator.GET("/withdrawals", withdrawalH.List)
		creator.GET("/withdrawals/preview", withdrawalH.Preview)
		creator.GET("/earnings", withdrawalH.Earnings)
		creator.POST("/affiliates/programs", affiliateH.ConfigureProgram)
		creator.POST("/guilds", guildH.Create)
		creator.POST("/pitches", pitchH.Create)
		creator.GET("/creator-bonus", bonusH.Status)
		creator.POST("/creator-bonus/claim", bonusH.Claim)
	}

	// admin-only
	admin := authed.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("/payouts/pending", adminH.ListPendingPayouts)
		admin.POST("/payouts/:id/approve", adminH.ApprovePayout)
		admin.POST("/payouts/:id/reject", adminH.RejectPayout)
		admin.GET("/settings", adminH.GetSettings)
		admin.PUT("/settings", adminH.UpdateSettings)
		admin.POST("/grants", adminH.IssueGrant)
		admin.POST("/grants/:id/complete", adminH.CompleteConditionVesting)
		admin.POST("/rewards", adminH.RewardEngagement)
		admin.POST("/pitches/:id/refund", adminH.RefundCampaign)
		admin.GET("/reconciliation", adminH.ListReconciliation)
		admin.POST("/reconciliation/:id/resolve", adminH.ResolveReconciliation)
	}

	sweeper := service.NewSweeper(cfg.Sweeper.Interval, vestingSvc, commitmentSvc, pitchSvc, payments)

	return &App{Engine: r, Sweeper: sweeper}
}
