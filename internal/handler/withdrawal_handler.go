package handler

import (
	"strconv"

	"fandreams/internal/domain"
	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
	settings    *service.SettingsService
}

func NewWithdrawalHandler(withdrawals *service.WithdrawalService, settings *service.SettingsService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals, settings: settings}
}

type withdrawRequest struct {
	Method        string `json:"method" binding:"required"`
	CoinAmount    int64  `json:"coin_amount" binding:"required,min=1"`
	PixKey        string `json:"pix_key"`
	CryptoAddress string `json:"crypto_address"`
}

func (h *WithdrawalHandler) Request(c *gin.Context) {
	var req withdrawRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.withdrawals.Request(middleware.GetUserID(c), service.WithdrawalRequest{
		Method:        req.Method,
		CoinAmount:    req.CoinAmount,
		PixKey:        req.PixKey,
		CryptoAddress: req.CryptoAddress,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, result)
}

func (h *WithdrawalHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	payouts, err := h.withdrawals.ListByCreator(middleware.GetUserID(c), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"payouts": payouts})
}

func (h *WithdrawalHandler) Earnings(c *gin.Context) {
	summary, err := h.withdrawals.Earnings(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, summary)
}

// Preview scores a withdrawal without creating one, so the client can warn
// about manual review before the creator commits.
func (h *WithdrawalHandler) Preview(c *gin.Context) {
	coins, err := strconv.ParseInt(c.Query("coin_amount"), 10, 64)
	if err != nil || coins <= 0 {
		fail(c, domain.Errorf(domain.CodeInvalidAmount, "coin_amount query parameter required"))
		return
	}
	brl := service.FiatFromCoins(coins, h.settings.CoinRate())
	risk, err := h.withdrawals.AssessRisk(middleware.GetUserID(c), brl, coins)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"risk": risk, "estimated_brl": brl})
}
