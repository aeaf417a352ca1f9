package handler

import (
	"io"
	"log"
	"net/http"
	"strconv"

	"fandreams/internal/domain"
	"fandreams/internal/middleware"
	"fandreams/internal/service"
	"fandreams/pkg/payment"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	settlement  *service.SettlementService
	withdrawals *service.WithdrawalService
}

func NewPaymentHandler(settlement *service.SettlementService, withdrawals *service.WithdrawalService) *PaymentHandler {
	return &PaymentHandler{settlement: settlement, withdrawals: withdrawals}
}

func (h *PaymentHandler) ListPackages(c *gin.Context) {
	ok(c, gin.H{"packages": domain.CoinPackages})
}

type purchaseRequest struct {
	PackageID string `json:"package_id" binding:"required"`
	Provider  string `json:"provider" binding:"required"`
	Email     string `json:"email"`
}

func (h *PaymentHandler) CreatePurchase(c *gin.Context) {
	var req purchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	p, charge, err := h.settlement.CreatePurchasePayment(
		c.Request.Context(), middleware.GetUserID(c), req.PackageID, req.Provider, req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"payment": p, "charge": charge})
}

type revenuePaymentRequest struct {
	RecipientID uint    `json:"recipient_id" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	AmountBrl   float64 `json:"amount_brl" binding:"required,gt=0"`
	Provider    string  `json:"provider" binding:"required"`
	Email       string  `json:"email"`
	Metadata    string  `json:"metadata"`
}

func (h *PaymentHandler) CreateRevenuePayment(c *gin.Context) {
	var req revenuePaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	metadata := req.Metadata
	if req.Type == domain.PaymentTypeGuildCombo && metadata == "" {
		metadata = service.ComboMetadata(req.RecipientID)
	}
	p, charge, err := h.settlement.CreateRevenuePayment(
		c.Request.Context(), middleware.GetUserID(c), req.RecipientID,
		req.Type, req.AmountBrl, req.Provider, req.Email, metadata)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"payment": p, "charge": charge})
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.settlement.GetPayment(c.Param("orderId"))
	if err != nil {
		fail(c, err)
		return
	}
	if p.UserID != middleware.GetUserID(c) {
		fail(c, domain.Errorf(domain.CodeForbidden, "payment belongs to another user"))
		return
	}
	ok(c, gin.H{"payment": p})
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	payments, err := h.settlement.ListByUser(middleware.GetUserID(c), limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"payments": payments})
}

// Webhook receives provider notifications. Always ACKs with 200 once the
// signature checks out; settlement failures are handled internally so the
// provider does not retry into a poisoned queue. Bad signatures get 401 so
// misconfigured secrets surface during integration.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	providerName := c.Param("provider")
	provider, found := h.settlement.Provider(providerName)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[normalizeHeader(k)] = c.GetHeader(k)
	}
	conf, err := provider.ParseWebhook(body, headers)
	if err != nil {
		log.Printf("[webhook] %s rejected: %v", providerName, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "rejected"})
		return
	}
	if err := h.settlement.ProcessConfirmation(conf); err != nil {
		log.Printf("[webhook] %s settlement error (order=%s): %v", providerName, conf.OrderID, err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// PayoutWebhook confirms disbursements from the payout provider.
func (h *PaymentHandler) PayoutWebhook(c *gin.Context) {
	providerName := c.Param("provider")
	provider, found := h.settlement.Provider(providerName)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[normalizeHeader(k)] = c.GetHeader(k)
	}
	conf, err := provider.ParseWebhook(body, headers)
	if err != nil {
		log.Printf("[webhook] payout %s rejected: %v", providerName, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "rejected"})
		return
	}
	if conf.Status == payment.StatusCompleted {
		if _, err := h.withdrawals.CompleteFromProvider(conf.OrderID); err != nil {
			log.Printf("[webhook] payout completion failed (order=%s): %v", conf.OrderID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func normalizeHeader(k string) string {
	b := []byte(k)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
