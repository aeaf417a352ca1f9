package handler

import (
	"strconv"
	"time"

	"fandreams/internal/middleware"
	"fandreams/internal/repository"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	withdrawals *service.WithdrawalService
	settings    *service.SettingsService
	vesting     *service.VestingService
	fancoin     *service.FancoinService
	pitches     *service.PitchService
	recon       *repository.ReconciliationRepository
}

func NewAdminHandler(
	withdrawals *service.WithdrawalService,
	settings *service.SettingsService,
	vesting *service.VestingService,
	fancoin *service.FancoinService,
	pitches *service.PitchService,
	recon *repository.ReconciliationRepository,
) *AdminHandler {
	return &AdminHandler{
		withdrawals: withdrawals,
		settings:    settings,
		vesting:     vesting,
		fancoin:     fancoin,
		pitches:     pitches,
		recon:       recon,
	}
}

func (h *AdminHandler) ListPendingPayouts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	payouts, err := h.withdrawals.ListPendingApproval(limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"payouts": payouts})
}

func (h *AdminHandler) ApprovePayout(c *gin.Context) {
	payoutID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.withdrawals.Approve(payoutID, middleware.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"status": "approved"})
}

type rejectPayoutRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *AdminHandler) RejectPayout(c *gin.Context) {
	payoutID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var req rejectPayoutRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.withdrawals.Reject(payoutID, middleware.GetUserID(c), req.Reason); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"status": "rejected"})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetAll()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"settings": settings})
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var updates map[string]string
	if !bindJSON(c, &updates) {
		return
	}
	if err := h.settings.Update(updates); err != nil {
		fail(c, err)
		return
	}
	settings, err := h.settings.GetAll()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"settings": settings})
}

type issueGrantRequest struct {
	UserID           uint    `json:"user_id" binding:"required"`
	Type             string  `json:"type" binding:"required"`
	TotalAmount      int64   `json:"total_amount" binding:"required,min=1"`
	VestingRule      string  `json:"vesting_rule" binding:"required"`
	VestingRate      float64 `json:"vesting_rate"`
	VestingUnlockAt  string  `json:"vesting_unlock_at"` // RFC 3339
	VestingCondition string  `json:"vesting_condition"`
	ReferenceID      string  `json:"reference_id"`
	Description      string  `json:"description"`
}

func (h *AdminHandler) IssueGrant(c *gin.Context) {
	var req issueGrantRequest
	if !bindJSON(c, &req) {
		return
	}
	params := service.IssueGrantParams{
		UserID:           req.UserID,
		Type:             req.Type,
		TotalAmount:      req.TotalAmount,
		VestingRule:      req.VestingRule,
		VestingRate:      req.VestingRate,
		VestingCondition: req.VestingCondition,
		ReferenceID:      req.ReferenceID,
		Description:      req.Description,
	}
	if req.VestingUnlockAt != "" {
		unlockAt, err := time.Parse(time.RFC3339, req.VestingUnlockAt)
		if err != nil {
			fail(c, err)
			return
		}
		params.VestingUnlockAt = &unlockAt
	}
	grant, err := h.vesting.Issue(params)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"grant": grant})
}

func (h *AdminHandler) CompleteConditionVesting(c *gin.Context) {
	grantID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	grant, err := h.vesting.CompleteConditionVesting(grantID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"grant": grant})
}

type rewardRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Type   string `json:"type" binding:"required"`
	Amount int64  `json:"amount" binding:"required,min=1"`
}

func (h *AdminHandler) RewardEngagement(c *gin.Context) {
	var req rewardRequest
	if !bindJSON(c, &req) {
		return
	}
	balance, err := h.fancoin.RewardEngagement(req.UserID, req.Type, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"balance": balance})
}

func (h *AdminHandler) RefundCampaign(c *gin.Context) {
	campaignID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	refunded, err := h.pitches.RefundCampaign(campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"refunded_contributions": refunded})
}

func (h *AdminHandler) ListReconciliation(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	items, err := h.recon.ListUnresolved(limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"items": items})
}

func (h *AdminHandler) ResolveReconciliation(c *gin.Context) {
	itemID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.recon.MarkResolved(itemID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"status": "resolved"})
}
