package handler

import (
	"strconv"

	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	fancoin *service.FancoinService
	vesting *service.VestingService
}

func NewWalletHandler(fancoin *service.FancoinService, vesting *service.VestingService) *WalletHandler {
	return &WalletHandler{fancoin: fancoin, vesting: vesting}
}

func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.fancoin.GetWallet(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"wallet": wallet, "withdrawable": wallet.Withdrawable()})
}

func (h *WalletHandler) GetTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	entries, err := h.fancoin.GetTransactions(middleware.GetUserID(c), limit, offset)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"transactions": entries})
}

type tipRequest struct {
	CreatorID uint   `json:"creator_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,min=1"`
	Reference string `json:"reference"`
}

func (h *WalletHandler) SendTip(c *gin.Context) {
	var req tipRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.fancoin.SendTip(middleware.GetUserID(c), req.CreatorID, req.Amount, req.Reference)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

type ppvRequest struct {
	CreatorID uint    `json:"creator_id" binding:"required"`
	PostID    string  `json:"post_id" binding:"required"`
	PriceBrl  float64 `json:"price_brl" binding:"required,gt=0"`
}

func (h *WalletHandler) UnlockPpv(c *gin.Context) {
	var req ppvRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.fancoin.UnlockPpv(middleware.GetUserID(c), req.CreatorID, req.PostID, req.PriceBrl)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *WalletHandler) ListGrants(c *gin.Context) {
	grants, err := h.vesting.ListByUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"grants": grants})
}
