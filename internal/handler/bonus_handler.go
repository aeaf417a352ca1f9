package handler

import (
	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type BonusHandler struct {
	bonus *service.CreatorBonusService
}

func NewBonusHandler(bonus *service.CreatorBonusService) *BonusHandler {
	return &BonusHandler{bonus: bonus}
}

func (h *BonusHandler) Status(c *gin.Context) {
	bonus, err := h.bonus.Status(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"bonus": bonus})
}

func (h *BonusHandler) Claim(c *gin.Context) {
	balance, err := h.bonus.Claim(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"claimed": true, "balance": balance})
}
