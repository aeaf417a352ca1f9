package handler

import (
	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	affiliates *service.AffiliateService
}

func NewAffiliateHandler(affiliates *service.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{affiliates: affiliates}
}

type configureProgramRequest struct {
	IsActive bool                  `json:"is_active"`
	Levels   []service.LevelConfig `json:"levels" binding:"required"`
}

func (h *AffiliateHandler) ConfigureProgram(c *gin.Context) {
	var req configureProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.affiliates.ConfigureProgram(middleware.GetUserID(c), req.IsActive, req.Levels)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}

func (h *AffiliateHandler) GetProgram(c *gin.Context) {
	creatorID, err := service.ParseUintParam(c.Param("creatorId"))
	if err != nil {
		fail(c, err)
		return
	}
	view, err := h.affiliates.GetProgram(creatorID)
	if err != nil {
		fail(c, err)
		return
	}
	if view == nil {
		ok(c, gin.H{"program": nil})
		return
	}
	ok(c, view)
}

type createLinkRequest struct {
	CreatorID uint `json:"creator_id" binding:"required"`
}

func (h *AffiliateHandler) CreateLink(c *gin.Context) {
	var req createLinkRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.affiliates.CreateLink(middleware.GetUserID(c), req.CreatorID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"link": link})
}

// TrackClick is public; the ref code in the URL is the only input.
func (h *AffiliateHandler) TrackClick(c *gin.Context) {
	if err := h.affiliates.TrackClick(c.Param("code")); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"status": "ok"})
}

type registerReferralRequest struct {
	CreatorID uint   `json:"creator_id" binding:"required"`
	RefCode   string `json:"ref_code" binding:"required"`
}

func (h *AffiliateHandler) RegisterReferral(c *gin.Context) {
	var req registerReferralRequest
	if !bindJSON(c, &req) {
		return
	}
	referral, err := h.affiliates.RegisterReferral(middleware.GetUserID(c), req.CreatorID, req.RefCode)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"referral": referral})
}

func (h *AffiliateHandler) Dashboard(c *gin.Context) {
	dash, err := h.affiliates.Dashboard(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, dash)
}
