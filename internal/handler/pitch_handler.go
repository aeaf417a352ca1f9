package handler

import (
	"strconv"

	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type PitchHandler struct {
	pitches *service.PitchService
}

func NewPitchHandler(pitches *service.PitchService) *PitchHandler {
	return &PitchHandler{pitches: pitches}
}

type createCampaignRequest struct {
	Title        string `json:"title" binding:"required,min=3,max=200"`
	Description  string `json:"description"`
	GoalAmount   int64  `json:"goal_amount" binding:"required,min=1"`
	DurationDays int    `json:"duration_days"`
}

func (h *PitchHandler) Create(c *gin.Context) {
	var req createCampaignRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.pitches.CreateCampaign(middleware.GetUserID(c), service.CreateCampaignParams{
		Title:        req.Title,
		Description:  req.Description,
		GoalAmount:   req.GoalAmount,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"campaign": campaign})
}

func (h *PitchHandler) Get(c *gin.Context) {
	campaignID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	campaign, err := h.pitches.Get(campaignID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"campaign": campaign})
}

func (h *PitchHandler) ListActive(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	campaigns, err := h.pitches.ListActive(limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"campaigns": campaigns})
}

type contributeRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

func (h *PitchHandler) Contribute(c *gin.Context) {
	campaignID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	var req contributeRequest
	if !bindJSON(c, &req) {
		return
	}
	view, err := h.pitches.Contribute(campaignID, middleware.GetUserID(c), req.Amount)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, view)
}
