package handler

import (
	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type CommitmentHandler struct {
	commitments *service.CommitmentService
}

func NewCommitmentHandler(commitments *service.CommitmentService) *CommitmentHandler {
	return &CommitmentHandler{commitments: commitments}
}

type createCommitmentRequest struct {
	CreatorID    uint  `json:"creator_id" binding:"required"`
	Amount       int64 `json:"amount" binding:"required,min=1"`
	DurationDays int   `json:"duration_days" binding:"required"`
}

func (h *CommitmentHandler) Create(c *gin.Context) {
	var req createCommitmentRequest
	if !bindJSON(c, &req) {
		return
	}
	commitment, err := h.commitments.Create(middleware.GetUserID(c), req.CreatorID, req.Amount, req.DurationDays)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"commitment": commitment})
}

func (h *CommitmentHandler) List(c *gin.Context) {
	commitments, err := h.commitments.ListByFan(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"commitments": commitments})
}

func (h *CommitmentHandler) Complete(c *gin.Context) {
	commitmentID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	result, err := h.commitments.Complete(commitmentID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *CommitmentHandler) WithdrawEarly(c *gin.Context) {
	commitmentID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	result, err := h.commitments.WithdrawEarly(commitmentID, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}
