package handler

import (
	"strconv"

	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type GuildHandler struct {
	guilds *service.GuildService
}

func NewGuildHandler(guilds *service.GuildService) *GuildHandler {
	return &GuildHandler{guilds: guilds}
}

type createGuildRequest struct {
	Name                string  `json:"name" binding:"required,min=3,max=100"`
	Slug                string  `json:"slug" binding:"required,min=3,max=64"`
	ContributionPercent float64 `json:"contribution_percent"`
	ComboPrice          float64 `json:"combo_price"`
}

func (h *GuildHandler) Create(c *gin.Context) {
	var req createGuildRequest
	if !bindJSON(c, &req) {
		return
	}
	guild, err := h.guilds.Create(middleware.GetUserID(c), service.CreateGuildParams{
		Name:                req.Name,
		Slug:                req.Slug,
		ContributionPercent: req.ContributionPercent,
		ComboPrice:          req.ComboPrice,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"guild": guild})
}

func (h *GuildHandler) Get(c *gin.Context) {
	guildID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	guild, err := h.guilds.Get(guildID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"guild": guild})
}

func (h *GuildHandler) Join(c *gin.Context) {
	guildID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.guilds.Join(guildID, middleware.GetUserID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"status": "joined"})
}

func (h *GuildHandler) SubscribeCombo(c *gin.Context) {
	guildID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	result, err := h.guilds.SubscribeCombo(guildID, middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, result)
}

func (h *GuildHandler) TreasuryHistory(c *gin.Context) {
	guildID, err := service.ParseUintParam(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history, err := h.guilds.TreasuryHistory(guildID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"transactions": history})
}

func (h *GuildHandler) MyGuild(c *gin.Context) {
	view, err := h.guilds.GetUserGuild(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if view == nil {
		ok(c, gin.H{"guild": nil})
		return
	}
	ok(c, view)
}
