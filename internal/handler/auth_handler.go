package handler

import (
	"fandreams/internal/middleware"
	"fandreams/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=64"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}
	user, tokens, err := h.auth.Register(service.RegisterParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, gin.H{"user": user, "tokens": tokens})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, tokens, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user, "tokens": tokens})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}
	tokens, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"tokens": tokens})
}

func (h *AuthHandler) BecomeCreator(c *gin.Context) {
	user, err := h.auth.BecomeCreator(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"user": user})
}
