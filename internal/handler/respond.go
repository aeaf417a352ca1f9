package handler

import (
	"errors"
	"net/http"

	"fandreams/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var statusByCode = map[string]int{
	domain.CodeInvalidAmount:        http.StatusBadRequest,
	domain.CodeInsufficientBalance:  http.StatusPaymentRequired,
	domain.CodeSelfTransfer:         http.StatusBadRequest,
	domain.CodeWithdrawalBlocked:    http.StatusTooManyRequests,
	domain.CodeBelowMinPayout:       http.StatusBadRequest,
	domain.CodeBonusNotWithdrawable: http.StatusBadRequest,
	domain.CodeNotFound:             http.StatusNotFound,
	domain.CodeInvalidConfiguration: http.StatusBadRequest,
	domain.CodeInvalidStatus:        http.StatusConflict,
	domain.CodeAlreadyExists:        http.StatusConflict,
	domain.CodeForbidden:            http.StatusForbidden,
}

// fail maps service errors to HTTP responses. Domain errors carry their code;
// anything else is a 500 with a generic body.
func fail(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		status, ok := statusByCode[derr.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": derr.Message, "code": derr.Code})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "code": domain.CodeNotFound})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// bindJSON binds the request body and answers 400 on failure. Returns false
// when the handler should stop.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func ok(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}

func created(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusCreated, payload)
}
