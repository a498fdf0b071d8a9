package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/pkg/apperrors"
)

// respondError maps application error kinds to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperrors.KindValidation, apperrors.KindInvalidSignature:
		status = http.StatusBadRequest
		message = err.Error()
	case apperrors.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperrors.KindGateway:
		status = http.StatusBadGateway
		message = err.Error()
	}

	c.JSON(status, gin.H{"error": message})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
