package handler

import (
	"errors"
	"net/http"

	"soup-server/internal/models"

	"github.com/gin-gonic/gin"
)

// handleServiceError переводит ошибки сервисного слоя в HTTP статусы.
func handleServiceError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrGenerationFailed):
		// Временная ошибка AI API, клиент может повторить ход
		status = http.StatusBadGateway
	case errors.Is(err, models.ErrUserAlreadyExists),
		errors.Is(err, models.ErrInviteCodeInvalid),
		errors.Is(err, models.ErrInviteCodeUsed):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrUserNotFound):
		status = http.StatusNotFound
	default:
		status = http.StatusInternalServerError
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: err.Error()})
}
