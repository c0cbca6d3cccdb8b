package handler

import (
	"net/http"

	"soup-server/internal/auth"
	"soup-server/internal/middleware"
	"soup-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler обрабатывает запросы регистрации и входа.
type AuthHandler struct {
	service auth.AuthService
	logger  *zap.Logger
}

// NewAuthHandler создает новый AuthHandler.
func NewAuthHandler(service auth.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.Named("AuthHandler"),
	}
}

// register создает аккаунт по одноразовому коду регистрации.
func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Password, req.InviteCode)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	registrationsTotal.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID.String(),
		"username": user.Username,
	})
}

// login аутентифицирует пользователя и выдает токен доступа.
func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	tokens, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// me возвращает данные текущего пользователя.
func (h *AuthHandler) me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserIDKey)
	if userID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "could not validate credentials"})
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID.String(),
		"username": user.Username,
	})
}
