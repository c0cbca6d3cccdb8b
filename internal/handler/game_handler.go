package handler

import (
	"net/http"

	"soup-server/internal/game"
	"soup-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GameHandler обрабатывает HTTP запросы игрового цикла.
type GameHandler struct {
	service game.GameService
	logger  *zap.Logger
}

// NewGameHandler создает новый GameHandler.
func NewGameHandler(service game.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		service: service,
		logger:  logger.Named("GameHandler"),
	}
}

// initGame создает или перезаписывает партию.
func (h *GameHandler) initGame(c *gin.Context) {
	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	model, err := h.service.Initialize(c.Request.Context(), req.ThreadID, req.Story, req.Truth, req.Model)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, initResponse{
		Status:  "ok",
		Message: "Game initialized",
		Model:   model,
	})
}

// chat выполняет один ход игрока.
func (h *GameHandler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request data: " + err.Error()})
		return
	}

	result, err := h.service.SubmitTurn(c.Request.Context(), req.ThreadID, req.Message)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Reply:     result.Reply,
		Summary:   result.Summary,
		TurnCount: result.TurnCount,
		CostData: costData{
			Tokens: result.Usage.TotalTokens,
			Cost:   result.Usage.CostUSD,
			Model:  result.Model,
		},
	})
}
