package handler

import (
	"net/http"

	"soup-server/internal/puzzle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PuzzleHandler отдает каталог загадок.
type PuzzleHandler struct {
	catalog *puzzle.Catalog
	logger  *zap.Logger
}

// NewPuzzleHandler создает новый PuzzleHandler.
func NewPuzzleHandler(catalog *puzzle.Catalog, logger *zap.Logger) *PuzzleHandler {
	return &PuzzleHandler{
		catalog: catalog,
		logger:  logger.Named("PuzzleHandler"),
	}
}

// listPuzzles возвращает все загадки каталога.
func (h *PuzzleHandler) listPuzzles(c *gin.Context) {
	puzzles, err := h.catalog.List()
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, puzzles)
}
