package handler

import (
	"net/http"

	"soup-server/internal/auth"
	"soup-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Router собирает все обработчики сервера.
type Router struct {
	gameHandler   *GameHandler
	authHandler   *AuthHandler
	puzzleHandler *PuzzleHandler
	verifier      *auth.JWTVerifier
	logger        *zap.Logger
}

// NewRouter создает Router со всеми обработчиками.
func NewRouter(
	gameHandler *GameHandler,
	authHandler *AuthHandler,
	puzzleHandler *PuzzleHandler,
	verifier *auth.JWTVerifier,
	logger *zap.Logger,
) *Router {
	return &Router{
		gameHandler:   gameHandler,
		authHandler:   authHandler,
		puzzleHandler: puzzleHandler,
		verifier:      verifier,
		logger:        logger,
	}
}

// RegisterRoutes регистрирует маршруты сервера.
func (r *Router) RegisterRoutes(e *gin.Engine) {
	e.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// --- Аутентификация ---
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.register)
		authGroup.POST("/login", r.authHandler.login)
	}

	// --- Маршруты за проверкой токена ---
	authMiddleware := middleware.AuthMiddleware(r.verifier, r.logger)

	e.GET("/auth/me", authMiddleware, r.authHandler.me)
	e.GET("/puzzles", authMiddleware, r.puzzleHandler.listPuzzles)

	gameGroup := e.Group("/game", authMiddleware)
	{
		gameGroup.POST("/init", r.gameHandler.initGame)
		gameGroup.POST("/chat", r.gameHandler.chat)
	}
}
