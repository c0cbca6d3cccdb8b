package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soup-server/internal/ai"
	"soup-server/internal/auth"
	"soup-server/internal/config"
	"soup-server/internal/database"
	"soup-server/internal/game"
	"soup-server/internal/handler"
	"soup-server/internal/middleware"
	"soup-server/internal/puzzle"
	"soup-server/internal/repository"
	"soup-server/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Soup Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// --- Инициализация логгера ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// --- PostgreSQL (пользователи и коды регистрации) ---
	dbPool, err := database.NewPostgresPool(ctx, cfg.GetDSN(), cfg.DBMaxConns)
	if err != nil {
		zapLogger.Fatal("Не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbPool.Close()
	zapLogger.Info("Успешное подключение к PostgreSQL")

	if err := database.RunMigrations(dbPool, zapLogger); err != nil {
		zapLogger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	// --- Redis (игровые сессии) ---
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zapLogger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
	}
	defer redisClient.Close()
	zapLogger.Info("Успешное подключение к Redis")

	// --- AI клиент ---
	aiClient, err := ai.New(ai.Config{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Timeout:     cfg.AITimeout,
		Temperature: cfg.AITemperature,
	})
	if err != nil {
		zapLogger.Fatal("Не удалось создать AI клиент", zap.Error(err))
	}

	// --- Зависимости ---
	sessionRepo := repository.NewRedisSessionRepository(redisClient, zapLogger)
	userRepo := auth.NewPgUserRepository(dbPool, zapLogger)
	inviteRepo := auth.NewPgInviteCodeRepository(dbPool, zapLogger)

	gameService := game.NewGameService(sessionRepo, aiClient, zapLogger)
	authService := auth.NewAuthService(userRepo, inviteRepo, auth.Config{
		JWTSecret:      cfg.JWTSecret,
		PasswordPepper: cfg.PasswordPepper,
		AccessTokenTTL: cfg.AccessTokenTTL,
	}, zapLogger)

	if err := authService.SeedInviteCodes(ctx, cfg.DefaultInviteCode); err != nil {
		zapLogger.Fatal("Не удалось создать стартовый код регистрации", zap.Error(err))
	}

	verifier, err := auth.NewJWTVerifier(cfg.JWTSecret, zapLogger)
	if err != nil {
		zapLogger.Fatal("Не удалось создать JWT verifier", zap.Error(err))
	}

	appRouter := handler.NewRouter(
		handler.NewGameHandler(gameService, zapLogger),
		handler.NewAuthHandler(authService, zapLogger),
		handler.NewPuzzleHandler(puzzle.NewCatalog(cfg.PuzzlesDir, zapLogger), zapLogger),
		verifier,
		zapLogger,
	)

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(middleware.ZapLoggingMiddleware(zapLogger))
	router.Use(gin.Recovery())

	p := ginprometheus.NewPrometheus("gin")

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	appRouter.RegisterRoutes(router)

	// Prometheus middleware применяем после регистрации роутов
	p.Use(router)

	// --- Start HTTP Server ---
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zapLogger.Info("Starting HTTP server", zap.String("port", cfg.Port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
