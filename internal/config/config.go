package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервера игры.
type Config struct {
	// Настройки сервера
	Port        string `envconfig:"SERVER_PORT" default:"8000"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки PostgreSQL (пользователи и коды регистрации)
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"soup"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int    `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Настройки Redis (хранилище игровых сессий)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Секретное поле БЕЗ envconfig тега
	RedisPassword string

	// Настройки AI API (OpenAI-совместимый relay)
	AIBaseURL    string        `envconfig:"BASE_URL" default:"https://api.openai.com/v1"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AITemperature float64      `envconfig:"AI_TEMPERATURE" default:"0.3"`
	// Секретное поле БЕЗ envconfig тега
	AIAPIKey string

	// Настройки JWT
	AccessTokenTTL time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"30m"`
	// Секретные поля БЕЗ envconfig тега
	JWTSecret      string
	PasswordPepper string

	// Каталог загадок и стартовый код регистрации
	PuzzlesDir        string `envconfig:"PUZZLES_DIR" default:"puzzles"`
	DefaultInviteCode string `envconfig:"DEFAULT_INVITE_CODE" default:"TURTLE_HKY"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig загружает конфигурацию из переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	var cfg Config
	// Загружаем НЕсекретные переменные
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = readSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.JWTSecret, loadErr = readSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.AIAPIKey, loadErr = readSecret("openai_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	// Необязательные секреты: пустое значение допустимо
	cfg.RedisPassword, _ = readSecret("redis_password")
	cfg.PasswordPepper, _ = readSecret("password_pepper")

	log.Printf("Конфигурация загружена:")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB DSN: postgres://%s:***@%s:%s/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Redis Addr: %s (db %d)", cfg.RedisAddr, cfg.RedisDB)
	log.Printf("  AI Base URL: %s", cfg.AIBaseURL)
	log.Printf("  AI Timeout: %v", cfg.AITimeout)
	log.Printf("  Puzzles Dir: %s", cfg.PuzzlesDir)
	log.Println("  JWT Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}

// readSecret читает секрет из файла в стандартном пути Docker Secrets.
// Если файла нет, используется fallback на переменную окружения с тем же
// именем в верхнем регистре (локальный запуск без Docker).
func readSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err == nil {
		secret := strings.TrimSpace(string(secretBytes))
		if secret == "" {
			return "", fmt.Errorf("secret file %s is empty", filePath)
		}
		return secret, nil
	}

	envName := strings.ToUpper(secretName)
	if value := strings.TrimSpace(os.Getenv(envName)); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("secret %s not found: no file %s and no env %s", secretName, filePath, envName)
}
