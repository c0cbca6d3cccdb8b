package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"soup-server/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check to ensure redisSessionRepository implements SessionRepository
var _ SessionRepository = (*redisSessionRepository)(nil)

const sessionKeyPrefix = "game_session:"

type redisSessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisSessionRepository creates a new Redis-backed SessionRepository.
// Записи живут без TTL: очистка устаревших партий - забота деплоймента.
func NewRedisSessionRepository(client *redis.Client, logger *zap.Logger) SessionRepository {
	return &redisSessionRepository{
		client: client,
		logger: logger.Named("RedisSessionRepo"),
	}
}

// GetSession загружает и десериализует состояние партии.
func (r *redisSessionRepository) GetSession(ctx context.Context, sessionID string) (*models.GameSession, error) {
	key := sessionKeyPrefix + sessionID
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Game session not found in Redis", zap.String("sessionID", sessionID))
			return nil, models.ErrSessionNotFound
		}
		r.logger.Error("Failed to get game session from redis", zap.Error(err), zap.String("key", key))
		return nil, fmt.Errorf("failed to get game session from redis: %w", err)
	}

	var session models.GameSession
	if err := json.Unmarshal(data, &session); err != nil {
		// Данные в Redis повреждены
		r.logger.Error("Failed to unmarshal game session from redis data",
			zap.Error(err),
			zap.String("sessionID", sessionID),
		)
		return nil, fmt.Errorf("corrupted game session data in redis for %s: %w", sessionID, err)
	}
	return &session, nil
}

// PutSession сериализует и полностью перезаписывает состояние партии
// одной командой SET.
func (r *redisSessionRepository) PutSession(ctx context.Context, session *models.GameSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		r.logger.Error("Failed to marshal game session", zap.Error(err), zap.String("sessionID", session.SessionID))
		return fmt.Errorf("failed to marshal game session %s: %w", session.SessionID, err)
	}

	key := sessionKeyPrefix + session.SessionID
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to put game session into redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to put game session into redis: %w", err)
	}

	r.logger.Debug("Game session persisted",
		zap.String("sessionID", session.SessionID),
		zap.Int("turnCount", session.TurnCount),
		zap.Int("historyLen", len(session.History)),
	)
	return nil
}
