package repository

import (
	"context"

	"soup-server/internal/models"
)

// SessionRepository - хранилище состояний партий по идентификатору сессии.
// Семантика put - полная перезапись записи; частичных обновлений снаружи
// оркестратора нет.
type SessionRepository interface {
	// GetSession возвращает состояние партии или models.ErrSessionNotFound.
	GetSession(ctx context.Context, sessionID string) (*models.GameSession, error)
	// PutSession полностью перезаписывает состояние партии.
	PutSession(ctx context.Context, session *models.GameSession) error
}
