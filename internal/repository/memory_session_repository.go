package repository

import (
	"context"
	"sync"

	"soup-server/internal/models"
)

// Compile-time check to ensure memorySessionRepository implements SessionRepository
var _ SessionRepository = (*memorySessionRepository)(nil)

// memorySessionRepository - потокобезопасное хранилище в памяти процесса.
// Используется в тестах и для локального запуска без Redis.
type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*models.GameSession
}

// NewMemorySessionRepository creates a new in-memory SessionRepository.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*models.GameSession),
	}
}

func (r *memorySessionRepository) GetSession(_ context.Context, sessionID string) (*models.GameSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (r *memorySessionRepository) PutSession(_ context.Context, session *models.GameSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.SessionID] = cloneSession(session)
	return nil
}

// cloneSession делает глубокую копию, чтобы рабочая копия оркестратора
// не разделяла срез истории с сохраненной записью.
func cloneSession(session *models.GameSession) *models.GameSession {
	clone := *session
	clone.History = make([]models.GameMessage, len(session.History))
	copy(clone.History, session.History)
	return &clone
}
