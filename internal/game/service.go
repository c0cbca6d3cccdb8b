package game

import (
	"context"
	"time"

	"soup-server/internal/ai"
	"soup-server/internal/models"
	"soup-server/internal/pricing"
	"soup-server/internal/repository"

	"go.uber.org/zap"
)

const (
	// summarizeEveryTurns - период запуска сжатия истории в сводку.
	summarizeEveryTurns = 10
	// recentHistoryWindow - сколько последних реплик попадает в контекст
	// промпта ведущего. Старые реплики уже учтены в сводке.
	recentHistoryWindow = 20
)

// TurnResult содержит ответ ведущего и состояние партии после хода.
type TurnResult struct {
	Reply     string
	Summary   string
	TurnCount int
	Model     string
	Usage     models.TurnUsage
}

// GameService defines the interface for the game session orchestrator.
type GameService interface {
	// Initialize creates or fully overwrites a game session and returns the
	// resolved model id (unknown models fall back to the default).
	Initialize(ctx context.Context, sessionID, story, truth, model string) (string, error)

	// SubmitTurn runs one player turn: generates the host reply, appends the
	// exchange to history, triggers periodic summarization and persists the
	// session as a single write. Fails with models.ErrSessionNotFound for an
	// unknown session and models.ErrGenerationFailed when the model call
	// fails; no state is committed on either path.
	SubmitTurn(ctx context.Context, sessionID, message string) (*TurnResult, error)
}

// Compile-time check to ensure gameServiceImpl implements GameService
var _ GameService = (*gameServiceImpl)(nil)

type gameServiceImpl struct {
	sessionRepo repository.SessionRepository
	generator   ai.Generator
	logger      *zap.Logger
	locks       sessionLocks
}

// NewGameService creates a new instance of the game session orchestrator.
func NewGameService(sessionRepo repository.SessionRepository, generator ai.Generator, logger *zap.Logger) GameService {
	return &gameServiceImpl{
		sessionRepo: sessionRepo,
		generator:   generator,
		logger:      logger.Named("GameService"),
	}
}

// Initialize создает состояние новой партии. Повторный вызов с тем же
// sessionID полностью перезаписывает старую партию (последний выигрывает).
func (s *gameServiceImpl) Initialize(ctx context.Context, sessionID, story, truth, model string) (string, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	resolvedModel := pricing.Resolve(model)
	if resolvedModel != model {
		s.logger.Warn("Unknown model requested, falling back to default",
			zap.String("sessionID", sessionID),
			zap.String("requested", model),
			zap.String("resolved", resolvedModel),
		)
	}

	session := models.NewGameSession(sessionID, story, truth, resolvedModel)
	if err := s.sessionRepo.PutSession(ctx, session); err != nil {
		return "", err
	}

	sessionsInitializedTotal.Inc()
	s.logger.Info("Game session initialized",
		zap.String("sessionID", sessionID),
		zap.String("model", resolvedModel),
	)
	return resolvedModel, nil
}

// SubmitTurn выполняет один ход игрока. Все мутации делаются на рабочей
// копии состояния и сохраняются одной записью: при любой ошибке генерации
// партия остается ровно в том виде, в каком была до хода.
func (s *gameServiceImpl) SubmitTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	session, err := s.sessionRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(
		zap.String("sessionID", sessionID),
		zap.String("model", session.Model),
		zap.Int("turn", session.TurnCount+1),
	)

	// Контекст ведущего - история ДО нового вопроса, ограниченная окном
	recentHistory := session.History
	if len(recentHistory) > recentHistoryWindow {
		recentHistory = recentHistory[len(recentHistory)-recentHistoryWindow:]
	}

	prompt := buildHostPrompt(session.Story, session.Truth, session.Summary, recentHistory, message)

	reply, usage, err := s.generator.Generate(ctx, session.Model, prompt)
	if err != nil {
		log.Error("Host reply generation failed, turn discarded", zap.Error(err))
		return nil, err
	}

	session.History = append(session.History,
		models.GameMessage{Role: models.RolePlayer, Text: message},
		models.GameMessage{Role: models.RoleHost, Text: reply},
	)
	session.TurnCount++
	session.LastUsage = models.TurnUsage{
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		CostUSD:          pricing.ComputeCost(session.Model, usage.PromptTokens, usage.CompletionTokens),
	}

	// Триггер проверяется строго ПОСЛЕ инкремента счетчика хода
	if session.TurnCount > 0 && session.TurnCount%summarizeEveryTurns == 0 {
		s.summarize(ctx, session, log)
	}

	session.UpdatedAt = time.Now().UTC()
	if err := s.sessionRepo.PutSession(ctx, session); err != nil {
		log.Error("Failed to persist game session after turn", zap.Error(err))
		return nil, err
	}

	turnsTotal.Inc()
	log.Info("Turn completed",
		zap.Int("historyLen", len(session.History)),
		zap.Int("totalTokens", session.LastUsage.TotalTokens),
		zap.Float64("costUSD", session.LastUsage.CostUSD),
	)

	return &TurnResult{
		Reply:     reply,
		Summary:   session.Summary,
		TurnCount: session.TurnCount,
		Model:     session.Model,
		Usage:     session.LastUsage,
	}, nil
}

// summarize сжимает накопленную историю в новую сводку. При ошибке модели
// прежняя сводка И история сохраняются: сжатие повторится на следующем
// триггере, информация не теряется.
func (s *gameServiceImpl) summarize(ctx context.Context, session *models.GameSession, log *zap.Logger) {
	prompt := buildSummaryPrompt(session.Story, session.Truth, session.Summary, session.History)

	newSummary, _, err := s.generator.Generate(ctx, session.Model, prompt)
	if err != nil {
		summarizationsTotal.WithLabelValues("error").Inc()
		log.Warn("Summarization failed, keeping previous summary and history", zap.Error(err))
		return
	}

	session.Summary = newSummary
	session.History = []models.GameMessage{}
	summarizationsTotal.WithLabelValues("success").Inc()
	log.Info("History summarized", zap.Int("summaryBytes", len(newSummary)))
}
