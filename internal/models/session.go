package models

import "time"

// MessageRole определяет, кто произнес реплику в истории партии.
type MessageRole string

const (
	// RolePlayer - сообщение игрока (вопрос или попытка угадать правду).
	RolePlayer MessageRole = "player"
	// RoleHost - ответ ведущего.
	RoleHost MessageRole = "host"
)

// GameMessage - одна реплика в несжатом окне истории.
type GameMessage struct {
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
}

// TurnUsage содержит статистику токенов и стоимость ПОСЛЕДНЕГО хода.
// Перезаписывается каждым ходом, не накапливается.
type TurnUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// DefaultSummary - начальное значение сводки при создании партии.
const DefaultSummary = "游戏开始。"

// GameSession - агрегат состояния одной партии. Единица хранения и
// конкурентного доступа: мутирует его только оркестратор.
type GameSession struct {
	SessionID string        `json:"session_id"`
	Story     string        `json:"story"`
	Truth     string        `json:"truth"`
	Summary   string        `json:"summary"`
	History   []GameMessage `json:"history"`
	TurnCount int           `json:"turn_count"`
	Model     string        `json:"model"`
	LastUsage TurnUsage     `json:"last_usage"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewGameSession создает состояние новой партии со стартовыми значениями.
func NewGameSession(sessionID, story, truth, model string) *GameSession {
	now := time.Now().UTC()
	return &GameSession{
		SessionID: sessionID,
		Story:     story,
		Truth:     truth,
		Summary:   DefaultSummary,
		History:   []GameMessage{},
		TurnCount: 0,
		Model:     model,
		LastUsage: TurnUsage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
