package game_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"soup-server/internal/ai"
	"soup-server/internal/game"
	"soup-server/internal/models"
	"soup-server/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockGenerator - мок ai.Generator на testify/mock.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, model string, prompt string) (string, ai.Usage, error) {
	args := m.Called(ctx, model, prompt)
	return args.String(0), args.Get(1).(ai.Usage), args.Error(2)
}

// isHostPrompt / isSummaryPrompt различают два шаблона по маркеру роли.
func isHostPrompt(prompt string) bool    { return strings.Contains(prompt, "海龟汤主持人") }
func isSummaryPrompt(prompt string) bool { return strings.Contains(prompt, "游戏记录员") }

func anyHostPrompt() interface{} {
	return mock.MatchedBy(isHostPrompt)
}

func anySummaryPrompt() interface{} {
	return mock.MatchedBy(isSummaryPrompt)
}

func newService(t *testing.T, gen ai.Generator) (game.GameService, repository.SessionRepository) {
	t.Helper()
	repo := repository.NewMemorySessionRepository()
	return game.NewGameService(repo, gen, zap.NewNop()), repo
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates session with starting values", func(t *testing.T) {
		svc, repo := newService(t, new(mockGenerator))

		model, err := svc.Initialize(ctx, "s1", "汤面", "汤底", "gpt-4o")
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", model)

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "汤面", session.Story)
		assert.Equal(t, "汤底", session.Truth)
		assert.Equal(t, models.DefaultSummary, session.Summary)
		assert.Empty(t, session.History)
		assert.Zero(t, session.TurnCount)
		assert.Zero(t, session.LastUsage.TotalTokens)
	})

	t.Run("Unknown model falls back to default", func(t *testing.T) {
		svc, repo := newService(t, new(mockGenerator))

		model, err := svc.Initialize(ctx, "s1", "story", "truth", "gpt-3.5-turbo")
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", model)

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", session.Model)
	})

	t.Run("Re-initialize fully replaces prior state", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gpt-4o", anyHostPrompt()).
			Return("是的。", ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}, nil).Once()
		svc, repo := newService(t, gen)

		_, err := svc.Initialize(ctx, "s1", "old story", "old truth", "gpt-4o")
		require.NoError(t, err)
		_, err = svc.SubmitTurn(ctx, "s1", "他死了吗？")
		require.NoError(t, err)

		_, err = svc.Initialize(ctx, "s1", "new story", "new truth", "gemini-2.5-pro")
		require.NoError(t, err)

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "new story", session.Story)
		assert.Empty(t, session.History)
		assert.Zero(t, session.TurnCount)
		gen.AssertExpectations(t)
	})
}

func TestSubmitTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful turn", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gpt-4o", mock.MatchedBy(func(prompt string) bool {
			// Промпт ведущего содержит все игровые данные и новый вопрос
			return isHostPrompt(prompt) &&
				strings.Contains(prompt, "一个男人走进酒吧") &&
				strings.Contains(prompt, "他打嗝了") &&
				strings.Contains(prompt, "他还活着吗？") &&
				strings.Contains(prompt, "（暂无近期对话）")
		})).Return("是的。", ai.Usage{PromptTokens: 1000, CompletionTokens: 20, TotalTokens: 1020}, nil).Once()

		svc, repo := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "一个男人走进酒吧", "他打嗝了", "gpt-4o")
		require.NoError(t, err)

		result, err := svc.SubmitTurn(ctx, "s1", "他还活着吗？")
		require.NoError(t, err)
		assert.Equal(t, "是的。", result.Reply)
		assert.Equal(t, models.DefaultSummary, result.Summary)
		assert.Equal(t, 1, result.TurnCount)
		assert.Equal(t, 1020, result.Usage.TotalTokens)
		// 1000 входных и 20 выходных токенов gpt-4o
		assert.InDelta(t, 1000*5.0/1e6+20*20.0/1e6, result.Usage.CostUSD, 1e-9)

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 1, session.TurnCount)
		require.Len(t, session.History, 2)
		assert.Equal(t, models.RolePlayer, session.History[0].Role)
		assert.Equal(t, "他还活着吗？", session.History[0].Text)
		assert.Equal(t, models.RoleHost, session.History[1].Role)
		assert.Equal(t, "是的。", session.History[1].Text)
		gen.AssertExpectations(t)
	})

	t.Run("Unknown session", func(t *testing.T) {
		svc, repo := newService(t, new(mockGenerator))

		result, err := svc.SubmitTurn(ctx, "unknown-session", "x")
		assert.Nil(t, result)
		assert.ErrorIs(t, err, models.ErrSessionNotFound)

		// Хранилище не тронуто
		_, err = repo.GetSession(ctx, "unknown-session")
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	})

	t.Run("Generation failure commits nothing", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gpt-4o", anyHostPrompt()).
			Return("", ai.Usage{}, fmt.Errorf("%w: timeout", models.ErrGenerationFailed)).Once()

		svc, repo := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "story", "truth", "gpt-4o")
		require.NoError(t, err)

		result, err := svc.SubmitTurn(ctx, "s1", "question")
		assert.Nil(t, result)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Zero(t, session.TurnCount)
		assert.Empty(t, session.History)
		gen.AssertExpectations(t)
	})

	t.Run("Recent history window excludes old entries", func(t *testing.T) {
		gen := new(mockGenerator)
		// Первые 12 ходов: контекст не проверяем
		gen.On("Generate", mock.Anything, "gpt-4o", anyHostPrompt()).
			Return("不是。", ai.Usage{TotalTokens: 10}, nil).Times(12)

		svc, _ := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "story", "truth", "gpt-4o")
		require.NoError(t, err)
		for i := 0; i < 12; i++ {
			_, err := svc.SubmitTurn(ctx, "s1", fmt.Sprintf("问题 %d", i))
			require.NoError(t, err)
		}

		// К 13-му ходу накоплено 24 реплики; в окно из 20 попадают реплики
		// ходов 3..12, вопросы первых двух ходов выпадают из контекста.
		gen.On("Generate", mock.Anything, "gpt-4o", mock.MatchedBy(func(prompt string) bool {
			return isHostPrompt(prompt) &&
				!strings.Contains(prompt, "问题 0") &&
				!strings.Contains(prompt, "问题 1\n") &&
				strings.Contains(prompt, "问题 2") &&
				strings.Contains(prompt, "问题 11")
		})).Return("不是。", ai.Usage{TotalTokens: 10}, nil).Once()

		_, err = svc.SubmitTurn(ctx, "s1", "最后的问题")
		require.NoError(t, err)
		gen.AssertExpectations(t)
	})
}

func TestSummarizationTrigger(t *testing.T) {
	ctx := context.Background()

	t.Run("Tenth turn summarizes and clears history", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gemini-2.5-flash", anyHostPrompt()).
			Return("是的。", ai.Usage{PromptTokens: 100, CompletionTokens: 10, TotalTokens: 110}, nil).Times(10)
		gen.On("Generate", mock.Anything, "gemini-2.5-flash", anySummaryPrompt()).
			Return("新的线索清单", ai.Usage{TotalTokens: 50}, nil).Once()

		svc, repo := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "一个男人走进酒吧", "他打嗝了", "gemini-2.5-flash")
		require.NoError(t, err)

		var last *game.TurnResult
		for i := 0; i < 10; i++ {
			last, err = svc.SubmitTurn(ctx, "s1", fmt.Sprintf("问题 %d", i))
			require.NoError(t, err)
		}

		// 10-й ход вернул уже обновленную сводку
		assert.Equal(t, 10, last.TurnCount)
		assert.Equal(t, "新的线索清单", last.Summary)

		// История очищена целиком: обмен 10-го хода границу не переживает
		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 10, session.TurnCount)
		assert.Empty(t, session.History)
		assert.Equal(t, "新的线索清单", session.Summary)
		gen.AssertExpectations(t)
	})

	t.Run("Exactly floor(N/10) summarizations after N turns", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gemini-2.5-flash", anyHostPrompt()).
			Return("不是。", ai.Usage{TotalTokens: 10}, nil).Times(25)
		gen.On("Generate", mock.Anything, "gemini-2.5-flash", anySummaryPrompt()).
			Return("摘要", ai.Usage{TotalTokens: 5}, nil).Times(2)

		svc, repo := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "story", "truth", "gemini-2.5-flash")
		require.NoError(t, err)

		for i := 0; i < 25; i++ {
			_, err := svc.SubmitTurn(ctx, "s1", fmt.Sprintf("问题 %d", i))
			require.NoError(t, err)
		}

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, 25, session.TurnCount)
		// После 25 ходов: 2 сжатия (на 10-м и 20-м), в истории 5 обменов
		assert.Len(t, session.History, 10)
		gen.AssertExpectations(t)
	})

	t.Run("Summarization failure keeps summary and history", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gemini-2.5-flash", anyHostPrompt()).
			Return("是的。", ai.Usage{TotalTokens: 10}, nil).Times(10)
		gen.On("Generate", mock.Anything, "gemini-2.5-flash", anySummaryPrompt()).
			Return("", ai.Usage{}, errors.New("relay unavailable")).Once()

		svc, repo := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "story", "truth", "gemini-2.5-flash")
		require.NoError(t, err)

		var last *game.TurnResult
		for i := 0; i < 10; i++ {
			last, err = svc.SubmitTurn(ctx, "s1", fmt.Sprintf("问题 %d", i))
			require.NoError(t, err)
		}

		// Ход игроку засчитан, сжатие отложено до следующего триггера
		require.NotNil(t, last)
		assert.Equal(t, 10, last.TurnCount)
		assert.Equal(t, models.DefaultSummary, last.Summary)

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, models.DefaultSummary, session.Summary)
		assert.Len(t, session.History, 20)
		gen.AssertExpectations(t)
	})
}

func TestTurnSerialization(t *testing.T) {
	ctx := context.Background()

	t.Run("Concurrent turns on one session serialize", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gpt-4o", anyHostPrompt()).
			Return("是的。", ai.Usage{TotalTokens: 10}, nil)

		svc, repo := newService(t, gen)
		_, err := svc.Initialize(ctx, "s1", "story", "truth", "gpt-4o")
		require.NoError(t, err)

		const turns = 9 // не кратно 10, чтобы не задевать сжатие
		var wg sync.WaitGroup
		for i := 0; i < turns; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := svc.SubmitTurn(ctx, "s1", fmt.Sprintf("问题 %d", i))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		session, err := repo.GetSession(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, turns, session.TurnCount)
		assert.Len(t, session.History, turns*2)
	})

	t.Run("Different sessions do not block each other", func(t *testing.T) {
		gen := new(mockGenerator)
		gen.On("Generate", mock.Anything, "gpt-4o", anyHostPrompt()).
			Return("不是。", ai.Usage{TotalTokens: 10}, nil)

		svc, repo := newService(t, gen)
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			sessionID := fmt.Sprintf("s%d", i)
			_, err := svc.Initialize(ctx, sessionID, "story", "truth", "gpt-4o")
			require.NoError(t, err)
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for j := 0; j < 3; j++ {
					_, err := svc.SubmitTurn(ctx, id, "问题")
					assert.NoError(t, err)
				}
			}(sessionID)
		}
		wg.Wait()

		for i := 0; i < 5; i++ {
			session, err := repo.GetSession(ctx, fmt.Sprintf("s%d", i))
			require.NoError(t, err)
			assert.Equal(t, 3, session.TurnCount)
		}
	})
}
