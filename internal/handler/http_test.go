package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"soup-server/internal/auth"
	"soup-server/internal/game"
	"soup-server/internal/models"
	"soup-server/internal/puzzle"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret"

type mockGameService struct {
	mock.Mock
}

func (m *mockGameService) Initialize(ctx context.Context, sessionID, story, truth, model string) (string, error) {
	args := m.Called(ctx, sessionID, story, truth, model)
	return args.String(0), args.Error(1)
}

func (m *mockGameService) SubmitTurn(ctx context.Context, sessionID, message string) (*game.TurnResult, error) {
	args := m.Called(ctx, sessionID, message)
	if result := args.Get(0); result != nil {
		return result.(*game.TurnResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, username, password, inviteCode string) (*models.User, error) {
	args := m.Called(ctx, username, password, inviteCode)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*auth.TokenDetails, error) {
	args := m.Called(ctx, username, password)
	if tokens := args.Get(0); tokens != nil {
		return tokens.(*auth.TokenDetails), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuthService) SeedInviteCodes(ctx context.Context, defaultCode string) error {
	return m.Called(ctx, defaultCode).Error(0)
}

// issueTestToken подписывает токен тем же секретом, что и verifier роутера.
func issueTestToken(t *testing.T) string {
	t.Helper()
	claims := &models.Claims{
		UserID:   "7d5c2f1a-0000-0000-0000-000000000001",
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

func setupRouter(t *testing.T, gameSvc game.GameService, authSvc auth.AuthService, puzzlesDir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	verifier, err := auth.NewJWTVerifier(testJWTSecret, logger)
	require.NoError(t, err)

	router := NewRouter(
		NewGameHandler(gameSvc, logger),
		NewAuthHandler(authSvc, logger),
		NewPuzzleHandler(puzzle.NewCatalog(puzzlesDir, logger), logger),
		verifier,
		logger,
	)

	e := gin.New()
	router.RegisterRoutes(e)
	return e
}

func doJSON(t *testing.T, e *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestGameEndpoints(t *testing.T) {
	t.Run("Init returns resolved model", func(t *testing.T) {
		gameSvc := new(mockGameService)
		gameSvc.On("Initialize", mock.Anything, "s1", "汤面", "汤底", "gpt-3.5-turbo").
			Return("gemini-2.5-flash", nil).Once()

		e := setupRouter(t, gameSvc, new(mockAuthService), t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/game/init", issueTestToken(t), gin.H{
			"thread_id": "s1",
			"story":     "汤面",
			"truth":     "汤底",
			"model":     "gpt-3.5-turbo",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp["status"])
		assert.Equal(t, "gemini-2.5-flash", resp["model"])
		gameSvc.AssertExpectations(t)
	})

	t.Run("Chat returns reply with cost data", func(t *testing.T) {
		gameSvc := new(mockGameService)
		gameSvc.On("SubmitTurn", mock.Anything, "s1", "他还活着吗？").Return(&game.TurnResult{
			Reply:     "是的。",
			Summary:   models.DefaultSummary,
			TurnCount: 1,
			Model:     "gpt-4o",
			Usage: models.TurnUsage{
				TotalTokens: 1020,
				CostUSD:     0.0054,
			},
		}, nil).Once()

		e := setupRouter(t, gameSvc, new(mockAuthService), t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/game/chat", issueTestToken(t), gin.H{
			"thread_id": "s1",
			"message":   "他还活着吗？",
		})

		require.Equal(t, http.StatusOK, w.Code)
		var resp chatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "是的。", resp.Reply)
		assert.Equal(t, 1, resp.TurnCount)
		assert.Equal(t, 1020, resp.CostData.Tokens)
		assert.Equal(t, "gpt-4o", resp.CostData.Model)
		gameSvc.AssertExpectations(t)
	})

	t.Run("Chat on unknown session returns 404", func(t *testing.T) {
		gameSvc := new(mockGameService)
		gameSvc.On("SubmitTurn", mock.Anything, "nope", "x").
			Return(nil, models.ErrSessionNotFound).Once()

		e := setupRouter(t, gameSvc, new(mockAuthService), t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/game/chat", issueTestToken(t), gin.H{
			"thread_id": "nope",
			"message":   "x",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Generation failure returns 502", func(t *testing.T) {
		gameSvc := new(mockGameService)
		gameSvc.On("SubmitTurn", mock.Anything, "s1", "x").
			Return(nil, fmt.Errorf("%w: timeout", models.ErrGenerationFailed)).Once()

		e := setupRouter(t, gameSvc, new(mockAuthService), t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/game/chat", issueTestToken(t), gin.H{
			"thread_id": "s1",
			"message":   "x",
		})

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Missing token rejected", func(t *testing.T) {
		e := setupRouter(t, new(mockGameService), new(mockAuthService), t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/game/chat", "", gin.H{
			"thread_id": "s1",
			"message":   "x",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Invalid body rejected", func(t *testing.T) {
		e := setupRouter(t, new(mockGameService), new(mockAuthService), t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/game/init", issueTestToken(t), gin.H{
			"thread_id": "s1",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthEndpoints(t *testing.T) {
	t.Run("Register", func(t *testing.T) {
		authSvc := new(mockAuthService)
		authSvc.On("Register", mock.Anything, "alice", "secret123", "TURTLE_HKY").
			Return(&models.User{Username: "alice"}, nil).Once()

		e := setupRouter(t, new(mockGameService), authSvc, t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/auth/register", "", gin.H{
			"username":    "alice",
			"password":    "secret123",
			"invite_code": "TURTLE_HKY",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		authSvc.AssertExpectations(t)
	})

	t.Run("Register with used code returns 400", func(t *testing.T) {
		authSvc := new(mockAuthService)
		authSvc.On("Register", mock.Anything, "alice", "secret123", "OLD").
			Return(nil, models.ErrInviteCodeUsed).Once()

		e := setupRouter(t, new(mockGameService), authSvc, t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/auth/register", "", gin.H{
			"username":    "alice",
			"password":    "secret123",
			"invite_code": "OLD",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Login failure returns 401", func(t *testing.T) {
		authSvc := new(mockAuthService)
		authSvc.On("Login", mock.Anything, "alice", "wrong").
			Return(nil, models.ErrInvalidCredentials).Once()

		e := setupRouter(t, new(mockGameService), authSvc, t.TempDir())
		w := doJSON(t, e, http.MethodPost, "/auth/login", "", gin.H{
			"username": "alice",
			"password": "wrong",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPuzzlesEndpoint(t *testing.T) {
	t.Run("Lists catalog puzzles", func(t *testing.T) {
		dir := t.TempDir()
		content := `{"title":"酒吧的水","story":"一个男人走进酒吧...","truth":"他打嗝了"}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hiccup.json"), []byte(content), 0o644))

		e := setupRouter(t, new(mockGameService), new(mockAuthService), dir)
		w := doJSON(t, e, http.MethodGet, "/puzzles", issueTestToken(t), nil)

		require.Equal(t, http.StatusOK, w.Code)
		var puzzles []puzzle.Puzzle
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &puzzles))
		require.Len(t, puzzles, 1)
		assert.Equal(t, "酒吧的水", puzzles[0].Title)
	})
}
