package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"soup-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenDetails - выданный токен доступа и время его истечения.
type TokenDetails struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// AuthService defines the authentication and registration contract.
type AuthService interface {
	// Register creates a new user; the invite code must exist and be unused,
	// it is marked used on success.
	Register(ctx context.Context, username, password, inviteCode string) (*models.User, error)

	// Login authenticates a user and returns a signed access token.
	Login(ctx context.Context, username, password string) (*TokenDetails, error)

	// GetUser returns the user for a verified token's user id.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// SeedInviteCodes inserts the default invite code when the table is empty.
	SeedInviteCodes(ctx context.Context, defaultCode string) error
}

// Config содержит настройки сервиса аутентификации.
type Config struct {
	JWTSecret      string
	PasswordPepper string
	AccessTokenTTL time.Duration
}

// Compile-time check to ensure authServiceImpl implements AuthService
var _ AuthService = (*authServiceImpl)(nil)

type authServiceImpl struct {
	userRepo   UserRepository
	inviteRepo InviteCodeRepository
	cfg        Config
	logger     *zap.Logger
}

// NewAuthService creates a new instance of authServiceImpl.
func NewAuthService(userRepo UserRepository, inviteRepo InviteCodeRepository, cfg Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		inviteRepo: inviteRepo,
		cfg:        cfg,
		logger:     logger.Named("AuthService"),
	}
}

// Register creates a new user gated by a one-time invite code.
func (s *authServiceImpl) Register(ctx context.Context, username, password, inviteCode string) (*models.User, error) {
	username = strings.TrimSpace(username)
	logFields := []zap.Field{zap.String("username", username)}
	s.logger.Info("Registering new user", logFields...)

	if username == "" || password == "" {
		s.logger.Warn("Registration attempt with empty username or password", logFields...)
		return nil, models.ErrInvalidCredentials
	}

	// Проверяем код регистрации ДО создания пользователя
	code, err := s.inviteRepo.GetCode(ctx, inviteCode)
	if err != nil {
		s.logger.Warn("Registration attempt with invalid invite code", append(logFields, zap.Error(err))...)
		return nil, err
	}
	if code.IsUsed {
		s.logger.Warn("Registration attempt with already used invite code", logFields...)
		return nil, models.ErrInviteCodeUsed
	}

	existingUser, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrUserNotFound) {
		s.logger.Error("Error checking existing username during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("error checking existing username: %w", err)
	}
	if existingUser != nil {
		s.logger.Warn("Registration attempt for existing username", logFields...)
		return nil, models.ErrUserAlreadyExists
	}

	// Применяем перец перед хешированием
	hashedPassword, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// Код помечается использованным только после успешного создания
	if err := s.inviteRepo.MarkUsed(ctx, inviteCode); err != nil {
		s.logger.Error("Failed to mark invite code as used after registration", append(logFields, zap.Error(err))...)
		return nil, err
	}

	s.logger.Info("User registered successfully", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login authenticates a user and returns a signed JWT access token.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*TokenDetails, error) {
	s.logger.Info("Login attempt", zap.String("username", username))

	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if !checkPasswordHash(password, user.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login attempt with wrong password", zap.String("username", username))
		return nil, models.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.AccessTokenTTL)
	claims := &models.Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	s.logger.Info("Login successful", zap.String("username", username))
	return &TokenDetails{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// GetUser returns the user record for a verified user id.
func (s *authServiceImpl) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// SeedInviteCodes создает стартовый код регистрации, если таблица пуста.
func (s *authServiceImpl) SeedInviteCodes(ctx context.Context, defaultCode string) error {
	count, err := s.inviteRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 || defaultCode == "" {
		return nil
	}

	if err := s.inviteRepo.CreateCode(ctx, defaultCode); err != nil {
		return err
	}
	s.logger.Info("Default invite code seeded", zap.String("code", defaultCode))
	return nil
}

// hashPassword применяет перец через HMAC-SHA256 и хеширует bcrypt.
func hashPassword(password, pepper string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(applyPepper(password, pepper), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPasswordHash compares a plain text password (after applying pepper) with a stored hash.
func checkPasswordHash(password, hash, pepper string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), applyPepper(password, pepper)) == nil
}

// applyPepper подмешивает серверный секрет в пароль до bcrypt.
func applyPepper(password, pepper string) []byte {
	if pepper == "" {
		return []byte(password)
	}
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(password))
	return mac.Sum(nil)
}
