package auth

import (
	"context"
	"errors"
	"fmt"

	"soup-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ UserRepository = (*pgUserRepository)(nil)

const (
	createUserQuery        = `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	getUserByUsernameQuery = `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	getUserByIDQuery       = `SELECT id, username, password_hash, created_at FROM users WHERE id = $1`
)

type pgUserRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgUserRepository creates a new PostgreSQL-backed UserRepository.
func NewPgUserRepository(db DBTX, logger *zap.Logger) UserRepository {
	return &pgUserRepository{
		db:     db,
		logger: logger.Named("PgUserRepo"),
	}
}

// CreateUser inserts a new user into the database.
func (r *pgUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, createUserQuery, user.Username, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 - unique_violation (дубликат username)
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create duplicate user", zap.String("username", user.Username))
			return models.ErrUserAlreadyExists
		}
		r.logger.Error("Failed to create user in postgres", zap.Error(err), zap.String("username", user.Username))
		return fmt.Errorf("failed to create user in postgres: %w", err)
	}
	r.logger.Info("User created", zap.String("userID", user.ID.String()), zap.String("username", user.Username))
	return nil
}

// GetUserByUsername retrieves a user by their username.
func (r *pgUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := pgxscan.Get(ctx, r.db, &user, getUserByUsernameQuery, username)
	if err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("User not found by username", zap.String("username", username))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by username from postgres", zap.Error(err), zap.String("username", username))
		return nil, fmt.Errorf("failed to get user by username from postgres: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *pgUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := pgxscan.Get(ctx, r.db, &user, getUserByIDQuery, id)
	if err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("User not found by id", zap.String("userID", id))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Failed to get user by id from postgres", zap.Error(err), zap.String("userID", id))
		return nil, fmt.Errorf("failed to get user by id from postgres: %w", err)
	}
	return &user, nil
}
