package auth

import (
	"context"

	"soup-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX абстрагирует pgxpool.Pool и pgx.Tx для репозиториев.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository - хранилище учетных записей.
type UserRepository interface {
	// CreateUser inserts a new user, filling in the generated ID.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByUsername returns models.ErrUserNotFound when absent.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByID returns models.ErrUserNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// InviteCodeRepository - хранилище одноразовых кодов регистрации.
type InviteCodeRepository interface {
	// GetCode returns models.ErrInviteCodeInvalid when the code is unknown.
	GetCode(ctx context.Context, code string) (*models.InviteCode, error)
	// MarkUsed помечает код использованным.
	MarkUsed(ctx context.Context, code string) error
	// Count возвращает общее число кодов.
	Count(ctx context.Context) (int, error)
	// CreateCode добавляет новый код (ничего не делает, если код уже есть).
	CreateCode(ctx context.Context, code string) error
}
