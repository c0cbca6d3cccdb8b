package auth

import (
	"context"
	"fmt"

	"soup-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgInviteCodeRepository implements InviteCodeRepository
var _ InviteCodeRepository = (*pgInviteCodeRepository)(nil)

const (
	getInviteCodeQuery    = `SELECT code, is_used FROM invite_codes WHERE code = $1`
	markInviteUsedQuery   = `UPDATE invite_codes SET is_used = TRUE WHERE code = $1`
	countInviteCodesQuery = `SELECT COUNT(*) FROM invite_codes`
	createInviteCodeQuery = `INSERT INTO invite_codes (code) VALUES ($1) ON CONFLICT (code) DO NOTHING`
)

type pgInviteCodeRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewPgInviteCodeRepository creates a new PostgreSQL-backed InviteCodeRepository.
func NewPgInviteCodeRepository(db DBTX, logger *zap.Logger) InviteCodeRepository {
	return &pgInviteCodeRepository{
		db:     db,
		logger: logger.Named("PgInviteCodeRepo"),
	}
}

func (r *pgInviteCodeRepository) GetCode(ctx context.Context, code string) (*models.InviteCode, error) {
	var inviteCode models.InviteCode
	err := pgxscan.Get(ctx, r.db, &inviteCode, getInviteCodeQuery, code)
	if err != nil {
		if pgxscan.NotFound(err) {
			r.logger.Debug("Invite code not found", zap.String("code", code))
			return nil, models.ErrInviteCodeInvalid
		}
		r.logger.Error("Failed to get invite code from postgres", zap.Error(err))
		return nil, fmt.Errorf("failed to get invite code from postgres: %w", err)
	}
	return &inviteCode, nil
}

func (r *pgInviteCodeRepository) MarkUsed(ctx context.Context, code string) error {
	if _, err := r.db.Exec(ctx, markInviteUsedQuery, code); err != nil {
		r.logger.Error("Failed to mark invite code as used", zap.Error(err), zap.String("code", code))
		return fmt.Errorf("failed to mark invite code as used: %w", err)
	}
	return nil
}

func (r *pgInviteCodeRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := pgxscan.Get(ctx, r.db, &count, countInviteCodesQuery); err != nil {
		r.logger.Error("Failed to count invite codes", zap.Error(err))
		return 0, fmt.Errorf("failed to count invite codes: %w", err)
	}
	return count, nil
}

func (r *pgInviteCodeRepository) CreateCode(ctx context.Context, code string) error {
	if _, err := r.db.Exec(ctx, createInviteCodeQuery, code); err != nil {
		r.logger.Error("Failed to create invite code", zap.Error(err), zap.String("code", code))
		return fmt.Errorf("failed to create invite code: %w", err)
	}
	return nil
}
