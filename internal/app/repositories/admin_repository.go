package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/dberrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

// AdminRepository handles admin account database operations
type AdminRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAdminRepository creates a new AdminRepository
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByUsername retrieves an admin account by exact username.
func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	sql, args, err := r.sb.Select("id", "username", "password_hash", "created_at").
		From("admins").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get admin by username SQL")
		return nil, fmt.Errorf("failed to build get admin query: %w", err)
	}

	admin := &models.Admin{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAdminNotFound
		}
		logger.Error().Err(err).Str("username", username).Msg("Error scanning admin row")
		return nil, fmt.Errorf("error getting admin by username: %w", err)
	}

	return admin, nil
}

// Create inserts a new admin account.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	sql, args, err := r.sb.Insert("admins").
		Columns("username", "password_hash").
		Values(admin.Username, admin.PasswordHash).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create admin SQL")
		return fmt.Errorf("failed to build create admin query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrUsernameAlreadyUsed
		}
		logger.Error().Err(err).Msg("Error executing create admin query")
		return fmt.Errorf("error creating admin: %w", err)
	}

	return nil
}

// Count returns the number of admin accounts.
func (r *AdminRepository) Count(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("admins").ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count admins query: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		logger.Error().Err(err).Msg("Error executing count admins query")
		return 0, fmt.Errorf("error counting admins: %w", err)
	}

	return count, nil
}
