package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/dberrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

const certificateColumns = "id, nombre, dni, tipo, codigo, certificado_nombre, duracion, fecha_emision, fecha_caducidad, archivo, creado_en"

// CertificateRepository handles certificate database operations
type CertificateRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCertificateRepository creates a new CertificateRepository
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new certificate and fills in its id and creation time.
// A code collision at insert time means a concurrent write slipped past the
// validation pre-check; it surfaces as a conflict, not a validation error.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	sql, args, err := r.sb.Insert("certificados").
		Columns("nombre", "dni", "tipo", "codigo", "certificado_nombre", "duracion", "fecha_emision", "fecha_caducidad", "archivo").
		Values(cert.HolderName, cert.DocumentID, cert.Type, cert.Code, cert.Title, cert.Duration, cert.IssueDate, cert.ExpiryDate, cert.FileRef).
		Suffix("RETURNING id, creado_en").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create certificate SQL")
		return fmt.Errorf("failed to build create certificate query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&cert.ID, &cert.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "idx_certificados_codigo") {
			return apperrors.NewConflictError("code already exists")
		}
		logger.Error().Err(err).Msg("Error executing create certificate query")
		return fmt.Errorf("error creating certificate: %w", err)
	}

	return nil
}

// GetByID retrieves a certificate by primary key.
func (r *CertificateRepository) GetByID(ctx context.Context, id int64) (*models.Certificate, error) {
	sql, args, err := r.sb.Select(certificateColumns).
		From("certificados").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get certificate by ID SQL")
		return nil, fmt.Errorf("failed to build get certificate query: %w", err)
	}

	cert, err := scanCertificate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCertificateNotFound
		}
		logger.Error().Err(err).Int64("certificateID", id).Msg("Error scanning certificate row")
		return nil, fmt.Errorf("error getting certificate by ID: %w", err)
	}

	return cert, nil
}

// Update rewrites the mutable fields of an existing certificate. The stored
// file reference and creation time are left untouched.
func (r *CertificateRepository) Update(ctx context.Context, cert *models.Certificate) error {
	sql, args, err := r.sb.Update("certificados").
		SetMap(map[string]interface{}{
			"nombre":             cert.HolderName,
			"dni":                cert.DocumentID,
			"tipo":               cert.Type,
			"codigo":             cert.Code,
			"certificado_nombre": cert.Title,
			"duracion":           cert.Duration,
			"fecha_emision":      cert.IssueDate,
			"fecha_caducidad":    cert.ExpiryDate,
		}).
		Where(squirrel.Eq{"id": cert.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update certificate SQL")
		return fmt.Errorf("failed to build update certificate query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "idx_certificados_codigo") {
			return apperrors.NewConflictError("code already exists")
		}
		logger.Error().Err(err).Int64("certificateID", cert.ID).Msg("Error executing update certificate query")
		return fmt.Errorf("error updating certificate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrCertificateNotFound
	}

	return nil
}

// Delete removes a certificate and returns the file reference it held so the
// caller can release the backing file.
func (r *CertificateRepository) Delete(ctx context.Context, id int64) (string, error) {
	sql, args, err := r.sb.Delete("certificados").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING archivo").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete certificate SQL")
		return "", fmt.Errorf("failed to build delete certificate query: %w", err)
	}

	var fileRef string
	err = r.db.QueryRow(ctx, sql, args...).Scan(&fileRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrCertificateNotFound
		}
		logger.Error().Err(err).Int64("certificateID", id).Msg("Error executing delete certificate query")
		return "", fmt.Errorf("error deleting certificate: %w", err)
	}

	return fileRef, nil
}

// buildSearchQuery translates the filter into SQL: conjunction of the
// substring match, inclusive issue-date bounds and the type filter, newest
// first. A zero Limit returns every match.
func (r *CertificateRepository) buildSearchQuery(filter dto.SearchFilter) (string, []interface{}, error) {
	builder := r.sb.Select(certificateColumns).
		From("certificados").
		OrderBy("creado_en DESC")

	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.ILike{"nombre": pattern},
			squirrel.ILike{"dni": pattern},
			squirrel.ILike{"codigo": pattern},
		})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(squirrel.GtOrEq{"fecha_emision": *filter.DateFrom})
	}
	if filter.DateUntil != nil {
		builder = builder.Where(squirrel.LtOrEq{"fecha_emision": *filter.DateUntil})
	}
	if filter.Type != "" {
		if filter.Type == models.TypeOther {
			// "Otros" groups records whose type is missing or not in the fixed set.
			builder = builder.Where(squirrel.Or{
				squirrel.Eq{"tipo": nil},
				squirrel.NotEq{"tipo": models.KnownTypes},
			})
		} else {
			builder = builder.Where(squirrel.Eq{"tipo": filter.Type})
		}
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	return builder.ToSql()
}

// Search retrieves certificates matching the filter.
func (r *CertificateRepository) Search(ctx context.Context, filter dto.SearchFilter) ([]*models.Certificate, error) {
	sql, args, err := r.buildSearchQuery(filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error building search certificates SQL")
		return nil, fmt.Errorf("failed to build search certificates query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing search certificates query")
		return nil, fmt.Errorf("error searching certificates: %w", err)
	}
	defer rows.Close()

	certificates := []*models.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning certificate row during search")
			return nil, fmt.Errorf("error scanning certificate row: %w", err)
		}
		certificates = append(certificates, cert)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating certificate rows")
		return nil, fmt.Errorf("error iterating certificate rows: %w", err)
	}

	return certificates, nil
}

// CodeExists reports whether another record already holds the given code.
// excludeID, when non-zero, names a record whose own code does not count.
func (r *CertificateRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	builder := r.sb.Select("1").
		From("certificados").
		Where(squirrel.Eq{"codigo": code}).
		Limit(1)
	if excludeID != 0 {
		builder = builder.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building code exists SQL")
		return false, fmt.Errorf("failed to build code exists query: %w", err)
	}

	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		logger.Error().Err(err).Str("code", code).Msg("Error executing code exists query")
		return false, fmt.Errorf("error checking code existence: %w", err)
	}

	return true, nil
}

// ListFileRefs returns every stored file name currently referenced by a
// certificate. Used by the orphan sweeper.
func (r *CertificateRepository) ListFileRefs(ctx context.Context) ([]string, error) {
	sql, args, err := r.sb.Select("archivo").From("certificados").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list file refs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list file refs query")
		return nil, fmt.Errorf("error listing file refs: %w", err)
	}
	defer rows.Close()

	refs := []string{}
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("error scanning file ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file refs: %w", err)
	}

	return refs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	cert := &models.Certificate{}
	err := row.Scan(
		&cert.ID,
		&cert.HolderName,
		&cert.DocumentID,
		&cert.Type,
		&cert.Code,
		&cert.Title,
		&cert.Duration,
		&cert.IssueDate,
		&cert.ExpiryDate,
		&cert.FileRef,
		&cert.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return cert, nil
}
