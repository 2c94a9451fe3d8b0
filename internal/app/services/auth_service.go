package services

import (
	"context"
	"errors"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/auth"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/metrics"
)

// AdminStore is the repository surface the auth service uses.
type AdminStore interface {
	GetByUsername(ctx context.Context, username string) (*models.Admin, error)
}

// TokenIssuer signs tokens for authenticated admins.
type TokenIssuer interface {
	GenerateToken(adminID int64, username string) (string, int, error)
}

// AuthService defines the authentication operations
type AuthService interface {
	Login(ctx context.Context, username, password string) (token string, expiresIn int, err error)
}

// authServiceImpl implements the AuthService interface
type authServiceImpl struct {
	admins  AdminStore
	issuer  TokenIssuer
	metrics *metrics.Metrics
}

// NewAuthService creates a new auth service instance
func NewAuthService(admins AdminStore, issuer TokenIssuer, m *metrics.Metrics) AuthService {
	return &authServiceImpl{
		admins:  admins,
		issuer:  issuer,
		metrics: m,
	}
}

// Login verifies the credentials and issues a signed token. An unknown
// username and a wrong password return the same generic error so the
// response does not reveal which part failed.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (string, int, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrAdminNotFound) {
			s.countLogin("failure")
			return "", 0, apperrors.ErrInvalidCredentials
		}
		logger.Error().Err(err).Msg("Error looking up admin during login")
		return "", 0, err
	}

	if !auth.CheckPassword(admin.PasswordHash, password) {
		s.countLogin("failure")
		return "", 0, apperrors.ErrInvalidCredentials
	}

	token, expiresIn, err := s.issuer.GenerateToken(admin.ID, admin.Username)
	if err != nil {
		logger.Error().Err(err).Msg("Error generating token")
		return "", 0, err
	}

	s.countLogin("success")
	logger.Info().Str("username", admin.Username).Msg("Admin logged in")
	return token, expiresIn, nil
}

func (s *authServiceImpl) countLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
