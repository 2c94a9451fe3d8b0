package services

import (
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/repositories"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/auth"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/filestorage"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/metrics"
)

// Services holds all the service instances
type Services struct {
	AuthService        AuthService
	CertificateService CertificateService
}

// NewServices initializes all services
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, storage filestorage.Storage, m *metrics.Metrics) *Services {
	return &Services{
		AuthService:        NewAuthService(repos.AdminRepository, jwtService, m),
		CertificateService: NewCertificateService(repos.CertificateRepository, storage, m),
	}
}
