package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	CertificateRepository *CertificateRepository
	AdminRepository       *AdminRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		CertificateRepository: NewCertificateRepository(db),
		AdminRepository:       NewAdminRepository(db),
	}
}
