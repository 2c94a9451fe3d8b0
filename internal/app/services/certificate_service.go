package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/validation"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/filestorage"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/metrics"
)

// PublicSearchLimit caps unauthenticated listings at the most recent records.
const PublicSearchLimit = 50

// CertificateStore is the repository surface the certificate service uses.
type CertificateStore interface {
	Create(ctx context.Context, cert *models.Certificate) error
	GetByID(ctx context.Context, id int64) (*models.Certificate, error)
	Update(ctx context.Context, cert *models.Certificate) error
	Delete(ctx context.Context, id int64) (string, error)
	Search(ctx context.Context, filter dto.SearchFilter) ([]*models.Certificate, error)
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
}

// CertificateService defines the certificate business operations
type CertificateService interface {
	Create(ctx context.Context, req dto.CreateCertificateRequest, file *multipart.FileHeader) (*models.Certificate, error)
	Update(ctx context.Context, id int64, req dto.UpdateCertificateRequest) (*models.Certificate, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter dto.SearchFilter) ([]*models.Certificate, error)
	FileURL(name string) string
}

// certificateServiceImpl implements the CertificateService interface
type certificateServiceImpl struct {
	repo    CertificateStore
	storage filestorage.Storage
	metrics *metrics.Metrics
}

// NewCertificateService creates a new certificate service instance
func NewCertificateService(repo CertificateStore, storage filestorage.Storage, m *metrics.Metrics) CertificateService {
	return &certificateServiceImpl{
		repo:    repo,
		storage: storage,
		metrics: m,
	}
}

// Create validates the request, stages the uploaded file, inserts the record
// and only then promotes the file into the served directory. A failed insert
// discards the staged file so no orphan outlives the request.
func (s *certificateServiceImpl) Create(ctx context.Context, req dto.CreateCertificateRequest, file *multipart.FileHeader) (*models.Certificate, error) {
	fields, err := validation.Validate(ctx, validation.Input{
		HolderName: req.HolderName,
		DocumentID: req.DocumentID,
		Type:       req.Type,
		Code:       req.Code,
		Title:      req.Title,
		Duration:   req.Duration,
		IssueDate:  req.IssueDate,
		ExpiryDate: req.ExpiryDate,
		HasFile:    file != nil,
	}, 0, s.repo, true)
	if err != nil {
		return nil, err
	}

	fileRef, err := s.storage.SaveStaged(file)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to stage certificate file")
		return nil, fmt.Errorf("error storing certificate file: %w", err)
	}

	cert := &models.Certificate{
		HolderName: fields.HolderName,
		DocumentID: fields.DocumentID,
		Type:       fields.Type,
		Code:       fields.Code,
		Title:      fields.Title,
		Duration:   fields.Duration,
		IssueDate:  fields.IssueDate,
		ExpiryDate: fields.ExpiryDate,
		FileRef:    fileRef,
	}

	if err := s.repo.Create(ctx, cert); err != nil {
		if discardErr := s.storage.Discard(fileRef); discardErr != nil {
			logger.Warn().Err(discardErr).Str("fileRef", fileRef).Msg("Failed to discard staged file after insert failure")
		}
		return nil, err
	}

	if err := s.storage.Promote(fileRef); err != nil {
		logger.Error().Err(err).Str("fileRef", fileRef).Msg("Failed to promote certificate file")
		if _, delErr := s.repo.Delete(ctx, cert.ID); delErr != nil {
			logger.Error().Err(delErr).Int64("certificateID", cert.ID).Msg("Failed to roll back record after promote failure")
		}
		if discardErr := s.storage.Discard(fileRef); discardErr != nil {
			logger.Warn().Err(discardErr).Str("fileRef", fileRef).Msg("Failed to discard staged file after promote failure")
		}
		return nil, fmt.Errorf("error storing certificate file: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CertificatesCreated.Inc()
	}

	return cert, nil
}

// Update validates the request against the existing record and rewrites its
// mutable fields. The stored file is never replaced here.
func (s *certificateServiceImpl) Update(ctx context.Context, id int64, req dto.UpdateCertificateRequest) (*models.Certificate, error) {
	cert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields, err := validation.Validate(ctx, validation.Input{
		HolderName: req.HolderName,
		DocumentID: req.DocumentID,
		Type:       req.Type,
		Code:       req.Code,
		Title:      req.Title,
		Duration:   req.Duration,
		IssueDate:  req.IssueDate,
		ExpiryDate: req.ExpiryDate,
	}, id, s.repo, false)
	if err != nil {
		return nil, err
	}

	cert.HolderName = fields.HolderName
	cert.DocumentID = fields.DocumentID
	cert.Type = fields.Type
	cert.Code = fields.Code
	cert.Title = fields.Title
	cert.Duration = fields.Duration
	cert.IssueDate = fields.IssueDate
	cert.ExpiryDate = fields.ExpiryDate

	if err := s.repo.Update(ctx, cert); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CertificatesUpdated.Inc()
	}

	return cert, nil
}

// Delete removes the record and releases the backing file asynchronously.
// The response does not wait for the file removal; a failure there is logged
// and never reverses the record deletion.
func (s *certificateServiceImpl) Delete(ctx context.Context, id int64) error {
	fileRef, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	go func(ref string) {
		if err := s.storage.DeleteFile(ref); err != nil {
			logger.Warn().Err(err).Str("fileRef", ref).Msg("Failed to delete certificate file")
		}
	}(fileRef)

	if s.metrics != nil {
		s.metrics.CertificatesDeleted.Inc()
	}

	return nil
}

// Search lists certificates matching the filter, newest first.
func (s *certificateServiceImpl) Search(ctx context.Context, filter dto.SearchFilter) ([]*models.Certificate, error) {
	certificates, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Searches.Inc()
	}

	return certificates, nil
}

// FileURL resolves the public download URL for a stored file.
func (s *certificateServiceImpl) FileURL(name string) string {
	return s.storage.FileURL(name)
}
