package dto

import (
	"time"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/helpers"
)

// CreateCertificateRequest carries the multipart form fields for a new
// certificate. The file part travels separately in the request.
type CreateCertificateRequest struct {
	HolderName string `form:"nombre"`
	DocumentID string `form:"dni"`
	Type       string `form:"tipo"`
	Code       string `form:"codigo"`
	Title      string `form:"certificado_nombre"`
	Duration   string `form:"duracion"`
	IssueDate  string `form:"fecha_emision"`
	ExpiryDate string `form:"fecha_caducidad"`
}

// UpdateCertificateRequest carries the JSON body for editing an existing
// certificate. The stored file is never replaced through this path.
type UpdateCertificateRequest struct {
	HolderName string `json:"nombre"`
	DocumentID string `json:"dni"`
	Type       string `json:"tipo"`
	Code       string `json:"codigo"`
	Title      string `json:"certificado_nombre"`
	Duration   string `json:"duracion"`
	IssueDate  string `json:"fecha_emision"`
	ExpiryDate string `json:"fecha_caducidad"`
}

// SearchFilter holds the normalized query parameters for listing certificates.
type SearchFilter struct {
	Query     string
	Type      string
	DateFrom  *time.Time
	DateUntil *time.Time
	Limit     int
}

// HasCriteria reports whether any parameter narrows the result set.
func (f SearchFilter) HasCriteria() bool {
	return f.Query != "" || f.Type != "" || f.DateFrom != nil || f.DateUntil != nil
}

// CertificateResponse is the wire representation of a certificate record.
// Optional columns serialize as JSON null, matching the stored values.
type CertificateResponse struct {
	ID         int64     `json:"id"`
	HolderName string    `json:"nombre"`
	DocumentID string    `json:"dni"`
	Type       *string   `json:"tipo"`
	Code       *string   `json:"codigo"`
	Title      *string   `json:"certificado_nombre"`
	Duration   *string   `json:"duracion"`
	IssueDate  *string   `json:"fecha_emision"`
	ExpiryDate *string   `json:"fecha_caducidad"`
	FileRef    string    `json:"archivo"`
	CreatedAt  time.Time `json:"creado_en"`
	URL        string    `json:"url"`
}

// ToCertificateResponse maps a model to its wire form. fileURL is the
// fully resolved download URL for the stored file.
func ToCertificateResponse(c *models.Certificate, fileURL string) *CertificateResponse {
	return &CertificateResponse{
		ID:         c.ID,
		HolderName: c.HolderName,
		DocumentID: c.DocumentID,
		Type:       c.Type,
		Code:       c.Code,
		Title:      c.Title,
		Duration:   c.Duration,
		IssueDate:  helpers.FormatDate(c.IssueDate),
		ExpiryDate: helpers.FormatDate(c.ExpiryDate),
		FileRef:    c.FileRef,
		CreatedAt:  c.CreatedAt,
		URL:        fileURL,
	}
}
