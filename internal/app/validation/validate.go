package validation

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/helpers"
)

const (
	maxHolderNameLength = 200
	maxDocumentIDLength = 20
)

// CodeChecker answers whether a certificate code is already taken.
// excludeID is ignored when zero; on update it names the record being edited.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
}

// Input holds the raw wire fields of a create or update request.
type Input struct {
	HolderName string
	DocumentID string
	Type       string
	Code       string
	Title      string
	Duration   string
	IssueDate  string
	ExpiryDate string
	HasFile    bool
}

// Fields holds the normalized values that passed every rule. Strings are
// trimmed; empty optionals become nil.
type Fields struct {
	HolderName string
	DocumentID string
	Type       *string
	Code       *string
	Title      *string
	Duration   *string
	IssueDate  *time.Time
	ExpiryDate *time.Time
}

// Validate checks the input against the certificate rules in a fixed order
// and returns the first failure as a field-level error. It performs no
// writes; the only storage access is the code uniqueness lookup through
// checker. Set forCreate when a file attachment is mandatory.
func Validate(ctx context.Context, in Input, existingID int64, checker CodeChecker, forCreate bool) (*Fields, error) {
	holderName := strings.TrimSpace(in.HolderName)
	if holderName == "" {
		return nil, apperrors.NewValidationError("nombre", "nombre is required")
	}
	if utf8.RuneCountInString(holderName) > maxHolderNameLength {
		return nil, apperrors.NewValidationError("nombre", fmt.Sprintf("nombre must not exceed %d characters", maxHolderNameLength))
	}

	documentID := strings.TrimSpace(in.DocumentID)
	if documentID == "" {
		return nil, apperrors.NewValidationError("dni", "dni is required")
	}
	if utf8.RuneCountInString(documentID) > maxDocumentIDLength {
		return nil, apperrors.NewValidationError("dni", fmt.Sprintf("dni must not exceed %d characters", maxDocumentIDLength))
	}
	if !isAlphanumeric(documentID) {
		return nil, apperrors.NewValidationError("dni", "dni must contain only letters and digits")
	}

	code := strings.TrimSpace(in.Code)
	if code != "" {
		taken, err := checker.CodeExists(ctx, code, existingID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperrors.ErrCodeAlreadyExists
		}
	}

	// Today is fixed once so both date rules see the same calendar day.
	today := helpers.Today()

	var issueDate *time.Time
	if raw := strings.TrimSpace(in.IssueDate); raw != "" {
		parsed, err := helpers.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("fecha_emision", "fecha_emision must be a valid date (YYYY-MM-DD)")
		}
		if parsed.After(today) {
			return nil, apperrors.NewValidationError("fecha_emision", "fecha_emision cannot be in the future")
		}
		issueDate = &parsed
	}

	var expiryDate *time.Time
	if raw := strings.TrimSpace(in.ExpiryDate); raw != "" {
		parsed, err := helpers.ParseDate(raw)
		if err != nil {
			return nil, apperrors.NewValidationError("fecha_caducidad", "fecha_caducidad must be a valid date (YYYY-MM-DD)")
		}
		if issueDate != nil && parsed.Before(*issueDate) {
			return nil, apperrors.NewValidationError("fecha_caducidad", "fecha_caducidad cannot be earlier than fecha_emision")
		}
		expiryDate = &parsed
	}

	if forCreate && !in.HasFile {
		return nil, apperrors.NewValidationError("archivo", "a PDF file is required")
	}

	return &Fields{
		HolderName: holderName,
		DocumentID: documentID,
		Type:       optional(in.Type),
		Code:       optional(in.Code),
		Title:      optional(in.Title),
		Duration:   optional(in.Duration),
		IssueDate:  issueDate,
		ExpiryDate: expiryDate,
	}, nil
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func optional(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
