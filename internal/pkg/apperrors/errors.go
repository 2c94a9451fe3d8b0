package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrCertificateNotFound = errors.New("certificate not found")
	ErrConflict            = errors.New("conflict")
	ErrCodeAlreadyExists   = errors.New("code already exists")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTooManyAttempts    = errors.New("too many login attempts")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Admin errors
	ErrAdminNotFound       = errors.New("admin not found")
	ErrUsernameAlreadyUsed = errors.New("username already used")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Field   string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithField attaches the offending field name
func (e *CustomError) WithField(field string) *CustomError {
	e.Field = field
	return e
}

// NewValidationError creates a field-level validation error
func NewValidationError(field, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Field:   field,
	}
}

// NewNotFoundError creates a new custom error for a missing certificate
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrCertificateNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for uniqueness violations
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}
