package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses.
//
// A duplicate code caught by the pre-check comes back as a 400 field error;
// the same duplicate caught by the unique index during a concurrent write
// surfaces as ErrConflict and maps to 409. Unknown errors are logged and
// answered with a generic 500 so internal detail never leaks.
func HandleAPIError(c *gin.Context, err error) {
	var custom *apperrors.CustomError

	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())
		if errors.As(err, &custom) && custom.Field != "" {
			errorDetail = errorDetail.WithField(custom.Field)
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))

	case errors.Is(err, apperrors.ErrCodeAlreadyExists):
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "code already exists").WithField("codigo")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))

	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeConflict, "code already exists")))

	case errors.Is(err, apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, err.Error())))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")))

	case errors.Is(err, apperrors.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))

	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))

	case errors.Is(err, apperrors.ErrTokenInvalid):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))

	case errors.Is(err, apperrors.ErrCertificateNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeNotFound, "Certificate not found")))

	case errors.Is(err, apperrors.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeTooManyAttempts, "Too many login attempts, try again later")))

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled API error")
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
