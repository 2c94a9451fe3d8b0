package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
)

func respondWith(err error) (*httptest.ResponseRecorder, *dto.ErrorResponse) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	HandleAPIError(c, err)

	var body dto.ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, &body
}

func TestHandleAPIErrorValidationCarriesField(t *testing.T) {
	w, body := respondWith(apperrors.NewValidationError("nombre", "nombre is required"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "nombre", body.Error.Field)
	assert.Equal(t, "nombre is required", body.Error.Message)
}

func TestHandleAPIErrorDuplicateCodePreCheck(t *testing.T) {
	w, body := respondWith(apperrors.ErrCodeAlreadyExists)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "codigo", body.Error.Field)
	assert.Equal(t, "code already exists", body.Error.Message)
}

func TestHandleAPIErrorConflictRace(t *testing.T) {
	w, _ := respondWith(apperrors.ErrConflict)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandleAPIErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperrors.ErrAuthRequired, http.StatusUnauthorized},
		{apperrors.ErrTokenExpired, http.StatusForbidden},
		{apperrors.ErrTokenInvalid, http.StatusForbidden},
		{apperrors.ErrCertificateNotFound, http.StatusNotFound},
		{apperrors.ErrTooManyAttempts, http.StatusTooManyRequests},
		{apperrors.ErrBadRequest, http.StatusBadRequest},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w, _ := respondWith(tc.err)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
	}
}

func TestHandleAPIErrorInternalNeverLeaksDetail(t *testing.T) {
	_, body := respondWith(errors.New("pq: connection refused on 10.1.2.3"))
	require.NotNil(t, body.Error)
	assert.Equal(t, "Internal server error", body.Error.Message)
	assert.NotContains(t, body.Error.Message, "10.1.2.3")
}
