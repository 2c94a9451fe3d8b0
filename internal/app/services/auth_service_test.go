package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/auth"
)

type fakeAdminStore struct {
	admins map[string]*models.Admin
	err    error
}

func (f *fakeAdminStore) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	if f.err != nil {
		return nil, f.err
	}
	admin, ok := f.admins[username]
	if !ok {
		return nil, apperrors.ErrAdminNotFound
	}
	return admin, nil
}

type fakeIssuer struct {
	token string
	err   error
}

func (f *fakeIssuer) GenerateToken(int64, string) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return f.token, 28800, nil
}

func adminWithPassword(t *testing.T, username, password string) *models.Admin {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return &models.Admin{ID: 1, Username: username, PasswordHash: hash}
}

func TestLoginSuccess(t *testing.T) {
	store := &fakeAdminStore{admins: map[string]*models.Admin{
		"admin": adminWithPassword(t, "admin", "s3cret"),
	}}
	svc := NewAuthService(store, &fakeIssuer{token: "signed-token"}, nil)

	token, expiresIn, err := svc.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.Equal(t, 28800, expiresIn)
}

func TestLoginUnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	store := &fakeAdminStore{admins: map[string]*models.Admin{
		"admin": adminWithPassword(t, "admin", "s3cret"),
	}}
	svc := NewAuthService(store, &fakeIssuer{token: "signed-token"}, nil)

	_, _, unknownErr := svc.Login(context.Background(), "ghost", "s3cret")
	_, _, wrongErr := svc.Login(context.Background(), "admin", "wrong")

	require.ErrorIs(t, unknownErr, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, apperrors.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLoginStoreFailurePropagates(t *testing.T) {
	boom := errors.New("db down")
	svc := NewAuthService(&fakeAdminStore{err: boom}, &fakeIssuer{}, nil)

	_, _, err := svc.Login(context.Background(), "admin", "s3cret")
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLoginIssuerFailurePropagates(t *testing.T) {
	store := &fakeAdminStore{admins: map[string]*models.Admin{
		"admin": adminWithPassword(t, "admin", "s3cret"),
	}}
	svc := NewAuthService(store, &fakeIssuer{err: errors.New("no key")}, nil)

	_, _, err := svc.Login(context.Background(), "admin", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
