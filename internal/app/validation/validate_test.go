package validation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/helpers"
)

type stubChecker struct {
	taken map[string]bool
	err   error

	lastCode      string
	lastExcludeID int64
	calls         int
}

func (s *stubChecker) CodeExists(_ context.Context, code string, excludeID int64) (bool, error) {
	s.calls++
	s.lastCode = code
	s.lastExcludeID = excludeID
	if s.err != nil {
		return false, s.err
	}
	return s.taken[code], nil
}

func validInput() Input {
	return Input{
		HolderName: "Juan Perez",
		DocumentID: "12345678",
		Type:       "Curso",
		Code:       "CERT-1",
		Title:      "Seguridad Industrial",
		Duration:   "40 horas",
		IssueDate:  "2024-01-10",
		ExpiryDate: "2026-01-10",
		HasFile:    true,
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	return custom.Field
}

func TestValidateAcceptsCompleteInput(t *testing.T) {
	checker := &stubChecker{}
	fields, err := Validate(context.Background(), validInput(), 0, checker, true)
	require.NoError(t, err)

	assert.Equal(t, "Juan Perez", fields.HolderName)
	assert.Equal(t, "12345678", fields.DocumentID)
	require.NotNil(t, fields.Code)
	assert.Equal(t, "CERT-1", *fields.Code)
	require.NotNil(t, fields.IssueDate)
	assert.Equal(t, "2024-01-10", fields.IssueDate.Format(helpers.DateLayout))
	require.NotNil(t, fields.ExpiryDate)
	assert.Equal(t, 1, checker.calls)
	assert.Equal(t, int64(0), checker.lastExcludeID)
}

func TestValidateTrimsAndNullsOptionals(t *testing.T) {
	in := validInput()
	in.HolderName = "  Juan Perez  "
	in.Type = "   "
	in.Code = ""
	in.Title = ""
	in.Duration = " 40 horas "
	in.IssueDate = ""
	in.ExpiryDate = ""

	fields, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.NoError(t, err)

	assert.Equal(t, "Juan Perez", fields.HolderName)
	assert.Nil(t, fields.Type)
	assert.Nil(t, fields.Code)
	assert.Nil(t, fields.Title)
	require.NotNil(t, fields.Duration)
	assert.Equal(t, "40 horas", *fields.Duration)
	assert.Nil(t, fields.IssueDate)
	assert.Nil(t, fields.ExpiryDate)
}

func TestValidateRequiresHolderName(t *testing.T) {
	in := validInput()
	in.HolderName = "   "
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "nombre", fieldOf(t, err))
}

func TestValidateHolderNameLength(t *testing.T) {
	in := validInput()
	in.HolderName = strings.Repeat("a", 201)
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "nombre", fieldOf(t, err))
}

func TestValidateHolderNameLengthCountsCharacters(t *testing.T) {
	// 150 characters but 300 bytes; within the cap.
	in := validInput()
	in.HolderName = strings.Repeat("ñ", 150)
	fields, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.NoError(t, err)
	assert.Equal(t, in.HolderName, fields.HolderName)

	in.HolderName = strings.Repeat("ñ", 201)
	_, err = Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "nombre", fieldOf(t, err))
}

func TestValidateRequiresDocumentID(t *testing.T) {
	in := validInput()
	in.DocumentID = ""
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "dni", fieldOf(t, err))
}

func TestValidateDocumentIDLength(t *testing.T) {
	in := validInput()
	in.DocumentID = strings.Repeat("9", 21)
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "dni", fieldOf(t, err))
}

func TestValidateDocumentIDAlphanumericOnly(t *testing.T) {
	in := validInput()
	in.DocumentID = "12.345-678"
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "dni", fieldOf(t, err))

	in.DocumentID = "X1234567B"
	_, err = Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.NoError(t, err)
}

func TestValidateRejectsTakenCode(t *testing.T) {
	checker := &stubChecker{taken: map[string]bool{"CERT-1": true}}
	_, err := Validate(context.Background(), validInput(), 0, checker, true)
	require.ErrorIs(t, err, apperrors.ErrCodeAlreadyExists)
}

func TestValidateExcludesOwnRecordOnUpdate(t *testing.T) {
	checker := &stubChecker{}
	_, err := Validate(context.Background(), validInput(), 42, checker, false)
	require.NoError(t, err)
	assert.Equal(t, int64(42), checker.lastExcludeID)
	assert.Equal(t, "CERT-1", checker.lastCode)
}

func TestValidateSkipsCodeCheckWhenEmpty(t *testing.T) {
	in := validInput()
	in.Code = "   "
	checker := &stubChecker{taken: map[string]bool{"": true}}
	_, err := Validate(context.Background(), in, 0, checker, true)
	require.NoError(t, err)
	assert.Equal(t, 0, checker.calls)
}

func TestValidatePropagatesCheckerError(t *testing.T) {
	boom := errors.New("db down")
	_, err := Validate(context.Background(), validInput(), 0, &stubChecker{err: boom}, true)
	require.ErrorIs(t, err, boom)
}

func TestValidateRejectsFutureIssueDate(t *testing.T) {
	in := validInput()
	in.IssueDate = helpers.Today().AddDate(0, 0, 1).Format(helpers.DateLayout)
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "fecha_emision", fieldOf(t, err))
}

func TestValidateAcceptsTodayAsIssueDate(t *testing.T) {
	in := validInput()
	in.IssueDate = helpers.Today().Format(helpers.DateLayout)
	in.ExpiryDate = ""
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.NoError(t, err)
}

func TestValidateRejectsMalformedDates(t *testing.T) {
	in := validInput()
	in.IssueDate = "10/01/2024"
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "fecha_emision", fieldOf(t, err))

	in = validInput()
	in.ExpiryDate = "not-a-date"
	_, err = Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "fecha_caducidad", fieldOf(t, err))
}

func TestValidateRejectsExpiryBeforeIssue(t *testing.T) {
	in := validInput()
	in.IssueDate = "2024-05-01"
	in.ExpiryDate = "2024-04-30"
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "fecha_caducidad", fieldOf(t, err))
}

func TestValidateAllowsExpiryEqualToIssue(t *testing.T) {
	in := validInput()
	in.IssueDate = "2024-05-01"
	in.ExpiryDate = "2024-05-01"
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.NoError(t, err)
}

func TestValidateRequiresFileOnCreate(t *testing.T) {
	in := validInput()
	in.HasFile = false
	_, err := Validate(context.Background(), in, 0, &stubChecker{}, true)
	require.Error(t, err)
	assert.Equal(t, "archivo", fieldOf(t, err))

	_, err = Validate(context.Background(), in, 7, &stubChecker{}, false)
	require.NoError(t, err)
}
