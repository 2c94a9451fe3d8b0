package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models"
	"github.com/RUFFNER25/sistema-de-certificados/internal/app/models/dto"
	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/apperrors"
)

type fakeCertStore struct {
	mu     sync.Mutex
	nextID int64
	certs  map[int64]*models.Certificate

	createErr error
	deleteErr error
}

func newFakeCertStore() *fakeCertStore {
	return &fakeCertStore{nextID: 1, certs: map[int64]*models.Certificate{}}
}

func (f *fakeCertStore) Create(_ context.Context, cert *models.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	if cert.Code != nil {
		for _, existing := range f.certs {
			if existing.Code != nil && *existing.Code == *cert.Code {
				return apperrors.ErrCodeAlreadyExists
			}
		}
	}
	cert.ID = f.nextID
	f.nextID++
	cert.CreatedAt = time.Now()
	stored := *cert
	f.certs[cert.ID] = &stored
	return nil
}

func (f *fakeCertStore) GetByID(_ context.Context, id int64) (*models.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cert, ok := f.certs[id]
	if !ok {
		return nil, apperrors.ErrCertificateNotFound
	}
	copied := *cert
	return &copied, nil
}

func (f *fakeCertStore) Update(_ context.Context, cert *models.Certificate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.certs[cert.ID]; !ok {
		return apperrors.ErrCertificateNotFound
	}
	stored := *cert
	f.certs[cert.ID] = &stored
	return nil
}

func (f *fakeCertStore) Delete(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return "", f.deleteErr
	}
	cert, ok := f.certs[id]
	if !ok {
		return "", apperrors.ErrCertificateNotFound
	}
	delete(f.certs, id)
	return cert.FileRef, nil
}

func (f *fakeCertStore) Search(_ context.Context, filter dto.SearchFilter) ([]*models.Certificate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Certificate{}
	for _, cert := range f.certs {
		copied := *cert
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakeCertStore) CodeExists(_ context.Context, code string, excludeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, cert := range f.certs {
		if id == excludeID {
			continue
		}
		if cert.Code != nil && *cert.Code == code {
			return true, nil
		}
	}
	return false, nil
}

type fakeStorage struct {
	mu       sync.Mutex
	staged   map[string]bool
	served   map[string]bool
	saveErr  error
	promoErr error
	deleted  chan string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		staged:  map[string]bool{},
		served:  map[string]bool{},
		deleted: make(chan string, 8),
	}
}

func (f *fakeStorage) SaveStaged(_ *multipart.FileHeader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	name := "staged.pdf"
	f.staged[name] = true
	return name, nil
}

func (f *fakeStorage) Promote(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.promoErr != nil {
		return f.promoErr
	}
	delete(f.staged, name)
	f.served[name] = true
	return nil
}

func (f *fakeStorage) Discard(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.staged, name)
	return nil
}

func (f *fakeStorage) DeleteFile(name string) error {
	f.mu.Lock()
	delete(f.served, name)
	f.mu.Unlock()
	f.deleted <- name
	return nil
}

func (f *fakeStorage) FileURL(name string) string {
	return "/files/" + name
}

func (f *fakeStorage) stagedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.staged)
}

func pdfHeader(t *testing.T) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("archivo", "diploma.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["archivo"][0]
}

func createRequest() dto.CreateCertificateRequest {
	return dto.CreateCertificateRequest{
		HolderName: "Juan Perez",
		DocumentID: "12345678",
		Type:       "Curso",
		Code:       "CERT-1",
		Title:      "Seguridad Industrial",
		IssueDate:  "2024-01-10",
		ExpiryDate: "2026-01-10",
	}
}

func TestCreateCertificateSuccess(t *testing.T) {
	store := newFakeCertStore()
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	cert, err := svc.Create(context.Background(), createRequest(), pdfHeader(t))
	require.NoError(t, err)

	assert.Equal(t, int64(1), cert.ID)
	assert.Equal(t, "Juan Perez", cert.HolderName)
	assert.Equal(t, "staged.pdf", cert.FileRef)
	assert.True(t, storage.served["staged.pdf"], "file should be promoted")
	assert.Equal(t, 0, storage.stagedCount())
}

func TestCreateCertificateValidationFailureStagesNothing(t *testing.T) {
	store := newFakeCertStore()
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	req := createRequest()
	req.HolderName = ""
	_, err := svc.Create(context.Background(), req, pdfHeader(t))
	require.Error(t, err)

	assert.Equal(t, 0, storage.stagedCount())
	assert.Empty(t, store.certs)
}

func TestCreateCertificateInsertFailureDiscardsStagedFile(t *testing.T) {
	store := newFakeCertStore()
	store.createErr = errors.New("insert failed")
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	_, err := svc.Create(context.Background(), createRequest(), pdfHeader(t))
	require.Error(t, err)

	assert.Equal(t, 0, storage.stagedCount())
	assert.Empty(t, storage.served)
}

func TestCreateCertificateDuplicateCode(t *testing.T) {
	store := newFakeCertStore()
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	_, err := svc.Create(context.Background(), createRequest(), pdfHeader(t))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), createRequest(), pdfHeader(t))
	require.ErrorIs(t, err, apperrors.ErrCodeAlreadyExists)
	assert.Len(t, store.certs, 1)
}

func TestUpdateCertificate(t *testing.T) {
	store := newFakeCertStore()
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	created, err := svc.Create(context.Background(), createRequest(), pdfHeader(t))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, dto.UpdateCertificateRequest{
		HolderName: "Maria Lopez",
		DocumentID: "87654321",
		Code:       "CERT-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Maria Lopez", updated.HolderName)
	assert.Nil(t, updated.IssueDate)
	assert.Equal(t, created.FileRef, updated.FileRef, "file ref must survive updates")
}

func TestUpdateCertificateNotFound(t *testing.T) {
	svc := NewCertificateService(newFakeCertStore(), newFakeStorage(), nil)
	_, err := svc.Update(context.Background(), 99, dto.UpdateCertificateRequest{
		HolderName: "Maria Lopez",
		DocumentID: "87654321",
	})
	require.ErrorIs(t, err, apperrors.ErrCertificateNotFound)
}

func TestDeleteCertificateReleasesFile(t *testing.T) {
	store := newFakeCertStore()
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	created, err := svc.Create(context.Background(), createRequest(), pdfHeader(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	select {
	case name := <-storage.deleted:
		assert.Equal(t, created.FileRef, name)
	case <-time.After(2 * time.Second):
		t.Fatal("file deletion was never attempted")
	}
	assert.Empty(t, store.certs)
}

func TestDeleteCertificateNotFound(t *testing.T) {
	svc := NewCertificateService(newFakeCertStore(), newFakeStorage(), nil)
	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, apperrors.ErrCertificateNotFound)
}

func TestSearchAppliesLimit(t *testing.T) {
	store := newFakeCertStore()
	storage := newFakeStorage()
	svc := NewCertificateService(store, storage, nil)

	for i := 0; i < 3; i++ {
		req := createRequest()
		req.Code = ""
		_, err := svc.Create(context.Background(), req, pdfHeader(t))
		require.NoError(t, err)
	}

	results, err := svc.Search(context.Background(), dto.SearchFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
