package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RUFFNER25/sistema-de-certificados/internal/pkg/logger"
)

// LocalStorage saves uploaded certificate files on the local filesystem.
//
// Uploads are written to a staging directory first and moved into the served
// directory only after the corresponding database row exists, so a failed
// insert never leaves an orphan behind the public URL prefix.
type LocalStorage struct {
	basePath    string // directory served read-only under baseURL
	stagingPath string // directory for files awaiting a successful insert
	baseURL     string // URL prefix for promoted files, e.g. "/files"
}

// NewLocalStorage creates a LocalStorage and ensures both directories exist.
func NewLocalStorage(basePath, stagingPath, baseURL string) (*LocalStorage, error) {
	for _, dir := range []string{basePath, stagingPath} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error().Err(err).Str("path", dir).Msg("Failed to create storage directory")
			return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
		}
	}

	return &LocalStorage{
		basePath:    basePath,
		stagingPath: stagingPath,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveStaged writes the uploaded file into the staging directory under a
// generated unique name (timestamp + random suffix + original extension,
// defaulting to .pdf) and returns that name.
func (ls *LocalStorage) SaveStaged(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	if ext == "" {
		ext = ".pdf"
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.New().String(), ext)

	dstPath := filepath.Join(ls.stagingPath, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create staged file")
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write staged file")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("staged_as", name).Msg("File staged")
	return name, nil
}

// Promote moves a staged file into the served directory. Called only after
// the certificate row referencing it has been inserted.
func (ls *LocalStorage) Promote(name string) error {
	name = filepath.Base(name)
	src := filepath.Join(ls.stagingPath, name)
	dst := filepath.Join(ls.basePath, name)

	if err := os.Rename(src, dst); err != nil {
		logger.Error().Err(err).Str("file", name).Msg("Failed to promote staged file")
		return fmt.Errorf("failed to promote staged file: %w", err)
	}
	return nil
}

// Discard removes a staged file after a failed insert. Missing files are not
// an error.
func (ls *LocalStorage) Discard(name string) error {
	name = filepath.Base(name)
	err := os.Remove(filepath.Join(ls.stagingPath, name))
	if err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("file", name).Msg("Failed to discard staged file")
		return fmt.Errorf("failed to discard staged file: %w", err)
	}
	return nil
}

// DeleteFile removes a promoted file. Deleting a file that does not exist is
// treated as success so the operation stays idempotent.
func (ls *LocalStorage) DeleteFile(name string) error {
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid file name: %q", name)
	}

	physicalPath := filepath.Join(ls.basePath, name)
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("File deleted")
	return nil
}

// FileURL returns the public URL for a promoted file.
func (ls *LocalStorage) FileURL(name string) string {
	return ls.baseURL + "/" + filepath.Base(name)
}

// BasePath returns the served directory.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}
