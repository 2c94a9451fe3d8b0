package filestorage

import "mime/multipart"

// Storage defines the file operations the certificate service depends on.
type Storage interface {
	// SaveStaged stores an upload in the staging area and returns the
	// generated file name.
	SaveStaged(fileHeader *multipart.FileHeader) (string, error)

	// Promote moves a staged file into the served directory.
	Promote(name string) error

	// Discard removes a staged file that will never be promoted.
	Discard(name string) error

	// DeleteFile removes a promoted file. Idempotent.
	DeleteFile(name string) error

	// FileURL returns the public URL for a promoted file.
	FileURL(name string) string
}
