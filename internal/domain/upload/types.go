package upload

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxBytes is the default upload size limit (10 MiB)
const DefaultMaxBytes int64 = 10 * 1024 * 1024

// Accepted content types
const (
	TypeCSV  = "text/csv"
	TypeXLS  = "application/vnd.ms-excel"
	TypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// AllowedTypes lists the content types an upload may have
var AllowedTypes = []string{TypeCSV, TypeXLS, TypeXLSX}

var (
	ErrNoFile             = errors.New("no file provided")
	ErrInvalidType        = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file size exceeds limit")
	ErrStoreMisconfigured = errors.New("object store is misconfigured")
	ErrUploadFailed       = errors.New("upload failed")
	ErrInProgress         = errors.New("upload already in progress")
)

// File is an incoming upload
type File struct {
	// Session identifies the uploader for duplicate detection. May be empty.
	Session     string
	Filename    string
	Size        int64
	ContentType string
	Body        io.Reader
}

// UploadedFile is the stored result
type UploadedFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// Message returns the client-facing text for an Upload error
func Message(err error, maxBytes int64) string {
	switch {
	case errors.Is(err, ErrNoFile):
		return "No file provided"
	case errors.Is(err, ErrInvalidType):
		return "Invalid file type. Please upload CSV or Excel files only."
	case errors.Is(err, ErrFileTooLarge):
		return tooLargeMessage(maxBytes)
	case errors.Is(err, ErrInProgress):
		return "An upload of this file is already in progress"
	case errors.Is(err, ErrStoreMisconfigured):
		return "Upload storage is not configured"
	default:
		return "Upload failed"
	}
}

func tooLargeMessage(maxBytes int64) string {
	const mib = 1024 * 1024
	if maxBytes%mib == 0 {
		return fmt.Sprintf("File size exceeds %dMB limit", maxBytes/mib)
	}
	return fmt.Sprintf("File size exceeds %d byte limit", maxBytes)
}

// IsClientError reports whether err was caused by the request itself
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrFileTooLarge)
}
