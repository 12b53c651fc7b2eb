package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrMissingCredential = errors.New("blob store credential is not configured")
	ErrInvalidCredential = errors.New("blob store credential was rejected")
)

// Object describes a stored object
type Object struct {
	Name        string `json:"pathname"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// PutRequest is an object to store
type PutRequest struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists objects and returns their public URL
type Store interface {
	Put(ctx context.Context, req PutRequest) (Object, error)
}

// Driver names accepted by config
const (
	DriverLocal  = "local"
	DriverRemote = "remote"
)

// withSuffix inserts a short random token before the extension
func withSuffix(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%s%s", base, token, ext)
}

// cleanName rejects names that would escape the store root
func cleanName(name string) (string, error) {
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != name || strings.Contains(cleaned, "/") {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	return cleaned, nil
}
