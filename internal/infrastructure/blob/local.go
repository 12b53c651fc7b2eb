package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Local stores objects on disk
type Local struct {
	dir       string
	publicURL string
	logger    *zap.Logger
}

// NewLocal creates a store rooted at dir whose objects are served under
// publicURL
func NewLocal(dir, publicURL string, logger *zap.Logger) (*Local, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Local{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}, nil
}

// Dir returns the directory objects are written to
func (l *Local) Dir() string {
	return l.dir
}

// Put writes the object to disk
func (l *Local) Put(ctx context.Context, req PutRequest) (Object, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return Object{}, err
	}
	name = withSuffix(name)

	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	target := filepath.Join(l.dir, name)
	tmp, err := os.CreateTemp(l.dir, ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create object: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, req.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Object{}, fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return Object{}, fmt.Errorf("commit object: %w", err)
	}

	obj := Object{
		Name:        name,
		URL:         l.publicURL + "/" + url.PathEscape(name),
		ContentType: req.ContentType,
		Size:        written,
	}
	l.logger.Debug("Object stored", zap.String("name", name), zap.Int64("size", written))
	return obj, nil
}
