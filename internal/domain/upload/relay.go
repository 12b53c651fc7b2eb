package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/blob"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/utils"
)

// sniffLen is how much of the body is read for content detection
const sniffLen = 3072

// Options configures a Relay
type Options struct {
	MaxBytes int64
	// Now is the clock used for object names. Defaults to time.Now.
	Now func() time.Time
}

// Relay validates uploads and forwards them to the object store
type Relay struct {
	store    blob.Store
	maxBytes int64
	now      func() time.Time
	guard    *resilience.InFlight
	logger   *zap.Logger
}

// NewRelay creates an upload relay
func NewRelay(store blob.Store, opts Options, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Relay{
		store:    store,
		maxBytes: opts.MaxBytes,
		now:      opts.Now,
		guard:    resilience.NewInFlight(),
		logger:   logger,
	}
}

// MaxBytes returns the size limit
func (r *Relay) MaxBytes() int64 {
	return r.maxBytes
}

// Upload validates f and stores it
func (r *Relay) Upload(ctx context.Context, f *File) (*UploadedFile, error) {
	if f == nil || f.Body == nil {
		return nil, ErrNoFile
	}

	body := f.Body
	contentType := baseType(f.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		head, rest, err := peek(f.Body, sniffLen)
		if err != nil {
			return nil, fmt.Errorf("%w: read upload: %v", ErrUploadFailed, err)
		}
		body = rest
		contentType = detect(head)
	}

	if !allowed(contentType) {
		return nil, ErrInvalidType
	}
	if f.Size > r.maxBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrFileTooLarge, f.Size, r.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(body, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", ErrUploadFailed, err)
	}
	size := int64(len(data))
	if size > r.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.maxBytes)
	}

	// Same session and same bytes is a double submit; a different file with
	// the same name is not
	release, err := r.guard.Acquire(f.Session + "\x00" + utils.HashBytes(data))
	if err != nil {
		return nil, ErrInProgress
	}
	defer release()

	name := fmt.Sprintf("tickets-%d.%s", r.now().UnixMilli(), extension(f.Filename))
	r.logger.Debug("Storing upload",
		zap.String("filename", f.Filename),
		zap.String("object", name),
		zap.Int64("size", size),
	)

	obj, err := r.store.Put(ctx, blob.PutRequest{
		Name:        name,
		ContentType: contentType,
		Size:        size,
		Body:        bytes.NewReader(data),
	})
	if err != nil {
		if errors.Is(err, blob.ErrMissingCredential) || errors.Is(err, blob.ErrInvalidCredential) {
			r.logger.Error("Object store credential problem", zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrStoreMisconfigured, err)
		}
		r.logger.Error("Upload failed", zap.String("filename", f.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	r.logger.Info("File uploaded", zap.String("url", obj.URL), zap.Int64("size", size))
	return &UploadedFile{
		URL:      obj.URL,
		Filename: f.Filename,
		Size:     size,
		Type:     contentType,
	}, nil
}

// extension returns the text after the last dot of filename, or csv
func extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return "csv"
	}
	ext := filename[i+1:]
	for _, c := range ext {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return "csv"
		}
	}
	return ext
}

func baseType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}

func allowed(contentType string) bool {
	for _, t := range AllowedTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// detect maps sniffed content to an allowed type, or returns what was found
func detect(head []byte) string {
	mtype := mimetype.Detect(head)
	for m := mtype; m != nil; m = m.Parent() {
		for _, t := range AllowedTypes {
			if m.Is(t) {
				return t
			}
		}
	}
	return baseType(mtype.String())
}

// peek reads up to n bytes and returns them along with a reader that yields
// the complete stream
func peek(r io.Reader, n int) ([]byte, io.Reader, error) {
	head := make([]byte, n)
	read, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, err
	}
	head = head[:read]
	return head, io.MultiReader(bytes.NewReader(head), r), nil
}
