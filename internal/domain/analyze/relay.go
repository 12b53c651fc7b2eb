package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/httpclient"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/shared/utils"
)

// DefaultFetchLimit caps how much of a referenced file is read (10 MiB)
const DefaultFetchLimit int64 = 10 * 1024 * 1024

// Options configures a Relay
type Options struct {
	// AllowedSources are URL prefixes AnalyzeReference may fetch from
	AllowedSources []string
	FetchLimit     int64
}

// Relay forwards files to the analysis backend
type Relay struct {
	backend    *httpclient.Client
	fetcher    *httpclient.Client
	allowed    []string
	fetchLimit int64
	guard      *resilience.InFlight
	logger     *zap.Logger
}

// NewRelay creates a relay. backend must have the backend base URL set;
// fetcher is used to read referenced uploads.
func NewRelay(backend, fetcher *httpclient.Client, opts Options, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	allowed := make([]string, 0, len(opts.AllowedSources))
	for _, prefix := range opts.AllowedSources {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			allowed = append(allowed, prefix)
		}
	}
	return &Relay{
		backend:    backend,
		fetcher:    fetcher,
		allowed:    allowed,
		fetchLimit: opts.FetchLimit,
		guard:      resilience.NewInFlight(),
		logger:     logger,
	}
}

// Analyze posts f to the backend and returns its JSON body unmodified. A
// second call from the same session with identical content is rejected with
// ErrInProgress while the first is running.
func (r *Relay) Analyze(ctx context.Context, f *File) ([]byte, error) {
	if f == nil || f.Body == nil {
		return nil, ErrNoFile
	}

	data, err := io.ReadAll(f.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	release, err := r.guard.Acquire(flightKey(f.Session, utils.HashBytes(data)))
	if err != nil {
		return nil, ErrInProgress
	}
	defer release()

	return r.analyze(ctx, &File{
		Session:     f.Session,
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
}

// AnalyzeReference fetches a previously uploaded file and analyzes it.
// Empty arguments return ErrNothingToAnalyze. Duplicate detection is keyed
// on session and source URL.
func (r *Relay) AnalyzeReference(ctx context.Context, session, fileURL, filename string) ([]byte, error) {
	if strings.TrimSpace(fileURL) == "" || strings.TrimSpace(filename) == "" {
		return nil, ErrNothingToAnalyze
	}
	if !r.sourceAllowed(fileURL) {
		r.logger.Warn("Rejected file reference", zap.String("url", fileURL))
		return nil, ErrSourceNotAllowed
	}

	release, err := r.guard.Acquire(flightKey(session, fileURL))
	if err != nil {
		return nil, ErrInProgress
	}
	defer release()

	data, contentType, err := r.fetch(ctx, fileURL)
	if err != nil {
		return nil, err
	}

	return r.analyze(ctx, &File{
		Session:     session,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	})
}

func (r *Relay) analyze(ctx context.Context, f *File) ([]byte, error) {
	resp, err := r.post(ctx, "/api/analyze", f)
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	var decoded interface{}
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		r.logger.Error("Analysis backend returned non-JSON body", zap.Int("bytes", len(body)))
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var result AnalysisResult
	if err := sonic.Unmarshal(body, &result); err == nil {
		r.logger.Info("Analysis completed",
			zap.String("filename", f.Filename),
			zap.Int("total_tickets", result.Summary.TotalTickets),
			zap.Int("categories", len(result.Categories)),
		)
	}
	return body, nil
}

// Export relays f to the backend export endpoint for format
func (r *Relay) Export(ctx context.Context, format string, f *File) (*Attachment, error) {
	format = strings.ToLower(format)
	if format != FormatXLSX && format != FormatPDF {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if f == nil || f.Body == nil {
		return nil, ErrNoFile
	}

	resp, err := r.post(ctx, "/api/export/"+format, f)
	if err != nil {
		return nil, err
	}

	att := &Attachment{
		ContentType: resp.Header().Get("Content-Type"),
		Disposition: resp.Header().Get("Content-Disposition"),
		Body:        resp.Body(),
	}
	if att.ContentType == "" {
		att.ContentType = exportContentTypes[format]
	}
	if att.Disposition == "" {
		att.Disposition = "attachment; filename=" + exportFilenames[format]
	}

	r.logger.Info("Export completed", zap.String("format", format), zap.Int("bytes", len(att.Body)))
	return att, nil
}

// post sends f as multipart field "file" and maps non-2xx to *UpstreamError
func (r *Relay) post(ctx context.Context, endpoint string, f *File) (*resty.Response, error) {
	filename := f.Filename
	if filename == "" {
		filename = DefaultFilename
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := r.backend.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.
			SetMultipartField("file", filename, contentType, f.Body).
			Post(endpoint)
	})
	if err != nil {
		r.logger.Error("Analysis backend unreachable", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("analysis backend: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.Warn("Analysis backend rejected request",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode()),
		)
		return nil, &UpstreamError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return resp, nil
}

func (r *Relay) fetch(ctx context.Context, fileURL string) ([]byte, string, error) {
	resp, err := r.fetcher.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.SetDoNotParseResponse(true).Get(fileURL)
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if !resp.IsSuccess() {
		return nil, "", fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode())
	}

	data, err := io.ReadAll(io.LimitReader(raw, r.fetchLimit+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	if int64(len(data)) > r.fetchLimit {
		return nil, "", fmt.Errorf("%w: file exceeds %d bytes", ErrSourceUnavailable, r.fetchLimit)
	}
	return data, resp.Header().Get("Content-Type"), nil
}

// sourceAllowed reports whether fileURL is under one of the allowed prefixes
func (r *Relay) sourceAllowed(fileURL string) bool {
	u, err := url.Parse(fileURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}
	// Reject dot segments so a prefix match cannot be escaped
	if path.Clean(u.Path) != u.Path && u.Path != "" {
		return false
	}
	for _, prefix := range r.allowed {
		if strings.HasPrefix(fileURL, prefix) {
			return true
		}
	}
	return false
}

// flightKey joins the uploader session with what identifies the input: a
// content digest for direct files, the source URL for references
func flightKey(session, identity string) string {
	return session + "\x00" + identity
}

// IsClientError reports whether err was caused by the request itself
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrInvalidFilename) ||
		errors.Is(err, ErrSourceNotAllowed) ||
		errors.Is(err, ErrUnsupportedFormat)
}
