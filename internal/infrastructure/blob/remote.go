package blob

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/httpclient"
)

// TokenPrefix is the prefix of every read-write blob token
const TokenPrefix = "vercel_blob_rw_"

const apiVersion = "7"

// Remote stores objects through a Vercel-compatible blob API
type Remote struct {
	client *httpclient.Client
	token  string
	logger *zap.Logger
}

// NewRemote creates a remote store. The token is checked on every Put so a
// misconfigured deployment still starts and reports the problem per request.
func NewRemote(client *httpclient.Client, token string, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{
		client: client,
		token:  strings.TrimSpace(token),
		logger: logger,
	}
}

// CheckToken validates the shape of a read-write token
func CheckToken(token string) error {
	if token == "" {
		return ErrMissingCredential
	}
	if !strings.HasPrefix(token, TokenPrefix) || len(token) == len(TokenPrefix) {
		return fmt.Errorf("%w: malformed token", ErrInvalidCredential)
	}
	return nil
}

// Put uploads the object with public access
func (r *Remote) Put(ctx context.Context, req PutRequest) (Object, error) {
	if err := CheckToken(r.token); err != nil {
		return Object{}, err
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return Object{}, err
	}
	name = withSuffix(name)

	var result Object
	resp, err := r.client.Do(ctx, func(hreq *resty.Request) (*resty.Response, error) {
		hreq.SetAuthToken(r.token).
			SetHeader("x-api-version", apiVersion).
			SetHeader("x-content-type", req.ContentType).
			SetHeader("x-add-random-suffix", "0").
			SetBody(req.Body).
			SetResult(&result)
		if req.Size > 0 {
			hreq.SetHeader("x-content-length", strconv.FormatInt(req.Size, 10))
		}
		return hreq.Put("/" + url.PathEscape(name))
	})
	if err != nil {
		return Object{}, fmt.Errorf("blob put: %w", err)
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return Object{}, fmt.Errorf("%w: status %d", ErrInvalidCredential, code)
	case code < 200 || code >= 300:
		return Object{}, fmt.Errorf("blob put: status %d: %s", code, strings.TrimSpace(resp.String()))
	}

	if result.URL == "" {
		return Object{}, fmt.Errorf("blob put: response has no url")
	}
	if result.Name == "" {
		result.Name = name
	}
	if result.ContentType == "" {
		result.ContentType = req.ContentType
	}
	result.Size = req.Size

	r.logger.Debug("Object stored remotely", zap.String("name", result.Name), zap.String("url", result.URL))
	return result, nil
}
