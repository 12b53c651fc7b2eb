package httpclient

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/tracing"
)

const userAgent = "DWPNxt-Backend/1.0"

// Options configures a Client
type Options struct {
	Name    string
	BaseURL string
	Timeout time.Duration
	// RateLimit caps outbound requests per second. Zero means unlimited.
	RateLimit float64
	// FailureThreshold is the number of consecutive transport failures
	// that opens the breaker. Defaults to 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open. Defaults to 30s.
	OpenTimeout time.Duration
}

// Client wraps resty with rate limiting and a circuit breaker
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	logger  *zap.Logger
}

// New creates a client. Retries are disabled.
func New(opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Name == "" {
		opts.Name = "http-upstream"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 5
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	logger = logger.Named(opts.Name)

	// Pooled transport only; retryablehttp's own retry loop is not used
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.Logger = nil

	restyClient := resty.New()
	restyClient.
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent).
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	restyClient.SetTransport(retryClient.HTTPClient.Transport)
	if opts.BaseURL != "" {
		restyClient.SetBaseURL(opts.BaseURL)
	}

	breaker := resilience.New(opts.Name, resilience.Settings{
		Threshold: opts.FailureThreshold,
		Cooldown:  opts.OpenTimeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(1, int(opts.RateLimit)))
	}

	return &Client{
		Resty:   restyClient,
		Limiter: limiter,
		Breaker: breaker,
		logger:  logger,
	}
}

// Request creates a new request after waiting on the rate limiter. Trace
// headers from ctx are forwarded.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	headers := make(map[string]string, 2)
	tracing.InjectTraceContext(ctx, headers)

	return c.Resty.R().SetContext(ctx).SetHeaders(headers), nil
}

// Do builds a request and runs send through the circuit breaker. Any
// response the upstream returned is handed back without error, whatever its
// status, and counts as the upstream being reachable. Only transport
// failures and breaker rejections are errors.
func (c *Client) Do(ctx context.Context, send func(req *resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	if c.Breaker.State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	req, err := c.Request(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := resilience.Do(c.Breaker, func() (*resty.Response, error) {
		return send(req)
	})
	if err != nil {
		c.logger.Debug("Upstream request failed", zap.Error(err))
		return nil, err
	}
	return resp, nil
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}
