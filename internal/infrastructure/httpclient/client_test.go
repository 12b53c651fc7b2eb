package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/dwpnxt/backend/internal/infrastructure/tracing"
)

func TestDoPassesResponsesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("bad input"))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("boom"))
		}
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, Timeout: 5 * time.Second}, nil)
	ctx := context.Background()

	for path, want := range map[string]int{"/ok": 200, "/bad": 400, "/fail": 500} {
		resp, err := client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
			return req.Get(path)
		})
		require.NoError(t, err, path)
		assert.Equal(t, want, resp.StatusCode(), path)
	}
}

func TestAnsweredRequestsDoNotTripBreaker(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusUnprocessableEntity} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var hits atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(status)
				_, _ = w.Write([]byte("Error processing file: missing Driver column"))
			}))
			defer server.Close()

			client := New(Options{BaseURL: server.URL, FailureThreshold: 2, OpenTimeout: time.Minute}, nil)
			for i := 0; i < 6; i++ {
				resp, err := client.Do(context.Background(), func(req *resty.Request) (*resty.Response, error) {
					return req.Post("/api/analyze")
				})
				require.NoError(t, err)
				assert.Equal(t, status, resp.StatusCode())
				assert.Equal(t, "Error processing file: missing Driver column", resp.String())
			}
			assert.Equal(t, resilience.StateClosed, client.BreakerState())
			assert.Equal(t, int32(6), hits.Load())
		})
	}
}

func TestTransportFailuresTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(Options{BaseURL: url, Timeout: time.Second, FailureThreshold: 2, OpenTimeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
			return req.Get("/")
		})
		require.Error(t, err)
		assert.False(t, resilience.IsOpen(err))
	}
	assert.Equal(t, resilience.StateOpen, client.BreakerState())

	_, err := client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		t.Fatal("must not send while open")
		return nil, nil
	})
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestNoRetries(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL}, nil)
	resp, err := client.Do(context.Background(), func(req *resty.Request) (*resty.Response, error) {
		return req.Post("/")
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())
	assert.Equal(t, int32(1), hits.Load())
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := New(Options{BaseURL: url, Timeout: time.Second}, nil)
	_, err := client.Do(context.Background(), func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/")
	})
	assert.Error(t, err)
}

func TestRequestForwardsTraceHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.Header.Get(tracing.HeaderTraceID)))
	}))
	defer server.Close()

	tracer := tracing.New("test", nil)
	defer tracer.Close()
	span, ctx := tracer.StartSpan(context.Background(), "op")

	client := New(Options{BaseURL: server.URL}, nil)
	resp, err := client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
		return req.Get("/")
	})
	require.NoError(t, err)
	assert.Equal(t, string(span.TraceID), resp.String())
}
