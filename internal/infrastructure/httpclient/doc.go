// Package httpclient builds the outbound HTTP client used to reach the
// analysis backend and the remote object store.
//
// Built on go-resty/resty over a pooled go-retryablehttp transport. Retries
// are disabled: relayed requests are not idempotent from the caller's point
// of view and a failed analysis is reported, never replayed. A circuit
// breaker fails fast while the upstream is down, and 5xx responses count as
// failures toward tripping it.
//
// Example Usage:
//
//	client := httpclient.New(httpclient.Options{
//		Name:    "analysis-backend",
//		BaseURL: cfg.BackendURL,
//		Timeout: cfg.AnalyzeTimeout,
//	}, logger)
//
//	resp, err := client.Do(ctx, func(req *resty.Request) (*resty.Response, error) {
//		return req.SetFileReader("file", name, body).Post("/api/analyze")
//	})
package httpclient
