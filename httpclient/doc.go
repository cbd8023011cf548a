// Package httpclient is a minimal HTTP/1.1 client built on the urlutil gate.
//
// Every request URL is validated with urlutil before any socket is opened. The
// validated host and port go to Transport, which dials a raw TCP connection
// (wrapped in TLS for https), and the request line and Host header come from the
// validated URL. One connection serves one request.
//
// Client adds the operational concerns around that core:
//   - bearer tokens from a TokenProvider
//   - retries with exponential backoff on network errors and 5xx responses
//   - per-host rate limiting (golang.org/x/time/rate)
//   - per-address circuit breaking (github.com/sony/gobreaker)
//   - Prometheus metrics (see MetricsHandler)
//
// Example:
//
//	client := httpclient.NewClient(nil, false, 30*time.Second)
//	resp, err := client.Execute(ctx, httpclient.RequestOptions{
//		Method:   http.MethodGet,
//		URL:      "https://example.com/",
//		SkipAuth: true,
//		Retry:    2,
//	})
package httpclient
