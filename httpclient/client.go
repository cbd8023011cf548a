package httpclient

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/urlutil"
	"github.com/sony/gobreaker"
)

const (
	// DefaultMaxResponseSize caps buffered response bodies at 100 MiB.
	DefaultMaxResponseSize int64 = 100 * 1024 * 1024
	// DefaultRetryBackoff is the delay before the first retry; it doubles per attempt.
	DefaultRetryBackoff = 200 * time.Millisecond
	// MaxRetryBackoff caps the delay between attempts.
	MaxRetryBackoff = 5 * time.Second
	// DefaultBreakerTimeout is how long an open breaker waits before probing.
	DefaultBreakerTimeout = 30 * time.Second
)

var clientLog = logutil.NewLogger("httpclient")

// errServerError marks a 5xx response inside the circuit breaker.
var errServerError = errors.New("server error")

// RequestOptions describes one logical request, possibly sent several times.
type RequestOptions struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	// SkipAuth disables the Authorization header.
	SkipAuth bool
	// Scope is passed to the TokenProvider.
	Scope string
	// Retry is the number of extra attempts after a network error or 5xx.
	Retry int
	// MaxResponseSize caps the body size. Zero means DefaultMaxResponseSize.
	MaxResponseSize int64
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Status     string
	Proto      string
	Headers    http.Header
	Body       []byte
	// URL is the validated request URL.
	URL urlutil.HTTPURL
	// Attempts is how many times the request was sent.
	Attempts int
	Duration time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTLSConfig sets the TLS configuration used for https connections.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *Client) { c.transport.TLSConfig = cfg }
}

// WithPolicy applies a URL policy (HTTPS-only, length limit) before each request.
func WithPolicy(p urlutil.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithRateLimit limits requests to perSecond per host. Zero disables it.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) { c.limiters = newLimiterSet(perSecond) }
}

// WithCircuitBreaker opens a per-address breaker after the given number of
// consecutive failures. Zero failures disables it.
func WithCircuitBreaker(failures int, timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			timeout = DefaultBreakerTimeout
		}
		c.breakers = newBreakerSet(failures, timeout)
	}
}

// WithRetryBackoff sets the initial retry delay.
func WithRetryBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// Client sends requests to validated URLs over raw connections.
// A Client is safe for concurrent use.
type Client struct {
	provider  TokenProvider
	debug     bool
	timeout   time.Duration
	transport *Transport
	policy    urlutil.Policy
	backoff   time.Duration
	breakers  *breakerSet
	limiters  *limiterSet
}

// NewClient creates a Client. provider may be nil when every request sets
// SkipAuth. timeout bounds each attempt, including reading the body.
// When debug is true, request and response headers are logged.
func NewClient(provider TokenProvider, debug bool, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		debug:    debug,
		timeout:  timeout,
		transport: &Transport{
			Dialer: &net.Dialer{Timeout: DefaultDialTimeout, KeepAlive: DefaultKeepAlive},
		},
		backoff: DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute validates opts.URL, then sends the request, retrying network errors
// and 5xx responses up to opts.Retry times. 4xx responses are returned as is.
// When every attempt gets a 5xx, the last response is returned without error.
func (c *Client) Execute(ctx context.Context, opts RequestOptions) (*Response, error) {
	target, err := c.policy.Check(opts.URL)
	if err != nil {
		recordRejection(err)
		return nil, fmt.Errorf("invalid request URL: %w", err)
	}

	log := clientLog.WithHost(target.Host()).WithOperation("execute")

	var token string
	if !opts.SkipAuth && c.provider != nil {
		token, err = c.provider.GetToken(ctx, opts.Scope)
		if err != nil {
			return nil, fmt.Errorf("failed to get auth token: %w", err)
		}
	}

	limit := opts.MaxResponseSize
	if limit <= 0 {
		limit = DefaultMaxResponseSize
	}

	attempts := opts.Retry + 1
	if attempts < 1 {
		attempts = 1
	}

	start := time.Now()
	var lastResp *Response
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			recordRetry(target.Host())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay(attempt - 1)):
			}
		}

		resp, err := c.attempt(ctx, target, opts, token, limit)
		if err == nil {
			resp.Attempts = attempt
			resp.Duration = time.Since(start)
			if resp.StatusCode < http.StatusInternalServerError {
				return resp, nil
			}
			log.Warn("server error", "status", resp.StatusCode, "attempt", attempt)
			lastResp, lastErr = resp, nil
			continue
		}

		if !isRetryableError(err) {
			return nil, err
		}
		log.Warn("request attempt failed", "attempt", attempt, "error", err)
		lastResp, lastErr = nil, err
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, lastErr)
}

// retryDelay returns the backoff before retry n (1-based).
func (c *Client) retryDelay(n int) time.Duration {
	d := c.backoff
	for i := 1; i < n && d < MaxRetryBackoff; i++ {
		d *= 2
	}
	if d > MaxRetryBackoff {
		d = MaxRetryBackoff
	}
	return d
}

// attempt applies rate limiting and circuit breaking around a single round trip.
func (c *Client) attempt(ctx context.Context, target urlutil.HTTPURL, opts RequestOptions, token string, limit int64) (*Response, error) {
	if limiter := c.limiters.get(target.Host()); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	breaker := c.breakers.get(target.Addr())
	if breaker == nil {
		return c.roundTrip(ctx, target, opts, token, limit)
	}

	out, err := breaker.Execute(func() (interface{}, error) {
		resp, err := c.roundTrip(ctx, target, opts, token, limit)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerError
		}
		return resp, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", target.Addr(), err)
	}
	if resp, ok := out.(*Response); ok && resp != nil {
		return resp, nil
	}
	return nil, err
}

// roundTrip dials, writes one request and reads one response.
func (c *Client) roundTrip(ctx context.Context, target urlutil.HTTPURL, opts RequestOptions, token string, limit int64) (*Response, error) {
	log := clientLog.WithHost(target.Host())
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	code := 0
	defer func() { recordAttempt(target.Host(), code, time.Since(start)) }()

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := NewRequest(ctx, opts.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	setHeaders(req.Header, opts.Headers)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	conn, err := c.transport.Dial(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target.Addr(), err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if c.debug {
		log.Info("sending request", "method", req.Method, "uri", target.RequestURI(), "request_id", req.Header.Get(HeaderRequestID))
	} else {
		log.Debug("sending request", "method", req.Method, "uri", target.RequestURI(), "request_id", req.Header.Get(HeaderRequestID))
	}

	if err := req.Write(conn); err != nil {
		return nil, c.ioError(ctx, "write request", err)
	}

	httpResp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return nil, c.ioError(ctx, "read response", err)
	}
	defer httpResp.Body.Close()

	// One extra byte detects an oversized body; MaxInt64 cannot grow.
	readLimit := limit
	if readLimit < math.MaxInt64 {
		readLimit++
	}
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, readLimit))
	if err != nil {
		return nil, c.ioError(ctx, "read body", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response exceeds maximum size of %d bytes", limit)
	}

	code = httpResp.StatusCode
	if c.debug {
		log.Info("received response", "status", httpResp.Status, "headers", httpResp.Header)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Proto:      httpResp.Proto,
		Headers:    httpResp.Header,
		Body:       data,
		URL:        target,
	}, nil
}

// setHeaders copies headers into h in sorted name order, so that when two
// spellings of one name are present the result does not depend on map order.
func setHeaders(h http.Header, headers map[string]string) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Set(name, headers[name])
	}
}

// ioError prefers the context error when the connection was cut by cancellation.
func (c *Client) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isRetryableError reports whether err looks like a transient network failure.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"deadline exceeded",
		"timeout",
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"broken pipe",
		"unexpected eof",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
