package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jongio/httpio/cliout"
	"github.com/jongio/httpio/config"
	"github.com/jongio/httpio/fileutil"
	"github.com/jongio/httpio/httpclient"
	"github.com/jongio/httpio/keyvault"
	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/progress"
)

var log = logutil.NewLogger("httpget")

// responseOutput is the JSON form of a fetched response.
type responseOutput struct {
	URL        string              `json:"url"`
	StatusCode int                 `json:"statusCode"`
	Status     string              `json:"status"`
	Proto      string              `json:"proto"`
	Headers    map[string][]string `json:"headers"`
	Body       string              `json:"body,omitempty"`
	SavedTo    string              `json:"savedTo,omitempty"`
	Detail     string              `json:"detail,omitempty"`
	Hint       string              `json:"hint,omitempty"`
	Attempts   int                 `json:"attempts"`
	DurationMs int64               `json:"durationMs"`
}

func (a *app) get(ctx context.Context) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return withHint(err, "")
	}
	ctx = httpclient.SetupTracingFromEnv(ctx)

	headers, err := a.resolveHeaders(ctx, cfg.Headers)
	if err != nil {
		return err
	}
	if _, ok := headers["User-Agent"]; !ok {
		headers["User-Agent"] = a.info.UserAgent()
	}

	provider, err := a.tokenProvider(cfg)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		shutdown := startMetricsServer(cfg.MetricsAddr)
		defer shutdown()
	}

	client := httpclient.NewClient(provider, logutil.IsDebugEnabled(), cfg.Timeout,
		httpclient.WithPolicy(cfg.Policy()),
		httpclient.WithRateLimit(cfg.RateLimit),
		httpclient.WithCircuitBreaker(cfg.CircuitBreaker.Failures, cfg.CircuitBreaker.Timeout),
	)

	var spin *progress.Spinner
	if progress.Enabled() {
		spin = progress.New(os.Stderr, cfg.Method+" "+cfg.URL)
		spin.Start()
	}

	resp, err := client.Execute(ctx, httpclient.RequestOptions{
		Method:          cfg.Method,
		URL:             cfg.URL,
		Headers:         headers,
		SkipAuth:        provider == nil,
		Scope:           cfg.Scope,
		Retry:           cfg.Retry,
		MaxResponseSize: cfg.MaxResponseSize,
	})
	if spin != nil {
		if err != nil {
			spin.Fail(err.Error())
		} else {
			spin.Complete(resp.Status)
		}
	}
	if err != nil {
		addr := cfg.URL
		if u, perr := cfg.Policy().Check(cfg.URL); perr == nil {
			addr = u.Addr()
		}
		return withHint(err, addr)
	}

	log.WithHost(resp.URL.Host()).Debug("request complete",
		"status", resp.StatusCode, "attempts", resp.Attempts, "duration", resp.Duration)

	savedTo := ""
	if cfg.Save != "" {
		if savedTo, err = fileutil.SaveBody(cfg.Save, resp.Body); err != nil {
			return fmt.Errorf("failed to save response body: %w", err)
		}
	}
	return printResponse(resp, savedTo)
}

// resolveHeaders returns a copy of headers with Key Vault references resolved.
func (a *app) resolveHeaders(ctx context.Context, headers map[string]string) (map[string]string, error) {
	if !keyvault.HasReferences(headers) {
		out := make(map[string]string, len(headers))
		for k, v := range headers {
			out[k] = v
		}
		return out, nil
	}

	resolver, err := a.deps.secrets()
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential for Key Vault references: %w", err)
	}
	return resolver.ResolveHeaders(ctx, headers)
}

// tokenProvider returns nil when no scope is configured.
func (a *app) tokenProvider(cfg *config.Config) (httpclient.TokenProvider, error) {
	if cfg.Scope == "" {
		return nil, nil
	}
	cred, err := a.deps.credential()
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}
	return httpclient.NewCredentialTokenProvider(cred), nil
}

func startMetricsServer(addr string) func() {
	srv := httpclient.NewMetricsServer(addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics server stopped", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// printResponse prints the status line, headers and body. When savedTo is set
// the body was written to that file and is not printed.
func printResponse(resp *httpclient.Response, savedTo string) error {
	out := responseOutput{
		URL:        resp.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Proto:      resp.Proto,
		Headers:    resp.Headers,
		SavedTo:    savedTo,
		Attempts:   resp.Attempts,
		DurationMs: resp.Duration.Milliseconds(),
	}
	if savedTo == "" {
		out.Body = string(resp.Body)
	}
	if resp.StatusCode >= 400 {
		out.Detail = httpclient.ErrorDetail(resp.Body)
		out.Hint = httpclient.SuggestStatusAction(resp.StatusCode)
	}

	return cliout.Print(out, func() {
		cliout.Plain("%s %s", resp.Proto, cliout.Status(resp.StatusCode, resp.Status))

		names := make([]string, 0, len(resp.Headers))
		for name := range resp.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cliout.Plain("%s: %s", name, strings.Join(resp.Headers[name], ", "))
		}
		fmt.Println()

		if savedTo != "" {
			cliout.Success("Saved %d bytes to %s", len(resp.Body), savedTo)
			return
		}
		_, _ = os.Stdout.Write(resp.Body)

		if out.Hint != "" {
			if len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
				fmt.Println()
			}
			cliout.Warning("%s", out.Hint)
		}
	})
}

// hintedError carries a suggestion printed after the error message.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() }
func (e *hintedError) Unwrap() error { return e.err }

func withHint(err error, addr string) error {
	hint := httpclient.SuggestErrorAction(err, addr)
	if hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}
