// Package config loads httpget settings from a YAML file, HTTPIO_* environment
// variables and command-line flags, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/urlutil"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultURL is requested when no URL is configured.
const DefaultURL = "http://www.google.com"

// Environment variable names.
const (
	EnvConfig      = "HTTPIO_CONFIG"
	EnvURL         = "HTTPIO_URL"
	EnvMethod      = "HTTPIO_METHOD"
	EnvTimeout     = "HTTPIO_TIMEOUT"
	EnvRetry       = "HTTPIO_RETRY"
	EnvHTTPSOnly   = "HTTPIO_HTTPS_ONLY"
	EnvRateLimit   = "HTTPIO_RATE_LIMIT"
	EnvScope       = "HTTPIO_SCOPE"
	EnvOutput      = "HTTPIO_OUTPUT"
	EnvDebug       = "HTTPIO_DEBUG"
	EnvMetricsAddr = "HTTPIO_METRICS_ADDR"
	EnvLogLevel    = "HTTPIO_LOG_LEVEL"
)

// MaxRetry bounds the configured retry count.
const MaxRetry = 10

// BreakerConfig configures the per-address circuit breaker.
type BreakerConfig struct {
	// Failures is the consecutive failure count that opens the breaker. 0 disables it.
	Failures int           `yaml:"failures"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config holds all httpget settings.
type Config struct {
	URL             string            `yaml:"url"`
	Method          string            `yaml:"method"`
	Timeout         time.Duration     `yaml:"timeout"`
	Retry           int               `yaml:"retry"`
	MaxResponseSize int64             `yaml:"max_response_size"`
	HTTPSOnly       bool              `yaml:"https_only"`
	RateLimit       int               `yaml:"rate_limit"`
	CircuitBreaker  BreakerConfig     `yaml:"circuit_breaker"`
	Headers         map[string]string `yaml:"headers"`
	// Scope enables bearer authentication through the Azure credential chain.
	Scope  string `yaml:"scope"`
	Output string `yaml:"output"`
	Debug  bool   `yaml:"debug"`
	// LogLevel is debug, info, warn or error. Empty follows Debug.
	LogLevel       string `yaml:"log_level"`
	StructuredLogs bool   `yaml:"structured_logs"`
	MetricsAddr    string `yaml:"metrics_addr"`
	// Save writes the response body to this path instead of stdout.
	Save string `yaml:"save"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		URL:             DefaultURL,
		Method:          "GET",
		Timeout:         30 * time.Second,
		MaxResponseSize: 100 * 1024 * 1024,
		CircuitBreaker:  BreakerConfig{Timeout: 30 * time.Second},
		Headers:         map[string]string{},
		Output:          "default",
	}
}

// Load builds a Config from defaults, the YAML file at path (or $HTTPIO_CONFIG
// when path is empty) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c.Headers = canonicalHeaders(c.Headers)
	return nil
}

// canonicalHeaders rekeys headers by canonical name so that "user-agent" and
// "User-Agent" name one header. Among spellings of the same name the
// canonical spelling wins, then the lexically last.
func canonicalHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key := http.CanonicalHeaderKey(name)
		if _, ok := out[key]; ok && name != key {
			if _, canonical := headers[key]; canonical {
				continue
			}
		}
		out[key] = headers[name]
	}
	return out
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvURL); ok {
		c.URL = v
	}
	if v, ok := os.LookupEnv(EnvMethod); ok {
		c.Method = v
	}
	if v, ok := os.LookupEnv(EnvScope); ok {
		c.Scope = v
	}
	if v, ok := os.LookupEnv(EnvOutput); ok {
		c.Output = v
	}
	if v, ok := os.LookupEnv(EnvMetricsAddr); ok {
		c.MetricsAddr = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = v
	}

	var err error
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		if c.Timeout, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
	}
	if v, ok := os.LookupEnv(EnvRetry); ok {
		if c.Retry, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRetry, err)
		}
	}
	if v, ok := os.LookupEnv(EnvRateLimit); ok {
		if c.RateLimit, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRateLimit, err)
		}
	}
	if v, ok := os.LookupEnv(EnvHTTPSOnly); ok {
		if c.HTTPSOnly, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHTTPSOnly, err)
		}
	}
	if v, ok := os.LookupEnv(EnvDebug); ok && v != "" {
		if c.Debug, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
	}
	return nil
}

// ApplyFlags copies every flag the user actually set on fs into c.
// Unknown flag names are ignored so commands can carry extra flags.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var applyErr error
	fs.Visit(func(f *pflag.Flag) {
		if applyErr != nil {
			return
		}
		applyErr = c.applyFlag(f)
	})
	return applyErr
}

func (c *Config) applyFlag(f *pflag.Flag) error {
	value := f.Value.String()
	var err error
	switch f.Name {
	case "method":
		c.Method = value
	case "output":
		c.Output = value
	case "scope":
		c.Scope = value
	case "metrics-addr":
		c.MetricsAddr = value
	case "save":
		c.Save = value
	case "log-level":
		c.LogLevel = value
	case "timeout":
		c.Timeout, err = time.ParseDuration(value)
	case "retry":
		c.Retry, err = strconv.Atoi(value)
	case "rate-limit":
		c.RateLimit, err = strconv.Atoi(value)
	case "max-size":
		c.MaxResponseSize, err = strconv.ParseInt(value, 10, 64)
	case "https-only":
		c.HTTPSOnly, err = strconv.ParseBool(value)
	case "debug":
		c.Debug, err = strconv.ParseBool(value)
	case "header":
		sv, ok := f.Value.(pflag.SliceValue)
		if !ok {
			return fmt.Errorf("flag --header must be a list")
		}
		for _, h := range sv.GetSlice() {
			k, v, err := ParseHeader(h)
			if err != nil {
				return err
			}
			c.Headers[k] = v
		}
	}
	if err != nil {
		return fmt.Errorf("invalid --%s: %w", f.Name, err)
	}
	return nil
}

// ParseHeader splits "Name: value" or "Name=value". The name is returned in
// canonical form (http.CanonicalHeaderKey).
func ParseHeader(s string) (string, string, error) {
	idx := strings.IndexAny(s, ":=")
	if idx <= 0 {
		return "", "", fmt.Errorf("invalid header %q (expected Name: value or Name=value)", s)
	}
	name := strings.TrimSpace(s[:idx])
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", fmt.Errorf("invalid header name %q", name)
	}
	return http.CanonicalHeaderKey(name), strings.TrimSpace(s[idx+1:]), nil
}

// Level returns the configured log level. ok is false when LogLevel is empty,
// in which case Debug decides.
func (c *Config) Level() (level logutil.Level, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "":
		return logutil.LevelInfo, false, nil
	case "debug", "info", "warn", "warning", "error":
		return logutil.ParseLevel(c.LogLevel), true, nil
	}
	return logutil.LevelInfo, false, fmt.Errorf("invalid log level: %s (valid options: debug, info, warn, error)", c.LogLevel)
}

// Policy returns the URL policy implied by the settings.
func (c *Config) Policy() urlutil.Policy {
	return urlutil.Policy{HTTPSOnly: c.HTTPSOnly}
}

// Validate checks value ranges and runs the configured URL through the gate.
func (c *Config) Validate() error {
	switch c.Output {
	case "", "default", "json":
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", c.Output)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.Retry < 0 || c.Retry > MaxRetry {
		return fmt.Errorf("retry must be between 0 and %d", MaxRetry)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}
	if c.MaxResponseSize < 0 {
		return fmt.Errorf("max_response_size cannot be negative")
	}
	if c.CircuitBreaker.Failures < 0 {
		return fmt.Errorf("circuit_breaker.failures cannot be negative")
	}
	if _, _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Policy().Check(c.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	return nil
}
