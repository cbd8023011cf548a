package urlutil

import (
	"fmt"
	"strings"
)

const (
	// MaxURLLength is the RFC 2616 practical limit for URL length
	MaxURLLength = 2048
)

// Policy adds caller-side restrictions on top of Parse.
type Policy struct {
	// HTTPSOnly rejects plain http except for loopback hosts.
	HTTPSOnly bool
	// MaxLength caps the trimmed input length. Zero means MaxURLLength.
	MaxLength int
}

// Check trims rawURL, applies the policy and returns the validated URL.
// Errors from Parse are returned unwrapped so errors.As finds the *URLError.
func (p Policy) Check(rawURL string) (HTTPURL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return HTTPURL{}, fmt.Errorf("url cannot be empty")
	}

	limit := p.MaxLength
	if limit <= 0 {
		limit = MaxURLLength
	}
	if len(rawURL) > limit {
		return HTTPURL{}, fmt.Errorf("url exceeds maximum length of %d characters", limit)
	}

	u, err := Parse(rawURL)
	if err != nil {
		return HTTPURL{}, err
	}

	if p.HTTPSOnly && !u.IsTLS() && !isLocalhost(u.Host()) {
		return HTTPURL{}, fmt.Errorf("url must use https:// (http:// only allowed for localhost)")
	}
	return u, nil
}

// Validate performs HTTP/HTTPS URL validation. It validates that the URL:
//   - Is not empty or only whitespace
//   - Does not exceed MaxURLLength (2048 characters)
//   - Is an absolute URI that net/url accepts
//   - Uses http:// or https://
//   - Has a non-empty host
//
// Example:
//
//	if err := urlutil.Validate("https://example.com"); err != nil {
//		return fmt.Errorf("invalid URL: %w", err)
//	}
func Validate(rawURL string) error {
	_, err := Policy{}.Check(rawURL)
	return err
}

// ValidateHTTPSOnly enforces HTTPS-only URLs for production use.
// It allows HTTP for localhost (127.0.0.1, ::1, localhost) for local development,
// but rejects all other HTTP URLs.
func ValidateHTTPSOnly(rawURL string) error {
	_, err := Policy{HTTPSOnly: true}.Check(rawURL)
	return err
}

// NormalizeScheme ensures URL has http:// or https:// prefix.
// If the URL already classifies as http or https, it is returned trimmed but
// otherwise unchanged. Otherwise defaultScheme is prepended.
//
// Example:
//
//	normalized := urlutil.NormalizeScheme("example.com", "https")
//	// Returns: "https://example.com"
func NormalizeScheme(rawURL, defaultScheme string) string {
	rawURL = strings.TrimSpace(rawURL)

	u, err := ParseGeneric(rawURL)
	if err == nil && ClassifyScheme(u.Scheme).IsHTTP() {
		return rawURL
	}
	return defaultScheme + "://" + rawURL
}

// isLocalhost checks if the hostname is a loopback name or address
func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == "localhost" ||
		hostname == "127.0.0.1" ||
		hostname == "::1"
}
