package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jongio/httpio/urlutil"
)

// maxErrorDetail caps the body excerpt returned by ErrorDetail.
const maxErrorDetail = 200

// SuggestStatusAction returns a hint for a non-2xx status code, or "" for
// success and redirects.
func SuggestStatusAction(statusCode int) string {
	switch statusCode {
	case 503:
		return "Service temporarily unavailable. Retry later or raise --retry."
	case 401:
		return "Authentication failed. Check credentials or --scope."
	case 403:
		return "Authorization failed. Check permissions."
	case 404:
		return "Resource not found. Verify the URL path."
	case 408:
		return "Request timeout. Check network connectivity and service performance."
	case 429:
		return "Rate limited. Reduce request rate with --rate-limit or check quotas."
	}
	switch {
	case statusCode >= 500 && statusCode < 600:
		return "Server error. Check the server's logs for details."
	case statusCode >= 400:
		return "Request rejected. Check the method, headers and body."
	}
	return ""
}

// SuggestErrorAction returns a hint for an Execute error.
func SuggestErrorAction(err error, addr string) string {
	if err == nil {
		return ""
	}

	var urlErr *urlutil.URLError
	if errors.As(err, &urlErr) {
		switch urlErr.Kind {
		case urlutil.KindUnsupportedScheme:
			return "Only http:// and https:// URLs are supported."
		case urlutil.KindMissingHost:
			return "Add a host, e.g. http://example.com/."
		default:
			return "Use an absolute URL such as https://example.com/path."
		}
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return fmt.Sprintf("%s refused the connection. Verify the service is running and the port is correct.", addr)
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Sprintf("Timed out talking to %s. Check connectivity or raise --timeout.", addr)
	case strings.Contains(errMsg, "no route to host") || strings.Contains(errMsg, "network is unreachable"):
		return "Network unreachable. Check network configuration."
	case strings.Contains(errMsg, "no such host"):
		return "Host name could not be resolved. Check the spelling and DNS."
	case strings.Contains(errMsg, "certificate"):
		return "TLS certificate verification failed."
	case strings.Contains(errMsg, "circuit breaker open"):
		return "Too many recent failures; the circuit breaker is open."
	}
	return ""
}

// ErrorDetail extracts a short error message from a response body. JSON
// bodies are searched for common error fields; other bodies are truncated.
func ErrorDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var jsonData map[string]interface{}
	if err := json.Unmarshal(body, &jsonData); err == nil {
		for _, key := range []string{"error", "message", "detail", "details", "error_description"} {
			if str, ok := jsonData[key].(string); ok && str != "" {
				return str
			}
		}
	}

	bodyStr := strings.TrimSpace(string(body))
	if len(bodyStr) > maxErrorDetail {
		cut := maxErrorDetail
		for cut > 0 && !utf8.RuneStart(bodyStr[cut]) {
			cut--
		}
		return bodyStr[:cut] + "..."
	}
	return bodyStr
}
