package httpclient

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jongio/httpio/urlutil"
)

// DefaultUserAgent is sent when no User-Agent header is supplied.
const DefaultUserAgent = "httpio/1.0"

// HeaderRequestID carries a per-request correlation ID.
const HeaderRequestID = "X-Request-Id"

// NewRequest builds a request for u. The request line uses u's path and query,
// the Host header uses u's authority without user info, and user info, when
// present, becomes basic auth. The fragment is never sent. A TraceContext
// stored in ctx is forwarded as W3C trace headers.
func NewRequest(ctx context.Context, method string, u urlutil.HTTPURL, body io.Reader) (*http.Request, error) {
	if u.IsZero() {
		return nil, errUnvalidatedURL
	}
	if method == "" {
		method = http.MethodGet
	}

	target := u.URL()
	user := target.User
	target.User = nil
	target.Fragment = ""
	target.RawFragment = ""

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}
	req.Host = target.Host
	req.Close = true

	if user != nil {
		password, _ := user.Password()
		req.SetBasicAuth(user.Username(), password)
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set(HeaderRequestID, uuid.NewString())
	if tc := GetTraceContext(ctx); tc != nil {
		req.Header.Set(HeaderTraceParent, tc.TraceParent)
		if tc.TraceState != "" {
			req.Header.Set(HeaderTraceState, tc.TraceState)
		}
	}
	return req, nil
}
