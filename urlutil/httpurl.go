package urlutil

import (
	"errors"
	"net"
	neturl "net/url"
	"strconv"
)

var (
	errRelativeURL = errors.New("relative URL without a base")
	errInvalidPort = errors.New("invalid port number")
	errNilURL      = errors.New("nil URL")
)

// HTTPURL is an absolute http or https URL that has passed validation.
//
// Every value returned without error by Parse or FromURL satisfies:
//   - Scheme() is SchemeHTTP or SchemeHTTPS
//   - Host() is non-empty
//   - Port() is the explicit port, or 80/443 when the URL has none
//
// HTTPURL owns all of its data and is never mutated after construction, so it
// can be copied and shared between goroutines freely.
type HTTPURL struct {
	url    neturl.URL
	scheme Scheme
	host   string
	port   uint16
}

// ParseGeneric parses raw with net/url and rejects what net/url tolerates but an
// absolute URI cannot be: relative references and ports outside 0-65535.
// Failures are *URLError values of KindSyntax.
func ParseGeneric(raw string) (*neturl.URL, error) {
	u, err := neturl.Parse(raw)
	if err != nil {
		return nil, syntaxError(raw, err)
	}
	if !u.IsAbs() {
		return nil, syntaxError(raw, errRelativeURL)
	}
	if _, _, err := explicitPort(u); err != nil {
		return nil, syntaxError(raw, err)
	}
	return u, nil
}

// Parse parses raw and validates it as an http or https URL.
//
// Example:
//
//	u, err := urlutil.Parse("https://example.com:9090/api")
//	if err != nil {
//		return err
//	}
//	conn, err := net.Dial("tcp", u.Addr()) // "example.com:9090"
func Parse(raw string) (HTTPURL, error) {
	u, err := ParseGeneric(raw)
	if err != nil {
		return HTTPURL{}, err
	}
	return FromURL(u)
}

// MustParse is like Parse but panics on error. Use it only for constants.
func MustParse(raw string) HTTPURL {
	u, err := Parse(raw)
	if err != nil {
		panic("urlutil: MustParse(" + strconv.Quote(raw) + "): " + err.Error())
	}
	return u
}

// FromURL validates an already parsed URL. The returned value holds its own copy
// of u; later changes to u are not observed.
func FromURL(u *neturl.URL) (HTTPURL, error) {
	if u == nil {
		return HTTPURL{}, syntaxError("", errNilURL)
	}

	scheme := ClassifyScheme(u.Scheme)
	if !scheme.IsHTTP() {
		return HTTPURL{}, unsupportedSchemeError(u.String(), u.Scheme)
	}

	// net/url guarantees a host for "http://" input, but hand-built or edited
	// values do not have to honor that.
	host := u.Hostname()
	if host == "" {
		return HTTPURL{}, missingHostError(u.String())
	}

	port, explicit, err := explicitPort(u)
	if err != nil {
		return HTTPURL{}, syntaxError(u.String(), err)
	}
	if !explicit {
		port = scheme.DefaultPort()
	}

	return HTTPURL{
		url:    *cloneURL(u),
		scheme: scheme,
		host:   host,
		port:   port,
	}, nil
}

// explicitPort returns the URL's port and whether one was written.
func explicitPort(u *neturl.URL) (uint16, bool, error) {
	p := u.Port()
	if p == "" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return 0, false, errInvalidPort
	}
	return uint16(n), true, nil
}

func cloneURL(u *neturl.URL) *neturl.URL {
	c := *u
	// Userinfo has no mutators, so sharing the pointer is safe.
	return &c
}

// Scheme returns SchemeHTTP or SchemeHTTPS.
func (h HTTPURL) Scheme() Scheme {
	return h.scheme
}

// Host returns the host without port or IPv6 brackets.
func (h HTTPURL) Host() string {
	return h.host
}

// Port returns the explicit port or the scheme's default.
func (h HTTPURL) Port() uint16 {
	return h.port
}

// Addr returns host:port in the form net.Dial expects.
func (h HTTPURL) Addr() string {
	return net.JoinHostPort(h.host, strconv.FormatUint(uint64(h.port), 10))
}

// IsTLS reports whether the URL requires TLS.
func (h HTTPURL) IsTLS() bool {
	return h.scheme.Kind() == KindHTTPS
}

// RequestURI returns the encoded path?query used in an HTTP request line.
func (h HTTPURL) RequestURI() string {
	return h.url.RequestURI()
}

// URL returns a copy of the underlying generic URL for callers that need the
// path, query, fragment, or authority.
func (h HTTPURL) URL() *neturl.URL {
	return cloneURL(&h.url)
}

// IsZero reports whether h is the zero value rather than a validated URL.
func (h HTTPURL) IsZero() bool {
	return h.host == ""
}

// String returns the canonical rendering of the underlying URL. It is a stable
// round trip: parsing the result again renders the same string.
func (h HTTPURL) String() string {
	return h.url.String()
}

// MarshalText implements encoding.TextMarshaler.
func (h HTTPURL) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so config files and JSON
// payloads are validated as they are decoded.
func (h *HTTPURL) UnmarshalText(text []byte) error {
	u, err := Parse(string(text))
	if err != nil {
		return err
	}
	*h = u
	return nil
}
