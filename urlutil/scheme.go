package urlutil

import "strings"

// SchemeKind identifies which variant a Scheme holds.
type SchemeKind int

const (
	// KindOther is any scheme outside the known set.
	KindOther SchemeKind = iota
	// KindHTTP is the "http" scheme.
	KindHTTP
	// KindHTTPS is the "https" scheme.
	KindHTTPS
	// KindFile is the "file" scheme.
	KindFile
)

// Default ports for the HTTP schemes.
const (
	DefaultHTTPPort  uint16 = 80
	DefaultHTTPSPort uint16 = 443
)

// Scheme is a classified URL scheme: one of the known protocols or a catch-all
// carrying the lowercased token. Scheme values are comparable with ==.
type Scheme struct {
	kind  SchemeKind
	token string
}

// Known schemes.
var (
	SchemeHTTP  = Scheme{kind: KindHTTP}
	SchemeHTTPS = Scheme{kind: KindHTTPS}
	SchemeFile  = Scheme{kind: KindFile}
)

// OtherScheme returns the catch-all variant for token.
// The token is lowercased so that OtherScheme("FTP") == OtherScheme("ftp").
func OtherScheme(token string) Scheme {
	return Scheme{kind: KindOther, token: strings.ToLower(token)}
}

// ClassifyScheme maps a scheme token to a Scheme. It never fails: matching is
// case-insensitive and unknown tokens become OtherScheme(lowercased token).
//
// Example:
//
//	urlutil.ClassifyScheme("HTTPS") == urlutil.SchemeHTTPS // true
//	urlutil.ClassifyScheme("Ws").String()                   // "ws"
func ClassifyScheme(token string) Scheme {
	switch lower := strings.ToLower(token); lower {
	case "http":
		return SchemeHTTP
	case "https":
		return SchemeHTTPS
	case "file":
		return SchemeFile
	default:
		return Scheme{kind: KindOther, token: lower}
	}
}

// Kind returns the variant tag.
func (s Scheme) Kind() SchemeKind {
	return s.kind
}

// IsHTTP reports whether s is http or https.
func (s Scheme) IsHTTP() bool {
	return s.kind == KindHTTP || s.kind == KindHTTPS
}

// DefaultPort returns the well-known port for http and https, 0 for anything else.
func (s Scheme) DefaultPort() uint16 {
	switch s.kind {
	case KindHTTP:
		return DefaultHTTPPort
	case KindHTTPS:
		return DefaultHTTPSPort
	default:
		return 0
	}
}

// String renders the scheme token in lowercase.
func (s Scheme) String() string {
	switch s.kind {
	case KindHTTP:
		return "http"
	case KindHTTPS:
		return "https"
	case KindFile:
		return "file"
	default:
		return s.token
	}
}

// MarshalText implements encoding.TextMarshaler so schemes render as plain
// strings in JSON output.
func (s Scheme) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
