package urlutil

import "fmt"

// ErrorKind classifies a URLError.
type ErrorKind int

const (
	// KindSyntax means the input is not a well-formed absolute URI.
	KindSyntax ErrorKind = iota + 1
	// KindUnsupportedScheme means the URI is well-formed but not http or https.
	KindUnsupportedScheme
	// KindMissingHost means an http or https URI carries no host.
	KindMissingHost
)

// String returns a short, stable name used in logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindUnsupportedScheme:
		return "unsupported_scheme"
	case KindMissingHost:
		return "missing_host"
	default:
		return "unknown"
	}
}

// URLError is the single error type returned by this package.
type URLError struct {
	Kind ErrorKind
	// Input is the raw string or rendered URL that was rejected.
	Input string
	// Msg is the human-readable description returned by Error.
	Msg string
	// Err is the generic parser's error for KindSyntax, when there is one.
	Err error
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrSyntax            = &URLError{Kind: KindSyntax, Msg: "invalid URL syntax"}
	ErrUnsupportedScheme = &URLError{Kind: KindUnsupportedScheme, Msg: "unsupported URL scheme"}
	ErrMissingHost       = &URLError{Kind: KindMissingHost, Msg: "URL has no host"}
)

func (e *URLError) Error() string {
	return e.Msg
}

func (e *URLError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a URLError of the same kind.
func (e *URLError) Is(target error) bool {
	t, ok := target.(*URLError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func syntaxError(input string, err error) *URLError {
	return &URLError{Kind: KindSyntax, Input: input, Msg: err.Error(), Err: err}
}

func unsupportedSchemeError(input, scheme string) *URLError {
	return &URLError{
		Kind:  KindUnsupportedScheme,
		Input: input,
		Msg:   fmt.Sprintf("unsupported URL scheme %s", scheme),
	}
}

func missingHostError(input string) *URLError {
	return &URLError{Kind: KindMissingHost, Input: input, Msg: ErrMissingHost.Msg}
}
