// Package urlutil is the URL validation gate used by the httpio client.
//
// It turns a raw string, or a URL already parsed by net/url, into an HTTPURL:
// an immutable value whose scheme is http or https, whose host is non-empty and
// whose port is always known. The transport dials HTTPURL.Addr and the request
// builder reads path, query and Host from HTTPURL.URL.
//
// # Usage
//
//	u, err := urlutil.Parse("https://example.com/api?x=1")
//	if err != nil {
//		var uerr *urlutil.URLError
//		if errors.As(err, &uerr) && uerr.Kind == urlutil.KindUnsupportedScheme {
//			// e.g. "unsupported URL scheme ftp"
//		}
//		return err
//	}
//	fmt.Println(u.Scheme(), u.Host(), u.Port()) // https example.com 443
//
// # Schemes
//
// ClassifyScheme maps a token to SchemeHTTP, SchemeHTTPS, SchemeFile or the
// catch-all OtherScheme. Matching is case-insensitive and the catch-all stores
// the lowercased token, so two spellings of the same scheme compare equal.
//
// # Errors
//
// All failures are *URLError with one of three kinds:
//   - KindSyntax: not an absolute URI; the message comes from the parser
//   - KindUnsupportedScheme: "unsupported URL scheme <scheme>"
//   - KindMissingHost: an http or https URL without a host
//
// Use errors.Is with ErrSyntax, ErrUnsupportedScheme or ErrMissingHost.
//
// # Policies
//
// Validate, ValidateHTTPSOnly and Policy.Check layer input trimming, a length
// limit (MaxURLLength) and an optional HTTPS requirement on top of Parse.
package urlutil
