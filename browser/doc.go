// Package browser launches validated URLs in the user's web browser.
//
// The actual launch is delegated to github.com/pkg/browser. Before anything is
// handed to the operating system the URL goes through urlutil.Parse, so only
// absolute http and https URLs with a host are ever opened; file:, javascript:
// and relative references are rejected with a *urlutil.URLError.
//
// # Browser Targets
//
//   - TargetDefault: Uses the system default browser (alias for TargetSystem)
//   - TargetSystem: Uses the system default browser
//   - TargetNone: Disables browser launching
//
// # Example Usage
//
//	err := browser.Launch(browser.LaunchOptions{
//	    URL:    "https://example.com",
//	    Target: browser.TargetDefault,
//	})
//	if err != nil {
//	    log.Printf("Failed to launch browser: %v", err)
//	}
//
// Launch returns immediately unless Wait is set; launch failures in the
// background are logged through logutil rather than returned.
package browser
