// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/urlutil"
	pkgbrowser "github.com/pkg/browser"
)

// Target represents the browser target for launching URLs.
type Target string

const (
	// TargetDefault uses the system default browser
	TargetDefault Target = "default"
	// TargetSystem uses the system default browser (alias for TargetDefault)
	TargetSystem Target = "system"
	// TargetNone disables browser launching
	TargetNone Target = "none"
)

// DefaultTimeout bounds how long Launch waits for the opener when Wait is set.
const DefaultTimeout = 5 * time.Second

var log = logutil.NewLogger("browser")

// openURL is swapped out in tests.
var openURL = pkgbrowser.OpenURL

// ValidTargets returns all valid browser target values.
func ValidTargets() []Target {
	return []Target{TargetDefault, TargetSystem, TargetNone}
}

// IsValid checks if a target string is valid.
func IsValid(target string) bool {
	t := Target(target)
	for _, valid := range ValidTargets() {
		if t == valid {
			return true
		}
	}
	return false
}

// ResolveTarget determines the actual browser target to use.
// Converts "default" to "system", and respects "none".
func ResolveTarget(target Target) Target {
	if target == TargetNone {
		return TargetNone
	}
	return TargetSystem
}

// LaunchOptions contains options for launching a browser.
type LaunchOptions struct {
	// URL to open
	URL string
	// Target browser to use
	Target Target
	// Timeout for the opener when Wait is set (default 5 seconds)
	Timeout time.Duration
	// Wait blocks until the opener returns instead of launching in the background.
	Wait bool
}

// Launch validates opts.URL as an http or https URL and opens it in the
// browser selected by opts.Target. Without Wait the opener runs in a separate
// goroutine and its failures are only logged.
func Launch(opts LaunchOptions) error {
	u, err := urlutil.Parse(opts.URL)
	if err != nil {
		return fmt.Errorf("refusing to open URL: %w", err)
	}

	if ResolveTarget(opts.Target) == TargetNone {
		log.Debug("browser launch disabled", "url", u.String())
		return nil
	}

	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	if !opts.Wait {
		go func() {
			if err := openURL(u.String()); err != nil {
				log.Warn("could not open browser automatically", "url", u.String(), "error", err)
			}
		}()
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- openURL(u.String()) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", u, err)
		}
		return nil
	case <-time.After(opts.Timeout):
		return fmt.Errorf("timed out after %s opening %s", opts.Timeout, u)
	}
}

// GetTargetDisplayName returns a human-readable name for the browser target.
func GetTargetDisplayName(target Target) string {
	switch ResolveTarget(target) {
	case TargetNone:
		return "none"
	default:
		return "default browser"
	}
}

// FormatValidTargets returns a comma-separated list of valid targets.
func FormatValidTargets() string {
	targets := ValidTargets()
	strs := make([]string, len(targets))
	for i, t := range targets {
		strs[i] = string(t)
	}
	return strings.Join(strs, ", ")
}
