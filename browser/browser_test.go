// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package browser

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jongio/httpio/urlutil"
)

// stubOpener replaces openURL for the duration of a test.
func stubOpener(t *testing.T, fn func(string) error) {
	t.Helper()
	orig := openURL
	openURL = fn
	t.Cleanup(func() { openURL = orig })
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   bool
	}{
		{"default is valid", "default", true},
		{"system is valid", "system", true},
		{"none is valid", "none", true},
		{"invalid target", "invalid", false},
		{"empty string", "", false},
		{"chrome not valid", "chrome", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.target); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.target, got, tt.want)
			}
		})
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		target Target
		want   Target
	}{
		{TargetNone, TargetNone},
		{TargetDefault, TargetSystem},
		{TargetSystem, TargetSystem},
	}

	for _, tt := range tests {
		if got := ResolveTarget(tt.target); got != tt.want {
			t.Errorf("ResolveTarget(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestGetTargetDisplayName(t *testing.T) {
	if got := GetTargetDisplayName(TargetDefault); got != "default browser" {
		t.Errorf("GetTargetDisplayName(default) = %q", got)
	}
	if got := GetTargetDisplayName(TargetNone); got != "none" {
		t.Errorf("GetTargetDisplayName(none) = %q", got)
	}
}

func TestLaunch_RejectsInvalidURLs(t *testing.T) {
	stubOpener(t, func(string) error {
		t.Error("opener must not be called for a rejected URL")
		return nil
	})

	tests := []struct {
		name string
		url  string
		want error
	}{
		{"file scheme", "file:///etc/passwd", urlutil.ErrUnsupportedScheme},
		{"ftp scheme", "ftp://example.com/file", urlutil.ErrUnsupportedScheme},
		{"javascript scheme", "javascript:alert(1)", urlutil.ErrUnsupportedScheme},
		{"relative reference", "not a valid url", urlutil.ErrSyntax},
		{"missing host", "http://", urlutil.ErrMissingHost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Launch(LaunchOptions{URL: tt.url, Target: TargetSystem, Wait: true})
			if !errors.Is(err, tt.want) {
				t.Errorf("Launch(%q) error = %v, want %v", tt.url, err, tt.want)
			}
		})
	}
}

func TestLaunch_NoneTargetDoesNotOpen(t *testing.T) {
	stubOpener(t, func(string) error {
		t.Error("opener must not be called for target none")
		return nil
	})

	if err := Launch(LaunchOptions{URL: "http://localhost:4280", Target: TargetNone, Wait: true}); err != nil {
		t.Errorf("Launch() error = %v", err)
	}
}

func TestLaunch_WaitOpensNormalizedURL(t *testing.T) {
	var got string
	stubOpener(t, func(u string) error {
		got = u
		return nil
	})

	if err := Launch(LaunchOptions{URL: "HTTPS://Example.com/docs", Target: TargetDefault, Wait: true}); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if !strings.HasPrefix(got, "https://") {
		t.Errorf("opened %q, want lowercased https scheme", got)
	}
}

func TestLaunch_WaitReturnsOpenerError(t *testing.T) {
	stubOpener(t, func(string) error { return errors.New("no display") })

	err := Launch(LaunchOptions{URL: "https://example.com", Target: TargetSystem, Wait: true})
	if err == nil || !strings.Contains(err.Error(), "no display") {
		t.Errorf("Launch() error = %v, want opener error", err)
	}
}

func TestLaunch_WaitTimesOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	stubOpener(t, func(string) error {
		<-release
		return nil
	})

	err := Launch(LaunchOptions{URL: "https://example.com", Target: TargetSystem, Wait: true, Timeout: 20 * time.Millisecond})
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Launch() error = %v, want timeout", err)
	}
}

func TestLaunch_Background(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	stubOpener(t, func(string) error {
		defer wg.Done()
		return errors.New("ignored")
	})

	if err := Launch(LaunchOptions{URL: "http://localhost:4280", Target: TargetSystem}); err != nil {
		t.Errorf("Launch() error = %v, background failures must not be returned", err)
	}
	wg.Wait()
}

func TestFormatValidTargets(t *testing.T) {
	if got := FormatValidTargets(); got != "default, system, none" {
		t.Errorf("FormatValidTargets() = %q", got)
	}
}
