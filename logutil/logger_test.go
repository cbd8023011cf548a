// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerCreatesWithComponent(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	logger := NewLogger("httpclient")
	logger.Info("hello")
	if !strings.Contains(buf.String(), "component=httpclient") {
		t.Errorf("expected output to contain component=httpclient, got: %s", buf.String())
	}
}

func TestChainingContexts(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	base := NewLogger("httpclient")
	logger := base.WithHost("example.com").WithOperation("execute").WithFields("attempt", 2)
	logger.Info("chain test")

	output := buf.String()
	for _, want := range []string{"component=httpclient", "host=example.com", "operation=execute", "attempt=2"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output, got: %s", want, output)
		}
	}

	buf.Reset()
	base.Info("base only")
	if strings.Contains(buf.String(), "host=") {
		t.Errorf("chaining must not modify the parent logger, got: %s", buf.String())
	}
}

func TestComponentLoggerFollowsGlobalSetup(t *testing.T) {
	logger := NewLogger("late")

	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, true, true)
	defer SetupLogger(false, false)

	logger.Debug("after setup", "n", 1)
	output := buf.String()
	if !strings.Contains(output, `"component":"late"`) || !strings.Contains(output, `"n":1`) {
		t.Errorf("expected JSON debug line, got: %s", output)
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(*ComponentLogger, string, ...any)
		level   string
	}{
		{"debug", (*ComponentLogger).Debug, "DEBUG"},
		{"info", (*ComponentLogger).Info, "INFO"},
		{"warn", (*ComponentLogger).Warn, "WARN"},
		{"error", (*ComponentLogger).Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetupLoggerWithWriter(&buf, true, false)
			defer SetupLogger(false, false)

			tt.logFunc(NewLogger("lvl-test"), "level test msg", "k", "v")

			output := buf.String()
			if !strings.Contains(output, tt.level) || !strings.Contains(output, "level test msg") {
				t.Errorf("expected %s line, got: %s", tt.level, output)
			}
		})
	}
}
