// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package logutil

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupLogger(t *testing.T) {
	SetupLogger(true, false)
	if !IsDebugEnabled() {
		t.Error("expected debug to be enabled")
	}

	SetupLogger(false, false)
	if GetLevel() != LevelInfo {
		t.Errorf("expected LevelInfo, got %v", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{" error ", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := ParseLevel(tt.input); result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLogOutputText(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, true, false)
	defer SetupLogger(false, false)

	Debug("debug message", "key", "value")
	Info("info message")

	output := buf.String()
	if !strings.Contains(output, "debug message") || !strings.Contains(output, "key=value") {
		t.Errorf("expected debug line in output, got: %s", output)
	}
	if !strings.Contains(output, "level=INFO") {
		t.Errorf("expected info line in output, got: %s", output)
	}
}

func TestStructuredLogging(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, true)
	defer SetupLogger(false, false)

	Warn("json message", "count", 3)

	output := buf.String()
	if !strings.Contains(output, `"msg":"json message"`) || !strings.Contains(output, `"count":3`) {
		t.Errorf("expected JSON output, got: %s", output)
	}
}

func TestDebugWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got: %s", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWithWriter(&buf, false, false)
	defer SetupLogger(false, false)

	SetLevel(LevelError)
	Warn("dropped")
	Error("kept")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("warn should be filtered at error level, got: %s", output)
	}
	if !strings.Contains(output, "kept") {
		t.Errorf("expected error line, got: %s", output)
	}
}

func TestSetOutputKeepsFormat(t *testing.T) {
	SetupLoggerWithWriter(&bytes.Buffer{}, false, true)
	defer SetupLogger(false, false)

	var buf bytes.Buffer
	SetOutput(&buf)
	Info("redirected")

	if !strings.Contains(buf.String(), `"msg":"redirected"`) {
		t.Errorf("expected JSON line after SetOutput, got: %s", buf.String())
	}
}
