package cliout

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jongio/httpio/testutil"
)

func capture(t *testing.T, fn func()) string {
	t.Helper()
	return testutil.CaptureOutput(t, func() error {
		fn()
		return nil
	})
}

func TestSetFormat(t *testing.T) {
	defer func() { _ = SetFormat("default") }()

	if err := SetFormat("json"); err != nil {
		t.Fatalf("SetFormat(json) failed: %v", err)
	}
	if !IsJSON() {
		t.Errorf("Expected FormatJSON, got %v", GetFormat())
	}

	if err := SetFormat(""); err != nil {
		t.Fatalf("SetFormat(\"\") failed: %v", err)
	}
	if GetFormat() != FormatDefault {
		t.Errorf("Expected FormatDefault, got %v", GetFormat())
	}

	if err := SetFormat("xml"); err == nil {
		t.Error("SetFormat(xml) should fail")
	}
}

func TestPrintJSONMode(t *testing.T) {
	if err := SetFormat("json"); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = SetFormat("default") }()

	called := false
	output := capture(t, func() {
		if err := Print(map[string]int{"port": 443}, func() { called = true }); err != nil {
			t.Errorf("Print() error = %v", err)
		}
	})

	if called {
		t.Error("formatter must not run in JSON mode")
	}
	var decoded map[string]int
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", output, err)
	}
	if decoded["port"] != 443 {
		t.Errorf("port = %d, want 443", decoded["port"])
	}
}

func TestPrintDefaultMode(t *testing.T) {
	output := capture(t, func() {
		_ = Print(nil, func() { Plain("formatted %d", 1) })
	})
	if output != "formatted 1\n" {
		t.Errorf("Print() output = %q", output)
	}
}

func TestMessagesWithoutColor(t *testing.T) {
	NoColor()
	defer ForceColor()

	output := capture(t, func() {
		Success("ok %s", "done")
		Error("failed: %v", errors.New("boom"))
		Warning("careful")
		Info("note")
		Label("Host", "example.com")
	})

	if strings.Contains(output, "\033[") {
		t.Errorf("expected no ANSI codes, got %q", output)
	}
	for _, want := range []string{"ok done", "failed: boom", "careful", "note", "Host:", "example.com"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got %q", want, output)
		}
	}
}

func TestColorsWhenForced(t *testing.T) {
	ForceColor()
	defer NoColor()

	output := capture(t, func() { Success("colored") })
	if !strings.Contains(output, BrightGreen) {
		t.Errorf("expected green ANSI code, got %q", output)
	}
}

func TestStatus(t *testing.T) {
	ForceColor()
	defer NoColor()

	tests := []struct {
		code  int
		color string
	}{
		{200, BrightGreen},
		{301, Cyan},
		{404, BrightYellow},
		{503, BrightRed},
	}
	for _, tt := range tests {
		if got := Status(tt.code, "x"); !strings.HasPrefix(got, tt.color) {
			t.Errorf("Status(%d) = %q, want prefix %q", tt.code, got, tt.color)
		}
	}
}

func TestTable(t *testing.T) {
	NoColor()

	output := capture(t, func() {
		Table([]string{"URL", "Port"}, []TableRow{
			{"URL": "http://a.com", "Port": "80"},
			{"URL": "https://example.com", "Port": "443"},
		})
	})

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), output)
	}
	if !strings.Contains(lines[0], "URL") || !strings.Contains(lines[3], "https://example.com") {
		t.Errorf("unexpected table output: %q", output)
	}

	empty := capture(t, func() { Table([]string{"URL"}, nil) })
	if empty != "" {
		t.Errorf("empty table should print nothing, got %q", empty)
	}
}
