package testutil

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestCaptureOutput(t *testing.T) {
	output := CaptureOutput(t, func() error {
		fmt.Println("hello")
		fmt.Print("world")
		return nil
	})
	if output != "hello\nworld" {
		t.Errorf("CaptureOutput() = %q, want %q", output, "hello\nworld")
	}
}

func TestCaptureOutputRestoresStdoutOnError(t *testing.T) {
	orig := os.Stdout
	output := CaptureOutput(t, func() error {
		fmt.Println("partial")
		return errors.New("boom")
	})
	if output != "partial\n" {
		t.Errorf("CaptureOutput() = %q", output)
	}
	if os.Stdout != orig {
		t.Error("stdout was not restored")
	}
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, "fixture.yaml", "key: value\n")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "key: value\n" {
		t.Errorf("content = %q", data)
	}
}
