package mcpserver

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestGetArgsMap_NilArgs(t *testing.T) {
	if args := GetArgsMap(mcp.CallToolRequest{}); len(args) != 0 {
		t.Error("expected empty map for nil args")
	}
}

func TestGetArgsMap_WithArgs(t *testing.T) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]interface{}{"url": "https://example.com", "https_only": true}

	args := GetArgsMap(req)
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if args["url"] != "https://example.com" {
		t.Errorf("expected 'https://example.com', got %v", args["url"])
	}
}

func TestGetStringParam(t *testing.T) {
	args := map[string]interface{}{"key": "value", "num": 42}

	val, ok := GetStringParam(args, "key")
	if !ok || val != "value" {
		t.Errorf("expected 'value', got %q (ok=%v)", val, ok)
	}
	if _, ok := GetStringParam(args, "num"); ok {
		t.Error("expected false for non-string value")
	}
	if _, ok := GetStringParam(args, "missing"); ok {
		t.Error("expected false for missing key")
	}
}

func TestGetBoolParam(t *testing.T) {
	args := map[string]interface{}{"yes": true, "str": "true"}

	if !GetBoolParam(args, "yes", false) {
		t.Error("expected true")
	}
	if GetBoolParam(args, "str", false) {
		t.Error("expected default for non-bool value")
	}
	if !GetBoolParam(args, "missing", true) {
		t.Error("expected default for missing key")
	}
}

func TestMarshalToolResult(t *testing.T) {
	result, err := MarshalToolResult(map[string]string{"status": "ok"})
	if err != nil || result == nil || result.IsError {
		t.Fatalf("unexpected result %v, err %v", result, err)
	}

	// Channels cannot be marshaled to JSON.
	result, err = MarshalToolResult(make(chan int))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("expected an error result for un-marshalable value")
	}
}
