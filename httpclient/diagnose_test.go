package httpclient

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jongio/httpio/urlutil"
	"github.com/stretchr/testify/assert"
)

func TestSuggestStatusAction(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, ""},
		{301, ""},
		{401, "Authentication failed"},
		{404, "not found"},
		{429, "--rate-limit"},
		{418, "Request rejected"},
		{502, "Server error"},
		{503, "temporarily unavailable"},
	}
	for _, tt := range tests {
		got := SuggestStatusAction(tt.code)
		if tt.want == "" {
			assert.Empty(t, got, "code %d", tt.code)
			continue
		}
		assert.Contains(t, got, tt.want, "code %d", tt.code)
	}
}

func TestSuggestErrorAction(t *testing.T) {
	_, schemeErr := urlutil.Parse("ftp://example.com")
	_, hostErr := urlutil.Parse("http://")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"scheme", fmt.Errorf("invalid request URL: %w", schemeErr), "http:// and https://"},
		{"host", hostErr, "Add a host"},
		{"refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), "127.0.0.1:1 refused"},
		{"timeout", errors.New("read response: context deadline exceeded"), "--timeout"},
		{"dns", errors.New("dial tcp: lookup nope.invalid: no such host"), "could not be resolved"},
		{"breaker", errors.New("circuit breaker open for example.com:443"), "circuit breaker"},
		{"other", errors.New("something else"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestErrorAction(tt.err, "127.0.0.1:1")
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestErrorDetail(t *testing.T) {
	assert.Empty(t, ErrorDetail(nil))
	assert.Equal(t, "bad token", ErrorDetail([]byte(`{"error":"bad token"}`)))
	assert.Equal(t, "missing field", ErrorDetail([]byte(`{"code":7,"message":"missing field"}`)))
	assert.Equal(t, `{"code":7}`, ErrorDetail([]byte(`{"code":7}`)))
	assert.Equal(t, "plain text", ErrorDetail([]byte("  plain text\n")))

	long := ErrorDetail([]byte(strings.Repeat("x", 500)))
	assert.Len(t, long, maxErrorDetail+3)

	// "é" is two bytes; an odd prefix puts byte 200 mid-rune.
	multi := ErrorDetail([]byte("x" + strings.Repeat("é", 150)))
	assert.True(t, utf8.ValidString(multi), multi)
	assert.True(t, strings.HasSuffix(multi, "..."))
	assert.Equal(t, "x"+strings.Repeat("é", 99)+"...", multi)
	assert.True(t, strings.HasSuffix(long, "..."))
}
