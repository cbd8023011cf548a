package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jongio/httpio/logutil"
	"github.com/jongio/httpio/urlutil"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"
)

// ToolValidateURL is the name of the validation tool.
const ToolValidateURL = "validate_url"

// Default limits for tool calls: a burst of 10, refilled at one call per second.
const (
	DefaultBurst     = 10
	DefaultRateLimit = rate.Limit(1)
)

// KindPolicy marks a rejection by Policy.Check rather than by the parser.
const KindPolicy = "policy"

var log = logutil.NewLogger("mcpserver")

// ValidationResult is the JSON body returned by validate_url.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Scheme string `json:"scheme,omitempty"`
	Host   string `json:"host,omitempty"`
	Port   uint16 `json:"port"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

// Server wraps an MCP server with the URL validation tool registered.
type Server struct {
	mcp     *server.MCPServer
	limiter *rate.Limiter
	policy  urlutil.Policy
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit overrides the tool call rate limit.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(s *Server) {
		s.limiter = rate.NewLimiter(limit, burst)
	}
}

// WithPolicy sets the base policy applied to every call. A call may still
// request https_only on top of it.
func WithPolicy(p urlutil.Policy) Option {
	return func(s *Server) {
		s.policy = p
	}
}

// New creates a server identifying itself as name/version.
func New(name, version string, opts ...Option) *Server {
	s := &Server{
		limiter: rate.NewLimiter(DefaultRateLimit, DefaultBurst),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.mcp.AddTool(validateURLTool(), s.HandleValidateURL)
	return s
}

func validateURLTool() mcp.Tool {
	return mcp.NewTool(ToolValidateURL,
		mcp.WithDescription("Validate that a URL is an absolute http or https URL with a host, and report its scheme, host and effective port."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to validate"),
		),
		mcp.WithBoolean("https_only",
			mcp.Description("Reject plain http except for localhost"),
		),
	)
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// CheckRateLimit returns an error if the tool call limit is exceeded.
func (s *Server) CheckRateLimit(toolName string) error {
	if !s.limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for tool %q, please wait before retrying", toolName)
	}
	return nil
}

// HandleValidateURL implements the validate_url tool.
func (s *Server) HandleValidateURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.CheckRateLimit(ToolValidateURL); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := GetArgsMap(request)
	raw, ok := GetStringParam(args, "url")
	if !ok {
		return mcp.NewToolResultError("missing required string argument: url"), nil
	}

	policy := s.policy
	policy.HTTPSOnly = GetBoolParam(args, "https_only", policy.HTTPSOnly)

	result := Validate(policy, raw)
	log.Debug("validated url", "valid", result.Valid, "kind", result.Kind)
	return MarshalToolResult(result)
}

// Validate runs policy against raw and describes the outcome.
func Validate(policy urlutil.Policy, raw string) ValidationResult {
	u, err := policy.Check(raw)
	if err != nil {
		kind := KindPolicy
		var urlErr *urlutil.URLError
		if errors.As(err, &urlErr) {
			kind = urlErr.Kind.String()
		}
		return ValidationResult{Error: err.Error(), Kind: kind}
	}
	return ValidationResult{
		Valid:  true,
		Scheme: u.Scheme().String(),
		Host:   u.Host(),
		Port:   u.Port(),
		URL:    u.String(),
	}
}

// ServeStdio serves MCP over stdin and stdout until ctx is done.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, nil, nil)
}

// Serve serves MCP over in and out until ctx is done or in is closed. Nil
// streams default to stdin and stdout.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return stdio.Listen(ctx, in, out)
}
