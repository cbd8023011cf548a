// Package mcpserver exposes the URL gate to MCP clients.
//
// The server registers a single read-only tool, validate_url, which runs the
// same validation httpget applies before sending a request and reports the
// outcome as JSON:
//
//	{"valid": true, "scheme": "https", "host": "example.com", "port": 443, "url": "https://example.com/"}
//
// Failed validations are normal results with valid=false, an error message and
// an error kind (syntax, unsupported_scheme, missing_host or policy). Tool calls
// are rate limited per server.
package mcpserver
