// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package logutil provides the structured logger shared by httpio packages.
//
// It wraps log/slog with a process-wide logger that can switch between text and
// JSON output, plus component-scoped loggers that carry request context.
//
// # Basic Usage
//
//	logutil.SetupLogger(debug, structured)
//
//	log := logutil.NewLogger("httpclient").WithHost("example.com")
//	log.Debug("dialing", "addr", "example.com:443")
//	log.Info("request completed", "status", 200)
//
// # Debug Mode
//
// Debug logging can be enabled in two ways:
//   - Pass debug=true to SetupLogger
//   - Set HTTPIO_DEBUG=true in the environment
//
// Component loggers resolve the global logger on every call, so loggers created
// at package init pick up a later SetupLogger.
package logutil
