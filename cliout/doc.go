// Package cliout provides output formatting for the httpget command.
//
// It supports a human-readable format with ANSI colors and Unicode symbols and
// a JSON format for scripting. Colors are turned off automatically when stdout
// is not a terminal or NO_COLOR is set.
//
// # Basic Usage
//
//	cliout.Success("Fetched %s", url)
//	cliout.Error("Request failed: %v", err)
//	cliout.Label("Status", "200 OK")
//
// # Output Formats
//
//	if err := cliout.SetFormat("json"); err != nil {
//		return err
//	}
//	return cliout.Print(result, func() {
//		cliout.Header("Response")
//	})
package cliout
