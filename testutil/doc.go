// Package testutil provides common testing helpers for httpio packages:
// capturing stdout from CLI output functions and writing fixture files into
// per-test temporary directories.
package testutil
