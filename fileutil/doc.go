// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package fileutil writes fetched response bodies to disk.
//
// Writes are atomic: data goes to a temp file in the destination directory,
// is synced and then renamed into place, so a reader never observes a partial
// body. Destination paths are checked for parent directory references before
// anything is created.
package fileutil
