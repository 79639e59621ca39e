// path_security.go: Validation of user supplied file paths
//
// Arguments files and audit stores are named on the command line or in the
// environment, so their paths are checked before any file operation.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agilira/go-errors"
)

const (
	maxPathLength = 4096
	maxPathDepth  = 50
)

var (
	traversalPatterns = []string{"..", "../", "..\\", "/..", "\\.."}

	encodedPatterns = []string{
		"%2e%2e",     // ".." encoded
		"%252e%252e", // ".." double encoded
		"%2f",        // "/" encoded
		"%252f",      // "/" double encoded
		"%5c",        // "\" encoded
		"%255c",      // "\" double encoded
		"%00",        // null byte
		"%2500",      // null byte double encoded
	}

	sensitivePaths = []string{
		"/etc/passwd",
		"/etc/shadow",
		"/proc/",
		"/sys/",
		"windows/system32",
		".ssh/",
		".aws/",
	}

	windowsDevices = []string{
		"CON", "PRN", "AUX", "NUL",
		"COM1", "COM2", "COM3", "COM4", "COM5", "COM6", "COM7", "COM8", "COM9",
		"LPT1", "LPT2", "LPT3", "LPT4", "LPT5", "LPT6", "LPT7", "LPT8", "LPT9",
	}
)

// ValidateSecurePath rejects empty paths, traversal sequences (plain or URL
// encoded), well known system locations, Windows device names, control
// characters and paths that are too long or too deep.
func ValidateSecurePath(path string) error {
	if path == "" {
		return errors.New(ErrCodeUnsafePath, "empty path not allowed")
	}

	for _, pattern := range traversalPatterns {
		if strings.Contains(path, pattern) {
			return unsafePath(path, "path contains dangerous traversal pattern: "+pattern)
		}
	}

	lower := strings.ToLower(path)
	for _, pattern := range encodedPatterns {
		if strings.Contains(lower, pattern) {
			return unsafePath(path, "path contains URL-encoded traversal pattern: "+pattern)
		}
	}

	slashed := filepath.ToSlash(lower)
	for _, sensitive := range sensitivePaths {
		if strings.Contains(slashed, sensitive) {
			return unsafePath(path, "access to system file/directory not allowed: "+sensitive)
		}
	}

	base := strings.ToUpper(filepath.Base(path))
	if dot := strings.LastIndex(base, "."); dot != -1 {
		base = base[:dot]
	}
	for _, device := range windowsDevices {
		if base == device {
			return unsafePath(path, "windows device name not allowed: "+device)
		}
	}

	if len(path) > maxPathLength {
		return unsafePath(path, fmt.Sprintf("path too long (max %d characters): %d", maxPathLength, len(path)))
	}
	if depth := strings.Count(path, "/") + strings.Count(path, "\\"); depth > maxPathDepth {
		return unsafePath(path, fmt.Sprintf("path too complex (max %d directory levels): %d", maxPathDepth, depth))
	}

	for _, char := range path {
		if char < 32 {
			return unsafePath(path, fmt.Sprintf("control character in path not allowed: %d", char))
		}
	}

	return nil
}

func unsafePath(path, message string) error {
	return errors.New(ErrCodeUnsafePath, message).WithContext("path", path)
}
