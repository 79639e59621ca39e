// console_test.go: Tests for console channels and formatters
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"bytes"
	"testing"
)

// TestConsoleChannels verifies routing of each channel and the verbose gate.
func TestConsoleChannels(t *testing.T) {
	var out, errOut bytes.Buffer
	console := NewConsole(&out, &errOut, false)

	console.Info("started %s", "echo")
	console.Error("failed: %d", 3)
	console.Verbose("hidden")

	if out.String() != "started echo\n" {
		t.Errorf("info output = %q", out.String())
	}
	if errOut.String() != "failed: 3\n" {
		t.Errorf("error output = %q", errOut.String())
	}

	console.WithVerbose(true).Verbose("shown")
	if !console.IsVerbose() {
		t.Error("console should be verbose")
	}
	if out.String() != "started echo\nshown\n" {
		t.Errorf("verbose output = %q", out.String())
	}
}

// TestDefaultFormatVerbatim verifies messages without arguments are not interpreted.
func TestDefaultFormatVerbatim(t *testing.T) {
	var out bytes.Buffer
	message := "100% done"
	NewSingleConsole(&out, false).Info(message)
	if out.String() != message+"\n" {
		t.Errorf("console wrote %q", out.String())
	}
	if got := DefaultFormat("%d%%", 50); got != "50%" {
		t.Errorf("DefaultFormat = %q", got)
	}
}

// TestBraceFormat verifies placeholder substitution.
func TestBraceFormat(t *testing.T) {
	tests := []struct {
		message  string
		args     []any
		expected string
	}{
		{"Cores: {}", []any{8}, "Cores: 8"},
		{"Memory (bytes): {}/{}", []any{10, 20}, "Memory (bytes): 10/20"},
		{"{} and {}", []any{"one"}, "one and {}"},
		{"no placeholders", []any{1}, "no placeholders"},
		{"{}", nil, "{}"},
	}
	for _, tt := range tests {
		if got := BraceFormat(tt.message, tt.args...); got != tt.expected {
			t.Errorf("BraceFormat(%q, %v) = %q, expected %q", tt.message, tt.args, got, tt.expected)
		}
	}

	var out bytes.Buffer
	NewSingleConsole(&out, false).WithFormatter(BraceFormat).Info("Base path: {}", "/srv")
	if out.String() != "Base path: /srv\n" {
		t.Errorf("console with brace formatter wrote %q", out.String())
	}
}
