// Utility functions for the ignite CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/ignite"
	"github.com/agilira/ignite/internal/timeutil"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// commandWords lists the top level commands offered by completion scripts.
const commandWords = "audit info tokenize completion help"

// maxPositionalArgs bounds the positional arguments read from a context.
const maxPositionalArgs = 256

// existingStore checks that an explicit audit store exists, so that inspecting
// a mistyped path does not create an empty store. An empty path selects the
// shared database, which is created on demand.
func existingStore(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if err := ignite.ValidateSecurePath(path); err != nil {
		return "", errors.Wrap(err, ignite.ErrCodeAuditQuery, "unsafe audit store path")
	}

	info, err := os.Stat(path) // #nosec G304 -- path validated above
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(ignite.ErrCodeAuditQuery, fmt.Sprintf("audit store does not exist: %s", path))
		}
		return "", errors.Wrap(err, ignite.ErrCodeAuditQuery, "cannot access audit store").
			WithContext("path", path)
	}
	if info.IsDir() {
		return "", errors.New(ignite.ErrCodeAuditQuery, fmt.Sprintf("%s is a directory", path))
	}
	return path, nil
}

// parseSince converts a look-back window into the earliest timestamp to
// report. An empty window reports everything.
func parseSince(window string, now time.Time) (time.Time, error) {
	if window == "" {
		return time.Time{}, nil
	}

	d, err := timeutil.ParseDuration(window)
	if err != nil {
		return time.Time{}, errors.Wrap(err, ignite.ErrCodeAuditQuery, "invalid --since duration").
			WithContext("value", window)
	}
	if d < 0 {
		return time.Time{}, errors.New(ignite.ErrCodeAuditQuery, fmt.Sprintf("negative --since duration: %s", window))
	}
	return now.Add(-d), nil
}

// positionalArgs collects the positional arguments of ctx, leaving out the
// given boolean flags of the command.
func positionalArgs(ctx *orpheus.Context, flags ...string) []string {
	var args []string
	for i := 0; i < maxPositionalArgs; i++ {
		arg := ctx.GetArg(i)
		if arg == "" {
			break
		}
		args = append(args, arg)
	}
	return withoutFlags(args, flags...)
}

// withoutFlags drops the -name, --name and --name=value forms of flags.
func withoutFlags(args []string, flags ...string) []string {
	if len(flags) == 0 {
		return args
	}
	kept := args[:0:0]
	for _, arg := range args {
		if !isFlagToken(arg, flags) {
			kept = append(kept, arg)
		}
	}
	return kept
}

func isFlagToken(arg string, flags []string) bool {
	if !strings.HasPrefix(arg, "-") {
		return false
	}
	name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
	for _, flag := range flags {
		if name == flag {
			return true
		}
	}
	return false
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

// displayStore names the store a path resolves to.
func displayStore(path string) string {
	if path == "" {
		return ignite.SharedAuditPath()
	}
	return path
}
