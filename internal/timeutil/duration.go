// Package timeutil holds the duration syntax shared by parameters and the CLI.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var extendedUnit = regexp.MustCompile(`^(\d+)(d|w)$`)

// ParseDuration parses duration strings with extended units (d, w).
// Supports all Go standard units (ns, us, ms, s, m, h) plus:
// - d: days (24 hours)
// - w: weeks (7 days)
//
// Examples: "30d", "2w", "7d", "24h", "5m", "30s"
func ParseDuration(s string) (time.Duration, error) {
	// First try standard Go parsing
	d, err := time.ParseDuration(s)
	if err == nil {
		return d, nil
	}

	matches := extendedUnit.FindStringSubmatch(s)
	if len(matches) != 3 {
		// If it doesn't match our extended pattern, return original error
		return 0, err
	}

	value, convErr := strconv.ParseInt(matches[1], 10, 64)
	if convErr != nil {
		return 0, fmt.Errorf("invalid duration value: %s", matches[1])
	}

	switch matches[2] {
	case "d":
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return time.Duration(value) * 7 * 24 * time.Hour, nil
	}
}
