// Package cli renders audit data for the ignite command-line tool.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agilira/ignite"
)

// TimeLayout is the timestamp layout of the table output.
const TimeLayout = "2006-01-02 15:04:05"

// WriteEvents prints events as an aligned table, or one JSON object per line
// when asJSON is set.
func WriteEvents(w io.Writer, events []ignite.AuditEvent, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		for _, event := range events {
			if err := encoder.Encode(event); err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
		}
		return nil
	}

	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No audit events found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tLEVEL\tEVENT\tAPPLICATION\tDETAIL\tINTEGRITY")
	for _, event := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			event.Timestamp.Local().Format(TimeLayout),
			event.Level.String(),
			event.Event,
			orDash(event.Application),
			orDash(event.Detail),
			integrity(event))
	}
	return tw.Flush()
}

// WriteStats prints a summary of an audit store.
func WriteStats(w io.Writer, stats *ignite.AuditDatabaseStats) error {
	if stats == nil {
		return fmt.Errorf("no statistics available")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Backend:\t%s (schema v%d)\n", stats.Backend, stats.SchemaVersion)
	fmt.Fprintf(tw, "Size:\t%d bytes\n", stats.DatabaseSize)
	fmt.Fprintf(tw, "Events:\t%d\n", stats.TotalEvents)
	fmt.Fprintf(tw, "Oldest:\t%s\n", formatTime(stats.OldestEvent))
	fmt.Fprintf(tw, "Newest:\t%s\n", formatTime(stats.NewestEvent))
	writeCounts(tw, "By level", stats.EventsByLevel)
	writeCounts(tw, "By event", stats.EventsByEvent)
	writeCounts(tw, "By application", stats.EventsByApplication)
	return tw.Flush()
}

// WriteTokens prints one token per line, numbered from zero.
func WriteTokens(w io.Writer, tokens []string) error {
	for i, token := range tokens {
		if _, err := fmt.Fprintf(w, "[%d] %s\n", i, token); err != nil {
			return err
		}
	}
	return nil
}

// WriteCommands prints the tokens of each ';' separated command.
func WriteCommands(w io.Writer, commands [][]string) error {
	for i, tokens := range commands {
		if _, err := fmt.Fprintf(w, "command %d: %s\n", i+1, strings.Join(tokens, " | ")); err != nil {
			return err
		}
	}
	return nil
}

func writeCounts(w io.Writer, title string, counts map[string]int64) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\t\n", title)
	for _, key := range SortedKeys(counts) {
		fmt.Fprintf(w, "  %s\t%d\n", key, counts[key])
	}
}

// SortedKeys returns the keys of counts in ascending order.
func SortedKeys(counts map[string]int64) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func integrity(event ignite.AuditEvent) string {
	if ignite.VerifyChecksum(event) {
		return "ok"
	}
	return "TAMPERED"
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format(TimeLayout)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
