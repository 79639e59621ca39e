// Command handlers for the ignite CLI
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"fmt"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/ignite"
	output "github.com/agilira/ignite/internal/cli"
	"github.com/agilira/ignite/internal/timeutil"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// handleAuditQuery prints the events of an audit store matching the filters.
func (m *Manager) handleAuditQuery(ctx *orpheus.Context) error {
	path, err := existingStore(ctx.GetFlagString("db"))
	if err != nil {
		return err
	}

	since, err := parseSince(ctx.GetFlagString("since"), time.Now())
	if err != nil {
		return err
	}

	level, err := ignite.ParseAuditLevel(ctx.GetFlagString("level"))
	if err != nil {
		return err
	}

	limit := ctx.GetFlagInt("limit")
	if limit < 0 {
		return errors.New(ignite.ErrCodeAuditQuery, fmt.Sprintf("invalid limit: %d", limit))
	}

	events, err := ignite.QueryAuditLog(path, ignite.AuditQuery{
		Since:       since,
		Event:       ctx.GetFlagString("event"),
		Application: ctx.GetFlagString("app"),
		MinLevel:    level,
		Limit:       limit,
	})
	if err != nil {
		return err
	}

	return output.WriteEvents(m.out, events, ctx.GetFlagBool("json"))
}

// handleAuditStats summarizes an audit store.
func (m *Manager) handleAuditStats(ctx *orpheus.Context) error {
	path, err := existingStore(ctx.GetFlagString("db"))
	if err != nil {
		return err
	}

	stats, err := ignite.AuditLogStats(path)
	if err != nil {
		return err
	}

	return output.WriteStats(m.out, stats)
}

// handleAuditCleanup removes old audit events.
func (m *Manager) handleAuditCleanup(ctx *orpheus.Context) error {
	path, err := existingStore(ctx.GetFlagString("db"))
	if err != nil {
		return err
	}

	olderThanStr := ctx.GetFlagString("older-than")
	olderThan, err := timeutil.ParseDuration(olderThanStr)
	if err != nil {
		return errors.Wrap(err, ignite.ErrCodeAuditQuery, "invalid --older-than duration").
			WithContext("value", olderThanStr)
	}

	dryRun := ctx.GetFlagBool("dry-run")
	removed, err := ignite.CleanupAuditLog(path, olderThan, dryRun)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(m.out, "Would delete %d audit events older than %s\n", removed, olderThanStr)
		return nil
	}

	if m.auditLogger != nil {
		m.auditLogger.Log(ignite.AuditSecurity, "cli_audit_cleanup", "cli", "ignite",
			fmt.Sprintf("removed %d events", removed),
			map[string]interface{}{"store": displayStore(path), "older_than": olderThanStr})
	}

	fmt.Fprintf(m.out, "Deleted %d audit events older than %s\n", removed, olderThanStr)
	return nil
}

// handleInfo displays version and host diagnostics.
func (m *Manager) handleInfo(ctx *orpheus.Context) error {
	fmt.Fprintf(m.out, "ignite: typed parameters and process lifecycle\n")
	fmt.Fprintf(m.out, "Version: %s\n", ignite.Version)

	if ctx.GetFlagBool("verbose") {
		fmt.Fprintf(m.out, "\nSystem Details:\n")
		for _, line := range ignite.CollectDiagnostics(nil).Lines() {
			fmt.Fprintln(m.out, line)
		}
		fmt.Fprintf(m.out, "\tShared audit store: %s\n", displayStore(""))
		fmt.Fprintf(m.out, "\tAudit logging: %v\n", m.auditLogger != nil)
	}

	return nil
}

// handleTokenize prints the logical tokens rebuilt from the positional arguments.
func (m *Manager) handleTokenize(ctx *orpheus.Context) error {
	args := positionalArgs(ctx, "split")
	if len(args) == 0 {
		return errors.New(ignite.ErrCodeInvalidParameter, "tokenize requires at least one argument")
	}

	if ctx.GetFlagBool("split") {
		return output.WriteCommands(m.out, ignite.SplitCommands(joinArgs(args)))
	}
	return output.WriteTokens(m.out, ignite.Tokenize(args))
}

// handleCompletion generates shell completion scripts.
func (m *Manager) handleCompletion(ctx *orpheus.Context) error {
	shell := ctx.GetArg(0)

	switch shell {
	case "bash":
		fmt.Fprintf(m.out, "# Bash completion for ignite\n")
		fmt.Fprintf(m.out, "# Add to ~/.bashrc: source <(ignite completion bash)\n")
		fmt.Fprintf(m.out, "_ignite_completion() {\n")
		fmt.Fprintf(m.out, "  COMPREPLY=($(compgen -W '%s' -- \"${COMP_WORDS[COMP_CWORD]}\"))\n", commandWords)
		fmt.Fprintf(m.out, "}\n")
		fmt.Fprintf(m.out, "complete -F _ignite_completion ignite\n")
	case "zsh":
		fmt.Fprintf(m.out, "#compdef ignite\n")
		fmt.Fprintf(m.out, "# Add to ~/.zshrc: source <(ignite completion zsh)\n")
		fmt.Fprintf(m.out, "_ignite() {\n")
		fmt.Fprintf(m.out, "  _arguments '1: :(%s)'\n", commandWords)
		fmt.Fprintf(m.out, "}\n")
	case "fish":
		fmt.Fprintf(m.out, "# Fish completion for ignite\n")
		fmt.Fprintf(m.out, "complete -c ignite -f -a '%s'\n", commandWords)
	default:
		return errors.New(ignite.ErrCodeInvalidParameter, fmt.Sprintf("unsupported shell: %s", shell))
	}

	return nil
}
