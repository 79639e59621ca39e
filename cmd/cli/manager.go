// Package cli provides the ignite command-line tool.
//
// The tool inspects the audit trail written by ignite applications and helps
// debugging command lines with the ignite tokenizer. It is built on the Orpheus
// framework with git-style subcommands.
//
// Architecture:
// - Manager: command tree and routing
// - Handlers: one method per command
// - Utils: argument checks shared by the handlers
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"io"
	"os"

	"github.com/agilira/ignite"
	"github.com/agilira/orpheus/pkg/orpheus"
)

// Manager routes the ignite commands.
type Manager struct {
	app         *orpheus.App
	auditLogger *ignite.AuditLogger // Optional audit of destructive commands
	out         io.Writer
}

// NewManager creates the command tree writing to standard output.
func NewManager() *Manager {
	manager := &Manager{out: os.Stdout}
	manager.setupApp()
	return manager
}

// setupApp builds a command tree whose flags hold their default values.
func (m *Manager) setupApp() {
	m.app = orpheus.New("ignite").
		SetDescription("Audit trail and command line tooling for ignite applications").
		SetVersion(ignite.Version)

	m.setupAuditCommands()
	m.setupUtilityCommands()
}

// WithAudit records the commands that modify an audit store.
func (m *Manager) WithAudit(auditLogger *ignite.AuditLogger) *Manager {
	m.auditLogger = auditLogger
	return m
}

// WithOutput redirects command output to w.
func (m *Manager) WithOutput(w io.Writer) *Manager {
	if w != nil {
		m.out = w
	}
	return m
}

// Run executes the command line args. Flag values never carry over from a
// previous Run.
func (m *Manager) Run(args []string) error {
	m.setupApp()
	return m.app.Run(args)
}

// setupAuditCommands configures the 'audit' command group.
func (m *Manager) setupAuditCommands() {
	auditCmd := orpheus.NewCommand("audit", "Audit trail inspection and maintenance")

	// audit query [--db=] [--since=24h] [--event=] [--app=] [--level=info] [--limit=100] [--json]
	queryCmd := auditCmd.Subcommand("query", "Query audit events, newest first", m.handleAuditQuery)
	queryCmd.AddFlag("db", "", "", "Audit store (.db or .jsonl, default: shared database)")
	queryCmd.AddFlag("since", "s", "24h", "Time range (e.g., 24h, 7d, 2w)")
	queryCmd.AddFlag("event", "e", "", "Event type filter")
	queryCmd.AddFlag("app", "a", "", "Application filter")
	queryCmd.AddFlag("level", "", "info", "Minimum level (info|warn|critical|security)")
	queryCmd.AddIntFlag("limit", "l", 100, "Maximum results")
	queryCmd.AddBoolFlag("json", "j", false, "Print events as JSON lines")

	// audit stats [--db=]
	statsCmd := auditCmd.Subcommand("stats", "Summarize an audit store", m.handleAuditStats)
	statsCmd.AddFlag("db", "", "", "Audit store (.db or .jsonl, default: shared database)")

	// audit cleanup [--db=] [--older-than=30d] [--dry-run]
	cleanupCmd := auditCmd.Subcommand("cleanup", "Remove old audit events", m.handleAuditCleanup)
	cleanupCmd.AddFlag("db", "", "", "Audit store (.db or .jsonl, default: shared database)")
	cleanupCmd.AddFlag("older-than", "o", "30d", "Delete entries older than")
	cleanupCmd.AddBoolFlag("dry-run", "d", false, "Show what would be deleted")

	m.app.AddCommand(auditCmd)
}

// setupUtilityCommands configures diagnostics, tokenizer and completion commands.
func (m *Manager) setupUtilityCommands() {
	infoCmd := orpheus.NewCommand("info", "System information and diagnostics")
	infoCmd.SetHandler(m.handleInfo)
	infoCmd.AddBoolFlag("verbose", "v", false, "Verbose system information")
	m.app.AddCommand(infoCmd)

	// tokenize <args...> [--split]
	tokenizeCmd := orpheus.NewCommand("tokenize", "Show the logical tokens of a command line")
	tokenizeCmd.SetHandler(m.handleTokenize)
	tokenizeCmd.AddBoolFlag("split", "", false, "Split the line into ';' separated commands")
	m.app.AddCommand(tokenizeCmd)

	completionCmd := orpheus.NewCommand("completion", "Generate shell completion scripts")
	completionCmd.SetHandler(m.handleCompletion)
	m.app.AddCommand(completionCmd)
}
