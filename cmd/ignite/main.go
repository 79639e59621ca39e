// ignite: audit trail and command line tooling for ignite applications
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"

	"github.com/agilira/ignite"
	"github.com/agilira/ignite/cmd/cli"
)

func main() {
	manager := cli.NewManager()

	// IGNITE_AUDIT_ENABLED=true records destructive commands in the audit trail
	logger, err := auditFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if logger != nil {
		manager.WithAudit(logger)
	}

	runErr := manager.Run(os.Args[1:])
	if logger != nil {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close audit logger: %v\n", err)
		}
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func auditFromEnv() (*ignite.AuditLogger, error) {
	env, err := ignite.LoadEnvConfig()
	if err != nil {
		return nil, err
	}
	if !env.AuditEnabled {
		return nil, nil
	}

	config, err := env.AuditConfig()
	if err != nil {
		return nil, err
	}
	return ignite.NewAuditLogger(config)
}
