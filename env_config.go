// env_config.go: Environment overrides for a Standalone
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"time"

	"github.com/agilira/go-errors"
	"github.com/caarlos0/env/v11"
)

// EnvConfig holds the IGNITE_* environment overrides applied by Builder.FromEnv.
// Unset variables leave the corresponding builder setting untouched.
type EnvConfig struct {
	Verbose       *bool  `env:"IGNITE_VERBOSE"`
	ShowBanner    *bool  `env:"IGNITE_SHOW_BANNER"`
	ExitHook      *bool  `env:"IGNITE_EXIT_HOOK"`
	ArgumentsFile string `env:"IGNITE_ARGUMENTS_FILE"`

	// Audit Configuration
	AuditEnabled       bool          `env:"IGNITE_AUDIT_ENABLED"`
	AuditOutput        string        `env:"IGNITE_AUDIT_OUTPUT"`
	AuditMinLevel      string        `env:"IGNITE_AUDIT_MIN_LEVEL" envDefault:"info"`
	AuditBufferSize    int           `env:"IGNITE_AUDIT_BUFFER_SIZE" envDefault:"1000"`
	AuditFlushInterval time.Duration `env:"IGNITE_AUDIT_FLUSH_INTERVAL" envDefault:"5s"`
}

// LoadEnvConfig reads the IGNITE_* variables of the process environment.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, ErrCodeEnvConfig, "failed to load environment configuration")
	}
	return cfg, nil
}

// AuditConfig converts the audit variables into an AuditConfig.
func (c *EnvConfig) AuditConfig() (AuditConfig, error) {
	level, err := ParseAuditLevel(c.AuditMinLevel)
	if err != nil {
		return AuditConfig{}, err
	}

	cfg := DefaultAuditConfig()
	cfg.Enabled = c.AuditEnabled
	cfg.OutputFile = c.AuditOutput
	cfg.MinLevel = level
	if c.AuditBufferSize > 0 {
		cfg.BufferSize = c.AuditBufferSize
	}
	if c.AuditFlushInterval >= 0 {
		cfg.FlushInterval = c.AuditFlushInterval
	}
	return cfg, nil
}

// apply overrides the builder settings with the variables that are set. An
// audit logger is only created when auditing is enabled and none was given.
func (c *EnvConfig) apply(b *Builder) error {
	if c.Verbose != nil {
		b.verbose = *c.Verbose
	}
	if c.ShowBanner != nil {
		b.showBanner = *c.ShowBanner
	}
	if c.ExitHook != nil {
		b.exitHook = *c.ExitHook
	}
	if c.ArgumentsFile != "" {
		b.argumentsFile = c.ArgumentsFile
	}

	if !c.AuditEnabled || b.audit != nil {
		return nil
	}

	auditConfig, err := c.AuditConfig()
	if err != nil {
		return errors.Wrap(err, ErrCodeEnvConfig, "invalid IGNITE_AUDIT_MIN_LEVEL")
	}
	logger, err := NewAuditLogger(auditConfig)
	if err != nil {
		return errors.Wrap(err, ErrCodeEnvConfig, "failed to create audit logger from environment")
	}
	b.audit = logger
	return nil
}
