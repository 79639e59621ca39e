// audit.go: Audit trail of Standalone lifecycles
//
// Every lifecycle transition of a Standalone can be recorded as an audit event:
// ignition, parameter failures, startup and shutdown outcomes, signals and
// explicit extinguish requests. Events are buffered, checksummed for tamper
// detection and persisted by a pluggable backend.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/oklog/ulid/v2"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
	AuditSecurity
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	case AuditSecurity:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// ParseAuditLevel converts a level name, case-insensitively, into an AuditLevel.
func ParseAuditLevel(name string) (AuditLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info":
		return AuditInfo, nil
	case "warn", "warning":
		return AuditWarn, nil
	case "critical":
		return AuditCritical, nil
	case "security":
		return AuditSecurity, nil
	default:
		return AuditInfo, errors.New(ErrCodeInvalidAuditConfig, fmt.Sprintf("unknown audit level %q", name))
	}
}

// AuditEvent represents a single auditable lifecycle event
type AuditEvent struct {
	ID          string                 `json:"id,omitempty"` // ULID, sortable by time
	Timestamp   time.Time              `json:"timestamp"`
	Level       AuditLevel             `json:"level"`
	Event       string                 `json:"event"`
	Component   string                 `json:"component"`
	Application string                 `json:"application,omitempty"`
	Detail      string                 `json:"detail,omitempty"`
	ProcessID   int                    `json:"process_id"`
	ProcessName string                 `json:"process_name"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Checksum    string                 `json:"checksum"` // For tamper detection
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled       bool          `json:"enabled"`
	OutputFile    string        `json:"output_file"`
	MinLevel      AuditLevel    `json:"min_level"`
	BufferSize    int           `json:"buffer_size"`
	FlushInterval time.Duration `json:"flush_interval"`
	RetentionDays int           `json:"retention_days"`
}

// DefaultAuditConfig returns the default audit configuration.
//
// An empty OutputFile selects the shared SQLite database under the system
// temporary directory. A .db file selects a dedicated SQLite database and a
// .jsonl file selects the JSON Lines backend.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		Enabled:       true,
		OutputFile:    "",
		MinLevel:      AuditInfo,
		BufferSize:    1000,
		FlushInterval: 5 * time.Second,
		RetentionDays: 90,
	}
}

// withDefaults fills in unset sizing values. A negative RetentionDays keeps
// events forever.
func (c AuditConfig) withDefaults() AuditConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 1000
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 90
	}
	return c
}

// AuditLogger buffers audit events and writes them in batches to its backend.
//
// The buffer is flushed when it is full, on every tick of the background
// flusher and on Flush or Close.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend // SQLite or JSONL
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	flushTicker *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
	processID   int
	processName string
}

// NewAuditLogger creates an audit logger with automatic backend selection.
// SQLite is preferred, JSONL is the fallback when the database cannot be opened.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	config = config.withDefaults()

	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeInvalidAuditConfig, "failed to initialize audit backend")
	}

	logger := &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, config.BufferSize),
		stopCh:      make(chan struct{}),
		processID:   os.Getpid(),
		processName: getProcessName(),
	}

	// Start background flusher
	if config.FlushInterval > 0 {
		logger.flushTicker = time.NewTicker(config.FlushInterval)
		go logger.flushLoop()
	}

	return logger, nil
}

// Log records an audit event
func (al *AuditLogger) Log(level AuditLevel, event, component, application, detail string, context map[string]interface{}) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	// Use cached timestamp for performance (121x faster than time.Now())
	timestamp := timecache.CachedTime()

	auditEvent := AuditEvent{
		ID:          ulid.MustNew(ulid.Timestamp(timestamp), ulid.DefaultEntropy()).String(),
		Timestamp:   timestamp,
		Level:       level,
		Event:       event,
		Component:   component,
		Application: application,
		Detail:      detail,
		ProcessID:   al.processID,
		ProcessName: al.processName,
		Context:     context,
	}

	// Generate tamper-detection checksum
	auditEvent.Checksum = generateChecksum(auditEvent)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, auditEvent)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // Ignore flush errors during buffering to maintain performance
	}
	al.bufferMu.Unlock()
}

// LogLifecycle records a Standalone lifecycle transition.
func (al *AuditLogger) LogLifecycle(level AuditLevel, event, application string, context map[string]interface{}) {
	detail := ""
	if context != nil {
		if msg, ok := context["error"].(string); ok {
			detail = msg
		}
	}
	al.Log(level, event, "standalone", application, detail, context)
}

// LogSecurityEvent records a security-related event
func (al *AuditLogger) LogSecurityEvent(event, details string, context map[string]interface{}) {
	al.Log(AuditSecurity, event, "ignite", "", details, context)
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	if al == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// GetStats returns storage statistics of the backend after a flush.
func (al *AuditLogger) GetStats() (*AuditDatabaseStats, error) {
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.GetStats()
}

// Query flushes pending events and returns the stored events matching q.
func (al *AuditLogger) Query(q AuditQuery) ([]AuditEvent, error) {
	if err := al.Flush(); err != nil {
		return nil, err
	}
	events, err := al.backend.Query(q)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditQuery, "failed to query audit events")
	}
	return events, nil
}

// Cleanup removes stored events older than before. With dryRun set the events
// are only counted.
func (al *AuditLogger) Cleanup(before time.Time, dryRun bool) (int64, error) {
	if err := al.Flush(); err != nil {
		return 0, err
	}
	removed, err := al.backend.Cleanup(before, dryRun)
	if err != nil {
		return 0, errors.Wrap(err, ErrCodeAuditQuery, "failed to clean up audit events")
	}
	return removed, nil
}

// Close gracefully shuts down the audit logger
func (al *AuditLogger) Close() error {
	var closeErr error
	al.closeOnce.Do(func() {
		close(al.stopCh)
		if al.flushTicker != nil {
			al.flushTicker.Stop()
		}

		// Final flush to ensure all events are persisted
		if err := al.Flush(); err != nil {
			closeErr = errors.Wrap(err, ErrCodeAuditWrite, "failed to flush audit logger during close")
			return
		}

		if al.backend != nil {
			if err := al.backend.Close(); err != nil {
				closeErr = errors.Wrap(err, ErrCodeAuditWrite, "failed to close audit backend")
			}
		}
	})
	return closeErr
}

// flushLoop runs the background flush process
func (al *AuditLogger) flushLoop() {
	for {
		select {
		case <-al.flushTicker.C:
			_ = al.Flush() // Ignore flush errors in background process to maintain performance
		case <-al.stopCh:
			return
		}
	}
}

// flushBufferUnsafe writes buffer to backend storage (caller must hold bufferMu).
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}

	if err := al.backend.Write(al.buffer); err != nil {
		return errors.Wrap(err, ErrCodeAuditWrite, "failed to write audit events to backend")
	}

	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Level, event.Event, event.Component, event.Application, event.Detail)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// VerifyChecksum reports whether event still matches its checksum.
func VerifyChecksum(event AuditEvent) bool {
	return event.Checksum != "" && generateChecksum(event) == event.Checksum
}

func getProcessName() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Base(exe)
	}
	return "ignite"
}
