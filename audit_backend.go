// audit_backend.go: Storage backends of the audit trail
//
// Two backends share one interface: a SQLite database (WAL mode, versioned
// schema) and an append-only JSON Lines file. createAuditBackend prefers SQLite
// and degrades to JSONL so that auditing never prevents a Standalone from
// starting.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

// auditBackend persists and reads back audit events.
type auditBackend interface {
	Write(events []AuditEvent) error
	Flush() error
	Close() error
	Maintenance() error
	GetStats() (*AuditDatabaseStats, error)
	Query(q AuditQuery) ([]AuditEvent, error)
	Cleanup(before time.Time, dryRun bool) (int64, error)
}

// AuditQuery filters stored audit events. Zero values do not filter.
type AuditQuery struct {
	Since       time.Time
	Until       time.Time
	Event       string
	Application string
	MinLevel    AuditLevel
	Limit       int
}

// matches applies the filter to a decoded event.
func (q AuditQuery) matches(event AuditEvent) bool {
	if !q.Since.IsZero() && event.Timestamp.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && event.Timestamp.After(q.Until) {
		return false
	}
	if q.Event != "" && event.Event != q.Event {
		return false
	}
	if q.Application != "" && event.Application != q.Application {
		return false
	}
	return event.Level >= q.MinLevel
}

// AuditDatabaseStats summarizes the content of an audit store.
type AuditDatabaseStats struct {
	TotalEvents         int64            `json:"total_events"`
	EventsByLevel       map[string]int64 `json:"events_by_level"`
	EventsByEvent       map[string]int64 `json:"events_by_event"`
	EventsByApplication map[string]int64 `json:"events_by_application"`
	OldestEvent         *time.Time       `json:"oldest_event"`
	NewestEvent         *time.Time       `json:"newest_event"`
	DatabaseSize        int64            `json:"database_size_bytes"`
	SchemaVersion       int              `json:"schema_version"`
	Backend             string           `json:"backend"`
}

func newAuditDatabaseStats(backend string) *AuditDatabaseStats {
	return &AuditDatabaseStats{
		EventsByLevel:       make(map[string]int64),
		EventsByEvent:       make(map[string]int64),
		EventsByApplication: make(map[string]int64),
		Backend:             backend,
	}
}

// createAuditBackend selects the backend for config: .jsonl output selects
// JSONL, anything else tries SQLite first and falls back to JSONL.
func createAuditBackend(config AuditConfig) (auditBackend, error) {
	if config.OutputFile != "" && filepath.Ext(config.OutputFile) == ".jsonl" {
		return newJSONLBackend(config)
	}

	backend, err := newSQLiteBackend(config)
	if err == nil {
		return backend, nil
	}

	jsonlBackend, jsonlErr := newJSONLBackend(config)
	if jsonlErr != nil {
		return nil, fmt.Errorf("all audit backends failed - SQLite: %w, JSONL: %v", err, jsonlErr)
	}

	return jsonlBackend, nil
}

// SharedAuditPath returns the database used when no output file is configured.
func SharedAuditPath() string {
	return filepath.Join(os.TempDir(), "ignite", "system-audit.db")
}

// sqliteAuditBackend stores events in a SQLite database.
type sqliteAuditBackend struct {
	db            *sql.DB
	dbPath        string
	retentionDays int
	insertStmt    *sql.Stmt
	mu            sync.RWMutex
	closed        bool
}

func newSQLiteBackend(config AuditConfig) (*sqliteAuditBackend, error) {
	dbPath, err := setupDatabasePath(config)
	if err != nil {
		return nil, err
	}

	db, err := openSQLiteDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	backend := &sqliteAuditBackend{
		db:            db,
		dbPath:        dbPath,
		retentionDays: config.RetentionDays,
	}

	if err := initializeBackendComponents(backend); err != nil {
		return nil, err
	}

	return backend, nil
}

// setupDatabasePath resolves the database file and creates its directory.
func setupDatabasePath(config AuditConfig) (string, error) {
	var dbPath string
	if config.OutputFile != "" && filepath.Ext(config.OutputFile) == ".db" {
		dbPath = config.OutputFile
	} else {
		dbPath = SharedAuditPath()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return "", fmt.Errorf("failed to create audit database directory: %w", err)
	}

	return dbPath, nil
}

func openSQLiteDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_cache_size=1000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database (close error: %v): %w", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	return db, nil
}

func initializeBackendComponents(backend *sqliteAuditBackend) error {
	if err := backend.ensureSchemaVersion(); err != nil {
		if closeErr := backend.Close(); closeErr != nil {
			return fmt.Errorf("failed to initialize schema (close error: %v): %w", closeErr, err)
		}
		return fmt.Errorf("failed to initialize audit database schema: %w", err)
	}

	if err := backend.prepareStatements(); err != nil {
		if closeErr := backend.Close(); closeErr != nil {
			return fmt.Errorf("failed to prepare statements (close error: %v): %w", closeErr, err)
		}
		return fmt.Errorf("failed to prepare audit database statements: %w", err)
	}

	// Maintenance failures never prevent the backend from being used
	_ = backend.performMaintenance()

	return nil
}

const currentSchemaVersion = 3

func (s *sqliteAuditBackend) ensureSchemaVersion() error {
	createSchemaInfoSQL := `
	CREATE TABLE IF NOT EXISTS schema_info (
		version INTEGER PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.Exec(createSchemaInfoSQL); err != nil {
		return fmt.Errorf("failed to create schema_info table: %w", err)
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_info ORDER BY version DESC LIMIT 1").Scan(&version)
	if err != nil {
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check schema version: %w", err)
		}
		version = 0
	}

	if version < currentSchemaVersion {
		if err := s.migrateSchema(version, currentSchemaVersion); err != nil {
			return fmt.Errorf("schema migration from v%d to v%d failed: %w", version, currentSchemaVersion, err)
		}

		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO schema_info (version, updated_at)
			VALUES (?, CURRENT_TIMESTAMP)
		`, currentSchemaVersion)
		if err != nil {
			return fmt.Errorf("failed to update schema version: %w", err)
		}
	}

	return nil
}

func (s *sqliteAuditBackend) migrateSchema(oldVersion, newVersion int) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for version := oldVersion; version < newVersion; version++ {
		switch version {
		case 0:
			if err = s.migrateToV1(tx); err != nil {
				return fmt.Errorf("migration to v1 failed: %w", err)
			}
		case 1:
			if err = s.migrateToV2(tx); err != nil {
				return fmt.Errorf("migration to v2 failed: %w", err)
			}
		case 2:
			if err = s.migrateToV3(tx); err != nil {
				return fmt.Errorf("migration to v3 failed: %w", err)
			}
		default:
			err = fmt.Errorf("unknown migration path from version %d", version)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	return nil
}

// migrateToV1 creates the events table and its single column indexes.
func (s *sqliteAuditBackend) migrateToV1(tx *sql.Tx) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS audit_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		timestamp_ns INTEGER NOT NULL,
		level TEXT NOT NULL,
		level_rank INTEGER NOT NULL,
		event TEXT NOT NULL,
		component TEXT NOT NULL,
		application TEXT,
		detail TEXT,

		-- Process tracking
		process_id INTEGER NOT NULL,
		process_name TEXT NOT NULL,

		-- Additional context
		context TEXT, -- JSON blob for flexible metadata
		checksum TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := tx.Exec(createTableSQL); err != nil {
		return fmt.Errorf("failed to create audit_events table: %w", err)
	}

	basicIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp_ns)",
		"CREATE INDEX IF NOT EXISTS idx_audit_level ON audit_events(level_rank)",
		"CREATE INDEX IF NOT EXISTS idx_audit_event ON audit_events(event)",
		"CREATE INDEX IF NOT EXISTS idx_audit_application ON audit_events(application)",
	}

	for _, indexSQL := range basicIndexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create basic index: %w", err)
		}
	}

	return nil
}

// migrateToV2 adds the composite indexes used by queries.
func (s *sqliteAuditBackend) migrateToV2(tx *sql.Tx) error {
	compositeIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_audit_event_time ON audit_events(event, timestamp_ns)",
		"CREATE INDEX IF NOT EXISTS idx_audit_application_time ON audit_events(application, timestamp_ns)",
		"CREATE INDEX IF NOT EXISTS idx_audit_level_time ON audit_events(level_rank, timestamp_ns)",
	}

	for _, indexSQL := range compositeIndexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create composite index: %w", err)
		}
	}

	return nil
}

// migrateToV3 adds the event identifier. Rows written before v3 keep a NULL id.
func (s *sqliteAuditBackend) migrateToV3(tx *sql.Tx) error {
	if _, err := tx.Exec("ALTER TABLE audit_events ADD COLUMN event_id TEXT"); err != nil {
		return fmt.Errorf("failed to add event_id column: %w", err)
	}
	if _, err := tx.Exec("CREATE INDEX IF NOT EXISTS idx_audit_event_id ON audit_events(event_id)"); err != nil {
		return fmt.Errorf("failed to create event_id index: %w", err)
	}
	return nil
}

// performMaintenance enforces retention and optimizes the database. A negative
// retention keeps events forever.
func (s *sqliteAuditBackend) performMaintenance() error {
	if s.retentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
		if _, err := s.db.Exec("DELETE FROM audit_events WHERE timestamp_ns < ?", cutoff.UnixNano()); err != nil {
			return fmt.Errorf("failed to cleanup old audit events: %w", err)
		}
	}

	for _, task := range []string{"PRAGMA optimize", "PRAGMA wal_checkpoint(FULL)"} {
		// Optimization is best effort
		_, _ = s.db.Exec(task)
	}

	return nil
}

func (s *sqliteAuditBackend) prepareStatements() error {
	insertSQL := `
	INSERT INTO audit_events (
		timestamp, timestamp_ns, level, level_rank, event, component,
		application, detail, process_id, process_name, context, checksum, event_id
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := s.db.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	s.insertStmt = stmt
	return nil
}

func (s *sqliteAuditBackend) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Write inserts events in a single transaction.
func (s *sqliteAuditBackend) Write(events []AuditEvent) (err error) {
	if s.isClosed() {
		return fmt.Errorf("cannot write to closed SQLite audit backend")
	}
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txStmt := tx.Stmt(s.insertStmt)
	defer func() { _ = txStmt.Close() }()

	for _, event := range events {
		if err = s.insertEvent(txStmt, event); err != nil {
			return fmt.Errorf("failed to insert audit event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit transaction: %w", err)
	}

	return nil
}

func (s *sqliteAuditBackend) insertEvent(stmt *sql.Stmt, event AuditEvent) error {
	contextJSON := ""
	if event.Context != nil {
		data, err := json.Marshal(event.Context)
		if err != nil {
			return fmt.Errorf("failed to serialize context: %w", err)
		}
		contextJSON = string(data)
	}

	_, err := stmt.Exec(
		event.Timestamp.Format(time.RFC3339Nano),
		event.Timestamp.UnixNano(),
		event.Level.String(),
		int(event.Level),
		event.Event,
		event.Component,
		event.Application,
		event.Detail,
		event.ProcessID,
		event.ProcessName,
		contextJSON,
		event.Checksum,
		sql.NullString{String: event.ID, Valid: event.ID != ""},
	)
	return err
}

// Query returns matching events, newest first.
func (s *sqliteAuditBackend) Query(q AuditQuery) ([]AuditEvent, error) {
	if s.isClosed() {
		return nil, fmt.Errorf("cannot query closed SQLite audit backend")
	}

	var (
		clauses []string
		args    []interface{}
	)
	if !q.Since.IsZero() {
		clauses = append(clauses, "timestamp_ns >= ?")
		args = append(args, q.Since.UnixNano())
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "timestamp_ns <= ?")
		args = append(args, q.Until.UnixNano())
	}
	if q.Event != "" {
		clauses = append(clauses, "event = ?")
		args = append(args, q.Event)
	}
	if q.Application != "" {
		clauses = append(clauses, "application = ?")
		args = append(args, q.Application)
	}
	if q.MinLevel > AuditInfo {
		clauses = append(clauses, "level_rank >= ?")
		args = append(args, int(q.MinLevel))
	}

	query := `SELECT timestamp, level_rank, event, component, application, detail,
		process_id, process_name, context, checksum, event_id FROM audit_events`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp_ns DESC, id DESC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []AuditEvent
	for rows.Next() {
		event, err := scanAuditEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func scanAuditEvent(rows *sql.Rows) (AuditEvent, error) {
	var (
		event       AuditEvent
		timestamp   string
		rank        int
		application sql.NullString
		detail      sql.NullString
		contextJSON sql.NullString
		checksum    sql.NullString
		id          sql.NullString
	)
	if err := rows.Scan(&timestamp, &rank, &event.Event, &event.Component, &application, &detail,
		&event.ProcessID, &event.ProcessName, &contextJSON, &checksum, &id); err != nil {
		return event, fmt.Errorf("failed to scan audit event: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return event, fmt.Errorf("invalid audit timestamp %q: %w", timestamp, err)
	}
	event.Timestamp = ts
	event.Level = AuditLevel(rank)
	event.Application = application.String
	event.Detail = detail.String
	event.Checksum = checksum.String
	event.ID = id.String

	if contextJSON.String != "" {
		if err := json.Unmarshal([]byte(contextJSON.String), &event.Context); err != nil {
			return event, fmt.Errorf("failed to decode audit context: %w", err)
		}
	}
	return event, nil
}

// Cleanup deletes, or only counts when dryRun is set, events older than before.
func (s *sqliteAuditBackend) Cleanup(before time.Time, dryRun bool) (int64, error) {
	if s.isClosed() {
		return 0, fmt.Errorf("cannot clean up closed SQLite audit backend")
	}

	if dryRun {
		var count int64
		err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events WHERE timestamp_ns < ?", before.UnixNano()).Scan(&count)
		if err != nil {
			return 0, fmt.Errorf("failed to count old audit events: %w", err)
		}
		return count, nil
	}

	result, err := s.db.Exec("DELETE FROM audit_events WHERE timestamp_ns < ?", before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}
	return result.RowsAffected()
}

func (s *sqliteAuditBackend) getDatabaseStats() (*AuditDatabaseStats, error) {
	stats := newAuditDatabaseStats("sqlite")

	if err := s.db.QueryRow("SELECT COUNT(*) FROM audit_events").Scan(&stats.TotalEvents); err != nil {
		return nil, fmt.Errorf("failed to get total events count: %w", err)
	}

	groups := map[string]map[string]int64{
		"level":       stats.EventsByLevel,
		"event":       stats.EventsByEvent,
		"application": stats.EventsByApplication,
	}
	for column, target := range groups {
		if err := s.countBy(column, target); err != nil {
			return nil, err
		}
	}

	if err := s.getEventTimeRange(stats); err != nil {
		return nil, err
	}

	err := s.db.QueryRow("SELECT version FROM schema_info ORDER BY version DESC LIMIT 1").Scan(&stats.SchemaVersion)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get schema version: %w", err)
	}

	if info, err := os.Stat(s.dbPath); err == nil {
		stats.DatabaseSize = info.Size()
	}

	return stats, nil
}

// countBy groups events by column. column is one of a fixed set of names.
func (s *sqliteAuditBackend) countBy(column string, target map[string]int64) error {
	rows, err := s.db.Query(fmt.Sprintf("SELECT COALESCE(%s, ''), COUNT(*) FROM audit_events GROUP BY %s", column, column))
	if err != nil {
		return fmt.Errorf("failed to get events by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan %s stats: %w", column, err)
		}
		target[key] = count
	}
	return rows.Err()
}

func (s *sqliteAuditBackend) getEventTimeRange(stats *AuditDatabaseStats) error {
	var oldest, newest sql.NullInt64
	err := s.db.QueryRow("SELECT MIN(timestamp_ns), MAX(timestamp_ns) FROM audit_events").Scan(&oldest, &newest)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to get event time range: %w", err)
	}

	if oldest.Valid {
		t := time.Unix(0, oldest.Int64)
		stats.OldestEvent = &t
	}
	if newest.Valid {
		t := time.Unix(0, newest.Int64)
		stats.NewestEvent = &t
	}
	return nil
}

// Flush checkpoints the write-ahead log.
func (s *sqliteAuditBackend) Flush() error {
	if s.isClosed() {
		return nil
	}

	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to flush SQLite audit backend: %w", err)
	}
	return nil
}

func (s *sqliteAuditBackend) Maintenance() error {
	return s.performMaintenance()
}

func (s *sqliteAuditBackend) GetStats() (*AuditDatabaseStats, error) {
	return s.getDatabaseStats()
}

func (s *sqliteAuditBackend) Close() error {
	if s.isClosed() {
		return nil
	}

	var errs []error
	if err := s.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush audit backend during close: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}

	if s.insertStmt != nil {
		if err := s.insertStmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close insert statement: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	s.closed = true

	if len(errs) > 0 {
		return fmt.Errorf("errors closing SQLite audit backend: %v", errs)
	}
	return nil
}

// jsonlAuditBackend appends one JSON document per event to a file.
type jsonlAuditBackend struct {
	file       *os.File
	sourceFile string
	mu         sync.Mutex
	closed     bool
}

func newJSONLBackend(config AuditConfig) (*jsonlAuditBackend, error) {
	if config.OutputFile == "" {
		return nil, fmt.Errorf("JSONL backend requires OutputFile to be specified")
	}

	if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0750); err != nil {
		return nil, fmt.Errorf("failed to create JSONL audit log directory: %w", err)
	}

	file, err := openJSONLFile(config.OutputFile)
	if err != nil {
		return nil, err
	}

	return &jsonlAuditBackend{
		file:       file,
		sourceFile: config.OutputFile,
	}, nil
}

func openJSONLFile(path string) (*os.File, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600) // #nosec G304 -- path comes from audit configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log file: %w", err)
	}
	return file, nil
}

func (j *jsonlAuditBackend) Write(events []AuditEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return fmt.Errorf("cannot write to closed JSONL audit backend")
	}

	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to serialize audit event: %w", err)
		}
		if _, err := j.file.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write audit event to JSONL: %w", err)
		}
	}

	return nil
}

// readAll decodes every event of the file (caller must hold mu).
func (j *jsonlAuditBackend) readAll() ([]AuditEvent, error) {
	file, err := os.Open(j.sourceFile) // #nosec G304 -- path comes from audit configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open JSONL audit log: %w", err)
	}
	defer func() { _ = file.Close() }()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var event AuditEvent
		if err := json.Unmarshal([]byte(text), &event); err != nil {
			return nil, fmt.Errorf("invalid audit event at line %d: %w", line, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSONL audit log: %w", err)
	}
	return events, nil
}

// Query returns matching events, newest first.
func (j *jsonlAuditBackend) Query(q AuditQuery) ([]AuditEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	events, err := j.readAll()
	if err != nil {
		return nil, err
	}

	var matched []AuditEvent
	for _, event := range events {
		if q.matches(event) {
			matched = append(matched, event)
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Timestamp.After(matched[b].Timestamp)
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Cleanup rewrites the file without the events older than before.
func (j *jsonlAuditBackend) Cleanup(before time.Time, dryRun bool) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return 0, fmt.Errorf("cannot clean up closed JSONL audit backend")
	}

	events, err := j.readAll()
	if err != nil {
		return 0, err
	}

	kept := make([]AuditEvent, 0, len(events))
	for _, event := range events {
		if !event.Timestamp.Before(before) {
			kept = append(kept, event)
		}
	}
	removed := int64(len(events) - len(kept))
	if dryRun || removed == 0 {
		return removed, nil
	}

	if err := j.rewrite(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// rewrite atomically replaces the file content with events and reopens it for
// appending (caller must hold mu).
func (j *jsonlAuditBackend) rewrite(events []AuditEvent) error {
	tmp, err := os.CreateTemp(filepath.Dir(j.sourceFile), filepath.Base(j.sourceFile)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary audit log: %w", err)
	}
	tmpName := tmp.Name()

	writer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(writer)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
			return fmt.Errorf("failed to serialize audit event: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temporary audit log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary audit log: %w", err)
	}

	_ = j.file.Close()
	if err := os.Rename(tmpName, j.sourceFile); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace audit log: %w", err)
	}

	file, err := openJSONLFile(j.sourceFile)
	if err != nil {
		j.closed = true
		return err
	}
	j.file = file
	return nil
}

func (j *jsonlAuditBackend) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync JSONL audit file: %w", err)
	}
	return nil
}

func (j *jsonlAuditBackend) Maintenance() error {
	return nil
}

func (j *jsonlAuditBackend) GetStats() (*AuditDatabaseStats, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stats := newAuditDatabaseStats("jsonl")
	stats.SchemaVersion = 1 // JSONL format is version 1

	if info, err := os.Stat(j.sourceFile); err == nil {
		stats.DatabaseSize = info.Size()
	}

	events, err := j.readAll()
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		stats.TotalEvents++
		stats.EventsByLevel[event.Level.String()]++
		stats.EventsByEvent[event.Event]++
		stats.EventsByApplication[event.Application]++

		ts := event.Timestamp
		if stats.OldestEvent == nil || ts.Before(*stats.OldestEvent) {
			stats.OldestEvent = &ts
		}
		if stats.NewestEvent == nil || ts.After(*stats.NewestEvent) {
			newest := ts
			stats.NewestEvent = &newest
		}
	}
	return stats, nil
}

func (j *jsonlAuditBackend) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	var err error
	if j.file != nil {
		err = j.file.Close()
	}
	j.closed = true
	return err
}
