// audit_query.go: Offline access to an audit store
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ignite

import (
	"time"

	"github.com/agilira/go-errors"
)

// openAuditStore opens the store at path for reading and cleanup. Retention is
// disabled so opening never deletes events by itself.
func openAuditStore(path string) (*AuditLogger, error) {
	return NewAuditLogger(AuditConfig{
		Enabled:       true,
		OutputFile:    path,
		MinLevel:      AuditInfo,
		BufferSize:    1,
		RetentionDays: -1,
	})
}

// QueryAuditLog returns the events of the store at path matching q, newest
// first. An empty path selects the shared database.
func QueryAuditLog(path string, q AuditQuery) (events []AuditEvent, err error) {
	store, err := openAuditStore(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, ErrCodeAuditQuery, "failed to close audit store")
		}
	}()

	return store.Query(q)
}

// CleanupAuditLog removes the events older than olderThan from the store at
// path and returns how many were removed. With dryRun set nothing is deleted
// and the count of eligible events is returned.
func CleanupAuditLog(path string, olderThan time.Duration, dryRun bool) (removed int64, err error) {
	if olderThan <= 0 {
		return 0, errors.New(ErrCodeAuditQuery, "cleanup age must be positive")
	}

	store, err := openAuditStore(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, ErrCodeAuditQuery, "failed to close audit store")
		}
	}()

	return store.Cleanup(time.Now().Add(-olderThan), dryRun)
}

// AuditLogStats summarizes the store at path.
func AuditLogStats(path string) (stats *AuditDatabaseStats, err error) {
	store, err := openAuditStore(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, ErrCodeAuditQuery, "failed to close audit store")
		}
	}()

	stats, err = store.GetStats()
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditQuery, "failed to read audit statistics")
	}
	return stats, nil
}
