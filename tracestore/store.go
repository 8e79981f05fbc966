/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracestore

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/chainguard-dev/clog"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
)

//go:embed schema.sql
var schema string

// Store is a sqlite backed trace store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening trace db %s: %w", path, err)
	}
	// sqlite serializes writers anyway, and a single connection keeps an
	// in-memory database alive for the life of the store.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening trace db %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating trace db %s: %w", path, err)
	}
	clog.FromContext(ctx).With("path", path).Debug("Opened trace store")
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// experimentID returns the id of the named experiment, creating it.
func experimentID(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO experiments (name, created_ns) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, time.Now().UnixNano(),
	); err != nil {
		return 0, fmt.Errorf("creating experiment %q: %w", name, err)
	}
	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM experiments WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("looking up experiment %q: %w", name, err)
	}
	return id, nil
}
