// Package sqlitemigrate applies embedded SQL migrations to a SQLite handle.
//
// Migration files carry "-- +migrate Up" and "-- +migrate Down" markers; only
// the Up section runs. Files apply at most once, in lexical order, each inside
// its own transaction together with the ledger insert.
package sqlitemigrate

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const (
	ledgerTable = "schema_migrations"
	upMarker    = "-- +migrate Up"
	downMarker  = "-- +migrate Down"
)

// Apply runs every pending *.sql migration in fsys against db.
func Apply(db *sql.DB, fsys fs.FS) error {
	if db == nil {
		return errors.New("sql db is required")
	}

	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(names)

	ledgerSQL := "CREATE TABLE IF NOT EXISTS " + ledgerTable + " (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)"
	if _, err := db.Exec(ledgerSQL); err != nil {
		return fmt.Errorf("ensure migration ledger: %w", err)
	}

	for _, name := range names {
		done, err := recorded(db, name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if done {
			continue
		}
		if err := applyOne(db, fsys, name); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

func applyOne(db *sql.DB, fsys fs.FS, name string) error {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if statements := strings.TrimSpace(upSection(string(content))); statements != "" {
		if _, err := tx.Exec(statements); err != nil {
			return err
		}
	}
	insertSQL := "INSERT INTO " + ledgerTable + " (name, applied_at) VALUES (?, ?)"
	if _, err := tx.Exec(insertSQL, name, time.Now().UTC().UnixMilli()); err != nil {
		return err
	}
	return tx.Commit()
}

// upSection returns the SQL between the Up and Down markers. Content without
// markers is treated as a bare Up migration.
func upSection(content string) string {
	_, after, found := strings.Cut(content, upMarker)
	if !found {
		after = content
	}
	up, _, _ := strings.Cut(after, downMarker)
	return up
}

func recorded(db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRow("SELECT 1 FROM "+ledgerTable+" WHERE name = ?", name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
