// Wordclock Core
// Copyright (c) 2026 The Wordclock Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Wordclock Core.
//
// Wordclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Wordclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Wordclock Core.  If not, see <http://www.gnu.org/licenses/>.

package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/wordclock/wordclock-core/pkg/helpers/syncutil"
)

const (
	sqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"
	recordRowID      = 1
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its settings in package globals
var migrationMutex syncutil.Mutex

type gooseZerologAdapter struct{}

func (*gooseZerologAdapter) Printf(format string, v ...any) {
	log.Debug().Msgf(format, v...)
}

func (*gooseZerologAdapter) Fatalf(format string, v ...any) {
	log.Fatal().Msgf(format, v...)
}

func migrateUp(db *sql.DB) error {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	goose.SetLogger(&gooseZerologAdapter{})
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("error running migrations up: %w", err)
	}
	return nil
}

// SQLiteStore keeps the record as a single row in an SQLite database.
type SQLiteStore struct {
	ctx context.Context
	db  *sql.DB
	region
}

// OpenSQLiteStore opens or creates the database at path and brings its
// schema up to date.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	db, err := sql.Open("sqlite3", path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteStore(ctx, db), nil
}

// NewSQLiteStore wraps a database that already has the records table.
func NewSQLiteStore(ctx context.Context, db *sql.DB) *SQLiteStore {
	return &SQLiteStore{ctx: ctx, db: db}
}

func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Begin(size int) error {
	var stored []byte
	err := s.db.QueryRowContext(s.ctx,
		`SELECT data FROM records WHERE id = ?`, recordRowID,
	).Scan(&stored)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read record: %w", err)
	}
	s.load(size, stored)
	return nil
}

func (s *SQLiteStore) Commit() error {
	data, err := s.snapshot()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO records (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, recordRowID, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCommitFail, err)
	}
	return nil
}
