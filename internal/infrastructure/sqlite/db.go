// Package sqlite is the SQLite case store. It implements the evidence
// repositories and the case context used by the content viewers.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/caseview/internal/evidence"
	"github.com/zjrosen/caseview/internal/log"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// DB owns the connection to a case file.
type DB struct {
	conn   *sql.DB
	path   string
	closed atomic.Bool
}

// NewDB opens the case at path, creating it and its directory if needed.
// An existing file is copied to path+".bak" before migrations run.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create case directory: %w", err)
	}

	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		if err := backup(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("failed to back up case: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open case: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open case: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatCase, "Opened case", "path", path)
	return &DB{conn: conn, path: path}, nil
}

func backup(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- case path chosen by the user
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Close closes the connection.
func (db *DB) Close() error {
	db.closed.Store(true)
	return db.conn.Close()
}

// Path returns the case file path.
func (db *DB) Path() string { return db.path }

// Connection returns the underlying connection.
func (db *DB) Connection() *sql.DB { return db.conn }

// Case describes the open case.
func (db *DB) Case() evidence.Case {
	name := filepath.Base(db.path)
	return evidence.Case{Name: name[:len(name)-len(filepath.Ext(name))], Path: db.path}
}

// ContentRepository returns the content repository for this case.
func (db *DB) ContentRepository() evidence.ContentRepository {
	return newContentRepository(db.conn)
}

// DataSourceRepository returns the data source repository for this case.
func (db *DB) DataSourceRepository() evidence.DataSourceRepository {
	return newDataSourceRepository(db.conn)
}

// InTx runs fn with repositories bound to one transaction. The transaction
// commits only if fn returns nil.
func (db *DB) InTx(ctx context.Context, fn func(contents evidence.ContentRepository, sources evidence.DataSourceRepository) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(newContentRepository(tx), newDataSourceRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
