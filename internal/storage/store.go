// Package storage implements the ledger store: the single point of access to
// persisted budget data. Every operation is a parameterized statement against
// a database/sql handle; aggregation happens in SQL, not in Go.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// MySQLOptions carries the connection parameters for the mysql backend.
type MySQLOptions struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

// Options selects and configures the storage backend.
type Options struct {
	Backend    string // BackendSQLite or BackendMySQL
	SQLitePath string
	MySQL      MySQLOptions
}

// Store owns the database handle and the dialect-specific query set.
// The *sql.DB serializes concurrent callers internally; no additional
// locking is needed around it.
type Store struct {
	db      *sql.DB
	queries queries
}

// Open connects to the configured backend, runs pending migrations and
// returns a ready store.
func Open(opts Options) (*Store, error) {
	d, err := dialectFor(opts.Backend)
	if err != nil {
		return nil, err
	}

	dsn, err := dsnFor(opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Backend, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{
		db:      db,
		queries: newQueries(d),
	}, nil
}

func dsnFor(opts Options) (string, error) {
	switch opts.Backend {
	case BackendSQLite:
		if opts.SQLitePath == "" {
			return "", fmt.Errorf("sqlite backend requires a database path")
		}
		if dir := filepath.Dir(opts.SQLitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", fmt.Errorf("create db directory: %w", err)
			}
		}
		return opts.SQLitePath, nil
	case BackendMySQL:
		m := opts.MySQL
		if m.Host == "" || m.User == "" || m.Database == "" {
			return "", fmt.Errorf("mysql backend requires host, user and database")
		}
		port := m.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?multiStatements=true",
			m.User, m.Password, m.Host, port, m.Database), nil
	default:
		return "", fmt.Errorf("unsupported storage backend: %q", opts.Backend)
	}
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
