// Package database wraps the SQLite store used for the dashboard.
package database

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

type Conn struct {
	db *sql.DB
}

type Row interface {
	Scan(dest ...any) error
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

var ErrNoRows = sql.ErrNoRows

// Open opens the SQLite database stored at the given path.
func Open(path string) (*Conn, error) {
	db, err := sql.Open(
		"sqlite3",
		path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on",
	)

	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()

		return nil, err
	}

	return &Conn{db: db}, nil
}

// Connect opens the database named by the DB_PATH environment variable.
func Connect() (*Conn, error) {
	path := os.Getenv("DB_PATH")

	if len(path) == 0 {
		return nil, fmt.Errorf("no DB_PATH variable set")
	}

	return Open(path)
}

// Close closes a database connection.
func (conn *Conn) Close() error {
	return conn.db.Close()
}

// Exec executes a database query.
func (conn *Conn) Exec(sql string, arguments ...any) error {
	_, err := conn.db.Exec(sql, arguments...)

	return err
}

// Query executes a database query returning Rows data.
func (conn *Conn) Query(sql string, arguments ...any) (Rows, error) {
	return conn.db.Query(sql, arguments...)
}

// QueryRow executes a database query returning Row data.
func (conn *Conn) QueryRow(sql string, arguments ...any) Row {
	return conn.db.QueryRow(sql, arguments...)
}

// Queryable defines an interface for a connection.
type Queryable interface {
	Exec(sql string, arguments ...any) error
	Query(sql string, arguments ...any) (Rows, error)
	QueryRow(sql string, arguments ...any) Row
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS coins (
		id TEXT PRIMARY KEY,
		symbol TEXT,
		name TEXT,
		price NUMERIC,
		last_updated TEXT,
		price_change_24h NUMERIC,
		price_change_percentage_24h NUMERIC,
		price_change_percentage_7d NUMERIC,
		description TEXT,
		homepage TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		user TEXT,
		coin_id TEXT,
		PRIMARY KEY (user, coin_id)
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password TEXT
	)`,
}

// EnsureSchema creates any missing tables.
//
// The application ensures its schema at startup instead of running
// migrations. Safe to call on every start.
func EnsureSchema(conn *Conn) error {
	for _, statement := range schemaStatements {
		if err := conn.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
