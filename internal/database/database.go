package database

import (
	"database/sql"
	"fmt"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle shared by the command path and the
// background loops. database/sql serializes access, which is all the
// atomicity the alert lifecycle needs.
type DB struct {
	conn *sql.DB
}

func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows one writer; a single pooled connection also keeps
	// :memory: databases from splitting per connection.
	conn.SetMaxOpenConns(1)

	createSubscribersQuery := `
	CREATE TABLE IF NOT EXISTS subscribers (
		chat_id INTEGER PRIMARY KEY
	);`
	if _, err := conn.Exec(createSubscribersQuery); err != nil {
		return nil, fmt.Errorf("failed to create subscribers table: %w", err)
	}

	createAlertsQuery := `
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		target REAL NOT NULL,
		direction TEXT NOT NULL,
		repeat INTEGER NOT NULL DEFAULT 0,
		triggered INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);`
	if _, err := conn.Exec(createAlertsQuery); err != nil {
		return nil, fmt.Errorf("failed to create alerts table: %w", err)
	}

	log.Debug("database initialized")
	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}
