// Package store persists ledgers, categories, transactions, and chat logs in
// an embedded SQLite database. Amounts are stored as decimal strings, never
// floats. The store implements the repository interfaces the category adapter
// and the chat workflow depend on.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"jianji/ledger-assistant/internal/logging"
)

// Store wraps the database handle. All methods are safe for concurrent use;
// SQLite serializes writers internally.
type Store struct {
	db  *sql.DB
	log logging.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS ledgers (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS members (
	ledger_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	permission TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (ledger_id, user_id)
);

CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	ledger_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	ledger_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	date TEXT NOT NULL,
	item TEXT NOT NULL,
	amount TEXT NOT NULL,
	category_id TEXT NOT NULL DEFAULT '',
	person TEXT NOT NULL DEFAULT '',
	note TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_logs (
	id TEXT PRIMARY KEY,
	ledger_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	linked_transaction_id TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_categories_ledger ON categories(ledger_id);
CREATE INDEX IF NOT EXISTS idx_transactions_ledger ON transactions(ledger_id, date);
CREATE INDEX IF NOT EXISTS idx_chat_logs_ledger ON chat_logs(ledger_id, created_at);
`

// Open creates or opens the database at dbPath and applies the schema. The
// parent directory is created when missing.
func Open(dbPath string, log logging.Logger) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.WithField("path", dbPath).Debug("Database opened")
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
