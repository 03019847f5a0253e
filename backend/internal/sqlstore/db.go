// Package sqlstore is the SQLite implementation of store.Backend.
package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const migrationsSQL = `
CREATE TABLE IF NOT EXISTS relations (
	word TEXT NOT NULL,
	related_word TEXT NOT NULL,
	type TEXT NOT NULL,
	strength REAL NOT NULL DEFAULT 0,
	context TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT 'en',
	verified INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (word, related_word, type)
);

CREATE INDEX IF NOT EXISTS idx_relations_word_type ON relations (word, type);

CREATE TABLE IF NOT EXISTS definitions (
	word TEXT PRIMARY KEY,
	text TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT 'en',
	verified INTEGER NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS content (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL,
	sentence TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	context TEXT NOT NULL DEFAULT '',
	language TEXT NOT NULL DEFAULT 'en',
	frequency INTEGER NOT NULL DEFAULT 1,
	confidence REAL NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (word, sentence)
);

CREATE INDEX IF NOT EXISTS idx_content_category ON content (category, word);

CREATE TABLE IF NOT EXISTS qa_pairs (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	answer TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_qa_pairs_created ON qa_pairs (created_at);
`

// InitDB runs the migrations on db.
func InitDB(db *sql.DB) error {
	for _, s := range strings.Split(migrationsSQL, ";") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// OpenDB opens the SQLite file at path (":memory:" for a throwaway
// database) and migrates it.
func OpenDB(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps :memory: on a single connection
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
