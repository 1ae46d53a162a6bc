package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteStore persists emails and analyses in a SQLite database
type SQLiteStore struct {
	sqlStore
}

// NewSQLiteStore opens (and if needed initializes) a SQLite store at the
// given path
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS emails (
			id TEXT PRIMARY KEY,
			source_id TEXT,
			payload TEXT NOT NULL,
			analyzed BOOLEAN NOT NULL DEFAULT 0,
			analysis_id TEXT NOT NULL DEFAULT '',
			stored_at TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_emails_source_id ON emails(source_id) WHERE source_id != ''`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id TEXT PRIMARY KEY,
			email_id TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			classification TEXT NOT NULL,
			confidence REAL NOT NULL,
			is_phishing BOOLEAN NOT NULL,
			payload TEXT NOT NULL,
			ml_score INTEGER NOT NULL,
			owasp_score INTEGER NOT NULL,
			nist_score INTEGER NOT NULL,
			iso27001_score INTEGER NOT NULL,
			nessus_score INTEGER NOT NULL,
			openvas_score INTEGER NOT NULL,
			analyzed_at TIMESTAMP NOT NULL,
			processing_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_risk ON analyses(risk_level, analyzed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_classification ON analyses(classification)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize SQLite schema: %w", err)
		}
	}

	return &SQLiteStore{sqlStore: sqlStore{db: db, logger: logger}}, nil
}
