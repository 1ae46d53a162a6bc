package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore persists emails and analyses in a MySQL database
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore opens (and if needed initializes) a MySQL store. The DSN
// must enable parseTime so TIMESTAMP columns scan into time.Time.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS emails (
			id VARCHAR(36) PRIMARY KEY,
			source_id VARCHAR(255),
			payload MEDIUMTEXT NOT NULL,
			analyzed BOOLEAN NOT NULL DEFAULT FALSE,
			analysis_id VARCHAR(36) NOT NULL DEFAULT '',
			stored_at TIMESTAMP NOT NULL,
			UNIQUE KEY idx_emails_source_id (source_id)
		)`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id VARCHAR(36) PRIMARY KEY,
			email_id VARCHAR(255) NOT NULL,
			risk_level VARCHAR(8) NOT NULL,
			classification VARCHAR(2) NOT NULL,
			confidence DOUBLE NOT NULL,
			is_phishing BOOLEAN NOT NULL,
			payload MEDIUMTEXT NOT NULL,
			ml_score INT NOT NULL,
			owasp_score INT NOT NULL,
			nist_score INT NOT NULL,
			iso27001_score INT NOT NULL,
			nessus_score INT NOT NULL,
			openvas_score INT NOT NULL,
			analyzed_at TIMESTAMP NOT NULL,
			processing_ms BIGINT NOT NULL,
			KEY idx_analyses_risk (risk_level, analyzed_at),
			KEY idx_analyses_classification (classification)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize MySQL schema: %w", err)
		}
	}

	return &MySQLStore{sqlStore: sqlStore{db: db, logger: logger}}, nil
}
