package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/core"
)

// sqlStore implements the EmailStore and AnalysisStore ports over a SQL
// database. The SQLite and MySQL stores share it: both drivers use `?`
// placeholders, so only connection setup and schema DDL differ.
type sqlStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// emailRow is the persisted shape of a stored email
type emailRow struct {
	Email core.EmailInput `json:"email"`
}

// SaveEmail stores an email, deduplicating by capture-service source ID
func (s *sqlStore) SaveEmail(ctx context.Context, email *core.EmailInput) (*core.StoredEmail, error) {
	if email.SourceID != "" {
		existing, err := s.GetEmailBySourceID(ctx, email.SourceID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
	}

	payload, err := json.Marshal(emailRow{Email: *email})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email: %w", err)
	}

	stored := core.StoredEmail{
		ID:       uuid.NewString(),
		Email:    *email,
		StoredAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO emails (id, source_id, payload, analyzed, analysis_id, stored_at)
		VALUES (?, ?, ?, 0, '', ?)
	`, stored.ID, email.SourceID, string(payload), stored.StoredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert email: %w", err)
	}

	return &stored, nil
}

// GetEmail retrieves a stored email by ID
func (s *sqlStore) GetEmail(ctx context.Context, id string) (*core.StoredEmail, error) {
	return s.scanEmail(s.db.QueryRowContext(ctx, `
		SELECT id, payload, analyzed, analysis_id, stored_at
		FROM emails WHERE id = ?
	`, id))
}

// GetEmailBySourceID retrieves a stored email by its capture-service ID
func (s *sqlStore) GetEmailBySourceID(ctx context.Context, sourceID string) (*core.StoredEmail, error) {
	return s.scanEmail(s.db.QueryRowContext(ctx, `
		SELECT id, payload, analyzed, analysis_id, stored_at
		FROM emails WHERE source_id = ?
	`, sourceID))
}

func (s *sqlStore) scanEmail(row *sql.Row) (*core.StoredEmail, error) {
	var stored core.StoredEmail
	var payload string
	err := row.Scan(&stored.ID, &payload, &stored.Analyzed, &stored.AnalysisID, &stored.StoredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query email: %w", err)
	}

	var rowData emailRow
	if err := json.Unmarshal([]byte(payload), &rowData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal email payload: %w", err)
	}
	stored.Email = rowData.Email
	return &stored, nil
}

// ListEmails returns a page of stored emails, newest first
func (s *sqlStore) ListEmails(ctx context.Context, analyzed *bool, offset, limit int) ([]core.StoredEmail, int, error) {
	where := ""
	args := []interface{}{}
	if analyzed != nil {
		where = "WHERE analyzed = ?"
		args = append(args, *analyzed)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM emails "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count emails: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, payload, analyzed, analysis_id, stored_at
		FROM emails %s ORDER BY stored_at DESC LIMIT ? OFFSET ?
	`, where)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	emails := []core.StoredEmail{}
	for rows.Next() {
		var stored core.StoredEmail
		var payload string
		if err := rows.Scan(&stored.ID, &payload, &stored.Analyzed, &stored.AnalysisID, &stored.StoredAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan email row: %w", err)
		}
		var rowData emailRow
		if err := json.Unmarshal([]byte(payload), &rowData); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal email payload: %w", err)
		}
		stored.Email = rowData.Email
		emails = append(emails, stored)
	}
	return emails, total, rows.Err()
}

// MarkAnalyzed links an email to its analysis record
func (s *sqlStore) MarkAnalyzed(ctx context.Context, emailID, analysisID string) error {
	return s.updateAnalyzed(ctx, emailID, true, analysisID)
}

// ClearAnalyzed resets an email to the unanalyzed state
func (s *sqlStore) ClearAnalyzed(ctx context.Context, emailID string) error {
	return s.updateAnalyzed(ctx, emailID, false, "")
}

func (s *sqlStore) updateAnalyzed(ctx context.Context, emailID string, analyzed bool, analysisID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE emails SET analyzed = ?, analysis_id = ? WHERE id = ?
	`, analyzed, analysisID, emailID)
	if err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// SaveAnalysis stores an analysis record
func (s *sqlStore) SaveAnalysis(ctx context.Context, record *core.AnalysisRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	scores := record.Frameworks.Scores()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, email_id, risk_level, classification, confidence, is_phishing,
			payload, ml_score, owasp_score, nist_score, iso27001_score,
			nessus_score, openvas_score, analyzed_at, processing_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.EmailID, string(record.Risk.RiskLevel), string(record.Risk.Classification),
		record.Risk.Confidence, record.Risk.IsPhishing, string(payload),
		scores[0], scores[1], scores[2], scores[3], scores[4], scores[5],
		record.AnalyzedAt, record.ProcessingTimeMs)
	if err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// GetAnalysis retrieves an analysis record by ID
func (s *sqlStore) GetAnalysis(ctx context.Context, id string) (*core.AnalysisRecord, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM analyses WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}

	var record core.AnalysisRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
	}
	return &record, nil
}

// ListAnalyses returns a filtered page of analyses, newest first
func (s *sqlStore) ListAnalyses(ctx context.Context, filter core.AnalysisFilter, offset, limit int) ([]core.AnalysisRecord, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if filter.RiskLevel != "" {
		where += " AND risk_level = ?"
		args = append(args, string(filter.RiskLevel))
	}
	if filter.Classification != "" {
		where += " AND classification = ?"
		args = append(args, string(filter.Classification))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM analyses "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count analyses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT payload FROM analyses %s ORDER BY analyzed_at DESC LIMIT ? OFFSET ?
	`, where)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []core.AnalysisRecord{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, 0, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		var record core.AnalysisRecord
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal analysis payload: %w", err)
		}
		records = append(records, record)
	}
	return records, total, rows.Err()
}

// RecentAnalyses returns the most recent analyses, newest first
func (s *sqlStore) RecentAnalyses(ctx context.Context, limit int) ([]core.AnalysisRecord, error) {
	records, _, err := s.ListAnalyses(ctx, core.AnalysisFilter{}, 0, limit)
	return records, err
}

// DeleteAnalysis removes an analysis record
func (s *sqlStore) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Statistics computes aggregate accuracy metrics over all analyses
func (s *sqlStore) Statistics(ctx context.Context) (*core.Statistics, error) {
	var counts classificationCounts
	rows, err := s.db.QueryContext(ctx, `
		SELECT classification, COUNT(*) FROM analyses GROUP BY classification
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var classification string
		var count int
		if err := rows.Scan(&classification, &count); err != nil {
			return nil, err
		}
		for i := 0; i < count; i++ {
			counts.add(core.Classification(classification))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	riskCounts := map[string]int{"high": 0, "medium": 0, "low": 0}
	riskRows, err := s.db.QueryContext(ctx, `
		SELECT risk_level, COUNT(*) FROM analyses GROUP BY risk_level
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count risk levels: %w", err)
	}
	defer riskRows.Close()
	for riskRows.Next() {
		var level string
		var count int
		if err := riskRows.Scan(&level, &count); err != nil {
			return nil, err
		}
		switch core.RiskLevel(level) {
		case core.RiskHigh:
			riskCounts["high"] = count
		case core.RiskMedium:
			riskCounts["medium"] = count
		case core.RiskLow:
			riskCounts["low"] = count
		}
	}
	if err := riskRows.Err(); err != nil {
		return nil, err
	}

	averages := map[string]float64{}
	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(ml_score), 0), COALESCE(AVG(owasp_score), 0),
			COALESCE(AVG(nist_score), 0), COALESCE(AVG(iso27001_score), 0),
			COALESCE(AVG(nessus_score), 0), COALESCE(AVG(openvas_score), 0)
		FROM analyses
	`).Scan(
		avgDest(averages, "mlClassifier"), avgDest(averages, "owasp"),
		avgDest(averages, "nist"), avgDest(averages, "iso27001"),
		avgDest(averages, "nessus"), avgDest(averages, "openvas"))
	if err != nil {
		return nil, fmt.Errorf("failed to average framework scores: %w", err)
	}

	return buildStatistics(counts, riskCounts, averages), nil
}

// avgDest returns a Scan destination that writes into the averages map
func avgDest(averages map[string]float64, key string) *mapFloatDest {
	return &mapFloatDest{m: averages, key: key}
}

type mapFloatDest struct {
	m   map[string]float64
	key string
}

// Scan implements sql.Scanner
func (d *mapFloatDest) Scan(src interface{}) error {
	switch v := src.(type) {
	case float64:
		d.m[d.key] = v
	case int64:
		d.m[d.key] = float64(v)
	case []byte:
		var f float64
		if _, err := fmt.Sscanf(string(v), "%g", &f); err != nil {
			return err
		}
		d.m[d.key] = f
	case nil:
		d.m[d.key] = 0
	default:
		return fmt.Errorf("unsupported average type %T", src)
	}
	return nil
}

// Close closes the underlying database handle
func (s *sqlStore) Close() error {
	return s.db.Close()
}
