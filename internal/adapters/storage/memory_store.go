package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/core"
)

// MemoryStore is an in-memory implementation of the EmailStore and
// AnalysisStore ports, suitable for tests and single-process runs
type MemoryStore struct {
	mu       sync.RWMutex
	emails   map[string]core.StoredEmail
	analyses map[string]core.AnalysisRecord
	logger   *zap.Logger
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		emails:   make(map[string]core.StoredEmail),
		analyses: make(map[string]core.AnalysisRecord),
		logger:   logger,
	}
}

// SaveEmail stores an email, deduplicating by capture-service source ID
func (s *MemoryStore) SaveEmail(_ context.Context, email *core.EmailInput) (*core.StoredEmail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if email.SourceID != "" {
		for _, existing := range s.emails {
			if existing.Email.SourceID == email.SourceID {
				copy := existing
				return &copy, nil
			}
		}
	}

	stored := core.StoredEmail{
		ID:       uuid.NewString(),
		Email:    *email,
		StoredAt: time.Now().UTC(),
	}
	s.emails[stored.ID] = stored
	return &stored, nil
}

// GetEmail retrieves a stored email by ID
func (s *MemoryStore) GetEmail(_ context.Context, id string) (*core.StoredEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.emails[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &stored, nil
}

// GetEmailBySourceID retrieves a stored email by its capture-service ID
func (s *MemoryStore) GetEmailBySourceID(_ context.Context, sourceID string) (*core.StoredEmail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, stored := range s.emails {
		if stored.Email.SourceID == sourceID {
			copy := stored
			return &copy, nil
		}
	}
	return nil, core.ErrNotFound
}

// ListEmails returns a page of stored emails, newest first
func (s *MemoryStore) ListEmails(_ context.Context, analyzed *bool, offset, limit int) ([]core.StoredEmail, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]core.StoredEmail, 0, len(s.emails))
	for _, stored := range s.emails {
		if analyzed != nil && stored.Analyzed != *analyzed {
			continue
		}
		matched = append(matched, stored)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].StoredAt.After(matched[j].StoredAt)
	})

	total := len(matched)
	return paginate(matched, offset, limit), total, nil
}

// MarkAnalyzed links an email to its analysis record
func (s *MemoryStore) MarkAnalyzed(_ context.Context, emailID, analysisID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.emails[emailID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Analyzed = true
	stored.AnalysisID = analysisID
	s.emails[emailID] = stored
	return nil
}

// ClearAnalyzed resets an email to the unanalyzed state
func (s *MemoryStore) ClearAnalyzed(_ context.Context, emailID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.emails[emailID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Analyzed = false
	stored.AnalysisID = ""
	s.emails[emailID] = stored
	return nil
}

// SaveAnalysis stores an analysis record
func (s *MemoryStore) SaveAnalysis(_ context.Context, record *core.AnalysisRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyses[record.ID] = *record
	return nil
}

// GetAnalysis retrieves an analysis record by ID
func (s *MemoryStore) GetAnalysis(_ context.Context, id string) (*core.AnalysisRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.analyses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &record, nil
}

// ListAnalyses returns a filtered page of analyses, newest first
func (s *MemoryStore) ListAnalyses(_ context.Context, filter core.AnalysisFilter, offset, limit int) ([]core.AnalysisRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]core.AnalysisRecord, 0, len(s.analyses))
	for _, record := range s.analyses {
		if filter.RiskLevel != "" && record.Risk.RiskLevel != filter.RiskLevel {
			continue
		}
		if filter.Classification != "" && record.Risk.Classification != filter.Classification {
			continue
		}
		matched = append(matched, record)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].AnalyzedAt.After(matched[j].AnalyzedAt)
	})

	total := len(matched)
	return paginate(matched, offset, limit), total, nil
}

// RecentAnalyses returns the most recent analyses, newest first
func (s *MemoryStore) RecentAnalyses(ctx context.Context, limit int) ([]core.AnalysisRecord, error) {
	records, _, err := s.ListAnalyses(ctx, core.AnalysisFilter{}, 0, limit)
	return records, err
}

// DeleteAnalysis removes an analysis record
func (s *MemoryStore) DeleteAnalysis(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.analyses[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.analyses, id)
	return nil
}

// Statistics computes aggregate accuracy metrics over all analyses
func (s *MemoryStore) Statistics(_ context.Context) (*core.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var counts classificationCounts
	riskCounts := map[string]int{"high": 0, "medium": 0, "low": 0}
	scoreSums := make(map[string]int, len(frameworkKeys))

	for _, record := range s.analyses {
		counts.add(record.Risk.Classification)

		switch record.Risk.RiskLevel {
		case core.RiskHigh:
			riskCounts["high"]++
		case core.RiskMedium:
			riskCounts["medium"]++
		case core.RiskLow:
			riskCounts["low"]++
		}

		scores := record.Frameworks.Scores()
		for i, key := range frameworkKeys {
			scoreSums[key] += scores[i]
		}
	}

	averages := make(map[string]float64, len(frameworkKeys))
	n := len(s.analyses)
	if n == 0 {
		n = 1
	}
	for _, key := range frameworkKeys {
		averages[key] = float64(scoreSums[key]) / float64(n)
	}

	return buildStatistics(counts, riskCounts, averages), nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
