package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/core"
)

func newStore() *MemoryStore {
	return NewMemoryStore(zap.NewNop())
}

func sampleEmail(sourceID string) *core.EmailInput {
	return &core.EmailInput{
		SourceID: sourceID,
		Subject:  "Hello",
		From:     core.Address{Address: "sender@example.com"},
		Body:     core.Body{Text: "body"},
	}
}

func sampleAnalysis(emailID string, level core.RiskLevel, class core.Classification, analyzedAt time.Time) *core.AnalysisRecord {
	return &core.AnalysisRecord{
		ID:      uuid.NewString(),
		EmailID: emailID,
		Risk: core.RiskAssessment{
			RiskLevel:      level,
			Classification: class,
			IsPhishing:     level != core.RiskLow,
			Confidence:     0.9,
		},
		AnalyzedAt: analyzedAt,
	}
}

func TestMemoryStore_SaveAndGetEmail(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	stored, err := store.SaveEmail(ctx, sampleEmail("src-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.Analyzed)

	got, err := store.GetEmail(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "src-1", got.Email.SourceID)

	bySource, err := store.GetEmailBySourceID(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, bySource.ID)

	_, err = store.GetEmail(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore_SaveEmail_DedupeBySourceID(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	first, err := store.SaveEmail(ctx, sampleEmail("src-1"))
	require.NoError(t, err)
	second, err := store.SaveEmail(ctx, sampleEmail("src-1"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	_, total, err := store.ListEmails(ctx, nil, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestMemoryStore_ListEmails_AnalyzedFilter(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	a, _ := store.SaveEmail(ctx, sampleEmail("src-a"))
	b, _ := store.SaveEmail(ctx, sampleEmail("src-b"))
	require.NoError(t, store.MarkAnalyzed(ctx, a.ID, "analysis-1"))

	pending := false
	emails, total, err := store.ListEmails(ctx, &pending, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, b.ID, emails[0].ID)

	done := true
	emails, total, err = store.ListEmails(ctx, &done, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, a.ID, emails[0].ID)
	assert.Equal(t, "analysis-1", emails[0].AnalysisID)
}

func TestMemoryStore_MarkAndClearAnalyzed(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	stored, _ := store.SaveEmail(ctx, sampleEmail("src-1"))
	require.NoError(t, store.MarkAnalyzed(ctx, stored.ID, "analysis-1"))

	got, _ := store.GetEmail(ctx, stored.ID)
	assert.True(t, got.Analyzed)

	require.NoError(t, store.ClearAnalyzed(ctx, stored.ID))
	got, _ = store.GetEmail(ctx, stored.ID)
	assert.False(t, got.Analyzed)
	assert.Empty(t, got.AnalysisID)

	assert.ErrorIs(t, store.MarkAnalyzed(ctx, "missing", "x"), core.ErrNotFound)
	assert.ErrorIs(t, store.ClearAnalyzed(ctx, "missing"), core.ErrNotFound)
}

func TestMemoryStore_AnalysisRoundTrip(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	record := sampleAnalysis("email-1", core.RiskHigh, core.TruePositive, time.Now())
	require.NoError(t, store.SaveAnalysis(ctx, record))

	got, err := store.GetAnalysis(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.EmailID, got.EmailID)

	require.NoError(t, store.DeleteAnalysis(ctx, record.ID))
	_, err = store.GetAnalysis(ctx, record.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.ErrorIs(t, store.DeleteAnalysis(ctx, record.ID), core.ErrNotFound)
}

func TestMemoryStore_ListAnalyses_FilterAndOrder(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	base := time.Now()

	older := sampleAnalysis("e1", core.RiskHigh, core.TruePositive, base.Add(-2*time.Hour))
	newer := sampleAnalysis("e2", core.RiskHigh, core.TruePositive, base.Add(-1*time.Hour))
	low := sampleAnalysis("e3", core.RiskLow, core.TrueNegative, base)

	require.NoError(t, store.SaveAnalysis(ctx, older))
	require.NoError(t, store.SaveAnalysis(ctx, newer))
	require.NoError(t, store.SaveAnalysis(ctx, low))

	records, total, err := store.ListAnalyses(ctx, core.AnalysisFilter{RiskLevel: core.RiskHigh}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, newer.ID, records[0].ID, "newest first")
	assert.Equal(t, older.ID, records[1].ID)

	records, total, err = store.ListAnalyses(ctx, core.AnalysisFilter{Classification: core.TrueNegative}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, low.ID, records[0].ID)

	// pagination keeps the full total
	records, total, err = store.ListAnalyses(ctx, core.AnalysisFilter{}, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, records, 2)
}

func TestMemoryStore_RecentAnalyses(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		record := sampleAnalysis("e", core.RiskLow, core.TrueNegative, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.SaveAnalysis(ctx, record))
	}

	records, err := store.RecentAnalyses(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].AnalyzedAt.After(records[1].AnalyzedAt))
	assert.True(t, records[1].AnalyzedAt.After(records[2].AnalyzedAt))
}

func TestMemoryStore_Statistics(t *testing.T) {
	store := newStore()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.SaveAnalysis(ctx, sampleAnalysis("e1", core.RiskHigh, core.TruePositive, now)))
	require.NoError(t, store.SaveAnalysis(ctx, sampleAnalysis("e2", core.RiskHigh, core.TruePositive, now)))
	require.NoError(t, store.SaveAnalysis(ctx, sampleAnalysis("e3", core.RiskLow, core.TrueNegative, now)))
	require.NoError(t, store.SaveAnalysis(ctx, sampleAnalysis("e4", core.RiskMedium, core.FalsePositive, now)))

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.RiskDistribution["high"])
	assert.Equal(t, 1, stats.RiskDistribution["medium"])
	assert.Equal(t, 1, stats.RiskDistribution["low"])
	assert.Equal(t, 2, stats.Classifications["tp"])
	assert.Equal(t, 1, stats.Classifications["fp"])

	// accuracy = (tp+tn)/total, precision = tp/(tp+fp), recall = tp/(tp+fn)
	assert.InDelta(t, 75.0, stats.Accuracy, 0.001)
	assert.InDelta(t, 66.667, stats.Precision, 0.01)
	assert.InDelta(t, 100.0, stats.Recall, 0.001)
	assert.InDelta(t, 80.0, stats.F1Score, 0.001)
}

func TestMemoryStore_Statistics_Empty(t *testing.T) {
	stats, err := newStore().Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Total)
	assert.Zero(t, stats.Accuracy)
	assert.Zero(t, stats.Precision)
	assert.Zero(t, stats.F1Score)
	for _, key := range frameworkKeys {
		assert.Zero(t, stats.FrameworkAverages[key])
	}
}

func TestBuildStatistics_F1(t *testing.T) {
	counts := classificationCounts{tp: 8, tn: 5, fp: 2, fn: 1}
	stats := buildStatistics(counts, map[string]int{}, map[string]float64{})

	assert.Equal(t, 16, stats.Total)
	assert.InDelta(t, 81.25, stats.Accuracy, 0.001)
	assert.InDelta(t, 80.0, stats.Precision, 0.001)
	assert.InDelta(t, 88.889, stats.Recall, 0.01)
	// harmonic mean of precision and recall
	assert.InDelta(t, 84.211, stats.F1Score, 0.01)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, paginate(items, 0, 2))
	assert.Equal(t, []int{3, 4}, paginate(items, 2, 2))
	assert.Equal(t, []int{5}, paginate(items, 4, 2))
	assert.Empty(t, paginate(items, 5, 2))
	assert.Equal(t, items, paginate(items, 0, 0))
}
