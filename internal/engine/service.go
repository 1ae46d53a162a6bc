package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/analyzers"
	"github.com/hollis/phishguard/internal/core"
	"github.com/hollis/phishguard/internal/risk"
	"github.com/hollis/phishguard/internal/whitelist"
)

// Service runs the full analysis pipeline for one email: all six
// framework analyzers, risk aggregation, indicator extraction and
// narrative generation. All collaborators are injected; the service
// holds no global state and is safe for concurrent use.
type Service struct {
	narrative        core.NarrativeGenerator
	aggregator       *risk.Aggregator
	trusted          *whitelist.Checker
	logger           *zap.Logger
	narrativeTimeout time.Duration
	batchWorkers     int
}

// NewService creates an analysis service. The narrative generator may be
// nil, in which case every record carries the fallback narrative. The
// narrative timeout is deliberately its own knob: generation is far
// slower than an ordinary network call.
func NewService(
	narrative core.NarrativeGenerator,
	aggregator *risk.Aggregator,
	trusted *whitelist.Checker,
	logger *zap.Logger,
	narrativeTimeout time.Duration,
	batchWorkers int,
) *Service {
	if narrativeTimeout <= 0 {
		narrativeTimeout = 60 * time.Second
	}
	if batchWorkers <= 0 {
		batchWorkers = 4
	}
	return &Service{
		narrative:        narrative,
		aggregator:       aggregator,
		trusted:          trusted,
		logger:           logger,
		narrativeTimeout: narrativeTimeout,
		batchWorkers:     batchWorkers,
	}
}

// Analyze runs the pipeline over one email and assembles the analysis
// record. The only failure it can return is ErrMalformedInput; a failed
// narrative call degrades to the deterministic fallback instead.
func (s *Service) Analyze(ctx context.Context, email *core.EmailInput) (*core.AnalysisRecord, error) {
	start := time.Now()

	if email == nil {
		return nil, core.ErrMalformedInput
	}

	results, err := analyzers.RunAll(email)
	if err != nil {
		return nil, err
	}

	assessment := s.aggregator.Assess(results)
	indicators := risk.ExtractIndicators(results)
	narrative := s.explainOrFallback(ctx, email, results)

	record := &core.AnalysisRecord{
		ID:               uuid.NewString(),
		EmailID:          email.SourceID,
		Risk:             assessment,
		Frameworks:       results,
		Indicators:       indicators,
		Narrative:        narrative,
		AnalyzedAt:       time.Now().UTC(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	s.logger.Info("Email analyzed",
		zap.String("analysis_id", record.ID),
		zap.String("sender", email.From.Address),
		zap.String("risk_level", string(assessment.RiskLevel)),
		zap.Float64("confidence", assessment.Confidence),
		zap.Int64("processing_ms", record.ProcessingTimeMs))

	return record, nil
}

// explainOrFallback requests narrative commentary with a bounded-time
// single attempt. Trusted senders skip the generation call entirely.
func (s *Service) explainOrFallback(ctx context.Context, email *core.EmailInput, results core.FrameworkResultSet) core.Narrative {
	if s.trusted != nil && s.trusted.IsTrusted(email.From.Address) {
		s.logger.Debug("Skipping narrative for trusted sender",
			zap.String("sender", email.From.Address))
		return core.TrustedSenderNarrative()
	}

	if s.narrative == nil {
		return core.FallbackNarrative()
	}

	genCtx, cancel := context.WithTimeout(ctx, s.narrativeTimeout)
	defer cancel()

	started := time.Now()
	narrative, err := s.narrative.Explain(genCtx, email, results)
	if err != nil {
		s.logger.Warn("Narrative generation failed, using fallback",
			zap.String("sender", email.From.Address),
			zap.Error(err))
		fallback := core.FallbackNarrative()
		fallback.GenerationTimeMs = time.Since(started).Milliseconds()
		return fallback
	}
	narrative.GenerationTimeMs = time.Since(started).Milliseconds()
	return *narrative
}

// BatchResult pairs one batch entry with its outcome
type BatchResult struct {
	Index  int
	Record *core.AnalysisRecord
	Err    error
}

// AnalyzeBatch runs the pipeline over many emails with a bounded worker
// pool. Entries are independent; results carry the input index since no
// ordering is guaranteed between completions.
func (s *Service) AnalyzeBatch(ctx context.Context, emails []*core.EmailInput) []BatchResult {
	jobs := make(chan int)
	results := make([]BatchResult, len(emails))

	var wg sync.WaitGroup
	for w := 0; w < s.batchWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				record, err := s.Analyze(ctx, emails[i])
				results[i] = BatchResult{Index: i, Record: record, Err: err}
			}
		}()
	}

	for i := range emails {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
