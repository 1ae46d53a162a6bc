package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hollis/phishguard/internal/core"
)

func resultSet(scores [6]int) core.FrameworkResultSet {
	return core.FrameworkResultSet{
		MLClassifier: core.FrameworkResult{Score: scores[0]},
		OWASP:        core.FrameworkResult{Score: scores[1]},
		NIST:         core.FrameworkResult{Score: scores[2]},
		ISO27001:     core.FrameworkResult{Score: scores[3]},
		Nessus:       core.FrameworkResult{Score: scores[4]},
		OpenVAS:      core.FrameworkResult{Score: scores[5]},
	}
}

func TestAggregator_Assess(t *testing.T) {
	tests := []struct {
		name               string
		scores             [6]int
		expectedLevel      core.RiskLevel
		expectedClass      core.Classification
		expectedPhishing   bool
		expectedConfidence float64
	}{
		{
			name:               "all zero is low risk",
			scores:             [6]int{0, 0, 0, 0, 0, 0},
			expectedLevel:      core.RiskLow,
			expectedClass:      core.TrueNegative,
			expectedPhishing:   false,
			expectedConfidence: 0.90,
		},
		{
			name:               "all maxed is high risk",
			scores:             [6]int{100, 100, 100, 100, 100, 100},
			expectedLevel:      core.RiskHigh,
			expectedClass:      core.TruePositive,
			expectedPhishing:   true,
			expectedConfidence: 0.99,
		},
		{
			name:               "exactly at high threshold",
			scores:             [6]int{70, 70, 70, 70, 70, 70},
			expectedLevel:      core.RiskHigh,
			expectedClass:      core.TruePositive,
			expectedPhishing:   true,
			expectedConfidence: 0.85,
		},
		{
			name:               "exactly at medium threshold",
			scores:             [6]int{40, 40, 40, 40, 40, 40},
			expectedLevel:      core.RiskMedium,
			expectedClass:      core.TruePositive,
			expectedPhishing:   true,
			expectedConfidence: 0.60,
		},
		{
			name:               "just below medium threshold",
			scores:             [6]int{39, 39, 39, 39, 39, 39},
			expectedLevel:      core.RiskLow,
			expectedClass:      core.TrueNegative,
			expectedPhishing:   false,
			expectedConfidence: 0.71,
		},
		{
			name:               "medium band mixed scores",
			scores:             [6]int{60, 50, 43, 50, 60, 37},
			expectedLevel:      core.RiskMedium,
			expectedClass:      core.TruePositive,
			expectedPhishing:   true,
			expectedConfidence: 0.70,
		},
	}

	aggregator := NewAggregator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment := aggregator.Assess(resultSet(tt.scores))

			assert.Equal(t, tt.expectedLevel, assessment.RiskLevel)
			assert.Equal(t, tt.expectedClass, assessment.Classification)
			assert.Equal(t, tt.expectedPhishing, assessment.IsPhishing)
			assert.InDelta(t, tt.expectedConfidence, assessment.Confidence, 0.001)
		})
	}
}

func TestAggregator_ConfidenceBounds(t *testing.T) {
	aggregator := NewAggregator(nil)

	for avg := 0; avg <= 100; avg += 5 {
		assessment := aggregator.Assess(resultSet([6]int{avg, avg, avg, avg, avg, avg}))
		assert.GreaterOrEqual(t, assessment.Confidence, 0.0)
		assert.LessOrEqual(t, assessment.Confidence, 0.99)
	}
}

func TestAggregator_Deterministic(t *testing.T) {
	aggregator := NewAggregator(nil)
	set := resultSet([6]int{41, 38, 44, 40, 42, 39})

	first := aggregator.Assess(set)
	second := aggregator.Assess(set)
	assert.Equal(t, first, second)
}

func TestSampledReclassifyPolicy(t *testing.T) {
	// probability 1: every borderline verdict flips to a false positive
	always := NewAggregator(SampledReclassifyPolicy(42, 1.0))
	flipped := always.Assess(resultSet([6]int{40, 40, 40, 40, 40, 40}))
	assert.Equal(t, core.FalsePositive, flipped.Classification)
	assert.False(t, flipped.IsPhishing)
	assert.Equal(t, core.RiskMedium, flipped.RiskLevel)

	// probability 0: never flips
	never := NewAggregator(SampledReclassifyPolicy(42, 0.0))
	kept := never.Assess(resultSet([6]int{40, 40, 40, 40, 40, 40}))
	assert.Equal(t, core.TruePositive, kept.Classification)

	// outside the borderline band the policy does not apply
	outside := always.Assess(resultSet([6]int{80, 80, 80, 80, 80, 80}))
	assert.Equal(t, core.TruePositive, outside.Classification)
}

func TestSampledReclassifyPolicy_SeedRepeatable(t *testing.T) {
	set := resultSet([6]int{42, 42, 42, 42, 42, 42})

	run := func() []core.Classification {
		aggregator := NewAggregator(SampledReclassifyPolicy(7, 0.5))
		out := make([]core.Classification, 0, 20)
		for i := 0; i < 20; i++ {
			out = append(out, aggregator.Assess(set).Classification)
		}
		return out
	}

	assert.Equal(t, run(), run())
}
