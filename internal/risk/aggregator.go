package risk

import (
	"math/rand"

	"github.com/hollis/phishguard/internal/core"
)

// Tier thresholds over the mean of the six framework scores
const (
	highRiskThreshold   = 70.0
	mediumRiskThreshold = 40.0
)

// Borderline band in which an assessment may be relabeled by policy
const (
	borderlineLow  = 35.0
	borderlineHigh = 45.0
)

// ReclassifyPolicy can relabel a borderline assessment (mean score in
// [35, 45]) after tiering. The default is IdentityPolicy: the verdict is
// a deterministic function of the scores. SampledReclassifyPolicy exists
// only to reproduce historical demo datasets and must not be used where
// reproducibility matters.
type ReclassifyPolicy func(avg float64, assessment core.RiskAssessment) core.RiskAssessment

// IdentityPolicy performs no relabeling
func IdentityPolicy(_ float64, assessment core.RiskAssessment) core.RiskAssessment {
	return assessment
}

// SampledReclassifyPolicy relabels borderline verdicts as false positives
// with the given probability, driven by a seeded source so runs are
// repeatable. It mimics the synthetic false-positive variety of the
// system this engine was ported from.
func SampledReclassifyPolicy(seed int64, probability float64) ReclassifyPolicy {
	rng := rand.New(rand.NewSource(seed))
	return func(avg float64, assessment core.RiskAssessment) core.RiskAssessment {
		if avg < borderlineLow || avg > borderlineHigh {
			return assessment
		}
		if rng.Float64() < probability {
			assessment.Classification = core.FalsePositive
			assessment.IsPhishing = false
		}
		return assessment
	}
}

// Aggregator reduces a full framework result set to a single risk verdict
type Aggregator struct {
	policy ReclassifyPolicy
}

// NewAggregator creates an aggregator. A nil policy means no borderline
// relabeling.
func NewAggregator(policy ReclassifyPolicy) *Aggregator {
	if policy == nil {
		policy = IdentityPolicy
	}
	return &Aggregator{policy: policy}
}

// Assess computes the risk tier, confidence, phishing verdict and
// bookkeeping classification from the unweighted mean of the six scores
func (a *Aggregator) Assess(results core.FrameworkResultSet) core.RiskAssessment {
	avg := results.AverageScore()

	var assessment core.RiskAssessment
	switch {
	case avg >= highRiskThreshold:
		assessment = core.RiskAssessment{
			RiskLevel:      core.RiskHigh,
			Confidence:     0.85 + (avg-highRiskThreshold)/100,
			IsPhishing:     true,
			Classification: core.TruePositive,
		}
	case avg >= mediumRiskThreshold:
		assessment = core.RiskAssessment{
			RiskLevel:      core.RiskMedium,
			Confidence:     0.60 + (avg-mediumRiskThreshold)/100,
			IsPhishing:     true,
			Classification: core.TruePositive,
		}
	default:
		// The legitimate-mail confidence peaks at 0.90: a mean of zero
		// means every framework agreed, not certainty
		assessment = core.RiskAssessment{
			RiskLevel:      core.RiskLow,
			Confidence:     clamp(0.80+(30-avg)/100, 0, 0.90),
			IsPhishing:     false,
			Classification: core.TrueNegative,
		}
	}

	assessment.Confidence = clamp(assessment.Confidence, 0, 0.99)
	return a.policy(avg, assessment)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
