package storage

import (
	"github.com/hollis/phishguard/internal/core"
)

// buildStatistics derives the accuracy metrics from raw counts. The
// TP/TN/FP/FN labels come from each analysis's bookkeeping
// classification, so these are offline-evaluation numbers, not live
// detection quality.
func buildStatistics(counts classificationCounts, riskCounts map[string]int, frameworkAverages map[string]float64) *core.Statistics {
	total := counts.tp + counts.tn + counts.fp + counts.fn

	var accuracy, precision, recall, f1 float64
	if total > 0 {
		accuracy = float64(counts.tp+counts.tn) / float64(total) * 100
	}
	if counts.tp+counts.fp > 0 {
		precision = float64(counts.tp) / float64(counts.tp+counts.fp) * 100
	}
	if counts.tp+counts.fn > 0 {
		recall = float64(counts.tp) / float64(counts.tp+counts.fn) * 100
	}
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}

	return &core.Statistics{
		Total:            total,
		RiskDistribution: riskCounts,
		Classifications: map[string]int{
			"tp": counts.tp,
			"tn": counts.tn,
			"fp": counts.fp,
			"fn": counts.fn,
		},
		Accuracy:          accuracy,
		Precision:         precision,
		Recall:            recall,
		F1Score:           f1,
		FrameworkAverages: frameworkAverages,
	}
}

type classificationCounts struct {
	tp, tn, fp, fn int
}

func (c *classificationCounts) add(classification core.Classification) {
	switch classification {
	case core.TruePositive:
		c.tp++
	case core.TrueNegative:
		c.tn++
	case core.FalsePositive:
		c.fp++
	case core.FalseNegative:
		c.fn++
	}
}

// frameworkKeys is the canonical key order used in statistics maps
var frameworkKeys = []string{"mlClassifier", "owasp", "nist", "iso27001", "nessus", "openvas"}
