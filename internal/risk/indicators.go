package risk

import (
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// ExtractIndicators maps every matched pattern across all six frameworks
// into the coarse indicator taxonomy. Severity comes from the score of
// the framework that produced the pattern. Output preserves encounter
// order (canonical framework order, then pattern order) and duplicates
// are kept.
func ExtractIndicators(results core.FrameworkResultSet) []core.Indicator {
	ordered := []core.FrameworkResult{
		results.MLClassifier,
		results.OWASP,
		results.NIST,
		results.ISO27001,
		results.Nessus,
		results.OpenVAS,
	}

	indicators := []core.Indicator{}
	for _, result := range ordered {
		severity := severityForScore(result.Score)
		for _, pattern := range result.Patterns {
			indicators = append(indicators, core.Indicator{
				Type:        categorizePattern(pattern),
				Description: pattern,
				Severity:    severity,
			})
		}
	}
	return indicators
}

// severityForScore grades by the producing framework's score
func severityForScore(score int) core.Severity {
	switch {
	case score >= 70:
		return core.SeverityHigh
	case score >= 40:
		return core.SeverityMedium
	default:
		return core.SeverityLow
	}
}

// categorizePattern assigns an indicator type by substring match on the
// pattern text. Rules are checked in a fixed order and the first match
// wins.
func categorizePattern(pattern string) core.IndicatorType {
	p := strings.ToLower(pattern)
	switch {
	case strings.Contains(p, "urgent") || strings.Contains(p, "immediate"):
		return core.IndicatorUrgency
	case strings.Contains(p, "url") || strings.Contains(p, "link"):
		return core.IndicatorSuspiciousLink
	case strings.Contains(p, "spoof") || strings.Contains(p, "domain"):
		return core.IndicatorSpoofing
	case strings.Contains(p, "password") || strings.Contains(p, "credential"):
		return core.IndicatorCredentialRequest
	case strings.Contains(p, "grammar") || strings.Contains(p, "spelling"):
		return core.IndicatorGrammarError
	case strings.Contains(p, "dmarc") || strings.Contains(p, "spf") || strings.Contains(p, "dkim"):
		return core.IndicatorAuthority
	default:
		return core.IndicatorOther
	}
}
