// Package narrative holds the prompt and reply grammar shared by every
// narrative provider: the deterministic analysis prompt, and the parser
// for the three-section reply format it asks the model to produce.
package narrative

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hollis/phishguard/internal/core"
)

// promptBodyLimit is how much of the email body is embedded in the prompt
const promptBodyLimit = 1000

const promptFormat = `You are a cybersecurity expert analyzing an email for phishing threats.

EMAIL DETAILS:
Subject: %s
From: %s
Body: %s

DETECTION FRAMEWORK RESULTS:
- ML Classifier: %d%% (Patterns: %s)
- OWASP: %d%% (Patterns: %s)
- NIST CSF: %d%% (Patterns: %s)
- ISO/IEC 27001: %d%% (Patterns: %s)
- Nessus: %d%% (Patterns: %s)
- OpenVAS: %d%% (Patterns: %s)

Average Detection Score: %.1f%%
Preliminary Risk Level: %s

AUTHENTICATION:
- DMARC: %s
- SPF: %s
- DKIM: %s

TASK:
Analyze this email and provide:
1. SUMMARY: A 2-3 sentence assessment of whether this is phishing
2. REASONING: Explain why based on the framework results and email content
3. RECOMMENDATIONS: List 3-5 specific actions (e.g., "Delete immediately", "Report to IT", "Verify sender")

Format your response as:
SUMMARY: [your summary]
REASONING: [your reasoning]
RECOMMENDATIONS: [numbered list]`

// BuildPrompt renders the deterministic analysis prompt from the email
// and framework results. The preliminary tier shown here is display-only
// and recomputed with the same thresholds the aggregator uses; it never
// replaces the aggregator's own assessment.
func BuildPrompt(email *core.EmailInput, results core.FrameworkResultSet) string {
	avg := results.AverageScore()
	auth := email.Authentication.Normalized()

	return fmt.Sprintf(promptFormat,
		email.Subject,
		email.From.Address,
		truncateUTF8(email.Body.Text, promptBodyLimit),
		results.MLClassifier.Score, joinPatterns(results.MLClassifier.Patterns),
		results.OWASP.Score, joinPatterns(results.OWASP.Patterns),
		results.NIST.Score, joinPatterns(results.NIST.Patterns),
		results.ISO27001.Score, joinPatterns(results.ISO27001.Patterns),
		results.Nessus.Score, joinPatterns(results.Nessus.Patterns),
		results.OpenVAS.Score, joinPatterns(results.OpenVAS.Patterns),
		avg,
		preliminaryRiskLevel(avg),
		auth.DMARC,
		auth.SPF,
		auth.DKIM,
	)
}

// preliminaryRiskLevel mirrors the aggregator's tier thresholds for
// prompt display
func preliminaryRiskLevel(avg float64) core.RiskLevel {
	switch {
	case avg >= 70:
		return core.RiskHigh
	case avg >= 40:
		return core.RiskMedium
	default:
		return core.RiskLow
	}
}

func joinPatterns(patterns []string) string {
	if len(patterns) == 0 {
		return "none"
	}
	return strings.Join(patterns, ", ")
}

// truncateUTF8 cuts text at the byte limit without splitting a rune
func truncateUTF8(text string, maxBytes int) string {
	if maxBytes <= 0 || len(text) <= maxBytes {
		return text
	}
	truncated := text[:maxBytes]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}
