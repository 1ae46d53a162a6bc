package analyzers

import (
	"fmt"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// iso27001Checks is the fixed rule count for the data-handling analyzer
const iso27001Checks = 6

// ISO27001Analyzer looks for mishandling of sensitive data: requests for
// credentials or account details, unencrypted links and suggestions to
// bypass security procedure
type ISO27001Analyzer struct {
	sensitiveTerms []string
}

// NewISO27001Analyzer creates the data-handling analyzer
func NewISO27001Analyzer() *ISO27001Analyzer {
	return &ISO27001Analyzer{
		sensitiveTerms: []string{
			"password", "credit card", "ssn", "social security", "pin", "account number",
		},
	}
}

// Name returns the framework name
func (a *ISO27001Analyzer) Name() string { return "ISO/IEC 27001" }

// Analyze scans for sensitive-term requests and insecure transport.
// Each plain-HTTP URL pushes its own pattern occurrence, but the score
// denominator stays the fixed rule count.
func (a *ISO27001Analyzer) Analyze(email *core.EmailInput) core.FrameworkResult {
	text := subjectAndBody(email.Subject, email.Body.Text)
	patterns := []string{}
	evidence := []string{}

	for _, term := range a.sensitiveTerms {
		if strings.Contains(text, term) {
			patterns = append(patterns, "Sensitive data request detected")
			evidence = append(evidence, fmt.Sprintf("Request for sensitive information: %q", term))
		}
	}

	for _, url := range extractURLs(email.Body.Text) {
		if strings.HasPrefix(url, "http://") {
			patterns = append(patterns, "Unencrypted link detected")
			evidence = append(evidence, fmt.Sprintf("Insecure HTTP link: %s", url))
		}
	}

	if containsAny(text, []string{"bypass", "skip verification"}) {
		patterns = append(patterns, "Security policy violation")
		evidence = append(evidence, "Email suggests bypassing security procedures")
	}

	return core.FrameworkResult{
		Score:    scoreFromPatterns(patterns, iso27001Checks),
		Patterns: patterns,
		Evidence: evidence,
	}
}
