package analyzers

import (
	"fmt"
	"regexp"

	"github.com/hollis/phishguard/internal/core"
)

// owaspChecks is the fixed rule count for the injection/redirect analyzer
const owaspChecks = 8

var (
	xssPattern      = regexp.MustCompile(`(?i)<script|javascript:|onerror=`)
	sqlPattern      = regexp.MustCompile(`(?i)'|--|;|union|select|drop`)
	htmlFormPattern = regexp.MustCompile(`(?i)<form|<input`)
)

// OWASPAnalyzer inspects emails for web-injection and redirect abuse:
// script markup, SQL metacharacters, redirect URLs and embedded forms
type OWASPAnalyzer struct{}

// NewOWASPAnalyzer creates the injection/redirect analyzer
func NewOWASPAnalyzer() *OWASPAnalyzer {
	return &OWASPAnalyzer{}
}

// Name returns the framework name
func (a *OWASPAnalyzer) Name() string { return "OWASP" }

// Analyze scans the body for injection tokens and redirect-shaped URLs
func (a *OWASPAnalyzer) Analyze(email *core.EmailInput) core.FrameworkResult {
	text := email.Body.Text
	patterns := []string{}
	evidence := []string{}

	if xssPattern.MatchString(text) {
		patterns = append(patterns, "XSS attempt detected")
		evidence = append(evidence, "Script tags or JavaScript protocol found in email")
	}

	if sqlPattern.MatchString(text) {
		patterns = append(patterns, "SQL injection patterns detected")
		evidence = append(evidence, "SQL keywords found in email content")
	}

	for _, url := range extractURLs(text) {
		if containsAny(url, []string{"redirect", "%2F"}) {
			patterns = append(patterns, "Malicious redirect detected")
			evidence = append(evidence, fmt.Sprintf("Suspicious redirect URL: %s", url))
		}
	}

	if htmlFormPattern.MatchString(text) {
		patterns = append(patterns, "HTML form detected")
		evidence = append(evidence, "Email contains HTML form elements")
	}

	return core.FrameworkResult{
		Score:    scoreFromPatterns(patterns, owaspChecks),
		Patterns: patterns,
		Evidence: evidence,
	}
}
