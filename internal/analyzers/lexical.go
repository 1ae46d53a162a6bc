package analyzers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// mlClassifierChecks is the fixed rule count for the lexical analyzer
const mlClassifierChecks = 10

var (
	ipHostPattern       = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	disposableTLDInURL  = regexp.MustCompile(`[a-z0-9-]+\.(tk|ml|ga|cf|gq)`)
	phishingDomainToken = regexp.MustCompile(`-verify|-secure|-login|-account`)
	capsRunPattern      = regexp.MustCompile(`[A-Z]{2,}`)
	punctRunPattern     = regexp.MustCompile(`[!?]{2,}`)
)

// MLClassifierAnalyzer is the lexical/behavioral analyzer. Despite the
// name it is a fixed keyword and URL heuristic, not a trained model; it
// scores the same way as the other five frameworks.
type MLClassifierAnalyzer struct {
	keywords []string
}

// NewMLClassifierAnalyzer creates the lexical/behavioral analyzer
func NewMLClassifierAnalyzer() *MLClassifierAnalyzer {
	return &MLClassifierAnalyzer{
		keywords: []string{
			"urgent", "verify", "suspended", "locked", "confirm", "click here",
			"account", "security", "update", "immediately", "expire", "limited time",
		},
	}
}

// Name returns the framework name
func (a *MLClassifierAnalyzer) Name() string { return "ML Classifier" }

// Analyze scans for urgency/credential-lure keywords, suspicious URLs
// and grammar anomalies
func (a *MLClassifierAnalyzer) Analyze(email *core.EmailInput) core.FrameworkResult {
	text := subjectAndBody(email.Subject, email.Body.Text)
	patterns := []string{}
	evidence := []string{}

	for _, keyword := range a.keywords {
		if !strings.Contains(text, keyword) {
			continue
		}
		patterns = append(patterns, fmt.Sprintf("Urgency keyword: %q", keyword))
		evidence = append(evidence, fmt.Sprintf("Found %q in context: %q", keyword, keywordContext(text, keyword, 50)))
	}

	for _, url := range extractURLs(email.Body.Text) {
		if isSuspiciousURL(url) {
			patterns = append(patterns, "Suspicious URL detected")
			evidence = append(evidence, fmt.Sprintf("Suspicious URL: %s", url))
		}
	}

	raw := email.Subject + " " + email.Body.Text
	if hasGrammarErrors(raw) {
		patterns = append(patterns, "Grammar/spelling errors detected")
		evidence = append(evidence, "Multiple grammar or spelling errors found")
	}

	return core.FrameworkResult{
		Score:    scoreFromPatterns(patterns, mlClassifierChecks),
		Patterns: patterns,
		Evidence: evidence,
	}
}

// isSuspiciousURL flags URLs with a dotted-quad host, a disposable TLD,
// phishing keywords as hyphenated domain components, or an embedded @
func isSuspiciousURL(url string) bool {
	return ipHostPattern.MatchString(url) ||
		disposableTLDInURL.MatchString(url) ||
		phishingDomainToken.MatchString(url) ||
		containsAny(url, []string{"@"})
}

// hasGrammarErrors counts runs of consecutive capitals and of repeated
// !/? punctuation; more than 3 caps runs or 2 punctuation runs trips it
func hasGrammarErrors(text string) bool {
	capsRuns := len(capsRunPattern.FindAllString(text, -1))
	punctRuns := len(punctRunPattern.FindAllString(text, -1))
	return capsRuns > 3 || punctRuns > 2
}
