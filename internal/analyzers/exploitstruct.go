package analyzers

import (
	"fmt"
	"regexp"

	"github.com/hollis/phishguard/internal/core"
)

// openVASChecks is the fixed rule count for the exploit-structure analyzer
const openVASChecks = 5

// extensionToken matches extension-looking substrings in running text,
// e.g. a body that talks about an ".exe" without attaching one
var extensionToken = regexp.MustCompile(`\.[a-z]{2,4}\b`)

// mentionedDangerousExtensions is the subset of dangerous extensions the
// running-text scan looks for
var mentionedDangerousExtensions = map[string]bool{
	".exe": true, ".scr": true, ".bat": true, ".vbs": true,
}

// exploitURLMaxLen is the URL length beyond which a link is treated as an
// exploit attempt
const exploitURLMaxLen = 200

// OpenVASAnalyzer looks at structural exploit signals: the classic
// new/update/urgent lure combination, executable types mentioned in
// prose and URLs shaped like exploit payloads
type OpenVASAnalyzer struct{}

// NewOpenVASAnalyzer creates the exploit-structure analyzer
func NewOpenVASAnalyzer() *OpenVASAnalyzer {
	return &OpenVASAnalyzer{}
}

// Name returns the framework name
func (a *OpenVASAnalyzer) Name() string { return "OpenVAS" }

// Analyze scans for zero-day lure phrasing, mentioned executable types
// and malformed exploit URLs
func (a *OpenVASAnalyzer) Analyze(email *core.EmailInput) core.FrameworkResult {
	text := subjectAndBody(email.Subject, email.Body.Text)
	patterns := []string{}
	evidence := []string{}

	if containsAny(text, []string{"new"}) && containsAny(text, []string{"update"}) && containsAny(text, []string{"urgent"}) {
		patterns = append(patterns, "Zero-day threat indicators")
		evidence = append(evidence, "Combination of urgency and update request detected")
	}

	for _, ext := range extensionToken.FindAllString(text, -1) {
		if mentionedDangerousExtensions[ext] {
			patterns = append(patterns, "Suspicious file type mentioned")
			evidence = append(evidence, fmt.Sprintf("Executable file type mentioned: %s", ext))
		}
	}

	for _, url := range extractURLs(email.Body.Text) {
		if isExploitURL(url) {
			patterns = append(patterns, "Exploit attempt in URL")
			evidence = append(evidence, fmt.Sprintf("Suspicious URL structure: %s...", truncate(url, 50)))
		}
	}

	return core.FrameworkResult{
		Score:    scoreFromPatterns(patterns, openVASChecks),
		Patterns: patterns,
		Evidence: evidence,
	}
}

// isExploitURL flags overlong URLs and ones carrying null-byte or path
// traversal sequences
func isExploitURL(url string) bool {
	return len(url) > exploitURLMaxLen ||
		containsAny(url, []string{"%00", "../"})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
