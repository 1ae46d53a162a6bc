package analyzers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// nessusChecks is the fixed rule count for the attachment/malware analyzer
const nessusChecks = 5

// dangerousExtensions are attachment extensions commonly used to deliver
// malware
var dangerousExtensions = []string{".exe", ".scr", ".bat", ".cmd", ".vbs", ".js", ".jar", ".zip"}

var exploitVocabulary = regexp.MustCompile(`(?i)exploit|payload|shellcode|metasploit`)

// NessusAnalyzer scans for delivery mechanisms: dangerous attachment
// types, exploit-tool vocabulary and malware-family names
type NessusAnalyzer struct {
	malwareKeywords []string
}

// NewNessusAnalyzer creates the attachment/malware analyzer
func NewNessusAnalyzer() *NessusAnalyzer {
	return &NessusAnalyzer{
		malwareKeywords: []string{"ransomware", "trojan", "virus", "malware", "backdoor"},
	}
}

// Name returns the framework name
func (a *NessusAnalyzer) Name() string { return "Nessus" }

// Analyze checks attachments and body text for malware signals. Each
// qualifying attachment pushes its own pattern occurrence.
func (a *NessusAnalyzer) Analyze(email *core.EmailInput) core.FrameworkResult {
	patterns := []string{}
	evidence := []string{}

	for _, att := range email.Attachments {
		if hasDangerousExtension(att.Filename) {
			patterns = append(patterns, "Suspicious attachment detected")
			evidence = append(evidence, fmt.Sprintf("Suspicious file: %s", att.Filename))
		}
	}

	text := email.Body.Text
	if exploitVocabulary.MatchString(text) {
		patterns = append(patterns, "Exploit kit indicators")
		evidence = append(evidence, "Exploit-related keywords found")
	}

	if containsAny(strings.ToLower(text), a.malwareKeywords) {
		patterns = append(patterns, "Malware signature detected")
		evidence = append(evidence, "Known malware patterns found in email")
	}

	return core.FrameworkResult{
		Score:    scoreFromPatterns(patterns, nessusChecks),
		Patterns: patterns,
		Evidence: evidence,
	}
}

// hasDangerousExtension reports whether the filename ends in one of the
// dangerous attachment extensions
func hasDangerousExtension(filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range dangerousExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
