package analyzers

import (
	"fmt"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// nistChecks is the fixed rule count for the authentication/domain analyzer
const nistChecks = 7

// disposableTLDs are free/throwaway TLDs rarely seen on legitimate senders
var disposableTLDs = []string{".tk", ".ml", ".ga", ".cf", ".gq"}

// knownBrands are organizations commonly impersonated in phishing subjects
var knownBrands = []string{"paypal", "amazon", "microsoft", "apple", "google", "bank"}

// NISTAnalyzer validates sender authentication and domain reputation:
// DMARC/SPF/DKIM failures, disposable sender domains and brand spoofing
type NISTAnalyzer struct{}

// NewNISTAnalyzer creates the authentication/domain analyzer
func NewNISTAnalyzer() *NISTAnalyzer {
	return &NISTAnalyzer{}
}

// Name returns the framework name
func (a *NISTAnalyzer) Name() string { return "NIST CSF" }

// Analyze checks the authentication record and sender domain. An unknown
// authentication status never fires a pattern, only an explicit failure.
func (a *NISTAnalyzer) Analyze(email *core.EmailInput) core.FrameworkResult {
	patterns := []string{}
	evidence := []string{}

	auth := email.Authentication.Normalized()

	if auth.DMARC == core.AuthFail {
		patterns = append(patterns, "DMARC authentication failed")
		evidence = append(evidence, "DMARC: Sender domain authentication failed")
	}
	if auth.SPF == core.AuthFail {
		patterns = append(patterns, "SPF authentication failed")
		evidence = append(evidence, "SPF: Sender IP not authorized")
	}
	if auth.DKIM == core.AuthFail {
		patterns = append(patterns, "DKIM authentication failed")
		evidence = append(evidence, "DKIM: Email signature verification failed")
	}

	domain := senderDomain(email.From.Address)
	if isDisposableDomain(domain) {
		patterns = append(patterns, "Suspicious sender domain")
		evidence = append(evidence, fmt.Sprintf("Domain %q appears suspicious", domain))
	}

	if isBrandSpoofing(domain, email.Subject) {
		patterns = append(patterns, "Possible domain spoofing")
		evidence = append(evidence, "Sender domain does not match claimed organization")
	}

	return core.FrameworkResult{
		Score:    scoreFromPatterns(patterns, nistChecks),
		Patterns: patterns,
		Evidence: evidence,
	}
}

// isDisposableDomain reports whether the domain ends in a disposable TLD
func isDisposableDomain(domain string) bool {
	for _, tld := range disposableTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	return false
}

// isBrandSpoofing flags subjects naming a well-known brand whose token is
// absent from the sender domain
func isBrandSpoofing(domain, subject string) bool {
	subjectLower := strings.ToLower(subject)
	for _, brand := range knownBrands {
		if strings.Contains(subjectLower, brand) && !strings.Contains(domain, brand) {
			return true
		}
	}
	return false
}
