package analyzers

import (
	"math"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// extractURLs returns all http(s) URL tokens found in text
func extractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// scoreFromPatterns applies the common scoring law: the fraction of the
// analyzer's fixed rule set that fired, as an integer percentage capped
// at 100. Repeated pushes of the same pattern string (one per occurrence)
// count once, so many hits on a single signal cannot inflate the score.
func scoreFromPatterns(patterns []string, totalChecks int) int {
	if totalChecks == 0 {
		return 0
	}
	distinct := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		distinct[p] = struct{}{}
	}
	score := math.Round(float64(len(distinct)) / float64(totalChecks) * 100)
	return int(math.Min(100, score))
}

// keywordContext extracts up to contextLen characters around the first
// occurrence of keyword in text, for evidence strings
func keywordContext(text, keyword string, contextLen int) string {
	idx := strings.Index(text, keyword)
	if idx < 0 {
		return ""
	}
	start := idx - contextLen
	if start < 0 {
		start = 0
	}
	end := idx + len(keyword) + contextLen
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}

// subjectAndBody joins the subject and plain-text body, lowercased, the
// text most keyword checks scan
func subjectAndBody(subject, bodyText string) string {
	return strings.ToLower(subject + " " + bodyText)
}

// containsAny reports whether text contains any of the given tokens
func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

// senderDomain extracts the lowercased domain of an address, or "" if
// the address is malformed
func senderDomain(address string) string {
	parts := strings.Split(address, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(parts[1])
}
