package narrative

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// The reply grammar is three ordered labeled sections. SUMMARY is
// mandatory; a reply without it is a parse failure and the caller falls
// back to the deterministic narrative.
var (
	summaryPattern        = regexp.MustCompile(`(?s)SUMMARY:\s*(.+?)(?:REASONING:|$)`)
	reasoningPattern      = regexp.MustCompile(`(?s)REASONING:\s*(.+?)(?:RECOMMENDATIONS:|$)`)
	recommendationPattern = regexp.MustCompile(`(?s)RECOMMENDATIONS:\s*(.+)$`)
	listNumberPrefix      = regexp.MustCompile(`^\d+\.\s*`)
)

// defaultReasoning is used when the model answered but omitted the
// REASONING section
const defaultReasoning = "Based on framework analysis results."

// defaultRecommendations are used when the model answered but gave no
// usable RECOMMENDATIONS section
var defaultRecommendations = []string{
	"Review email carefully",
	"Verify sender identity",
	"Do not click links",
}

// ParseReply extracts the three labeled sections from a model reply. It
// returns an error only when the reply does not follow the grammar at
// all (no SUMMARY section); missing trailing sections get deterministic
// defaults.
func ParseReply(reply string) (*core.Narrative, error) {
	summary := matchSection(summaryPattern, reply)
	if summary == "" {
		return nil, fmt.Errorf("reply has no SUMMARY section")
	}

	reasoning := matchSection(reasoningPattern, reply)
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	recommendations := parseRecommendations(matchSection(recommendationPattern, reply))

	return &core.Narrative{
		Summary:         summary,
		Reasoning:       reasoning,
		Recommendations: recommendations,
	}, nil
}

func matchSection(pattern *regexp.Regexp, reply string) string {
	m := pattern.FindStringSubmatch(reply)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// parseRecommendations splits the section on newlines and strips
// leading "N." numbering
func parseRecommendations(section string) []string {
	if section == "" {
		return defaultRecommendations
	}

	recommendations := []string{}
	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		line = listNumberPrefix.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			recommendations = append(recommendations, line)
		}
	}

	if len(recommendations) == 0 {
		return defaultRecommendations
	}
	return recommendations
}
