package narrative

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis/phishguard/internal/core"
)

func TestParseReply_FullReply(t *testing.T) {
	reply := `SUMMARY: This email is very likely a phishing attempt targeting account credentials.
REASONING: Multiple frameworks flagged urgency keywords and a suspicious login URL.
RECOMMENDATIONS:
1. Delete immediately
2. Report to IT
3. Verify sender through another channel`

	narrative, err := ParseReply(reply)
	require.NoError(t, err)

	assert.Equal(t, "This email is very likely a phishing attempt targeting account credentials.", narrative.Summary)
	assert.Equal(t, "Multiple frameworks flagged urgency keywords and a suspicious login URL.", narrative.Reasoning)
	assert.Equal(t, []string{
		"Delete immediately",
		"Report to IT",
		"Verify sender through another channel",
	}, narrative.Recommendations)
}

func TestParseReply_MissingSummary(t *testing.T) {
	_, err := ParseReply("The email looks fine to me.")
	assert.Error(t, err)

	_, err = ParseReply("")
	assert.Error(t, err)
}

func TestParseReply_MissingTrailingSections(t *testing.T) {
	narrative, err := ParseReply("SUMMARY: Looks legitimate.")
	require.NoError(t, err)

	assert.Equal(t, "Looks legitimate.", narrative.Summary)
	assert.Equal(t, "Based on framework analysis results.", narrative.Reasoning)
	assert.Equal(t, []string{
		"Review email carefully",
		"Verify sender identity",
		"Do not click links",
	}, narrative.Recommendations)
}

func TestParseReply_UnnumberedRecommendations(t *testing.T) {
	reply := `SUMMARY: Suspicious.
REASONING: Auth failures.
RECOMMENDATIONS:
Delete it

Report it`

	narrative, err := ParseReply(reply)
	require.NoError(t, err)
	assert.Equal(t, []string{"Delete it", "Report it"}, narrative.Recommendations)
}

func TestParseReply_WhitespaceOnlyRecommendations(t *testing.T) {
	narrative, err := ParseReply("SUMMARY: ok\nREASONING: fine\nRECOMMENDATIONS:\n   \n")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Review email carefully",
		"Verify sender identity",
		"Do not click links",
	}, narrative.Recommendations)
}

func TestBuildPrompt(t *testing.T) {
	email := &core.EmailInput{
		Subject: "Verify your account",
		From:    core.Address{Address: "alerts@paypal-secure.tk"},
		Body:    core.Body{Text: "Click http://192.168.1.1/login"},
		Authentication: core.Authentication{
			DMARC: core.AuthFail,
			SPF:   core.AuthPass,
		},
	}
	results := core.FrameworkResultSet{
		MLClassifier: core.FrameworkResult{Score: 90, Patterns: []string{"Suspicious URL detected"}},
		OWASP:        core.FrameworkResult{Score: 90},
		NIST:         core.FrameworkResult{Score: 90},
		ISO27001:     core.FrameworkResult{Score: 90},
		Nessus:       core.FrameworkResult{Score: 90},
		OpenVAS:      core.FrameworkResult{Score: 90},
	}

	prompt := BuildPrompt(email, results)

	assert.Contains(t, prompt, "Subject: Verify your account")
	assert.Contains(t, prompt, "From: alerts@paypal-secure.tk")
	assert.Contains(t, prompt, "- ML Classifier: 90% (Patterns: Suspicious URL detected)")
	assert.Contains(t, prompt, "- OWASP: 90% (Patterns: none)")
	assert.Contains(t, prompt, "Average Detection Score: 90.0%")
	assert.Contains(t, prompt, "Preliminary Risk Level: HIGH")
	assert.Contains(t, prompt, "- DMARC: fail")
	assert.Contains(t, prompt, "- SPF: pass")
	assert.Contains(t, prompt, "- DKIM: unknown")
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	email := &core.EmailInput{Subject: "Hello", Body: core.Body{Text: "world"}}
	results := core.FrameworkResultSet{}

	assert.Equal(t, BuildPrompt(email, results), BuildPrompt(email, results))
}

func TestBuildPrompt_TruncatesBody(t *testing.T) {
	email := &core.EmailInput{
		Body: core.Body{Text: strings.Repeat("x", 5000)},
	}
	prompt := BuildPrompt(email, core.FrameworkResultSet{})
	assert.NotContains(t, prompt, strings.Repeat("x", 1001))
	assert.Contains(t, prompt, strings.Repeat("x", 1000))
}

func TestTruncateUTF8_DoesNotSplitRunes(t *testing.T) {
	text := strings.Repeat("é", 600) // 2 bytes each
	truncated := truncateUTF8(text, 1001)
	assert.True(t, len(truncated) <= 1001)
	assert.Equal(t, strings.Repeat("é", 500), truncated)
}

func TestPreliminaryRiskLevel(t *testing.T) {
	assert.Equal(t, core.RiskHigh, preliminaryRiskLevel(70))
	assert.Equal(t, core.RiskMedium, preliminaryRiskLevel(40))
	assert.Equal(t, core.RiskMedium, preliminaryRiskLevel(69.9))
	assert.Equal(t, core.RiskLow, preliminaryRiskLevel(39.9))
	assert.Equal(t, core.RiskLow, preliminaryRiskLevel(0))
}
