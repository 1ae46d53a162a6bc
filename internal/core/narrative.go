package core

// FallbackNarrative is the deterministic narrative used whenever the
// text-generation service fails, times out or returns an unparseable
// reply. The pipeline always completes with this in place of the
// generated commentary; the failure is never propagated.
func FallbackNarrative() Narrative {
	return Narrative{
		Summary:   "LLM analysis unavailable. Using framework-based assessment.",
		Reasoning: "Narrative service is not responding. Analysis based on detection frameworks only.",
		Recommendations: []string{
			"Verify the narrative service is running",
			"Check email manually",
		},
		Fallback: true,
	}
}

// TrustedSenderNarrative is the fixed narrative used when the sender
// domain is on the trusted list and the generation call is skipped
func TrustedSenderNarrative() Narrative {
	return Narrative{
		Summary:   "Sender domain is trusted. Framework assessment only.",
		Reasoning: "The sender's domain is on the trusted list, so no generated commentary was requested.",
		Recommendations: []string{
			"No action required unless framework scores indicate otherwise",
		},
	}
}
