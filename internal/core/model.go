package core

import (
	"time"
)

// AuthStatus is the outcome of a single email authentication check
type AuthStatus string

const (
	AuthPass    AuthStatus = "pass"
	AuthFail    AuthStatus = "fail"
	AuthUnknown AuthStatus = "unknown"
)

// Authentication holds the DMARC/SPF/DKIM verdicts for an email.
// Fields left empty are treated as unknown.
type Authentication struct {
	DMARC AuthStatus
	SPF   AuthStatus
	DKIM  AuthStatus
}

// Normalized returns a copy with empty statuses replaced by AuthUnknown
func (a Authentication) Normalized() Authentication {
	norm := func(s AuthStatus) AuthStatus {
		switch s {
		case AuthPass, AuthFail:
			return s
		default:
			return AuthUnknown
		}
	}
	return Authentication{
		DMARC: norm(a.DMARC),
		SPF:   norm(a.SPF),
		DKIM:  norm(a.DKIM),
	}
}

// Address is an email address with an optional display name
type Address struct {
	Address string
	Name    string
}

// Attachment describes a single email attachment (metadata only)
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
}

// Body holds the textual content of an email. Text is always present
// (possibly empty); HTML is optional.
type Body struct {
	Text string
	HTML string
}

// EmailInput is the read-only input to the analysis engine
type EmailInput struct {
	// SourceID is the message identifier assigned by the capture service
	SourceID       string
	Subject        string
	From           Address
	To             []Address
	Body           Body
	Attachments    []Attachment
	Authentication Authentication
	ReceivedAt     time.Time
}

// FrameworkResult is the output of a single analyzer for a single email
type FrameworkResult struct {
	// Score is the fraction of the analyzer's rule set that fired, 0-100
	Score int `json:"score"`
	// Patterns are short labels identifying which checks matched
	Patterns []string `json:"patterns"`
	// Evidence carries a longer justification per matched check
	Evidence []string `json:"evidence"`
}

// FrameworkResultSet maps each of the six frameworks to its result.
// A full run always populates all six entries.
type FrameworkResultSet struct {
	MLClassifier FrameworkResult `json:"mlClassifier"`
	OWASP        FrameworkResult `json:"owasp"`
	NIST         FrameworkResult `json:"nist"`
	ISO27001     FrameworkResult `json:"iso27001"`
	Nessus       FrameworkResult `json:"nessus"`
	OpenVAS      FrameworkResult `json:"openvas"`
}

// Scores returns the six framework scores in canonical order
// (mlClassifier, owasp, nist, iso27001, nessus, openvas)
func (s FrameworkResultSet) Scores() [6]int {
	return [6]int{
		s.MLClassifier.Score,
		s.OWASP.Score,
		s.NIST.Score,
		s.ISO27001.Score,
		s.Nessus.Score,
		s.OpenVAS.Score,
	}
}

// AverageScore returns the unweighted arithmetic mean of the six scores
func (s FrameworkResultSet) AverageScore() float64 {
	scores := s.Scores()
	sum := 0
	for _, score := range scores {
		sum += score
	}
	return float64(sum) / float64(len(scores))
}

// RiskLevel is the overall risk tier derived from the framework scores
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// Classification is a ground-truth bookkeeping tag used for offline
// accuracy metrics, not a security property of the email itself
type Classification string

const (
	TruePositive  Classification = "TP"
	TrueNegative  Classification = "TN"
	FalsePositive Classification = "FP"
	FalseNegative Classification = "FN"
)

// RiskAssessment is the aggregated verdict over all six framework scores
type RiskAssessment struct {
	RiskLevel      RiskLevel      `json:"riskLevel"`
	Confidence     float64        `json:"confidence"`
	IsPhishing     bool           `json:"isPhishing"`
	Classification Classification `json:"classification"`
}

// IndicatorType is a coarse category derived from matched pattern text
type IndicatorType string

const (
	IndicatorUrgency           IndicatorType = "urgency"
	IndicatorAuthority         IndicatorType = "authority"
	IndicatorSuspiciousLink    IndicatorType = "suspicious_link"
	IndicatorGrammarError      IndicatorType = "grammar_error"
	IndicatorSpoofing          IndicatorType = "spoofing"
	IndicatorCredentialRequest IndicatorType = "credential_request"
	IndicatorOther             IndicatorType = "other"
)

// Severity grades an indicator by the score of the framework that produced it
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Indicator is a single categorized signal extracted from a matched pattern
type Indicator struct {
	Type        IndicatorType `json:"type"`
	Description string        `json:"description"`
	Severity    Severity      `json:"severity"`
}

// Narrative is the human-readable commentary produced by the explainer
type Narrative struct {
	Summary         string   `json:"summary"`
	Reasoning       string   `json:"reasoning"`
	Recommendations []string `json:"recommendations"`
	// GenerationTimeMs is the wall-clock duration of the generation call
	GenerationTimeMs int64 `json:"generationTimeMs"`
	// Fallback reports whether the deterministic fallback narrative was
	// used because the generation service could not produce one
	Fallback bool `json:"fallback"`
}

// AnalysisRecord is the assembled output of one full pipeline run
type AnalysisRecord struct {
	ID               string             `json:"id"`
	EmailID          string             `json:"emailId"`
	Risk             RiskAssessment     `json:"risk"`
	Frameworks       FrameworkResultSet `json:"frameworks"`
	Indicators       []Indicator        `json:"indicators"`
	Narrative        Narrative          `json:"narrative"`
	AnalyzedAt       time.Time          `json:"analyzedAt"`
	ProcessingTimeMs int64              `json:"processingTimeMs"`
}

// StoredEmail is an EmailInput persisted by the email store, together
// with its analysis bookkeeping state
type StoredEmail struct {
	ID         string
	Email      EmailInput
	Analyzed   bool
	AnalysisID string
	StoredAt   time.Time
}

// Statistics summarizes the analyses held by a store
type Statistics struct {
	Total             int                `json:"total"`
	RiskDistribution  map[string]int     `json:"riskDistribution"`
	Classifications   map[string]int     `json:"classifications"`
	Accuracy          float64            `json:"accuracy"`
	Precision         float64            `json:"precision"`
	Recall            float64            `json:"recall"`
	F1Score           float64            `json:"f1Score"`
	FrameworkAverages map[string]float64 `json:"frameworkAverages"`
}
