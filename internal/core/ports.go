package core

import (
	"context"
)

// NarrativeGenerator defines the interface for producing a human-readable
// explanation of an analysis from an external text-generation model
type NarrativeGenerator interface {
	// Explain builds a prompt from the email and framework results and
	// returns the parsed narrative. Implementations return an error on
	// failure; the caller substitutes the fallback narrative.
	Explain(ctx context.Context, email *EmailInput, results FrameworkResultSet) (*Narrative, error)
}

// EmailStore persists captured emails pending or past analysis
type EmailStore interface {
	// SaveEmail stores an email and returns its assigned ID. Emails are
	// deduplicated by their capture-service source ID.
	SaveEmail(ctx context.Context, email *EmailInput) (*StoredEmail, error)

	// GetEmail retrieves a stored email by ID
	GetEmail(ctx context.Context, id string) (*StoredEmail, error)

	// GetEmailBySourceID retrieves a stored email by its capture-service ID
	GetEmailBySourceID(ctx context.Context, sourceID string) (*StoredEmail, error)

	// ListEmails returns a page of stored emails, optionally filtered by
	// analysis state (nil means no filter)
	ListEmails(ctx context.Context, analyzed *bool, offset, limit int) ([]StoredEmail, int, error)

	// MarkAnalyzed links an email to its analysis record
	MarkAnalyzed(ctx context.Context, emailID, analysisID string) error

	// ClearAnalyzed resets an email to the unanalyzed state
	ClearAnalyzed(ctx context.Context, emailID string) error
}

// AnalysisFilter narrows listing queries over stored analyses
type AnalysisFilter struct {
	RiskLevel      RiskLevel
	Classification Classification
}

// AnalysisStore persists assembled analysis records
type AnalysisStore interface {
	// SaveAnalysis stores an analysis record
	SaveAnalysis(ctx context.Context, record *AnalysisRecord) error

	// GetAnalysis retrieves an analysis record by ID
	GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error)

	// ListAnalyses returns a filtered page of analyses, newest first
	ListAnalyses(ctx context.Context, filter AnalysisFilter, offset, limit int) ([]AnalysisRecord, int, error)

	// RecentAnalyses returns the most recent analyses, newest first
	RecentAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error)

	// DeleteAnalysis removes an analysis record
	DeleteAnalysis(ctx context.Context, id string) error

	// Statistics computes aggregate accuracy metrics over all analyses
	Statistics(ctx context.Context) (*Statistics, error)
}

// MailSource fetches captured messages from a mailbox-capture service
type MailSource interface {
	// FetchMessages lists up to limit captured messages
	FetchMessages(ctx context.Context, limit int) ([]EmailInput, error)

	// FetchMessage retrieves one message with full headers by source ID
	FetchMessage(ctx context.Context, sourceID string) (*EmailInput, error)

	// DeleteMessage removes a message from the capture service
	DeleteMessage(ctx context.Context, sourceID string) error

	// Healthy reports whether the capture service is reachable
	Healthy(ctx context.Context) bool
}
