package core

import (
	"errors"
)

// ErrUnknownFramework is returned when a framework name token is not one
// of the recognized identifiers
var ErrUnknownFramework = errors.New("unknown framework")

// ErrMalformedInput is returned when an email input is structurally
// invalid (a nil input, as opposed to one with empty content)
var ErrMalformedInput = errors.New("malformed email input")

// ErrNarrativeUnavailable indicates the narrative generation service
// failed or timed out. It is always handled inside the pipeline by
// substituting the deterministic fallback narrative and is never
// returned to callers of AnalysisService.Analyze.
var ErrNarrativeUnavailable = errors.New("narrative generation unavailable")

// ErrNotFound is returned by stores when the requested record does not exist
var ErrNotFound = errors.New("not found")
