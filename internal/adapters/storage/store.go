package storage

import "github.com/hollis/phishguard/internal/core"

// Store combines the email and analysis persistence ports. Every backend
// in this package satisfies it.
type Store interface {
	core.EmailStore
	core.AnalysisStore
	Close() error
}
