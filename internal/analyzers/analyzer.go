package analyzers

import (
	"fmt"
	"strings"

	"github.com/hollis/phishguard/internal/core"
)

// Analyzer is the contract shared by all six framework analyzers.
// Analyze is pure and deterministic: it reads only the email and the
// analyzer's fixed rule table, performs no I/O and holds no state, so a
// single instance is safe for concurrent use across emails.
type Analyzer interface {
	// Name returns the human-readable framework name
	Name() string

	// Analyze inspects one email and reports which of the framework's
	// checks fired, with one evidence string per matched pattern
	Analyze(email *core.EmailInput) core.FrameworkResult
}

// Framework identifies one of the six analyzer kinds. It is a closed
// set: every value constructed by ParseFramework maps to exactly one
// analyzer in New, checked exhaustively at compile time.
type Framework int

const (
	FrameworkMLClassifier Framework = iota
	FrameworkOWASP
	FrameworkNIST
	FrameworkISO27001
	FrameworkNessus
	FrameworkOpenVAS
)

// All returns the six frameworks in canonical result-set order
func All() [6]Framework {
	return [6]Framework{
		FrameworkMLClassifier,
		FrameworkOWASP,
		FrameworkNIST,
		FrameworkISO27001,
		FrameworkNessus,
		FrameworkOpenVAS,
	}
}

// Key returns the framework's result-set key
func (f Framework) Key() string {
	switch f {
	case FrameworkMLClassifier:
		return "mlClassifier"
	case FrameworkOWASP:
		return "owasp"
	case FrameworkNIST:
		return "nist"
	case FrameworkISO27001:
		return "iso27001"
	case FrameworkNessus:
		return "nessus"
	case FrameworkOpenVAS:
		return "openvas"
	}
	return "unknown"
}

// ParseFramework maps a case-insensitive name token to a Framework.
// Both "ml" and "mlclassifier" are accepted for the lexical analyzer.
func ParseFramework(name string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ml", "mlclassifier":
		return FrameworkMLClassifier, nil
	case "owasp":
		return FrameworkOWASP, nil
	case "nist":
		return FrameworkNIST, nil
	case "iso27001":
		return FrameworkISO27001, nil
	case "nessus":
		return FrameworkNessus, nil
	case "openvas":
		return FrameworkOpenVAS, nil
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrUnknownFramework, name)
	}
}

// New constructs the analyzer for a framework
func New(f Framework) Analyzer {
	switch f {
	case FrameworkMLClassifier:
		return NewMLClassifierAnalyzer()
	case FrameworkOWASP:
		return NewOWASPAnalyzer()
	case FrameworkNIST:
		return NewNISTAnalyzer()
	case FrameworkISO27001:
		return NewISO27001Analyzer()
	case FrameworkNessus:
		return NewNessusAnalyzer()
	case FrameworkOpenVAS:
		return NewOpenVASAnalyzer()
	}
	panic(fmt.Sprintf("analyzers: invalid framework %d", f))
}

// RunAll runs all six analyzers over the same email and collects the
// full result set. The email is never mutated and the call is safe to
// run concurrently for different emails.
func RunAll(email *core.EmailInput) (core.FrameworkResultSet, error) {
	if email == nil {
		return core.FrameworkResultSet{}, core.ErrMalformedInput
	}
	return core.FrameworkResultSet{
		MLClassifier: New(FrameworkMLClassifier).Analyze(email),
		OWASP:        New(FrameworkOWASP).Analyze(email),
		NIST:         New(FrameworkNIST).Analyze(email),
		ISO27001:     New(FrameworkISO27001).Analyze(email),
		Nessus:       New(FrameworkNessus).Analyze(email),
		OpenVAS:      New(FrameworkOpenVAS).Analyze(email),
	}, nil
}
