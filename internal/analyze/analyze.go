package analyze

import (
	"strings"

	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/redact"
)

// Severity is the severity level of a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// SeverityRank returns a numeric rank for sorting (higher = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 3
	case SeverityWarning:
		return 2
	case SeverityInfo:
		return 1
	default:
		return 0
	}
}

// MeetsThreshold returns true if severity is at or above the threshold.
func MeetsThreshold(s Severity, threshold string) bool {
	if threshold == "none" || threshold == "" {
		return false
	}
	return SeverityRank(s) >= SeverityRank(Severity(threshold))
}

// Finding is one issue reported by an analyzer against a changed line.
// It is immutable once created.
type Finding struct {
	Path     string   `json:"path"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Snippet  string   `json:"snippet,omitempty"`
	Analyzer string   `json:"analyzer"`
}

// Config carries the analyzer thresholds. Callers must provide explicit
// values; the analyzers assume no defaults.
type Config struct {
	MaxLineLength int
}

// Analyzer is the shared capability of all checks: consume one file's
// changed lines and emit zero or more findings. Implementations are
// stateless and hold no cross-file state.
type Analyzer interface {
	Name() string

	// Applies reports whether the analyzer runs for files of the given
	// language. Skipping is silent, not an error.
	Applies(lang string) bool

	Analyze(path, lang string, lines diff.ChangedLineSet, cfg Config) []Finding
}

// Default returns the full analyzer set in registration order. The order
// is fixed so finding order stays deterministic.
func Default() []Analyzer {
	return []Analyzer{
		&LintAnalyzer{},
		&SecurityAnalyzer{},
		&ComplexityAnalyzer{},
	}
}

const maxSnippetLen = 160

// snippet renders a changed line for inclusion in a finding: trimmed,
// capped, and with any secret-like tokens masked.
func snippet(text string) string {
	s := strings.TrimSpace(redact.Secrets(text))
	if s == "" {
		s = "<empty line>"
	}
	if len(s) > maxSnippetLen {
		s = s[:maxSnippetLen]
	}
	return s
}
