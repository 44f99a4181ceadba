package review

import (
	"fmt"

	"github.com/dshills/gatekeeper/internal/analyze"
)

// SeverityCounts holds counts by severity level. The sum over all three
// fields always equals the total number of findings: inline-comment
// truncation never loses a finding from the count.
type SeverityCounts struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
}

// Total returns the number of findings across all severities.
func (c SeverityCounts) Total() int { return c.Error + c.Warning + c.Info }

func (c *SeverityCounts) add(s analyze.Severity) {
	switch s {
	case analyze.SeverityError:
		c.Error++
	case analyze.SeverityWarning:
		c.Warning++
	case analyze.SeverityInfo:
		c.Info++
	}
}

// InlineComment is one review comment addressed to a file and line of the
// new file version.
type InlineComment struct {
	Path     string           `json:"path"`
	Line     int              `json:"line"`
	Severity analyze.Severity `json:"severity"`
	Message  string           `json:"message"`
}

// Stats describes the scope of a run.
type Stats struct {
	FilesAnalyzed int `json:"filesAnalyzed"`
	FilesSkipped  int `json:"filesSkipped"`
	ChangedLines  int `json:"changedLines"`
}

// Review is the single aggregated artifact produced once per triggering
// event. It is immutable once built and handed to the posting collaborator
// exactly once. Zero findings still produce a valid Review with zeroed
// counts, never a nil one.
type Review struct {
	ID              string            `json:"id"`
	PullRequestID   string            `json:"pullRequestId,omitempty"`
	SummaryMarkdown string            `json:"summaryMarkdown"`
	SeverityCounts  SeverityCounts    `json:"severityCounts"`
	InlineComments  []InlineComment   `json:"inlineComments"`
	Findings        []analyze.Finding `json:"findings"`
	Stats           Stats             `json:"stats"`
}

// ConfigError reports invalid review configuration. It is the only fatal
// error class of the pipeline: without valid bounds no meaningful Review
// can be produced.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}
