package review

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/dshills/gatekeeper/internal/analyze"
)

// BuildConfig bounds the aggregated Review. Both fields are required by
// the caller; Validate rejects missing or negative values before any
// parsing begins.
type BuildConfig struct {
	MaxInlineComments int
	// MaxTableRows caps the findings detail table in the summary body.
	MaxTableRows int
}

// maxCommentBody caps one inline comment's rendered body.
const maxCommentBody = 64000

// Build aggregates all findings of one run into the final Review.
//
// Findings are stably sorted by severity rank (error > warning > info),
// then path, then line; ties beyond that keep analyzer-registration order.
// The first MaxInlineComments findings (deduplicated by path, line, and
// rule) become inline comments; the rest remain represented in the
// severity counts and summary table.
func Build(pullRequestID string, findings []analyze.Finding, stats Stats, cfg BuildConfig) *Review {
	sorted := make([]analyze.Finding, len(findings))
	copy(sorted, findings)
	SortFindings(sorted)

	var counts SeverityCounts
	for _, f := range sorted {
		counts.add(f.Severity)
	}

	comments := selectInlineComments(sorted, cfg.MaxInlineComments)

	return &Review{
		ID:              uuid.NewString(),
		PullRequestID:   pullRequestID,
		SummaryMarkdown: renderSummary(sorted, counts, stats, len(comments), cfg),
		SeverityCounts:  counts,
		InlineComments:  comments,
		Findings:        sorted,
		Stats:           stats,
	}
}

// SortFindings stably sorts findings by severity (most severe first), then
// path, then line. Stability preserves analyzer-registration order for
// findings that tie on all three keys.
func SortFindings(findings []analyze.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		ri, rj := analyze.SeverityRank(findings[i].Severity), analyze.SeverityRank(findings[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if findings[i].Path != findings[j].Path {
			return findings[i].Path < findings[j].Path
		}
		return findings[i].Line < findings[j].Line
	})
}

func selectInlineComments(sorted []analyze.Finding, limit int) []InlineComment {
	comments := []InlineComment{}
	if limit <= 0 {
		return comments
	}

	seen := make(map[string]bool)
	for _, f := range sorted {
		key := fmt.Sprintf("%s:%d:%s", f.Path, f.Line, f.Rule)
		if seen[key] {
			continue
		}
		seen[key] = true

		body := fmt.Sprintf("[%s] %s\n\n`%s`", upperSeverity(f.Severity), f.Message, f.Snippet)
		if len(body) > maxCommentBody {
			body = body[:maxCommentBody]
		}
		comments = append(comments, InlineComment{
			Path:     f.Path,
			Line:     f.Line,
			Severity: f.Severity,
			Message:  body,
		})
		if len(comments) >= limit {
			break
		}
	}
	return comments
}
