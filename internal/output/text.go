package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/gatekeeper/internal/analyze"
	"github.com/dshills/gatekeeper/internal/review"
)

// TextWriter outputs a human-readable text review.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, rev *review.Review) error {
	ew := &errWriter{w: w}

	total := rev.SeverityCounts.Total()
	ew.printf("Gatekeeper Review\n")
	if rev.PullRequestID != "" {
		ew.printf("Pull request: %s\n", rev.PullRequestID)
	}
	ew.printf("Files analyzed: %d, changed lines: %d\n", rev.Stats.FilesAnalyzed, rev.Stats.ChangedLines)
	if rev.Stats.FilesSkipped > 0 {
		ew.printf("Files skipped (unparseable patch): %d\n", rev.Stats.FilesSkipped)
	}
	ew.println(strings.Repeat("─", 60))
	ew.printf("Findings: %d total", total)
	if total > 0 {
		ew.printf(" (%d error, %d warning, %d info)",
			rev.SeverityCounts.Error,
			rev.SeverityCounts.Warning,
			rev.SeverityCounts.Info,
		)
	}
	ew.println("")
	ew.println(strings.Repeat("─", 60))

	if total == 0 {
		ew.println("\nNo issues found on changed lines.")
		return ew.err
	}

	// Findings arrive pre-sorted: severity rank descending, then path,
	// then line.
	for _, sev := range []analyze.Severity{analyze.SeverityError, analyze.SeverityWarning, analyze.SeverityInfo} {
		first := true
		for _, f := range rev.Findings {
			if f.Severity != sev {
				continue
			}
			if first {
				ew.printf("\n%s %s\n", severityIcon(sev), strings.ToUpper(string(sev)))
				ew.println(strings.Repeat("─", 40))
				first = false
			}
			ew.printf("\n  %s:%d  [%s]\n", f.Path, f.Line, f.Rule)
			for _, line := range wrapText(f.Message, 70) {
				ew.printf("    %s\n", line)
			}
			if f.Snippet != "" {
				ew.printf("    > %s\n", f.Snippet)
			}
		}
	}

	if len(rev.InlineComments) < total {
		ew.printf("\n%d of %d findings selected for inline comments.\n", len(rev.InlineComments), total)
	}

	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}

func severityIcon(s analyze.Severity) string {
	switch s {
	case analyze.SeverityError:
		return "[!!]"
	case analyze.SeverityWarning:
		return "[!]"
	case analyze.SeverityInfo:
		return "[-]"
	default:
		return "[?]"
	}
}

func wrapText(text string, width int) []string {
	if len(text) <= width {
		return []string{text}
	}
	var lines []string
	words := strings.Fields(text)
	var current strings.Builder
	for _, word := range words {
		if current.Len()+len(word)+1 > width && current.Len() > 0 {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
