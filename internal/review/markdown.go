package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/gatekeeper/internal/analyze"
)

const summaryHeading = "## Gatekeeper Review"

// renderSummary builds the markdown body of the review: scope, severity
// breakdown, a per-file table, and a capped findings detail table.
// Callers pass findings already sorted by SortFindings.
func renderSummary(sorted []analyze.Finding, counts SeverityCounts, stats Stats, inlineCount int, cfg BuildConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", summaryHeading)
	fmt.Fprintf(&b, "### Scope\n")
	fmt.Fprintf(&b, "- Files analyzed: %d\n", stats.FilesAnalyzed)
	if stats.FilesSkipped > 0 {
		fmt.Fprintf(&b, "- Files skipped (unparseable patch): %d\n", stats.FilesSkipped)
	}
	fmt.Fprintf(&b, "- Changed lines analyzed: %d\n", stats.ChangedLines)

	if len(sorted) == 0 {
		b.WriteString("\n### Result\nNo issues found on changed lines.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "- Findings: %d\n", len(sorted))

	b.WriteString("\n### Severity Breakdown\n")
	b.WriteString("| Severity | Count |\n| --- | ---: |\n")
	fmt.Fprintf(&b, "| ERROR | %d |\n", counts.Error)
	fmt.Fprintf(&b, "| WARNING | %d |\n", counts.Warning)
	fmt.Fprintf(&b, "| INFO | %d |\n", counts.Info)

	b.WriteString("\n### Files\n")
	b.WriteString("| File | Errors | Warnings | Info |\n| --- | ---: | ---: | ---: |\n")
	for _, row := range fileRows(sorted) {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d |\n",
			escapeCell(row.path), row.counts.Error, row.counts.Warning, row.counts.Info)
	}

	b.WriteString("\n### Findings (Changed Lines Only)\n")
	b.WriteString("| File | Line | Severity | Rule | Message |\n| --- | ---: | --- | --- | --- |\n")
	shown := len(sorted)
	if cfg.MaxTableRows > 0 && shown > cfg.MaxTableRows {
		shown = cfg.MaxTableRows
	}
	for _, f := range sorted[:shown] {
		fmt.Fprintf(&b, "| `%s` | %d | %s | `%s` | %s |\n",
			escapeCell(f.Path), f.Line, upperSeverity(f.Severity), escapeCell(f.Rule), escapeCell(f.Message))
	}
	if shown < len(sorted) {
		fmt.Fprintf(&b, "\n_Table truncated to first %d findings; %d additional finding(s) included in summary only._\n",
			shown, len(sorted)-shown)
	}

	if inlineCount < len(sorted) {
		fmt.Fprintf(&b, "\n_Inline comments limited to %d; every finding is still counted above._\n", inlineCount)
	}

	return b.String()
}

type fileRow struct {
	path   string
	counts SeverityCounts
}

// fileRows returns one row per file with a finding, ordered by path.
func fileRows(findings []analyze.Finding) []fileRow {
	byPath := make(map[string]*SeverityCounts)
	for _, f := range findings {
		c, ok := byPath[f.Path]
		if !ok {
			c = &SeverityCounts{}
			byPath[f.Path] = c
		}
		c.add(f.Severity)
	}

	rows := make([]fileRow, 0, len(byPath))
	for path, c := range byPath {
		rows = append(rows, fileRow{path: path, counts: *c})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].path < rows[j].path })
	return rows
}

func upperSeverity(s analyze.Severity) string { return strings.ToUpper(string(s)) }

func escapeCell(value string) string { return strings.ReplaceAll(value, "|", "\\|") }
