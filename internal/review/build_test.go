package review

import (
	"strings"
	"testing"

	"github.com/dshills/gatekeeper/internal/analyze"
)

func testFindings() []analyze.Finding {
	return []analyze.Finding{
		{Path: "b.py", Line: 12, Severity: analyze.SeverityInfo, Rule: "TODO_COMMENT", Message: "todo", Analyzer: "lint"},
		{Path: "a.py", Line: 3, Severity: analyze.SeverityError, Rule: "EVAL_USAGE", Message: "eval", Analyzer: "security"},
		{Path: "a.py", Line: 9, Severity: analyze.SeverityWarning, Rule: "LINE_TOO_LONG", Message: "long", Analyzer: "lint"},
		{Path: "b.py", Line: 1, Severity: analyze.SeverityError, Rule: "EXEC_USAGE", Message: "exec", Analyzer: "security"},
	}
}

func TestBuild_SeverityCountsAlwaysComplete(t *testing.T) {
	rev := Build("42", testFindings(), Stats{FilesAnalyzed: 2, ChangedLines: 10}, BuildConfig{MaxInlineComments: 1, MaxTableRows: 40})

	if got := rev.SeverityCounts.Total(); got != 4 {
		t.Errorf("Total = %d, want 4 (truncation must not lose findings from the count)", got)
	}
	if rev.SeverityCounts.Error != 2 || rev.SeverityCounts.Warning != 1 || rev.SeverityCounts.Info != 1 {
		t.Errorf("counts = %+v", rev.SeverityCounts)
	}
	if len(rev.InlineComments) != 1 {
		t.Errorf("inline comments = %d, want 1", len(rev.InlineComments))
	}
	if rev.ID == "" {
		t.Error("expected a run ID")
	}
}

func TestBuild_InlineOrderingSeverityFirst(t *testing.T) {
	rev := Build("42", testFindings(), Stats{}, BuildConfig{MaxInlineComments: 10, MaxTableRows: 40})

	if len(rev.InlineComments) != 4 {
		t.Fatalf("inline comments = %d, want 4", len(rev.InlineComments))
	}

	// error > warning > info; within a severity, path then line ascending.
	wantOrder := []struct {
		path string
		line int
	}{
		{"a.py", 3}, {"b.py", 1}, {"a.py", 9}, {"b.py", 12},
	}
	for i, want := range wantOrder {
		c := rev.InlineComments[i]
		if c.Path != want.path || c.Line != want.line {
			t.Errorf("comment[%d] = %s:%d, want %s:%d", i, c.Path, c.Line, want.path, want.line)
		}
	}

	for i := 1; i < len(rev.InlineComments); i++ {
		prev := analyze.SeverityRank(rev.InlineComments[i-1].Severity)
		cur := analyze.SeverityRank(rev.InlineComments[i].Severity)
		if prev < cur {
			t.Errorf("severity rank increased at comment %d", i)
		}
	}
}

func TestBuild_ZeroCapYieldsNoCommentsButFullCounts(t *testing.T) {
	rev := Build("42", testFindings()[:3], Stats{}, BuildConfig{MaxInlineComments: 0, MaxTableRows: 40})

	if len(rev.InlineComments) != 0 {
		t.Errorf("inline comments = %d, want 0", len(rev.InlineComments))
	}
	if rev.SeverityCounts.Total() != 3 {
		t.Errorf("Total = %d, want 3", rev.SeverityCounts.Total())
	}
	if !strings.Contains(rev.SummaryMarkdown, "Inline comments limited to 0") {
		t.Error("summary should note the inline cap")
	}
}

func TestBuild_ZeroFindingsIsAValidReview(t *testing.T) {
	rev := Build("42", nil, Stats{FilesAnalyzed: 1, ChangedLines: 5}, BuildConfig{MaxInlineComments: 5, MaxTableRows: 40})

	if rev == nil {
		t.Fatal("zero findings must still produce a Review")
	}
	if rev.SeverityCounts.Total() != 0 {
		t.Errorf("Total = %d, want 0", rev.SeverityCounts.Total())
	}
	if len(rev.InlineComments) != 0 {
		t.Errorf("inline comments = %d, want 0", len(rev.InlineComments))
	}
	if !strings.Contains(rev.SummaryMarkdown, "No issues found on changed lines.") {
		t.Errorf("summary missing no-issues result:\n%s", rev.SummaryMarkdown)
	}
}

func TestBuild_DeduplicatesInlineComments(t *testing.T) {
	dup := analyze.Finding{Path: "a.py", Line: 3, Severity: analyze.SeverityError, Rule: "EVAL_USAGE", Message: "eval"}
	rev := Build("42", []analyze.Finding{dup, dup}, Stats{}, BuildConfig{MaxInlineComments: 10, MaxTableRows: 40})

	if len(rev.InlineComments) != 1 {
		t.Errorf("inline comments = %d, want 1 after dedup", len(rev.InlineComments))
	}
	if rev.SeverityCounts.Total() != 2 {
		t.Errorf("Total = %d, want 2 (dedup applies to comments only)", rev.SeverityCounts.Total())
	}
}

func TestRenderSummary_Tables(t *testing.T) {
	rev := Build("42", testFindings(), Stats{FilesAnalyzed: 2, ChangedLines: 10}, BuildConfig{MaxInlineComments: 2, MaxTableRows: 3})
	md := rev.SummaryMarkdown

	for _, want := range []string{
		summaryHeading,
		"| Severity | Count |",
		"| ERROR | 2 |",
		"| `a.py` | 1 | 1 | 0 |",
		"| `b.py` | 1 | 0 | 1 |",
		"Table truncated to first 3 findings; 1 additional finding(s)",
		"Inline comments limited to 2",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q:\n%s", want, md)
		}
	}

	// Per-file rows are ordered by path ascending.
	if strings.Index(md, "`a.py` | 1 | 1 | 0") > strings.Index(md, "`b.py` | 1 | 0 | 1") {
		t.Error("file rows not sorted by path")
	}
}

func TestSortFindings_TiesKeepRegistrationOrder(t *testing.T) {
	findings := []analyze.Finding{
		{Path: "a.py", Line: 1, Severity: analyze.SeverityWarning, Rule: "FIRST"},
		{Path: "a.py", Line: 1, Severity: analyze.SeverityWarning, Rule: "SECOND"},
	}
	SortFindings(findings)
	if findings[0].Rule != "FIRST" || findings[1].Rule != "SECOND" {
		t.Errorf("tie order changed: %v", findings)
	}
}
