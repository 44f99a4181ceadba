package analyze

import (
	"context"
	"testing"

	"github.com/dshills/gatekeeper/internal/diff"
)

type stubAnalyzer struct {
	name     string
	findings []Finding
}

func (s *stubAnalyzer) Name() string                { return s.name }
func (s *stubAnalyzer) Applies(string) bool         { return true }
func (s *stubAnalyzer) Analyze(path, _ string, _ diff.ChangedLineSet, _ Config) []Finding {
	out := make([]Finding, len(s.findings))
	for i, f := range s.findings {
		f.Path = path
		f.Analyzer = s.name
		out[i] = f
	}
	return out
}

type panicAnalyzer struct{}

func (p *panicAnalyzer) Name() string        { return "boom" }
func (p *panicAnalyzer) Applies(string) bool { return true }
func (p *panicAnalyzer) Analyze(string, string, diff.ChangedLineSet, Config) []Finding {
	panic("rule table corrupted")
}

func TestRunner_IsolatesAnalyzerPanics(t *testing.T) {
	lines := diff.ChangedLineSet{{Number: 1, Text: "x"}}
	r := NewRunner(Config{MaxLineLength: 120}, nil,
		&stubAnalyzer{name: "first", findings: []Finding{{Line: 1, Rule: "A", Severity: SeverityInfo}}},
		&panicAnalyzer{},
		&stubAnalyzer{name: "last", findings: []Finding{{Line: 1, Rule: "B", Severity: SeverityWarning}}},
	)

	fs := r.File("f.go", lines)
	if len(fs) != 2 {
		t.Fatalf("findings = %d, want 2 (panic must not drop others)", len(fs))
	}
	if fs[0].Rule != "A" || fs[1].Rule != "B" {
		t.Errorf("registration order not preserved: %v", fs)
	}
}

func TestRunner_SortsByLineStable(t *testing.T) {
	lines := diff.ChangedLineSet{{Number: 1, Text: "x"}}
	r := NewRunner(Config{MaxLineLength: 120}, nil,
		&stubAnalyzer{name: "first", findings: []Finding{
			{Line: 9, Rule: "F9"},
			{Line: 2, Rule: "F2"},
		}},
		&stubAnalyzer{name: "second", findings: []Finding{
			{Line: 2, Rule: "S2"},
		}},
	)

	fs := r.File("f.go", lines)
	want := []string{"F2", "S2", "F9"}
	if len(fs) != len(want) {
		t.Fatalf("findings = %d, want %d", len(fs), len(want))
	}
	for i, rule := range want {
		if fs[i].Rule != rule {
			t.Errorf("fs[%d].Rule = %s, want %s (ascending line, ties in registration order)", i, fs[i].Rule, rule)
		}
	}
}

func TestRunner_EmptyLinesProduceNoFindings(t *testing.T) {
	r := NewRunner(Config{MaxLineLength: 120}, nil)
	if fs := r.File("binary.bin", nil); fs != nil {
		t.Errorf("expected nil findings for empty changed-line set, got %v", fs)
	}
}

func TestRunner_AllMergesInInputOrder(t *testing.T) {
	r := NewRunner(Config{MaxLineLength: 120}, nil,
		&stubAnalyzer{name: "only", findings: []Finding{{Line: 1, Rule: "R"}}},
	)

	files := []FileInput{
		{Path: "b.go", Lines: diff.ChangedLineSet{{Number: 1, Text: "x"}}},
		{Path: "a.go", Lines: diff.ChangedLineSet{{Number: 1, Text: "y"}}},
		{Path: "empty.go", Lines: nil},
	}

	fs := r.All(context.Background(), files)
	if len(fs) != 2 {
		t.Fatalf("findings = %d, want 2", len(fs))
	}
	if fs[0].Path != "b.go" || fs[1].Path != "a.go" {
		t.Errorf("merge order should follow input order, got %s then %s", fs[0].Path, fs[1].Path)
	}
}

func TestDefault_RegistrationOrder(t *testing.T) {
	names := []string{"lint", "security", "complexity"}
	analyzers := Default()
	if len(analyzers) != len(names) {
		t.Fatalf("analyzers = %d, want %d", len(analyzers), len(names))
	}
	for i, want := range names {
		if analyzers[i].Name() != want {
			t.Errorf("analyzers[%d] = %s, want %s", i, analyzers[i].Name(), want)
		}
	}
}

func TestMeetsThreshold(t *testing.T) {
	if !MeetsThreshold(SeverityError, "warning") {
		t.Error("error should meet warning threshold")
	}
	if MeetsThreshold(SeverityInfo, "warning") {
		t.Error("info should not meet warning threshold")
	}
	if MeetsThreshold(SeverityError, "none") {
		t.Error("threshold none never matches")
	}
}
