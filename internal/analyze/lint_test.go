package analyze

import (
	"strings"
	"testing"

	"github.com/dshills/gatekeeper/internal/diff"
)

func lintOne(t *testing.T, path, text string, cfg Config) []Finding {
	t.Helper()
	a := &LintAnalyzer{}
	return a.Analyze(path, diff.Language(path), diff.ChangedLineSet{{Number: 1, Text: text}}, cfg)
}

func hasRule(findings []Finding, rule string) bool {
	for _, f := range findings {
		if f.Rule == rule {
			return true
		}
	}
	return false
}

func TestLint_TrailingWhitespace(t *testing.T) {
	cfg := Config{MaxLineLength: 120}
	if fs := lintOne(t, "a.go", "x := 1  ", cfg); !hasRule(fs, "TRAILING_WHITESPACE") {
		t.Error("expected TRAILING_WHITESPACE")
	}
	if fs := lintOne(t, "a.go", "x := 1", cfg); hasRule(fs, "TRAILING_WHITESPACE") {
		t.Error("unexpected TRAILING_WHITESPACE")
	}
	for _, f := range lintOne(t, "a.go", "x := 1  ", cfg) {
		if f.Rule == "TRAILING_WHITESPACE" && f.Severity != SeverityInfo {
			t.Errorf("severity = %q, want info", f.Severity)
		}
	}
}

func TestLint_LineTooLong(t *testing.T) {
	cfg := Config{MaxLineLength: 20}
	long := strings.Repeat("a", 30)
	fs := lintOne(t, "a.py", long, cfg)
	if !hasRule(fs, "LINE_TOO_LONG") {
		t.Fatal("expected LINE_TOO_LONG")
	}
	for _, f := range fs {
		if f.Rule != "LINE_TOO_LONG" {
			continue
		}
		if f.Severity != SeverityWarning {
			t.Errorf("severity = %q, want warning", f.Severity)
		}
		if !strings.Contains(f.Message, "30") || !strings.Contains(f.Message, "20") {
			t.Errorf("message missing lengths: %q", f.Message)
		}
	}
	if fs := lintOne(t, "a.py", strings.Repeat("a", 20), cfg); hasRule(fs, "LINE_TOO_LONG") {
		t.Error("line at the limit should not be flagged")
	}
}

func TestLint_LanguageScopedRules(t *testing.T) {
	cfg := Config{MaxLineLength: 120}

	if fs := lintOne(t, "a.py", "print(value)", cfg); !hasRule(fs, "DEBUG_PRINT") {
		t.Error("expected DEBUG_PRINT for python")
	}
	if fs := lintOne(t, "a.go", "print(value)", cfg); hasRule(fs, "DEBUG_PRINT") {
		t.Error("DEBUG_PRINT should not apply outside python")
	}

	if fs := lintOne(t, "a.py", "except:", cfg); !hasRule(fs, "BARE_EXCEPT") {
		t.Error("expected BARE_EXCEPT")
	}
	if fs := lintOne(t, "a.py", "except ValueError:", cfg); hasRule(fs, "BARE_EXCEPT") {
		t.Error("typed except should not be flagged")
	}

	if fs := lintOne(t, "a.py", "\tx = 1", cfg); !hasRule(fs, "TAB_INDENT") {
		t.Error("expected TAB_INDENT")
	}

	if fs := lintOne(t, "a.ts", "console.log(v)", cfg); !hasRule(fs, "DEBUG_LOG") {
		t.Error("expected DEBUG_LOG for typescript")
	}
}

func TestLint_TodoMarker(t *testing.T) {
	cfg := Config{MaxLineLength: 120}
	for _, text := range []string{"// TODO: fix", "# fixme later", "/* XXX */"} {
		if fs := lintOne(t, "a.go", text, cfg); !hasRule(fs, "TODO_COMMENT") {
			t.Errorf("expected TODO_COMMENT for %q", text)
		}
	}
	if fs := lintOne(t, "a.go", "mastodon := true", cfg); hasRule(fs, "TODO_COMMENT") {
		t.Error("substring inside a word should not match")
	}
}
