package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/gatekeeper/internal/config"
	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/review"
)

func resetFlags() {
	flagFormat = ""
	flagOut = ""
	flagFailOn = ""
	flagMaxLineLength = 0
	flagMaxInlineComments = -1
	flagRules = ""
	exitCode = ExitSuccess
}

func TestBuildOverrides(t *testing.T) {
	resetFlags()
	flagFormat = "json"
	flagFailOn = "warning"
	flagMaxLineLength = 100
	flagMaxInlineComments = 0

	m := buildOverrides()
	want := map[string]string{
		"format":            "json",
		"failOn":            "warning",
		"maxLineLength":     "100",
		"maxInlineComments": "0",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("overrides[%q] = %q, want %q", k, m[k], v)
		}
	}
	if _, ok := m["rulesFile"]; ok {
		t.Error("unset rules flag should not produce an override")
	}
}

func TestBuildOverrides_Empty(t *testing.T) {
	resetFlags()
	if m := buildOverrides(); len(m) != 0 {
		t.Errorf("expected no overrides, got %v", m)
	}
}

func testPatchFiles() []diff.FilePatch {
	return []diff.FilePatch{
		{
			Path:   "app.py",
			Patch:  "@@ -1,2 +1,3 @@\n import sys\n+import os\n+eval(x)\n",
			Status: diff.StatusModified,
		},
	}
}

func TestRunReview_WritesOutput(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()

	out := filepath.Join(t.TempDir(), "review.json")
	flagOut = out

	cfg := config.Default()
	cfg.Review.Format = "json"
	runReview(testPatchFiles(), cfg)

	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var rev review.Review
	if err := json.Unmarshal(data, &rev); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if rev.SeverityCounts.Error != 1 {
		t.Errorf("error count = %d, want 1", rev.SeverityCounts.Error)
	}
	if rev.Stats.ChangedLines != 2 {
		t.Errorf("changed lines = %d, want 2", rev.Stats.ChangedLines)
	}
}

func TestRunReview_FailOnThreshold(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()
	flagOut = filepath.Join(t.TempDir(), "review.json")

	cfg := config.Default()
	cfg.Review.Format = "json"
	cfg.Review.FailOn = "error"
	runReview(testPatchFiles(), cfg)

	if exitCode != ExitFindings {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitFindings)
	}
}

func TestRunReview_InvalidConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()

	cfg := config.Default()
	cfg.Review.MaxLineLength = 0
	runReview(testPatchFiles(), cfg)

	if exitCode != ExitUsageError {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitUsageError)
	}
}

func TestRunReview_RulesDisable(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags()

	rulesPath := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(rulesPath, []byte(`{"disabled":["EVAL_USAGE"]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(t.TempDir(), "review.json")
	flagOut = out

	cfg := config.Default()
	cfg.Review.Format = "json"
	cfg.Review.FailOn = "error"
	cfg.Review.RulesFile = rulesPath
	runReview(testPatchFiles(), cfg)

	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var rev review.Review
	if err := json.Unmarshal(data, &rev); err != nil {
		t.Fatal(err)
	}
	if rev.SeverityCounts.Error != 0 {
		t.Errorf("error count = %d, want 0 with EVAL_USAGE disabled", rev.SeverityCounts.Error)
	}
}
