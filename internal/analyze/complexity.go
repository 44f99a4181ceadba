package analyze

import (
	"regexp"
	"strings"

	"github.com/dshills/gatekeeper/internal/diff"
)

// Complexity heuristics. These are lightweight proxies for control-flow
// analysis: nesting-increasing keywords and indentation depth stand in
// for a real nesting measure, so false positives and negatives are
// acceptable.
const (
	// deepNestIndent is the indent width (tab = 4 columns) at which a
	// control-flow line is considered deeply nested.
	deepNestIndent = 16
	// densityThreshold is the cumulative count of nesting-increasing
	// keywords within one contiguous run of changed lines that flags the
	// run as a complexity hotspot.
	densityThreshold = 5
	// booleanDensity is the number of boolean operators on one line that
	// flags a dense boolean expression.
	booleanDensity = 3
)

var (
	nestingKeywordRe = regexp.MustCompile(`^\s*(if|elif|else if|for|while|switch|case|try|except|catch|with)\b`)
	nestedTernaryRe  = regexp.MustCompile(`\?.*:.*\?.*:`)
)

// ComplexityAnalyzer flags changed lines whose cumulative nesting estimate
// crosses a fixed threshold.
type ComplexityAnalyzer struct{}

func (a *ComplexityAnalyzer) Name() string { return "complexity" }

func (a *ComplexityAnalyzer) Applies(string) bool { return true }

func (a *ComplexityAnalyzer) Analyze(path, lang string, lines diff.ChangedLineSet, _ Config) []Finding {
	var findings []Finding

	// Cumulative nesting-token count over the current contiguous run of
	// changed lines. A gap in line numbers starts a new window.
	window := 0
	prevLine := -2

	for _, cl := range lines {
		text := cl.Text
		stripped := strings.TrimSpace(text)
		if stripped == "" {
			prevLine = cl.Number
			continue
		}

		if cl.Number != prevLine+1 {
			window = 0
		}
		prevLine = cl.Number

		boolOps := strings.Count(stripped, " and ") + strings.Count(stripped, " or ") +
			strings.Count(stripped, "&&") + strings.Count(stripped, "||")
		if boolOps >= booleanDensity {
			findings = append(findings, Finding{
				Path:     path,
				Line:     cl.Number,
				Severity: SeverityWarning,
				Rule:     "COMPLEX_BOOLEAN",
				Message:  "Changed line has a dense boolean expression; consider extracting named sub-expressions.",
				Snippet:  snippet(text),
				Analyzer: a.Name(),
			})
		}

		if nestingKeywordRe.MatchString(text) {
			window++
			if indentColumns(text) >= deepNestIndent {
				findings = append(findings, Finding{
					Path:     path,
					Line:     cl.Number,
					Severity: SeverityWarning,
					Rule:     "DEEP_NESTING",
					Message:  "Changed control-flow line appears deeply nested; consider refactoring.",
					Snippet:  snippet(text),
					Analyzer: a.Name(),
				})
			}
			if window == densityThreshold {
				findings = append(findings, Finding{
					Path:     path,
					Line:     cl.Number,
					Severity: SeverityWarning,
					Rule:     "CONTROL_FLOW_DENSITY",
					Message:  "Changed block introduces many branch/loop constructs; consider splitting it up.",
					Snippet:  snippet(text),
					Analyzer: a.Name(),
				})
				window = 0
			}
		}

		if (lang == "javascript" || lang == "typescript") && nestedTernaryRe.MatchString(stripped) {
			findings = append(findings, Finding{
				Path:     path,
				Line:     cl.Number,
				Severity: SeverityWarning,
				Rule:     "NESTED_TERNARY",
				Message:  "Nested ternary detected on changed line; consider clearer control flow.",
				Snippet:  snippet(text),
				Analyzer: a.Name(),
			})
		}
	}

	return findings
}

// indentColumns measures leading whitespace in columns, counting a tab as
// 4 columns.
func indentColumns(text string) int {
	cols := 0
	for _, r := range text {
		switch r {
		case ' ':
			cols++
		case '\t':
			cols += 4
		default:
			return cols
		}
	}
	return cols
}
