package analyze

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dshills/gatekeeper/internal/diff"
)

// lintRule is one entry of the lint rule table. Exactly one of Pattern or
// Check is set. Langs limits the rule to specific languages; empty means
// the rule applies to every file.
type lintRule struct {
	ID       string
	Severity Severity
	Langs    []string
	Pattern  *regexp.Regexp
	Check    func(text string, cfg Config) bool
	Message  func(text string, cfg Config) string
}

var lintRules = []lintRule{
	{
		ID:       "TRAILING_WHITESPACE",
		Severity: SeverityInfo,
		Check: func(text string, _ Config) bool {
			return strings.TrimRight(text, " \t") != text
		},
		Message: staticMessage("Line has trailing whitespace."),
	},
	{
		ID:       "LINE_TOO_LONG",
		Severity: SeverityWarning,
		Check: func(text string, cfg Config) bool {
			return len(text) > cfg.MaxLineLength
		},
		Message: func(text string, cfg Config) string {
			return fmt.Sprintf("Line length is %d characters (limit: %d).", len(text), cfg.MaxLineLength)
		},
	},
	{
		ID:       "TODO_COMMENT",
		Severity: SeverityInfo,
		Pattern:  regexp.MustCompile(`(?i)\b(TODO|FIXME|XXX)\b`),
		Message:  staticMessage("TODO/FIXME marker found in changed line."),
	},
	{
		ID:       "DEBUG_PRINT",
		Severity: SeverityWarning,
		Langs:    []string{"python"},
		Pattern:  regexp.MustCompile(`^\s*print\(`),
		Message:  staticMessage("Debug print statement found in changed line."),
	},
	{
		ID:       "BARE_EXCEPT",
		Severity: SeverityWarning,
		Langs:    []string{"python"},
		Pattern:  regexp.MustCompile(`^\s*except\s*:`),
		Message:  staticMessage("Bare except catches every exception, including KeyboardInterrupt."),
	},
	{
		ID:       "TAB_INDENT",
		Severity: SeverityWarning,
		Langs:    []string{"python"},
		Check: func(text string, _ Config) bool {
			indent := text[:len(text)-len(strings.TrimLeft(text, " \t"))]
			return strings.Contains(indent, "\t")
		},
		Message: staticMessage("Tab character used for indentation in Python code."),
	},
	{
		ID:       "DEBUG_LOG",
		Severity: SeverityWarning,
		Langs:    []string{"javascript", "typescript"},
		Pattern:  regexp.MustCompile(`\bconsole\.log\(`),
		Message:  staticMessage("Debug console.log statement found in changed line."),
	},
}

func staticMessage(msg string) func(string, Config) string {
	return func(string, Config) string { return msg }
}

// LintAnalyzer runs per-line style checks against the lint rule table.
type LintAnalyzer struct{}

func (a *LintAnalyzer) Name() string { return "lint" }

// Applies returns true for every file; individual rules narrow by language.
func (a *LintAnalyzer) Applies(string) bool { return true }

func (a *LintAnalyzer) Analyze(path, lang string, lines diff.ChangedLineSet, cfg Config) []Finding {
	var findings []Finding
	for _, cl := range lines {
		for _, rule := range lintRules {
			if !ruleAppliesTo(rule.Langs, lang) {
				continue
			}
			matched := false
			if rule.Pattern != nil {
				matched = rule.Pattern.MatchString(cl.Text)
			} else {
				matched = rule.Check(cl.Text, cfg)
			}
			if !matched {
				continue
			}
			findings = append(findings, Finding{
				Path:     path,
				Line:     cl.Number,
				Severity: rule.Severity,
				Rule:     rule.ID,
				Message:  rule.Message(cl.Text, cfg),
				Snippet:  snippet(cl.Text),
				Analyzer: a.Name(),
			})
		}
	}
	return findings
}

func ruleAppliesTo(langs []string, lang string) bool {
	if len(langs) == 0 {
		return true
	}
	for _, l := range langs {
		if l == lang {
			return true
		}
	}
	return false
}
