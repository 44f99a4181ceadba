package analyze

import (
	"regexp"

	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/redact"
)

// securityRule is one entry of the security rule table: a dangerous call
// pattern and its declared risk level. Exclude suppresses the rule when it
// also matches, for patterns with a safe variant.
type securityRule struct {
	ID       string
	Severity Severity
	Langs    []string
	Pattern  *regexp.Regexp
	Exclude  *regexp.Regexp
	Message  string
}

var securityRules = []securityRule{
	{
		ID:       "EVAL_USAGE",
		Severity: SeverityError,
		Pattern:  regexp.MustCompile(`\beval\s*\(`),
		Message:  "Avoid eval() on changed lines; use safer parsing.",
	},
	{
		ID:       "EXEC_USAGE",
		Severity: SeverityError,
		Langs:    []string{"python"},
		Pattern:  regexp.MustCompile(`\bexec\s*\(`),
		Message:  "Avoid exec() on changed lines.",
	},
	{
		ID:       "SUBPROCESS_SHELL",
		Severity: SeverityError,
		Langs:    []string{"python"},
		Pattern:  regexp.MustCompile(`\bsubprocess\.\w+\(.*shell\s*=\s*True`),
		Message:  "subprocess with shell=True on changed line may enable command injection.",
	},
	{
		ID:       "SHELL_CONCAT",
		Severity: SeverityError,
		Pattern:  regexp.MustCompile(`\b(os\.system|subprocess\.(?:call|run|Popen)|child_process\.exec|exec\.Command)\s*\([^)]*(?:\+|%\s|\.format\()`),
		Message:  "String concatenation into a process execution call is shell-injection-prone.",
	},
	{
		ID:       "PICKLE_LOAD",
		Severity: SeverityWarning,
		Langs:    []string{"python"},
		Pattern:  regexp.MustCompile(`\bpickle\.loads?\(`),
		Message:  "pickle.load/loads can execute arbitrary code on untrusted input.",
	},
	{
		ID:       "UNSAFE_YAML_LOAD",
		Severity: SeverityWarning,
		Langs:    []string{"python"},
		Pattern:  regexp.MustCompile(`\byaml\.load\s*\(`),
		Exclude:  regexp.MustCompile(`safe_load|SafeLoader`),
		Message:  "Use yaml.safe_load instead of yaml.load.",
	},
}

// SecurityAnalyzer scans changed lines of recognized source files for
// dangerous call patterns and hard-coded secrets.
type SecurityAnalyzer struct{}

func (a *SecurityAnalyzer) Name() string { return "security" }

// Applies restricts the analyzer to files with a recognized source
// extension; plain text and unknown formats are skipped silently.
func (a *SecurityAnalyzer) Applies(lang string) bool { return lang != "text" }

func (a *SecurityAnalyzer) Analyze(path, lang string, lines diff.ChangedLineSet, _ Config) []Finding {
	var findings []Finding
	for _, cl := range lines {
		for _, rule := range securityRules {
			if !ruleAppliesTo(rule.Langs, lang) {
				continue
			}
			if !rule.Pattern.MatchString(cl.Text) {
				continue
			}
			if rule.Exclude != nil && rule.Exclude.MatchString(cl.Text) {
				continue
			}
			findings = append(findings, Finding{
				Path:     path,
				Line:     cl.Number,
				Severity: rule.Severity,
				Rule:     rule.ID,
				Message:  rule.Message,
				Snippet:  snippet(cl.Text),
				Analyzer: a.Name(),
			})
		}

		if redact.ContainsSecret(cl.Text) {
			findings = append(findings, Finding{
				Path:     path,
				Line:     cl.Number,
				Severity: SeverityError,
				Rule:     "HARDCODED_SECRET",
				Message:  "Changed line appears to contain a hard-coded secret or credential.",
				Snippet:  snippet(cl.Text),
				Analyzer: a.Name(),
			})
		}
	}
	return findings
}
