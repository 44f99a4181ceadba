package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gatekeeper/internal/analyze"
)

// Rules is an optional policy pack applied to findings after the analyzers
// run and before aggregation. Rule IDs are the analyzer rule identifiers
// (e.g. LINE_TOO_LONG, EVAL_USAGE).
type Rules struct {
	SeverityOverrides map[string]string `json:"severityOverrides,omitempty" yaml:"severityOverrides,omitempty"`
	Disabled          []string          `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// LoadRules loads a rules file from disk, as YAML for .yaml/.yml paths and
// JSON otherwise. Returns nil Rules and nil error if path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}

	var rules Rules
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("parsing rules file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &rules); err != nil {
			return nil, fmt.Errorf("parsing rules file: %w", err)
		}
	}
	return &rules, nil
}

// Apply filters disabled rules and enforces severity overrides. A nil
// receiver returns findings unchanged.
func (r *Rules) Apply(findings []analyze.Finding) []analyze.Finding {
	if r == nil {
		return findings
	}

	disabled := make(map[string]bool, len(r.Disabled))
	for _, id := range r.Disabled {
		disabled[id] = true
	}

	out := make([]analyze.Finding, 0, len(findings))
	for _, f := range findings {
		if disabled[f.Rule] {
			continue
		}
		if override, ok := r.SeverityOverrides[f.Rule]; ok {
			f.Severity = analyze.Severity(override)
		}
		out = append(out, f)
	}
	return out
}
