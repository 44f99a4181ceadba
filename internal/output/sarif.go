package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/gatekeeper/internal/analyze"
	"github.com/dshills/gatekeeper/internal/review"
)

// SARIFWriter outputs findings in SARIF v2.1.0 format for upload to code
// scanning services.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, rev *review.Review) error {
	log := buildSARIF(rev)
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}

func buildSARIF(rev *review.Review) sarifLog {
	seenRules := make(map[string]bool)
	var rules []sarifRule
	results := make([]sarifResult, 0, len(rev.Findings))

	for _, f := range rev.Findings {
		level := sarifLevel(f.Severity)

		if !seenRules[f.Rule] {
			seenRules[f.Rule] = true
			rules = append(rules, sarifRule{
				ID:               f.Rule,
				ShortDescription: sarifMessage{Text: f.Message},
				DefaultConfig:    sarifDefaultConfig{Level: level},
			})
		}

		results = append(results, sarifResult{
			RuleID:  f.Rule,
			Level:   level,
			Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: f.Path},
					Region:           sarifRegion{StartLine: f.Line},
				},
			}},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           "gatekeeper",
					Version:        "1.0",
					InformationURI: "https://github.com/dshills/gatekeeper",
					Rules:          rules,
				},
			},
			Results: results,
		}},
	}
}

func sarifLevel(s analyze.Severity) string {
	switch s {
	case analyze.SeverityError:
		return "error"
	case analyze.SeverityWarning:
		return "warning"
	case analyze.SeverityInfo:
		return "note"
	default:
		return "none"
	}
}
