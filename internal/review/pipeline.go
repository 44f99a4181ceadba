package review

import (
	"context"

	"go.uber.org/zap"

	"github.com/dshills/gatekeeper/internal/analyze"
	"github.com/dshills/gatekeeper/internal/diff"
)

// PipelineConfig is the immutable configuration of one run. MaxLineLength
// and MaxInlineComments are required; there are no defaults inside the
// pipeline.
type PipelineConfig struct {
	MaxLineLength     int
	MaxInlineComments int
	MaxTableRows      int
}

// Validate rejects configuration under which no bounded Review can be
// produced. It runs before any parsing begins.
func (c PipelineConfig) Validate() error {
	if c.MaxLineLength <= 0 {
		return &ConfigError{Field: "maxLineLength", Reason: "must be a positive integer"}
	}
	if c.MaxInlineComments < 0 {
		return &ConfigError{Field: "maxInlineComments", Reason: "must be zero or a positive integer"}
	}
	return nil
}

// Run executes the full diff-to-findings-to-review pipeline for one
// triggering event: parse each file's patch into its changed-line set, run
// the analyzer set over every file, apply the optional rules pack, and
// aggregate everything into a single Review.
//
// Per-file parse failures skip that file and are logged; the run continues
// and still produces a Review for the files that parsed. The only error
// returned is a *ConfigError.
func Run(ctx context.Context, pullRequestID string, files []diff.FilePatch, cfg PipelineConfig, rules *Rules, log *zap.Logger) (*Review, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		inputs []analyze.FileInput
		stats  Stats
	)
	for _, f := range files {
		if f.Status == diff.StatusRemoved {
			// Deleted code is not new code surface.
			continue
		}
		lines, err := diff.ChangedLines(f.Patch)
		if err != nil {
			log.Warn("skipping file with unparseable patch",
				zap.String("path", f.Path),
				zap.Error(err))
			stats.FilesSkipped++
			continue
		}
		if len(lines) == 0 {
			// Binary patches, pure deletions, renames without
			// modification. A normal zero-finding case.
			continue
		}
		stats.FilesAnalyzed++
		stats.ChangedLines += len(lines)
		inputs = append(inputs, analyze.FileInput{Path: f.Path, Lines: lines})
	}

	runner := analyze.NewRunner(analyze.Config{MaxLineLength: cfg.MaxLineLength}, log)
	findings := runner.All(ctx, inputs)
	findings = rules.Apply(findings)

	return Build(pullRequestID, findings, stats, BuildConfig{
		MaxInlineComments: cfg.MaxInlineComments,
		MaxTableRows:      cfg.MaxTableRows,
	}), nil
}
