package analyze

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/gatekeeper/internal/diff"
)

// maxConcurrency limits parallel per-file analysis.
const maxConcurrency = 4

// FileInput is one file's changed-line set, ready for analysis.
type FileInput struct {
	Path  string
	Lines diff.ChangedLineSet
}

// Runner invokes the registered analyzers over changed-line sets. Each
// analyzer invocation is isolated: a panic in one analyzer is recorded as
// a degraded-analyzer event and never drops findings from the others.
type Runner struct {
	analyzers []Analyzer
	cfg       Config
	log       *zap.Logger
}

// NewRunner returns a Runner over the given analyzers, or the default set
// when none are supplied.
func NewRunner(cfg Config, log *zap.Logger, analyzers ...Analyzer) *Runner {
	if len(analyzers) == 0 {
		analyzers = Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{analyzers: analyzers, cfg: cfg, log: log}
}

// File runs every applicable analyzer over one file's changed lines.
// Findings are collected in analyzer-registration order, then stably
// re-sorted by ascending line number.
func (r *Runner) File(path string, lines diff.ChangedLineSet) []Finding {
	if len(lines) == 0 {
		return nil
	}

	lang := diff.Language(path)
	var findings []Finding
	for _, a := range r.analyzers {
		if !a.Applies(lang) {
			continue
		}
		findings = append(findings, r.invoke(a, path, lang, lines)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Line < findings[j].Line
	})
	return findings
}

// invoke runs one analyzer, converting a panic into a logged
// degraded-analyzer event with zero findings.
func (r *Runner) invoke(a Analyzer, path, lang string, lines diff.ChangedLineSet) (findings []Finding) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Warn("analyzer failed, continuing without its findings",
				zap.String("analyzer", a.Name()),
				zap.String("path", path),
				zap.Any("panic", rec))
			findings = nil
		}
	}()
	return a.Analyze(path, lang, lines, r.cfg)
}

// All analyzes every file concurrently with bounded parallelism and merges
// the per-file results in input order. Analyzer executions only read the
// immutable changed-line sets, so no synchronization beyond the merge is
// needed.
func (r *Runner) All(ctx context.Context, files []FileInput) []Finding {
	results := make([][]Finding, len(files))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			results[i] = r.File(f.Path, f.Lines)
			return nil
		})
	}
	_ = g.Wait() // per-analyzer failures are absorbed in invoke

	var all []Finding
	for _, fs := range results {
		all = append(all, fs...)
	}
	return all
}
