package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/gatekeeper/internal/analyze"
	"github.com/dshills/gatekeeper/internal/config"
	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/gitctx"
	"github.com/dshills/gatekeeper/internal/output"
	"github.com/dshills/gatekeeper/internal/review"
)

// Shared review flags
var (
	flagFormat            string
	flagOut               string
	flagFailOn            string
	flagMaxLineLength     int
	flagMaxInlineComments int
	flagRules             string
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagFormat, "format", "", "Output format (text, json, markdown, sarif)")
	cmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "", "Fail on severity threshold (none, info, warning, error)")
	cmd.Flags().IntVar(&flagMaxLineLength, "max-line-length", 0, "Line length limit for the lint analyzer")
	cmd.Flags().IntVar(&flagMaxInlineComments, "max-inline-comments", -1, "Maximum inline comments in the review")
	cmd.Flags().StringVar(&flagRules, "rules", "", "Rules file path (JSON or YAML)")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagFailOn != "" {
		m["failOn"] = flagFailOn
	}
	if flagMaxLineLength > 0 {
		m["maxLineLength"] = strconv.Itoa(flagMaxLineLength)
	}
	if flagMaxInlineComments >= 0 {
		m["maxInlineComments"] = strconv.Itoa(flagMaxInlineComments)
	}
	if flagRules != "" {
		m["rulesFile"] = flagRules
	}
	return m
}

func runReview(files []diff.FilePatch, cfg config.Config) {
	var rules *review.Rules
	if cfg.Review.RulesFile != "" {
		loaded, err := review.LoadRules(cfg.Review.RulesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading rules: %v\n", err)
			exitCode = ExitRuntimeError
			return
		}
		rules = loaded
	}

	rev, err := review.Run(context.Background(), "local", files, cfg.Pipeline(), rules, newLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return
	}

	if err := output.WriteReview(rev, cfg.Review.Format, flagOut); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		exitCode = ExitRuntimeError
		return
	}

	// Check fail-on threshold
	if cfg.Review.FailOn != "none" && cfg.Review.FailOn != "" {
		for _, f := range rev.Findings {
			if analyze.MeetsThreshold(f.Severity, cfg.Review.FailOn) {
				exitCode = ExitFindings
				return
			}
		}
	}
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review code changes",
	Long:  "Review code changes locally. Use subcommands to specify what to review.",
}

var reviewUnstagedCmd = &cobra.Command{
	Use:   "unstaged",
	Short: "Review unstaged changes (working tree vs index)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		files, err := gitctx.Unstaged()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(files, cfg)
		return nil
	},
}

var reviewStagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "Review staged changes (index vs HEAD)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		files, err := gitctx.Staged()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(files, cfg)
		return nil
	},
}

var reviewRangeCmd = &cobra.Command{
	Use:   "range <revRange>",
	Short: "Review a revision range (e.g., origin/main..HEAD)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		files, err := gitctx.Range(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}
		runReview(files, cfg)
		return nil
	},
}

var reviewPatchCmd = &cobra.Command{
	Use:   "patch [file]",
	Short: "Review a unified diff from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		var raw []byte
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading patch: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		runReview(gitctx.SplitPatches(string(raw)), cfg)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewUnstagedCmd)
	reviewCmd.AddCommand(reviewStagedCmd)
	reviewCmd.AddCommand(reviewRangeCmd)
	reviewCmd.AddCommand(reviewPatchCmd)

	for _, cmd := range []*cobra.Command{
		reviewUnstagedCmd,
		reviewStagedCmd,
		reviewRangeCmd,
		reviewPatchCmd,
	} {
		addReviewFlags(cmd)
	}
}
