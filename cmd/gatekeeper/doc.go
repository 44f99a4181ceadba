// Gatekeeper reviews pull requests automatically. It parses the unified
// diff of each changed file, runs lint, security, and complexity checks
// against only the changed lines, and aggregates the findings into a
// single review with severity counts and capped inline comments.
//
// It runs in two modes: a GitHub App webhook server that reviews pull
// requests as they are opened or updated, and a local CLI that reviews
// git diffs or patch files with deterministic exit codes suitable for
// CI gating.
//
// Usage:
//
//	gatekeeper serve                      # run the webhook server
//	gatekeeper review staged              # review staged changes
//	gatekeeper review unstaged            # review working tree changes
//	gatekeeper review range origin/main..HEAD  # review a revision range
//	gatekeeper review patch changes.diff  # review a saved diff
//
// See https://github.com/dshills/gatekeeper for full documentation.
package main
