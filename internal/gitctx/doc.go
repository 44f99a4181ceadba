// Package gitctx gathers local diffs from git for CLI review runs. It
// shells out to git and splits the raw output into the same per-file
// patches the GitHub API delivers for a pull request.
package gitctx
