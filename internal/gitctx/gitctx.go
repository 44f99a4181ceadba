package gitctx

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/dshills/gatekeeper/internal/diff"
)

// Unstaged returns the file patches of working tree vs index.
func Unstaged() ([]diff.FilePatch, error) {
	out, err := gitOutput("diff")
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}
	return SplitPatches(out), nil
}

// Staged returns the file patches of index vs HEAD.
func Staged() ([]diff.FilePatch, error) {
	out, err := gitOutput("diff", "--cached")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached: %w", err)
	}
	return SplitPatches(out), nil
}

// Range returns the file patches for a revision range. A two-dot range
// is widened to three dots so the diff is taken against the merge base,
// matching how a pull request is compared to its target branch.
func Range(revRange string) ([]diff.FilePatch, error) {
	diffRange := revRange
	if strings.Contains(revRange, "..") && !strings.Contains(revRange, "...") {
		diffRange = strings.Replace(revRange, "..", "...", 1)
	}
	out, err := gitOutput("diff", diffRange)
	if err != nil {
		return nil, fmt.Errorf("git diff %s: %w", revRange, err)
	}
	return SplitPatches(out), nil
}

// SplitPatches splits raw git diff output into per-file patches with
// the path and change status of each section.
func SplitPatches(raw string) []diff.FilePatch {
	var patches []diff.FilePatch
	for _, section := range splitSections(raw) {
		path, status := sectionMeta(section)
		if path == "" {
			continue
		}
		patches = append(patches, diff.FilePatch{
			Path:   path,
			Patch:  section,
			Status: status,
		})
	}
	return patches
}

func splitSections(raw string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	if s := current.String(); strings.TrimSpace(s) != "" {
		sections = append(sections, s)
	}
	return sections
}

func sectionMeta(section string) (string, diff.Status) {
	status := diff.StatusModified
	var path string
	for _, line := range strings.Split(section, "\n") {
		switch {
		case strings.HasPrefix(line, "new file mode"):
			status = diff.StatusAdded
		case strings.HasPrefix(line, "deleted file mode"):
			status = diff.StatusRemoved
		case strings.HasPrefix(line, "rename to "):
			status = diff.StatusRenamed
			path = strings.TrimPrefix(line, "rename to ")
		case strings.HasPrefix(line, "+++ b/"):
			path = strings.TrimPrefix(line, "+++ b/")
		case strings.HasPrefix(line, "--- a/") && path == "":
			// Deletions have +++ /dev/null; fall back to the old path.
			path = strings.TrimPrefix(line, "--- a/")
		}
	}
	return path, status
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
