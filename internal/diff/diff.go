package diff

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Status describes how a file changed in the pull request.
type Status string

const (
	StatusAdded    Status = "added"
	StatusModified Status = "modified"
	StatusRemoved  Status = "removed"
	StatusRenamed  Status = "renamed"
)

// FilePatch is one changed file as reported by the hosting provider:
// the path, the raw unified-diff patch text, and the change kind.
// Binary files arrive with an empty Patch.
type FilePatch struct {
	Path      string `json:"path"`
	Patch     string `json:"patch"`
	Status    Status `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// LineKind classifies a physical line within a hunk.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

// Line is one physical line of a hunk. Number is the line's position in
// the new file version; it is 0 for removed lines, which no longer exist
// there.
type Line struct {
	Kind   LineKind
	Number int
	Text   string
}

// Hunk is a contiguous diff region. Lines preserves source order.
type Hunk struct {
	OldStart int
	NewStart int
	Lines    []Line
}

// ChangedLine is one added line and its number in the new file version.
type ChangedLine struct {
	Number int
	Text   string
}

// ChangedLineSet is the ordered, deduplicated set of added lines for one
// file. It is the sole analyzer input.
type ChangedLineSet []ChangedLine

// ParseError reports a malformed patch. The file it belongs to is skipped;
// the error is never fatal to a run.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing patch: %s: %q", e.Reason, e.Line)
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse parses one file's unified-diff patch text into hunks.
//
// Lines beginning with "+" (not "+++") are added, "-" (not "---") removed,
// everything else context. New-file line numbers start at the hunk's
// declared new-start and advance on context and added lines only. The
// "\ No newline at end of file" marker and file headers are not hunk
// content. Empty patch text returns no hunks and no error.
func Parse(patchText string) ([]Hunk, error) {
	if strings.TrimSpace(patchText) == "" {
		return nil, nil
	}

	var hunks []Hunk
	var cur *Hunk
	newLine := 0

	for _, raw := range strings.Split(patchText, "\n") {
		switch {
		case strings.HasPrefix(raw, "@@"):
			m := hunkHeaderRe.FindStringSubmatch(raw)
			if m == nil {
				return nil, &ParseError{Line: raw, Reason: "malformed hunk header"}
			}
			oldStart, _ := strconv.Atoi(m[1])
			newStart, _ := strconv.Atoi(m[3])
			hunks = append(hunks, Hunk{OldStart: oldStart, NewStart: newStart})
			cur = &hunks[len(hunks)-1]
			newLine = newStart

		case cur == nil:
			// File headers and anything else before the first hunk.
			continue

		case strings.HasPrefix(raw, "+++") || strings.HasPrefix(raw, "---"):
			continue

		case strings.HasPrefix(raw, "\\"):
			// "\ No newline at end of file"
			continue

		case strings.HasPrefix(raw, "+"):
			cur.Lines = append(cur.Lines, Line{Kind: Added, Number: newLine, Text: raw[1:]})
			newLine++

		case strings.HasPrefix(raw, "-"):
			cur.Lines = append(cur.Lines, Line{Kind: Removed, Text: raw[1:]})

		default:
			text := strings.TrimPrefix(raw, " ")
			cur.Lines = append(cur.Lines, Line{Kind: Context, Number: newLine, Text: text})
			newLine++
		}
	}

	return hunks, nil
}

// ChangedLines returns the ordered set of added lines in patchText,
// deduplicated by line number. Binary and empty patches yield an empty
// set and nil error.
func ChangedLines(patchText string) (ChangedLineSet, error) {
	hunks, err := Parse(patchText)
	if err != nil {
		return nil, err
	}

	var set ChangedLineSet
	seen := make(map[int]bool)
	for _, h := range hunks {
		for _, ln := range h.Lines {
			if ln.Kind != Added || seen[ln.Number] {
				continue
			}
			seen[ln.Number] = true
			set = append(set, ChangedLine{Number: ln.Number, Text: ln.Text})
		}
	}
	return set, nil
}
