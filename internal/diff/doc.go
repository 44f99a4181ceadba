// Package diff parses unified-diff patch text into structured hunks and
// extracts the set of lines added by a change.
//
// Input is the per-file patch text GitHub attaches to each entry of the
// pull-request files listing. [Parse] returns the hunks of one patch;
// [ChangedLines] flattens them into the ordered, deduplicated set of
// (new-file line number, text) pairs that feed the analyzers. Binary and
// empty patches yield an empty set, not an error; a malformed hunk header
// yields a [*ParseError] so the caller can skip that file and continue.
package diff
