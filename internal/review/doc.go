// Package review aggregates analyzer findings into the single Review
// artifact posted once per pull-request event.
//
// [Run] is the pure pipeline: per-file changed-line extraction, the
// analyzer fan-out, an optional rules pack (severity overrides and
// disabled rules, JSON or YAML), and aggregation. [Build] computes
// severity counts over the full finding set, renders the markdown summary
// (scope, severity breakdown, per-file table, capped findings table), and
// selects at most MaxInlineComments inline comments ordered by severity
// rank, path, and line. Truncated findings stay in the counts; they are
// never dropped silently.
package review
