// Package analyze contains the line-level static checks that run over a
// pull request's changed lines.
//
// Three analyzers implement the shared [Analyzer] capability — lint,
// security, and complexity — each driven by an explicit rule table
// (pattern, severity, message) so rules are testable and extensible
// without touching control flow. They are registered in a fixed order by
// [Default]; [Runner] fans out over files with bounded concurrency and
// isolates analyzer panics so one failing check never aborts a file's
// analysis.
package analyze
