// Package output formats reviews for display or machine consumption.
//
// Four formats are supported:
//   - text     — human-readable terminal output (default)
//   - json     — full structured review
//   - markdown — the summary body as it would be posted to the pull request
//   - sarif    — SARIF v2.1.0 for upload to code scanning services
//
// Use [GetWriter] to obtain a [Writer] for a given format string, or
// [WriteReview] to handle destination selection.
package output
