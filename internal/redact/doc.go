// Package redact detects and masks secret-like tokens in text.
package redact
