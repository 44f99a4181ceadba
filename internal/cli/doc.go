// Package cli wires the cobra command tree: local review commands, the
// webhook server, and configuration management.
package cli
