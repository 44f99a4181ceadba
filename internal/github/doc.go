// Package github implements the GitHub App REST client: App JWT
// signing, installation token exchange, pull-request file listing,
// and posting the aggregated review with inline comments.
package github
