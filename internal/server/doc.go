// Package server hosts the GitHub webhook endpoint. It validates the
// HMAC signature of each delivery, filters for reviewable pull-request
// events, and drives one review per event: fetch the PR's file patches,
// run the analysis pipeline, post the result back as a single review.
package server
