package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gatekeeper/internal/config"
	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/review"
)

const testSecret = "hunter2"

// fakeGitHub records calls and serves canned responses.
type fakeGitHub struct {
	files      []diff.FilePatch
	posted     *review.Review
	postedSHA  string
	tokenCalls int
}

func (f *fakeGitHub) InstallationToken(_ context.Context, _ int64) (string, error) {
	f.tokenCalls++
	return "ghs_fake", nil
}

func (f *fakeGitHub) PullRequestFiles(_ context.Context, token, _, _ string, _ int) ([]diff.FilePatch, error) {
	if token != "ghs_fake" {
		return nil, fmt.Errorf("unexpected token %q", token)
	}
	return f.files, nil
}

func (f *fakeGitHub) PostReview(_ context.Context, _, _, _ string, _ int, sha string, rev *review.Review) error {
	f.posted = rev
	f.postedSHA = sha
	return nil
}

func testServer(t *testing.T, gh *fakeGitHub) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.WebhookSecret = testSecret
	srv, err := New(cfg, gh, nil)
	require.NoError(t, err)
	return srv
}

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func prPayload(action string, draft bool) []byte {
	payload := map[string]any{
		"action": action,
		"pull_request": map[string]any{
			"id":     987654,
			"number": 8,
			"draft":  draft,
			"head":   map[string]any{"sha": "abc123"},
		},
		"repository":   map[string]any{"full_name": "acme/widgets"},
		"installation": map[string]any{"id": 77},
	}
	body, _ := json.Marshal(payload)
	return body
}

func deliver(t *testing.T, srv *Server, body []byte, event, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-Hub-Signature-256", signature)
	rec := httptest.NewRecorder()
	srv.handleWebhook(rec, req)
	return rec
}

func TestWebhook_RunsReview(t *testing.T) {
	gh := &fakeGitHub{files: []diff.FilePatch{
		{Path: "app.py", Patch: "@@ -1,2 +1,3 @@\n context\n+import os\n+eval(x)\n", Status: diff.StatusModified},
	}}
	srv := testServer(t, gh)

	body := prPayload("opened", false)
	rec := deliver(t, srv, body, "pull_request", sign(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var res webhookResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.OK)
	assert.Equal(t, "acme/widgets", res.Repository)
	assert.Equal(t, 1, res.FilesAnalyzed)
	assert.Equal(t, 2, res.ChangedLinesAnalyzed)
	assert.Greater(t, res.Findings, 0)
	assert.NotEmpty(t, res.ReviewID)

	require.NotNil(t, gh.posted)
	assert.Equal(t, "abc123", gh.postedSHA)
	assert.Equal(t, "987654", gh.posted.PullRequestID)
	assert.Equal(t, 1, gh.posted.SeverityCounts.Error)
}

func TestWebhook_BadSignature(t *testing.T) {
	gh := &fakeGitHub{}
	srv := testServer(t, gh)

	body := prPayload("opened", false)
	rec := deliver(t, srv, body, "pull_request", "sha256=deadbeef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, gh.tokenCalls)

	rec = deliver(t, srv, body, "pull_request", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhook_MissingSecret(t *testing.T) {
	cfg := config.Default()
	srv, err := New(cfg, &fakeGitHub{}, nil)
	require.NoError(t, err)

	body := prPayload("opened", false)
	rec := deliver(t, srv, body, "pull_request", sign(body))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhook_SkipsUnsupported(t *testing.T) {
	tests := []struct {
		name   string
		event  string
		action string
		draft  bool
	}{
		{name: "other event", event: "push", action: "opened"},
		{name: "closed action", event: "pull_request", action: "closed"},
		{name: "labeled action", event: "pull_request", action: "labeled"},
		{name: "draft PR", event: "pull_request", action: "opened", draft: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh := &fakeGitHub{}
			srv := testServer(t, gh)

			body := prPayload(tt.action, tt.draft)
			rec := deliver(t, srv, body, tt.event, sign(body))
			require.Equal(t, http.StatusOK, rec.Code)

			var res webhookResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.NotEmpty(t, res.Skipped)
			assert.Equal(t, 0, gh.tokenCalls)
		})
	}
}

func TestWebhook_MalformedPayload(t *testing.T) {
	srv := testServer(t, &fakeGitHub{})

	body := []byte("{not json")
	rec := deliver(t, srv, body, "pull_request", sign(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, _ = json.Marshal(map[string]any{"action": "opened"})
	rec = deliver(t, srv, body, "pull_request", sign(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := testServer(t, &fakeGitHub{})
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
