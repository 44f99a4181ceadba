package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/gatekeeper/internal/review"
)

// supportedActions are the pull_request actions that trigger a review.
var supportedActions = map[string]bool{
	"opened":           true,
	"reopened":         true,
	"synchronize":      true,
	"ready_for_review": true,
}

// webhookPayload covers the fields of the pull_request event we act on.
type webhookPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		ID     int64 `json:"id"`
		Number int   `json:"number"`
		Draft  bool  `json:"draft"`
		Head   struct {
			SHA string `json:"sha"`
		} `json:"head"`
	} `json:"pull_request"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Installation struct {
		ID int64 `json:"id"`
	} `json:"installation"`
}

// webhookResult is the JSON body returned for a processed event.
type webhookResult struct {
	OK                   bool   `json:"ok"`
	Skipped              string `json:"skipped,omitempty"`
	Repository           string `json:"repository,omitempty"`
	PullRequest          int    `json:"pull_request,omitempty"`
	FilesAnalyzed        int    `json:"files_analyzed"`
	ChangedLinesAnalyzed int    `json:"changed_lines_analyzed"`
	Findings             int    `json:"findings"`
	InlineComments       int    `json:"inline_comments_posted"`
	ReviewID             string `json:"review_id,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read request body")
		return
	}

	if s.cfg.Server.WebhookSecret == "" {
		s.log.Error("webhook secret is not configured")
		writeError(w, http.StatusInternalServerError, "webhook secret not configured")
		return
	}
	if !validSignature(s.cfg.Server.WebhookSecret, body, r.Header.Get("X-Hub-Signature-256")) {
		writeError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	if event := r.Header.Get("X-GitHub-Event"); event != "pull_request" {
		writeJSON(w, http.StatusOK, webhookResult{OK: true, Skipped: "unsupported event: " + event})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON payload")
		return
	}
	if !supportedActions[payload.Action] {
		writeJSON(w, http.StatusOK, webhookResult{OK: true, Skipped: "unsupported action: " + payload.Action})
		return
	}
	if payload.PullRequest.Draft {
		writeJSON(w, http.StatusOK, webhookResult{OK: true, Skipped: "draft pull request"})
		return
	}

	owner, repo, ok := strings.Cut(payload.Repository.FullName, "/")
	if !ok || payload.PullRequest.Number == 0 || payload.Installation.ID == 0 {
		writeError(w, http.StatusBadRequest, "payload is missing repository, PR number, or installation")
		return
	}

	ctx := r.Context()
	number := payload.PullRequest.Number
	log := s.log.With(
		zap.String("repository", payload.Repository.FullName),
		zap.Int("pull_request", number),
		zap.String("action", payload.Action))

	token, err := s.gh.InstallationToken(ctx, payload.Installation.ID)
	if err != nil {
		log.Error("installation token exchange failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "github authentication failed")
		return
	}

	files, err := s.gh.PullRequestFiles(ctx, token, owner, repo, number)
	if err != nil {
		log.Error("fetching PR files failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "fetching pull request files failed")
		return
	}

	prID := strconv.FormatInt(payload.PullRequest.ID, 10)
	rev, err := review.Run(ctx, prID, files, s.cfg.Pipeline(), s.rules, log)
	if err != nil {
		log.Error("review pipeline rejected configuration", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.gh.PostReview(ctx, token, owner, repo, number, payload.PullRequest.Head.SHA, rev); err != nil {
		log.Error("posting review failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "posting review failed")
		return
	}

	log.Info("review posted",
		zap.Int("files_analyzed", rev.Stats.FilesAnalyzed),
		zap.Int("findings", len(rev.Findings)),
		zap.Int("inline_comments", len(rev.InlineComments)))

	writeJSON(w, http.StatusOK, webhookResult{
		OK:                   true,
		Repository:           payload.Repository.FullName,
		PullRequest:          number,
		FilesAnalyzed:        rev.Stats.FilesAnalyzed,
		ChangedLinesAnalyzed: rev.Stats.ChangedLines,
		Findings:             len(rev.Findings),
		InlineComments:       len(rev.InlineComments),
		ReviewID:             rev.ID,
	})
}

// validSignature checks the X-Hub-Signature-256 header against the HMAC
// of the raw body. Comparison is constant time.
func validSignature(secret string, body []byte, header string) bool {
	sig, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
