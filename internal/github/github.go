package github

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dshills/gatekeeper/internal/config"
	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/review"
)

const (
	apiVersion = "2022-11-28"
	userAgent  = "gatekeeper"
	// appJWTLifetime keeps the App JWT under GitHub's 10 minute cap.
	appJWTLifetime = 9 * time.Minute
)

// Client provides access to the GitHub REST API as a GitHub App.
type Client struct {
	appID      string
	privateKey *rsa.PrivateKey
	apiURL     string
	httpCli    *http.Client
	tokens     *tokenCache
	log        *zap.Logger
}

// NewClient creates a GitHub App client from configuration. The private
// key is read from cfg.PrivateKeyPath in PEM form.
func NewClient(cfg config.GitHubConfig, log *zap.Logger) (*Client, error) {
	if cfg.AppID == "" {
		return nil, fmt.Errorf("github app id is not configured")
	}
	if cfg.PrivateKeyPath == "" {
		return nil, fmt.Errorf("github app private key path is not configured")
	}

	pem, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		appID:      cfg.AppID,
		privateKey: key,
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpCli:    &http.Client{Timeout: timeout},
		tokens:     newTokenCache(),
		log:        log,
	}, nil
}

// appJWT builds the short-lived RS256 JWT that authenticates the App
// itself, used only to mint installation tokens.
func (c *Client) appJWT() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now.Add(-60 * time.Second)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTLifetime)),
		Issuer:    c.appID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing app JWT: %w", err)
	}
	return signed, nil
}

// InstallationToken exchanges the App JWT for an installation access
// token, reusing a cached token while it is still valid.
func (c *Client) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	if token, ok := c.tokens.Get(installationID); ok {
		return token, nil
	}

	appToken, err := c.appJWT()
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("/app/installations/%d/access_tokens", installationID)
	body, err := c.do(ctx, http.MethodPost, path, appToken, nil)
	if err != nil {
		return "", fmt.Errorf("creating installation token: %w", err)
	}

	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing installation token response: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("installation token response contained no token")
	}
	if !resp.ExpiresAt.IsZero() {
		c.tokens.Put(installationID, resp.Token, resp.ExpiresAt)
	}
	return resp.Token, nil
}

// prFile mirrors one entry of the pull-request files listing.
type prFile struct {
	Filename  string `json:"filename"`
	Patch     string `json:"patch"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// PullRequestFiles fetches the changed files of a pull request, following
// pagination. Binary files arrive with an empty patch, which the pipeline
// treats as a normal zero-change case.
func (c *Client) PullRequestFiles(ctx context.Context, token, owner, repo string, number int) ([]diff.FilePatch, error) {
	var patches []diff.FilePatch
	for page := 1; ; page++ {
		path := fmt.Sprintf("/repos/%s/%s/pulls/%d/files?per_page=100&page=%d", owner, repo, number, page)
		body, err := c.do(ctx, http.MethodGet, path, token, nil)
		if err != nil {
			return nil, fmt.Errorf("fetching PR files: %w", err)
		}

		var files []prFile
		if err := json.Unmarshal(body, &files); err != nil {
			return nil, fmt.Errorf("parsing PR files response: %w", err)
		}
		for _, f := range files {
			if f.Filename == "" {
				continue
			}
			patches = append(patches, diff.FilePatch{
				Path:      f.Filename,
				Patch:     f.Patch,
				Status:    diff.Status(f.Status),
				Additions: f.Additions,
				Deletions: f.Deletions,
			})
		}
		if len(files) < 100 {
			return patches, nil
		}
	}
}

// reviewComment is GitHub's inline comment payload.
type reviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Side string `json:"side"`
	Body string `json:"body"`
}

type reviewRequest struct {
	CommitID string          `json:"commit_id,omitempty"`
	Body     string          `json:"body"`
	Event    string          `json:"event"`
	Comments []reviewComment `json:"comments"`
}

// PostReview posts the aggregated review as a single COMMENT review with
// inline comments. It is called exactly once per triggering event.
func (c *Client) PostReview(ctx context.Context, token, owner, repo string, number int, commitSHA string, rev *review.Review) error {
	req := reviewRequest{
		CommitID: commitSHA,
		Body:     rev.SummaryMarkdown,
		Event:    "COMMENT",
		Comments: make([]reviewComment, 0, len(rev.InlineComments)),
	}
	for _, ic := range rev.InlineComments {
		req.Comments = append(req.Comments, reviewComment{
			Path: ic.Path,
			Line: ic.Line,
			Side: "RIGHT",
			Body: ic.Message,
		})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshaling review: %w", err)
	}

	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", owner, repo, number)
	if _, err := c.do(ctx, http.MethodPost, path, token, payload); err != nil {
		return fmt.Errorf("posting review: %w", err)
	}
	return nil
}

// do performs one API request with retry on rate limits and server errors.
func (c *Client) do(ctx context.Context, method, path, token string, payload []byte) ([]byte, error) {
	var body []byte
	err := retryWithBackoff(ctx, maxRetries, func() error {
		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, rdr)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("X-GitHub-Api-Version", apiVersion)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpCli.Do(req)
		if err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			body = data
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return &authError{message: string(data)}
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.log.Warn("retryable GitHub API error",
				zap.Int("status", resp.StatusCode),
				zap.String("path", path))
			return &retryableError{status: resp.StatusCode, body: string(data)}
		default:
			return &apiError{status: resp.StatusCode, body: string(data)}
		}
	})
	return body, err
}
