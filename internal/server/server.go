package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/gatekeeper/internal/config"
	"github.com/dshills/gatekeeper/internal/diff"
	"github.com/dshills/gatekeeper/internal/review"
)

// GitHubAPI is the slice of the GitHub client the webhook flow needs.
type GitHubAPI interface {
	InstallationToken(ctx context.Context, installationID int64) (string, error)
	PullRequestFiles(ctx context.Context, token, owner, repo string, number int) ([]diff.FilePatch, error)
	PostReview(ctx context.Context, token, owner, repo string, number int, commitSHA string, rev *review.Review) error
}

// Server hosts the webhook endpoint and runs the review pipeline for
// each qualifying pull-request event.
type Server struct {
	cfg     config.Config
	gh      GitHubAPI
	rules   *review.Rules
	log     *zap.Logger
	httpSrv *http.Server
}

// New builds a Server. The rules file named in cfg is loaded once at
// startup; a missing rules setting means no overrides.
func New(cfg config.Config, gh GitHubAPI, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var rules *review.Rules
	if cfg.Review.RulesFile != "" {
		loaded, err := review.LoadRules(cfg.Review.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}

	s := &Server{
		cfg:   cfg,
		gh:    gh,
		rules: rules,
		log:   log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("webhook server listening", zap.String("addr", s.cfg.Server.Addr))
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.log.Info("shutting down webhook server")
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
