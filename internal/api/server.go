package api

import (
	"net/http"

	"github.com/jSherz/break-glass-access/internal/api/middleware"
	"github.com/jSherz/break-glass-access/internal/api/presenter"
	"github.com/jSherz/break-glass-access/internal/buildinfo"
	"github.com/jSherz/break-glass-access/internal/core"
	"github.com/jSherz/break-glass-access/internal/service"
)

type Server struct {
	secrets        core.ParameterStore
	signingSecret  string // parameter name, not the secret itself
	requestService *service.RequestService
}

func NewServer(
	secrets core.ParameterStore,
	signingSecretName string,
	requestService *service.RequestService,
) *Server {
	return &Server{
		secrets:        secrets,
		signingSecret:  signingSecretName,
		requestService: requestService,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// webhook ingress
	mux.HandleFunc("POST "+SlackWebhookRoute, s.handleSlackWebhook)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	presenter.JSON(w, r, buildinfo.GetBuildInfo(), http.StatusOK)
}
