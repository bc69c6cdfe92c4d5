package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/lock/internal/application"
	"github.com/devilmonastery/lock/internal/auth"
	"github.com/devilmonastery/lock/internal/config"
	"github.com/devilmonastery/lock/internal/domain/repositories"
	"github.com/devilmonastery/lock/internal/domain/services"
	"github.com/devilmonastery/lock/server/internal/middleware"
)

// Handler holds dependencies for all HTTP handlers
type Handler struct {
	configs    *services.ConfigurationService
	identities repositories.PasswordlessIdentityRepository
	authorizer *auth.Authorizer
	account    config.AccountConfig
	log        *slog.Logger
}

// New creates a handler serving the configuration of account
func New(
	configs *services.ConfigurationService,
	identities repositories.PasswordlessIdentityRepository,
	account config.AccountConfig,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		configs:    configs,
		identities: identities,
		authorizer: auth.NewAuthorizer(account.Domain, account.ClientID, account.RedirectURL, configs.Options()),
		account:    account,
		log:        logger.With(slog.String("component", "http_handler")),
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, status, errorResponse{
		Error:     message,
		RequestID: middleware.RequestID(r.Context()),
	})
}

// writeServiceError maps errors of the services and the fetcher to a status code
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case application.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, application.ErrFetchFailed), errors.Is(err, application.ErrInvalidApplication):
		status = http.StatusBadGateway
	case services.IsInvalidInput(err):
		status = http.StatusBadRequest
	}

	reason := services.FailureReason(err)
	if reason == "internal" && status == http.StatusBadGateway {
		reason = "upstream"
	}
	h.log.Error("request failed",
		slog.String("request_id", middleware.RequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
		slog.String("error", err.Error()))

	h.writeJSON(w, status, errorResponse{
		Error:     http.StatusText(status),
		Reason:    reason,
		RequestID: middleware.RequestID(r.Context()),
	})
}

// Health reports whether the identity store is reachable
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if checker, ok := h.identities.(repositories.HealthChecker); ok {
		if err := checker.HealthCheck(r.Context()); err != nil {
			h.log.Warn("health check failed", slog.String("error", err.Error()))
			http.Error(w, "UNAVAILABLE", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
