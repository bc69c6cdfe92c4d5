package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devilmonastery/lock/server/internal/middleware"
)

// NewRouter registers every route of the service
func NewRouter(h *Handler, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.LogRequest(logger))

	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/configuration", h.Configuration).Methods("GET")
	v1.HandleFunc("/configuration.html", h.ConfigurationHTML).Methods("GET")
	v1.HandleFunc("/connections", h.Connections).Methods("GET")
	v1.HandleFunc("/enterprise/match", h.MatchEnterprise).Methods("GET")
	v1.HandleFunc("/authorize", h.Authorize).Methods("GET")
	v1.HandleFunc("/passwordless/identity", h.GetPasswordlessIdentity).Methods("GET")
	v1.HandleFunc("/passwordless/identity", h.PutPasswordlessIdentity).Methods("PUT")
	v1.HandleFunc("/passwordless/identity", h.DeletePasswordlessIdentity).Methods("DELETE")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.writeError(w, req, http.StatusNotFound, "not found")
	})
	return r
}
