package handlers

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/services"
	"github.com/devilmonastery/lock/internal/pkg/summary"
)

var summaryPage = template.Must(template.New("summary").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
{{.Body}}
</body>
</html>
`))

// Configuration serves the resolved configuration as JSON
func (h *Handler) Configuration(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Current(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// ConfigurationHTML serves a sanitised HTML summary of the resolved configuration
func (h *Handler) ConfigurationHTML(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configs.Current(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	title := fmt.Sprintf("%s (%s)", h.account.ClientID, h.account.Domain)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = summaryPage.Execute(w, struct {
		Title string
		Body  template.HTML
	}{title, summary.HTML(summary.Markdown(title, cfg))})
	if err != nil {
		h.log.Error("failed to render summary", slog.String("error", err.Error()))
	}
}

// Connections serves every connection of the application, before filtering
func (h *Handler) Connections(w http.ResponseWriter, r *http.Request) {
	conns, err := h.configs.Connections(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if conns == nil {
		conns = []*entities.Connection{}
	}
	h.writeJSON(w, http.StatusOK, conns)
}

type matchResponse struct {
	Connection string `json:"connection"`
	Strategy   string `json:"strategy"`
	Username   string `json:"username"`
	Domain     string `json:"domain"`
	Native     bool   `json:"native"`
}

// MatchEnterprise finds the enterprise connection owning the domain of the email query parameter
func (h *Handler) MatchEnterprise(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.writeError(w, r, http.StatusBadRequest, "email is required")
		return
	}

	cfg, err := h.configs.Current(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	matcher := services.NewEnterpriseConnectionMatcher(cfg.EnterpriseConnections())
	conn := matcher.Parse(email)
	if conn == nil {
		h.writeError(w, r, http.StatusNotFound, "no enterprise connection matches the email domain")
		return
	}
	username, _ := matcher.ExtractUsername(email)

	h.writeJSON(w, http.StatusOK, matchResponse{
		Connection: conn.Name(),
		Strategy:   conn.Strategy(),
		Username:   username,
		Domain:     matcher.DomainForConnection(conn),
		Native:     cfg.ShouldUseNativeAuthentication(conn),
	})
}

// Authorize builds the authorization URL of the connection query parameter
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("connection")
	if name == "" {
		h.writeError(w, r, http.StatusBadRequest, "connection is required")
		return
	}

	conns, err := h.configs.Connections(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	var conn *entities.Connection
	for _, c := range conns {
		if c.Name() == name {
			conn = c
			break
		}
	}
	if conn == nil {
		h.writeError(w, r, http.StatusNotFound, fmt.Sprintf("connection %q not found", name))
		return
	}

	req, err := h.authorizer.AuthorizeURL(conn, r.URL.Query().Get("state"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, req)
}
