package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/devilmonastery/lock/internal/domain/entities"
	"github.com/devilmonastery/lock/internal/domain/services"
)

type identityResponse struct {
	Identity       string            `json:"identity"`
	Country        *entities.Country `json:"country,omitempty"`
	Mode           string            `json:"mode"`
	LoggedInBefore bool              `json:"logged_in_before"`
}

type saveIdentityRequest struct {
	Identity string            `json:"identity"`
	Country  *entities.Country `json:"country,omitempty"`
}

// passwordless returns the identity service for the passwordless mode currently resolved
func (h *Handler) passwordless(r *http.Request) (*services.PasswordlessIdentityService, error) {
	cfg, err := h.configs.Current(r.Context())
	if err != nil {
		return nil, err
	}
	return services.NewPasswordlessIdentityService(h.identities, h.account.ClientID, cfg.PasswordlessMode(), h.log), nil
}

// GetPasswordlessIdentity returns the remembered identity, 404 when there is none
func (h *Handler) GetPasswordlessIdentity(w http.ResponseWriter, r *http.Request) {
	svc, err := h.passwordless(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	recalled, err := svc.Recall(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if recalled == nil {
		h.writeError(w, r, http.StatusNotFound, "no passwordless identity remembered")
		return
	}

	h.writeJSON(w, http.StatusOK, identityResponse{
		Identity:       recalled.Identity,
		Country:        recalled.Country,
		Mode:           recalled.Mode.String(),
		LoggedInBefore: recalled.LoggedInBefore,
	})
}

// PutPasswordlessIdentity remembers the identity of the request body
func (h *Handler) PutPasswordlessIdentity(w http.ResponseWriter, r *http.Request) {
	var req saveIdentityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Identity = strings.TrimSpace(req.Identity)
	if req.Identity == "" {
		h.writeError(w, r, http.StatusBadRequest, "identity is required")
		return
	}
	if req.Country != nil && (req.Country.IsoCode == "" || req.Country.DialCode == "") {
		h.writeError(w, r, http.StatusBadRequest, "country needs iso_code and dial_code")
		return
	}

	svc, err := h.passwordless(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := svc.SaveIdentity(r.Context(), req.Identity, req.Country); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeletePasswordlessIdentity forgets the remembered identity
func (h *Handler) DeletePasswordlessIdentity(w http.ResponseWriter, r *http.Request) {
	svc, err := h.passwordless(r)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := svc.Forget(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
