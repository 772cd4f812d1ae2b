package handler

import (
	"net/http"

	"github.com/fluxstudio/fluxstudio-go/internal/middleware"
	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/service"
)

// SettingsHandler handles HTTP requests for the per-user API settings.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// HandleGet handles GET /api/settings requests.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	view, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, view)
}

// HandleUpdate handles PUT /api/settings requests.
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req model.SettingsUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	view, err := h.service.Update(r.Context(), identity.UserID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, view)
}
