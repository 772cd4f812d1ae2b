package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/fluxstudio/fluxstudio-go/internal/gemini"
	"github.com/fluxstudio/fluxstudio-go/internal/middleware"
	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/service"
)

// GeminiHandler proxies model listing and generation to the Gemini API using
// the caller's stored key.
type GeminiHandler struct {
	settings *service.SettingsService
	client   *gemini.Client
}

// NewGeminiHandler creates a new GeminiHandler.
func NewGeminiHandler(settings *service.SettingsService, client *gemini.Client) *GeminiHandler {
	return &GeminiHandler{settings: settings, client: client}
}

// HandleModels handles GET /api/gemini/models requests. Any failure, including
// a missing key, falls back to the built-in model list.
func (h *GeminiHandler) HandleModels(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	apiKey, err := h.settings.APIKey(r.Context(), identity.UserID)
	if err != nil {
		if service.KindOf(err) == service.KindInternal {
			slog.Error("loading api key for model list", "user_id", identity.UserID, "error", err)
		}
		writeData(w, http.StatusOK, gemini.DefaultModels())
		return
	}

	models, err := h.client.ListModels(r.Context(), apiKey)
	if err != nil || len(models) == 0 {
		if err != nil {
			slog.Warn("listing gemini models failed", "user_id", identity.UserID, "error", err)
		}
		writeData(w, http.StatusOK, gemini.DefaultModels())
		return
	}

	writeData(w, http.StatusOK, models)
}

// HandleProxy handles POST /api/gemini/proxy requests.
func (h *GeminiHandler) HandleProxy(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req model.ProxyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Contents) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request: contents array is required")
		return
	}

	creds, err := h.settings.Credentials(r.Context(), identity.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	cfg := model.GenerationConfig{
		Temperature:     &creds.Temperature,
		MaxOutputTokens: &creds.MaxTokens,
	}
	if gc := req.GenerationConfig; gc != nil {
		if gc.Temperature != nil {
			cfg.Temperature = gc.Temperature
		}
		if gc.MaxOutputTokens != nil {
			cfg.MaxOutputTokens = gc.MaxOutputTokens
		}
		cfg.TopP = gc.TopP
		cfg.TopK = gc.TopK
	}

	out, err := h.client.GenerateContent(r.Context(), creds.APIKey, creds.Model, gemini.GenerateRequest{
		Contents:         req.Contents,
		GenerationConfig: cfg,
	})
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, apiErr.Status, envelope{Success: false, Error: apiErr.Message, Details: apiErr.Details})
			return
		}
		slog.Error("gemini proxy failed", "user_id", identity.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process request")
		return
	}

	writeData(w, http.StatusOK, out)
}
