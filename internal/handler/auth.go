package handler

import (
	"log/slog"
	"net/http"

	"github.com/fluxstudio/fluxstudio-go/internal/middleware"
	"github.com/fluxstudio/fluxstudio-go/internal/model"
	"github.com/fluxstudio/fluxstudio-go/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

func clientMeta(r *http.Request) model.ClientMeta {
	return model.ClientMeta{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// HandleRegister handles POST /api/auth/register requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	issued, err := h.service.Register(r.Context(), req, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Add("Set-Cookie", middleware.SessionCookie(issued.Token))
	writeData(w, http.StatusCreated, model.AuthResponse{User: issued.User})
}

// HandleLogin handles POST /api/auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	issued, err := h.service.Login(r.Context(), req, clientMeta(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Add("Set-Cookie", middleware.SessionCookie(issued.Token))
	writeData(w, http.StatusOK, model.AuthResponse{User: issued.User})
}

// HandleLogout handles POST /api/auth/logout requests. The cookie is cleared
// even when the session could not be deleted.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := middleware.CookieValue(r.Header.Get("Cookie"), middleware.SessionCookieName)

	msg := "Logged out successfully"
	if err := h.service.Logout(r.Context(), token); err != nil {
		slog.Error("logout failed", "error", err)
		msg = "Logged out"
	}

	w.Header().Add("Set-Cookie", middleware.ClearSessionCookie())
	writeData(w, http.StatusOK, map[string]string{"message": msg})
}

// HandleLogoutAll handles POST /api/auth/logout-all requests.
func (h *AuthHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.LogoutAll(r.Context(), identity.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Add("Set-Cookie", middleware.ClearSessionCookie())
	writeData(w, http.StatusOK, map[string]string{"message": "Logged out of all sessions"})
}

// HandleMe handles GET /api/auth/me requests. An anonymous caller gets
// success=false with a null payload and status 200.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "data": nil})
		return
	}

	writeData(w, http.StatusOK, model.AuthResponse{
		User: model.UserResponse{ID: identity.UserID, Email: identity.Email},
	})
}
