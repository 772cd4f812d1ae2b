package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/fluxstudio/fluxstudio-go/internal/gemini"
	"github.com/fluxstudio/fluxstudio-go/internal/middleware"
	"github.com/fluxstudio/fluxstudio-go/internal/service"
)

// RouterConfig holds everything NewRouter wires together.
type RouterConfig struct {
	Auth     *service.AuthService
	Settings *service.SettingsService
	Gemini   *gemini.Client

	// AuthLimiter throttles register and login. Nil disables throttling.
	AuthLimiter        middleware.Limiter
	CORSAllowedOrigins []string
}

// NewRouter builds the HTTP handler for the service. All API routes live under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Auth)
	settingsHandler := NewSettingsHandler(cfg.Settings)
	geminiHandler := NewGeminiHandler(cfg.Settings, cfg.Gemini)

	required := middleware.SessionAuth(cfg.Auth, middleware.AuthRequired)
	optional := middleware.SessionAuth(cfg.Auth, middleware.AuthOptional)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if cfg.AuthLimiter != nil {
					r.Use(middleware.RateLimit(cfg.AuthLimiter))
				}
				r.Post("/register", authHandler.HandleRegister)
				r.Post("/login", authHandler.HandleLogin)
			})

			r.Group(func(r chi.Router) {
				r.Use(optional)
				r.Post("/logout", authHandler.HandleLogout)
				r.Get("/me", authHandler.HandleMe)
			})

			r.With(required).Post("/logout-all", authHandler.HandleLogoutAll)
		})

		r.Group(func(r chi.Router) {
			r.Use(required)
			r.Get("/settings", settingsHandler.HandleGet)
			r.Put("/settings", settingsHandler.HandleUpdate)
			r.Get("/gemini/models", geminiHandler.HandleModels)
			r.Post("/gemini/proxy", geminiHandler.HandleProxy)
		})
	})

	return r
}
