package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/a2z-dev/a2z/backend/internal/setup"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/middleware/metrics"
	rl "github.com/a2z-dev/a2z/shared/middleware/ratelimiter"
)

// New wires the admin proxy routes. Limiters attached with Use are shared by every route of that group.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(chimw.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Public.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, mw.APIContentSecurityPolicy))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))
		r.Use(deps.AuthMiddleware.AdminOnly())
		// admin only group: RateLimit would exempt every caller
		r.Use(mw.RateLimitAll(rl.Rps10(), mw.GetSessionIdFromContext))

		r.Get("/users", h.ListUsers)
		r.Post("/ban-user", h.BanUser)
		r.Get("/businesses", h.NotImplemented)
		r.Post("/business-status", h.NotImplemented)
		r.Get("/bans", h.ListBans)
		r.Post("/bans/refresh", h.RefreshBans)
	})

	return r
}
