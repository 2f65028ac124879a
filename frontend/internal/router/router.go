package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	fmw "github.com/a2z-dev/a2z/frontend/internal/middleware"
	"github.com/a2z-dev/a2z/frontend/internal/setup"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/middleware/metrics"
	rl "github.com/a2z-dev/a2z/shared/middleware/ratelimiter"
)

// Limiters are created per router so tests get fresh buckets.
type limiters struct {
	auth   *rl.UserRateLimiter
	reset  *rl.UserRateLimiter
	api    *rl.UserRateLimiter
	orders *rl.UserRateLimiter
	errors *rl.UserRateLimiter
}

func newLimiters() limiters {
	return limiters{
		auth:   rl.OnceInSecond(),
		reset:  rl.OnceInMinute(),
		api:    rl.Rps100(),
		orders: rl.OnceInSecond(),
		errors: rl.Rps10(),
	}
}

func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler
	lim := newLimiters()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger)
	// the session is resolved before the panic reporter so crash reports name the user
	r.Use(deps.Auth.OptionalAuth())
	r.Use(fmw.ReportPanics(deps.Reporter))
	r.Use(metrics.Middleware)
	r.Use(chimw.Compress(5))
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, mw.APIContentSecurityPolicy))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		// provider redirects are top-level navigations and carry no CSRF header
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(lim.auth, mw.GetIP))
			r.Get("/auth/google", h.BeginGoogle)
			r.Get("/auth/google/callback", h.GoogleCallback)
		})

		r.Group(func(r chi.Router) {
			r.Use(fmw.GenerateCSRFToken(fmw.CSRFConfig{SecureCookies: deps.Config.Public.SecureCookies}))
			r.Use(fmw.ValidateCSRFToken())
			r.Use(mw.GlobalRateLimit(lim.api))
			routes(r, deps, lim)
		})
	})

	return r
}

func routes(r chi.Router, deps *setup.Dependencies, lim limiters) {
	h := deps.Handler

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit(lim.auth, mw.GetEmailOrIP))
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Post("/seller/login", h.SellerLogin)
		r.Post("/super-admin/login", h.AdminLogin)
		r.Post("/super-admin/signup", h.AdminSignup)
		r.Post("/auth/reset-password", h.ResetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit(lim.reset, mw.GetEmailOrIP))
		r.Post("/auth/forgot-password", h.ForgotPassword)
		r.Post("/auth/resend-reset", h.ResendReset)
	})

	r.Group(func(r chi.Router) {
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/session", h.Session)
		r.Get("/auth/verify", h.VerifyEmail)
		r.Get("/slug", h.SuggestSlug)
		r.Get("/stores/{slug}", h.Store)
		r.With(mw.RateLimit(lim.errors, mw.GetIP)).Post("/errors", h.ReportError)
		// signed-in visitors open a store without re-entering credentials
		r.With(mw.RateLimit(lim.auth, mw.GetEmailOrIP)).Post("/seller/register", h.SellerRegister)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.NeedAuth())
		r.With(mw.RateLimit(lim.orders, mw.GetSessionIdFromContext)).Post("/stores/{slug}/orders", h.CreateOrder)
		r.Get("/orders", h.Orders)
		r.Get("/orders/{id}", h.Order)
	})

	r.Route("/super-admin/console", func(r chi.Router) {
		r.Use(deps.Auth.AdminOnly())
		r.Get("/", h.ConsoleLoad)
		r.Post("/stage", h.ConsoleStage)
		r.Post("/confirm", h.ConsoleConfirm)
		r.Post("/cancel", h.ConsoleCancel)
	})
}
