package setup

import (
	"context"

	"github.com/a2z-dev/a2z/frontend/internal/apiclient"
	"github.com/a2z-dev/a2z/frontend/internal/console"
	"github.com/a2z-dev/a2z/frontend/internal/handler"
	fmw "github.com/a2z-dev/a2z/frontend/internal/middleware"
	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/frontend/internal/session"
	"github.com/a2z-dev/a2z/shared/business"
	"github.com/a2z-dev/a2z/shared/config"
	"github.com/a2z-dev/a2z/shared/directory"
	"github.com/a2z-dev/a2z/shared/email"
	"github.com/a2z-dev/a2z/shared/identity"
	"github.com/a2z-dev/a2z/shared/jwt"
	"github.com/a2z-dev/a2z/shared/logger"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/moderation"
	"github.com/a2z-dev/a2z/shared/orders"
	"github.com/a2z-dev/a2z/shared/storage"
	"github.com/a2z-dev/a2z/shared/storage/pg"
	"github.com/a2z-dev/a2z/shared/syslog"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/google"
)

type Dependencies struct {
	Handler   *handler.Handler
	Auth      *fmw.Auth
	Reporter  *syslog.Service
	Storage   *storage.Storage
	Blacklist *moderation.Cache
	Consoles  *console.Registry
	Config    *config.Config
	// CancelFunc stops the background tasks started by SetupDependencies.
	CancelFunc context.CancelFunc
}

// SetupDependencies builds the storefront: credential store, session context, reconciliation flow,
// moderation console and the document store services they share.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())

	store, err := storage.New(cfg, pg.DefaultConnectionConfig())
	if err != nil {
		cancel()
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	blacklist := moderation.NewCache(store, cfg.JwtTTL())
	if err := blacklist.Update(ctx); err != nil {
		logger.Log.Warn("initial blacklist load failed", "error", err)
	}
	blacklist.StartBackgroundUpdate(ctx, cfg.Public.BlacklistRefreshInterval)

	identities := identity.New(store, email.New(&cfg.Private.Email), jwtService, identity.Options{
		PublicURL: cfg.Public.PublicURL,
		IsAdmin:   cfg.IsAdminEmail,
	}, providers(cfg)...)
	mod := moderation.New(store, blacklist, moderation.Options{FailClosed: cfg.Public.BanCheckFailClosed})
	businesses := business.New(store, cfg.Public.DefaultThemeColor)
	reporter := syslog.New(store)
	syslog.NewJanitor(store, cfg.Public.SystemLogRetention).StartBackgroundCleanup(ctx, cfg.Public.SystemLogCleanupInterval)

	sessions := session.New(identities, jwtService, cfg.JwtTTL(), cfg.Public.SecureCookies)
	flow := reconcile.New(sessions, directory.New(store), mod, businesses, cfg.Public.DefaultStoreSlug)
	consoles := console.NewRegistry(cfg.Public.ConsoleIdleTimeout, cfg.Public.SystemLogLimit)

	h := handler.New(handler.Deps{
		Sessions: sessions,
		Flow:     flow,
		Consoles: consoles,
		Services: console.Services{
			Client:     apiclient.New(cfg.Public.ProxyURL),
			Businesses: businesses,
			Moderation: mod,
			Logs:       reporter,
		},
		Stores: businesses,
		Orders: orders.New(store, businesses),
		Errors: reporter,
		Health: store,
		Config: cfg,
	})

	return &Dependencies{
		Handler:    h,
		Auth:       fmw.NewAuth(mw.NewAuth(jwtService, blacklist, cfg.Public.SecureCookies), session.SnapshotCookie, cfg.Public.SecureCookies),
		Reporter:   reporter,
		Storage:    store,
		Blacklist:  blacklist,
		Consoles:   consoles,
		Config:     cfg,
		CancelFunc: cancel,
	}, nil
}

// providers returns the configured OAuth providers. Google is skipped when no client id is set.
func providers(cfg *config.Config) []goth.Provider {
	o := cfg.Private.OAuth
	if o.GoogleClientID == "" {
		logger.Log.Info("google sign-in disabled: no client id configured")
		return nil
	}
	return []goth.Provider{google.New(o.GoogleClientID, o.GoogleClientSecret, o.CallbackURL, "email", "profile")}
}
