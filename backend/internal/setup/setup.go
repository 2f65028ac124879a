package setup

import (
	"github.com/a2z-dev/a2z/backend/internal/handler"
	"github.com/a2z-dev/a2z/backend/internal/service"
	"github.com/a2z-dev/a2z/shared/config"
	"github.com/a2z-dev/a2z/shared/directory"
	"github.com/a2z-dev/a2z/shared/email"
	"github.com/a2z-dev/a2z/shared/identity"
	"github.com/a2z-dev/a2z/shared/jwt"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/moderation"
	"github.com/a2z-dev/a2z/shared/storage"
	"github.com/a2z-dev/a2z/shared/storage/pg"
)

type Dependencies struct {
	Storage        *storage.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Blacklist      *moderation.Cache
	Config         *config.Config
}

// SetupDependencies connects to the database, runs migrations and builds the admin proxy services.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	store, err := storage.New(cfg, pg.DefaultConnectionConfig())
	if err != nil {
		return nil, err
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	blacklist := moderation.NewCache(store, cfg.JwtTTL())

	identities := identity.New(store, email.New(&cfg.Private.Email), jwtService, identity.Options{
		PublicURL: cfg.Public.PublicURL,
		IsAdmin:   cfg.IsAdminEmail,
	})
	mod := moderation.New(store, blacklist, moderation.Options{FailClosed: cfg.Public.BanCheckFailClosed})
	admin := service.NewAdmin(identities, mod, directory.New(store), cfg.Public.ListUsersCap)

	return &Dependencies{
		Storage:        store,
		Handler:        handler.New(admin, store, cfg),
		AuthMiddleware: mw.NewAuth(jwtService, blacklist, cfg.Public.SecureCookies),
		Blacklist:      blacklist,
		Config:         cfg,
	}, nil
}
