package handler

import (
	"context"
	"net/http"

	"github.com/a2z-dev/a2z/frontend/internal/console"
	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/shared/config"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/syslog"
	"github.com/markbates/goth"
)

type Sessions interface {
	Persist(w http.ResponseWriter, s *domain.Session) error
	SignOut(w http.ResponseWriter)
	Current(r *http.Request) *domain.Session
	Snapshot(r *http.Request) *domain.Session
	BeginProvider(provider, state string) (authURL, sessionBlob string, err error)
	CompleteProvider(ctx context.Context, provider, sessionBlob string, params goth.Params) (*domain.Session, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email domain.Email)
	ResendPasswordReset(ctx context.Context, email domain.Email)
	ResetPassword(ctx context.Context, token string, newPassword domain.Password) error
}

type Stores interface {
	BySlug(ctx context.Context, sl domain.Slug) (domain.Business, error)
}

type Orders interface {
	Create(ctx context.Context, buyer domain.Session, storeSlug domain.Slug, items []domain.OrderItem) (domain.Order, error)
	Get(ctx context.Context, userId domain.IdentityId, id domain.OrderId) (domain.Order, error)
	ListByUser(ctx context.Context, userId domain.IdentityId) ([]domain.Order, error)
}

type ErrorLogger interface {
	LogError(ctx context.Context, r syslog.Report) string
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	sessions Sessions
	flow     *reconcile.Flow
	consoles *console.Registry
	services console.Services
	stores   Stores
	orders   Orders
	reporter ErrorLogger
	health   HealthChecker
	cfg      *config.Config
}

// Deps groups everything a Handler talks to.
type Deps struct {
	Sessions Sessions
	Flow     *reconcile.Flow
	Consoles *console.Registry
	Services console.Services
	Stores   Stores
	Orders   Orders
	Errors   ErrorLogger
	Health   HealthChecker
	Config   *config.Config
}

func New(d Deps) *Handler {
	return &Handler{
		sessions: d.Sessions,
		flow:     d.Flow,
		consoles: d.Consoles,
		services: d.Services,
		stores:   d.Stores,
		orders:   d.Orders,
		reporter: d.Errors,
		health:   d.Health,
		cfg:      d.Config,
	}
}
