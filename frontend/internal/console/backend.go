package console

import (
	"context"

	"github.com/a2z-dev/a2z/frontend/internal/apiclient"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
)

type AdminClient interface {
	ListUsers(ctx context.Context, creds apiclient.Credentials) ([]api.AdminUser, error)
	SetUserDisabled(ctx context.Context, creds apiclient.Credentials, uid domain.IdentityId, disabled bool) (string, error)
	ListBans(ctx context.Context, creds apiclient.Credentials) ([]domain.BanRecord, error)
}

type BusinessLister interface {
	List(ctx context.Context) ([]domain.Business, error)
}

type StatusSetter interface {
	SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error
}

type LogReader interface {
	Recent(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

// Services is the operator-independent half of a Backend.
type Services struct {
	Client     AdminClient
	Businesses BusinessLister
	Moderation StatusSetter
	Logs       LogReader
}

// For binds the services to one operator's credentials. Identity and ban operations go through the
// admin proxy; store and log operations go straight to the document store.
func (s Services) For(creds apiclient.Credentials) Backend {
	return &operatorBackend{Services: s, creds: creds}
}

type operatorBackend struct {
	Services
	creds apiclient.Credentials
}

func (b *operatorBackend) ListUsers(ctx context.Context) ([]api.AdminUser, error) {
	return b.Client.ListUsers(ctx, b.creds)
}

func (b *operatorBackend) SetUserDisabled(ctx context.Context, uid domain.IdentityId, disabled bool) error {
	_, err := b.Client.SetUserDisabled(ctx, b.creds, uid, disabled)
	return err
}

func (b *operatorBackend) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	return b.Businesses.List(ctx)
}

func (b *operatorBackend) SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error {
	return b.Moderation.SetBusinessStatus(ctx, id, status)
}

func (b *operatorBackend) RecentLogs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	return b.Logs.Recent(ctx, limit)
}

func (b *operatorBackend) ListBans(ctx context.Context) ([]domain.BanRecord, error) {
	return b.Client.ListBans(ctx, b.creds)
}
