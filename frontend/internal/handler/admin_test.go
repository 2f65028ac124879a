package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2z-dev/a2z/frontend/internal/apiclient"
	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	t.Run("non admin is refused", func(t *testing.T) {
		fx := newFixture()
		rr := httptest.NewRecorder()

		fx.h.AdminLogin(rr, createRequest(t, http.MethodPost, "/", `{"email":"buyer@a2z.dev","password":"secret1"}`))

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Contains(t, rr.Body.String(), "Access denied. Only for admin")
		assert.Equal(t, 1, fx.sessions.SignOuts)
	})

	t.Run("admin lands on the console", func(t *testing.T) {
		fx := newFixture()
		fx.sessions.SignInFunc = func(_ context.Context, email, _ string) (*domain.Session, error) {
			return &domain.Session{IdentityId: "root", Email: email, Admin: true}, nil
		}
		rr := httptest.NewRecorder()

		fx.h.AdminLogin(rr, createRequest(t, http.MethodPost, "/", `{"email":"root@a2z.dev","password":"secret1"}`))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, reconcile.SuperAdminPath, decode[api.AuthResponse](t, rr).Redirect)
	})
}

func TestAdminSignup(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{"wrong secret", `{"email":"root@a2z.dev","password":"secret1","secret":"guess"}`, http.StatusForbidden},
		{"email not allowed", `{"email":"eve@a2z.dev","password":"secret1","secret":"s3cret"}`, http.StatusForbidden},
		{"missing secret", `{"email":"root@a2z.dev","password":"secret1"}`, http.StatusBadRequest},
		{"ok", `{"email":"Root@a2z.dev","password":"secret1","secret":"s3cret"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture()
			signedUp := false
			fx.sessions.SignUpFunc = func(_ context.Context, email, _, name string) (*domain.Session, error) {
				signedUp = true
				return &domain.Session{IdentityId: "root", Email: email, DisplayName: name, Admin: true}, nil
			}
			rr := httptest.NewRecorder()

			fx.h.AdminSignup(rr, createRequest(t, http.MethodPost, "/", tt.body))

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedCode == http.StatusOK, signedUp)
			if tt.expectedCode == http.StatusOK {
				assert.Equal(t, domain.RoleAdmin, fx.directory.profiles["root"].Role)
			}
		})
	}
}

func consoleRequest(t *testing.T, method, target, body string) *http.Request {
	req := createRequest(t, method, target, body)
	req.AddCookie(&http.Cookie{Name: mw.AccessTokenCookie, Value: "admin-token"})
	return addSessionToContext(req, &domain.Session{IdentityId: "root", Email: "root@a2z.dev", Admin: true})
}

func TestConsole(t *testing.T) {
	fx := newFixture()
	var gotCreds apiclient.Credentials
	fx.client.ListUsersFunc = func(_ context.Context, creds apiclient.Credentials) ([]api.AdminUser, error) {
		gotCreds = creds
		return []api.AdminUser{{Uid: "u1", Email: "u1@a2z.dev"}}, nil
	}
	fx.businesses.list = []domain.Business{
		{Id: "b1", Name: "Shop", Slug: "shop", Status: domain.BusinessActive},
		{Id: "b2", Name: "New", Slug: "new", Status: domain.BusinessPending},
	}

	rr := httptest.NewRecorder()
	fx.h.ConsoleLoad(rr, consoleRequest(t, http.MethodGet, "/?tab=users", ""))
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[api.ConsoleView](t, rr)
	require.Len(t, view.Users, 1)
	assert.Equal(t, string(domain.ActionBan), view.Users[0].Action)
	assert.Equal(t, "admin-token", gotCreds.Token)

	t.Run("unknown tab", func(t *testing.T) {
		rr := httptest.NewRecorder()
		fx.h.ConsoleLoad(rr, consoleRequest(t, http.MethodGet, "/?tab=orders", ""))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bans come from the proxy", func(t *testing.T) {
		fx.client.ListBansFunc = func(_ context.Context, creds apiclient.Credentials) ([]domain.BanRecord, error) {
			assert.Equal(t, "admin-token", creds.Token)
			return []domain.BanRecord{{Id: "u7", Email: "u7@a2z.dev", Reason: "fraud"}}, nil
		}
		rr := httptest.NewRecorder()
		fx.h.ConsoleLoad(rr, consoleRequest(t, http.MethodGet, "/?tab=bans", ""))
		require.Equal(t, http.StatusOK, rr.Code)
		view := decode[api.ConsoleView](t, rr)
		assert.Equal(t, "bans", view.Tab)
		require.Len(t, view.Bans, 1)
		assert.Equal(t, "fraud", view.Bans[0].Reason)
	})

	t.Run("confirm without staged action", func(t *testing.T) {
		rr := httptest.NewRecorder()
		fx.h.ConsoleConfirm(rr, consoleRequest(t, http.MethodPost, "/", ""))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("stage then cancel", func(t *testing.T) {
		rr := httptest.NewRecorder()
		fx.h.ConsoleStage(rr, consoleRequest(t, http.MethodPost, "/", `{"targetType":"user","targetId":"u1"}`))
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, decode[api.ConsoleView](t, rr).Staged)

		rr = httptest.NewRecorder()
		fx.h.ConsoleCancel(rr, consoleRequest(t, http.MethodPost, "/", ""))
		assert.Nil(t, decode[api.ConsoleView](t, rr).Staged)
	})

	t.Run("ban user", func(t *testing.T) {
		var disabled bool
		fx.client.SetUserDisabledFunc = func(_ context.Context, _ apiclient.Credentials, uid string, d bool) (string, error) {
			disabled = d
			return "User " + uid + " has been banned.", nil
		}
		rr := httptest.NewRecorder()
		fx.h.ConsoleStage(rr, consoleRequest(t, http.MethodPost, "/", `{"targetType":"user","targetId":"u1"}`))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		fx.h.ConsoleConfirm(rr, consoleRequest(t, http.MethodPost, "/", ""))

		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[api.ConfirmResponse](t, rr)
		assert.True(t, resp.Applied)
		assert.True(t, disabled)
		assert.True(t, resp.View.Users[0].Disabled)
	})

	t.Run("pending store cannot be staged", func(t *testing.T) {
		rr := httptest.NewRecorder()
		fx.h.ConsoleLoad(rr, consoleRequest(t, http.MethodGet, "/?tab=stores", ""))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		fx.h.ConsoleStage(rr, consoleRequest(t, http.MethodPost, "/", `{"targetType":"business","targetId":"b2"}`))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("failed suspend rolls back", func(t *testing.T) {
		fx.moderation.err = errors.New(errors.BackendUnavailable, "backend unavailable")
		defer func() { fx.moderation.err = nil }()

		rr := httptest.NewRecorder()
		fx.h.ConsoleStage(rr, consoleRequest(t, http.MethodPost, "/", `{"targetType":"business","targetId":"b1"}`))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		fx.h.ConsoleConfirm(rr, consoleRequest(t, http.MethodPost, "/", ""))

		assert.Equal(t, http.StatusBadGateway, rr.Code)
		resp := decode[api.ConfirmResponse](t, rr)
		assert.False(t, resp.Applied)
		assert.NotEmpty(t, resp.Error)
		for _, b := range resp.View.Businesses {
			if b.Id == "b1" {
				assert.Equal(t, domain.BusinessActive, b.Status)
			}
		}
		assert.NotContains(t, fx.moderation.status, "b1")
	})
}
