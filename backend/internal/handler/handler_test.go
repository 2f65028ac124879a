package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	mw "github.com/a2z-dev/a2z/shared/middleware"
)

type MockAdminService struct {
	ListUsersFunc       func(ctx context.Context) ([]api.AdminUser, error)
	SetUserDisabledFunc func(ctx context.Context, operator domain.Session, uid domain.IdentityId, disabled bool) error
	ListBansFunc        func(ctx context.Context) ([]domain.BanRecord, error)
	RefreshBansFunc     func(ctx context.Context) error
}

func (m *MockAdminService) ListUsers(ctx context.Context) ([]api.AdminUser, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}
	return nil, nil
}

func (m *MockAdminService) SetUserDisabled(ctx context.Context, operator domain.Session, uid domain.IdentityId, disabled bool) error {
	if m.SetUserDisabledFunc != nil {
		return m.SetUserDisabledFunc(ctx, operator, uid, disabled)
	}
	return nil
}

func (m *MockAdminService) ListBans(ctx context.Context) ([]domain.BanRecord, error) {
	if m.ListBansFunc != nil {
		return m.ListBansFunc(ctx)
	}
	return nil, nil
}

func (m *MockAdminService) RefreshBans(ctx context.Context) error {
	if m.RefreshBansFunc != nil {
		return m.RefreshBansFunc(ctx)
	}
	return nil
}

func createRequest(t *testing.T, method, url string, body []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, bytes.NewBuffer(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func addSessionToContext(req *http.Request, session *domain.Session) *http.Request {
	return req.WithContext(mw.WithSession(req.Context(), session))
}
