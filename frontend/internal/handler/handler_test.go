package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/a2z-dev/a2z/frontend/internal/apiclient"
	"github.com/a2z-dev/a2z/frontend/internal/console"
	"github.com/a2z-dev/a2z/frontend/internal/reconcile"
	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/config"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	mw "github.com/a2z-dev/a2z/shared/middleware"
	"github.com/a2z-dev/a2z/shared/syslog"
	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/require"
)

// MockSessions records persisted sessions and sign-outs.
type MockSessions struct {
	SignInFunc           func(ctx context.Context, email, password string) (*domain.Session, error)
	SignUpFunc           func(ctx context.Context, email, password, name string) (*domain.Session, error)
	CurrentFunc          func(r *http.Request) *domain.Session
	SnapshotFunc         func(r *http.Request) *domain.Session
	BeginProviderFunc    func(provider, state string) (string, string, error)
	CompleteProviderFunc func(ctx context.Context, provider, blob string, params goth.Params) (*domain.Session, error)
	VerifyEmailFunc      func(ctx context.Context, token string) error
	ResetPasswordFunc    func(ctx context.Context, token, pw string) error

	Persisted    []*domain.Session
	SignOuts     int
	ResetEmails  []string
	ResendEmails []string
}

func (m *MockSessions) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	if m.SignInFunc != nil {
		return m.SignInFunc(ctx, email, password)
	}
	return &domain.Session{IdentityId: "id-" + email, Email: email}, nil
}

func (m *MockSessions) SignUp(ctx context.Context, email, password, name string) (*domain.Session, error) {
	if m.SignUpFunc != nil {
		return m.SignUpFunc(ctx, email, password, name)
	}
	return &domain.Session{IdentityId: "id-" + email, Email: email, DisplayName: name}, nil
}

func (m *MockSessions) SendVerificationEmail(context.Context, *domain.Session) {}

func (m *MockSessions) Persist(w http.ResponseWriter, s *domain.Session) error {
	m.Persisted = append(m.Persisted, s)
	http.SetCookie(w, &http.Cookie{Name: mw.AccessTokenCookie, Value: "token-" + s.IdentityId})
	return nil
}

func (m *MockSessions) SignOut(w http.ResponseWriter) { m.SignOuts++ }

func (m *MockSessions) Current(r *http.Request) *domain.Session {
	if m.CurrentFunc != nil {
		return m.CurrentFunc(r)
	}
	return mw.GetSessionFromContext(r)
}

func (m *MockSessions) Snapshot(r *http.Request) *domain.Session {
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(r)
	}
	return nil
}

func (m *MockSessions) BeginProvider(provider, state string) (string, string, error) {
	if m.BeginProviderFunc != nil {
		return m.BeginProviderFunc(provider, state)
	}
	return "https://accounts.example/auth?state=" + state, `{"AuthURL":"x"}`, nil
}

func (m *MockSessions) CompleteProvider(ctx context.Context, provider, blob string, params goth.Params) (*domain.Session, error) {
	if m.CompleteProviderFunc != nil {
		return m.CompleteProviderFunc(ctx, provider, blob, params)
	}
	return &domain.Session{IdentityId: "id-g", Email: "g@a2z.dev"}, nil
}

func (m *MockSessions) VerifyEmail(ctx context.Context, token string) error {
	if m.VerifyEmailFunc != nil {
		return m.VerifyEmailFunc(ctx, token)
	}
	return nil
}

func (m *MockSessions) RequestPasswordReset(_ context.Context, email string) {
	m.ResetEmails = append(m.ResetEmails, email)
}

func (m *MockSessions) ResendPasswordReset(_ context.Context, email string) {
	m.ResendEmails = append(m.ResendEmails, email)
}

func (m *MockSessions) ResetPassword(ctx context.Context, token, pw string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, pw)
	}
	return nil
}

type memDirectory struct {
	profiles map[domain.IdentityId]domain.UserProfile
}

func (d *memDirectory) EnsureProfile(_ context.Context, s domain.Session, role domain.Role) (domain.UserProfile, error) {
	if p, ok := d.profiles[s.IdentityId]; ok {
		return p, nil
	}
	p := domain.UserProfile{Id: s.IdentityId, Email: s.Email, Role: role, Status: domain.UserActive}
	d.profiles[s.IdentityId] = p
	return p, nil
}

func (d *memDirectory) AssignRole(ctx context.Context, s domain.Session, role domain.Role) (domain.UserProfile, error) {
	p, _ := d.EnsureProfile(ctx, s, role)
	p.Role = role
	d.profiles[s.IdentityId] = p
	return p, nil
}

type memModeration struct {
	banned map[domain.IdentityId]bool
	status map[domain.BusinessId]domain.BusinessStatus
	err    error
}

func (m *memModeration) IsBanned(_ context.Context, id domain.IdentityId) bool { return m.banned[id] }

func (m *memModeration) SetBusinessStatus(_ context.Context, id domain.BusinessId, s domain.BusinessStatus) error {
	if m.err != nil {
		return m.err
	}
	m.status[id] = s
	return nil
}

type memBusinesses struct {
	list []domain.Business
}

func (b *memBusinesses) IsSlugTaken(_ context.Context, sl string) (bool, error) {
	_, err := b.BySlug(context.Background(), sl)
	return err == nil, nil
}

func (b *memBusinesses) Create(_ context.Context, owner domain.Session, name, sl string) (domain.Business, error) {
	biz := domain.Business{Id: "b-" + sl, Name: name, Slug: sl, OwnerId: owner.IdentityId, OwnerEmail: owner.Email, Status: domain.BusinessPending}
	b.list = append(b.list, biz)
	return biz, nil
}

func (b *memBusinesses) ByOwner(_ context.Context, owner domain.IdentityId) ([]domain.Business, error) {
	var owned []domain.Business
	for _, biz := range b.list {
		if biz.OwnerId == owner {
			owned = append(owned, biz)
		}
	}
	return owned, nil
}

func (b *memBusinesses) BySlug(_ context.Context, sl string) (domain.Business, error) {
	for _, biz := range b.list {
		if biz.Slug == sl {
			return biz, nil
		}
	}
	return domain.Business{}, errors.New(errors.NotFound, "business not found")
}

func (b *memBusinesses) List(context.Context) ([]domain.Business, error) {
	return b.list, nil
}

type MockOrders struct {
	CreateFunc     func(ctx context.Context, buyer domain.Session, slug string, items []domain.OrderItem) (domain.Order, error)
	GetFunc        func(ctx context.Context, userId, id string) (domain.Order, error)
	ListByUserFunc func(ctx context.Context, userId string) ([]domain.Order, error)
}

func (m *MockOrders) Create(ctx context.Context, buyer domain.Session, slug string, items []domain.OrderItem) (domain.Order, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, buyer, slug, items)
	}
	return domain.Order{Id: "ORD-1", UserId: buyer.IdentityId, Items: items}, nil
}

func (m *MockOrders) Get(ctx context.Context, userId, id string) (domain.Order, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userId, id)
	}
	return domain.Order{Id: id, UserId: userId}, nil
}

func (m *MockOrders) ListByUser(ctx context.Context, userId string) ([]domain.Order, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userId)
	}
	return nil, nil
}

type MockErrorLogger struct {
	Reports []syslog.Report
}

func (m *MockErrorLogger) LogError(_ context.Context, r syslog.Report) string {
	m.Reports = append(m.Reports, r)
	return "A2Z-ERR-654321"
}

type MockAdminClient struct {
	ListUsersFunc       func(ctx context.Context, creds apiclient.Credentials) ([]api.AdminUser, error)
	SetUserDisabledFunc func(ctx context.Context, creds apiclient.Credentials, uid string, disabled bool) (string, error)
	ListBansFunc        func(ctx context.Context, creds apiclient.Credentials) ([]domain.BanRecord, error)
}

func (m *MockAdminClient) ListUsers(ctx context.Context, creds apiclient.Credentials) ([]api.AdminUser, error) {
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, creds)
	}
	return nil, nil
}

func (m *MockAdminClient) SetUserDisabled(ctx context.Context, creds apiclient.Credentials, uid string, disabled bool) (string, error) {
	if m.SetUserDisabledFunc != nil {
		return m.SetUserDisabledFunc(ctx, creds, uid, disabled)
	}
	return "ok", nil
}

func (m *MockAdminClient) ListBans(ctx context.Context, creds apiclient.Credentials) ([]domain.BanRecord, error) {
	if m.ListBansFunc != nil {
		return m.ListBansFunc(ctx, creds)
	}
	return nil, nil
}

type emptyLogs struct{}

func (emptyLogs) Recent(context.Context, int) ([]domain.LogEntry, error) { return nil, nil }

type okHealth struct{}

func (okHealth) Ping(context.Context) error { return nil }

type fixture struct {
	h          *Handler
	sessions   *MockSessions
	directory  *memDirectory
	moderation *memModeration
	businesses *memBusinesses
	orders     *MockOrders
	reporter   *MockErrorLogger
	client     *MockAdminClient
	cfg        *config.Config
}

func newFixture() *fixture {
	fx := &fixture{
		sessions:   &MockSessions{},
		directory:  &memDirectory{profiles: map[domain.IdentityId]domain.UserProfile{}},
		moderation: &memModeration{banned: map[domain.IdentityId]bool{}, status: map[domain.BusinessId]domain.BusinessStatus{}},
		businesses: &memBusinesses{},
		orders:     &MockOrders{},
		reporter:   &MockErrorLogger{},
		client:     &MockAdminClient{},
		cfg: &config.Config{
			Public:  config.Public{AdminEmails: []string{"root@a2z.dev"}},
			Private: config.Private{AdminSecret: "s3cret"},
		},
	}
	flow := reconcile.New(fx.sessions, fx.directory, fx.moderation, fx.businesses, "a2z-demo")
	fx.h = New(Deps{
		Sessions: fx.sessions,
		Flow:     flow,
		Consoles: console.NewRegistry(time.Minute, 50),
		Services: console.Services{
			Client:     fx.client,
			Businesses: fx.businesses,
			Moderation: fx.moderation,
			Logs:       emptyLogs{},
		},
		Stores: fx.businesses,
		Orders: fx.orders,
		Errors: fx.reporter,
		Health: okHealth{},
		Config: fx.cfg,
	})
	return fx
}

func createRequest(t *testing.T, method, url, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func addSessionToContext(req *http.Request, s *domain.Session) *http.Request {
	return req.WithContext(mw.WithSession(req.Context(), s))
}

func withURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}
