package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	fx := newFixture()
	fx.businesses.list = []domain.Business{
		{Id: "b1", Slug: "shop", Status: domain.BusinessActive},
		{Id: "b2", Slug: "closed", Status: domain.BusinessSuspended},
	}

	tests := []struct {
		slug         string
		expectedCode int
	}{
		{"shop", http.StatusOK},
		{"closed", http.StatusForbidden},
		{"missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/stores/"+tt.slug, nil), "slug", tt.slug)
			rr := httptest.NewRecorder()

			fx.h.Store(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
		})
	}
}

func TestCreateOrder(t *testing.T) {
	buyer := &domain.Session{IdentityId: "u1", Email: "u1@a2z.dev"}

	t.Run("created", func(t *testing.T) {
		fx := newFixture()
		var gotSlug string
		fx.orders.CreateFunc = func(_ context.Context, b domain.Session, sl string, items []domain.OrderItem) (domain.Order, error) {
			gotSlug = sl
			return domain.Order{Id: "ORD-1", UserId: b.IdentityId, Items: items, Total: 500}, nil
		}
		req := createRequest(t, http.MethodPost, "/", `{"items":[{"name":"Tea","quantity":2,"price":250}]}`)
		req = addSessionToContext(withURLParams(req, "slug", "shop"), buyer)
		rr := httptest.NewRecorder()

		fx.h.CreateOrder(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		o := decode[domain.Order](t, rr)
		assert.Equal(t, "u1", o.UserId)
		assert.Equal(t, "shop", gotSlug)
	})

	t.Run("empty cart", func(t *testing.T) {
		fx := newFixture()
		req := createRequest(t, http.MethodPost, "/", `{"items":[]}`)
		req = addSessionToContext(withURLParams(req, "slug", "shop"), buyer)
		rr := httptest.NewRecorder()

		fx.h.CreateOrder(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrders(t *testing.T) {
	buyer := &domain.Session{IdentityId: "u1"}
	fx := newFixture()
	fx.orders.ListByUserFunc = func(_ context.Context, userId string) ([]domain.Order, error) {
		return []domain.Order{{Id: "ORD-1", UserId: userId}}, nil
	}
	fx.orders.GetFunc = func(_ context.Context, userId, id string) (domain.Order, error) {
		if id != "ORD-1" {
			return domain.Order{}, errors.New(errors.NotFound, "order not found")
		}
		return domain.Order{Id: id, UserId: userId}, nil
	}

	rr := httptest.NewRecorder()
	fx.h.Orders(rr, addSessionToContext(httptest.NewRequest(http.MethodGet, "/api/orders", nil), buyer))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[api.OrdersResponse](t, rr).Orders, 1)

	rr = httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/orders/ORD-2", nil), "id", "ORD-2")
	fx.h.Order(rr, addSessionToContext(req, buyer))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSuggestSlug(t *testing.T) {
	fx := newFixture()
	rr := httptest.NewRecorder()

	fx.h.SuggestSlug(rr, httptest.NewRequest(http.MethodGet, "/api/seller/slug?name=Joe%27s+Coffee+Shop", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "joe-s-coffee-shop", decode[api.SlugResponse](t, rr).Slug)
}

func TestSellerRegister(t *testing.T) {
	t.Run("signed in visitor opens a store", func(t *testing.T) {
		fx := newFixture()
		req := createRequest(t, http.MethodPost, "/", `{"businessName":"Joe's Coffee"}`)
		req = addSessionToContext(req, &domain.Session{IdentityId: "u1", Email: "u1@a2z.dev"})
		rr := httptest.NewRecorder()

		fx.h.SellerRegister(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "/a2z/joe-s-coffee/admin", decode[api.AuthResponse](t, rr).Redirect)
		require.Len(t, fx.businesses.list, 1)
		assert.Equal(t, domain.RoleSeller, fx.directory.profiles["u1"].Role)
	})

	t.Run("taken slug", func(t *testing.T) {
		fx := newFixture()
		fx.businesses.list = []domain.Business{{Id: "b1", Slug: "joe-s-coffee"}}
		req := createRequest(t, http.MethodPost, "/", `{"businessName":"Joe's Coffee"}`)
		req = addSessionToContext(req, &domain.Session{IdentityId: "u1"})
		rr := httptest.NewRecorder()

		fx.h.SellerRegister(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Len(t, fx.businesses.list, 1)
	})
}

func TestReportError(t *testing.T) {
	fx := newFixture()
	req := createRequest(t, http.MethodPost, "/api/errors", `{"message":"boom","stack":"at x","url":"/a2z/shop"}`)
	req.Header.Set("User-Agent", "test-agent")
	req = addSessionToContext(req, &domain.Session{IdentityId: "u1", Email: "u1@a2z.dev"})
	rr := httptest.NewRecorder()

	fx.h.ReportError(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "A2Z-ERR-654321", decode[api.ErrorReportResponse](t, rr).RefId)
	require.Len(t, fx.reporter.Reports, 1)
	r := fx.reporter.Reports[0]
	assert.Equal(t, "boom", r.Message)
	assert.Equal(t, "/a2z/shop", r.URL)
	assert.Equal(t, "error", r.Type)
}

func TestHealth(t *testing.T) {
	fx := newFixture()
	rr := httptest.NewRecorder()
	fx.h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
