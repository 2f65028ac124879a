// Package orders places and lists storefront orders.
package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
)

type Storage interface {
	SaveOrder(ctx context.Context, o domain.Order) error
	Order(ctx context.Context, id domain.OrderId) (domain.Order, error)
	OrdersByUser(ctx context.Context, userId domain.IdentityId) ([]domain.Order, error)
}

type Businesses interface {
	BySlug(ctx context.Context, slug domain.Slug) (domain.Business, error)
}

type Service struct {
	storage    Storage
	businesses Businesses
	now        func() time.Time
}

func New(storage Storage, businesses Businesses) *Service {
	return &Service{storage: storage, businesses: businesses, now: time.Now}
}

// Create places a pending order at the store identified by slug. Suspended stores take no orders.
func (s *Service) Create(ctx context.Context, buyer domain.Session, storeSlug domain.Slug, items []domain.OrderItem) (domain.Order, error) {
	if len(items) == 0 {
		return domain.Order{}, errors.New(errors.ValidationError, "Order has no items.")
	}
	b, err := s.businesses.BySlug(ctx, storeSlug)
	if err != nil {
		return domain.Order{}, err
	}
	if b.Status == domain.BusinessSuspended {
		return domain.Order{}, errors.New(errors.AccountBlocked, "This store is currently unavailable.")
	}

	var total int64
	for _, it := range items {
		if it.Quantity <= 0 || it.Price < 0 {
			return domain.Order{}, errors.New(errors.ValidationError, "Invalid order item: "+it.Name)
		}
		total += int64(it.Quantity) * it.Price
	}

	now := s.now().UTC()
	o := domain.Order{
		Id:         fmt.Sprintf("ORD-%d", now.UnixMilli()),
		BusinessId: b.Id,
		UserId:     buyer.IdentityId,
		Items:      items,
		Total:      total,
		Status:     domain.OrderPending,
		CreatedAt:  now,
	}
	if err := s.storage.SaveOrder(ctx, o); err != nil {
		return domain.Order{}, err
	}
	logger.Log.Info("order placed", "order_id", o.Id, "business_id", b.Id, "user_id", buyer.IdentityId, "total", total)
	return o, nil
}

// Get returns the order if it belongs to userId. Someone else's order reads as not found.
func (s *Service) Get(ctx context.Context, userId domain.IdentityId, id domain.OrderId) (domain.Order, error) {
	o, err := s.storage.Order(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if o.UserId != userId {
		return domain.Order{}, errors.New(errors.NotFound, "order not found")
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userId domain.IdentityId) ([]domain.Order, error) {
	return s.storage.OrdersByUser(ctx, userId)
}
