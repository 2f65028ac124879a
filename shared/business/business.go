// Package business owns storefront records: creation on seller sign-up and lookups by slug or owner.
package business

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/slug"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const DefaultThemeColor = "#4f46e5"

type Storage interface {
	SlugExists(ctx context.Context, slug domain.Slug) (bool, error)
	SaveBusiness(ctx context.Context, b domain.Business) error
	BusinessById(ctx context.Context, id domain.BusinessId) (domain.Business, error)
	BusinessBySlug(ctx context.Context, slug domain.Slug) (domain.Business, error)
	BusinessesByOwner(ctx context.Context, ownerId domain.IdentityId) ([]domain.Business, error)
	Businesses(ctx context.Context) ([]domain.Business, error)
}

type Service struct {
	storage    Storage
	policy     *bluemonday.Policy
	themeColor string
	now        func() time.Time
}

func New(storage Storage, themeColor string) *Service {
	if themeColor == "" {
		themeColor = DefaultThemeColor
	}
	return &Service{
		storage:    storage,
		policy:     bluemonday.StrictPolicy(),
		themeColor: themeColor,
		now:        time.Now,
	}
}

// IsSlugTaken reports whether a business already uses s.
func (s *Service) IsSlugTaken(ctx context.Context, sl domain.Slug) (bool, error) {
	return s.storage.SlugExists(ctx, sl)
}

// Create registers a pending business owned by owner. The slug must already be sanitized.
func (s *Service) Create(ctx context.Context, owner domain.Session, name string, sl domain.Slug) (domain.Business, error) {
	name = strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(name)))
	if name == "" {
		return domain.Business{}, errors.New(errors.ValidationError, "Business name is required.")
	}
	if err := slug.Validate(sl); err != nil {
		return domain.Business{}, err
	}

	taken, err := s.storage.SlugExists(ctx, sl)
	if err != nil {
		return domain.Business{}, err
	}
	if taken {
		return domain.Business{}, errors.New(errors.SlugTaken, "This store URL is already taken. Please choose another.")
	}

	now := s.now().UTC()
	b := domain.Business{
		Id:         uuid.NewString(),
		Name:       name,
		Slug:       sl,
		OwnerId:    owner.IdentityId,
		OwnerEmail: owner.Email,
		ThemeColor: s.themeColor,
		Status:     domain.BusinessPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	// a concurrent registration can still win the slug; storage maps that to SlugTaken
	if err := s.storage.SaveBusiness(ctx, b); err != nil {
		return domain.Business{}, err
	}
	return b, nil
}

func (s *Service) ById(ctx context.Context, id domain.BusinessId) (domain.Business, error) {
	return s.storage.BusinessById(ctx, id)
}

func (s *Service) BySlug(ctx context.Context, sl domain.Slug) (domain.Business, error) {
	return s.storage.BusinessBySlug(ctx, sl)
}

// ByOwner returns the owner's businesses, oldest first.
func (s *Service) ByOwner(ctx context.Context, ownerId domain.IdentityId) ([]domain.Business, error) {
	return s.storage.BusinessesByOwner(ctx, ownerId)
}

func (s *Service) List(ctx context.Context) ([]domain.Business, error) {
	return s.storage.Businesses(ctx)
}
