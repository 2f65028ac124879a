// Package directory keeps per-identity user profiles, separate from the credential store's own record.
package directory

import (
	"context"
	"html"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/microcosm-cc/bluemonday"
)

type Storage interface {
	Profile(ctx context.Context, id domain.IdentityId) (domain.UserProfile, error)
	UpsertProfile(ctx context.Context, id domain.IdentityId, fields domain.ProfileFields) error
}

type Service struct {
	storage Storage
	policy  *bluemonday.Policy
}

func New(storage Storage) *Service {
	return &Service{storage: storage, policy: bluemonday.StrictPolicy()}
}

// GetProfile returns the profile and whether it exists.
func (s *Service) GetProfile(ctx context.Context, id domain.IdentityId) (domain.UserProfile, bool, error) {
	p, err := s.storage.Profile(ctx, id)
	if errors.IsKind(err, errors.NotFound) {
		return domain.UserProfile{}, false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, err
	}
	return p, true, nil
}

// UpsertProfile merges fields into the profile. Unset fields are never overwritten.
func (s *Service) UpsertProfile(ctx context.Context, id domain.IdentityId, fields domain.ProfileFields) error {
	if fields.Role != nil && !validRole(*fields.Role) {
		return errors.New(errors.ValidationError, "Unknown role: "+string(*fields.Role))
	}
	if fields.Status != nil && *fields.Status != domain.UserActive && *fields.Status != domain.UserBanned {
		return errors.New(errors.ValidationError, "Unknown status: "+string(*fields.Status))
	}
	if fields.Name != nil {
		name := html.UnescapeString(s.policy.Sanitize(*fields.Name))
		fields.Name = &name
	}
	return s.storage.UpsertProfile(ctx, id, fields)
}

// EnsureProfile returns the session's profile, creating it with defaultRole when absent.
func (s *Service) EnsureProfile(ctx context.Context, session domain.Session, defaultRole domain.Role) (domain.UserProfile, error) {
	p, found, err := s.GetProfile(ctx, session.IdentityId)
	if err != nil {
		return domain.UserProfile{}, err
	}
	if found {
		return p, nil
	}
	return s.AssignRole(ctx, session, defaultRole)
}

// AssignRole writes the session's email, name and role through a merge write and returns the result.
func (s *Service) AssignRole(ctx context.Context, session domain.Session, role domain.Role) (domain.UserProfile, error) {
	fields := domain.ProfileFields{Email: &session.Email, Role: &role}
	if session.DisplayName != "" {
		fields.Name = &session.DisplayName
	}
	if err := s.UpsertProfile(ctx, session.IdentityId, fields); err != nil {
		return domain.UserProfile{}, err
	}
	return s.storage.Profile(ctx, session.IdentityId)
}

// UpdateStatus sets the status of an existing profile. Identities without a profile are left
// alone: a status-only write would create a profile with the default role.
func (s *Service) UpdateStatus(ctx context.Context, id domain.IdentityId, status domain.UserStatus) error {
	_, found, err := s.GetProfile(ctx, id)
	if err != nil || !found {
		return err
	}
	return s.UpsertProfile(ctx, id, domain.ProfileFields{Status: &status})
}

func validRole(r domain.Role) bool {
	switch r {
	case domain.RoleUser, domain.RoleSeller, domain.RoleAdmin:
		return true
	}
	return false
}
