package service

import (
	"context"
	"fmt"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/logger"
)

type AdminService interface {
	ListUsers(ctx context.Context) ([]api.AdminUser, error)
	SetUserDisabled(ctx context.Context, operator domain.Session, uid domain.IdentityId, disabled bool) error
	ListBans(ctx context.Context) ([]domain.BanRecord, error)
	RefreshBans(ctx context.Context) error
}

type Identities interface {
	ListUsers(ctx context.Context, limit int) ([]api.AdminUser, error)
	SetUserDisabled(ctx context.Context, id domain.IdentityId, disabled bool) (domain.Identity, error)
}

type Moderation interface {
	Ban(ctx context.Context, id domain.IdentityId, email domain.Email, reason, bannedBy string) error
	Unban(ctx context.Context, id domain.IdentityId) error
	ListBans(ctx context.Context) ([]domain.BanRecord, error)
	RefreshCache(ctx context.Context) error
}

type Profiles interface {
	UpdateStatus(ctx context.Context, id domain.IdentityId, status domain.UserStatus) error
}

type Admin struct {
	identities Identities
	moderation Moderation
	profiles   Profiles
	listCap    int
}

func NewAdmin(identities Identities, moderation Moderation, profiles Profiles, listCap int) *Admin {
	return &Admin{identities: identities, moderation: moderation, profiles: profiles, listCap: listCap}
}

func (a *Admin) ListUsers(ctx context.Context) ([]api.AdminUser, error) {
	return a.identities.ListUsers(ctx, a.listCap)
}

// SetUserDisabled toggles the identity and keeps its ban record in step. When the ban record
// cannot be written the toggle is reverted, so callers never see a half-applied change.
// The profile status follows afterwards; it is display data and a failure there is only logged.
func (a *Admin) SetUserDisabled(ctx context.Context, operator domain.Session, uid domain.IdentityId, disabled bool) error {
	identity, err := a.identities.SetUserDisabled(ctx, uid, disabled)
	if err != nil {
		return err
	}

	if disabled {
		err = a.moderation.Ban(ctx, uid, identity.Email, domain.DefaultBanReason, operator.Email)
	} else {
		err = a.moderation.Unban(ctx, uid)
	}
	if err == nil {
		a.mirrorStatus(ctx, uid, disabled)
		return nil
	}

	if _, revertErr := a.identities.SetUserDisabled(ctx, uid, !disabled); revertErr != nil {
		logger.Log.Error("failed to revert disabled flag",
			"identity_id", uid,
			"disabled", !disabled,
			"error", revertErr)
	}
	return fmt.Errorf("sync ban record: %w", err)
}

func (a *Admin) mirrorStatus(ctx context.Context, uid domain.IdentityId, disabled bool) {
	status := domain.UserActive
	if disabled {
		status = domain.UserBanned
	}
	if err := a.profiles.UpdateStatus(ctx, uid, status); err != nil {
		logger.Log.Warn("failed to update profile status",
			"identity_id", uid,
			"status", status,
			"error", err)
	}
}

func (a *Admin) ListBans(ctx context.Context) ([]domain.BanRecord, error) {
	return a.moderation.ListBans(ctx)
}

func (a *Admin) RefreshBans(ctx context.Context) error {
	return a.moderation.RefreshCache(ctx)
}
