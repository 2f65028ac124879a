// Package moderation records bans and business status changes.
package moderation

import (
	"context"
	"strings"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
)

type Storage interface {
	IsBanned(ctx context.Context, id domain.IdentityId) (bool, error)
	Ban(ctx context.Context, record domain.BanRecord) error
	Unban(ctx context.Context, id domain.IdentityId) error
	Bans(ctx context.Context) ([]domain.BanRecord, error)
	RecentlyBanned(ctx context.Context, since time.Time) ([]domain.IdentityId, error)
	SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error
}

type Options struct {
	// FailClosed treats a failed ban lookup as banned. Off by default.
	FailClosed bool
}

type Service struct {
	storage Storage
	cache   *Cache
	opts    Options
}

// New builds the service. cache may be nil when no process-local blacklist is kept.
func New(storage Storage, cache *Cache, opts Options) *Service {
	return &Service{storage: storage, cache: cache, opts: opts}
}

// IsBanned reports whether a ban record exists. Storage failures resolve to not banned
// unless FailClosed is set.
func (s *Service) IsBanned(ctx context.Context, id domain.IdentityId) bool {
	banned, err := s.storage.IsBanned(ctx, id)
	if err != nil {
		logger.Log.Warn("ban check failed",
			"component", "moderation",
			"identity_id", id,
			"fail_closed", s.opts.FailClosed,
			"error", err)
		return s.opts.FailClosed
	}
	return banned
}

// Ban writes a ban record. Banning twice keeps the first record.
func (s *Service) Ban(ctx context.Context, id domain.IdentityId, email domain.Email, reason, bannedBy string) error {
	if strings.TrimSpace(reason) == "" {
		reason = domain.DefaultBanReason
	}
	err := s.storage.Ban(ctx, domain.BanRecord{
		Id:       id,
		Email:    email,
		Reason:   reason,
		BannedBy: bannedBy,
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Add(id)
	}
	logger.Log.Info("identity banned", "component", "moderation", "identity_id", id, "banned_by", bannedBy)
	return nil
}

func (s *Service) Unban(ctx context.Context, id domain.IdentityId) error {
	if err := s.storage.Unban(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Remove(id)
	}
	logger.Log.Info("identity unbanned", "component", "moderation", "identity_id", id)
	return nil
}

func (s *Service) ListBans(ctx context.Context) ([]domain.BanRecord, error) {
	return s.storage.Bans(ctx)
}

// SetBusinessStatus overwrites the status. Any valid status may follow any other.
func (s *Service) SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error {
	if !status.Valid() {
		return errors.New(errors.ValidationError, "Unknown business status: "+string(status))
	}
	if err := s.storage.SetBusinessStatus(ctx, id, status); err != nil {
		return err
	}
	logger.Log.Info("business status changed", "component", "moderation", "business_id", id, "status", status)
	return nil
}

// RefreshCache reloads the blacklist cache immediately.
func (s *Service) RefreshCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Update(ctx)
}

func (s *Service) Cache() *Cache {
	return s.cache
}
