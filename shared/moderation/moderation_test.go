package moderation

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	IsBannedFunc          func(ctx context.Context, id domain.IdentityId) (bool, error)
	BanFunc               func(ctx context.Context, record domain.BanRecord) error
	UnbanFunc             func(ctx context.Context, id domain.IdentityId) error
	BansFunc              func(ctx context.Context) ([]domain.BanRecord, error)
	RecentlyBannedFunc    func(ctx context.Context, since time.Time) ([]domain.IdentityId, error)
	SetBusinessStatusFunc func(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error
}

func (m *MockStorage) IsBanned(ctx context.Context, id domain.IdentityId) (bool, error) {
	if m.IsBannedFunc != nil {
		return m.IsBannedFunc(ctx, id)
	}
	return false, nil
}

func (m *MockStorage) Ban(ctx context.Context, record domain.BanRecord) error {
	if m.BanFunc != nil {
		return m.BanFunc(ctx, record)
	}
	return nil
}

func (m *MockStorage) Unban(ctx context.Context, id domain.IdentityId) error {
	if m.UnbanFunc != nil {
		return m.UnbanFunc(ctx, id)
	}
	return nil
}

func (m *MockStorage) Bans(ctx context.Context) ([]domain.BanRecord, error) {
	if m.BansFunc != nil {
		return m.BansFunc(ctx)
	}
	return nil, nil
}

func (m *MockStorage) RecentlyBanned(ctx context.Context, since time.Time) ([]domain.IdentityId, error) {
	if m.RecentlyBannedFunc != nil {
		return m.RecentlyBannedFunc(ctx, since)
	}
	return nil, nil
}

func (m *MockStorage) SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error {
	if m.SetBusinessStatusFunc != nil {
		return m.SetBusinessStatusFunc(ctx, id, status)
	}
	return nil
}

func TestIsBanned(t *testing.T) {
	ctx := context.Background()
	failing := &MockStorage{IsBannedFunc: func(ctx context.Context, id domain.IdentityId) (bool, error) {
		return false, stderrors.New("connection refused")
	}}

	t.Run("banned", func(t *testing.T) {
		s := New(&MockStorage{IsBannedFunc: func(ctx context.Context, id domain.IdentityId) (bool, error) {
			return id == "u1", nil
		}}, nil, Options{})
		assert.True(t, s.IsBanned(ctx, "u1"))
		assert.False(t, s.IsBanned(ctx, "u2"))
	})

	t.Run("fails open by default", func(t *testing.T) {
		assert.False(t, New(failing, nil, Options{}).IsBanned(ctx, "u1"))
	})

	t.Run("fails closed when configured", func(t *testing.T) {
		assert.True(t, New(failing, nil, Options{FailClosed: true}).IsBanned(ctx, "u1"))
	})
}

func TestBan(t *testing.T) {
	ctx := context.Background()

	t.Run("empty reason gets default", func(t *testing.T) {
		var saved domain.BanRecord
		storage := &MockStorage{BanFunc: func(ctx context.Context, record domain.BanRecord) error {
			saved = record
			return nil
		}}
		cache := NewCache(storage, time.Hour)
		s := New(storage, cache, Options{})

		require.NoError(t, s.Ban(ctx, "u1", "a@b.c", "  ", "admin"))

		assert.Equal(t, domain.DefaultBanReason, saved.Reason)
		assert.Equal(t, domain.Email("a@b.c"), saved.Email)
		assert.Equal(t, "admin", saved.BannedBy)
		assert.True(t, cache.IsBlacklisted("u1"))
	})

	t.Run("explicit reason kept", func(t *testing.T) {
		var saved domain.BanRecord
		s := New(&MockStorage{BanFunc: func(ctx context.Context, record domain.BanRecord) error {
			saved = record
			return nil
		}}, nil, Options{})

		require.NoError(t, s.Ban(ctx, "u1", "a@b.c", "spam", "admin"))
		assert.Equal(t, "spam", saved.Reason)
	})

	t.Run("storage error leaves cache untouched", func(t *testing.T) {
		storage := &MockStorage{BanFunc: func(ctx context.Context, record domain.BanRecord) error {
			return stderrors.New("boom")
		}}
		cache := NewCache(storage, time.Hour)

		assert.Error(t, New(storage, cache, Options{}).Ban(ctx, "u1", "", "", "admin"))
		assert.False(t, cache.IsBlacklisted("u1"))
	})
}

func TestUnban(t *testing.T) {
	storage := &MockStorage{}
	cache := NewCache(storage, time.Hour)
	cache.Add("u1")
	s := New(storage, cache, Options{})

	require.NoError(t, s.Unban(context.Background(), "u1"))
	assert.False(t, cache.IsBlacklisted("u1"))

	// unbanning again is still a success
	require.NoError(t, s.Unban(context.Background(), "u1"))
}

func TestSetBusinessStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("any transition allowed", func(t *testing.T) {
		var got []domain.BusinessStatus
		s := New(&MockStorage{SetBusinessStatusFunc: func(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error {
			got = append(got, status)
			return nil
		}}, nil, Options{})

		require.NoError(t, s.SetBusinessStatus(ctx, "b1", domain.BusinessSuspended))
		require.NoError(t, s.SetBusinessStatus(ctx, "b1", domain.BusinessPending))
		assert.Equal(t, []domain.BusinessStatus{domain.BusinessSuspended, domain.BusinessPending}, got)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		err := New(&MockStorage{}, nil, Options{}).SetBusinessStatus(ctx, "b1", "archived")
		assert.True(t, errors.IsKind(err, errors.ValidationError))
	})

	t.Run("not found propagates", func(t *testing.T) {
		s := New(&MockStorage{SetBusinessStatusFunc: func(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error {
			return errors.New(errors.NotFound, "business not found")
		}}, nil, Options{})

		err := s.SetBusinessStatus(ctx, "missing", domain.BusinessActive)
		assert.True(t, errors.IsKind(err, errors.NotFound))
	})
}

func TestRefreshCache(t *testing.T) {
	storage := &MockStorage{RecentlyBannedFunc: func(ctx context.Context, since time.Time) ([]domain.IdentityId, error) {
		return []domain.IdentityId{"u9"}, nil
	}}
	cache := NewCache(storage, time.Hour)
	s := New(storage, cache, Options{})

	require.NoError(t, s.RefreshCache(context.Background()))
	assert.True(t, s.Cache().IsBlacklisted("u9"))

	assert.NoError(t, New(storage, nil, Options{}).RefreshCache(context.Background()))
}
