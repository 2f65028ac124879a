package storage

import (
	"context"
	"testing"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBusiness(owner string) domain.Business {
	return domain.Business{
		Id:         newId(),
		Name:       "Demo Shop",
		Slug:       "demo-" + uuid.NewString()[:8],
		OwnerId:    owner,
		OwnerEmail: "owner@example.com",
		ThemeColor: "#4f46e5",
		Status:     domain.BusinessPending,
	}
}

func TestBusinesses(t *testing.T) {
	ctx := context.Background()
	owner := newId()
	first := newBusiness(owner)
	require.NoError(t, storage.SaveBusiness(ctx, first))

	t.Run("slug uniqueness", func(t *testing.T) {
		exists, err := storage.SlugExists(ctx, first.Slug)
		require.NoError(t, err)
		assert.True(t, exists)

		dup := newBusiness(newId())
		dup.Slug = first.Slug
		err = storage.SaveBusiness(ctx, dup)
		assert.True(t, errors.IsKind(err, errors.SlugTaken))
	})

	t.Run("by owner is oldest first", func(t *testing.T) {
		second := newBusiness(owner)
		require.NoError(t, storage.SaveBusiness(ctx, second))

		list, err := storage.BusinessesByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.Id, list[0].Id)

		list, err = storage.BusinessesByOwner(ctx, newId())
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := storage.BusinessBySlug(ctx, first.Slug)
		require.NoError(t, err)
		assert.Equal(t, first.Id, got.Id)
		assert.Equal(t, domain.BusinessPending, got.Status)

		_, err = storage.BusinessById(ctx, newId())
		assert.True(t, errors.IsKind(err, errors.NotFound))
	})

	t.Run("status overwrite accepts any transition", func(t *testing.T) {
		require.NoError(t, storage.SetBusinessStatus(ctx, first.Id, domain.BusinessSuspended))
		require.NoError(t, storage.SetBusinessStatus(ctx, first.Id, domain.BusinessSuspended))

		got, err := storage.BusinessById(ctx, first.Id)
		require.NoError(t, err)
		assert.Equal(t, domain.BusinessSuspended, got.Status)
		assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

		err = storage.SetBusinessStatus(ctx, newId(), domain.BusinessActive)
		assert.True(t, errors.IsKind(err, errors.NotFound))
	})

	t.Run("list all", func(t *testing.T) {
		list, err := storage.Businesses(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(list), 2)
	})
}
