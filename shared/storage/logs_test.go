package storage

import (
	"context"
	"testing"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemLogs(t *testing.T) {
	ctx := context.Background()
	base := time.Now().Add(time.Hour) // newer than anything written by other tests

	older := domain.LogEntry{RefId: "A2Z-ERR-000001", Timestamp: base, Message: "older", Type: "error", UserId: "anonymous"}
	newer := domain.LogEntry{
		RefId:          "A2Z-ERR-000002",
		Timestamp:      base.Add(time.Second),
		Message:        "newer",
		Type:           "error",
		AdditionalInfo: map[string]any{"component": "checkout"},
	}
	require.NoError(t, storage.SaveLog(ctx, older))
	require.NoError(t, storage.SaveLog(ctx, newer))

	entries, err := storage.RecentLogs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A2Z-ERR-000002", entries[0].RefId)
	assert.Equal(t, "checkout", entries[0].AdditionalInfo["component"])
	assert.Equal(t, "A2Z-ERR-000001", entries[1].RefId)
	assert.Nil(t, entries[1].AdditionalInfo)
}

func TestPruneLogs(t *testing.T) {
	ctx := context.Background()
	ancient := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SaveLog(ctx, domain.LogEntry{RefId: "A2Z-ERR-100001", Timestamp: ancient, Message: "old", Type: "error"}))
	require.NoError(t, storage.SaveLog(ctx, domain.LogEntry{RefId: "A2Z-ERR-100002", Timestamp: ancient.Add(48 * time.Hour), Message: "kept", Type: "error"}))

	n, err := storage.PruneLogs(ctx, ancient.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = storage.PruneLogs(ctx, ancient.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOrders(t *testing.T) {
	ctx := context.Background()
	business := newBusiness(newId())
	require.NoError(t, storage.SaveBusiness(ctx, business))
	user := newId()

	order := domain.Order{
		Id:         "ORD-" + newId(),
		BusinessId: business.Id,
		UserId:     user,
		Items:      []domain.OrderItem{{Name: "Mug", Quantity: 2, Price: 1500}},
		Total:      3000,
		Status:     domain.OrderPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, storage.SaveOrder(ctx, order))

	got, err := storage.Order(ctx, order.Id)
	require.NoError(t, err)
	assert.Equal(t, order.Items, got.Items)
	assert.Equal(t, int64(3000), got.Total)

	list, err := storage.OrdersByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, order.Id, list[0].Id)

	_, err = storage.Order(ctx, "ORD-missing")
	assert.True(t, errors.IsKind(err, errors.NotFound))
}
