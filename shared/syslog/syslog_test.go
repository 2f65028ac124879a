package syslog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockStorage struct {
	SaveLogFunc    func(ctx context.Context, entry domain.LogEntry) error
	RecentLogsFunc func(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

func (m *MockStorage) SaveLog(ctx context.Context, entry domain.LogEntry) error {
	if m.SaveLogFunc != nil {
		return m.SaveLogFunc(ctx, entry)
	}
	return nil
}

func (m *MockStorage) RecentLogs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if m.RecentLogsFunc != nil {
		return m.RecentLogsFunc(ctx, limit)
	}
	return nil, nil
}

// 1700000123456 ms
var fixed = time.UnixMilli(1700000123456)

func TestLogError(t *testing.T) {
	ctx := context.Background()

	t.Run("stores entry and returns ref id", func(t *testing.T) {
		var saved domain.LogEntry
		s := New(&MockStorage{SaveLogFunc: func(ctx context.Context, entry domain.LogEntry) error {
			saved = entry
			return nil
		}})
		s.now = func() time.Time { return fixed }

		ref := s.LogError(ctx, Report{
			Message:        "boom <img src=x>",
			URL:            "/checkout",
			AdditionalInfo: map[string]any{"component": "cart"},
		})

		assert.Equal(t, "A2Z-ERR-123456", ref)
		assert.Equal(t, ref, saved.RefId)
		assert.Equal(t, "boom ", saved.Message)
		assert.Equal(t, "anonymous", saved.UserId)
		assert.Equal(t, "anonymous", saved.UserEmail)
		assert.Equal(t, "error", saved.Type)
		assert.Equal(t, "cart", saved.AdditionalInfo["component"])
	})

	t.Run("short millis are zero padded", func(t *testing.T) {
		s := New(&MockStorage{})
		s.now = func() time.Time { return time.UnixMilli(1700000000042) }

		assert.Equal(t, "A2Z-ERR-000042", s.LogError(ctx, Report{Message: "x"}))
	})

	t.Run("keeps identity when known", func(t *testing.T) {
		var saved domain.LogEntry
		s := New(&MockStorage{SaveLogFunc: func(ctx context.Context, entry domain.LogEntry) error {
			saved = entry
			return nil
		}})

		s.LogError(ctx, Report{Message: "x", UserId: "u1", UserEmail: "a@b.c"})
		assert.Equal(t, "u1", saved.UserId)
		assert.Equal(t, "a@b.c", saved.UserEmail)
	})

	t.Run("storage failure returns fallback", func(t *testing.T) {
		s := New(&MockStorage{SaveLogFunc: func(ctx context.Context, entry domain.LogEntry) error {
			return errors.New("db down")
		}})
		s.now = func() time.Time { return fixed }

		assert.Equal(t, "FALLBACK-1700000123456", s.LogError(ctx, Report{Message: "x"}))
	})
}

func TestRecent(t *testing.T) {
	var gotLimit int
	s := New(&MockStorage{RecentLogsFunc: func(ctx context.Context, limit int) ([]domain.LogEntry, error) {
		gotLimit = limit
		return []domain.LogEntry{{RefId: "A2Z-ERR-000001"}}, nil
	}})

	entries, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, DefaultLimit, gotLimit)

	_, err = s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)
}
