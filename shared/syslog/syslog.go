// Package syslog persists error reports and hands back a ticket id operators can quote.
package syslog

import (
	"context"
	"fmt"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/microcosm-cc/bluemonday"
)

const (
	refPrefix      = "A2Z-ERR-"
	fallbackPrefix = "FALLBACK-"
	anonymous      = "anonymous"
	DefaultLimit   = 50
)

type Storage interface {
	SaveLog(ctx context.Context, entry domain.LogEntry) error
	RecentLogs(ctx context.Context, limit int) ([]domain.LogEntry, error)
}

// Report is what callers know about a failure.
type Report struct {
	Message        string
	Stack          string
	Type           string
	URL            string
	UserAgent      string
	UserId         string
	UserEmail      string
	AdditionalInfo map[string]any
}

type Service struct {
	storage Storage
	policy  *bluemonday.Policy
	now     func() time.Time
}

func New(storage Storage) *Service {
	return &Service{storage: storage, policy: bluemonday.StrictPolicy(), now: time.Now}
}

// LogError stores the report and returns its ref id. It never fails: when the write does,
// a FALLBACK id is returned so the caller still has something to show.
func (s *Service) LogError(ctx context.Context, r Report) string {
	now := s.now()
	millis := now.UnixMilli()
	refId := fmt.Sprintf("%s%06d", refPrefix, millis%1_000_000)

	if r.UserId == "" {
		r.UserId = anonymous
	}
	if r.UserEmail == "" {
		r.UserEmail = anonymous
	}
	if r.Type == "" {
		r.Type = "error"
	}

	entry := domain.LogEntry{
		RefId:          refId,
		Timestamp:      now.UTC(),
		Message:        s.policy.Sanitize(r.Message),
		Stack:          r.Stack,
		Type:           r.Type,
		URL:            r.URL,
		UserAgent:      r.UserAgent,
		UserId:         r.UserId,
		UserEmail:      r.UserEmail,
		AdditionalInfo: r.AdditionalInfo,
	}
	if err := s.storage.SaveLog(ctx, entry); err != nil {
		fallback := fmt.Sprintf("%s%d", fallbackPrefix, millis)
		logger.Log.Error("failed to persist error report",
			"component", "syslog",
			"ref_id", fallback,
			"message", r.Message,
			"error", err)
		return fallback
	}

	logger.Log.Error("error reported",
		"component", "syslog",
		"ref_id", refId,
		"message", r.Message,
		"url", r.URL,
		"user_id", r.UserId)
	return refId
}

// Recent returns up to limit entries, newest first. A non-positive limit means DefaultLimit.
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.storage.RecentLogs(ctx, limit)
}
