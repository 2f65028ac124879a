package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/storage/pg"
	"github.com/google/uuid"
)

// SaveLog appends an entry to system_logs.
func (s *Storage) SaveLog(ctx context.Context, entry domain.LogEntry) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveLog(ctx, tx, entry)
	})
}

// RecentLogs returns the newest limit entries.
func (s *Storage) RecentLogs(ctx context.Context, limit int) ([]domain.LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ref_id, timestamp, message, stack, type, url, user_agent, user_id, user_email, additional_info
		FROM system_logs
		ORDER BY timestamp DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query system logs: %w", err)
	}
	defer rows.Close()

	entries := []domain.LogEntry{}
	for rows.Next() {
		var e domain.LogEntry
		var info []byte
		if err := rows.Scan(&e.RefId, &e.Timestamp, &e.Message, &e.Stack, &e.Type, &e.URL,
			&e.UserAgent, &e.UserId, &e.UserEmail, &info); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		if len(info) > 0 {
			if err := json.Unmarshal(info, &e.AdditionalInfo); err != nil {
				return nil, fmt.Errorf("failed to decode additional info: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating system logs: %w", err)
	}
	return entries, nil
}

// PruneLogs deletes entries logged before the cutoff and reports how many went.
func (s *Storage) PruneLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM system_logs WHERE timestamp < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune system logs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned system logs: %w", err)
	}
	return n, nil
}

func (s *Storage) saveLog(ctx context.Context, q pg.Querier, e domain.LogEntry) error {
	var info any
	if len(e.AdditionalInfo) > 0 {
		encoded, err := json.Marshal(e.AdditionalInfo)
		if err != nil {
			return fmt.Errorf("failed to encode additional info: %w", err)
		}
		info = string(encoded)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO system_logs (id, ref_id, timestamp, message, stack, type, url, user_agent, user_id, user_email, additional_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.NewString(), e.RefId, e.Timestamp.UTC(), e.Message, e.Stack, e.Type, e.URL,
		e.UserAgent, e.UserId, e.UserEmail, info,
	)
	if err != nil {
		return fmt.Errorf("failed to save log entry: %w", err)
	}
	return nil
}
