package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/storage/pg"
)

// =========================================================================
// Public Methods (satisfy moderation.Storage)
// =========================================================================

// Ban records a ban. Banning an already banned identity keeps the existing record.
func (s *Storage) Ban(ctx context.Context, record domain.BanRecord) error {
	if !isUUID(record.Id) {
		return notFound("identity")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.ban(ctx, tx, record)
	})
}

// Unban removes a ban record. Unbanning an identity without one is not an error.
func (s *Storage) Unban(ctx context.Context, id domain.IdentityId) error {
	if !isUUID(id) {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.unban(ctx, tx, id)
	})
}

func (s *Storage) IsBanned(ctx context.Context, id domain.IdentityId) (bool, error) {
	if !isUUID(id) {
		return false, nil
	}
	return s.isBanned(ctx, s.db, id)
}

// Bans lists every ban record, newest first.
func (s *Storage) Bans(ctx context.Context) ([]domain.BanRecord, error) {
	return s.bans(ctx, s.db)
}

// RecentlyBanned returns ids banned at or after since. Used to refresh the blacklist cache.
func (s *Storage) RecentlyBanned(ctx context.Context, since time.Time) ([]domain.IdentityId, error) {
	return s.recentlyBanned(ctx, s.db, since)
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) ban(ctx context.Context, q pg.Querier, record domain.BanRecord) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO banned_users (id, email, reason, banned_by, banned_at)
		VALUES ($1, $2, $3, $4, NOW() AT TIME ZONE 'utc')
		ON CONFLICT (id) DO NOTHING`,
		record.Id, record.Email, record.Reason, record.BannedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to ban user: %w", err)
	}
	return nil
}

func (s *Storage) unban(ctx context.Context, q pg.Querier, id domain.IdentityId) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM banned_users WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to unban user: %w", err)
	}
	return nil
}

func (s *Storage) isBanned(ctx context.Context, q pg.Querier, id domain.IdentityId) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM banned_users WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ban status: %w", err)
	}
	return exists, nil
}

func (s *Storage) bans(ctx context.Context, q pg.Querier) ([]domain.BanRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, email, reason, banned_at, banned_by
		FROM banned_users
		ORDER BY banned_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans: %w", err)
	}
	defer rows.Close()

	records := []domain.BanRecord{}
	for rows.Next() {
		var r domain.BanRecord
		if err := rows.Scan(&r.Id, &r.Email, &r.Reason, &r.BannedAt, &r.BannedBy); err != nil {
			return nil, fmt.Errorf("failed to scan ban record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bans: %w", err)
	}
	return records, nil
}

func (s *Storage) recentlyBanned(ctx context.Context, q pg.Querier, since time.Time) ([]domain.IdentityId, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id
		FROM banned_users
		WHERE banned_at >= $1
		ORDER BY banned_at DESC`,
		since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query recently banned users: %w", err)
	}
	defer rows.Close()

	var ids []domain.IdentityId
	for rows.Next() {
		var id domain.IdentityId
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan banned user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banned users: %w", err)
	}
	return ids, nil
}
