package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/storage/pg"
)

const profileColumns = "id, email, name, role, status, created_at, updated_at"

// Profile returns the profile for id, or a NotFound error.
func (s *Storage) Profile(ctx context.Context, id domain.IdentityId) (domain.UserProfile, error) {
	if !isUUID(id) {
		return domain.UserProfile{}, notFound("profile")
	}
	return s.profile(ctx, s.db, id)
}

// UpsertProfile merges fields into the profile, creating it when absent.
// Nil fields keep their stored value (or the column default on insert).
func (s *Storage) UpsertProfile(ctx context.Context, id domain.IdentityId, fields domain.ProfileFields) error {
	if !isUUID(id) {
		return notFound("profile")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.upsertProfile(ctx, tx, id, fields)
	})
}

func (s *Storage) profile(ctx context.Context, q pg.Querier, id domain.IdentityId) (domain.UserProfile, error) {
	row := q.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM users WHERE id = $1", id)
	p, err := scanProfile(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, notFound("profile")
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

func (s *Storage) upsertProfile(ctx context.Context, q pg.Querier, id domain.IdentityId, f domain.ProfileFields) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, status)
		VALUES ($1, COALESCE($2, ''), COALESCE($3, ''), COALESCE($4, 'user'), COALESCE($5, 'active'))
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE($2, users.email),
			name = COALESCE($3, users.name),
			role = COALESCE($4, users.role),
			status = COALESCE($5, users.status),
			updated_at = NOW() AT TIME ZONE 'utc'`,
		id, nullable(f.Email), nullable(f.Name), nullableRole(f.Role), nullableStatus(f.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func scanProfile(row scanner) (domain.UserProfile, error) {
	var p domain.UserProfile
	err := row.Scan(&p.Id, &p.Email, &p.Name, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableRole(r *domain.Role) sql.NullString {
	if r == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*r), Valid: true}
}

func nullableStatus(st *domain.UserStatus) sql.NullString {
	if st == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*st), Valid: true}
}
