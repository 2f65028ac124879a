package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/storage/pg"
)

const businessColumns = "id, name, slug, owner_id, owner_email, theme_color, status, created_at, updated_at"

func (s *Storage) SlugExists(ctx context.Context, slug domain.Slug) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM businesses WHERE slug = $1)", slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// SaveBusiness inserts a business. The unique slug index turns a lost race into SlugTaken.
func (s *Storage) SaveBusiness(ctx context.Context, b domain.Business) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveBusiness(ctx, tx, b)
	})
}

func (s *Storage) BusinessById(ctx context.Context, id domain.BusinessId) (domain.Business, error) {
	if !isUUID(id) {
		return domain.Business{}, notFound("business")
	}
	return s.business(ctx, s.db, "id = $1", id)
}

func (s *Storage) BusinessBySlug(ctx context.Context, slug domain.Slug) (domain.Business, error) {
	return s.business(ctx, s.db, "slug = $1", slug)
}

// BusinessesByOwner lists the owner's businesses, oldest first.
func (s *Storage) BusinessesByOwner(ctx context.Context, ownerId domain.IdentityId) ([]domain.Business, error) {
	if !isUUID(ownerId) {
		return []domain.Business{}, nil
	}
	return s.businesses(ctx, s.db, "WHERE owner_id = $1 ORDER BY created_at, id", ownerId)
}

// Businesses lists every business, newest first.
func (s *Storage) Businesses(ctx context.Context) ([]domain.Business, error) {
	return s.businesses(ctx, s.db, "ORDER BY created_at DESC, id")
}

// SetBusinessStatus overwrites the status. Any transition is accepted.
func (s *Storage) SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error {
	if !isUUID(id) {
		return notFound("business")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.setBusinessStatus(ctx, tx, id, status)
	})
}

func (s *Storage) saveBusiness(ctx context.Context, q pg.Querier, b domain.Business) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO businesses (id, name, slug, owner_id, owner_email, theme_color, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.Id, b.Name, b.Slug, b.OwnerId, b.OwnerEmail, b.ThemeColor, b.Status,
	)
	if pg.IsUniqueViolation(err, "businesses_slug_key") {
		return errors.New(errors.SlugTaken, "This store URL is already taken. Please choose another.")
	}
	if err != nil {
		return fmt.Errorf("failed to save business: %w", err)
	}
	return nil
}

func (s *Storage) business(ctx context.Context, q pg.Querier, where string, arg any) (domain.Business, error) {
	row := q.QueryRowContext(ctx, "SELECT "+businessColumns+" FROM businesses WHERE "+where, arg)
	b, err := scanBusiness(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Business{}, notFound("business")
	}
	if err != nil {
		return domain.Business{}, fmt.Errorf("failed to get business: %w", err)
	}
	return b, nil
}

func (s *Storage) businesses(ctx context.Context, q pg.Querier, tail string, args ...any) ([]domain.Business, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+businessColumns+" FROM businesses "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query businesses: %w", err)
	}
	defer rows.Close()

	list := []domain.Business{}
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		list = append(list, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating businesses: %w", err)
	}
	return list, nil
}

func (s *Storage) setBusinessStatus(ctx context.Context, q pg.Querier, id domain.BusinessId, status domain.BusinessStatus) error {
	result, err := q.ExecContext(ctx, `
		UPDATE businesses
		SET status = $2, updated_at = NOW() AT TIME ZONE 'utc'
		WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update business status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return notFound("business")
	}
	return nil
}

func scanBusiness(row scanner) (domain.Business, error) {
	var b domain.Business
	err := row.Scan(&b.Id, &b.Name, &b.Slug, &b.OwnerId, &b.OwnerEmail, &b.ThemeColor, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
