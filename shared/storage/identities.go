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

const identityColumns = `id, email, display_name, COALESCE(pass_hash, ''), provider,
	COALESCE(provider_user_id, ''), disabled, email_verified, created_at, last_sign_in_at`

// =========================================================================
// Public Methods
// =========================================================================

// SaveIdentity inserts a new credential record. A duplicate email yields EmailAlreadyInUse.
func (s *Storage) SaveIdentity(ctx context.Context, identity domain.Identity) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveIdentity(ctx, tx, identity)
	})
}

func (s *Storage) IdentityByEmail(ctx context.Context, email domain.Email) (domain.Identity, error) {
	return s.identity(ctx, s.db, "email = $1", email)
}

// ListIdentities returns at most limit identities, oldest first.
func (s *Storage) ListIdentities(ctx context.Context, limit int) ([]domain.Identity, error) {
	return s.listIdentities(ctx, s.db, limit)
}

// SetIdentityDisabled flips the disabled flag and returns the updated record.
func (s *Storage) SetIdentityDisabled(ctx context.Context, id domain.IdentityId, disabled bool) (domain.Identity, error) {
	if !isUUID(id) {
		return domain.Identity{}, notFound("identity")
	}
	var identity domain.Identity
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		identity, err = s.setIdentityDisabled(ctx, tx, id, disabled)
		return err
	})
	return identity, err
}

func (s *Storage) MarkEmailVerified(ctx context.Context, id domain.IdentityId) error {
	return s.updateIdentity(ctx, id, "email_verified = TRUE")
}

func (s *Storage) UpdatePassHash(ctx context.Context, id domain.IdentityId, passHash string) error {
	return s.updateIdentity(ctx, id, "pass_hash = $2", passHash)
}

func (s *Storage) TouchSignIn(ctx context.Context, id domain.IdentityId) error {
	return s.updateIdentity(ctx, id, "last_sign_in_at = NOW() AT TIME ZONE 'utc'")
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) saveIdentity(ctx context.Context, q pg.Querier, identity domain.Identity) error {
	var passHash, providerUserId any
	if identity.PassHash != "" {
		passHash = identity.PassHash
	}
	if identity.ProviderUserId != "" {
		providerUserId = identity.ProviderUserId
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO identities (id, email, display_name, pass_hash, provider, provider_user_id, disabled, email_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		identity.Id, identity.Email, identity.DisplayName, passHash, identity.Provider,
		providerUserId, identity.Disabled, identity.EmailVerified,
	)
	if pg.IsUniqueViolation(err, "identities_email_key") {
		return errors.New(errors.EmailAlreadyInUse, "The email address is already in use by another account.")
	}
	if err != nil {
		return fmt.Errorf("failed to save identity: %w", err)
	}
	return nil
}

func (s *Storage) identity(ctx context.Context, q pg.Querier, where string, arg any) (domain.Identity, error) {
	row := q.QueryRowContext(ctx, "SELECT "+identityColumns+" FROM identities WHERE "+where, arg)
	identity, err := scanIdentity(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, notFound("identity")
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to get identity: %w", err)
	}
	return identity, nil
}

func (s *Storage) listIdentities(ctx context.Context, q pg.Querier, limit int) ([]domain.Identity, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+identityColumns+" FROM identities ORDER BY created_at, id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	identities := []domain.Identity{}
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan identity: %w", err)
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating identities: %w", err)
	}
	return identities, nil
}

func (s *Storage) setIdentityDisabled(ctx context.Context, q pg.Querier, id domain.IdentityId, disabled bool) (domain.Identity, error) {
	row := q.QueryRowContext(ctx,
		"UPDATE identities SET disabled = $2 WHERE id = $1 RETURNING "+identityColumns, id, disabled)
	identity, err := scanIdentity(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, notFound("identity")
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("failed to update identity: %w", err)
	}
	return identity, nil
}

func (s *Storage) updateIdentity(ctx context.Context, id domain.IdentityId, set string, args ...any) error {
	if !isUUID(id) {
		return notFound("identity")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, "UPDATE identities SET "+set+" WHERE id = $1", append([]any{id}, args...)...)
		if err != nil {
			return fmt.Errorf("failed to update identity: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows: %w", err)
		}
		if n == 0 {
			return notFound("identity")
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row scanner) (domain.Identity, error) {
	var identity domain.Identity
	var lastSignIn sql.NullTime
	err := row.Scan(
		&identity.Id,
		&identity.Email,
		&identity.DisplayName,
		&identity.PassHash,
		&identity.Provider,
		&identity.ProviderUserId,
		&identity.Disabled,
		&identity.EmailVerified,
		&identity.CreatedAt,
		&lastSignIn,
	)
	if lastSignIn.Valid {
		identity.LastSignInAt = &lastSignIn.Time
	}
	return identity, err
}
