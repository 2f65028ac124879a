package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/a2z-dev/a2z/shared/domain"
)

const orderColumns = "id, business_id, user_id, items, total, status, created_at"

func (s *Storage) SaveOrder(ctx context.Context, o domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("failed to encode order items: %w", err)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, business_id, user_id, items, total, status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			o.Id, o.BusinessId, o.UserId, string(items), o.Total, o.Status, o.CreatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
		return nil
	})
}

func (s *Storage) Order(ctx context.Context, id domain.OrderId) (domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, notFound("order")
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// OrdersByUser lists a user's orders, newest first.
func (s *Storage) OrdersByUser(ctx context.Context, userId domain.IdentityId) ([]domain.Order, error) {
	if !isUUID(userId) {
		return []domain.Order{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userId)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

func scanOrder(row scanner) (domain.Order, error) {
	var o domain.Order
	var items []byte
	if err := row.Scan(&o.Id, &o.BusinessId, &o.UserId, &items, &o.Total, &o.Status, &o.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("failed to decode order items: %w", err)
	}
	return o, nil
}
