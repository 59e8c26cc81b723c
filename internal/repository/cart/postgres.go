package cart

import (
	"context"
	"errors"

	"nexuscart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

// Get returns the owner's cart. A missing row reads as an empty cart at
// version 0; the row itself is created lazily by the first Replace.
func (r *postgresRepo) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	const cartQuery = `
SELECT owner_id::text, version, updated_at
FROM carts
WHERE owner_id = $1
`
	var cart domain.Cart
	err := r.pool.QueryRow(ctx, cartQuery, ownerID).Scan(&cart.OwnerID, &cart.Version, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.Cart{OwnerID: ownerID, Version: 0, Items: []domain.CartItem{}}, nil
		}
		return nil, err
	}

	const itemsQuery = `
SELECT product_id::text, quantity
FROM cart_items
WHERE owner_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, itemsQuery, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cart.Items = []domain.CartItem{}
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Replace overwrites the whole cart document. When ifVersion >= 0 the
// write only succeeds if the persisted version still matches, otherwise
// ErrStaleCart is returned and the caller must re-read.
func (r *postgresRepo) Replace(ctx context.Context, ownerID string, items []domain.CartItem, ifVersion int64) (*domain.Cart, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
INSERT INTO carts (owner_id, version)
VALUES ($1, 0)
ON CONFLICT (owner_id) DO NOTHING
`, ownerID); err != nil {
		return nil, err
	}

	var newVersion int64

	if ifVersion >= 0 {
		err = tx.QueryRow(ctx, `
UPDATE carts
SET version = version + 1, updated_at = now()
WHERE owner_id = $1 AND version = $2
RETURNING version
`, ownerID, ifVersion).Scan(&newVersion)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrStaleCart
			}
			return nil, err
		}
	} else {
		err = tx.QueryRow(ctx, `
UPDATE carts
SET version = version + 1, updated_at = now()
WHERE owner_id = $1
RETURNING version
`, ownerID).Scan(&newVersion)
		if err != nil {
			return nil, err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID); err != nil {
		return nil, err
	}
	for i, item := range items {
		if _, err := tx.Exec(ctx, `
INSERT INTO cart_items (owner_id, product_id, quantity, position)
VALUES ($1, $2, $3, $4)
`, ownerID, item.ProductID, item.Quantity, i); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.Get(ctx, ownerID)
}
