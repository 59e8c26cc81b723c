package product

import (
	"context"
	"errors"
	"io"
	"log"

	"nexuscart/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `id::text, name, COALESCE(description, ''), price_cents, COALESCE(image_url, ''), COALESCE(image_public_id, ''), COALESCE(category, ''), created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `
SELECT ` + productColumns + `
FROM products
ORDER BY created_at DESC
`
	args := []interface{}{}
	if category != "" {
		q = `
SELECT ` + productColumns + `
FROM products
WHERE category = $1
ORDER BY created_at DESC
`
		args = append(args, category)
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("product repo: list category=%q error=%v", category, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows error=%v", err)
		return nil, err
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (name, description, price_cents, image_url, image_public_id, category)
VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
RETURNING ` + productColumns + `
`
	created, err := scanProduct(r.pool.QueryRow(ctx, q, p.Name, p.Description, p.PriceCents, p.ImageURL, p.ImagePublicID, p.Category))
	if err != nil {
		r.logger.Printf("product repo: create name=%q error=%v", p.Name, err)
		return nil, err
	}
	r.logger.Printf("product repo: created id=%s name=%q", created.ID, created.Name)
	return created, nil
}

func (r *postgresRepo) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	const q = `
UPDATE products
SET name = $2,
    description = NULLIF($3, ''),
    price_cents = $4,
    image_url = COALESCE(NULLIF($5, ''), image_url),
    image_public_id = COALESCE(NULLIF($6, ''), image_public_id),
    category = NULLIF($7, ''),
    updated_at = now()
WHERE id = $1
RETURNING ` + productColumns + `
`
	updated, err := scanProduct(r.pool.QueryRow(ctx, q, p.ID, p.Name, p.Description, p.PriceCents, p.ImageURL, p.ImagePublicID, p.Category))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: update id=%s error=%v", p.ID, err)
		return nil, err
	}
	return updated, nil
}

// Delete removes the product and returns its last persisted state so the
// caller can clean up the hosted image. Existing order snapshots keep
// their copied name and price.
func (r *postgresRepo) Delete(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
DELETE FROM products
WHERE id = $1
RETURNING ` + productColumns + `
`
	deleted, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return nil, err
	}
	r.logger.Printf("product repo: deleted id=%s name=%q", deleted.ID, deleted.Name)
	return deleted, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.ImageURL,
		&p.ImagePublicID,
		&p.Category,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
