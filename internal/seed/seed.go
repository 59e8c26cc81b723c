package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type productSeed struct {
	Name        string
	Description string
	PriceCents  int64
	ImageURL    string
	Category    string
}

// Apply inserts basic seed data for manual testing. It is idempotent via
// ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	if err := ensureAdmin(ctx, pool, "admin@nexuscart.local", "Admin123!"); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	products := []productSeed{
		{
			Name:        "Wireless Headphones",
			Description: "Over-ear headphones with active noise cancelling",
			PriceCents:  12999,
			ImageURL:    "https://images.nexuscart.local/headphones.jpg",
			Category:    "electronics",
		},
		{
			Name:        "Ceramic Mug",
			Description: "350ml ceramic mug with matte finish",
			PriceCents:  1299,
			ImageURL:    "https://images.nexuscart.local/mug.jpg",
			Category:    "home",
		},
		{
			Name:        "Cotton T-Shirt",
			Description: "Soft cotton tee, unisex fit",
			PriceCents:  1999,
			ImageURL:    "https://images.nexuscart.local/tshirt.jpg",
			Category:    "apparel",
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}

	return nil
}

func ensureAdmin(ctx context.Context, pool *pgxpool.Pool, email, password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (email, password_hash, role)
VALUES ($1, $2, 'admin')
ON CONFLICT (email) DO UPDATE SET role = 'admin'
`
	_, err = pool.Exec(ctx, q, email, string(hashed))
	return err
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (id, name, description, price_cents, image_url, category)
SELECT gen_random_uuid(), $1, $2, $3, $4, $5
WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)
`
	_, err := pool.Exec(ctx, q, p.Name, p.Description, p.PriceCents, p.ImageURL, p.Category)
	return err
}
