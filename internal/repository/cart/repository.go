package cart

import (
	"context"

	"nexuscart/internal/domain"
)

// IgnoreVersion skips the version guard for unconditional writes (clear).
const IgnoreVersion int64 = -1

// Repository stores one cart document per owner. Mutations are expressed
// as whole-document replacement: the service reads the cart, rewrites the
// item list in memory, and persists the result guarded by the version it
// read.
type Repository interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Replace(ctx context.Context, ownerID string, items []domain.CartItem, ifVersion int64) (*domain.Cart, error)
}
