package order

import (
	"context"

	"nexuscart/internal/domain"
)

// CreateInput carries everything needed to persist one order. Items are
// already denormalized copies; the repository never consults the product
// catalog.
type CreateInput struct {
	UserID         string
	Items          []domain.OrderItem
	TotalCents     int64
	IdempotencyKey string
}

type Repository interface {
	// Create inserts the order and empties the owner's cart in a single
	// transaction.
	Create(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	// UpdateStatus moves the order forward; it fails with
	// ErrInvalidTransition when the persisted status does not allow the
	// move.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
}
