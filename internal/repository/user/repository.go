package user

import (
	"context"

	"nexuscart/internal/domain"
)

type Repository interface {
	Create(ctx context.Context, u domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
}
