package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"nexuscart/internal/cache"
	"nexuscart/internal/domain"
	cartrepo "nexuscart/internal/repository/cart"
	"github.com/redis/go-redis/v9"
)

// productResolver is the slice of the catalog the cart needs: resolve a
// product id to its current attributes, or domain.ErrNotFound.
type productResolver interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Service owns the per-user line-item list and derives cart views from
// it. Mutations are read-modify-write over the whole cart document,
// guarded by the document version; a concurrent writer from another
// session makes this writer re-read and reapply.
type Service struct {
	repo     cartrepo.Repository
	products productResolver
	rdb      *redis.Client
	logger   *log.Logger
}

func New(repo cartrepo.Repository, products productResolver, rdb *redis.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, products: products, rdb: rdb, logger: logger}
}

const maxMutationRetries = 3

func (s *Service) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.repo.Get(ctx, ownerID)
}

// Add puts one more unit of the product in the cart: an existing line is
// incremented, otherwise a new line with quantity 1 is appended.
func (s *Service) Add(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.New("productId required")
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, err
	}

	return s.mutate(ctx, ownerID, func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity++
				return items
			}
		}
		return append(items, domain.CartItem{ProductID: productID, Quantity: 1})
	})
}

// SetQuantity changes a line's quantity, clamped to a minimum of 1.
// Removing a line goes through Remove, never through a zero here. A
// productID not in the cart is a no-op.
func (s *Service) SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		quantity = 1
	}
	return s.mutate(ctx, ownerID, func(items []domain.CartItem) []domain.CartItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = quantity
			}
		}
		return items
	})
}

// Remove deletes the line if present; removing an absent line succeeds.
func (s *Service) Remove(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	return s.mutate(ctx, ownerID, func(items []domain.CartItem) []domain.CartItem {
		out := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				out = append(out, item)
			}
		}
		return out
	})
}

// Clear empties the cart unconditionally.
func (s *Service) Clear(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := s.repo.Replace(ctx, ownerID, nil, cartrepo.IgnoreVersion)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, cart)
	return cart, nil
}

// Sync overwrites the whole document with another session's local state.
// The caller sends the version it last saw; a stale version is rejected
// with domain.ErrStaleCart and the caller must re-read before retrying.
func (s *Service) Sync(ctx context.Context, ownerID string, items []domain.CartItem, version int64) (*domain.Cart, error) {
	cart, err := s.repo.Replace(ctx, ownerID, Normalize(items), version)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, cart)
	return cart, nil
}

func (s *Service) mutate(ctx context.Context, ownerID string, apply func([]domain.CartItem) []domain.CartItem) (*domain.Cart, error) {
	var lastErr error
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		current, err := s.repo.Get(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		next := Normalize(apply(append([]domain.CartItem(nil), current.Items...)))
		updated, err := s.repo.Replace(ctx, ownerID, next, current.Version)
		if err == nil {
			s.publish(ctx, updated)
			return updated, nil
		}
		if !errors.Is(err, domain.ErrStaleCart) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Normalize enforces the line-item invariants on an arbitrary item list:
// at most one line per product id (later duplicates merge into the first
// occurrence), every quantity at least 1, empty product ids dropped.
// Insertion order of first occurrences is preserved.
func Normalize(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ProductID)
		if id == "" {
			continue
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		if at, ok := index[id]; ok {
			out[at].Quantity += qty
			continue
		}
		index[id] = len(out)
		out = append(out, domain.CartItem{ProductID: id, Quantity: qty})
	}
	return out
}

func (s *Service) publish(ctx context.Context, cart *domain.Cart) {
	if s.rdb == nil || cart == nil {
		return
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		return
	}
	channel := fmt.Sprintf(cache.ChannelCart, cart.OwnerID)
	if err := s.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		s.logger.Printf("cart: publish owner_id=%s error=%v", cart.OwnerID, err)
	}
}
