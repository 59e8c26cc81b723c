package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"nexuscart/internal/cache"
	"nexuscart/internal/domain"
	"nexuscart/internal/events"
	cartrepo "nexuscart/internal/repository/cart"
	orderrepo "nexuscart/internal/repository/order"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type productResolver interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// eventPublisher is the slice of the Kafka producer the service needs.
type eventPublisher interface {
	Publish(key, value []byte)
}

// Service materializes carts into immutable orders and manages the
// administrative status lifecycle.
type Service struct {
	repo     orderrepo.Repository
	carts    cartrepo.Repository
	products productResolver
	producer eventPublisher
	rdb      *redis.Client
	logger   *log.Logger
}

func New(repo orderrepo.Repository, carts cartrepo.Repository, products productResolver, producer eventPublisher, rdb *redis.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, carts: carts, products: products, producer: producer, rdb: rdb, logger: logger}
}

// Checkout snapshots the owner's cart into a new pending order and
// empties the cart; both happen in one repository transaction, so a
// failure leaves the cart untouched and no order behind. Lines whose
// product no longer resolves are dropped from the order silently. A
// repeated call with the same idempotency key returns the order the
// first call created.
func (s *Service) Checkout(ctx context.Context, ownerID, idempotencyKey string) (*domain.Order, error) {
	if idempotencyKey != "" {
		existing, err := s.repo.GetByIdempotencyKey(ctx, ownerID, idempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	cart, err := s.carts.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	var items []domain.OrderItem
	var total int64
	for _, line := range cart.Items {
		p, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID:      line.ProductID,
			Name:           p.Name,
			UnitPriceCents: p.PriceCents,
			Quantity:       line.Quantity,
		})
		total += p.PriceCents * int64(line.Quantity)
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyCart
	}

	created, err := s.repo.Create(ctx, orderrepo.CreateInput{
		UserID:         ownerID,
		Items:          items,
		TotalCents:     total,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		// Two concurrent checkouts with the same key race on the unique
		// index; the loser reads the winner's order.
		if errors.Is(err, domain.ErrAlreadyExists) && idempotencyKey != "" {
			return s.repo.GetByIdempotencyKey(ctx, ownerID, idempotencyKey)
		}
		return nil, err
	}

	s.cacheStatus(ctx, created)
	s.emit(events.EventOrderCreated, created.ID, events.OrderCreatedPayload{
		OrderID:    created.ID,
		UserID:     created.UserID,
		Items:      toEventItems(created.Items),
		TotalCents: created.TotalCents,
	})
	s.logger.Printf("order: placed id=%s user_id=%s lines=%d total_cents=%d", created.ID, created.UserID, len(created.Items), created.TotalCents)
	return created, nil
}

// Get returns the order when the requester owns it or is an admin.
// Anyone else sees ErrNotFound rather than a hint that the id exists.
func (s *Service) Get(ctx context.Context, requester *domain.User, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester == nil || (o.UserID != requester.ID && !requester.IsAdmin()) {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, ownerID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, ownerID)
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}

// UpdateStatus moves an order forward through
// pending -> processing -> shipped -> delivered. Skipping ahead is
// allowed, moving backward is rejected.
func (s *Service) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidTransition
	}
	before, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(ctx, updated)
	s.emit(events.EventOrderStatusChanged, updated.ID, events.OrderStatusChangedPayload{
		OrderID: updated.ID,
		From:    string(before.Status),
		To:      string(updated.Status),
	})
	return updated, nil
}

func (s *Service) cacheStatus(ctx context.Context, o *domain.Order) {
	if s.rdb == nil {
		return
	}
	key := fmt.Sprintf(cache.KeyOrderStatus, o.ID)
	if err := s.rdb.Set(ctx, key, string(o.Status), cache.TTLStatusCache).Err(); err != nil {
		s.logger.Printf("order: status cache id=%s error=%v", o.ID, err)
	}
}

func (s *Service) emit(eventType, orderID string, payload any) {
	if s.producer == nil {
		return
	}
	env := events.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     "nexuscart-api",
		Payload:      events.MustMarshal(payload),
	}
	s.producer.Publish(events.PartitionKey(orderID), events.MustMarshal(env))
}

func toEventItems(items []domain.OrderItem) []events.ItemLine {
	out := make([]events.ItemLine, 0, len(items))
	for _, item := range items {
		out = append(out, events.ItemLine{
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		})
	}
	return out
}
