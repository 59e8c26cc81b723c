package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"nexuscart/internal/domain"
	"nexuscart/internal/events"
	orderrepo "nexuscart/internal/repository/order"
)

type stubCartRepo struct {
	cart domain.Cart
}

func (s *stubCartRepo) Get(_ context.Context, ownerID string) (*domain.Cart, error) {
	out := s.cart
	out.OwnerID = ownerID
	out.Items = append([]domain.CartItem(nil), s.cart.Items...)
	return &out, nil
}

func (s *stubCartRepo) Replace(_ context.Context, _ string, items []domain.CartItem, _ int64) (*domain.Cart, error) {
	s.cart.Items = append([]domain.CartItem(nil), items...)
	out := s.cart
	return &out, nil
}

type stubOrderRepo struct {
	carts     *stubCartRepo
	orders    map[string]*domain.Order
	byKey     map[string]string
	createErr error
	nextID    int
}

func newStubOrderRepo(carts *stubCartRepo) *stubOrderRepo {
	return &stubOrderRepo{
		carts:  carts,
		orders: map[string]*domain.Order{},
		byKey:  map[string]string{},
	}
}

func (s *stubOrderRepo) Create(_ context.Context, in orderrepo.CreateInput) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if in.IdempotencyKey != "" {
		if _, ok := s.byKey[in.IdempotencyKey]; ok {
			return nil, domain.ErrAlreadyExists
		}
	}
	s.nextID++
	id := string(rune('a' + s.nextID - 1))
	o := &domain.Order{
		ID:         id,
		UserID:     in.UserID,
		Items:      append([]domain.OrderItem(nil), in.Items...),
		TotalCents: in.TotalCents,
		Status:     domain.StatusPending,
	}
	s.orders[id] = o
	if in.IdempotencyKey != "" {
		s.byKey[in.IdempotencyKey] = id
	}
	// The real repository clears the cart in the same transaction.
	if s.carts != nil {
		s.carts.cart.Items = nil
	}
	return o, nil
}

func (s *stubOrderRepo) GetByIdempotencyKey(_ context.Context, userID, key string) (*domain.Order, error) {
	id, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	o := s.orders[id]
	if o.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if !domain.CanTransition(o.Status, status) {
		return nil, domain.ErrInvalidTransition
	}
	o.Status = status
	return o, nil
}

type stubResolver struct {
	products map[string]*domain.Product
}

func (s *stubResolver) Get(_ context.Context, id string) (*domain.Product, error) {
	if p, ok := s.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrNotFound
}

type recordingPublisher struct {
	envelopes []events.Envelope
}

func (r *recordingPublisher) Publish(_, value []byte) {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		r.envelopes = append(r.envelopes, env)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	carts := &stubCartRepo{}
	svc := New(newStubOrderRepo(carts), carts, &stubResolver{}, nil, nil, nil)

	_, err := svc.Checkout(context.Background(), "u1", "")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutSnapshotsAndClearsCart(t *testing.T) {
	carts := &stubCartRepo{cart: domain.Cart{Items: []domain.CartItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}}}
	resolver := &stubResolver{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Mug", PriceCents: 999},
		"p2": {ID: "p2", Name: "Tee", PriceCents: 1999},
	}}
	pub := &recordingPublisher{}
	repo := newStubOrderRepo(carts)
	svc := New(repo, carts, resolver, pub, nil, nil)

	o, err := svc.Checkout(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if o.TotalCents != 2*999+1999 {
		t.Fatalf("expected total %d, got %d", 2*999+1999, o.TotalCents)
	}
	if o.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %s", o.Status)
	}
	if len(o.Items) != 2 || o.Items[0].Name != "Mug" || o.Items[0].UnitPriceCents != 999 {
		t.Fatalf("unexpected order items: %+v", o.Items)
	}
	if len(carts.cart.Items) != 0 {
		t.Fatalf("expected cart cleared after checkout, got %+v", carts.cart.Items)
	}
	if len(pub.envelopes) != 1 || pub.envelopes[0].EventType != events.EventOrderCreated {
		t.Fatalf("expected one OrderCreated event, got %+v", pub.envelopes)
	}

	// Editing the product afterward must not touch the copied snapshot.
	resolver.products["p1"].PriceCents = 50
	fetched, err := svc.Get(context.Background(), &domain.User{ID: "u1"}, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Items[0].UnitPriceCents != 999 || fetched.TotalCents != o.TotalCents {
		t.Fatalf("order snapshot changed after product edit: %+v", fetched)
	}
}

func TestCheckoutDropsUnresolvableLines(t *testing.T) {
	carts := &stubCartRepo{cart: domain.Cart{Items: []domain.CartItem{
		{ProductID: "gone", Quantity: 3},
		{ProductID: "p1", Quantity: 1},
	}}}
	resolver := &stubResolver{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Mug", PriceCents: 500},
	}}
	svc := New(newStubOrderRepo(carts), carts, resolver, nil, nil, nil)

	o, err := svc.Checkout(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(o.Items) != 1 || o.Items[0].ProductID != "p1" {
		t.Fatalf("expected only resolvable line, got %+v", o.Items)
	}
	if o.TotalCents != 500 {
		t.Fatalf("expected total 500, got %d", o.TotalCents)
	}
}

func TestCheckoutAllLinesUnresolvable(t *testing.T) {
	carts := &stubCartRepo{cart: domain.Cart{Items: []domain.CartItem{{ProductID: "gone", Quantity: 1}}}}
	svc := New(newStubOrderRepo(carts), carts, &stubResolver{}, nil, nil, nil)

	_, err := svc.Checkout(context.Background(), "u1", "")
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutFailureLeavesCartUntouched(t *testing.T) {
	carts := &stubCartRepo{cart: domain.Cart{Items: []domain.CartItem{{ProductID: "p1", Quantity: 2}}}}
	resolver := &stubResolver{products: map[string]*domain.Product{
		"p1": {ID: "p1", Name: "Mug", PriceCents: 999},
	}}
	repo := newStubOrderRepo(carts)
	repo.createErr = errors.New("db down")
	svc := New(repo, carts, resolver, nil, nil, nil)

	if _, err := svc.Checkout(context.Background(), "u1", "key-1"); err == nil {
		t.Fatalf("expected failure")
	}
	if len(carts.cart.Items) != 1 {
		t.Fatalf("cart must be untouched after failed checkout, got %+v", carts.cart.Items)
	}

	// Retrying after the transient failure clears yields exactly one order.
	repo.createErr = nil
	first, err := svc.Checkout(context.Background(), "u1", "key-1")
	if err != nil {
		t.Fatalf("retry checkout: %v", err)
	}
	second, err := svc.Checkout(context.Background(), "u1", "key-1")
	if err != nil {
		t.Fatalf("repeat checkout: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("idempotent retry created a second order: %s vs %s", first.ID, second.ID)
	}
	if len(repo.orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(repo.orders))
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	carts := &stubCartRepo{cart: domain.Cart{Items: []domain.CartItem{{ProductID: "p1", Quantity: 1}}}}
	resolver := &stubResolver{products: map[string]*domain.Product{"p1": {ID: "p1", Name: "Mug", PriceCents: 100}}}
	repo := newStubOrderRepo(carts)
	svc := New(repo, carts, resolver, nil, nil, nil)

	o, err := svc.Checkout(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if _, err := svc.Get(context.Background(), &domain.User{ID: "u2"}, o.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for stranger, got %v", err)
	}
	if _, err := svc.Get(context.Background(), &domain.User{ID: "u2", Role: domain.RoleAdmin}, o.ID); err != nil {
		t.Fatalf("admin should read any order: %v", err)
	}
	if _, err := svc.Get(context.Background(), &domain.User{ID: "u1"}, o.ID); err != nil {
		t.Fatalf("owner should read own order: %v", err)
	}
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	carts := &stubCartRepo{cart: domain.Cart{Items: []domain.CartItem{{ProductID: "p1", Quantity: 1}}}}
	resolver := &stubResolver{products: map[string]*domain.Product{"p1": {ID: "p1", Name: "Mug", PriceCents: 100}}}
	repo := newStubOrderRepo(carts)
	pub := &recordingPublisher{}
	svc := New(repo, carts, resolver, pub, nil, nil)

	o, err := svc.Checkout(context.Background(), "u1", "")
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// Skipping processing is allowed; the move is still forward.
	updated, err := svc.UpdateStatus(context.Background(), o.ID, domain.StatusShipped)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.StatusShipped {
		t.Fatalf("expected shipped, got %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), o.ID, domain.StatusProcessing); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition going backward, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), o.ID, domain.OrderStatus("cancelled")); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unknown status, got %v", err)
	}

	var statusEvents int
	for _, env := range pub.envelopes {
		if env.EventType == events.EventOrderStatusChanged {
			statusEvents++
		}
	}
	if statusEvents != 1 {
		t.Fatalf("expected one status event, got %d", statusEvents)
	}
}
