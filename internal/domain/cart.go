package domain

import "time"

// Cart is the per-user mutable list of product references and desired
// quantities. There is exactly one cart document per owner; it is created
// implicitly on first add and emptied, not deleted, when an order is
// placed. Version increases by one on every persisted mutation so that a
// stale full-document overwrite from another session can be rejected.
type Cart struct {
	OwnerID   string     `json:"ownerId"`
	Version   int64      `json:"version"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is a (product reference, quantity) pair. A cart holds at most
// one item per product id; quantity is always >= 1.
type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Count is the sum of quantities across all items.
func (c Cart) Count() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
