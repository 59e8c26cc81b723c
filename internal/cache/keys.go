package cache

import "time"

const (
	// Catalog read cache: product:{product_id} -> product JSON
	KeyProduct = "product:%s"

	// Order status cache: order_status:{order_id} -> status string
	KeyOrderStatus = "order_status:%s"

	// Cart change fan-out: pub/sub channel cart:{owner_id} carrying the
	// cart document JSON after every persisted mutation.
	ChannelCart = "cart:%s"
)

var (
	TTLProduct     = 5 * time.Minute
	TTLStatusCache = 5 * time.Minute
)
