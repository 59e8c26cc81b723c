package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness violation on create.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart is returned when checkout is attempted with no
	// resolvable line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStaleCart is returned when a full-cart overwrite carries a
	// version older than the persisted one.
	ErrStaleCart = errors.New("stale cart version")
	// ErrInvalidTransition is returned when an order status update would
	// move backward or name an unknown status.
	ErrInvalidTransition = errors.New("invalid status transition")
)
