package order

import "errors"

var (
	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition is returned when an order status change is not
	// permitted by the state machine.
	ErrInvalidTransition = errors.New("invalid order state transition")

	// ErrVersionConflict is returned when a concurrent writer updated the
	// order row between read and write.
	ErrVersionConflict = errors.New("order was modified concurrently")

	// ErrNotCancelable is returned when cancellation is requested for an
	// order that is no longer pending.
	ErrNotCancelable = errors.New("order can no longer be canceled")
)
