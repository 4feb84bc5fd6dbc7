package payment

import "errors"

var (
	// ErrOrderNotPayable is returned when checkout is requested for an
	// order that already left the pending state.
	ErrOrderNotPayable = errors.New("order is not awaiting payment")
)
