package order

import "fmt"

// StateMachine validates and executes order state transitions.
type StateMachine struct {
	transitions map[OrderStatus][]OrderStatus
}

// NewStateMachine creates a new order state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[OrderStatus][]OrderStatus{
			OrderStatusPending:   {OrderStatusConfirmed, OrderStatusFailed, OrderStatusCancelled},
			OrderStatusConfirmed: {OrderStatusShipped},
			OrderStatusShipped:   {OrderStatusDelivered},
			OrderStatusFailed:    {}, // Terminal state
			OrderStatusCancelled: {}, // Terminal state
			OrderStatusDelivered: {}, // Terminal state
		},
	}
}

// CanTransition checks if a transition from `from` to `to` is valid.
func (sm *StateMachine) CanTransition(from, to OrderStatus) bool {
	allowed, ok := sm.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Transition attempts to transition an order to a new state.
func (sm *StateMachine) Transition(o *Order, to OrderStatus) error {
	if !sm.CanTransition(o.Status, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// IsTerminal reports whether no further transitions are possible from s.
func (sm *StateMachine) IsTerminal(s OrderStatus) bool {
	return len(sm.transitions[s]) == 0
}
