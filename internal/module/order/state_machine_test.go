package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine_CanTransition(t *testing.T) {
	sm := NewStateMachine()

	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{"pending to confirmed", OrderStatusPending, OrderStatusConfirmed, true},
		{"pending to failed", OrderStatusPending, OrderStatusFailed, true},
		{"pending to cancelled", OrderStatusPending, OrderStatusCancelled, true},
		{"confirmed to shipped", OrderStatusConfirmed, OrderStatusShipped, true},
		{"shipped to delivered", OrderStatusShipped, OrderStatusDelivered, true},
		{"pending to shipped", OrderStatusPending, OrderStatusShipped, false},
		{"confirmed to cancelled", OrderStatusConfirmed, OrderStatusCancelled, false},
		{"failed to confirmed", OrderStatusFailed, OrderStatusConfirmed, false},
		{"cancelled to pending", OrderStatusCancelled, OrderStatusPending, false},
		{"delivered anywhere", OrderStatusDelivered, OrderStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, sm.CanTransition(tt.from, tt.to))
		})
	}
}

func TestStateMachine_Transition(t *testing.T) {
	sm := NewStateMachine()

	t.Run("valid transition mutates order", func(t *testing.T) {
		o := &Order{Status: OrderStatusPending}
		err := sm.Transition(o, OrderStatusConfirmed)
		assert.NoError(t, err)
		assert.Equal(t, OrderStatusConfirmed, o.Status)
	})

	t.Run("invalid transition leaves order untouched", func(t *testing.T) {
		o := &Order{Status: OrderStatusFailed}
		err := sm.Transition(o, OrderStatusConfirmed)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, OrderStatusFailed, o.Status)
	})
}

func TestStateMachine_IsTerminal(t *testing.T) {
	sm := NewStateMachine()

	assert.True(t, sm.IsTerminal(OrderStatusFailed))
	assert.True(t, sm.IsTerminal(OrderStatusCancelled))
	assert.True(t, sm.IsTerminal(OrderStatusDelivered))
	assert.False(t, sm.IsTerminal(OrderStatusPending))
	assert.False(t, sm.IsTerminal(OrderStatusConfirmed))
	assert.False(t, sm.IsTerminal(OrderStatusShipped))
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		status  PaymentStatus
		derived OrderStatus
		ok      bool
	}{
		{PaymentStatusSucceeded, OrderStatusConfirmed, true},
		{PaymentStatusFailed, OrderStatusFailed, true},
		{PaymentStatusExpired, OrderStatusFailed, true},
		{PaymentStatusCanceled, OrderStatusCancelled, true},
		{PaymentStatusPending, "", false},
		{PaymentStatusUnknown, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			derived, ok := DeriveOrderStatus(tt.status)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.derived, derived)
		})
	}
}

func TestPaymentStatus_IsTerminal(t *testing.T) {
	assert.True(t, PaymentStatusSucceeded.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
	assert.True(t, PaymentStatusExpired.IsTerminal())
	assert.True(t, PaymentStatusCanceled.IsTerminal())
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.False(t, PaymentStatusUnknown.IsTerminal())
}
