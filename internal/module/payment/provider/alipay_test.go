package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clickcart/server/internal/module/order"
)

func TestMapAlipayTradeStatus(t *testing.T) {
	tests := []struct {
		status   string
		expected order.PaymentStatus
	}{
		{"WAIT_BUYER_PAY", order.PaymentStatusPending},
		{"TRADE_SUCCESS", order.PaymentStatusSucceeded},
		{"TRADE_FINISHED", order.PaymentStatusSucceeded},
		{"TRADE_CLOSED", order.PaymentStatusCanceled},
		{"", order.PaymentStatusUnknown},
		{"SOMETHING_NEW", order.PaymentStatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapAlipayTradeStatus(tt.status))
		})
	}
}
