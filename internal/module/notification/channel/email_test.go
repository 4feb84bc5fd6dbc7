package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubject(t *testing.T) {
	vars := map[string]string{"order_no": "ORD-20260901-ABCDE"}

	tests := []struct {
		name       string
		templateID string
		want       string
	}{
		{"payment succeeded", TemplatePaymentSucceeded, "Order ORD-20260901-ABCDE confirmed"},
		{"payment failed", TemplatePaymentFailed, "Payment for order ORD-20260901-ABCDE failed"},
		{"payment expired", TemplatePaymentExpired, "Checkout for order ORD-20260901-ABCDE expired"},
		{"payment canceled", TemplatePaymentCanceled, "Order ORD-20260901-ABCDE canceled"},
		{"ops alert", TemplateOpsAlert, "Notification dispatch failure"},
		{"unknown template", "something_else", "Update on order ORD-20260901-ABCDE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Subject(tt.templateID, vars))
		})
	}
}
