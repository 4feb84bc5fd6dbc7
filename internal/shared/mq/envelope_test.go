package mq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	correlationID := uuid.New()
	env, err := NewEnvelope(KindPaymentEvent, correlationID, &PaymentEvent{Type: "PaymentSucceeded"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, env.MessageID)
	assert.Equal(t, correlationID, env.CorrelationID)
	assert.Equal(t, SchemaVersion, env.SchemaVersion)
	assert.Equal(t, KindPaymentEvent, env.Kind)
	assert.False(t, env.Timestamp.IsZero())
}

func TestEnvelope_Decode(t *testing.T) {
	correlationID := uuid.New()

	t.Run("payment status command", func(t *testing.T) {
		cmd := &PaymentStatusCommand{
			OrderID:       uuid.New(),
			Status:        "SUCCEEDED",
			TransactionID: "cs_test_123",
			Provider:      "STRIPE",
			EventID:       "evt_123",
		}
		env, err := NewEnvelope(KindPaymentStatusCommand, correlationID, cmd)
		require.NoError(t, err)

		payload, err := env.Decode()
		require.NoError(t, err)
		decoded, ok := payload.(*PaymentStatusCommand)
		require.True(t, ok)
		assert.Equal(t, cmd.OrderID, decoded.OrderID)
		assert.Equal(t, "SUCCEEDED", decoded.Status)
	})

	t.Run("payment event", func(t *testing.T) {
		event := &PaymentEvent{
			EventID:    uuid.New(),
			Type:       "PaymentSucceeded",
			OrderID:    uuid.New(),
			OrderNo:    "ORD-20260901-ABCDE",
			Email:      "buyer@example.com",
			Amount:     1999,
			Currency:   "usd",
			OccurredAt: time.Now().UTC(),
		}
		env, err := NewEnvelope(KindPaymentEvent, correlationID, event)
		require.NoError(t, err)

		payload, err := env.Decode()
		require.NoError(t, err)
		decoded, ok := payload.(*PaymentEvent)
		require.True(t, ok)
		assert.Equal(t, event.OrderID, decoded.OrderID)
		assert.Equal(t, event.OrderNo, decoded.OrderNo)
		assert.Equal(t, int64(1999), decoded.Amount)
	})

	t.Run("email message", func(t *testing.T) {
		msg := &EmailMessage{
			NotificationID: uuid.New(),
			From:           "noreply@example.com",
			To:             "buyer@example.com",
			Subject:        "Order confirmed",
			TemplateID:     "payment_succeeded",
			Variables:      map[string]string{"order_no": "ORD-1"},
		}
		env, err := NewEnvelope(KindEmailMessage, correlationID, msg)
		require.NoError(t, err)

		payload, err := env.Decode()
		require.NoError(t, err)
		decoded, ok := payload.(*EmailMessage)
		require.True(t, ok)
		assert.Equal(t, msg.To, decoded.To)
		assert.Equal(t, "ORD-1", decoded.Variables["order_no"])
	})

	t.Run("sms message", func(t *testing.T) {
		msg := &SMSMessage{NotificationID: uuid.New(), Sender: "ClickCart", To: "+15550001111", Body: "Order confirmed"}
		env, err := NewEnvelope(KindSMSMessage, correlationID, msg)
		require.NoError(t, err)

		payload, err := env.Decode()
		require.NoError(t, err)
		decoded, ok := payload.(*SMSMessage)
		require.True(t, ok)
		assert.Equal(t, msg.To, decoded.To)
	})

	t.Run("delivery receipt", func(t *testing.T) {
		receipt := &DeliveryReceipt{NotificationID: uuid.New(), Delivered: true, At: time.Now().UTC()}
		env, err := NewEnvelope(KindDeliveryReceipt, correlationID, receipt)
		require.NoError(t, err)

		payload, err := env.Decode()
		require.NoError(t, err)
		decoded, ok := payload.(*DeliveryReceipt)
		require.True(t, ok)
		assert.True(t, decoded.Delivered)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		env, err := NewEnvelope(Kind("payment.mystery"), correlationID, map[string]string{})
		require.NoError(t, err)

		_, err = env.Decode()
		assert.Error(t, err)
	})

	t.Run("newer schema version is rejected", func(t *testing.T) {
		env, err := NewEnvelope(KindPaymentEvent, correlationID, &PaymentEvent{})
		require.NoError(t, err)
		env.SchemaVersion = SchemaVersion + 1

		_, err = env.Decode()
		assert.Error(t, err)
	})
}

func TestEnvelope_JSONRoundTrip(t *testing.T) {
	env, err := NewEnvelope(KindPaymentEvent, uuid.New(), &PaymentEvent{Type: "PaymentExpired", OrderID: uuid.New()})
	require.NoError(t, err)

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var restored Envelope
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, env.MessageID, restored.MessageID)
	assert.Equal(t, env.Kind, restored.Kind)

	payload, err := restored.Decode()
	require.NoError(t, err)
	event, ok := payload.(*PaymentEvent)
	require.True(t, ok)
	assert.Equal(t, "PaymentExpired", event.Type)
}
