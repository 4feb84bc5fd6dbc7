package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clickcart/server/internal/module/notification/channel"
	"github.com/clickcart/server/internal/shared/metrics"
	"github.com/clickcart/server/internal/shared/mq"
)

var testMetrics = metrics.New("notification_test")

// mockRepo is an in-memory Repository for testing.
type mockRepo struct {
	mu            sync.Mutex
	notifications map[uuid.UUID]*Notification
	inbound       map[uuid.UUID]*InboundCommand
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		notifications: make(map[uuid.UUID]*Notification),
		inbound:       make(map[uuid.UUID]*InboundCommand),
	}
}

func (m *mockRepo) CreateNotification(_ context.Context, n *Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	copied := *n
	m.notifications[n.ID] = &copied
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.Status = status
	n.Detail = detail
	if status == StatusSent {
		now := time.Now()
		n.SentAt = &now
	}
	return nil
}

func (m *mockRepo) MarkDelivered(_ context.Context, id uuid.UUID, at time.Time, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok {
		return ErrNotificationNotFound
	}
	n.Status = StatusDelivered
	n.DeliveredAt = &at
	n.Detail = detail
	return nil
}

func (m *mockRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Notification
	for _, n := range m.notifications {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockRepo) RecordInbound(_ context.Context, cmd *InboundCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.inbound[cmd.MessageID]; ok {
		return ErrDuplicateCommand
	}
	copied := *cmd
	m.inbound[cmd.MessageID] = &copied
	return nil
}

func (m *mockRepo) byChannel(ch Channel) *Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.Channel == ch {
			return n
		}
	}
	return nil
}

// fakeProvider records sent messages and optionally fails or panics.
type fakeProvider struct {
	mu      sync.Mutex
	channel string
	sent    []*channel.Message
	err     error
	panics  bool
}

func (f *fakeProvider) Channel() string { return f.channel }

func (f *fakeProvider) Send(_ context.Context, msg *channel.Message) error {
	if f.panics {
		panic("provider blew up")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeProvider) sentTo(recipient string) *channel.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, msg := range f.sent {
		if msg.Recipient == recipient {
			return msg
		}
	}
	return nil
}

func paymentEvent(eventType string) *mq.PaymentEvent {
	return &mq.PaymentEvent{
		EventID:    uuid.New(),
		Type:       eventType,
		OrderID:    uuid.New(),
		OrderNo:    "ORD-20260901-ABCDE",
		UserID:     uuid.New(),
		Email:      "buyer@example.com",
		Phone:      "+15550001111",
		Amount:     1999,
		Currency:   "usd",
		Provider:   "STRIPE",
		OccurredAt: time.Now(),
	}
}

func TestNewDispatcher(t *testing.T) {
	repo := newMockRepo()
	email := &fakeProvider{channel: "EMAIL"}

	t.Run("accepts channels with providers", func(t *testing.T) {
		d, err := NewDispatcher(repo, []channel.Provider{email}, []string{"email"}, "", testMetrics, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, []string{"EMAIL"}, d.Channels())
	})

	t.Run("rejects channels without a provider", func(t *testing.T) {
		_, err := NewDispatcher(repo, []channel.Provider{email}, []string{"EMAIL", "SMS"}, "", testMetrics, zap.NewNop())
		assert.ErrorIs(t, err, ErrUnsupportedChannel)
	})
}

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("fans out to every channel", func(t *testing.T) {
		repo := newMockRepo()
		email := &fakeProvider{channel: "EMAIL"}
		sms := &fakeProvider{channel: "SMS"}
		d, err := NewDispatcher(repo, []channel.Provider{email, sms}, []string{"EMAIL", "SMS"}, "", testMetrics, zap.NewNop())
		require.NoError(t, err)

		event := paymentEvent("PaymentSucceeded")
		d.Dispatch(ctx, event)

		require.NotNil(t, email.sentTo(event.Email))
		require.NotNil(t, sms.sentTo(event.Phone))

		emailRow := repo.byChannel(ChannelEmail)
		require.NotNil(t, emailRow)
		assert.Equal(t, StatusSent, emailRow.Status)
		assert.Equal(t, channel.TemplatePaymentSucceeded, emailRow.TemplateID)
		assert.Equal(t, "ORD-20260901-ABCDE", email.sentTo(event.Email).Variables["order_no"])
		assert.Equal(t, "19.99", email.sentTo(event.Email).Variables["amount"])

		smsRow := repo.byChannel(ChannelSMS)
		require.NotNil(t, smsRow)
		assert.Equal(t, StatusSent, smsRow.Status)
	})

	t.Run("one channel failing does not stop the rest", func(t *testing.T) {
		repo := newMockRepo()
		email := &fakeProvider{channel: "EMAIL", err: errors.New("smtp refused")}
		sms := &fakeProvider{channel: "SMS"}
		d, err := NewDispatcher(repo, []channel.Provider{email, sms}, []string{"EMAIL", "SMS"}, "", testMetrics, zap.NewNop())
		require.NoError(t, err)

		event := paymentEvent("PaymentFailed")
		d.Dispatch(ctx, event)

		emailRow := repo.byChannel(ChannelEmail)
		require.NotNil(t, emailRow)
		assert.Equal(t, StatusFailed, emailRow.Status)
		assert.Contains(t, emailRow.Detail, "smtp refused")

		smsRow := repo.byChannel(ChannelSMS)
		require.NotNil(t, smsRow)
		assert.Equal(t, StatusSent, smsRow.Status)
	})

	t.Run("panicking channel is absorbed", func(t *testing.T) {
		repo := newMockRepo()
		email := &fakeProvider{channel: "EMAIL", panics: true}
		sms := &fakeProvider{channel: "SMS"}
		d, err := NewDispatcher(repo, []channel.Provider{email, sms}, []string{"EMAIL", "SMS"}, "", testMetrics, zap.NewNop())
		require.NoError(t, err)

		event := paymentEvent("PaymentExpired")
		assert.NotPanics(t, func() { d.Dispatch(ctx, event) })

		smsRow := repo.byChannel(ChannelSMS)
		require.NotNil(t, smsRow)
		assert.Equal(t, StatusSent, smsRow.Status)
	})

	t.Run("failures alert the ops recipient", func(t *testing.T) {
		repo := newMockRepo()
		email := &fakeProvider{channel: "EMAIL"}
		sms := &fakeProvider{channel: "SMS", err: errors.New("gateway timeout")}
		d, err := NewDispatcher(repo, []channel.Provider{email, sms}, []string{"EMAIL", "SMS"}, "ops@example.com", testMetrics, zap.NewNop())
		require.NoError(t, err)

		event := paymentEvent("PaymentCanceled")
		d.Dispatch(ctx, event)

		alert := email.sentTo("ops@example.com")
		require.NotNil(t, alert, "ops recipient should receive an alert")
		assert.Equal(t, channel.TemplateOpsAlert, alert.TemplateID)
		assert.Contains(t, alert.Variables["failures"], "gateway timeout")
	})

	t.Run("channels without a recipient are skipped", func(t *testing.T) {
		repo := newMockRepo()
		email := &fakeProvider{channel: "EMAIL"}
		sms := &fakeProvider{channel: "SMS"}
		d, err := NewDispatcher(repo, []channel.Provider{email, sms}, []string{"EMAIL", "SMS"}, "ops@example.com", testMetrics, zap.NewNop())
		require.NoError(t, err)

		event := paymentEvent("PaymentSucceeded")
		event.Phone = ""
		d.Dispatch(ctx, event)

		assert.Empty(t, sms.sent)
		assert.Nil(t, email.sentTo("ops@example.com"), "a skipped channel is not a failure")
	})
}
