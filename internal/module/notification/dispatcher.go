package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/clickcart/server/internal/module/notification/channel"
	"github.com/clickcart/server/internal/shared/currency"
	"github.com/clickcart/server/internal/shared/metrics"
	"github.com/clickcart/server/internal/shared/mq"
)

// Dispatcher fans one payment event out to every configured channel. Each
// channel runs concurrently and in isolation: one channel failing, or even
// panicking, never stops the others.
type Dispatcher struct {
	repo         Repository
	providers    map[Channel]channel.Provider
	channels     []Channel
	opsRecipient string
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

// NewDispatcher creates a dispatcher over the given channel providers.
// Configured channels without a provider fail construction.
func NewDispatcher(repo Repository, providers []channel.Provider, channels []string, opsRecipient string, m *metrics.Metrics, logger *zap.Logger) (*Dispatcher, error) {
	byChannel := make(map[Channel]channel.Provider, len(providers))
	for _, p := range providers {
		byChannel[Channel(p.Channel())] = p
	}

	active := make([]Channel, 0, len(channels))
	for _, c := range channels {
		ch := Channel(strings.ToUpper(c))
		if _, ok := byChannel[ch]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedChannel, c)
		}
		active = append(active, ch)
	}

	return &Dispatcher{
		repo:         repo,
		providers:    byChannel,
		channels:     active,
		opsRecipient: opsRecipient,
		metrics:      m,
		logger:       logger,
	}, nil
}

// Channels returns the active channel names.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, c := range d.channels {
		names = append(names, string(c))
	}
	return names
}

// Dispatch fans the event out across the active channels and waits for all
// of them. Per-channel failures are absorbed after being recorded; the
// event itself always counts as handled.
func (d *Dispatcher) Dispatch(ctx context.Context, event *mq.PaymentEvent) {
	vars := templateVars(event)
	templateID := templateForEvent(event.Type)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []string

	for _, ch := range d.channels {
		recipient := d.recipient(ch, event)
		if recipient == "" {
			continue
		}

		wg.Add(1)
		go func(ch Channel, recipient string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.logger.Error("channel dispatch panicked",
						zap.String("channel", string(ch)),
						zap.Any("panic", r),
					)
					mu.Lock()
					failures = append(failures, fmt.Sprintf("%s: panic: %v", ch, r))
					mu.Unlock()
				}
			}()

			if err := d.dispatchOne(ctx, ch, recipient, templateID, vars, event); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", ch, err))
				mu.Unlock()
			}
		}(ch, recipient)
	}
	wg.Wait()

	if len(failures) > 0 {
		d.alertOps(ctx, event, failures)
	}
}

// dispatchOne records and sends one notification over one channel.
func (d *Dispatcher) dispatchOne(ctx context.Context, ch Channel, recipient, templateID string, vars map[string]string, event *mq.PaymentEvent) error {
	n := &Notification{
		OrderID:    event.OrderID,
		UserID:     event.UserID,
		Channel:    ch,
		Recipient:  recipient,
		TemplateID: templateID,
		Subject:    channel.Subject(templateID, vars),
		Status:     StatusPending,
	}
	if err := d.repo.CreateNotification(ctx, n); err != nil {
		d.metrics.NotificationsTotal.WithLabelValues(string(ch), string(StatusFailed)).Inc()
		return fmt.Errorf("create notification: %w", err)
	}

	msg := &channel.Message{
		NotificationID: n.ID,
		Recipient:      recipient,
		TemplateID:     templateID,
		Variables:      vars,
	}
	if err := d.providers[ch].Send(ctx, msg); err != nil {
		d.metrics.NotificationsTotal.WithLabelValues(string(ch), string(StatusFailed)).Inc()
		if updateErr := d.repo.UpdateStatus(ctx, n.ID, StatusFailed, err.Error()); updateErr != nil {
			d.logger.Error("record notification failure",
				zap.String("notification_id", n.ID.String()),
				zap.Error(updateErr),
			)
		}
		return err
	}

	d.metrics.NotificationsTotal.WithLabelValues(string(ch), string(StatusSent)).Inc()
	if err := d.repo.UpdateStatus(ctx, n.ID, StatusSent, ""); err != nil {
		d.logger.Error("record notification sent",
			zap.String("notification_id", n.ID.String()),
			zap.Error(err),
		)
	}

	d.logger.Info("notification dispatched",
		zap.String("notification_id", n.ID.String()),
		zap.String("channel", string(ch)),
		zap.String("template", templateID),
		zap.String("order_id", event.OrderID.String()),
	)
	return nil
}

// alertOps sends a best-effort failure alert to the operations recipient.
// It must never mask the original failure, so its own errors are only
// logged.
func (d *Dispatcher) alertOps(ctx context.Context, event *mq.PaymentEvent, failures []string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("ops alert panicked", zap.Any("panic", r))
		}
	}()

	d.logger.Error("notification dispatch failures",
		zap.String("order_id", event.OrderID.String()),
		zap.Strings("failures", failures),
	)

	if d.opsRecipient == "" {
		return
	}
	email, ok := d.providers[ChannelEmail]
	if !ok {
		return
	}

	msg := &channel.Message{
		NotificationID: uuid.New(),
		Recipient:      d.opsRecipient,
		TemplateID:     channel.TemplateOpsAlert,
		Variables: map[string]string{
			"order_id": event.OrderID.String(),
			"failures": strings.Join(failures, "; "),
		},
	}
	if err := email.Send(ctx, msg); err != nil {
		d.logger.Error("ops alert failed", zap.Error(err))
	}
}

func (d *Dispatcher) recipient(ch Channel, event *mq.PaymentEvent) string {
	switch ch {
	case ChannelEmail:
		return event.Email
	case ChannelSMS:
		return event.Phone
	}
	return ""
}

func templateForEvent(eventType string) string {
	switch eventType {
	case "PaymentSucceeded":
		return channel.TemplatePaymentSucceeded
	case "PaymentFailed":
		return channel.TemplatePaymentFailed
	case "PaymentExpired":
		return channel.TemplatePaymentExpired
	case "PaymentCanceled":
		return channel.TemplatePaymentCanceled
	default:
		return eventType
	}
}

func templateVars(event *mq.PaymentEvent) map[string]string {
	exp := currency.Exponent(event.Currency)
	amount := decimal.New(event.Amount, -exp)
	vars := map[string]string{
		"order_no": event.OrderNo,
		"amount":   amount.StringFixed(exp),
		"currency": strings.ToUpper(event.Currency),
	}
	if event.Reason != "" {
		vars["reason"] = event.Reason
	}
	if event.Actor != "" {
		vars["actor"] = event.Actor
	}
	return vars
}
