package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/clickcart/server/internal/shared/metrics"
)

// Handler processes one decoded envelope. Returning an error triggers a
// retry; once retries are exhausted the message is dead-lettered and the
// offset is committed so the partition keeps moving.
type Handler func(ctx context.Context, env *Envelope) error

// Consumer reads a single topic within a consumer group and feeds each
// envelope to its handler.
type Consumer struct {
	reader      *kafka.Reader
	producer    *Producer
	handler     Handler
	topic       string
	maxAttempts int
	logger      *zap.Logger
	metrics     *metrics.Metrics

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// ConsumerOptions configures a Consumer.
type ConsumerOptions struct {
	Brokers     []string
	GroupID     string
	Topic       string
	MaxAttempts int
}

// NewConsumer creates a consumer for one topic. The producer is used to
// forward poison messages to the topic's dead-letter companion.
func NewConsumer(opts ConsumerOptions, handler Handler, producer *Producer, m *metrics.Metrics, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        opts.Brokers,
		GroupID:        opts.GroupID,
		Topic:          opts.Topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits only
	})
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Consumer{
		reader:      reader,
		producer:    producer,
		handler:     handler,
		topic:       opts.Topic,
		maxAttempts: maxAttempts,
		logger:      logger.With(zap.String("topic", opts.Topic)),
		metrics:     m,
	}
}

// Start begins consuming in a background goroutine.
func (c *Consumer) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()
}

// Stop halts consumption and closes the reader.
func (c *Consumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	return c.reader.Close()
}

func (c *Consumer) run(ctx context.Context) {
	c.logger.Info("consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				c.logger.Info("consumer stopped")
				return
			}
			c.logger.Error("fetch message", zap.Error(err))
			continue
		}

		if err := c.process(ctx, msg); err != nil {
			// Dead-lettering itself failed. Leave the offset uncommitted
			// so the message is redelivered after restart.
			c.logger.Error("dead letter publish failed, message not committed", zap.Error(err))
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("commit offset", zap.Error(err))
		}
	}
}

// process handles one message with bounded retries, dead-lettering on
// exhaustion. It returns an error only when the dead-letter publish fails.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Warn("malformed envelope", zap.Int64("offset", msg.Offset), zap.Error(err))
		c.metrics.ConsumerMessagesTotal.WithLabelValues(c.topic, "malformed").Inc()
		return c.deadLetter(ctx, msg, err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.handler(ctx, &env)
		if lastErr == nil {
			c.metrics.ConsumerMessagesTotal.WithLabelValues(c.topic, "ok").Inc()
			return nil
		}
		c.logger.Warn("handler failed",
			zap.String("kind", string(env.Kind)),
			zap.String("message_id", env.MessageID.String()),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff(attempt)):
		}
	}

	c.metrics.ConsumerMessagesTotal.WithLabelValues(c.topic, "failed").Inc()
	return c.deadLetter(ctx, msg, lastErr)
}

// deadLetter forwards the original message bytes to the topic's DLQ with
// provenance headers, so an operator can trace and replay it.
func (c *Consumer) deadLetter(ctx context.Context, msg kafka.Message, cause error) error {
	headers := append([]kafka.Header{}, msg.Headers...)
	headers = append(headers,
		kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
		kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
		kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
		kafka.Header{Key: HeaderErrorMessage, Value: []byte(cause.Error())},
	)

	dlq := DLQTopic(c.topic)
	if err := c.producer.PublishRaw(ctx, dlq, msg.Key, msg.Value, headers); err != nil {
		return fmt.Errorf("publish to %s: %w", dlq, err)
	}

	c.metrics.DeadLettersTotal.WithLabelValues(c.topic).Inc()
	c.logger.Error("message dead-lettered",
		zap.String("dlq", dlq),
		zap.Int64("offset", msg.Offset),
		zap.Error(cause),
	)
	return nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * 500 * time.Millisecond
}

// DLQWatcher consumes a dead-letter topic and logs each entry with its
// provenance headers. It never fails a message; the DLQ is terminal.
type DLQWatcher struct {
	reader *kafka.Reader
	logger *zap.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewDLQWatcher creates a watcher for the dead-letter companion of topic.
func NewDLQWatcher(brokers []string, groupID, topic string, logger *zap.Logger) *DLQWatcher {
	dlq := DLQTopic(topic)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID + ".dlq-watcher",
		Topic:   dlq,
	})
	return &DLQWatcher{
		reader: reader,
		logger: logger.With(zap.String("topic", dlq)),
	}
}

// Start begins watching in a background goroutine.
func (w *DLQWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop halts the watcher and closes the reader.
func (w *DLQWatcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	return w.reader.Close()
}

func (w *DLQWatcher) run(ctx context.Context) {
	for {
		msg, err := w.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("read dead letter", zap.Error(err))
			continue
		}

		fields := []zap.Field{
			zap.Int64("offset", msg.Offset),
			zap.ByteString("key", msg.Key),
		}
		for _, h := range msg.Headers {
			switch h.Key {
			case HeaderOriginalTopic, HeaderOriginalPartition, HeaderOriginalOffset, HeaderErrorMessage, HeaderCorrelationID:
				fields = append(fields, zap.ByteString(h.Key, h.Value))
			}
		}
		w.logger.Warn("dead letter received", fields...)
	}
}
