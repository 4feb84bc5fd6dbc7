package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clickcart/server/internal/module/notification"
	"github.com/clickcart/server/internal/module/notification/channel"
	"github.com/clickcart/server/internal/shared/config"
	"github.com/clickcart/server/internal/shared/database"
	"github.com/clickcart/server/internal/shared/logger"
	"github.com/clickcart/server/internal/shared/metrics"
	"github.com/clickcart/server/internal/shared/middleware"
	"github.com/clickcart/server/internal/shared/mq"
)

// Notifier is the notification service: it consumes payment events and
// delivery receipts, and exposes only health and metrics over HTTP.
type Notifier struct {
	config  *config.Config
	db      *gorm.DB
	router  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	producer        *mq.Producer
	eventConsumer   *mq.Consumer
	receiptConsumer *mq.Consumer
	dlqWatcher      *mq.DLQWatcher

	cancel context.CancelFunc
}

// NewNotifier creates the notification service application.
func NewNotifier(cfg *config.Config) (*Notifier, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	n := &Notifier{
		config:  cfg,
		logger:  log,
		metrics: metrics.New("clickcart_notifier"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	n.db = db
	if err := database.Migrate(db, &notification.Notification{}, &notification.InboundCommand{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	n.producer = mq.NewProducer(cfg.Kafka.Brokers, log)

	repo := notification.NewRepository(db)
	providers := []channel.Provider{
		channel.NewEmailProvider(n.producer, cfg.Notifier.FromEmail, log),
		channel.NewSMSProvider(n.producer, cfg.Notifier.SMSSender, log),
	}
	dispatcher, err := notification.NewDispatcher(repo, providers, cfg.Notifier.Channels, cfg.Notifier.OpsRecipient, n.metrics, log)
	if err != nil {
		return nil, fmt.Errorf("init dispatcher: %w", err)
	}

	eventHandler := notification.NewEventConsumer(repo, dispatcher, log)
	n.eventConsumer = mq.NewConsumer(mq.ConsumerOptions{
		Brokers:     cfg.Kafka.Brokers,
		GroupID:     cfg.Kafka.GroupID + ".notifier",
		Topic:       mq.TopicPaymentResponse,
		MaxAttempts: cfg.Kafka.MaxAttempts,
	}, eventHandler.Handle, n.producer, n.metrics, log)

	receiptHandler := notification.NewReceiptConsumer(repo, log)
	n.receiptConsumer = mq.NewConsumer(mq.ConsumerOptions{
		Brokers:     cfg.Kafka.Brokers,
		GroupID:     cfg.Kafka.GroupID + ".notifier",
		Topic:       mq.TopicNotificationReceipt,
		MaxAttempts: cfg.Kafka.MaxAttempts,
	}, receiptHandler.Handle, n.producer, n.metrics, log)

	n.dlqWatcher = mq.NewDLQWatcher(cfg.Kafka.Brokers, cfg.Kafka.GroupID+".notifier", mq.TopicPaymentResponse, log)

	n.router = n.setupRouter()

	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.eventConsumer.Start(ctx)
	n.receiptConsumer.Start(ctx)
	n.dlqWatcher.Start(ctx)

	return n, nil
}

func (n *Notifier) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.Recovery(n.logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Router returns the HTTP router.
func (n *Notifier) Router() *gin.Engine {
	return n.router
}

// Stop shuts the notifier down.
func (n *Notifier) Stop() {
	if n.cancel != nil {
		n.cancel()
	}
	for name, c := range map[string]*mq.Consumer{
		"event consumer":   n.eventConsumer,
		"receipt consumer": n.receiptConsumer,
	} {
		if c == nil {
			continue
		}
		if err := c.Stop(); err != nil {
			n.logger.Error("stop "+name, zap.Error(err))
		}
	}
	if n.dlqWatcher != nil {
		if err := n.dlqWatcher.Stop(); err != nil {
			n.logger.Error("stop dlq watcher", zap.Error(err))
		}
	}
	if n.producer != nil {
		if err := n.producer.Close(); err != nil {
			n.logger.Error("close producer", zap.Error(err))
		}
	}
	if n.db != nil {
		if err := database.Close(n.db); err != nil {
			n.logger.Error("close database", zap.Error(err))
		}
	}
}
