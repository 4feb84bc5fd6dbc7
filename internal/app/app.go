package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/clickcart/server/cmd/server/docs" // swagger docs
	"github.com/clickcart/server/internal/module/order"
	"github.com/clickcart/server/internal/module/payment"
	sharedcache "github.com/clickcart/server/internal/shared/cache"
	"github.com/clickcart/server/internal/shared/config"
	"github.com/clickcart/server/internal/shared/database"
	"github.com/clickcart/server/internal/shared/logger"
	"github.com/clickcart/server/internal/shared/metrics"
	"github.com/clickcart/server/internal/shared/middleware"
	"github.com/clickcart/server/internal/shared/mq"
)

// expirySweepInterval is how often overdue checkout sessions are swept.
// Provider expiry webhooks usually arrive first; the sweep is the backstop.
const expirySweepInterval = time.Minute

// App is the commerce server: HTTP API, webhook endpoint and the payment
// command consumer.
type App struct {
	config  *config.Config
	db      *gorm.DB
	redis   redis.UniversalClient
	router  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	producer        *mq.Producer
	commandConsumer *mq.Consumer
	dlqWatcher      *mq.DLQWatcher

	coordinator    *order.Coordinator
	orderHandler   *order.Handler
	paymentHandler *payment.Handler
	webhookHandler *payment.WebhookHandler

	cancel context.CancelFunc
}

// New creates the commerce server application.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{
		config:  cfg,
		logger:  log,
		metrics: metrics.New("clickcart"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db
	if err := database.Migrate(db, &order.Order{}, &order.OrderItem{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	redisClient, err := sharedcache.NewRedisClient(&cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}
	app.redis = redisClient

	app.producer = mq.NewProducer(cfg.Kafka.Brokers, log)

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}
	app.router = app.setupRouter()

	ctx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	app.commandConsumer.Start(ctx)
	app.dlqWatcher.Start(ctx)
	go app.coordinator.RunExpirySweeper(ctx, expirySweepInterval)

	return app, nil
}

// initModules wires the order and payment modules.
func (a *App) initModules() error {
	orderRepo := order.NewRepository(a.db)
	publisher := order.NewKafkaEventPublisher(a.producer, a.logger)
	a.coordinator = order.NewCoordinator(orderRepo, publisher, a.metrics, a.logger)
	orderService := order.NewService(orderRepo, a.coordinator, a.logger)
	a.orderHandler = order.NewHandler(orderService)

	resolver, err := payment.NewResolver(&a.config.Payment, a.logger)
	if err != nil {
		return err
	}
	paymentService := payment.NewService(orderRepo, resolver, a.config.Payment.CheckoutTTL, a.metrics, a.logger)
	a.paymentHandler = payment.NewHandler(paymentService)
	a.webhookHandler = payment.NewWebhookHandler(resolver, a.redis, a.producer, a.metrics, a.logger)

	commandHandler := payment.NewCommandConsumer(a.coordinator, a.logger)
	a.commandConsumer = mq.NewConsumer(mq.ConsumerOptions{
		Brokers:     a.config.Kafka.Brokers,
		GroupID:     a.config.Kafka.GroupID + ".payment",
		Topic:       mq.TopicPaymentRequest,
		MaxAttempts: a.config.Kafka.MaxAttempts,
	}, commandHandler.Handle, a.producer, a.metrics, a.logger)
	a.dlqWatcher = mq.NewDLQWatcher(a.config.Kafka.Brokers, a.config.Kafka.GroupID+".payment", mq.TopicPaymentRequest, a.logger)

	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.Metrics(a.metrics))
	r.Use(cors.Default())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Provider callbacks authenticate by signature, not by bearer token.
	webhooks := r.Group("/webhooks")
	a.webhookHandler.RegisterRoutes(webhooks)

	api := r.Group("/api/v1")
	api.Use(middleware.RequireAuth(a.config.Auth.JWTSecret))
	a.orderHandler.RegisterProtectedRoutes(api)
	a.paymentHandler.RegisterProtectedRoutes(api)

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	a.orderHandler.RegisterAdminRoutes(admin)

	return r
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop shuts the application down.
func (a *App) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.commandConsumer != nil {
		if err := a.commandConsumer.Stop(); err != nil {
			a.logger.Error("stop command consumer", zap.Error(err))
		}
	}
	if a.dlqWatcher != nil {
		if err := a.dlqWatcher.Stop(); err != nil {
			a.logger.Error("stop dlq watcher", zap.Error(err))
		}
	}
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("close producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := sharedcache.Close(a.redis); err != nil {
			a.logger.Error("close redis", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Error("close database", zap.Error(err))
		}
	}
}
