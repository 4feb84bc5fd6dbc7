package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is loaded once at process
// start and never mutated afterwards.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds message broker configuration.
type KafkaConfig struct {
	Brokers     []string `mapstructure:"brokers"`
	GroupID     string   `mapstructure:"group_id"`
	MaxAttempts int      `mapstructure:"max_attempts"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// PaymentConfig holds payment orchestration configuration.
type PaymentConfig struct {
	// CheckoutTTL is the lifetime of a hosted checkout session.
	CheckoutTTL time.Duration `mapstructure:"checkout_ttl"`
	// Methods maps a payment method (e.g. CREDIT_CARD) to a provider
	// identifier (e.g. STRIPE).
	Methods map[string]string `mapstructure:"methods"`
	Stripe  StripeConfig      `mapstructure:"stripe"`
	Alipay  AlipayConfig      `mapstructure:"alipay"`
}

// StripeConfig holds Stripe provider configuration.
type StripeConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	APIKey        string `mapstructure:"api_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

// AlipayConfig holds Alipay provider configuration.
type AlipayConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AppID           string `mapstructure:"app_id"`
	PrivateKey      string `mapstructure:"private_key"`
	AlipayPublicKey string `mapstructure:"alipay_public_key"`
	IsProd          bool   `mapstructure:"is_prod"`
	NotifyURL       string `mapstructure:"notify_url"`
	ReturnURL       string `mapstructure:"return_url"`
}

// NotifierConfig holds notification service configuration.
type NotifierConfig struct {
	Address   string   `mapstructure:"address"`
	Channels  []string `mapstructure:"channels"`
	FromEmail string   `mapstructure:"from_email"`
	SMSSender string   `mapstructure:"sms_sender"`
	// OpsRecipient receives best-effort alerts when a dispatch fails.
	OpsRecipient string `mapstructure:"ops_recipient"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/clickcart")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	v.SetEnvPrefix("CLICKCART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("CLICKCART_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if password := os.Getenv("CLICKCART_DB_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if key := os.Getenv("CLICKCART_STRIPE_API_KEY"); key != "" {
		cfg.Payment.Stripe.APIKey = key
	}
	if secret := os.Getenv("CLICKCART_STRIPE_WEBHOOK_SECRET"); secret != "" {
		cfg.Payment.Stripe.WebhookSecret = secret
	}

	return &cfg, nil
}

// Validate checks that the configuration is complete enough to start.
// It is called once at startup; an invalid config aborts the process there,
// never at first use.
func (c *Config) Validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty")
	}
	if c.Database.Host == "" || c.Database.Database == "" {
		return fmt.Errorf("database host and name are required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Payment.CheckoutTTL <= 0 {
		return fmt.Errorf("payment.checkout_ttl must be positive")
	}
	if c.Payment.Stripe.Enabled {
		if c.Payment.Stripe.APIKey == "" || c.Payment.Stripe.WebhookSecret == "" {
			return fmt.Errorf("stripe is enabled but api_key or webhook_secret is missing")
		}
	}
	if c.Payment.Alipay.Enabled {
		if c.Payment.Alipay.AppID == "" || c.Payment.Alipay.PrivateKey == "" || c.Payment.Alipay.AlipayPublicKey == "" {
			return fmt.Errorf("alipay is enabled but app_id, private_key or alipay_public_key is missing")
		}
	}
	enabled := map[string]bool{
		"STRIPE": c.Payment.Stripe.Enabled,
		"ALIPAY": c.Payment.Alipay.Enabled,
	}
	for method, providerID := range c.Payment.Methods {
		if !enabled[strings.ToUpper(providerID)] {
			return fmt.Errorf("payment method %s maps to provider %s which is not enabled", method, providerID)
		}
	}
	return nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.database", "clickcart")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 30*time.Minute)

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "clickcart")
	v.SetDefault("kafka.max_attempts", 3)

	// Payment defaults
	v.SetDefault("payment.checkout_ttl", 30*time.Minute)
	v.SetDefault("payment.methods", map[string]string{
		"CREDIT_CARD": "STRIPE",
		"ALIPAY":      "ALIPAY",
	})

	// Notifier defaults
	v.SetDefault("notifier.address", ":8081")
	v.SetDefault("notifier.channels", []string{"EMAIL"})
	v.SetDefault("notifier.from_email", "no-reply@clickcart.dev")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
