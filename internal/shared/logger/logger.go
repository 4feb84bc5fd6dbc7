package logger

import (
	"fmt"

	"github.com/clickcart/server/internal/shared/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger from the log configuration.
func New(cfg *config.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	if cfg != nil && cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	if cfg != nil {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)

		switch cfg.Format {
		case "", "json":
			zc.Encoding = "json"
		case "console", "text":
			zc.Encoding = "console"
		default:
			return nil, fmt.Errorf("unknown log format %q", cfg.Format)
		}
	}

	return zc.Build()
}
