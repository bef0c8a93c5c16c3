package logger

import (
	"fmt"

	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from the log config section. Falls back to
// production defaults when the section is empty.
func New(cfg *config.LogConfig) (*zap.Logger, error) {
	if cfg == nil || (cfg.Level == "" && cfg.Encoding == "" && len(cfg.OutputPaths) == 0) {
		return zap.NewProduction()
	}

	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Encoding = encoding
	zcfg.OutputPaths = outputs

	return zcfg.Build()
}
