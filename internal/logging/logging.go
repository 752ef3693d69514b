// Package logging builds the gateway's structured logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls sink construction. Mirrors the `logging.{level,pretty}`
// configuration option from spec.md §6.
type Config struct {
	Level  string
	Pretty bool
}

// New builds a zap logger. Pretty=true gives a human-readable console
// encoder (local dev); pretty=false gives structured JSON (production).
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, err
		}
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Pretty {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.Level = zap.NewAtomicLevelAt(level)
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return zcfg.Build()
}

// Nop returns a logger that discards everything, useful as a safe default
// and in tests.
func Nop() *zap.Logger { return zap.NewNop() }
