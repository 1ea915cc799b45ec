package observability

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/azlan18/iDEA/internal/config"
)

// Production sampling keeps the first 100 identical entries per second, then every 100th.
const (
	sampleInitial    = 100
	sampleThereafter = 100
)

// NewLogger builds the router's JSON logger. Development environments get
// unsampled output with stack traces on warnings; everything else is sampled.
func NewLogger(cfg config.LoggerConfig) (*zap.Logger, error) {
	logger, err := loggerConfig(cfg).Build()
	if err != nil {
		return nil, err
	}
	if env := strings.TrimSpace(cfg.Env); env != "" {
		logger = logger.With(zap.String("env", env))
	}
	return logger, nil
}

func loggerConfig(cfg config.LoggerConfig) zap.Config {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoder := zapcore.EncoderConfig{
		MessageKey:     "message",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	zc := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoder,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg.IsDevelopment() {
		zc.Development = true
		zc.EncoderConfig.CallerKey = "caller"
		zc.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		return zc
	}
	zc.Sampling = &zap.SamplingConfig{Initial: sampleInitial, Thereafter: sampleThereafter}
	return zc
}
