package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/azlan18/iDEA/internal/config"
)

func TestLoggerConfig_DevelopmentIsUnsampled(t *testing.T) {
	zc := loggerConfig(config.LoggerConfig{Level: "debug", Env: "development"})

	assert.True(t, zc.Development)
	assert.Nil(t, zc.Sampling)
	assert.Equal(t, "json", zc.Encoding)
	assert.Equal(t, "caller", zc.EncoderConfig.CallerKey)
	assert.Equal(t, zapcore.DebugLevel, zc.Level.Level())
}

func TestLoggerConfig_ProductionIsSampled(t *testing.T) {
	zc := loggerConfig(config.LoggerConfig{Level: "warn", Env: "production"})

	assert.False(t, zc.Development)
	require.NotNil(t, zc.Sampling)
	assert.Equal(t, sampleInitial, zc.Sampling.Initial)
	assert.Equal(t, sampleThereafter, zc.Sampling.Thereafter)
	assert.Empty(t, zc.EncoderConfig.CallerKey)
	assert.Equal(t, zapcore.WarnLevel, zc.Level.Level())
}

func TestLoggerConfig_UnknownLevelFallsBackToInfo(t *testing.T) {
	zc := loggerConfig(config.LoggerConfig{Level: "chatty", Env: "staging"})
	assert.Equal(t, zapcore.InfoLevel, zc.Level.Level())
	assert.NotNil(t, zc.Sampling)
}

func TestNewLogger_Builds(t *testing.T) {
	for _, env := range []string{"development", "production", ""} {
		logger, err := NewLogger(config.LoggerConfig{Level: "info", Env: env})
		require.NoError(t, err, env)
		assert.True(t, logger.Core().Enabled(zapcore.InfoLevel), env)
		assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), env)
	}
}
