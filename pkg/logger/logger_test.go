package logger

import (
	"testing"

	"secaware_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerLevelFollowsMode(t *testing.T) {
	InitLogger(&config.Config{Server: config.ServerConfig{Mode: "debug"}})
	assert.NotNil(t, Log)
	assert.True(t, Log.Core().Enabled(zapcore.DebugLevel))

	InitLogger(&config.Config{Server: config.ServerConfig{Mode: "release"}})
	assert.NotNil(t, Log)
	assert.False(t, Log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Log.Core().Enabled(zapcore.InfoLevel))
}

func TestSyncToleratesNilLogger(t *testing.T) {
	saved := Log
	defer func() { Log = saved }()

	Log = nil
	Sync()
}
