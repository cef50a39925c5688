package monitoring

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestWithFieldLeavesReceiverUnchanged(t *testing.T) {
	base := NewLogger(zapcore.InfoLevel)
	derived := base.WithField("height", 42)

	require.NotSame(t, base, derived)
	require.NotNil(t, derived)
}

func TestWithFieldsAcceptsMultipleEntries(t *testing.T) {
	base := NewLogger(zapcore.InfoLevel)
	derived := base.WithFields(map[string]interface{}{"height": 1, "hash": "abc"})
	require.NotNil(t, derived)
}

func TestLoggerInfoAndSyncDoNotPanic(t *testing.T) {
	logger := NewLogger(zapcore.InfoLevel)
	logger.Info("test message")
	_ = logger.Sync()
}

func TestSetGlobalLevelReplacesGlobalLogger(t *testing.T) {
	SetGlobalLevel(zapcore.DebugLevel)
	Debugf("debug message %d", 1)
	SetGlobalLevel(zapcore.InfoLevel)
}
