package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithWriter(zapcore.AddSync(&buf), zap.NewAtomicLevelAt(zap.InfoLevel), EncoderJSON)
	require.NoError(t, err)

	ctx := WithRequestID(context.Background(), "req-1")
	logger.Debug("hidden")
	logger.Info("visible", ZContext(ctx), zap.Int("n", 3))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "visible", entry["msg"])
	require.Equal(t, "req-1", entry["requestId"])
	require.EqualValues(t, 3, entry["n"])
}

func TestUnknownEncoder(t *testing.T) {
	_, err := New(zap.NewAtomicLevel(), "xml")
	require.Error(t, err)
}

func TestRequestID(t *testing.T) {
	_, ok := ExtractRequestID(context.Background())
	require.False(t, ok)

	ctx := WithNewRequestID(context.Background())
	id, ok := ExtractRequestID(ctx)
	require.True(t, ok)
	require.Len(t, id, 36)

	other, _ := ExtractRequestID(WithNewRequestID(context.Background()))
	require.NotEqual(t, id, other)
}

func TestModuleLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newWithWriter(zapcore.AddSync(&buf), zap.NewAtomicLevelAt(zap.DebugLevel), EncoderJSON)
	require.NoError(t, err)
	cfg := Config{Modules: map[string]string{"gossip": "warn"}}

	Named(logger, cfg, "gossip").Info("dropped")
	require.Zero(t, buf.Len())
	Named(logger, cfg, "fetch").Info("kept")
	require.Contains(t, buf.String(), `"logger":"fetch"`)
}
