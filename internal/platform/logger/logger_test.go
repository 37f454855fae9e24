package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexireef/studyhall-api/internal/config"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		logDebug    bool
		expectDebug bool
	}{
		{name: "debug level passes debug records", level: "debug", logDebug: true, expectDebug: true},
		{name: "info level drops debug records", level: "info", logDebug: true, expectDebug: false},
		{name: "level is case-insensitive", level: "DEBUG", logDebug: true, expectDebug: true},
		{name: "unknown level falls back to info", level: "loud", logDebug: true, expectDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := setup(config.ServerConfig{LogLevel: tt.level}, &buf)

			if tt.logDebug {
				log.Debug("debug message")
			}
			log.Info("info message")

			output := buf.String()
			assert.Contains(t, output, "info message")
			if tt.expectDebug {
				assert.Contains(t, output, "debug message")
			} else {
				assert.NotContains(t, output, "debug message")
			}
		})
	}
}

func TestSetupEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := setup(config.ServerConfig{LogLevel: "info"}, &buf)

	log.Info("hello", slog.String("component", "test"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "test", record["component"])
}

func TestContextRoundTrip(t *testing.T) {
	base := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	ctx := WithLogger(context.Background(), base)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.Same(t, base, FromContextOrDefault(ctx, nil))
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	assert.NotNil(t, FromContextOrDefault(context.Background(), nil))
}
