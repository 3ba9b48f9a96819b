package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		logMsg      string
		attrs       []slog.Attr
	}{
		{
			name:        "Basic log entry",
			serviceName: "settings",
			logMsg:      "settings_added",
		},
		{
			name:        "Log with extra attributes",
			serviceName: "billing-api",
			logMsg:      "settings_added",
			attrs: []slog.Attr{
				slog.String("source", "Environment Variables"),
				slog.Int("count", 42),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.serviceName)

			args := make([]any, 0, len(tt.attrs)*2)
			for _, attr := range tt.attrs {
				args = append(args, attr.Key, attr.Value.Any())
			}
			l.Info(tt.logMsg, args...)

			var logEntry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

			assert.Equal(t, tt.logMsg, logEntry["msg"])
			assert.Equal(t, tt.serviceName, logEntry["service"])
			assert.Equal(t, "INFO", logEntry["level"])

			for _, attr := range tt.attrs {
				val, ok := logEntry[attr.Key]
				if !assert.True(t, ok, "missing attribute %q", attr.Key) {
					continue
				}
				// json.Unmarshal decodes numbers as float64
				if attr.Value.Kind() == slog.KindInt64 {
					assert.Equal(t, float64(attr.Value.Int64()), val)
				} else {
					assert.Equal(t, attr.Value.Any(), val)
				}
			}
		})
	}
}

func TestNewWithLevel_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLevel(&buf, "settings", slog.LevelWarn)

	l.Info("setting_added", "key", "A")
	assert.Zero(t, buf.Len())

	l.Warn("setting_duplicate_key", "key", "A")
	assert.True(t, strings.Contains(buf.String(), "setting_duplicate_key"))
}

func TestSetup(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	l := Setup(&buf, "settings")
	require.NotNil(t, l)

	slog.Info("hello")

	var logEntry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "settings", logEntry["service"])
}
