package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func requestIDAttrs(ctx context.Context) []slog.Attr {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return []slog.Attr{slog.String("request_id", id)}
	}
	return nil
}

func TestNewJSONAddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "json", "debug", requestIDAttrs)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With("component", "test").DebugContext(ctx, "hello", "n", 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "test", entry["component"])
}

func TestNewPrettyRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "pretty", "warn", nil)

	log.Info("hidden")
	log.Warn("shown", "user_id", "u1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "user_id")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestPrettyHandlerGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).WithGroup("db").With("pool", "main")

	log.Info("connected", "conns", 4)

	out := buf.String()
	assert.Contains(t, out, "db.pool")
	assert.Contains(t, out, "db.conns")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}
