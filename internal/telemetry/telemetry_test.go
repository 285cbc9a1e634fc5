package telemetry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitRequiresDirectory(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true})
	assert.Error(t, err)
}

func TestInitExportsSpansToFile(t *testing.T) {
	dir := t.TempDir()
	shutdown, err := Init(context.Background(), Config{Enabled: true, Dir: dir, ServiceVersion: "test"})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "turn")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "traces.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Name":"turn"`)
	assert.Contains(t, string(data), ServiceName)
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	logger, closer, err := NewLogger(path, slog.LevelInfo)
	require.NoError(t, err)

	logger.Info("hello", "user_id", "u1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"user_id":"u1"`)
}
