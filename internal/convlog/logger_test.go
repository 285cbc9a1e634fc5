package convlog

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileLoggerWritesNDJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "transcripts", "all.ndjson")
	logger, err := New(Config{Enabled: true, Path: path, QueueSize: 16}, slog.Default())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Log(Event{
		UserID:     "user-1",
		SessionID:  "sess-1",
		Direction:  "outbound",
		EventType:  "speech",
		ContentRaw: `<speak>Added Math Essay on <say-as interpret-as="date" format="md">5/3</say-as></speak>`,
	})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	line := waitForLogLine(t, path)
	var got Event
	if err := json.Unmarshal([]byte(line), &got); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if got.ID == "" || got.Timestamp == "" {
		t.Fatalf("expected id and timestamp to be populated: %+v", got)
	}
	if got.Content != "Added Math Essay on 5/3" {
		t.Fatalf("unexpected cleaned content: %q", got.Content)
	}
}

func TestLogAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "all.ndjson")
	logger, err := New(Config{Enabled: true, Path: path, QueueSize: 1}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	logger.Log(Event{EventType: "late"})
	if err := logger.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestDisabledLoggerIsNoop(t *testing.T) {
	logger, err := New(Config{}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := logger.(Noop); !ok {
		t.Fatalf("expected Noop logger, got %T", logger)
	}
}

func TestCleanForReadability(t *testing.T) {
	raw := `<say-as interpret-as="interjection">Hi there!</say-as>   Welcome`
	if got := CleanForReadability(raw); got != "Hi there! Welcome" {
		t.Fatalf("unexpected clean text: %q", got)
	}
}

func waitForLogLine(t *testing.T, path string) string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			lines := strings.Split(strings.TrimSpace(string(data)), "\n")
			if len(lines) > 0 {
				return lines[len(lines)-1]
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for log file %s", path)
	return ""
}
