// Package convlog writes an NDJSON transcript of conversational turns.
package convlog

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Event is one transcript line.
type Event struct {
	ID         string         `json:"id"`
	Timestamp  string         `json:"ts"`
	UserID     string         `json:"user_id"`
	SessionID  string         `json:"session_id"`
	RequestID  string         `json:"request_id,omitempty"`
	Direction  string         `json:"direction"`
	EventType  string         `json:"event_type"`
	Intent     string         `json:"intent,omitempty"`
	ContentRaw string         `json:"content_raw,omitempty"`
	Content    string         `json:"content,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
}

// Logger records transcript events.
type Logger interface {
	Log(Event)
	Close() error
}

// Config controls transcript logging.
type Config struct {
	Enabled   bool
	Path      string
	QueueSize int
	// MaxSizeMB is the rotation threshold.
	MaxSizeMB int
}

// Noop discards every event.
type Noop struct{}

// Log discards the event.
func (Noop) Log(Event) {}

// Close does nothing.
func (Noop) Close() error { return nil }

// FileLogger appends events to a rotated NDJSON file from a single writer goroutine.
type FileLogger struct {
	out    io.WriteCloser
	queue  chan Event
	done   chan struct{}
	closed bool
	mu     sync.Mutex
	logger *slog.Logger
}

// New returns a Logger for cfg. A disabled config yields Noop.
func New(cfg Config, logger *slog.Logger) (Logger, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("conversation log path is required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		return nil, fmt.Errorf("create conversation log directory: %w", err)
	}

	l := &FileLogger{
		out: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		queue:  make(chan Event, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

// Log enqueues an event. Events are dropped when the queue is full.
func (l *FileLogger) Log(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == "" {
		e.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if e.Content == "" && e.ContentRaw != "" {
		e.Content = CleanForReadability(e.ContentRaw)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- e:
	default:
		l.logger.Warn("conversation log queue full, dropping event", "event_type", e.EventType, "user_id", e.UserID)
	}
}

// Close drains queued events and closes the file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return l.out.Close()
}

func (l *FileLogger) run() {
	defer close(l.done)
	enc := json.NewEncoder(l.out)
	for e := range l.queue {
		if err := enc.Encode(e); err != nil {
			l.logger.Warn("failed to write conversation log event", "error", err)
		}
	}
}

var (
	markupPattern     = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// CleanForReadability strips speech markup and collapses whitespace.
func CleanForReadability(s string) string {
	s = markupPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
