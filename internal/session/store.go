// Package session holds the in-progress conversation state for a session and
// moves it between live session attributes and durable storage.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/ashureev/homework-planner/internal/store"
)

const defaultFlushTimeout = 10 * time.Second

// Store hydrates session state from durable storage and flushes it back.
// It is safe for concurrent use across sessions.
type Store struct {
	repo         store.Repository
	flushTimeout time.Duration
	pending      sync.WaitGroup
}

// NewStore creates a session store backed by repo.
func NewStore(repo store.Repository, flushTimeout time.Duration) *Store {
	if flushTimeout <= 0 {
		flushTimeout = defaultFlushTimeout
	}
	return &Store{repo: repo, flushTimeout: flushTimeout}
}

// Hydrate loads the state for userID. A user with no stored attributes gets
// fresh state with IsNew set.
func (s *Store) Hydrate(ctx context.Context, userID string) (*domain.SessionState, error) {
	attrs, err := s.repo.GetAttributes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	if attrs == nil {
		slog.Info("Initializing planner data", "user_id", userID)
		return domain.NewSessionState(), nil
	}
	slog.Debug("Loaded planner data", "user_id", userID, "courses", len(attrs.Courses), "assignments", len(attrs.Assignments))
	return domain.FromAttributes(attrs), nil
}

// Flush writes the durable part of state for userID.
func (s *Store) Flush(ctx context.Context, userID string, state *domain.SessionState) error {
	if state == nil {
		return nil
	}
	if err := s.repo.PutAttributes(ctx, userID, state.Attributes()); err != nil {
		return fmt.Errorf("save attributes: %w", err)
	}
	return nil
}

// FlushAsync snapshots state and writes it in the background. The write
// outlives ctx cancellation; Wait blocks until every started flush is done.
func (s *Store) FlushAsync(ctx context.Context, userID string, state *domain.SessionState) {
	if state == nil {
		return
	}
	snapshot := domain.FromAttributes(state.Attributes())
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flushTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()
		if err := s.Flush(flushCtx, userID, snapshot); err != nil {
			slog.Error("Failed to flush session state", "user_id", userID, "error", err)
			return
		}
		slog.Debug("Session state flushed", "user_id", userID)
	}()
}

// Wait blocks until all background flushes complete.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Decode restores state carried in live session attributes. It returns nil
// when the attributes are empty.
func Decode(raw json.RawMessage) (*domain.SessionState, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "{}" {
		return nil, nil
	}
	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode session attributes: %w", err)
	}
	state.Normalize()
	return &state, nil
}
