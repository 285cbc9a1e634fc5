package session

import "github.com/ashureev/homework-planner/internal/domain"

// Attributes is the in-memory accessor for one turn. It has a single writer.
type Attributes struct {
	state *domain.SessionState
}

// Get returns the current state, or nil if it was never hydrated.
func (a *Attributes) Get() *domain.SessionState {
	return a.state
}

// Set replaces the current state.
func (a *Attributes) Set(state *domain.SessionState) {
	a.state = state
}

// Load installs hydrated state for the turn.
func Load(state *domain.SessionState) *Attributes {
	return &Attributes{state: state}
}
