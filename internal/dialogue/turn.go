package dialogue

import (
	"context"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/ashureev/homework-planner/internal/session"
	"github.com/ashureev/homework-planner/internal/skill"
)

// Turn is everything a handler sees for one request.
type Turn struct {
	Envelope *skill.RequestEnvelope
	Attrs    *session.Attributes
	// Dates holds converted date slots keyed by slot name. Raw slot values
	// on the intent are never rewritten.
	Dates map[string]domain.CalendarDate
	// Now is the current time in the user's timezone.
	Now time.Time
}

// Request returns the typed request body.
func (t *Turn) Request() *skill.Request {
	return &t.Envelope.Request
}

// Intent returns the intent, or nil for non-intent requests.
func (t *Turn) Intent() *skill.Intent {
	return t.Envelope.Request.Intent
}

// IntentName returns the intent name, or "".
func (t *Turn) IntentName() string {
	return t.Envelope.Request.IntentName()
}

// State returns the hydrated session state.
func (t *Turn) State() *domain.SessionState {
	if t.Attrs == nil {
		return nil
	}
	return t.Attrs.Get()
}

func (t *Turn) isType(requestType string) bool {
	return t.Envelope.Request.Type == requestType
}

func (t *Turn) isIntent(name string) bool {
	return t.isType(skill.IntentRequest) && t.IntentName() == name
}

// Handler handles one kind of turn.
type Handler interface {
	Kind() Kind
	CanHandle(t *Turn) bool
	Handle(ctx context.Context, t *Turn) (*skill.Response, error)
}
