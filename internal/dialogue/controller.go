package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ashureev/homework-planner/internal/convlog"
	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/ashureev/homework-planner/internal/identity"
	"github.com/ashureev/homework-planner/internal/session"
	"github.com/ashureev/homework-planner/internal/skill"
	"github.com/ashureev/homework-planner/internal/timezone"
)

const instrumentationName = "github.com/ashureev/homework-planner/internal/dialogue"

var (
	errMissingUser       = errors.New("request carries no user id")
	errCorruptAttributes = errors.New("session attributes unreadable")
)

// DateParser converts a raw date slot value into a calendar date.
type DateParser interface {
	Parse(raw string, now time.Time) (domain.CalendarDate, error)
}

// Options configures a Controller. Sessions and Dates are required.
type Options struct {
	Sessions   *session.Store
	Timezones  timezone.Resolver
	Dates      DateParser
	Transcript convlog.Logger
	Clock      func() time.Time
}

// step is a pre-dispatch interceptor.
type step struct {
	name string
	run  func(ctx context.Context, t *Turn) error
}

// Controller runs one conversational turn: interceptors, dispatch, and the
// session-end flush.
type Controller struct {
	sessions   *session.Store
	timezones  timezone.Resolver
	dates      DateParser
	transcript convlog.Logger
	clock      func() time.Time

	handlers []Handler
	before   []step

	tracer      trace.Tracer
	turns       metric.Int64Counter
	assignments metric.Int64Counter
	failures    metric.Int64Counter
}

// New creates a Controller.
func New(opts Options) (*Controller, error) {
	if opts.Sessions == nil {
		return nil, errors.New("dialogue: session store is required")
	}
	if opts.Dates == nil {
		return nil, errors.New("dialogue: date parser is required")
	}
	if opts.Transcript == nil {
		opts.Transcript = convlog.Noop{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	meter := otel.Meter(instrumentationName)
	turns, err := meter.Int64Counter("planner.turns",
		metric.WithDescription("Conversational turns by handler"))
	if err != nil {
		return nil, fmt.Errorf("create turn counter: %w", err)
	}
	assignments, err := meter.Int64Counter("planner.assignments.added",
		metric.WithDescription("Assignments committed"))
	if err != nil {
		return nil, fmt.Errorf("create assignment counter: %w", err)
	}
	failures, err := meter.Int64Counter("planner.turn.failures",
		metric.WithDescription("Turns answered with the apology response"))
	if err != nil {
		return nil, fmt.Errorf("create failure counter: %w", err)
	}

	c := &Controller{
		sessions:    opts.Sessions,
		timezones:   opts.Timezones,
		dates:       opts.Dates,
		transcript:  opts.Transcript,
		clock:       opts.Clock,
		handlers:    buildHandlers(),
		tracer:      otel.Tracer(instrumentationName),
		turns:       turns,
		assignments: assignments,
		failures:    failures,
	}
	// Order matters: hydration, then timezone, then date conversion.
	c.before = []step{
		{name: "hydrate", run: c.hydrate},
		{name: "timezone", run: c.resolveTimezone},
		{name: "dates", run: c.convertDates},
	}
	return c, nil
}

// Handle processes one request envelope. It never returns an error; failures
// become the apology response.
func (c *Controller) Handle(ctx context.Context, env *skill.RequestEnvelope) *skill.ResponseEnvelope {
	ctx = identity.WithTurn(ctx, identity.Turn{
		UserID:    env.UserID(),
		SessionID: env.Session.SessionID,
		RequestID: env.Request.RequestID,
	})
	ctx, span := c.tracer.Start(ctx, "dialogue.turn", trace.WithAttributes(
		attribute.String("request.type", env.Request.Type),
		attribute.String("intent", env.Request.IntentName()),
	))
	defer span.End()

	c.logInbound(ctx, env)

	t := &Turn{
		Envelope: env,
		Attrs:    &session.Attributes{},
		Dates:    make(map[string]domain.CalendarDate),
	}

	resp, kind, err := c.run(ctx, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("handler", kind.String())))
		slog.Error("Turn failed",
			"handler", kind.String(),
			"request_type", env.Request.Type,
			"intent", env.Request.IntentName(),
			"request_id", identity.RequestIDFromContext(ctx),
			"error", err)
		resp = apology()
		c.logOutbound(ctx, env, resp, KindFallback)
		if errors.Is(err, errCorruptAttributes) {
			return c.envelope(nil, resp)
		}
		return c.envelope(env.Session.Attributes, resp)
	}

	span.SetAttributes(attribute.String("handler", kind.String()))
	c.turns.Add(ctx, 1, metric.WithAttributes(attribute.String("handler", kind.String())))
	c.logOutbound(ctx, env, resp, kind)

	c.afterResponse(ctx, t, resp)

	var attrs any
	if st := t.State(); st != nil && !resp.ShouldEndSession {
		attrs = st
	}
	return c.envelope(attrs, resp)
}

func (c *Controller) run(ctx context.Context, t *Turn) (*skill.Response, Kind, error) {
	for _, s := range c.before {
		if err := s.run(ctx, t); err != nil {
			return nil, KindFallback, fmt.Errorf("%s: %w", s.name, err)
		}
	}

	h := c.route(t)
	resp, err := h.Handle(ctx, t)
	if err != nil {
		return nil, h.Kind(), fmt.Errorf("%s handler: %w", h.Kind(), err)
	}
	if h.Kind() == KindAddHomework && !resp.HasDirectives() {
		c.assignments.Add(ctx, 1)
	}
	return resp, h.Kind(), nil
}

// route returns the first handler that claims the turn. Fallback claims
// everything, so route always succeeds.
func (c *Controller) route(t *Turn) Handler {
	for _, h := range c.handlers {
		if h.CanHandle(t) {
			return h
		}
	}
	return fallbackHandler{}
}

// Route reports which handler kind would claim the turn. It runs no
// interceptors, so the turn must already carry hydrated state.
func (c *Controller) Route(t *Turn) Kind {
	return c.route(t).Kind()
}

// hydrate loads state from the live session, or from durable storage when
// the session is new or carries no state.
func (c *Controller) hydrate(ctx context.Context, t *Turn) error {
	env := t.Envelope
	if !env.Session.New {
		st, err := session.Decode(env.Session.Attributes)
		if err != nil {
			return fmt.Errorf("%w: %w", errCorruptAttributes, err)
		}
		if st != nil {
			t.Attrs = session.Load(st)
			return nil
		}
	}

	userID := env.UserID()
	if userID == "" {
		return errMissingUser
	}
	st, err := c.sessions.Hydrate(ctx, userID)
	if err != nil {
		return err
	}
	t.Attrs = session.Load(st)
	return nil
}

// resolveTimezone fills the profile timezone once and computes the user's
// local time for the turn.
func (c *Controller) resolveTimezone(ctx context.Context, t *Turn) error {
	st := t.State()
	if st.Profile.Timezone == "" && c.timezones != nil && !t.isType(skill.SessionEndedRequest) {
		zone, err := c.timezones.Resolve(ctx, timezone.Device{
			ID:          t.Envelope.DeviceID(),
			APIEndpoint: t.Envelope.Context.System.APIEndpoint,
			AccessToken: t.Envelope.Context.System.APIAccessToken,
		})
		if err != nil {
			return err
		}
		st.Profile.Timezone = zone
		t.Attrs.Set(st)
	}
	t.Now = timezone.Now(st.Profile.Timezone, c.clock())
	return nil
}

// convertDates parses the date slot into Turn.Dates.
func (c *Controller) convertDates(_ context.Context, t *Turn) error {
	if !t.isType(skill.IntentRequest) {
		return nil
	}
	raw := t.Intent().SlotValue(SlotDate)
	if raw == "" {
		return nil
	}
	d, err := c.dates.Parse(raw, t.Now)
	if err != nil {
		return err
	}
	t.Dates[SlotDate] = d
	return nil
}

// afterResponse flushes state when the session is closing.
func (c *Controller) afterResponse(ctx context.Context, t *Turn, resp *skill.Response) {
	closing := (resp.ShouldEndSession && !resp.HasDirectives()) || t.isType(skill.SessionEndedRequest)
	if !closing {
		return
	}
	st := t.State()
	if st == nil {
		return
	}
	c.sessions.FlushAsync(ctx, t.Envelope.UserID(), st)
}

func (c *Controller) envelope(attrs any, resp *skill.Response) *skill.ResponseEnvelope {
	if raw, ok := attrs.(json.RawMessage); ok && len(raw) == 0 {
		attrs = nil
	}
	return &skill.ResponseEnvelope{
		Version:           skill.EnvelopeVersion,
		SessionAttributes: attrs,
		Response:          *resp,
	}
}

func (c *Controller) logInbound(ctx context.Context, env *skill.RequestEnvelope) {
	var meta map[string]any
	if env.Request.Intent != nil {
		meta = map[string]any{
			"slots":        env.Request.Intent.Values(),
			"dialog_state": env.Request.DialogState,
		}
	}
	c.transcript.Log(convlog.Event{
		UserID:    identity.UserIDFromContext(ctx),
		SessionID: identity.SessionIDFromContext(ctx),
		RequestID: identity.RequestIDFromContext(ctx),
		Direction: "inbound",
		EventType: env.Request.Type,
		Intent:    env.Request.IntentName(),
		Meta:      meta,
	})
}

func (c *Controller) logOutbound(ctx context.Context, env *skill.RequestEnvelope, resp *skill.Response, kind Kind) {
	meta := map[string]any{
		"handler":            kind.String(),
		"should_end_session": resp.ShouldEndSession,
	}
	if d, ok := resp.Delegate(); ok && d.UpdatedIntent != nil {
		meta["delegate"] = d.UpdatedIntent.Name
	}
	c.transcript.Log(convlog.Event{
		UserID:     identity.UserIDFromContext(ctx),
		SessionID:  identity.SessionIDFromContext(ctx),
		RequestID:  identity.RequestIDFromContext(ctx),
		Direction:  "outbound",
		EventType:  "response",
		Intent:     env.Request.IntentName(),
		ContentRaw: resp.Speech(),
		Meta:       meta,
	})
}
