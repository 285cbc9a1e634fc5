// Package api provides HTTP handlers for the planner service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/homework-planner/internal/skill"
)

// DefaultMaxBodySize bounds a request envelope.
const DefaultMaxBodySize int64 = 1 << 20

// Dispatcher runs one conversational turn.
type Dispatcher interface {
	Handle(ctx context.Context, env *skill.RequestEnvelope) *skill.ResponseEnvelope
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// SkillHandler accepts request envelopes over HTTP.
type SkillHandler struct {
	dispatcher  Dispatcher
	maxBodySize int64
}

// NewSkillHandler creates a skill handler. A non-positive maxBodySize uses
// DefaultMaxBodySize.
func NewSkillHandler(d Dispatcher, maxBodySize int64) *SkillHandler {
	if maxBodySize <= 0 {
		maxBodySize = DefaultMaxBodySize
	}
	return &SkillHandler{dispatcher: d, maxBodySize: maxBodySize}
}

// RegisterRoutes registers the skill endpoint. Extra middleware applies only
// to that route.
func (h *SkillHandler) RegisterRoutes(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.With(mw...).Post("/api/skill", h.ServeSkill)
}

// ServeSkill decodes one envelope, runs the turn, and writes the response envelope.
func (h *SkillHandler) ServeSkill(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	env, err := decodeEnvelope(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		slog.Warn("Rejected skill request", "error", err)
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	JSON(w, http.StatusOK, h.dispatcher.Handle(r.Context(), env))
}

var errMissingRequestType = errors.New("missing request type")

func decodeEnvelope(r *http.Request) (*skill.RequestEnvelope, error) {
	var env skill.RequestEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, errors.New("invalid request envelope")
	}
	if env.Request.Type == "" {
		return nil, errMissingRequestType
	}
	return &env, nil
}
