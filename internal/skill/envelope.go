// Package skill defines the voice platform request and response envelopes.
package skill

import (
	"encoding/json"
)

// Request types.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

// Dialog states reported for multi-turn intents.
const (
	DialogStarted    = "STARTED"
	DialogInProgress = "IN_PROGRESS"
	DialogCompleted  = "COMPLETED"
)

// EnvelopeVersion is written on every response.
const EnvelopeVersion = "1.0"

// RequestEnvelope is the structured request delivered by the platform.
type RequestEnvelope struct {
	Version string  `json:"version"`
	Session Session `json:"session"`
	Context Context `json:"context"`
	Request Request `json:"request"`
}

// Session carries per-session identity and live attributes.
type Session struct {
	New         bool            `json:"new"`
	SessionID   string          `json:"sessionId"`
	Application Application     `json:"application"`
	User        User            `json:"user"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}

// Application identifies the skill a request was sent to.
type Application struct {
	ApplicationID string `json:"applicationId"`
}

// User identifies the account holder.
type User struct {
	UserID string `json:"userId"`
}

// Device identifies the device the user spoke to.
type Device struct {
	DeviceID string `json:"deviceId"`
}

// Context carries device and platform state.
type Context struct {
	System System `json:"System"`
}

// System is the platform system state.
type System struct {
	Device         Device      `json:"device"`
	Application    Application `json:"application"`
	User           User        `json:"user"`
	APIEndpoint    string      `json:"apiEndpoint,omitempty"`
	APIAccessToken string      `json:"apiAccessToken,omitempty"`
}

// Request is the typed request body.
type Request struct {
	Type        string  `json:"type"`
	RequestID   string  `json:"requestId"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Locale      string  `json:"locale,omitempty"`
	DialogState string  `json:"dialogState,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Intent      *Intent `json:"intent,omitempty"`
}

// DialogComplete returns true when the platform finished slot elicitation.
func (r *Request) DialogComplete() bool {
	return r.DialogState == DialogCompleted
}

// IntentName returns the intent name, or "" for non-intent requests.
func (r *Request) IntentName() string {
	if r.Intent == nil {
		return ""
	}
	return r.Intent.Name
}

// UserID returns the user identifier, preferring the session block.
func (e *RequestEnvelope) UserID() string {
	if e.Session.User.UserID != "" {
		return e.Session.User.UserID
	}
	return e.Context.System.User.UserID
}

// ApplicationID returns the target application identifier.
func (e *RequestEnvelope) ApplicationID() string {
	if e.Session.Application.ApplicationID != "" {
		return e.Session.Application.ApplicationID
	}
	return e.Context.System.Application.ApplicationID
}

// DeviceID returns the device identifier.
func (e *RequestEnvelope) DeviceID() string {
	return e.Context.System.Device.DeviceID
}

// ResponseEnvelope is returned to the platform.
type ResponseEnvelope struct {
	Version           string   `json:"version"`
	SessionAttributes any      `json:"sessionAttributes,omitempty"`
	Response          Response `json:"response"`
}
