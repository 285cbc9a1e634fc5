// Package middleware provides HTTP middleware for the planner API.
package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

type applicationProbe struct {
	Session struct {
		Application struct {
			ApplicationID string `json:"applicationId"`
		} `json:"application"`
	} `json:"session"`
	Context struct {
		System struct {
			Application struct {
				ApplicationID string `json:"applicationId"`
			} `json:"application"`
		} `json:"System"`
	} `json:"context"`
}

func (p applicationProbe) applicationID() string {
	if id := p.Session.Application.ApplicationID; id != "" {
		return id
	}
	return p.Context.System.Application.ApplicationID
}

// VerifyApplication rejects skill requests addressed to another application.
// An empty skillID disables the check. Bodies over maxBodySize are rejected
// before buffering completes; the body is restored for the next handler.
func VerifyApplication(skillID string, maxBodySize int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if skillID == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
			if err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
					return
				}
				writeError(w, http.StatusBadRequest, "failed to read request body")
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			var probe applicationProbe
			if err := json.Unmarshal(body, &probe); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request envelope")
				return
			}
			if got := probe.applicationID(); got != skillID {
				slog.Warn("Rejected request for unknown application", "application_id", got)
				writeError(w, http.StatusForbidden, "application id mismatch")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
