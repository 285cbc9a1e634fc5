package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	})
}

func TestVerifyApplication(t *testing.T) {
	const skillID = "amzn1.ask.skill.planner"
	tests := []struct {
		name       string
		skillID    string
		body       string
		limit      int64
		wantStatus int
	}{
		{"session application matches", skillID, `{"session":{"application":{"applicationId":"amzn1.ask.skill.planner"}}}`, 1024, http.StatusOK},
		{"context application matches", skillID, `{"context":{"System":{"application":{"applicationId":"amzn1.ask.skill.planner"}}}}`, 1024, http.StatusOK},
		{"mismatch", skillID, `{"session":{"application":{"applicationId":"amzn1.ask.skill.other"}}}`, 1024, http.StatusForbidden},
		{"missing id", skillID, `{}`, 1024, http.StatusForbidden},
		{"malformed", skillID, `{`, 1024, http.StatusBadRequest},
		{"check disabled", "", `not json`, 1024, http.StatusOK},
		{"oversized body", skillID, `{"session":{"application":{"applicationId":"amzn1.ask.skill.planner"}},"pad":"` + strings.Repeat("x", 2048) + `"}`, 1024, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := VerifyApplication(tt.skillID, tt.limit)(echoHandler())
			req := httptest.NewRequest(http.MethodPost, "/api/skill", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantStatus == http.StatusOK && rr.Body.String() != tt.body {
				t.Errorf("Expected body to reach next handler unchanged, got %q", rr.Body.String())
			}
		})
	}
}
