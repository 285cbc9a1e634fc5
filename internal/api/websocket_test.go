package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/homework-planner/internal/skill"
)

func dialSkill(t *testing.T, skillID string) (*websocket.Conn, *SessionManager, *fakeDispatcher, context.Context) {
	t.Helper()
	d := &fakeDispatcher{}
	sm := NewSessionManager()
	srv := httptest.NewServer(NewSocketHandler(d, sm, skillID, nil, 0))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn, sm, d, ctx
}

func roundTrip(t *testing.T, ctx context.Context, conn *websocket.Conn, body string) map[string]json.RawMessage {
	t.Helper()
	if err := conn.Write(ctx, websocket.MessageText, []byte(body)); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Failed to decode reply %s: %v", data, err)
	}
	return out
}

func TestSocketDispatchesEnvelopes(t *testing.T) {
	conn, sm, d, ctx := dialSkill(t, "")

	out := roundTrip(t, ctx, conn, helpEnvelope)

	var resp skill.Response
	if err := json.Unmarshal(out["response"], &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got := resp.Speech(); got != "heard AMAZON.HelpIntent" {
		t.Errorf("Expected echoed speech, got %q", got)
	}
	if len(d.got) != 1 {
		t.Fatalf("Expected 1 dispatch, got %d", len(d.got))
	}
	if sm.GetActive("u1", "s1") == nil {
		t.Error("Expected socket to be registered for the session")
	}
	if sm.Count() != 1 {
		t.Errorf("Expected 1 active socket, got %d", sm.Count())
	}
}

func TestSocketRejectsBadMessages(t *testing.T) {
	conn, _, d, ctx := dialSkill(t, "amzn1.ask.skill.planner")

	out := roundTrip(t, ctx, conn, `not json`)
	if _, ok := out["error"]; !ok {
		t.Errorf("Expected error reply, got %v", out)
	}

	out = roundTrip(t, ctx, conn, helpEnvelope)
	var msg string
	_ = json.Unmarshal(out["error"], &msg)
	if msg != "application id mismatch" {
		t.Errorf("Expected application mismatch, got %q", msg)
	}
	if len(d.got) != 0 {
		t.Errorf("Expected no dispatch, got %d", len(d.got))
	}
}

func TestSocketClosesAfterSessionEnded(t *testing.T) {
	conn, sm, _, ctx := dialSkill(t, "")

	roundTrip(t, ctx, conn, `{"session":{"sessionId":"s1","user":{"userId":"u1"}},"request":{"type":"SessionEndedRequest","requestId":"r2"}}`)

	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Fatalf("Expected normal closure, got %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for sm.Count() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if sm.Count() != 0 {
		t.Errorf("Expected socket to be unregistered, got %d active", sm.Count())
	}
}
