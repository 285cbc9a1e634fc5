package api

import (
	"strconv"
	"sync"
	"testing"

	"github.com/coder/websocket"
)

func TestSessionManager_Register(t *testing.T) {
	sm := NewSessionManager()
	conn := &websocket.Conn{}

	sm.Register("user123", "session-1", conn)

	if active := sm.GetActive("user123", "session-1"); active != conn {
		t.Errorf("Expected connection %v, got %v", conn, active)
	}
	if sm.Count() != 1 {
		t.Errorf("Expected 1 active session, got %d", sm.Count())
	}
}

func TestSessionManager_Unregister(t *testing.T) {
	sm := NewSessionManager()
	conn := &websocket.Conn{}

	sm.Register("user123", "session-1", conn)
	sm.Unregister("user123", "session-1", conn)

	if active := sm.GetActive("user123", "session-1"); active != nil {
		t.Errorf("Expected nil connection, got %v", active)
	}
	if sm.Count() != 0 {
		t.Errorf("Expected no active sessions, got %d", sm.Count())
	}
}

func TestSessionManager_UnregisterOtherSessionKeepsActive(t *testing.T) {
	sm := NewSessionManager()
	conn1 := &websocket.Conn{}
	conn2 := &websocket.Conn{}

	sm.Register("user123", "session-1", conn1)
	sm.Register("user123", "session-2", conn2)
	sm.Unregister("user123", "session-1", conn1)
	// Unregistering with a connection that is not bound is ignored.
	sm.Unregister("user123", "session-2", conn1)

	if active := sm.GetActive("user123", "session-2"); active != conn2 {
		t.Errorf("Expected connection %v, got %v", conn2, active)
	}
}

func TestSessionManager_ConcurrentAccess(t *testing.T) {
	sm := NewSessionManager()
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sm.Register("concurrentUser", "session-"+strconv.Itoa(i), &websocket.Conn{})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			sm.GetActive("concurrentUser", "session-"+strconv.Itoa(i))
			sm.Count()
		}
	}()

	wg.Wait()
	if sm.Count() != 1000 {
		t.Errorf("Expected 1000 sessions, got %d", sm.Count())
	}
}
