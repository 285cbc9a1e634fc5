package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
)

type memoryRecord struct {
	data     []byte
	lastSeen time.Time
}

// MemoryStore is a process-local Repository. Records are stored encoded so
// callers never share state with the store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	writes  int
	now     func() time.Time
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryRecord), now: time.Now}
}

// GetAttributes returns a decoded copy of the stored attributes.
func (m *MemoryStore) GetAttributes(_ context.Context, userID string) (*domain.PersistedAttributes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[userID]
	if !ok {
		return nil, nil
	}
	var attrs domain.PersistedAttributes
	if err := json.Unmarshal(rec.data, &attrs); err != nil {
		return nil, fmt.Errorf("decode attributes for %s: %w", userID, err)
	}
	return &attrs, nil
}

// PutAttributes records activity and stores the attributes unless they are unchanged.
func (m *MemoryStore) PutAttributes(_ context.Context, userID string, attrs *domain.PersistedAttributes) error {
	if attrs == nil {
		return fmt.Errorf("put attributes for %s: nil attributes", userID)
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if rec, ok := m.records[userID]; ok && string(rec.data) == string(data) {
		rec.lastSeen = now
		m.records[userID] = rec
		return nil
	}
	m.records[userID] = memoryRecord{data: data, lastSeen: now}
	m.writes++
	return nil
}

// DeleteInactive removes records not seen since the cutoff.
func (m *MemoryStore) DeleteInactive(_ context.Context, olderThan time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-olderThan)
	var n int64
	for id, rec := range m.records {
		if rec.lastSeen.Before(cutoff) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

// Writes returns how many times a record was actually rewritten.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
