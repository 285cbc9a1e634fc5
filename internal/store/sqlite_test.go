package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleAttributes() *domain.PersistedAttributes {
	attrs := domain.NewPersistedAttributes()
	attrs.Profile = domain.UserProfile{Name: "Alex", Timezone: "America/Chicago"}
	attrs.Courses["Math"] = domain.Course{}
	attrs.Courses["Biology"] = domain.Course{}
	attrs.Assignments = []domain.Assignment{
		domain.NewAssignment("Math", "Essay", domain.CalendarDate{Year: 2026, Month: 5, Day: 3, DayOfWeek: 0}, ""),
		domain.NewAssignment("Biology", "Lab report", domain.CalendarDate{Year: 2026, Month: 5, Day: 1, DayOfWeek: 5}, "14:30"),
	}
	return attrs
}

func TestSQLiteGetMissingUser(t *testing.T) {
	s := newTestSQLite(t)

	attrs, err := s.GetAttributes(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, attrs)
}

func TestSQLiteRoundTripPreservesOrder(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	want := sampleAttributes()

	require.NoError(t, s.PutAttributes(ctx, "user-1", want))

	got, err := s.GetAttributes(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Profile, got.Profile)
	assert.Equal(t, want.Courses, got.Courses)
	assert.Equal(t, want.Assignments, got.Assignments)
}

func TestSQLitePutUnchangedIsNoop(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	attrs := sampleAttributes()

	s.now = func() time.Time { return time.Unix(1000, 0) }
	require.NoError(t, s.PutAttributes(ctx, "user-1", attrs))

	s.now = func() time.Time { return time.Unix(2000, 0) }
	require.NoError(t, s.PutAttributes(ctx, "user-1", attrs))

	var updatedAt int64
	require.NoError(t, s.db.QueryRow(`SELECT updated_at FROM user_attributes WHERE user_id = ?`, "user-1").Scan(&updatedAt))
	assert.Equal(t, int64(1000), updatedAt)

	attrs.Assignments[0].Completed = true
	require.NoError(t, s.PutAttributes(ctx, "user-1", attrs))
	require.NoError(t, s.db.QueryRow(`SELECT updated_at FROM user_attributes WHERE user_id = ?`, "user-1").Scan(&updatedAt))
	assert.Equal(t, int64(2000), updatedAt)
}

func TestSQLiteDeleteInactive(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now()

	s.now = func() time.Time { return base.Add(-48 * time.Hour) }
	require.NoError(t, s.PutAttributes(ctx, "stale", sampleAttributes()))
	s.now = func() time.Time { return base }
	require.NoError(t, s.PutAttributes(ctx, "fresh", sampleAttributes()))

	deleted, err := s.DeleteInactive(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	stale, err := s.GetAttributes(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, stale)
	fresh, err := s.GetAttributes(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestSQLiteUnchangedPutKeepsUserActive(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()
	base := time.Now()
	attrs := sampleAttributes()

	s.now = func() time.Time { return base.Add(-48 * time.Hour) }
	require.NoError(t, s.PutAttributes(ctx, "user-1", attrs))
	s.now = func() time.Time { return base }
	require.NoError(t, s.PutAttributes(ctx, "user-1", attrs))

	deleted, err := s.DeleteInactive(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	got, err := s.GetAttributes(ctx, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSQLiteMigratesLegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	legacy, err := NewSQLite(path)
	require.NoError(t, err)
	_, err = legacy.db.Exec(`DROP TABLE user_attributes`)
	require.NoError(t, err)
	_, err = legacy.db.Exec(`CREATE TABLE user_attributes (
		user_id TEXT PRIMARY KEY,
		attributes_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	_, err = legacy.db.Exec(`INSERT INTO user_attributes VALUES ('user-1', '{}', 500, 700)`)
	require.NoError(t, err)
	require.NoError(t, legacy.Close())

	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var lastSeen int64
	require.NoError(t, s.db.QueryRow(`SELECT last_seen_at FROM user_attributes WHERE user_id = ?`, "user-1").Scan(&lastSeen))
	assert.Equal(t, int64(700), lastSeen)
}

func TestMemoryStoreUnchangedPutKeepsUserActive(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Now()
	attrs := sampleAttributes()

	m.now = func() time.Time { return base.Add(-48 * time.Hour) }
	require.NoError(t, m.PutAttributes(ctx, "user-1", attrs))
	m.now = func() time.Time { return base }
	require.NoError(t, m.PutAttributes(ctx, "user-1", attrs))
	assert.Equal(t, 1, m.Writes())

	deleted, err := m.DeleteInactive(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)

	got, err := m.GetAttributes(ctx, "user-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestMemoryStoreSkipsUnchangedWrites(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	attrs := sampleAttributes()

	require.NoError(t, m.PutAttributes(ctx, "user-1", attrs))
	require.NoError(t, m.PutAttributes(ctx, "user-1", attrs))
	assert.Equal(t, 1, m.Writes())

	got, err := m.GetAttributes(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, attrs.Assignments, got.Assignments)

	got.Assignments = nil
	again, err := m.GetAttributes(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, again.Assignments, 2)
}

func TestPurgeInactiveReturnsCount(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.PutAttributes(ctx, "user-1", sampleAttributes()))

	assert.Equal(t, int64(0), purgeInactive(ctx, m, time.Hour))
	assert.Equal(t, int64(1), purgeInactive(ctx, m, -time.Hour))
}
