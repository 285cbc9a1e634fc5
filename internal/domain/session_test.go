package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionStateIsBlankAndNew(t *testing.T) {
	st := NewSessionState()

	assert.True(t, st.IsNew)
	assert.Empty(t, st.Profile.Name)
	assert.NotNil(t, st.Courses)
	assert.NotNil(t, st.Assignments)
	assert.Nil(t, st.PendingIntent)
}

func TestFromAttributesDerivesIsNew(t *testing.T) {
	attrs := NewPersistedAttributes()
	assert.True(t, FromAttributes(attrs).IsNew)

	attrs.Profile.Name = "Alex"
	assert.False(t, FromAttributes(attrs).IsNew)
}

func TestAttributesIsDeepCopy(t *testing.T) {
	st := NewSessionState()
	st.AddAssignment(NewAssignment("Math", "Essay", CalendarDate{Year: 2026, Month: 5, Day: 3}, ""))

	attrs := st.Attributes()
	st.AddCourse("Art")
	st.Assignments[0].Name = "changed"

	assert.NotContains(t, attrs.Courses, "Art")
	assert.Equal(t, "Essay", attrs.Assignments[0].Name)
}

func TestAddAssignmentRegistersCourse(t *testing.T) {
	st := NewSessionState()
	first := NewAssignment("Biology", "Lab", CalendarDate{Year: 2026, Month: 10, Day: 20}, "14:30")
	second := NewAssignment("Biology", "Lab", CalendarDate{Year: 2026, Month: 10, Day: 20}, "")

	st.AddAssignment(first)
	st.AddAssignment(second)

	assert.True(t, st.HasCourse("Biology"))
	assert.Len(t, st.Courses, 1)
	require.Len(t, st.Assignments, 2, "assignments are not deduplicated")
	assert.Equal(t, first, st.Assignments[0])
	assert.Equal(t, DefaultPriority, first.Priority)
	assert.False(t, first.Completed)
	assert.True(t, first.HasDueTime())
	assert.False(t, second.HasDueTime())
}

func TestAddCourseRejectsDuplicatesAndBlank(t *testing.T) {
	st := NewSessionState()

	assert.True(t, st.AddCourse("Math"))
	assert.False(t, st.AddCourse("Math"))
	assert.False(t, st.AddCourse(""))
}

func TestCompleteSetupAndPendingIntent(t *testing.T) {
	st := NewSessionState()
	st.PendingIntent = &PendingIntent{Name: "AddHomeworkIntent", Slots: map[string]string{"course": "Math"}}

	st.CompleteSetup("Alex")
	assert.False(t, st.IsNew)

	p := st.TakePendingIntent()
	require.NotNil(t, p)
	assert.Equal(t, "AddHomeworkIntent", p.Name)
	assert.Nil(t, st.TakePendingIntent())
}

func TestNormalizeAfterDecode(t *testing.T) {
	var st SessionState
	require.NoError(t, json.Unmarshal([]byte(`{"profile":{"name":"Alex"},"isNew":true}`), &st))

	st.Normalize()

	assert.False(t, st.IsNew, "isNew follows the profile name")
	assert.NotNil(t, st.Courses)
	assert.NotNil(t, st.Assignments)
}

func TestCalendarDate(t *testing.T) {
	d := DateOf(time.Date(2026, time.October, 16, 23, 0, 0, 0, time.UTC))

	assert.Equal(t, CalendarDate{Year: 2026, Month: 10, Day: 16, DayOfWeek: 5}, d)
	assert.Equal(t, "10/16", d.MonthDay())
	assert.False(t, d.IsZero())
	assert.True(t, CalendarDate{}.IsZero())
}
