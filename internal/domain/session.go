package domain

import "maps"

// PendingIntent is an intent request interrupted by mandatory setup.
type PendingIntent struct {
	Name  string            `json:"name"`
	Slots map[string]string `json:"slots,omitempty"`
}

// SessionState is the in-progress conversation state for one session.
type SessionState struct {
	Profile       UserProfile       `json:"profile"`
	Preferences   Preferences       `json:"preferences"`
	Courses       map[string]Course `json:"courses"`
	Assignments   []Assignment      `json:"assignments"`
	IsNew         bool              `json:"isNew"`
	PendingIntent *PendingIntent    `json:"pendingIntent,omitempty"`
}

// NewSessionState returns blank state for a user with no stored data.
func NewSessionState() *SessionState {
	return FromAttributes(NewPersistedAttributes())
}

// FromAttributes builds session state from persisted attributes.
// IsNew is derived from whether the profile has a name.
func FromAttributes(attrs *PersistedAttributes) *SessionState {
	st := &SessionState{
		Profile:     attrs.Profile,
		Preferences: attrs.Preferences,
		Courses:     maps.Clone(attrs.Courses),
		Assignments: append([]Assignment(nil), attrs.Assignments...),
	}
	st.normalize()
	st.IsNew = !st.Profile.HasName()
	return st
}

// Attributes returns a deep copy of the durable portion of the state.
func (s *SessionState) Attributes() *PersistedAttributes {
	attrs := &PersistedAttributes{
		Profile: s.Profile,
		Preferences: Preferences{
			Schedule: append([]string{}, s.Preferences.Schedule...),
		},
		Courses:     make(map[string]Course, len(s.Courses)),
		Assignments: append([]Assignment{}, s.Assignments...),
	}
	for name, c := range s.Courses {
		c.Meetings = append([]string(nil), c.Meetings...)
		attrs.Courses[name] = c
	}
	return attrs
}

// HasCourse returns true if a course with the given name exists.
func (s *SessionState) HasCourse(name string) bool {
	_, ok := s.Courses[name]
	return ok
}

// AddCourse registers a course. It returns false if the course already existed.
func (s *SessionState) AddCourse(name string) bool {
	if name == "" || s.HasCourse(name) {
		return false
	}
	s.Courses[name] = Course{}
	return true
}

// AddAssignment appends an assignment, registering its course if needed.
func (s *SessionState) AddAssignment(a Assignment) {
	s.AddCourse(a.Course)
	s.Assignments = append(s.Assignments, a)
}

// CompleteSetup records the user's name and leaves the new-user state.
func (s *SessionState) CompleteSetup(name string) {
	s.Profile.Name = name
	s.IsNew = !s.Profile.HasName()
}

// TakePendingIntent returns and clears the pending intent.
func (s *SessionState) TakePendingIntent() *PendingIntent {
	p := s.PendingIntent
	s.PendingIntent = nil
	return p
}

func (s *SessionState) normalize() {
	if s.Courses == nil {
		s.Courses = make(map[string]Course)
	}
	if s.Assignments == nil {
		s.Assignments = []Assignment{}
	}
	if s.Preferences.Schedule == nil {
		s.Preferences.Schedule = []string{}
	}
}

// Normalize fills nil collections after decoding from the wire.
func (s *SessionState) Normalize() {
	s.normalize()
	s.IsNew = !s.Profile.HasName()
}
