// Package domain contains core domain types for the homework planner.
package domain

// UserProfile holds the identity captured during setup.
type UserProfile struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
}

// HasName returns true once setup has recorded a name.
func (p UserProfile) HasName() bool {
	return p.Name != ""
}

// Preferences holds per-user planner preferences.
type Preferences struct {
	Schedule []string `json:"schedule"`
}

// PersistedAttributes is the durable shape of a user's planner data.
type PersistedAttributes struct {
	Profile     UserProfile       `json:"profile"`
	Preferences Preferences       `json:"preferences"`
	Courses     map[string]Course `json:"courses"`
	Assignments []Assignment      `json:"assignments"`
}

// NewPersistedAttributes returns blank attributes for a first-time user.
func NewPersistedAttributes() *PersistedAttributes {
	return &PersistedAttributes{
		Preferences: Preferences{Schedule: []string{}},
		Courses:     make(map[string]Course),
		Assignments: []Assignment{},
	}
}
