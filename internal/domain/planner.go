package domain

import (
	"fmt"
	"time"
)

// DefaultPriority is assigned to every newly created assignment.
const DefaultPriority = 1

// Course is a class the user is enrolled in. Entries are keyed by name.
type Course struct {
	// Meetings is reserved for meeting-time collection.
	Meetings []string `json:"meetings,omitempty"`
}

// CalendarDate is a resolved due date. Month is 1-based; DayOfWeek is 0 for Sunday.
type CalendarDate struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	Day       int `json:"day"`
	DayOfWeek int `json:"dayOfWeek"`
}

// DateOf converts a time into a CalendarDate in the time's own location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{
		Year:      t.Year(),
		Month:     int(t.Month()),
		Day:       t.Day(),
		DayOfWeek: int(t.Weekday()),
	}
}

// MonthDay renders the date as "M/D".
func (d CalendarDate) MonthDay() string {
	return fmt.Sprintf("%d/%d", d.Month, d.Day)
}

// IsZero reports whether the date was never set.
func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// TimeOfDay is a spoken time slot value such as "14:30" or "EV".
type TimeOfDay string

// Assignment is a homework item due for a course.
type Assignment struct {
	Course    string       `json:"course"`
	Name      string       `json:"name"`
	DueDate   CalendarDate `json:"dueDate"`
	DueTime   TimeOfDay    `json:"dueTime,omitempty"`
	Priority  int          `json:"priority"`
	Completed bool         `json:"completed"`
}

// NewAssignment builds an open assignment with the default priority.
func NewAssignment(course, name string, due CalendarDate, dueTime TimeOfDay) Assignment {
	return Assignment{
		Course:   course,
		Name:     name,
		DueDate:  due,
		DueTime:  dueTime,
		Priority: DefaultPriority,
	}
}

// HasDueTime returns true if a time of day was given.
func (a Assignment) HasDueTime() bool {
	return a.DueTime != ""
}
