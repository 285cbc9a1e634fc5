package dates

import (
	"testing"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, 16 October 2026.
var refNow = time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)

func TestParseFormats(t *testing.T) {
	p := NewParser()
	tests := []struct {
		raw  string
		want domain.CalendarDate
	}{
		{"2026-11-02", domain.CalendarDate{Year: 2026, Month: 11, Day: 2, DayOfWeek: 1}},
		{"XXXX-12-25", domain.CalendarDate{Year: 2026, Month: 12, Day: 25, DayOfWeek: 5}},
		{"5/3", domain.CalendarDate{Year: 2026, Month: 5, Day: 3, DayOfWeek: 0}},
		{"5/3/27", domain.CalendarDate{Year: 2027, Month: 5, Day: 3, DayOfWeek: 1}},
		{"2026-W43", domain.CalendarDate{Year: 2026, Month: 10, Day: 19, DayOfWeek: 1}},
		{"2026-W43-WE", domain.CalendarDate{Year: 2026, Month: 10, Day: 24, DayOfWeek: 6}},
		{"2026-11", domain.CalendarDate{Year: 2026, Month: 11, Day: 1, DayOfWeek: 0}},
		{"2027", domain.CalendarDate{Year: 2027, Month: 1, Day: 1, DayOfWeek: 5}},
		{"2026-SP", domain.CalendarDate{Year: 2026, Month: 3, Day: 20, DayOfWeek: 5}},
		{"PRESENT_REF", domain.CalendarDate{Year: 2026, Month: 10, Day: 16, DayOfWeek: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := p.Parse(tt.raw, refNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsInvalidDates(t *testing.T) {
	p := NewParser()
	for _, raw := range []string{"", "2026-02-30", "13/1", "banana"} {
		_, err := p.Parse(raw, refNow)
		assert.ErrorIs(t, err, ErrUnparseableDate, raw)
	}
}

func TestParseNaturalLanguage(t *testing.T) {
	p := NewParser()

	got, err := p.Parse("tomorrow", refNow)
	require.NoError(t, err)
	assert.Equal(t, 17, got.Day)
	assert.Equal(t, 10, got.Month)
}
