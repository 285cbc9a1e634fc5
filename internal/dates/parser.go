// Package dates converts spoken date slot values into calendar dates.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/homework-planner/internal/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrUnparseableDate is returned when a slot value is not a recognizable date.
var ErrUnparseableDate = errors.New("unparseable date")

var (
	isoDate     = regexp.MustCompile(`^(\d{4}|XXXX)-(\d{2})-(\d{2})$`)
	isoWeek     = regexp.MustCompile(`^(\d{4})-W(\d{1,2})(-WE)?$`)
	isoMonth    = regexp.MustCompile(`^(\d{4})-(\d{2})$`)
	isoYear     = regexp.MustCompile(`^(\d{4})$`)
	decade      = regexp.MustCompile(`^(\d{3})X$`)
	season      = regexp.MustCompile(`^(\d{4})-(WI|SP|SU|FA)$`)
	monthDay    = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?$`)
	seasonStart = map[string][2]int{
		"WI": {12, 21},
		"SP": {3, 20},
		"SU": {6, 21},
		"FA": {9, 22},
	}
)

// Parser resolves date slot values. The platform's formats (ISO dates,
// weeks, weekends, months, seasons) are handled directly; anything else is
// tried as a natural-language phrase such as "next friday".
type Parser struct {
	natural *when.Parser
}

// NewParser returns a parser with English natural-language rules.
func NewParser() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{natural: w}
}

// Parse resolves raw relative to now. The result is the start date of the
// range the value denotes.
func (p *Parser) Parse(raw string, now time.Time) (domain.CalendarDate, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return domain.CalendarDate{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}
	if strings.EqualFold(value, "PRESENT_REF") {
		return domain.DateOf(now), nil
	}

	if t, matched, ok := parseFormatted(value, now); matched {
		if !ok {
			return domain.CalendarDate{}, fmt.Errorf("%w: %q is not a calendar date", ErrUnparseableDate, raw)
		}
		return domain.DateOf(t), nil
	}

	if p.natural != nil {
		r, err := p.natural.Parse(value, now)
		if err == nil && r != nil {
			return domain.DateOf(r.Time), nil
		}
	}
	return domain.CalendarDate{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

// parseFormatted reports whether value matched a platform format and, if so,
// whether it named a real date.
func parseFormatted(value string, now time.Time) (t time.Time, matched, ok bool) {
	loc := now.Location()

	if m := isoDate.FindStringSubmatch(value); m != nil {
		year := now.Year()
		if m[1] != "XXXX" {
			year = atoi(m[1])
		}
		return matchedDate(year, atoi(m[2]), atoi(m[3]), loc)
	}
	if m := isoWeek.FindStringSubmatch(value); m != nil {
		monday := isoWeekStart(atoi(m[1]), atoi(m[2]), loc)
		if m[3] != "" {
			return monday.AddDate(0, 0, 5), true, true
		}
		return monday, true, true
	}
	if m := season.FindStringSubmatch(value); m != nil {
		start := seasonStart[m[2]]
		return matchedDate(atoi(m[1]), start[0], start[1], loc)
	}
	if m := isoMonth.FindStringSubmatch(value); m != nil {
		return matchedDate(atoi(m[1]), atoi(m[2]), 1, loc)
	}
	if m := isoYear.FindStringSubmatch(value); m != nil {
		return matchedDate(atoi(m[1]), 1, 1, loc)
	}
	if m := decade.FindStringSubmatch(value); m != nil {
		return matchedDate(atoi(m[1])*10, 1, 1, loc)
	}
	if m := monthDay.FindStringSubmatch(value); m != nil {
		year := now.Year()
		if m[3] != "" {
			year = atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}
		return matchedDate(year, atoi(m[1]), atoi(m[2]), loc)
	}
	return time.Time{}, false, false
}

// isoWeekStart returns the Monday of ISO week w in year y.
func isoWeekStart(y, w int, loc *time.Location) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(y, time.January, 4, 0, 0, 0, 0, loc)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w-1)*7)
}

func matchedDate(y, m, d int, loc *time.Location) (time.Time, bool, bool) {
	t, ok := validDate(y, m, d, loc)
	return t, true, ok
}

func validDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Month() != time.Month(m) {
		return time.Time{}, false
	}
	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
