package generic

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - A calendar day (the planner never looks below day granularity)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

const dateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

func Today() TimePoint {
	return FromTime(time.Now())
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return TimePoint{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return FromTime(t), nil
}

func MustParseDate(s string) TimePoint {
	tp, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) YearDay() int          { return tp.Time.YearDay() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }
func (tp TimePoint) String() string        { return tp.Time.Format(dateLayout) }

// MarshalText lets TimePoint travel as "YYYY-MM-DD" in JSON and YAML.
func (tp TimePoint) MarshalText() ([]byte, error) {
	return []byte(tp.String()), nil
}

func (tp *TimePoint) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*tp = parsed
	return nil
}

// =============================================================================
// WEEKEND - Which weekdays are non-working by default
// =============================================================================

// Weekend is a bit set of time.Weekday values.
type Weekend uint8

// DefaultWeekend is Saturday plus Sunday.
const DefaultWeekend = Weekend(1<<time.Saturday | 1<<time.Sunday)

func NewWeekend(days ...time.Weekday) Weekend {
	var w Weekend
	for _, d := range days {
		w |= 1 << d
	}
	return w
}

func (w Weekend) Contains(d time.Weekday) bool { return w&(1<<d) != 0 }

func (w Weekend) Days() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseWeekday accepts English day names ("sat", "Saturday").
func ParseWeekday(s string) (time.Weekday, error) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
	return d, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday is a named non-working date. Custom holidays persisted by the
// stores carry an ID and a region; built-in rule holidays leave both empty.
type Holiday struct {
	ID          HolidayID
	CountryCode string
	Subdivision string    // Empty string = applies to the whole country
	Date        TimePoint // The holiday date
	Name        string    // e.g., "Fête nationale", "Christmas Day"
	Recurring   bool      // true = same month/day every year
}

// OccursIn returns the holiday date for the given year. Recurring holidays
// are moved to that year; one-off holidays only occur in their own year.
func (h Holiday) OccursIn(year int) (TimePoint, bool) {
	if h.Recurring {
		d := NewTimePoint(year, h.Date.Month(), h.Date.Day())
		// Feb 29 on a non-leap year normalizes into March; skip it.
		if d.Month() != h.Date.Month() {
			return TimePoint{}, false
		}
		return d, true
	}
	if h.Date.Year() != year {
		return TimePoint{}, false
	}
	return h.Date, true
}

// HolidaySet is an immutable date to name lookup. Build it once per
// classification and share it freely between goroutines.
type HolidaySet struct {
	names map[TimePoint]string
}

// NewHolidaySet builds a set. When two entries share a date the first name wins.
func NewHolidaySet(holidays ...Holiday) HolidaySet {
	names := make(map[TimePoint]string, len(holidays))
	for _, h := range holidays {
		if _, exists := names[h.Date]; !exists {
			names[h.Date] = h.Name
		}
	}
	return HolidaySet{names: names}
}

func (s HolidaySet) Contains(d TimePoint) bool {
	_, ok := s.names[d]
	return ok
}

func (s HolidaySet) Name(d TimePoint) (string, bool) {
	name, ok := s.names[d]
	return name, ok
}

func (s HolidaySet) Len() int { return len(s.names) }

// Holidays returns the entries sorted by date.
func (s HolidaySet) Holidays() []Holiday {
	out := make([]Holiday, 0, len(s.names))
	for d, name := range s.names {
		out = append(out, Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Merge returns a new set holding both sets. Names from other win on conflicts.
func (s HolidaySet) Merge(other HolidaySet) HolidaySet {
	names := make(map[TimePoint]string, len(s.names)+len(other.names))
	for d, n := range s.names {
		names[d] = n
	}
	for d, n := range other.names {
		names[d] = n
	}
	return HolidaySet{names: names}
}

// InYear restricts the set to one calendar year.
func (s HolidaySet) InYear(year int) HolidaySet {
	names := make(map[TimePoint]string)
	for d, n := range s.names {
		if d.Year() == year {
			names[d] = n
		}
	}
	return HolidaySet{names: names}
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func StartOfYear(year int) TimePoint     { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }
func DaysInYear(year int) int            { return DaysBetween(StartOfYear(year), EndOfYear(year)) + 1 }
