package generic

import (
	"fmt"
	"strings"
)

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is an inclusive range of days. Closures, blackouts and rest windows
// are all expressed as periods.
//
// Examples:
//   - Calendar year 2025: Jan 1 - Dec 31
//   - Summer closure: Aug 4 - Aug 15
//   - A single day: Start == End
type Period struct {
	Start TimePoint
	End   TimePoint
}

func YearPeriod(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Validate returns ErrInvalidPeriod when End is before Start.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: missing bound in %s", ErrInvalidPeriod, p)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Len returns the number of days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Days returns all days in the period as a slice of TimePoints.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// Clip returns the intersection with other; ok is false when they are disjoint.
func (p Period) Clip(other Period) (Period, bool) {
	start, end := p.Start, p.End
	if other.Start.After(start) {
		start = other.Start
	}
	if other.End.Before(end) {
		end = other.End
	}
	if end.Before(start) {
		return Period{}, false
	}
	return Period{Start: start, End: end}, true
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// ParsePeriod accepts "START:END", "START..END" or a single date.
func ParsePeriod(s string) (Period, error) {
	sep := ""
	switch {
	case strings.Contains(s, ".."):
		sep = ".."
	case strings.Contains(s, ":"):
		sep = ":"
	}
	if sep == "" {
		d, err := ParseDate(s)
		if err != nil {
			return Period{}, err
		}
		return Period{Start: d, End: d}, nil
	}
	parts := strings.SplitN(s, sep, 2)
	start, err := ParseDate(parts[0])
	if err != nil {
		return Period{}, err
	}
	end, err := ParseDate(parts[1])
	if err != nil {
		return Period{}, err
	}
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}
