// Package timeoff builds leave plans: it classifies every day of a year,
// places leave days to create long rest windows, segments the calendar
// into rest periods and scores the outcome.
package timeoff

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// DAY KINDS
// =============================================================================

// BaseKind is the intrinsic nature of a day. It never changes after
// classification.
type BaseKind string

const (
	KindWork    BaseKind = "WORK"
	KindWeekend BaseKind = "WEEKEND"
	KindHoliday BaseKind = "HOLIDAY"
	KindClosure BaseKind = "CLOSURE"
)

// LeaveKind is the leave placed on a day.
type LeaveKind string

const (
	LeaveNone   LeaveKind = "NONE"
	LeaveFull   LeaveKind = "FULL"
	LeaveHalfAM LeaveKind = "HALF_AM"
	LeaveHalfPM LeaveKind = "HALF_PM"
)

// Weight is the budget cost of the leave kind.
func (k LeaveKind) Weight() generic.Amount {
	switch k {
	case LeaveFull:
		return generic.Days(1)
	case LeaveHalfAM, LeaveHalfPM:
		return generic.Days(0.5)
	default:
		return generic.ZeroDays()
	}
}

func (k LeaveKind) Valid() bool {
	switch k {
	case LeaveNone, LeaveFull, LeaveHalfAM, LeaveHalfPM:
		return true
	}
	return false
}

// ParseLeaveKind accepts "full", "half_am", "am", "half_pm", "pm".
func ParseLeaveKind(s string) (LeaveKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "FULL":
		return LeaveFull, nil
	case "HALF_AM", "AM":
		return LeaveHalfAM, nil
	case "HALF_PM", "PM":
		return LeaveHalfPM, nil
	case "NONE":
		return LeaveNone, nil
	}
	return "", fmt.Errorf("unknown leave kind %q", s)
}

// =============================================================================
// DAY RECORD
// =============================================================================

// DayRecord is one date of the planned year.
//
// INVARIANTS:
//   - Leave != LeaveNone only on WORK days, or when Imposed
//   - Locked implies Leave == LeaveNone
type DayRecord struct {
	Date        generic.TimePoint
	BaseKind    BaseKind
	Leave       LeaveKind
	Locked      bool   // The optimizer may not place leave here
	Imposed     bool   // Leave fixed before optimization (closure or booked)
	HolidayName string // Set whenever the date is a public or custom holiday
	Reason      string // Why leave sits on this day
}

// IsRest reports whether the day counts toward a rest window.
func (d DayRecord) IsRest() bool {
	return d.BaseKind != KindWork || d.Leave != LeaveNone
}

// IsCandidate reports whether the optimizer may place leave on the day.
func (d DayRecord) IsCandidate() bool {
	return d.BaseKind == KindWork && d.Leave == LeaveNone && !d.Locked
}

// Label is the short human label used by exports.
func (d DayRecord) Label() string {
	switch {
	case d.Imposed && d.BaseKind == KindClosure:
		return "Imposed leave (closure)"
	case d.Imposed:
		return "Booked leave"
	case d.Leave != LeaveNone:
		return "Optimized leave"
	case d.BaseKind == KindHoliday:
		return "Public holiday"
	case d.BaseKind == KindClosure:
		return "Company closure"
	case d.BaseKind == KindWeekend:
		return "Weekend"
	case d.Locked:
		return "Blackout"
	default:
		return "Work day"
	}
}

// =============================================================================
// REST PERIOD
// =============================================================================

// RestPeriod is a maximal run of consecutive rest days.
type RestPeriod struct {
	Start generic.TimePoint
	End   generic.TimePoint
	Days  int
}

func (p RestPeriod) Period() generic.Period {
	return generic.Period{Start: p.Start, End: p.End}
}

func (p RestPeriod) String() string {
	return fmt.Sprintf("%s..%s (%d days)", p.Start, p.End, p.Days)
}

// Qualifying keeps the periods of at least minRest days.
func Qualifying(periods []RestPeriod, minRest int) []RestPeriod {
	var out []RestPeriod
	for _, p := range periods {
		if p.Days >= minRest {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// RESULT
// =============================================================================

// MonthEfficiency is the rest obtained per leave day spent in one month.
type MonthEfficiency struct {
	Month      time.Month
	LeaveDays  generic.Amount
	RestDays   int // Rest days of that month inside periods holding leave
	Efficiency float64
}

// Result is the immutable outcome of one optimization run.
type Result struct {
	Year        int
	CountryCode string
	Subdivision string
	LeaveBudget generic.Amount
	MinRest     int

	Days              []DayRecord
	RestPeriods       []RestPeriod
	TotalRestDays     int
	UsedLeaveDays     generic.Amount
	UnusedLeaveDays   generic.Amount
	Score             float64
	BestMonth         *MonthEfficiency
	EfficiencyRanking []MonthEfficiency
	RestDaysByMonth   [12]int
}

// LeaveDays returns the days carrying leave, in date order.
func (r *Result) LeaveDays() []DayRecord {
	var out []DayRecord
	for _, d := range r.Days {
		if d.Leave != LeaveNone {
			out = append(out, d)
		}
	}
	return out
}

// QualifyingPeriods returns the rest periods of at least MinRest days.
func (r *Result) QualifyingPeriods() []RestPeriod {
	return Qualifying(r.RestPeriods, r.MinRest)
}

// Day returns the record of a date, if it belongs to the planned year.
func (r *Result) Day(d generic.TimePoint) (DayRecord, bool) {
	if d.Year() != r.Year {
		return DayRecord{}, false
	}
	idx := d.YearDay() - 1
	if idx < 0 || idx >= len(r.Days) {
		return DayRecord{}, false
	}
	return r.Days[idx], true
}

// =============================================================================
// BOOKED LEAVE
// =============================================================================

// BookedLeave is leave the employee already holds before optimization.
type BookedLeave struct {
	Date generic.TimePoint
	Kind LeaveKind
}

