package timeoff

import (
	"fmt"

	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// CALENDAR CLASSIFIER
// =============================================================================

// Classify builds one DayRecord per date of req.Year.
//
// Base kinds follow the precedence CLOSURE > HOLIDAY > WEEKEND > WORK.
// Non-working days are locked. With ImposedLeave, closure days that would
// otherwise be worked carry FULL imposed leave; booked leave is imposed the
// same way. Blackout ranges lock the WORK days they cover.
//
// hols is read, never retained; the same set may be shared by concurrent
// callers.
func Classify(req Request, hols generic.HolidaySet) ([]DayRecord, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	year := generic.YearPeriod(req.Year)
	weekend := req.Weekend()
	closed := datesIn(req.Closures, year)
	blackout := datesIn(req.Blackouts, year)
	booked := make(map[generic.TimePoint]LeaveKind, len(req.Booked))
	for _, b := range req.Booked {
		booked[b.Date] = b.Kind
	}

	days := make([]DayRecord, 0, year.Len())
	for d := year.Start; d.BeforeOrEqual(year.End); d = d.AddDays(1) {
		rec := DayRecord{Date: d, Leave: LeaveNone}

		natural := KindWork
		if name, ok := hols.Name(d); ok {
			rec.HolidayName = name
			natural = KindHoliday
		} else if weekend.Contains(d.Weekday()) {
			natural = KindWeekend
		}

		switch {
		case closed[d]:
			rec.BaseKind = KindClosure
			if req.ImposedLeave && natural == KindWork {
				rec.Leave = LeaveFull
				rec.Imposed = true
				rec.Reason = "imposed by company closure"
			} else {
				rec.Locked = true
			}
		case natural != KindWork:
			rec.BaseKind = natural
			rec.Locked = true
		default:
			rec.BaseKind = KindWork
		}

		if kind, ok := booked[d]; ok {
			if rec.BaseKind != KindWork {
				return nil, &generic.ConfigError{
					Field:   "booked",
					Message: fmt.Sprintf("%s is a %s day, leave can only be booked on work days", d, rec.BaseKind),
				}
			}
			rec.Leave = kind
			rec.Imposed = true
			rec.Reason = "booked before planning"
		}

		if blackout[d] && rec.BaseKind == KindWork && rec.Leave == LeaveNone {
			rec.Locked = true
		}

		days = append(days, rec)
	}
	return days, nil
}

// datesIn flattens periods into a date set, clipped to the year.
func datesIn(periods []generic.Period, year generic.Period) map[generic.TimePoint]bool {
	set := make(map[generic.TimePoint]bool)
	for _, p := range periods {
		clipped, ok := p.Clip(year)
		if !ok {
			continue
		}
		for _, d := range clipped.Days() {
			set[d] = true
		}
	}
	return set
}
