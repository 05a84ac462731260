package timeoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
)

func dayOf(t *testing.T, cal []timeoff.DayRecord, d generic.TimePoint) timeoff.DayRecord {
	t.Helper()
	for _, rec := range cal {
		if rec.Date.Equal(d) {
			return rec
		}
	}
	t.Fatalf("date %s not in calendar", d)
	return timeoff.DayRecord{}
}

func TestClassify_OneRecordPerDay(t *testing.T) {
	// GIVEN: A regular year and a leap year
	// WHEN: Classifying both
	// THEN: 365 and 366 contiguous records starting Jan 1

	for year, want := range map[int]int{2025: 365, 2024: 366} {
		cal, err := timeoff.Classify(request(year, 0, 3), generic.HolidaySet{})
		require.NoError(t, err)
		require.Len(t, cal, want)
		assert.True(t, cal[0].Date.Equal(date(year, time.January, 1)))
		assert.True(t, cal[want-1].Date.Equal(date(year, time.December, 31)))
	}
}

func TestClassify_WeekendsAndWorkdays(t *testing.T) {
	// GIVEN: 2025 with the default weekend
	cal, err := timeoff.Classify(request(2025, 0, 3), generic.HolidaySet{})
	require.NoError(t, err)

	// THEN: Saturday and Sunday are locked weekends, Monday is a free work day
	sat := dayOf(t, cal, date(2025, time.July, 12))
	assert.Equal(t, timeoff.KindWeekend, sat.BaseKind)
	assert.True(t, sat.Locked)

	sun := dayOf(t, cal, date(2025, time.July, 13))
	assert.Equal(t, timeoff.KindWeekend, sun.BaseKind)

	mon := dayOf(t, cal, date(2025, time.July, 14))
	assert.Equal(t, timeoff.KindWork, mon.BaseKind)
	assert.False(t, mon.Locked)
	assert.Equal(t, timeoff.LeaveNone, mon.Leave)
	assert.True(t, mon.IsCandidate())
}

func TestClassify_CustomWeekend(t *testing.T) {
	// GIVEN: A Friday/Saturday weekend
	req := request(2025, 0, 3)
	req.WeekendDays = []time.Weekday{time.Friday, time.Saturday}

	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	// THEN: Friday rests, Sunday works
	assert.Equal(t, timeoff.KindWeekend, dayOf(t, cal, date(2025, time.July, 11)).BaseKind)
	assert.Equal(t, timeoff.KindWork, dayOf(t, cal, date(2025, time.July, 13)).BaseKind)
}

func TestClassify_NoWeekend(t *testing.T) {
	// GIVEN: An explicitly empty weekend
	req := request(2025, 0, 3)
	req.WeekendDays = []time.Weekday{}

	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	// THEN: Every day is a work day
	for _, d := range cal {
		require.Equal(t, timeoff.KindWork, d.BaseKind, d.Date.String())
	}
}

func TestClassify_Precedence(t *testing.T) {
	// GIVEN: A holiday on a Saturday, a holiday inside a closure, and a
	//        closure covering a weekend
	sat := date(2025, time.August, 16)
	inClosure := date(2025, time.August, 15)
	hols := generic.NewHolidaySet(
		generic.Holiday{Date: sat, Name: "Saturday Holiday"},
		generic.Holiday{Date: inClosure, Name: "Assumption Day"},
	)
	req := request(2025, 20, 3)
	req.Closures = []generic.Period{{Start: date(2025, time.August, 11), End: date(2025, time.August, 17)}}

	cal, err := timeoff.Classify(req, hols)
	require.NoError(t, err)

	// THEN: CLOSURE beats HOLIDAY and WEEKEND; holiday names are kept
	h := dayOf(t, cal, inClosure)
	assert.Equal(t, timeoff.KindClosure, h.BaseKind)
	assert.Equal(t, "Assumption Day", h.HolidayName)
	assert.True(t, h.Locked)

	assert.Equal(t, timeoff.KindClosure, dayOf(t, cal, date(2025, time.August, 17)).BaseKind)

	// AND: Outside the closure HOLIDAY beats WEEKEND
	other := date(2025, time.July, 19) // Saturday, not a holiday
	assert.Equal(t, timeoff.KindWeekend, dayOf(t, cal, other).BaseKind)
}

func TestClassify_HolidayOnWeekendStaysHoliday(t *testing.T) {
	sat := date(2025, time.November, 1) // All Saints' Day on a Saturday
	cal, err := timeoff.Classify(request(2025, 0, 3), holidaySet(sat))
	require.NoError(t, err)

	rec := dayOf(t, cal, sat)
	assert.Equal(t, timeoff.KindHoliday, rec.BaseKind)
	assert.Equal(t, "Holiday 2025-11-01", rec.HolidayName)
	assert.True(t, rec.Locked)
}

func TestClassify_ImposedClosure(t *testing.T) {
	// GIVEN: A two-week summer closure with imposed leave
	//   Aug 4 (Mon) - Aug 15 (Fri) 2025: 10 work days, 1 weekend
	req := request(2025, 12, 3)
	req.Closures = []generic.Period{{Start: date(2025, time.August, 4), End: date(2025, time.August, 15)}}
	req.ImposedLeave = true

	// WHEN: Classifying
	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	// THEN: Weekdays carry imposed FULL leave and stay unlocked
	mon := dayOf(t, cal, date(2025, time.August, 4))
	assert.Equal(t, timeoff.KindClosure, mon.BaseKind)
	assert.Equal(t, timeoff.LeaveFull, mon.Leave)
	assert.True(t, mon.Imposed)
	assert.False(t, mon.Locked)

	// AND: The weekend inside the closure costs nothing
	sat := dayOf(t, cal, date(2025, time.August, 9))
	assert.Equal(t, timeoff.KindClosure, sat.BaseKind)
	assert.Equal(t, timeoff.LeaveNone, sat.Leave)
	assert.True(t, sat.Locked)

	imposed := 0
	for _, d := range cal {
		if d.Imposed {
			imposed++
		}
	}
	assert.Equal(t, 10, imposed)
}

func TestClassify_ClosureWithoutImposedLeave(t *testing.T) {
	req := request(2025, 5, 3)
	req.Closures = []generic.Period{{Start: date(2025, time.December, 24), End: date(2025, time.December, 31)}}

	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	rec := dayOf(t, cal, date(2025, time.December, 24))
	assert.Equal(t, timeoff.KindClosure, rec.BaseKind)
	assert.Equal(t, timeoff.LeaveNone, rec.Leave)
	assert.True(t, rec.Locked)
	assert.False(t, rec.Imposed)
}

func TestClassify_ClosureClippedToYear(t *testing.T) {
	// GIVEN: A closure spanning New Year
	req := request(2025, 5, 3)
	req.Closures = []generic.Period{{Start: date(2024, time.December, 23), End: date(2025, time.January, 3)}}

	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	// THEN: Only the 2025 part is applied
	assert.Equal(t, timeoff.KindClosure, dayOf(t, cal, date(2025, time.January, 2)).BaseKind)
	assert.Equal(t, timeoff.KindWork, dayOf(t, cal, date(2025, time.January, 6)).BaseKind)
}

func TestClassify_BookedLeave(t *testing.T) {
	req := request(2025, 5, 3)
	req.Booked = []timeoff.BookedLeave{
		{Date: date(2025, time.March, 10), Kind: timeoff.LeaveFull},
		{Date: date(2025, time.March, 11), Kind: timeoff.LeaveHalfPM},
	}

	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	full := dayOf(t, cal, date(2025, time.March, 10))
	assert.Equal(t, timeoff.KindWork, full.BaseKind)
	assert.Equal(t, timeoff.LeaveFull, full.Leave)
	assert.True(t, full.Imposed)

	half := dayOf(t, cal, date(2025, time.March, 11))
	assert.Equal(t, timeoff.LeaveHalfPM, half.Leave)
	assert.True(t, half.Leave.Weight().Equal(days(0.5)))
}

func TestClassify_BookedOnWeekendRejected(t *testing.T) {
	req := request(2025, 5, 3)
	req.Booked = []timeoff.BookedLeave{{Date: date(2025, time.March, 8), Kind: timeoff.LeaveFull}}

	_, err := timeoff.Classify(req, generic.HolidaySet{})

	var cfgErr *generic.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "booked", cfgErr.Field)
	assert.ErrorIs(t, err, generic.ErrInvalidConfig)
}

func TestClassify_BlackoutLocksWorkDays(t *testing.T) {
	req := request(2025, 5, 3)
	req.Blackouts = []generic.Period{{Start: date(2025, time.June, 2), End: date(2025, time.June, 8)}}

	cal, err := timeoff.Classify(req, generic.HolidaySet{})
	require.NoError(t, err)

	mon := dayOf(t, cal, date(2025, time.June, 2))
	assert.Equal(t, timeoff.KindWork, mon.BaseKind)
	assert.True(t, mon.Locked)
	assert.False(t, mon.IsCandidate())
	assert.False(t, mon.IsRest())
}

func TestClassify_InvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(r *timeoff.Request)
	}{
		{"year too small", "year", func(r *timeoff.Request) { r.Year = 1800 }},
		{"negative budget", "leave_budget", func(r *timeoff.Request) { r.LeaveBudget = days(-1) }},
		{"quarter day budget", "leave_budget", func(r *timeoff.Request) { r.LeaveBudget = days(1.25) }},
		{"zero min rest", "min_rest", func(r *timeoff.Request) { r.MinRest = 0 }},
		{"closure reversed", "closures[0]", func(r *timeoff.Request) {
			r.Closures = []generic.Period{{Start: date(2025, time.May, 10), End: date(2025, time.May, 1)}}
		}},
		{"booked twice", "booked[1]", func(r *timeoff.Request) {
			r.Booked = []timeoff.BookedLeave{
				{Date: date(2025, time.May, 5), Kind: timeoff.LeaveFull},
				{Date: date(2025, time.May, 5), Kind: timeoff.LeaveHalfAM},
			}
		}},
		{"booked other year", "booked[0]", func(r *timeoff.Request) {
			r.Booked = []timeoff.BookedLeave{{Date: date(2024, time.May, 6), Kind: timeoff.LeaveFull}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := request(2025, 5, 3)
			tt.edit(&req)

			cal, err := timeoff.Classify(req, generic.HolidaySet{})

			assert.Nil(t, cal)
			var cfgErr *generic.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.True(t, generic.IsClientError(err))
		})
	}
}
