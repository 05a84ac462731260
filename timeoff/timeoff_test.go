package timeoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func days(n float64) generic.Amount {
	return generic.NewAmount(n, generic.UnitDays)
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func holidaySet(dates ...generic.TimePoint) generic.HolidaySet {
	hs := make([]generic.Holiday, len(dates))
	for i, d := range dates {
		hs[i] = generic.Holiday{Date: d, Name: "Holiday " + d.String()}
	}
	return generic.NewHolidaySet(hs...)
}

func request(year int, budget float64, minRest int) timeoff.Request {
	return timeoff.Request{
		Year:        year,
		LeaveBudget: days(budget),
		MinRest:     minRest,
		CountryCode: "FR",
	}
}

func run(t *testing.T, req timeoff.Request, hols generic.HolidaySet) *timeoff.Result {
	t.Helper()
	result, err := timeoff.Run(req, hols)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func leaveDates(result *timeoff.Result) []generic.TimePoint {
	var out []generic.TimePoint
	for _, d := range result.LeaveDays() {
		out = append(out, d.Date)
	}
	return out
}

func findPeriod(periods []timeoff.RestPeriod, start generic.TimePoint) (timeoff.RestPeriod, bool) {
	for _, p := range periods {
		if p.Start.Equal(start) {
			return p, true
		}
	}
	return timeoff.RestPeriod{}, false
}

// assertInvariants checks the properties every result must satisfy.
func assertInvariants(t *testing.T, result *timeoff.Result) {
	t.Helper()

	// One record per date, in order.
	require.Len(t, result.Days, generic.DaysInYear(result.Year))
	for i, d := range result.Days {
		assert.True(t, d.Date.Equal(generic.StartOfYear(result.Year).AddDays(i)), "day %d out of order", i)
	}

	// Budget: used + unused == budget, used <= budget.
	assert.True(t, result.UsedLeaveDays.Add(result.UnusedLeaveDays).Equal(result.LeaveBudget),
		"used %s + unused %s != budget %s", result.UsedLeaveDays, result.UnusedLeaveDays, result.LeaveBudget)
	assert.False(t, result.UsedLeaveDays.GreaterThan(result.LeaveBudget))
	assert.False(t, result.UnusedLeaveDays.IsNegative())

	restDays := 0
	for _, d := range result.Days {
		if d.Locked {
			assert.Equal(t, timeoff.LeaveNone, d.Leave, "locked day %s carries leave", d.Date)
		}
		if d.Leave != timeoff.LeaveNone {
			assert.True(t, d.BaseKind == timeoff.KindWork || d.Imposed, "leave on %s day %s", d.BaseKind, d.Date)
			assert.NotEmpty(t, d.Reason, "leave on %s has no reason", d.Date)
		}
		if d.IsRest() {
			restDays++
		}
	}

	// Segmentation completeness: periods cover exactly the rest days.
	sum := 0
	for i, p := range result.RestPeriods {
		sum += p.Days
		assert.Equal(t, p.Days, generic.DaysBetween(p.Start, p.End)+1)
		if i > 0 {
			assert.True(t, result.RestPeriods[i-1].End.AddDays(1).Before(p.Start), "periods %d and %d touch", i-1, i)
		}
	}
	assert.Equal(t, restDays, sum)
	assert.Equal(t, restDays, result.TotalRestDays)
}
