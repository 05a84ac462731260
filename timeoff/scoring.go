package timeoff

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// SCORING & REPORTING
// =============================================================================

// Summary holds the figures derived from a finished day map.
type Summary struct {
	TotalRestDays     int
	UsedLeaveDays     generic.Amount
	UnusedLeaveDays   generic.Amount
	Score             float64
	BestMonth         *MonthEfficiency
	EfficiencyRanking []MonthEfficiency
	RestDaysByMonth   [12]int
}

// Summarize computes totals, score and the monthly efficiency ranking.
//
// Used leave counts every leave weight on the map, imposed or optimized.
// Unused leave is budget minus used and never goes below zero.
func Summarize(days []DayRecord, periods []RestPeriod, budget generic.Amount, minRest int) Summary {
	var s Summary

	used := generic.ZeroDays()
	for _, d := range days {
		used = used.Add(d.Leave.Weight())
	}
	s.UsedLeaveDays = used
	s.UnusedLeaveDays = budget.Sub(used)
	if s.UnusedLeaveDays.IsNegative() {
		s.UnusedLeaveDays = generic.ZeroDays()
	}

	for _, p := range periods {
		s.TotalRestDays += p.Days
	}
	s.Score = float64(score(periods, minRest))

	for _, d := range days {
		if d.IsRest() {
			s.RestDaysByMonth[d.Date.Month()-1]++
		}
	}

	s.EfficiencyRanking = rankMonths(days, periods)
	if len(s.EfficiencyRanking) > 0 {
		best := s.EfficiencyRanking[0]
		s.BestMonth = &best
	}
	return s
}

// score is the total number of rest days plus, for each window of at least
// minRest days, a bonus of (length - minRest + 1).
//
// Adding one rest day anywhere raises the score by at least one, and
// joining two windows is always worth more than keeping them apart, so one
// long window outranks several short ones of the same total length.
func score(periods []RestPeriod, minRest int) int {
	total := 0
	for _, p := range periods {
		total += p.Days
		if p.Days >= minRest {
			total += p.Days - minRest + 1
		}
	}
	return total
}

// rankMonths reports, for every month where leave was spent, the rest days
// of that month lying in leave-bearing periods per leave day spent there.
// Sorted by efficiency descending, then month ascending.
func rankMonths(days []DayRecord, periods []RestPeriod) []MonthEfficiency {
	if len(days) == 0 {
		return nil
	}
	origin := days[0].Date

	var leave [12]decimal.Decimal
	var rest [12]int
	for i := range leave {
		leave[i] = decimal.Zero
	}

	for _, p := range periods {
		from := generic.DaysBetween(origin, p.Start)
		to := from + p.Days - 1
		bearing := false
		for i := from; i <= to; i++ {
			if days[i].Leave != LeaveNone {
				bearing = true
				break
			}
		}
		if !bearing {
			continue
		}
		for i := from; i <= to; i++ {
			rest[days[i].Date.Month()-1]++
		}
	}
	for _, d := range days {
		if d.Leave != LeaveNone {
			m := d.Date.Month() - 1
			leave[m] = leave[m].Add(d.Leave.Weight().Value)
		}
	}

	var ranking []MonthEfficiency
	for m := 0; m < 12; m++ {
		if !leave[m].IsPositive() {
			continue
		}
		eff, _ := decimal.NewFromInt(int64(rest[m])).DivRound(leave[m], 4).Float64()
		ranking = append(ranking, MonthEfficiency{
			Month:      time.Month(m + 1),
			LeaveDays:  generic.Amount{Value: leave[m], Unit: generic.UnitDays},
			RestDays:   rest[m],
			Efficiency: eff,
		})
	}

	// Compare rest_a/leave_a against rest_b/leave_b exactly by cross-multiplying.
	sort.SliceStable(ranking, func(i, j int) bool {
		a := decimal.NewFromInt(int64(ranking[i].RestDays)).Mul(ranking[j].LeaveDays.Value)
		b := decimal.NewFromInt(int64(ranking[j].RestDays)).Mul(ranking[i].LeaveDays.Value)
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return ranking[i].Month < ranking[j].Month
	})
	return ranking
}
