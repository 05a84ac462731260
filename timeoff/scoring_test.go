package timeoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rest-planner/timeoff"
)

func summarize(cal []timeoff.DayRecord, budget float64, minRest int) timeoff.Summary {
	return timeoff.Summarize(cal, timeoff.Segment(cal), days(budget), minRest)
}

func TestSummarize_Totals(t *testing.T) {
	// GIVEN: A 7-day window built with 2 leave days, followed by a work day
	cal := calendar(date(2025, time.January, 4), "eeLLheew")

	// WHEN: Summarizing with budget 3, min rest 3
	s := summarize(cal, 3, 3)

	// THEN: 7 rest days, score 7 + (7 - 3 + 1)
	assert.Equal(t, 7, s.TotalRestDays)
	assert.Equal(t, 12.0, s.Score)
	assert.True(t, s.UsedLeaveDays.Equal(days(2)))
	assert.True(t, s.UnusedLeaveDays.Equal(days(1)))
	assert.Equal(t, 7, s.RestDaysByMonth[0])
}

func TestSummarize_ScoreFavoursLongWindows(t *testing.T) {
	// GIVEN: Same number of rest days, one long window vs two short ones
	start := date(2025, time.January, 1)
	joined := summarize(calendar(start, "eeeeeeww"), 0, 3)
	split := summarize(calendar(start, "eeeweeew"), 0, 3)

	// THEN: The long window scores higher
	assert.Equal(t, joined.TotalRestDays, split.TotalRestDays)
	assert.Greater(t, joined.Score, split.Score)

	// AND: Windows below min rest earn no bonus
	short := summarize(calendar(start, "eewee"), 0, 3)
	assert.Equal(t, 4.0, short.Score)
}

func TestSummarize_UnusedNeverNegative(t *testing.T) {
	s := summarize(calendar(date(2025, time.January, 1), "LLLe"), 1, 3)

	assert.True(t, s.UsedLeaveDays.Equal(days(3)))
	assert.True(t, s.UnusedLeaveDays.IsZero())
}

func TestSummarize_NoLeaveNoRanking(t *testing.T) {
	s := summarize(calendar(date(2025, time.January, 1), "wweew"), 5, 2)

	assert.Nil(t, s.BestMonth)
	assert.Empty(t, s.EfficiencyRanking)
	assert.True(t, s.UnusedLeaveDays.Equal(days(5)))
}

func TestSummarize_EfficiencyRanking(t *testing.T) {
	// GIVEN: Jan 30 (Thu) .. Feb 5
	//   January: 1 leave day in a window with 2 January rest days -> 2.0
	//   February: 1 leave day in a window of 3 rest days -> 3.0
	cal := calendar(date(2025, time.January, 30), "eLwwLeew")

	s := summarize(cal, 5, 2)

	require.Len(t, s.EfficiencyRanking, 2)
	assert.Equal(t, time.February, s.EfficiencyRanking[0].Month)
	assert.Equal(t, 3, s.EfficiencyRanking[0].RestDays)
	assert.Equal(t, 3.0, s.EfficiencyRanking[0].Efficiency)
	assert.Equal(t, time.January, s.EfficiencyRanking[1].Month)
	assert.Equal(t, 2.0, s.EfficiencyRanking[1].Efficiency)

	require.NotNil(t, s.BestMonth)
	assert.Equal(t, time.February, s.BestMonth.Month)
}

func TestSummarize_EfficiencyTiesKeepCalendarOrder(t *testing.T) {
	cal := calendar(date(2025, time.January, 30), "eLwwLe")

	s := summarize(cal, 5, 2)

	require.Len(t, s.EfficiencyRanking, 2)
	assert.Equal(t, time.January, s.EfficiencyRanking[0].Month)
	assert.Equal(t, time.February, s.EfficiencyRanking[1].Month)
	assert.Equal(t, s.EfficiencyRanking[0].Efficiency, s.EfficiencyRanking[1].Efficiency)
}

func TestSummarize_HalfDayEfficiency(t *testing.T) {
	s := summarize(calendar(date(2025, time.March, 7), "aee"), 1, 2)

	require.NotNil(t, s.BestMonth)
	assert.True(t, s.BestMonth.LeaveDays.Equal(days(0.5)))
	assert.Equal(t, 6.0, s.BestMonth.Efficiency)
}

func TestRun_BestMonthForBridge(t *testing.T) {
	// GIVEN: The Wednesday Jul 16 bridge from the optimizer scenario
	result := run(t, request(2025, 2, 3), holidaySet(date(2025, time.July, 16)))

	// THEN: July wins with 5 rest days per 2 leave days
	require.NotNil(t, result.BestMonth)
	assert.Equal(t, time.July, result.BestMonth.Month)
	assert.Equal(t, 5, result.BestMonth.RestDays)
	assert.Equal(t, 2.5, result.BestMonth.Efficiency)
	assert.Len(t, result.QualifyingPeriods(), 1)
}
