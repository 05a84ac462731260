package holidays_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/holidays"
)

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func holidaysFor(t *testing.T, p holidays.Provider, country, sub string, year int) generic.HolidaySet {
	t.Helper()
	set, err := p.HolidaysFor(context.Background(), country, sub, year)
	require.NoError(t, err)
	return set
}

func assertHoliday(t *testing.T, set generic.HolidaySet, d generic.TimePoint, want string) {
	t.Helper()
	name, ok := set.Name(d)
	require.True(t, ok, "no holiday on %s", d)
	assert.Equal(t, want, name)
}

// =============================================================================
// DATE HELPERS
// =============================================================================

func TestEaster(t *testing.T) {
	tests := map[int]generic.TimePoint{
		2019: date(2019, time.April, 21),
		2024: date(2024, time.March, 31),
		2025: date(2025, time.April, 20),
		2026: date(2026, time.April, 5),
		2038: date(2038, time.April, 25),
	}
	for year, want := range tests {
		assert.True(t, holidays.Easter(year).Equal(want), "easter %d: got %s", year, holidays.Easter(year))
	}
}

func TestNthWeekday(t *testing.T) {
	// Thanksgiving 2025: 4th Thursday of November
	assert.Equal(t, date(2025, time.November, 27), holidays.NthWeekday(2025, time.November, time.Thursday, 4))
	// Memorial Day 2025: last Monday of May
	assert.Equal(t, date(2025, time.May, 26), holidays.NthWeekday(2025, time.May, time.Monday, -1))
	// First Monday when the month starts on a Monday
	assert.Equal(t, date(2025, time.September, 1), holidays.NthWeekday(2025, time.September, time.Monday, 1))
	// Last Monday of August when the month ends on a Sunday
	assert.Equal(t, date(2025, time.August, 25), holidays.NthWeekday(2025, time.August, time.Monday, -1))
}

// =============================================================================
// BUILT-IN CALENDARS
// =============================================================================

func TestRules_France2025(t *testing.T) {
	set := holidaysFor(t, holidays.NewRules(), "FR", "", 2025)

	assert.Equal(t, 11, set.Len())
	assertHoliday(t, set, date(2025, time.January, 1), "New Year's Day")
	assertHoliday(t, set, date(2025, time.April, 21), "Easter Monday")
	// Easter Sunday is not a statutory day off in France.
	assert.False(t, set.Contains(date(2025, time.April, 20)))
	assertHoliday(t, set, date(2025, time.May, 29), "Ascension Day")
	assertHoliday(t, set, date(2025, time.June, 9), "Pentecost Monday")
	assertHoliday(t, set, date(2025, time.July, 14), "Bastille Day")
	assertHoliday(t, set, date(2025, time.November, 11), "Armistice Day")
	assert.False(t, set.Contains(date(2025, time.April, 18)))
}

func TestRules_AlsaceMoselle(t *testing.T) {
	rules := holidays.NewRules()

	for _, sub := range []string{"57", "67", "68"} {
		set := holidaysFor(t, rules, "FR", sub, 2025)
		assert.Equal(t, 13, set.Len(), sub)
		assertHoliday(t, set, date(2025, time.April, 18), "Good Friday")
		assertHoliday(t, set, date(2025, time.December, 26), "St. Stephen's Day")
	}
}

func TestRules_GermanyStates(t *testing.T) {
	rules := holidays.NewRules()

	by := holidaysFor(t, rules, "DE", "BY", 2025)
	assertHoliday(t, by, date(2025, time.June, 19), "Corpus Christi")
	assertHoliday(t, by, date(2025, time.October, 3), "German Unity Day")

	// Berlin's Women's Day only exists from 2019 on
	assert.False(t, holidaysFor(t, rules, "DE", "BE", 2018).Contains(date(2018, time.March, 8)))
	assertHoliday(t, holidaysFor(t, rules, "DE", "BE", 2019), date(2019, time.March, 8), "International Women's Day")
}

func TestRules_UnitedStatesObserved(t *testing.T) {
	rules := holidays.NewRules()

	// GIVEN: 2021, Independence Day on a Sunday and Jan 1 2022 on a Saturday
	set := holidaysFor(t, rules, "US", "", 2021)

	// THEN: Monday Jul 5 is observed
	assertHoliday(t, set, date(2021, time.July, 4), "Independence Day")
	assertHoliday(t, set, date(2021, time.July, 5), "Independence Day (observed)")

	// AND: The next New Year is observed on Friday Dec 31 of this year
	assertHoliday(t, set, date(2021, time.December, 31), "New Year's Day (observed)")

	// AND: Juneteenth starts in 2021
	assertHoliday(t, set, date(2021, time.June, 18), "Juneteenth National Independence Day (observed)")
	assert.False(t, holidaysFor(t, rules, "US", "", 2020).Contains(date(2020, time.June, 19)))

	assertHoliday(t, holidaysFor(t, rules, "US", "", 2025), date(2025, time.November, 27), "Thanksgiving")
}

func TestRules_UnitedKingdomSubstitutes(t *testing.T) {
	rules := holidays.NewRules()

	// Christmas 2021 on a Saturday: both days move to Mon/Tue
	set := holidaysFor(t, rules, "GB", "", 2021)
	assertHoliday(t, set, date(2021, time.December, 27), "Christmas Day (substitute day)")
	assertHoliday(t, set, date(2021, time.December, 28), "Boxing Day (substitute day)")

	// Christmas 2022 on a Sunday: Boxing Day stays Monday, Christmas moves to Tuesday
	set = holidaysFor(t, rules, "GB", "", 2022)
	assertHoliday(t, set, date(2022, time.January, 3), "New Year's Day (substitute day)")
	assertHoliday(t, set, date(2022, time.December, 26), "Boxing Day")
	assertHoliday(t, set, date(2022, time.December, 27), "Christmas Day (substitute day)")
}

func TestRules_UnsupportedRegion(t *testing.T) {
	rules := holidays.NewRules()

	_, err := rules.HolidaysFor(context.Background(), "ZZ", "", 2025)
	assert.ErrorIs(t, err, generic.ErrUnsupportedRegion)

	_, err = rules.HolidaysFor(context.Background(), "FR", "99", 2025)
	var regionErr *generic.RegionError
	require.ErrorAs(t, err, &regionErr)
	assert.Equal(t, "99", regionErr.Subdivision)
}

func TestRules_Regions(t *testing.T) {
	regions := holidays.NewRules().Regions()

	var codes []string
	for _, r := range regions {
		codes = append(codes, r.CountryCode)
		assert.Equal(t, "builtin", r.Source)
	}
	assert.Equal(t, []string{"DE", "ES", "FR", "GB", "IT", "US"}, codes)
	assert.Equal(t, []string{"57", "67", "68"}, regions[2].Subdivisions)
}

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		country, sub         string
		wantCountry, wantSub string
	}{
		{"fr", "", "FR", ""},
		{"fr-57", "", "FR", "57"},
		{"de_by", "", "DE", "BY"},
		{" us ", " ", "US", ""},
		{"FR-57", "67", "FR-57", "67"},
	}
	for _, tt := range tests {
		c, s := holidays.NormalizeRegion(tt.country, tt.sub)
		assert.Equal(t, tt.wantCountry, c, tt.country)
		assert.Equal(t, tt.wantSub, s, tt.country)
	}
}
