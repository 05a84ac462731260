package holidays

import "time"

// =============================================================================
// BUILT-IN CALENDARS
// =============================================================================

func builtinCalendars() map[string]calendar {
	alsaceMoselle := []rule{
		easter(-2, "Good Friday"),
		fixed(time.December, 26, "St. Stephen's Day"),
	}

	return map[string]calendar{
		"FR": {
			name: "France",
			national: []rule{
				fixed(time.January, 1, "New Year's Day"),
				easter(1, "Easter Monday"),
				fixed(time.May, 1, "Labor Day"),
				fixed(time.May, 8, "Victory in Europe Day"),
				easter(39, "Ascension Day"),
				easter(50, "Pentecost Monday"),
				fixed(time.July, 14, "Bastille Day"),
				fixed(time.August, 15, "Assumption Day"),
				fixed(time.November, 1, "All Saints' Day"),
				fixed(time.November, 11, "Armistice Day"),
				fixed(time.December, 25, "Christmas Day"),
			},
			subdivisions: map[string][]rule{
				"57": alsaceMoselle,
				"67": alsaceMoselle,
				"68": alsaceMoselle,
			},
		},
		"DE": {
			name: "Germany",
			national: []rule{
				fixed(time.January, 1, "New Year's Day"),
				easter(-2, "Good Friday"),
				easter(1, "Easter Monday"),
				fixed(time.May, 1, "Labour Day"),
				easter(39, "Ascension Day"),
				easter(50, "Whit Monday"),
				fixed(time.October, 3, "German Unity Day"),
				fixed(time.December, 25, "Christmas Day"),
				fixed(time.December, 26, "Second Day of Christmas"),
			},
			subdivisions: map[string][]rule{
				"BY": {
					fixed(time.January, 6, "Epiphany"),
					easter(60, "Corpus Christi"),
					fixed(time.August, 15, "Assumption Day"),
					fixed(time.November, 1, "All Saints' Day"),
				},
				"BE": {
					since(2019, fixed(time.March, 8, "International Women's Day")),
				},
			},
		},
		"GB": {
			name: "United Kingdom (England and Wales)",
			national: []rule{
				substituted(fixed(time.January, 1, "New Year's Day")),
				easter(-2, "Good Friday"),
				easter(1, "Easter Monday"),
				weekdayOf(time.May, time.Monday, 1, "Early May Bank Holiday"),
				weekdayOf(time.May, time.Monday, -1, "Spring Bank Holiday"),
				weekdayOf(time.August, time.Monday, -1, "Summer Bank Holiday"),
				christmasSubstitutes,
			},
		},
		"US": {
			name: "United States (federal)",
			national: []rule{
				observed(fixed(time.January, 1, "New Year's Day")),
				weekdayOf(time.January, time.Monday, 3, "Martin Luther King Jr. Day"),
				weekdayOf(time.February, time.Monday, 3, "Washington's Birthday"),
				weekdayOf(time.May, time.Monday, -1, "Memorial Day"),
				since(2021, observed(fixed(time.June, 19, "Juneteenth National Independence Day"))),
				observed(fixed(time.July, 4, "Independence Day")),
				weekdayOf(time.September, time.Monday, 1, "Labor Day"),
				weekdayOf(time.October, time.Monday, 2, "Columbus Day"),
				observed(fixed(time.November, 11, "Veterans Day")),
				weekdayOf(time.November, time.Thursday, 4, "Thanksgiving"),
				observed(fixed(time.December, 25, "Christmas Day")),
			},
		},
		"IT": {
			name: "Italy",
			national: []rule{
				fixed(time.January, 1, "New Year's Day"),
				fixed(time.January, 6, "Epiphany"),
				easter(0, "Easter Sunday"),
				easter(1, "Easter Monday"),
				fixed(time.April, 25, "Liberation Day"),
				fixed(time.May, 1, "Labour Day"),
				fixed(time.June, 2, "Republic Day"),
				fixed(time.August, 15, "Assumption Day"),
				fixed(time.November, 1, "All Saints' Day"),
				fixed(time.December, 8, "Immaculate Conception"),
				fixed(time.December, 25, "Christmas Day"),
				fixed(time.December, 26, "St. Stephen's Day"),
			},
		},
		"ES": {
			name: "Spain (national)",
			national: []rule{
				fixed(time.January, 1, "New Year's Day"),
				fixed(time.January, 6, "Epiphany"),
				easter(-2, "Good Friday"),
				fixed(time.May, 1, "Labour Day"),
				fixed(time.August, 15, "Assumption Day"),
				fixed(time.October, 12, "National Day"),
				fixed(time.November, 1, "All Saints' Day"),
				fixed(time.December, 6, "Constitution Day"),
				fixed(time.December, 8, "Immaculate Conception"),
				fixed(time.December, 25, "Christmas Day"),
			},
		},
	}
}
