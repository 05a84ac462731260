package holidays

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// DATE RULES
// =============================================================================

// rule yields the holidays it defines for one year. Rules may return dates
// outside that year (observed days); Rules filters them.
type rule func(year int) []generic.Holiday

func holiday(d generic.TimePoint, name string) generic.Holiday {
	return generic.Holiday{Date: d, Name: name}
}

func fixed(month time.Month, day int, name string) rule {
	return func(year int) []generic.Holiday {
		return []generic.Holiday{holiday(generic.NewTimePoint(year, month, day), name)}
	}
}

// easter places a holiday offset days from Easter Sunday.
func easter(offset int, name string) rule {
	return func(year int) []generic.Holiday {
		return []generic.Holiday{holiday(Easter(year).AddDays(offset), name)}
	}
}

// weekdayOf places a holiday on the nth given weekday of a month. n < 0
// counts from the end of the month (-1 is the last one).
func weekdayOf(month time.Month, wd time.Weekday, n int, name string) rule {
	return func(year int) []generic.Holiday {
		return []generic.Holiday{holiday(NthWeekday(year, month, wd, n), name)}
	}
}

// since enables a rule from a given year on.
func since(first int, r rule) rule {
	return func(year int) []generic.Holiday {
		if year < first {
			return nil
		}
		return r(year)
	}
}

// observed adds a weekday stand-in for holidays on a weekend: Saturday moves
// to Friday, Sunday to Monday.
func observed(r rule) rule {
	return func(year int) []generic.Holiday {
		var out []generic.Holiday
		for _, h := range r(year) {
			out = append(out, h)
			switch h.Date.Weekday() {
			case time.Saturday:
				out = append(out, holiday(h.Date.AddDays(-1), h.Name+" (observed)"))
			case time.Sunday:
				out = append(out, holiday(h.Date.AddDays(1), h.Name+" (observed)"))
			}
		}
		return out
	}
}

// substituted adds the next Monday for a holiday on a weekend.
func substituted(r rule) rule {
	return func(year int) []generic.Holiday {
		var out []generic.Holiday
		for _, h := range r(year) {
			out = append(out, h)
			switch h.Date.Weekday() {
			case time.Saturday:
				out = append(out, holiday(h.Date.AddDays(2), h.Name+" (substitute day)"))
			case time.Sunday:
				out = append(out, holiday(h.Date.AddDays(1), h.Name+" (substitute day)"))
			}
		}
		return out
	}
}

// christmasSubstitutes handles Christmas and Boxing Day together so that
// their substitute days never collide.
func christmasSubstitutes(year int) []generic.Holiday {
	xmas := generic.NewTimePoint(year, time.December, 25)
	boxing := xmas.AddDays(1)
	out := []generic.Holiday{holiday(xmas, "Christmas Day"), holiday(boxing, "Boxing Day")}
	switch xmas.Weekday() {
	case time.Friday:
		out = append(out, holiday(xmas.AddDays(3), "Boxing Day (substitute day)"))
	case time.Saturday:
		out = append(out,
			holiday(xmas.AddDays(2), "Christmas Day (substitute day)"),
			holiday(xmas.AddDays(3), "Boxing Day (substitute day)"))
	case time.Sunday:
		out = append(out, holiday(xmas.AddDays(2), "Christmas Day (substitute day)"))
	}
	return out
}

// =============================================================================
// DATE HELPERS
// =============================================================================

// Easter returns Easter Sunday of the Gregorian calendar (anonymous
// Gregorian algorithm).
func Easter(year int) generic.TimePoint {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return generic.NewTimePoint(year, time.Month(month), day)
}

// NthWeekday returns the nth weekday wd of a month; n < 0 counts from the end.
func NthWeekday(year int, month time.Month, wd time.Weekday, n int) generic.TimePoint {
	if n > 0 {
		first := generic.NewTimePoint(year, month, 1)
		offset := (int(wd) - int(first.Weekday()) + 7) % 7
		return first.AddDays(offset + 7*(n-1))
	}
	last := generic.NewTimePoint(year, month+1, 1).AddDays(-1)
	offset := (int(last.Weekday()) - int(wd) + 7) % 7
	return last.AddDays(-offset - 7*(-n-1))
}

// =============================================================================
// RULES PROVIDER
// =============================================================================

type calendar struct {
	name         string
	national     []rule
	subdivisions map[string][]rule
}

// Rules is the built-in rule-based Provider. It is immutable and safe for
// concurrent use.
type Rules struct {
	calendars map[string]calendar
}

func NewRules() *Rules {
	return &Rules{calendars: builtinCalendars()}
}

var _ Provider = (*Rules)(nil)

func (r *Rules) HolidaysFor(_ context.Context, countryCode, subdivision string, year int) (generic.HolidaySet, error) {
	cal, ok := r.calendars[countryCode]
	if !ok {
		return generic.HolidaySet{}, &generic.RegionError{
			CountryCode: countryCode,
			Subdivision: subdivision,
			Cause:       fmt.Errorf("no built-in calendar"),
		}
	}
	rules := cal.national
	if subdivision != "" {
		extra, ok := cal.subdivisions[subdivision]
		if !ok {
			return generic.HolidaySet{}, &generic.RegionError{
				CountryCode: countryCode,
				Subdivision: subdivision,
				Cause:       fmt.Errorf("unknown subdivision"),
			}
		}
		rules = append(append([]rule{}, rules...), extra...)
	}

	// Observed and substitute days can spill across the year boundary.
	var all []generic.Holiday
	for _, y := range []int{year - 1, year, year + 1} {
		for _, rl := range rules {
			for _, h := range rl(y) {
				if h.Date.Year() == year {
					h.CountryCode = countryCode
					h.Subdivision = subdivision
					all = append(all, h)
				}
			}
		}
	}
	return generic.NewHolidaySet(all...), nil
}

func (r *Rules) Regions() []Region {
	out := make([]Region, 0, len(r.calendars))
	for code, cal := range r.calendars {
		var subs []string
		for s := range cal.subdivisions {
			subs = append(subs, s)
		}
		sort.Strings(subs)
		out = append(out, Region{CountryCode: code, Name: cal.name, Subdivisions: subs, Source: "builtin"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CountryCode < out[j].CountryCode })
	return out
}
