package timeoff

import (
	"fmt"
	"time"

	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// PLAN REQUEST - Inputs of one optimization run
// =============================================================================

const (
	MinYear = 1900
	MaxYear = 2200
)

// Request holds everything needed to plan one year.
type Request struct {
	Year        int
	LeaveBudget generic.Amount // 0.5-day steps
	MinRest     int            // Minimum length of a rest window worth optimizing for

	// WeekendDays lists the non-working weekdays. nil means Saturday and
	// Sunday; an empty non-nil slice means no weekend at all.
	WeekendDays []time.Weekday

	CountryCode string
	Subdivision string

	Closures     []generic.Period // Employer closures
	ImposedLeave bool             // Closures consume leave budget

	Blackouts []generic.Period // Ranges where leave may not be placed
	Booked    []BookedLeave    // Leave already held before optimization
}

// Weekend resolves WeekendDays into a bit set.
func (r Request) Weekend() generic.Weekend {
	if r.WeekendDays == nil {
		return generic.DefaultWeekend
	}
	return generic.NewWeekend(r.WeekendDays...)
}

// Validate checks the inputs that do not depend on the holiday data.
// Every failure is a *generic.ConfigError.
func (r Request) Validate() error {
	if r.Year < MinYear || r.Year > MaxYear {
		return &generic.ConfigError{Field: "year", Message: fmt.Sprintf("must be between %d and %d, got %d", MinYear, MaxYear, r.Year)}
	}
	if err := validateBudget(r.LeaveBudget); err != nil {
		return err
	}
	if err := validateMinRest(r.MinRest); err != nil {
		return err
	}
	for _, d := range r.WeekendDays {
		if d < time.Sunday || d > time.Saturday {
			return &generic.ConfigError{Field: "weekend_days", Message: fmt.Sprintf("invalid weekday %d", d)}
		}
	}
	for i, p := range r.Closures {
		if err := p.Validate(); err != nil {
			return &generic.ConfigError{Field: fmt.Sprintf("closures[%d]", i), Message: err.Error()}
		}
	}
	for i, p := range r.Blackouts {
		if err := p.Validate(); err != nil {
			return &generic.ConfigError{Field: fmt.Sprintf("blackouts[%d]", i), Message: err.Error()}
		}
	}
	seen := make(map[generic.TimePoint]bool, len(r.Booked))
	for i, b := range r.Booked {
		field := fmt.Sprintf("booked[%d]", i)
		if b.Date.IsZero() {
			return &generic.ConfigError{Field: field, Message: "missing date"}
		}
		if b.Date.Year() != r.Year {
			return &generic.ConfigError{Field: field, Message: fmt.Sprintf("%s is outside %d", b.Date, r.Year)}
		}
		if !b.Kind.Valid() || b.Kind == LeaveNone {
			return &generic.ConfigError{Field: field, Message: fmt.Sprintf("invalid leave kind %q", b.Kind)}
		}
		if seen[b.Date] {
			return &generic.ConfigError{Field: field, Message: fmt.Sprintf("%s booked twice", b.Date)}
		}
		seen[b.Date] = true
	}
	return nil
}

// MaxLeaveBudget bounds leave_budget: no year has more days to place.
const MaxLeaveBudget = 366

func validateBudget(budget generic.Amount) error {
	if budget.IsNegative() {
		return &generic.ConfigError{Field: "leave_budget", Message: fmt.Sprintf("must not be negative, got %s", budget.Value)}
	}
	if !budget.IsHalfDayMultiple() {
		return &generic.ConfigError{Field: "leave_budget", Message: fmt.Sprintf("must be a multiple of 0.5, got %s", budget.Value)}
	}
	if budget.GreaterThan(generic.Days(MaxLeaveBudget)) {
		return &generic.ConfigError{Field: "leave_budget", Message: fmt.Sprintf("must not exceed %d, got %s", MaxLeaveBudget, budget.Value)}
	}
	return nil
}

func validateMinRest(minRest int) error {
	if minRest < 1 {
		return &generic.ConfigError{Field: "min_rest", Message: fmt.Sprintf("must be at least 1, got %d", minRest)}
	}
	return nil
}
