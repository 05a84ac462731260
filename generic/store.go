/*
store.go - Persistence interfaces for plans and custom holidays

PURPOSE:
  Defines the interface between the planner and the database. Plans are
  stored as immutable snapshots (request + result JSON plus a few indexed
  columns); custom holidays are company-specific non-working days layered
  on top of the built-in national calendars.

KEY INTERFACES:
  PlanStore:    Saved optimization results
  HolidayStore: Custom holidays keyed by country and subdivision

IMMUTABLE PLANS:
  A plan is never updated. Re-running the optimizer with new inputs saves
  a new plan; old ones can only be deleted.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - generic/store/memory.go: In-memory for testing

EXAMPLE:
  store, _ := sqlite.New("./planner.db")
  err := store.SavePlan(ctx, record)
  rec, err := store.GetPlan(ctx, record.ID)
  if errors.Is(err, generic.ErrPlanNotFound) {
      // 404
  }

SEE ALSO:
  - holidays/overlay.go: Reads HolidayStore while resolving calendars
  - api/handlers.go: Uses both stores
*/
package generic

import (
	"context"
	"time"
)

// =============================================================================
// PLAN STORE
// =============================================================================

// PlanRecord is a persisted optimization run.
type PlanRecord struct {
	ID            PlanID
	Name          string
	Year          int
	CountryCode   string
	Subdivision   string
	LeaveBudget   Amount
	MinRest       int
	TotalRestDays int
	UsedLeave     Amount
	Score         float64
	RequestJSON   string // The normalized request, re-playable through the factory
	ResultJSON    string // The full result as served by the API
	CreatedAt     time.Time
}

// PlanFilter narrows ListPlans. Zero values match everything.
type PlanFilter struct {
	Year        int
	CountryCode string
	Limit       int
}

type PlanStore interface {
	SavePlan(ctx context.Context, plan PlanRecord) error
	GetPlan(ctx context.Context, id PlanID) (*PlanRecord, error)
	ListPlans(ctx context.Context, filter PlanFilter) ([]PlanRecord, error)
	DeletePlan(ctx context.Context, id PlanID) error
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

type HolidayStore interface {
	// SaveHoliday creates or replaces a custom holiday (matched on ID).
	SaveHoliday(ctx context.Context, h Holiday) error

	DeleteHoliday(ctx context.Context, id HolidayID) error

	// ListHolidays returns every custom holiday of a country, all subdivisions.
	// An empty country lists everything.
	ListHolidays(ctx context.Context, countryCode string) ([]Holiday, error)

	// CustomHolidays returns the custom holidays that apply to a region in a
	// given year: country-wide entries plus entries of the subdivision, with
	// recurring entries moved to that year.
	CustomHolidays(ctx context.Context, countryCode, subdivision string, year int) ([]Holiday, error)
}

// ResolveCustomHolidays applies the CustomHolidays matching rules to a
// candidate list. Store implementations share it.
func ResolveCustomHolidays(all []Holiday, countryCode, subdivision string, year int) []Holiday {
	var out []Holiday
	for _, h := range all {
		if h.CountryCode != countryCode {
			continue
		}
		if h.Subdivision != "" && h.Subdivision != subdivision {
			continue
		}
		date, ok := h.OccursIn(year)
		if !ok {
			continue
		}
		h.Date = date
		out = append(out, h)
	}
	return out
}
