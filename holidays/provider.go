/*
Package holidays resolves the public holiday set of a region and year.

PURPOSE:
  The classifier needs an explicit, immutable holiday set. This package
  produces one from several sources without any network access and
  without global state: the caller builds the provider graph once and
  passes it to the planner.

KEY CONCEPTS:
  - Provider: anything that can answer HolidaysFor(country, subdivision, year)
  - Rules: built-in calendars computed from date rules (Easter offsets,
    nth weekday of a month, weekend substitution)
  - FileProvider: custom calendars described in a YAML file
  - Chain: ordered fallback across providers
  - Overlay: national calendar plus company-specific custom holidays
  - Cache: explicit TTL cache owned by the caller

ERRORS:
  An unknown region is reported as *generic.RegionError, which unwraps to
  generic.ErrUnsupportedRegion. Other errors are provider failures.

EXAMPLE:
  rules := holidays.NewRules()
  provider := holidays.NewCache(
      holidays.NewOverlay(holidays.NewChain(logger, fileProvider, rules), store, logger),
      24*time.Hour, logger)
  set, err := provider.HolidaysFor(ctx, "FR", "", 2025)

SEE ALSO:
  - timeoff/planner.go: Consumes a Provider
  - generic/time.go: HolidaySet
*/
package holidays

import (
	"context"
	"sort"
	"strings"

	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// PROVIDER
// =============================================================================

type Provider interface {
	// HolidaysFor returns the holidays falling in year for the region.
	// countryCode is an upper-case ISO 3166-1 alpha-2 code; subdivision
	// may be empty.
	HolidaysFor(ctx context.Context, countryCode, subdivision string, year int) (generic.HolidaySet, error)
}

// Region describes a supported calendar.
type Region struct {
	CountryCode  string   `json:"country_code"`
	Name         string   `json:"name"`
	Subdivisions []string `json:"subdivisions,omitempty"`
	Source       string   `json:"source"`
}

// RegionLister is implemented by providers that can enumerate their regions.
type RegionLister interface {
	Regions() []Region
}

// Regions collects the regions of every lister among providers, merging
// entries for the same country.
func Regions(providers ...Provider) []Region {
	byCode := make(map[string]*Region)
	var order []string
	for _, p := range providers {
		lister, ok := p.(RegionLister)
		if !ok {
			continue
		}
		for _, r := range lister.Regions() {
			existing, ok := byCode[r.CountryCode]
			if !ok {
				copied := r
				byCode[r.CountryCode] = &copied
				order = append(order, r.CountryCode)
				continue
			}
			existing.Subdivisions = mergeStrings(existing.Subdivisions, r.Subdivisions)
		}
	}
	sort.Strings(order)
	out := make([]Region, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

func mergeStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// NormalizeRegion upper-cases the codes and splits combined forms such as
// "fr-57" into country and subdivision when no subdivision is given.
func NormalizeRegion(countryCode, subdivision string) (string, string) {
	country := strings.ToUpper(strings.TrimSpace(countryCode))
	sub := strings.ToUpper(strings.TrimSpace(subdivision))
	if sub == "" {
		if i := strings.IndexAny(country, "-_"); i > 0 {
			country, sub = country[:i], country[i+1:]
		}
	}
	return country, sub
}
