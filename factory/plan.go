/*
Package factory provides JSON/YAML to Go plan request conversion.

PURPOSE:
  Converts plan definitions received over HTTP or read from disk into
  timeoff.Request values, filling the gaps with configured defaults. The
  core never sees raw input: by the time a Request reaches the planner it
  has typed dates, a decimal budget and parsed weekdays.

JSON SCHEMA:
  {
    "name": "Summer plan",
    "year": 2025,
    "leave_budget": 25,
    "min_rest": 4,
    "weekend_days": ["saturday", "sunday"],
    "country_code": "FR",
    "subdivision": "57",
    "closures": [{"start": "2025-08-04", "end": "2025-08-15"}],
    "imposed_leave": true,
    "blackouts": [{"start": "2025-03-01", "end": "2025-03-31"}],
    "booked": [{"date": "2025-02-14", "kind": "half_pm"}]
  }

DEFAULTS:
  - year, min_rest, country_code, subdivision and weekend_days fall back
    to PlanDefaults when absent
  - "weekend_days": [] means no weekend at all; a missing key or null
    means the default weekend
  - a booked entry without kind is a full day

USAGE:
  f := factory.NewPlanFactory(factory.PlanDefaults{CountryCode: "FR", MinRest: 3})
  req, err := f.ParsePlan(body)
  result, err := planner.Plan(ctx, req)

SEE ALSO:
  - timeoff/request.go: Request and its validation
  - config/config.go: Where the defaults come from
*/
package factory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// SCHEMA TYPES
// =============================================================================

// PlanJSON is the wire representation of a plan request.
type PlanJSON struct {
	Name         string       `json:"name,omitempty" yaml:"name,omitempty"`
	Year         int          `json:"year,omitempty" yaml:"year,omitempty"`
	LeaveBudget  float64      `json:"leave_budget" yaml:"leave_budget"`
	MinRest      *int         `json:"min_rest,omitempty" yaml:"min_rest,omitempty"`
	WeekendDays  []string     `json:"weekend_days" yaml:"weekend_days"`
	CountryCode  string       `json:"country_code,omitempty" yaml:"country_code,omitempty"`
	Subdivision  string       `json:"subdivision,omitempty" yaml:"subdivision,omitempty"`
	Closures     []PeriodJSON `json:"closures,omitempty" yaml:"closures,omitempty"`
	ImposedLeave bool         `json:"imposed_leave,omitempty" yaml:"imposed_leave,omitempty"`
	Blackouts    []PeriodJSON `json:"blackouts,omitempty" yaml:"blackouts,omitempty"`
	Booked       []BookedJSON `json:"booked,omitempty" yaml:"booked,omitempty"`
}

// PeriodJSON is an inclusive date range.
type PeriodJSON struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// BookedJSON is a leave day booked before planning.
type BookedJSON struct {
	Date string `json:"date" yaml:"date"`
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"` // full, half_am, half_pm
}

// PlanDefaults fills fields a plan leaves out.
type PlanDefaults struct {
	Year        int
	CountryCode string
	Subdivision string
	MinRest     int
	WeekendDays []time.Weekday // nil = Saturday and Sunday
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts plan definitions to timeoff.Request.
type PlanFactory struct {
	defaults PlanDefaults
}

func NewPlanFactory(defaults PlanDefaults) *PlanFactory {
	return &PlanFactory{defaults: defaults}
}

// ParsePlan parses a JSON document. Malformed input is reported as a
// *generic.ConfigError so callers can answer with a client error.
func (f *PlanFactory) ParsePlan(data []byte) (timeoff.Request, error) {
	pj, err := DecodePlanJSON(data)
	if err != nil {
		return timeoff.Request{}, err
	}
	return f.FromJSON(pj)
}

// DecodePlanJSON decodes a JSON document without applying defaults.
// Unknown keys are rejected so a misspelt field never falls back to its
// default silently.
func DecodePlanJSON(data []byte) (PlanJSON, error) {
	var pj PlanJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pj); err != nil {
		return PlanJSON{}, &generic.ConfigError{Field: "body", Message: fmt.Sprintf("is not valid JSON: %v", err)}
	}
	if dec.More() {
		return PlanJSON{}, &generic.ConfigError{Field: "body", Message: "has trailing data after the plan"}
	}
	return pj, nil
}

// ParsePlanFile reads a plan from disk and converts it.
func (f *PlanFactory) ParsePlanFile(path string) (timeoff.Request, PlanJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return timeoff.Request{}, PlanJSON{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	pj, err := DecodePlanFile(path, data)
	if err != nil {
		return timeoff.Request{}, PlanJSON{}, err
	}
	req, err := f.FromJSON(pj)
	return req, pj, err
}

// DecodePlanFile decodes the content of a plan file. Names ending in .yaml
// or .yml are decoded as YAML, everything else as JSON. Both reject
// unknown keys; an empty YAML file is an empty plan.
func DecodePlanFile(name string, data []byte) (PlanJSON, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		var pj PlanJSON
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&pj); err != nil && !errors.Is(err, io.EOF) {
			return PlanJSON{}, &generic.ConfigError{Field: "file", Message: fmt.Sprintf("is not valid YAML: %v", err)}
		}
		return pj, nil
	default:
		return DecodePlanJSON(data)
	}
}

// FromJSON converts PlanJSON to a Request. Only parsing happens here;
// range checks are left to Request.Validate.
func (f *PlanFactory) FromJSON(pj PlanJSON) (timeoff.Request, error) {
	req := timeoff.Request{
		Year:         pj.Year,
		LeaveBudget:  generic.NewAmount(pj.LeaveBudget, generic.UnitDays),
		CountryCode:  pj.CountryCode,
		Subdivision:  pj.Subdivision,
		ImposedLeave: pj.ImposedLeave,
	}

	if req.Year == 0 {
		req.Year = f.defaults.Year
	}
	if pj.MinRest != nil {
		req.MinRest = *pj.MinRest
	} else {
		req.MinRest = f.defaults.MinRest
	}
	if req.CountryCode == "" {
		req.CountryCode = f.defaults.CountryCode
		if req.Subdivision == "" {
			req.Subdivision = f.defaults.Subdivision
		}
	}

	if pj.WeekendDays != nil {
		req.WeekendDays = make([]time.Weekday, 0, len(pj.WeekendDays))
		for i, s := range pj.WeekendDays {
			wd, err := generic.ParseWeekday(s)
			if err != nil {
				return timeoff.Request{}, &generic.ConfigError{Field: fmt.Sprintf("weekend_days[%d]", i), Message: err.Error()}
			}
			req.WeekendDays = append(req.WeekendDays, wd)
		}
	} else if f.defaults.WeekendDays != nil {
		req.WeekendDays = append([]time.Weekday{}, f.defaults.WeekendDays...)
	}

	var err error
	if req.Closures, err = parsePeriods("closures", pj.Closures); err != nil {
		return timeoff.Request{}, err
	}
	if req.Blackouts, err = parsePeriods("blackouts", pj.Blackouts); err != nil {
		return timeoff.Request{}, err
	}

	for i, b := range pj.Booked {
		field := fmt.Sprintf("booked[%d]", i)
		date, err := generic.ParseDate(b.Date)
		if err != nil {
			return timeoff.Request{}, &generic.ConfigError{Field: field, Message: err.Error()}
		}
		kind, err := timeoff.ParseLeaveKind(b.Kind)
		if err != nil {
			return timeoff.Request{}, &generic.ConfigError{Field: field, Message: err.Error()}
		}
		req.Booked = append(req.Booked, timeoff.BookedLeave{Date: date, Kind: kind})
	}

	return req, nil
}

// ToJSON converts a Request back to its wire form.
func (f *PlanFactory) ToJSON(name string, req timeoff.Request) PlanJSON {
	budget, _ := req.LeaveBudget.Value.Float64()
	minRest := req.MinRest
	pj := PlanJSON{
		Name:         name,
		Year:         req.Year,
		LeaveBudget:  budget,
		MinRest:      &minRest,
		CountryCode:  req.CountryCode,
		Subdivision:  req.Subdivision,
		ImposedLeave: req.ImposedLeave,
		Closures:     formatPeriods(req.Closures),
		Blackouts:    formatPeriods(req.Blackouts),
	}
	if req.WeekendDays != nil {
		pj.WeekendDays = make([]string, 0, len(req.WeekendDays))
		for _, wd := range req.WeekendDays {
			pj.WeekendDays = append(pj.WeekendDays, strings.ToLower(wd.String()))
		}
	}
	for _, b := range req.Booked {
		pj.Booked = append(pj.Booked, BookedJSON{Date: b.Date.String(), Kind: strings.ToLower(string(b.Kind))})
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parsePeriods(field string, in []PeriodJSON) ([]generic.Period, error) {
	var out []generic.Period
	for i, pj := range in {
		start, err := generic.ParseDate(pj.Start)
		if err != nil {
			return nil, &generic.ConfigError{Field: fmt.Sprintf("%s[%d].start", field, i), Message: err.Error()}
		}
		end := start
		if pj.End != "" {
			if end, err = generic.ParseDate(pj.End); err != nil {
				return nil, &generic.ConfigError{Field: fmt.Sprintf("%s[%d].end", field, i), Message: err.Error()}
			}
		}
		out = append(out, generic.Period{Start: start, End: end})
	}
	return out, nil
}

func formatPeriods(in []generic.Period) []PeriodJSON {
	var out []PeriodJSON
	for _, p := range in {
		out = append(out, PeriodJSON{Start: p.Start.String(), End: p.End.String()})
	}
	return out
}
