/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract:
  - Decimal amounts become plain numbers
  - Dates become "YYYY-MM-DD" strings
  - Every day carries a human label for the calendar UI

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Plans:
    PlanDTO, PlanSummaryDTO, DayDTO, RestPeriodDTO, MonthEfficiencyDTO

  Holidays:
    HolidayDTO, CreateHolidayRequest

  Jobs:
    SubmitJobRequest, JobDTO, JobItemDTO

VALIDATION:
  Validation is done by the factory and timeoff.Request, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/plan.go: PlanJSON type
*/
package api

import (
	"time"

	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/timeoff"
)

// =============================================================================
// PLANS
// =============================================================================

// PlanDTO is a full optimization result.
type PlanDTO struct {
	ID                string               `json:"id,omitempty"`
	Name              string               `json:"name,omitempty"`
	Year              int                  `json:"year"`
	CountryCode       string               `json:"country_code"`
	Subdivision       string               `json:"subdivision,omitempty"`
	LeaveBudget       float64              `json:"leave_budget"`
	MinRest           int                  `json:"min_rest"`
	TotalRestDays     int                  `json:"total_rest_days"`
	UsedLeaveDays     float64              `json:"used_leave_days"`
	UnusedLeaveDays   float64              `json:"unused_leave_days"`
	Score             float64              `json:"score"`
	BestMonth         *MonthEfficiencyDTO  `json:"best_month"`
	EfficiencyRanking []MonthEfficiencyDTO `json:"efficiency_ranking"`
	RestDaysByMonth   [12]int              `json:"rest_days_by_month"`
	RestPeriods       []RestPeriodDTO      `json:"rest_periods"`
	LeaveDays         []DayDTO             `json:"leave_days"`
	Days              []DayDTO             `json:"days,omitempty"`
	Request           factory.PlanJSON     `json:"request"`
	CreatedAt         string               `json:"created_at,omitempty"`
}

// DayDTO is one day of the planned year.
type DayDTO struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	BaseKind    string `json:"base_kind"`
	Leave       string `json:"leave"`
	Locked      bool   `json:"locked,omitempty"`
	Imposed     bool   `json:"imposed,omitempty"`
	HolidayName string `json:"holiday_name,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Label       string `json:"label"`
}

// RestPeriodDTO is a maximal run of rest days.
type RestPeriodDTO struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Days       int    `json:"days"`
	Qualifying bool   `json:"qualifying"`
	LeaveDays  int    `json:"leave_days"`
}

// MonthEfficiencyDTO is one entry of the efficiency ranking.
type MonthEfficiencyDTO struct {
	Month      int     `json:"month"`
	MonthName  string  `json:"month_name"`
	LeaveDays  float64 `json:"leave_days"`
	RestDays   int     `json:"rest_days"`
	Efficiency float64 `json:"efficiency"`
}

// PlanSummaryDTO is a saved plan without its day map.
type PlanSummaryDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Year          int     `json:"year"`
	CountryCode   string  `json:"country_code"`
	Subdivision   string  `json:"subdivision,omitempty"`
	LeaveBudget   float64 `json:"leave_budget"`
	MinRest       int     `json:"min_rest"`
	TotalRestDays int     `json:"total_rest_days"`
	UsedLeave     float64 `json:"used_leave"`
	Score         float64 `json:"score"`
	CreatedAt     string  `json:"created_at"`
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO is a resolved or custom holiday.
type HolidayDTO struct {
	ID          string `json:"id,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	Subdivision string `json:"subdivision,omitempty"`
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	Name        string `json:"name"`
	Recurring   bool   `json:"recurring,omitempty"`
}

// CreateHolidayRequest is the request to add a custom holiday.
type CreateHolidayRequest struct {
	CountryCode string `json:"country_code"`
	Subdivision string `json:"subdivision"`
	Date        string `json:"date"`
	Name        string `json:"name"`
	Recurring   bool   `json:"recurring"`
}

// =============================================================================
// JOBS
// =============================================================================

// SubmitJobRequest queues a batch of plans.
type SubmitJobRequest struct {
	Plans []factory.PlanJSON `json:"plans"`
	Save  bool               `json:"save"`
}

// JobDTO is the state of a batch job.
type JobDTO struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	Total      int          `json:"total"`
	Done       int          `json:"done"`
	Failed     int          `json:"failed"`
	Save       bool         `json:"save"`
	Error      string       `json:"error,omitempty"`
	Items      []JobItemDTO `json:"items,omitempty"`
	CreatedAt  string       `json:"created_at"`
	StartedAt  string       `json:"started_at,omitempty"`
	FinishedAt string       `json:"finished_at,omitempty"`
}

// JobItemDTO is the outcome of one plan of a job.
type JobItemDTO struct {
	Index         int     `json:"index"`
	Name          string  `json:"name,omitempty"`
	PlanID        string  `json:"plan_id,omitempty"`
	TotalRestDays int     `json:"total_rest_days,omitempty"`
	UsedLeave     float64 `json:"used_leave,omitempty"`
	Score         float64 `json:"score,omitempty"`
	Error         string  `json:"error,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toFloat(a generic.Amount) float64 {
	f, _ := a.Value.Float64()
	return f
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toDayDTO(d timeoff.DayRecord) DayDTO {
	return DayDTO{
		Date:        d.Date.String(),
		Weekday:     d.Date.Weekday().String(),
		BaseKind:    string(d.BaseKind),
		Leave:       string(d.Leave),
		Locked:      d.Locked,
		Imposed:     d.Imposed,
		HolidayName: d.HolidayName,
		Reason:      d.Reason,
		Label:       d.Label(),
	}
}

func toMonthDTO(m timeoff.MonthEfficiency) MonthEfficiencyDTO {
	return MonthEfficiencyDTO{
		Month:      int(m.Month),
		MonthName:  m.Month.String(),
		LeaveDays:  toFloat(m.LeaveDays),
		RestDays:   m.RestDays,
		Efficiency: m.Efficiency,
	}
}

// NewPlanDTO converts a result. withDays adds the full day map.
func NewPlanDTO(result *timeoff.Result, request factory.PlanJSON, withDays bool) PlanDTO {
	dto := PlanDTO{
		Name:              request.Name,
		Year:              result.Year,
		CountryCode:       result.CountryCode,
		Subdivision:       result.Subdivision,
		LeaveBudget:       toFloat(result.LeaveBudget),
		MinRest:           result.MinRest,
		TotalRestDays:     result.TotalRestDays,
		UsedLeaveDays:     toFloat(result.UsedLeaveDays),
		UnusedLeaveDays:   toFloat(result.UnusedLeaveDays),
		Score:             result.Score,
		EfficiencyRanking: []MonthEfficiencyDTO{},
		RestDaysByMonth:   result.RestDaysByMonth,
		RestPeriods:       make([]RestPeriodDTO, 0, len(result.RestPeriods)),
		LeaveDays:         []DayDTO{},
		Request:           request,
	}

	if result.BestMonth != nil {
		best := toMonthDTO(*result.BestMonth)
		dto.BestMonth = &best
	}
	for _, m := range result.EfficiencyRanking {
		dto.EfficiencyRanking = append(dto.EfficiencyRanking, toMonthDTO(m))
	}

	for _, p := range result.RestPeriods {
		leave := 0
		for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
			if rec, ok := result.Day(d); ok && rec.Leave != timeoff.LeaveNone {
				leave++
			}
		}
		dto.RestPeriods = append(dto.RestPeriods, RestPeriodDTO{
			Start:      p.Start.String(),
			End:        p.End.String(),
			Days:       p.Days,
			Qualifying: p.Days >= result.MinRest,
			LeaveDays:  leave,
		})
	}

	for _, d := range result.LeaveDays() {
		dto.LeaveDays = append(dto.LeaveDays, toDayDTO(d))
	}
	if withDays {
		dto.Days = make([]DayDTO, 0, len(result.Days))
		for _, d := range result.Days {
			dto.Days = append(dto.Days, toDayDTO(d))
		}
	}
	return dto
}

func toPlanSummaryDTO(p generic.PlanRecord) PlanSummaryDTO {
	return PlanSummaryDTO{
		ID:            string(p.ID),
		Name:          p.Name,
		Year:          p.Year,
		CountryCode:   p.CountryCode,
		Subdivision:   p.Subdivision,
		LeaveBudget:   toFloat(p.LeaveBudget),
		MinRest:       p.MinRest,
		TotalRestDays: p.TotalRestDays,
		UsedLeave:     toFloat(p.UsedLeave),
		Score:         p.Score,
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

func toHolidayDTO(h generic.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:          string(h.ID),
		CountryCode: h.CountryCode,
		Subdivision: h.Subdivision,
		Date:        h.Date.String(),
		Weekday:     h.Date.Weekday().String(),
		Name:        h.Name,
		Recurring:   h.Recurring,
	}
}
