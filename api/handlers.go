/*
handlers.go - HTTP API handlers for the rest planner

PURPOSE:
  Exposes the leave optimizer via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the planner, the holiday providers
  and the stores.

ENDPOINTS:
  Plans:
    POST   /api/optimize               Optimize a plan, nothing saved
    POST   /api/plans                  Optimize and save a plan
    GET    /api/plans                  List saved plans (?year=&country=&limit=)
    GET    /api/plans/{id}             Get a saved plan
    DELETE /api/plans/{id}             Delete a saved plan

  Holidays:
    GET    /api/holidays               Resolved calendar (?country=&subdivision=&year=)
    GET    /api/holidays/custom        Custom holidays (?country=)
    POST   /api/holidays/custom        Add a custom holiday
    DELETE /api/holidays/custom/{id}   Remove a custom holiday
    GET    /api/regions                Supported countries and subdivisions

  Jobs:
    POST   /api/jobs                   Queue a batch of plans
    GET    /api/jobs                   List jobs
    GET    /api/jobs/{id}              Job progress and items
    POST   /api/jobs/{id}/cancel       Cancel a job

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Planner: The optimization pipeline
  - Plans / Holidays: Persistence
  - Calendar: Holiday provider used for GET /api/holidays and regions,
    usually the same cache the planner reads through
  - Factory: JSON to timeoff.Request conversion
  - Jobs: Background batch runner

REQUEST FLOW:
  1. Parse HTTP request
  2. Convert to a typed request (factory)
  3. Call domain logic (planner, stores)
  4. Serialize response
  5. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid configuration, malformed JSON
  - 404: Plan, job or custom holiday not found
  - 409: Cancelling a finished job
  - 422: No holiday calendar for the region
  - 503: Job queue full or runner stopped
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - jobs.go: Background batch runner
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/holidays"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner  *timeoff.Planner
	Plans    generic.PlanStore
	Holidays generic.HolidayStore
	Calendar holidays.Provider
	Factory  *factory.PlanFactory
	Jobs     *JobRunner

	logger *zap.Logger
}

// Dependencies wires a Handler. Jobs may be nil, in which case the job
// endpoints answer 503.
type Dependencies struct {
	Planner  *timeoff.Planner
	Plans    generic.PlanStore
	Holidays generic.HolidayStore
	Calendar holidays.Provider
	Factory  *factory.PlanFactory
	Jobs     *JobRunner
	Logger   *zap.Logger
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	f := deps.Factory
	if f == nil {
		f = factory.NewPlanFactory(factory.PlanDefaults{})
	}
	return &Handler{
		Planner:  deps.Planner,
		Plans:    deps.Plans,
		Holidays: deps.Holidays,
		Calendar: deps.Calendar,
		Factory:  f,
		Jobs:     deps.Jobs,
		logger:   logger.Named("api"),
	}
}

// Health reports liveness and, when the plan store supports it, database
// reachability.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if pinger, ok := h.Plans.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Database unreachable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// =============================================================================
// PLAN ENDPOINTS
// =============================================================================

// Optimize runs the planner without saving anything.
// POST /api/optimize
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	pj, req, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	result, err := h.Planner.Plan(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, "Failed to optimize plan", err)
		return
	}

	pj = h.Factory.ToJSON(pj.Name, req)
	pj.CountryCode, pj.Subdivision = result.CountryCode, result.Subdivision
	writeJSON(w, http.StatusOK, NewPlanDTO(result, pj, includeDays(r)))
}

// CreatePlan runs the planner and saves the result.
// POST /api/plans
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pj, req, ok := h.decodePlan(w, r)
	if !ok {
		return
	}

	result, err := h.Planner.Plan(ctx, req)
	if err != nil {
		h.writeDomainError(w, "Failed to optimize plan", err)
		return
	}

	rec, dto, err := NewPlanRecord(h.Factory, req, pj.Name, result, time.Now())
	if err != nil {
		h.writeDomainError(w, "Failed to encode plan", err)
		return
	}
	if err := h.Plans.SavePlan(ctx, rec); err != nil {
		h.writeDomainError(w, "Failed to save plan", err)
		return
	}

	h.logger.Info("Plan saved",
		zap.String("plan_id", string(rec.ID)),
		zap.String("name", rec.Name),
		zap.Int("year", rec.Year),
		zap.String("country", rec.CountryCode))

	if !includeDays(r) {
		dto.Days = nil
	}
	writeJSON(w, http.StatusCreated, dto)
}

// ListPlans returns saved plans, newest first.
// GET /api/plans
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := generic.PlanFilter{CountryCode: strings.ToUpper(q.Get("country"))}

	var err error
	if filter.Year, err = intParam(q.Get("year"), "year"); err != nil {
		h.writeDomainError(w, "Invalid query", err)
		return
	}
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		h.writeDomainError(w, "Invalid query", err)
		return
	}

	plans, err := h.Plans.ListPlans(r.Context(), filter)
	if err != nil {
		h.writeDomainError(w, "Failed to list plans", err)
		return
	}

	dtos := make([]PlanSummaryDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, toPlanSummaryDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": dtos})
}

// GetPlan returns a saved plan exactly as it was served when created.
// GET /api/plans/{id}
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id := generic.PlanID(chi.URLParam(r, "id"))

	rec, err := h.Plans.GetPlan(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get plan", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, rec.ResultJSON)
}

// DeletePlan removes a saved plan.
// DELETE /api/plans/{id}
func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	id := generic.PlanID(chi.URLParam(r, "id"))

	if err := h.Plans.DeletePlan(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete plan", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns the resolved holidays of a region and year,
// custom holidays included.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	country, sub := holidays.NormalizeRegion(q.Get("country"), q.Get("subdivision"))
	if country == "" {
		h.writeDomainError(w, "Invalid query", &generic.ConfigError{Field: "country", Message: "is required"})
		return
	}
	year, err := intParam(q.Get("year"), "year")
	if err != nil {
		h.writeDomainError(w, "Invalid query", err)
		return
	}
	if year == 0 {
		year = time.Now().Year()
	}

	set, err := h.Calendar.HolidaysFor(r.Context(), country, sub, year)
	if err != nil {
		h.writeDomainError(w, "Failed to resolve holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, set.Len())
	for _, hol := range set.Holidays() {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"country_code": country,
		"subdivision":  sub,
		"year":         year,
		"holidays":     dtos,
	})
}

// ListCustomHolidays returns the stored custom holidays.
// GET /api/holidays/custom
func (h *Handler) ListCustomHolidays(w http.ResponseWriter, r *http.Request) {
	country, _ := holidays.NormalizeRegion(r.URL.Query().Get("country"), "")

	list, err := h.Holidays.ListHolidays(r.Context(), country)
	if err != nil {
		h.writeDomainError(w, "Failed to list holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(list))
	for _, hol := range list {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

// CreateCustomHoliday adds a company holiday.
// POST /api/holidays/custom
func (h *Handler) CreateCustomHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.writeDomainError(w, "Invalid request body", &generic.ConfigError{Field: "body", Message: err.Error()})
		return
	}

	country, sub := holidays.NormalizeRegion(req.CountryCode, req.Subdivision)
	if country == "" {
		h.writeDomainError(w, "Invalid holiday", &generic.ConfigError{Field: "country_code", Message: "is required"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeDomainError(w, "Invalid holiday", &generic.ConfigError{Field: "name", Message: "is required"})
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.writeDomainError(w, "Invalid holiday", &generic.ConfigError{Field: "date", Message: err.Error()})
		return
	}

	holiday := generic.Holiday{
		ID:          generic.HolidayID(uuid.NewString()),
		CountryCode: country,
		Subdivision: sub,
		Date:        date,
		Name:        name,
		Recurring:   req.Recurring,
	}
	if err := h.Holidays.SaveHoliday(r.Context(), holiday); err != nil {
		h.writeDomainError(w, "Failed to create holiday", err)
		return
	}
	h.invalidateCalendar()

	h.logger.Info("Custom holiday created",
		zap.String("holiday_id", string(holiday.ID)),
		zap.String("country", country),
		zap.String("subdivision", sub),
		zap.String("date", date.String()))
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteCustomHoliday removes a company holiday.
// DELETE /api/holidays/custom/{id}
func (h *Handler) DeleteCustomHoliday(w http.ResponseWriter, r *http.Request) {
	id := generic.HolidayID(chi.URLParam(r, "id"))

	if err := h.Holidays.DeleteHoliday(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete holiday", err)
		return
	}
	h.invalidateCalendar()

	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// ListRegions returns the regions the calendar can resolve.
// GET /api/regions
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions := holidays.Regions(h.Calendar)
	if regions == nil {
		regions = []holidays.Region{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"regions": regions})
}

// invalidateCalendar drops cached calendars after custom holidays change.
func (h *Handler) invalidateCalendar() {
	if c, ok := h.Calendar.(interface{ Invalidate() }); ok {
		c.Invalidate()
	}
}

// =============================================================================
// JOB ENDPOINTS
// =============================================================================

// SubmitJob queues a batch of plans.
// POST /api/jobs
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Jobs are disabled", nil)
		return
	}

	var body SubmitJobRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeDomainError(w, "Invalid request body", &generic.ConfigError{Field: "body", Message: err.Error()})
		return
	}

	plans := make([]JobPlan, 0, len(body.Plans))
	for i, pj := range body.Plans {
		req, err := h.Factory.FromJSON(pj)
		if err != nil {
			var cfgErr *generic.ConfigError
			if errors.As(err, &cfgErr) {
				err = &generic.ConfigError{Field: fmt.Sprintf("plans[%d].%s", i, cfgErr.Field), Message: cfgErr.Message}
			}
			h.writeDomainError(w, "Invalid plan", err)
			return
		}
		plans = append(plans, JobPlan{Request: req, JSON: pj})
	}

	job, err := h.Jobs.Submit(plans, body.Save)
	if err != nil {
		h.writeDomainError(w, "Failed to queue job", err)
		return
	}
	writeJSON(w, http.StatusAccepted, toJobDTO(job))
}

// ListJobs returns every known job without its items.
// GET /api/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Jobs are disabled", nil)
		return
	}

	jobs := h.Jobs.List()
	dtos := make([]JobDTO, 0, len(jobs))
	for _, j := range jobs {
		j.Items = nil
		dtos = append(dtos, toJobDTO(j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": dtos})
}

// GetJob returns a job with its items.
// GET /api/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Jobs are disabled", nil)
		return
	}

	job, err := h.Jobs.Get(generic.JobID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to get job", err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// CancelJob stops a queued or running job.
// POST /api/jobs/{id}/cancel
func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	if h.Jobs == nil {
		writeError(w, http.StatusServiceUnavailable, "Jobs are disabled", nil)
		return
	}

	job, err := h.Jobs.Cancel(generic.JobID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to cancel job", err)
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(job))
}

// =============================================================================
// HELPERS
// =============================================================================

// decodePlan reads a plan body. On failure the error response is already
// written and ok is false.
func (h *Handler) decodePlan(w http.ResponseWriter, r *http.Request) (factory.PlanJSON, timeoff.Request, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeDomainError(w, "Invalid request body", &generic.ConfigError{Field: "body", Message: err.Error()})
		return factory.PlanJSON{}, timeoff.Request{}, false
	}
	pj, err := factory.DecodePlanJSON(data)
	if err != nil {
		h.writeDomainError(w, "Invalid request body", err)
		return factory.PlanJSON{}, timeoff.Request{}, false
	}
	req, err := h.Factory.FromJSON(pj)
	if err != nil {
		h.writeDomainError(w, "Invalid plan", err)
		return factory.PlanJSON{}, timeoff.Request{}, false
	}
	return pj, req, true
}

// NewPlanRecord builds the stored form of a result. The request is saved
// in its normalized form so it can be replayed through the factory.
func NewPlanRecord(f *factory.PlanFactory, req timeoff.Request, name string, result *timeoff.Result, now time.Time) (generic.PlanRecord, PlanDTO, error) {
	pj := f.ToJSON(name, req)
	pj.CountryCode, pj.Subdivision = result.CountryCode, result.Subdivision

	id := generic.PlanID(uuid.NewString())
	dto := NewPlanDTO(result, pj, true)
	dto.ID = string(id)
	dto.CreatedAt = formatTime(now)

	reqJSON, err := json.Marshal(pj)
	if err != nil {
		return generic.PlanRecord{}, PlanDTO{}, fmt.Errorf("failed to encode request: %w", err)
	}
	resJSON, err := json.Marshal(dto)
	if err != nil {
		return generic.PlanRecord{}, PlanDTO{}, fmt.Errorf("failed to encode result: %w", err)
	}

	return generic.PlanRecord{
		ID:            id,
		Name:          name,
		Year:          result.Year,
		CountryCode:   result.CountryCode,
		Subdivision:   result.Subdivision,
		LeaveBudget:   result.LeaveBudget,
		MinRest:       result.MinRest,
		TotalRestDays: result.TotalRestDays,
		UsedLeave:     result.UsedLeaveDays,
		Score:         result.Score,
		RequestJSON:   string(reqJSON),
		ResultJSON:    string(resJSON),
		CreatedAt:     now,
	}, dto, nil
}

// includeDays reads ?days=; the full day map is served unless it is false.
func includeDays(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("days"))
	return err != nil || v
}

func intParam(s, field string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &generic.ConfigError{Field: field, Message: "must be a non-negative integer"}
	}
	return n, nil
}

// writeDomainError maps domain errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	var cfgErr *generic.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_config", Field: cfgErr.Field, Details: err.Error()})
	case generic.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_request", Details: err.Error()})
	case generic.IsUnsupportedRegion(err):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: message, Code: "unsupported_region", Details: err.Error()})
	case generic.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: message, Code: "not_found", Details: err.Error()})
	case errors.Is(err, ErrJobFinished):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: "conflict", Details: err.Error()})
	case errors.Is(err, ErrQueueFull), errors.Is(err, ErrRunnerStopped):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: message, Code: "unavailable", Details: err.Error()})
	default:
		h.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
