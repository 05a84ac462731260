/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- One-shot optimization and error status mapping
- Saved plan lifecycle
- Custom holidays and calendar cache invalidation
- Batch jobs end to end
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/rest-planner/factory"
	"github.com/warp/rest-planner/holidays"
	"github.com/warp/rest-planner/store/sqlite"
	"github.com/warp/rest-planner/timeoff"
	"go.uber.org/zap/zaptest"
)

type testServer struct {
	*httptest.Server
	handler *Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	calendar := holidays.NewCache(holidays.NewOverlay(holidays.NewRules(), store, logger), time.Hour, logger)
	planner := timeoff.NewPlanner(calendar, logger)
	plans := factory.NewPlanFactory(factory.PlanDefaults{Year: 2025, CountryCode: "FR", MinRest: 3})

	jobs := NewJobRunner(planner, store, plans, logger, JobRunnerConfig{Workers: 1, ChunkSize: 2})
	jobs.Start()
	t.Cleanup(jobs.Stop)

	h := NewHandler(Dependencies{
		Planner:  planner,
		Plans:    store,
		Holidays: store,
		Calendar: calendar,
		Factory:  plans,
		Jobs:     jobs,
		Logger:   logger,
	})
	srv := httptest.NewServer(NewRouter(h, RouterOptions{Logger: logger}))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, handler: h}
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// =============================================================================
// OPTIMIZE
// =============================================================================

func TestOptimize_FranceBaseline(t *testing.T) {
	// GIVEN: A full French year with 25 days of leave
	srv := newTestServer(t)

	// WHEN: Optimizing
	resp := srv.do(t, http.MethodPost, "/api/optimize", `{"leave_budget": 25, "min_rest": 4}`)

	// THEN: The whole budget is placed and every day is returned
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[PlanDTO](t, resp)
	assert.Empty(t, plan.ID)
	assert.Equal(t, 2025, plan.Year)
	assert.Equal(t, "FR", plan.CountryCode)
	assert.Equal(t, 25.0, plan.UsedLeaveDays)
	assert.Equal(t, 0.0, plan.UnusedLeaveDays)
	assert.Len(t, plan.LeaveDays, 25)
	require.Len(t, plan.Days, 365)
	assert.NotNil(t, plan.BestMonth)

	bastille := plan.Days[194]
	assert.Equal(t, "2025-07-14", bastille.Date)
	assert.Equal(t, "HOLIDAY", bastille.BaseKind)
	assert.Equal(t, "Public holiday", bastille.Label)

	// AND: The echoed request carries the defaults that were applied
	require.NotNil(t, plan.Request.MinRest)
	assert.Equal(t, 4, *plan.Request.MinRest)
	assert.Equal(t, "FR", plan.Request.CountryCode)
}

func TestOptimize_WithoutDays(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodPost, "/api/optimize?days=false", `{"leave_budget": 2}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[PlanDTO](t, resp)
	assert.Empty(t, plan.Days)
	assert.Len(t, plan.LeaveDays, 2)
}

func TestOptimize_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
		field  string
	}{
		{"malformed json", `{"leave_budget":`, http.StatusBadRequest, "invalid_config", "body"},
		{"misspelt key", `{"year": 2025, "leave_budgt": 25}`, http.StatusBadRequest, "invalid_config", "body"},
		{"negative budget", `{"leave_budget": -1}`, http.StatusBadRequest, "invalid_config", "leave_budget"},
		{"quarter day budget", `{"leave_budget": 1.25}`, http.StatusBadRequest, "invalid_config", "leave_budget"},
		{"min rest zero", `{"leave_budget": 1, "min_rest": 0}`, http.StatusBadRequest, "invalid_config", "min_rest"},
		{"bad closure", `{"leave_budget": 1, "closures": [{"start": "2025-13-01"}]}`, http.StatusBadRequest, "invalid_config", "closures[0].start"},
		{"unsupported region", `{"leave_budget": 1, "country_code": "ZZ"}`, http.StatusUnprocessableEntity, "unsupported_region", ""},
		{"unsupported subdivision", `{"leave_budget": 1, "country_code": "FR", "subdivision": "99"}`, http.StatusUnprocessableEntity, "unsupported_region", ""},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/optimize", tt.body)

			assert.Equal(t, tt.status, resp.StatusCode)
			errResp := decode[ErrorResponse](t, resp)
			assert.Equal(t, tt.code, errResp.Code)
			assert.Equal(t, tt.field, errResp.Field)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

// =============================================================================
// PLANS
// =============================================================================

func TestPlans_Lifecycle(t *testing.T) {
	// GIVEN: A saved plan
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/plans?days=false", `{"name": "Bridges", "leave_budget": 5, "country_code": "fr-57"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[PlanDTO](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "FR", created.CountryCode)
	assert.Equal(t, "57", created.Subdivision)
	assert.Empty(t, created.Days)

	// WHEN: Fetching it back
	resp = srv.do(t, http.MethodGet, "/api/plans/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stored := decode[PlanDTO](t, resp)

	// THEN: The stored copy is the full result, day map included
	assert.Equal(t, created.ID, stored.ID)
	assert.Equal(t, "Bridges", stored.Name)
	assert.Equal(t, created.TotalRestDays, stored.TotalRestDays)
	assert.Equal(t, created.Score, stored.Score)
	assert.Len(t, stored.Days, 365)
	assert.Equal(t, "57", stored.Request.Subdivision)

	// AND: It is listed
	resp = srv.do(t, http.MethodGet, "/api/plans?country=fr&year=2025", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[map[string][]PlanSummaryDTO](t, resp)
	require.Len(t, list["plans"], 1)
	assert.Equal(t, created.ID, list["plans"][0].ID)
	assert.Equal(t, 5.0, list["plans"][0].UsedLeave)

	// AND: Deleting makes it disappear
	resp = srv.do(t, http.MethodDelete, "/api/plans/"+created.ID, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = srv.do(t, http.MethodGet, "/api/plans/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = srv.do(t, http.MethodDelete, "/api/plans/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlans_ListRejectsBadQuery(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/plans?limit=many", "")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "limit", decode[ErrorResponse](t, resp).Field)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestHolidays_CustomHolidayReachesCalendarAndPlans(t *testing.T) {
	srv := newTestServer(t)
	names := func() []string {
		resp := srv.do(t, http.MethodGet, "/api/holidays?country=FR&year=2025", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[struct {
			Holidays []HolidayDTO `json:"holidays"`
		}](t, resp)
		var out []string
		for _, h := range body.Holidays {
			out = append(out, h.Name)
		}
		return out
	}

	// GIVEN: The calendar is cached before the custom holiday exists
	before := names()
	assert.Len(t, before, 11)
	assert.NotContains(t, before, "Company Day")

	// WHEN: Adding a custom holiday
	resp := srv.do(t, http.MethodPost, "/api/holidays/custom",
		`{"country_code": "fr", "date": "2025-06-02", "name": "Company Day"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[HolidayDTO](t, resp)
	assert.Equal(t, "FR", created.CountryCode)
	assert.Equal(t, "Monday", created.Weekday)

	// THEN: The cache was invalidated
	assert.Contains(t, names(), "Company Day")

	// AND: Plans see it as a holiday
	resp = srv.do(t, http.MethodPost, "/api/optimize", `{"leave_budget": 0}`)
	plan := decode[PlanDTO](t, resp)
	day, ok := dayOf(plan, "2025-06-02")
	require.True(t, ok)
	assert.Equal(t, "HOLIDAY", day.BaseKind)
	assert.Equal(t, "Company Day", day.HolidayName)

	// AND: Deleting removes it again
	resp = srv.do(t, http.MethodDelete, "/api/holidays/custom/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, names(), "Company Day")
	resp = srv.do(t, http.MethodDelete, "/api/holidays/custom/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHolidays_ListCustom(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodPost, "/api/holidays/custom", `{"country_code": "FR", "date": "2025-06-02", "name": "Seminar"}`)
	srv.do(t, http.MethodPost, "/api/holidays/custom", `{"country_code": "DE", "date": "2020-12-24", "name": "Christmas Eve", "recurring": true}`)

	resp := srv.do(t, http.MethodGet, "/api/holidays/custom?country=de", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string][]HolidayDTO](t, resp)
	require.Len(t, body["holidays"], 1)
	assert.Equal(t, "Christmas Eve", body["holidays"][0].Name)
	assert.True(t, body["holidays"][0].Recurring)
}

func TestHolidays_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing country", `{"date": "2025-06-02", "name": "Day"}`, "country_code"},
		{"missing name", `{"country_code": "FR", "date": "2025-06-02", "name": "  "}`, "name"},
		{"bad date", `{"country_code": "FR", "date": "02/06/2025", "name": "Day"}`, "date"},
		{"bad body", `[`, "body"},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := srv.do(t, http.MethodPost, "/api/holidays/custom", tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tt.field, decode[ErrorResponse](t, resp).Field)
		})
	}
}

func TestHolidays_ResolvedCalendarErrors(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/holidays?year=2025", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/holidays?country=ZZ&year=2025", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRegions(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/regions", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string][]holidays.Region](t, resp)
	var codes []string
	for _, r := range body["regions"] {
		codes = append(codes, r.CountryCode)
	}
	assert.Contains(t, codes, "FR")
	assert.Contains(t, codes, "US")
}

// =============================================================================
// JOBS
// =============================================================================

func TestJobs_EndToEnd(t *testing.T) {
	// GIVEN: A batch mixing valid plans and one unsupported region
	srv := newTestServer(t)
	resp := srv.do(t, http.MethodPost, "/api/jobs", `{"save": true, "plans": [
		{"name": "france", "leave_budget": 10},
		{"name": "nowhere", "leave_budget": 10, "country_code": "ZZ"},
		{"name": "germany", "leave_budget": 10, "country_code": "DE", "subdivision": "BY"}
	]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	queued := decode[JobDTO](t, resp)
	require.NotEmpty(t, queued.ID)
	assert.Equal(t, 3, queued.Total)

	// WHEN: The job finishes
	var job JobDTO
	require.Eventually(t, func() bool {
		resp, err := srv.Client().Get(srv.URL + "/api/jobs/" + queued.ID)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			return false
		}
		return JobStatus(job.Status).Terminal()
	}, 10*time.Second, 10*time.Millisecond)

	// THEN: Bad items are recorded without failing the job
	assert.Equal(t, string(JobCompleted), job.Status)
	assert.Equal(t, 3, job.Done)
	assert.Equal(t, 1, job.Failed)
	require.Len(t, job.Items, 3)
	assert.NotEmpty(t, job.Items[0].PlanID)
	assert.Equal(t, 10.0, job.Items[0].UsedLeave)
	assert.Contains(t, job.Items[1].Error, "unsupported region")
	assert.Empty(t, job.Items[1].PlanID)
	assert.NotEmpty(t, job.Items[2].PlanID)

	// AND: The successful plans were saved
	resp = srv.do(t, http.MethodGet, "/api/plans", "")
	list := decode[map[string][]PlanSummaryDTO](t, resp)
	assert.Len(t, list["plans"], 2)

	// AND: The job is listed, and cannot be cancelled any more
	resp = srv.do(t, http.MethodGet, "/api/jobs", "")
	jobs := decode[map[string][]JobDTO](t, resp)
	require.Len(t, jobs["jobs"], 1)
	assert.Empty(t, jobs["jobs"][0].Items)

	resp = srv.do(t, http.MethodPost, "/api/jobs/"+queued.ID+"/cancel", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestJobs_Errors(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/jobs/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/jobs/missing/cancel", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/jobs", `{"plans": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "plans", decode[ErrorResponse](t, resp).Field)

	resp = srv.do(t, http.MethodPost, "/api/jobs", `{"plans": [{"leave_budgt": 1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "body", decode[ErrorResponse](t, resp).Field)

	resp = srv.do(t, http.MethodPost, "/api/jobs", `{"plans": [{"leave_budget": 1}, {"closures": [{"start": "nope"}]}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "plans[1].closures[0].start", decode[ErrorResponse](t, resp).Field)
}

func TestJobs_Disabled(t *testing.T) {
	h := NewHandler(Dependencies{})
	srv := httptest.NewServer(NewRouter(h, RouterOptions{}))
	defer srv.Close()

	resp, err := srv.Client().Post(srv.URL+"/api/jobs", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

// =============================================================================
// HEALTH
// =============================================================================

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func dayOf(plan PlanDTO, date string) (DayDTO, bool) {
	for _, d := range plan.Days {
		if d.Date == date {
			return d, true
		}
	}
	return DayDTO{}, false
}
