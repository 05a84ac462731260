// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/rest-planner/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	plans    map[generic.PlanID]generic.PlanRecord
	holidays map[generic.HolidayID]generic.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		plans:    make(map[generic.PlanID]generic.PlanRecord),
		holidays: make(map[generic.HolidayID]generic.Holiday),
	}
}

var (
	_ generic.PlanStore    = (*Memory)(nil)
	_ generic.HolidayStore = (*Memory)(nil)
)

// =============================================================================
// PLANS
// =============================================================================

func (m *Memory) SavePlan(_ context.Context, plan generic.PlanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.ID] = plan
	return nil
}

func (m *Memory) GetPlan(_ context.Context, id generic.PlanID) (*generic.PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	plan, ok := m.plans[id]
	if !ok {
		return nil, generic.ErrPlanNotFound
	}
	return &plan, nil
}

// ListPlans returns newest first.
func (m *Memory) ListPlans(_ context.Context, filter generic.PlanFilter) ([]generic.PlanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []generic.PlanRecord
	for _, p := range m.plans {
		if filter.Year != 0 && p.Year != filter.Year {
			continue
		}
		if filter.CountryCode != "" && p.CountryCode != filter.CountryCode {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *Memory) DeletePlan(_ context.Context, id generic.PlanID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return generic.ErrPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

// =============================================================================
// CUSTOM HOLIDAYS
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.ID] = h
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, id generic.HolidayID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.holidays[id]; !ok {
		return generic.ErrHolidayNotFound
	}
	delete(m.holidays, id)
	return nil
}

func (m *Memory) ListHolidays(_ context.Context, countryCode string) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []generic.Holiday
	for _, h := range m.holidays {
		if countryCode == "" || h.CountryCode == countryCode {
			out = append(out, h)
		}
	}
	sortHolidays(out)
	return out, nil
}

func (m *Memory) CustomHolidays(_ context.Context, countryCode, subdivision string, year int) ([]generic.Holiday, error) {
	m.mu.RLock()
	all := make([]generic.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		all = append(all, h)
	}
	m.mu.RUnlock()

	out := generic.ResolveCustomHolidays(all, countryCode, subdivision, year)
	sortHolidays(out)
	return out, nil
}

func sortHolidays(hs []generic.Holiday) {
	sort.Slice(hs, func(i, j int) bool {
		if !hs[i].Date.Equal(hs[j].Date) {
			return hs[i].Date.Before(hs[j].Date)
		}
		return hs[i].ID < hs[j].ID
	})
}
