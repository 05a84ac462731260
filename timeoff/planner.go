package timeoff

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/rest-planner/generic"
	"github.com/warp/rest-planner/holidays"
	"go.uber.org/zap"
)

// =============================================================================
// PLANNER - Classify, optimize, segment, summarize
// =============================================================================

// Planner runs the full pipeline. It holds no per-plan state and is safe
// for concurrent use as long as its Provider is.
type Planner struct {
	holidays holidays.Provider
	logger   *zap.Logger
}

func NewPlanner(provider holidays.Provider, logger *zap.Logger) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Planner{holidays: provider, logger: logger}
}

// Plan resolves the holidays of the request's region and returns the
// optimized plan. On any error no result is returned.
func (p *Planner) Plan(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	country, sub := holidays.NormalizeRegion(req.CountryCode, req.Subdivision)
	if country == "" {
		return nil, &generic.ConfigError{Field: "country_code", Message: "is required"}
	}
	req.CountryCode, req.Subdivision = country, sub

	set, err := p.holidays.HolidaysFor(ctx, country, sub, req.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve holidays: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := Run(req, set)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Plan optimized",
		zap.Int("year", req.Year),
		zap.String("country", country),
		zap.String("subdivision", sub),
		zap.String("budget", req.LeaveBudget.Value.String()),
		zap.String("used", result.UsedLeaveDays.Value.String()),
		zap.Int("rest_days", result.TotalRestDays),
		zap.Int("rest_periods", len(result.RestPeriods)),
		zap.Float64("score", result.Score),
		zap.Duration("took", time.Since(started)))
	return result, nil
}

// Run executes the pipeline against an explicit holiday set. It is pure:
// the same inputs always give the same result.
func Run(req Request, hols generic.HolidaySet) (*Result, error) {
	days, err := Classify(req, hols)
	if err != nil {
		return nil, err
	}
	alloc, err := Optimize(days, req.LeaveBudget, req.MinRest)
	if err != nil {
		return nil, err
	}
	periods := Segment(alloc.Days)
	summary := Summarize(alloc.Days, periods, req.LeaveBudget, req.MinRest)

	return &Result{
		Year:              req.Year,
		CountryCode:       req.CountryCode,
		Subdivision:       req.Subdivision,
		LeaveBudget:       req.LeaveBudget,
		MinRest:           req.MinRest,
		Days:              alloc.Days,
		RestPeriods:       periods,
		TotalRestDays:     summary.TotalRestDays,
		UsedLeaveDays:     summary.UsedLeaveDays,
		UnusedLeaveDays:   summary.UnusedLeaveDays,
		Score:             summary.Score,
		BestMonth:         summary.BestMonth,
		EfficiencyRanking: summary.EfficiencyRanking,
		RestDaysByMonth:   summary.RestDaysByMonth,
	}, nil
}
