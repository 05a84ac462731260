package holidays

import (
	"context"
	"errors"

	"github.com/warp/rest-planner/generic"
	"go.uber.org/zap"
)

// Chain asks each provider in turn and returns the first answer.
// Unknown-region answers fall through silently; other failures are
// logged and fall through as well.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

var _ Provider = (*Chain)(nil)

func (c *Chain) HolidaysFor(ctx context.Context, countryCode, subdivision string, year int) (generic.HolidaySet, error) {
	var lastErr error
	for i, p := range c.providers {
		set, err := p.HolidaysFor(ctx, countryCode, subdivision, year)
		if err == nil {
			return set, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return generic.HolidaySet{}, ctxErr
		}
		if !errors.Is(err, generic.ErrUnsupportedRegion) {
			c.logger.Warn("Holiday provider failed, trying next",
				zap.Int("provider", i),
				zap.String("country", countryCode),
				zap.String("subdivision", subdivision),
				zap.Int("year", year),
				zap.Error(err))
		}
		lastErr = err
	}

	if lastErr != nil && errors.Is(lastErr, generic.ErrUnsupportedRegion) {
		return generic.HolidaySet{}, lastErr
	}
	return generic.HolidaySet{}, &generic.RegionError{
		CountryCode: countryCode,
		Subdivision: subdivision,
		Cause:       lastErr,
	}
}

func (c *Chain) Regions() []Region {
	return Regions(c.providers...)
}
