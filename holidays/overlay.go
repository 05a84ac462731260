package holidays

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/rest-planner/generic"
	"go.uber.org/zap"
)

// Overlay adds the custom holidays of a HolidayStore on top of a base
// provider. Custom names win on shared dates. A region unknown to the base
// provider is still served when the store holds custom holidays for it.
type Overlay struct {
	base   Provider
	store  generic.HolidayStore
	logger *zap.Logger
}

func NewOverlay(base Provider, store generic.HolidayStore, logger *zap.Logger) *Overlay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Overlay{base: base, store: store, logger: logger}
}

var _ Provider = (*Overlay)(nil)

func (o *Overlay) HolidaysFor(ctx context.Context, countryCode, subdivision string, year int) (generic.HolidaySet, error) {
	base, baseErr := o.base.HolidaysFor(ctx, countryCode, subdivision, year)
	if baseErr != nil && !errors.Is(baseErr, generic.ErrUnsupportedRegion) {
		return generic.HolidaySet{}, baseErr
	}

	custom, err := o.store.CustomHolidays(ctx, countryCode, subdivision, year)
	if err != nil {
		return generic.HolidaySet{}, fmt.Errorf("failed to load custom holidays: %w", err)
	}

	if baseErr != nil {
		if len(custom) == 0 {
			return generic.HolidaySet{}, baseErr
		}
		o.logger.Debug("Serving region from custom holidays only",
			zap.String("country", countryCode),
			zap.String("subdivision", subdivision),
			zap.Int("custom", len(custom)))
		return generic.NewHolidaySet(custom...), nil
	}
	return base.Merge(generic.NewHolidaySet(custom...)), nil
}

func (o *Overlay) Regions() []Region {
	return Regions(o.base)
}
