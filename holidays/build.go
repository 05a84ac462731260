package holidays

import (
	"time"

	"github.com/warp/rest-planner/generic"
	"go.uber.org/zap"
)

// StackOptions describes the provider graph the binaries run with.
type StackOptions struct {
	File     string               // Optional YAML calendars, tried before the built-in rules
	Store    generic.HolidayStore // Optional custom holidays layered on top
	CacheTTL time.Duration
	Logger   *zap.Logger
}

// NewStack builds Cache(Overlay(Chain(File, Rules), Store)). The file and
// overlay stages are skipped when not configured.
func NewStack(opts StackOptions) (*Cache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var base Provider = NewRules()
	if opts.File != "" {
		fp, err := NewFileProvider(opts.File)
		if err != nil {
			return nil, err
		}
		base = NewChain(logger.Named("holidays"), fp, base)
		logger.Info("Loaded holiday file", zap.String("path", opts.File), zap.Int("regions", len(fp.Regions())))
	}
	if opts.Store != nil {
		base = NewOverlay(base, opts.Store, logger.Named("holidays"))
	}
	return NewCache(base, opts.CacheTTL, logger.Named("holidays")), nil
}
