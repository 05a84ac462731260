package timeoff

import (
	"context"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// BatchItem is the outcome of one request of a batch. Exactly one of
// Result and Err is set.
type BatchItem struct {
	Index   int
	Request Request
	Result  *Result
	Err     error
}

// PlanAll plans every request with up to workers plans in flight
// (workers <= 0 means one per CPU). Each plan works on its own calendar;
// nothing is shared between them but the holiday provider. Items come
// back in request order. Requests not started before ctx is done get
// ctx.Err().
func (p *Planner) PlanAll(ctx context.Context, reqs []Request, workers int) []BatchItem {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	items := make([]BatchItem, len(reqs))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, req := range reqs {
		items[i] = BatchItem{Index: i, Request: req}

		select {
		case <-ctx.Done():
			items[i].Err = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return
			}
			items[i].Result, items[i].Err = p.Plan(ctx, req)
		}(i, req)
	}
	wg.Wait()

	failed := 0
	for _, it := range items {
		if it.Err != nil {
			failed++
		}
	}
	p.logger.Debug("Batch planned",
		zap.Int("requests", len(reqs)),
		zap.Int("failed", failed),
		zap.Int("workers", workers))
	return items
}
