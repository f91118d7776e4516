package sim

import (
	"context"
	"sync"
)

// Factory builds an independent simulator for one replica seed.
type Factory func(seed uint64) (*Simulator, error)

// Batch runs replicas of the same scenario concurrently, replica i seeded
// with seedStart+i. Replicas share nothing, so each result depends only on
// its seed.
type Batch struct {
	factory   Factory
	numRuns   int
	seedStart uint64
}

func NewBatch(f Factory, numRuns int, seedStart uint64) *Batch {
	return &Batch{factory: f, numRuns: numRuns, seedStart: seedStart}
}

func (b *Batch) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, b.numRuns)
	errs := make([]error, b.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < b.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			s, err := b.factory(b.seedStart + uint64(idx))
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = s.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
