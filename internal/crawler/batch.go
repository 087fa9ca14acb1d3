package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urlgrabby/urlgrabby/internal/model"
	"golang.org/x/sync/errgroup"
)

// Batch crawls several independent seeds with bounded concurrency.
// Each seed gets its own Engine instance and therefore its own frontier and
// visited set; crawls never share traversal state.
//
// Design decision: We take an engine factory rather than a single Engine so
// per-seed configuration (site-specific delay, headers) can be applied when
// the crawl for that seed actually starts.
type Batch struct {
	// engineFactory creates the Engine for one seed.
	engineFactory func(seed string) *Engine

	// concurrency is the maximum number of crawls running at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// NewBatch creates a Batch. The factory is called once per seed.
func NewBatch(engineFactory func(seed string) *Engine, opts ...BatchOption) *Batch {
	b := &Batch{
		engineFactory: engineFactory,
		concurrency:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Run crawls every seed and returns the results in seed order.
//
// onEvent, when non-nil, receives every crawl's events tagged with its
// seed. Cancelling ctx stops all running crawls; their partial results are
// still returned. A seed that fails validation aborts the batch, so
// callers should validate seeds up front for friendlier reporting.
//
// Design decision: We use errgroup.SetLimit rather than a hand-rolled
// worker pool because it bounds concurrency correctly with much less code,
// and the group context propagates the first hard failure to every crawl.
func (b *Batch) Run(ctx context.Context, seeds []string, onEvent func(seed string, ev Event)) ([]*model.CrawlResult, error) {
	b.logger.Info("starting batch crawl",
		"total_seeds", len(seeds),
		"concurrency", b.concurrency,
	)

	startTime := time.Now()

	// Results are indexed by seed position to keep output order stable.
	results := make([]*model.CrawlResult, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, seed := range seeds {
		g.Go(func() error {
			engine := b.engineFactory(seed)

			var handler EventHandler
			if onEvent != nil {
				handler = func(ev Event) { onEvent(seed, ev) }
			}

			crawl, err := engine.Start(seed, handler)
			if err != nil {
				return fmt.Errorf("seed %s: %w", seed, err)
			}
			b.logger.Debug("seed crawl started", "seed", seed, "normalized", crawl.SeedURL())

			// Bridge context cancellation to the crawl handle.
			stopWatch := make(chan struct{})
			go func() {
				select {
				case <-ctx.Done():
					crawl.Stop()
				case <-stopWatch:
				}
			}()

			results[i] = crawl.Wait()
			close(stopWatch)
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch crawl finished",
		"duration", time.Since(startTime).String(),
		"total_seeds", len(seeds),
	)

	return results, err
}
