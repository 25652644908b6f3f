// Package batch runs extraction over many documents in sequential windows of
// bounded size: a window of up to C paths runs concurrently, and the next
// window starts only after every member of the current one has finished.
package batch

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/samrosenbaum/v0-cracker-sub004/internal/extract"
)

// DefaultConcurrency is the window size used when the caller passes 0.
const DefaultConcurrency = 3

// Extractor is the per-document engine boundary.
type Extractor interface {
	Extract(ctx context.Context, path string, data []byte) extract.ExtractionResult
}

// Orchestrator fans a path list out to the extractor window by window.
type Orchestrator struct {
	engine Extractor
	logger *slog.Logger
}

func NewOrchestrator(engine Extractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{engine: engine, logger: logger}
}

// ExtractMany processes paths in windows of at most concurrency documents
// and returns a result per path. Individual failures are already encoded in
// the results; only context cancellation stops the run early, and the
// partial map gathered so far is still returned.
func (o *Orchestrator) ExtractMany(ctx context.Context, paths []string, concurrency int) map[string]extract.ExtractionResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make(map[string]extract.ExtractionResult, len(paths))
	var mu sync.Mutex

	for start := 0; start < len(paths); start += concurrency {
		if ctx.Err() != nil {
			o.logger.Warn("batch cancelled", "done", len(results), "total", len(paths))
			return results
		}
		end := start + concurrency
		if end > len(paths) {
			end = len(paths)
		}
		window := paths[start:end]
		o.logger.Info("batch window start",
			"from", start, "size", len(window), "total", len(paths))

		g, wctx := errgroup.WithContext(ctx)
		for _, p := range window {
			path := p
			g.Go(func() error {
				res := o.engine.Extract(wctx, path, nil)
				mu.Lock()
				results[path] = res
				mu.Unlock()
				return nil
			})
		}
		// Workers never return errors; Wait is purely a window barrier.
		_ = g.Wait()
	}
	return results
}
