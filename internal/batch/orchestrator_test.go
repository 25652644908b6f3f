package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub004/internal/extract"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gaugeExtractor records the peak number of concurrent Extract calls.
type gaugeExtractor struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	delay    time.Duration
}

func (g *gaugeExtractor) Extract(_ context.Context, path string, _ []byte) extract.ExtractionResult {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.peak {
		g.peak = g.inFlight
	}
	g.mu.Unlock()

	time.Sleep(g.delay)

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()

	return extract.ExtractionResult{Text: "text for " + path, Confidence: 1.0}
}

func TestExtractManyBoundedConcurrency(t *testing.T) {
	engine := &gaugeExtractor{delay: 10 * time.Millisecond}
	o := NewOrchestrator(engine, testLogger())

	paths := make([]string, 8)
	for i := range paths {
		paths[i] = fmt.Sprintf("doc-%d.txt", i)
	}

	results := o.ExtractMany(context.Background(), paths, 3)

	if len(results) != len(paths) {
		t.Fatalf("results = %d, want %d", len(results), len(paths))
	}
	for _, p := range paths {
		res, ok := results[p]
		if !ok {
			t.Errorf("missing result for %s", p)
			continue
		}
		if res.Text != "text for "+p {
			t.Errorf("result for %s = %q", p, res.Text)
		}
	}
	if engine.peak > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", engine.peak)
	}
}

func TestExtractManyDefaultConcurrency(t *testing.T) {
	engine := &gaugeExtractor{delay: 5 * time.Millisecond}
	o := NewOrchestrator(engine, testLogger())

	paths := []string{"a", "b", "c", "d", "e", "f", "g"}
	results := o.ExtractMany(context.Background(), paths, 0)

	if len(results) != len(paths) {
		t.Fatalf("results = %d", len(results))
	}
	if engine.peak > DefaultConcurrency {
		t.Errorf("peak concurrency = %d, want <= %d", engine.peak, DefaultConcurrency)
	}
}

func TestExtractManyEmptyInput(t *testing.T) {
	o := NewOrchestrator(&gaugeExtractor{}, testLogger())
	results := o.ExtractMany(context.Background(), nil, 3)
	if results == nil || len(results) != 0 {
		t.Errorf("results = %v", results)
	}
}

func TestExtractManyCancelledContext(t *testing.T) {
	engine := &gaugeExtractor{}
	o := NewOrchestrator(engine, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := o.ExtractMany(ctx, []string{"a", "b"}, 1)
	if len(results) != 0 {
		t.Errorf("cancelled run produced %d results", len(results))
	}
}
