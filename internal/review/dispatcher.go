// Package review routes low-trust extraction results to the human review
// queue with a priority derived from how bad the result is.
package review

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/extract"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/repository"
)

// Dispatcher enqueues review items.
type Dispatcher struct {
	store  repository.ReviewStore
	logger *slog.Logger
}

func NewDispatcher(store repository.ReviewStore, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{store: store, logger: logger}
}

// Priority maps a result to a queue priority, higher is more urgent.
// The rungs are checked in this exact order; the first match wins, so a
// very low confidence outranks any segment count.
func Priority(res extract.ExtractionResult) int {
	segs := len(res.UncertainSegments)
	switch {
	case res.Confidence < 0.5:
		return 10
	case res.Confidence < 0.6:
		return 8
	case segs > 10:
		return 9
	case segs > 5:
		return 7
	case segs > 2:
		return 6
	default:
		return 5
	}
}

// Dispatch enqueues one review item for the result and reports whether the
// item was persisted. Queue failures are logged, never propagated: a broken
// queue must not fail the extraction that produced the result.
func (d *Dispatcher) Dispatch(ctx context.Context, caseID, documentID string, res extract.ExtractionResult) bool {
	var segs []byte
	if len(res.UncertainSegments) > 0 {
		b, err := json.Marshal(res.UncertainSegments)
		if err != nil {
			d.logger.Error("uncertain segments marshal failed", "document", documentID, "error", err)
		} else {
			segs = b
		}
	}

	item := &repository.ReviewItem{
		ID:                uuid.New(),
		CaseID:            caseID,
		DocumentID:        documentID,
		ExtractedText:     res.Text,
		Confidence:        res.Confidence,
		Method:            res.Method,
		UncertainSegments: segs,
		Status:            string(constants.ReviewPending),
		Priority:          Priority(res),
	}
	if err := d.store.InsertReviewItem(ctx, item); err != nil {
		d.logger.Error("review enqueue failed", "document", documentID, "case", caseID, "error", err)
		return false
	}
	d.logger.Info("review item enqueued",
		"document", documentID, "case", caseID,
		"priority", item.Priority, "confidence", res.Confidence)
	return true
}
