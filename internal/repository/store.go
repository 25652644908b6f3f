// Package repository persists extraction results and review-queue rows.
// Two backends implement the same interfaces: Postgres (pgx) for the shared
// deployment and SQLite (modernc) for local or in-memory batch runs.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is one cached extraction, keyed by storage path.
type DocumentRecord struct {
	StoragePath    string
	ExtractedText  string
	Method         string
	Confidence     float64
	StructuredData []byte // JSON, may be nil
	Status         string
	PageCount      int
	WordCount      int
	ExtractedAt    time.Time
}

// ReviewItem is one human-review work item.
type ReviewItem struct {
	ID                uuid.UUID
	CaseID            string
	DocumentID        string
	ExtractedText     string
	Confidence        float64
	Method            string
	UncertainSegments []byte // JSON array, may be nil
	Status            string
	Priority          int
}

// DocumentStore is the cache-store collaborator. GetCompleted performs the
// two-tier lookup: the documents table (completed rows only), then the
// legacy case_documents table. A miss is (nil, nil), not an error.
type DocumentStore interface {
	GetCompleted(ctx context.Context, storagePath string) (*DocumentRecord, error)
	SaveExtraction(ctx context.Context, rec *DocumentRecord) error
}

// ReviewStore is the review-queue collaborator.
type ReviewStore interface {
	InsertReviewItem(ctx context.Context, item *ReviewItem) error
}
