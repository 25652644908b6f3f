package repository

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := OpenSQLite(context.Background(), ":memory:", logger)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRecord(path, status string) *DocumentRecord {
	return &DocumentRecord{
		StoragePath:    path,
		ExtractedText:  "sample body",
		Method:         "plain-text",
		Confidence:     0.95,
		StructuredData: []byte(`{"phoneNumbers":[]}`),
		Status:         status,
		PageCount:      1,
		WordCount:      2,
		ExtractedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestGetCompletedMiss(t *testing.T) {
	s := openTestStore(t)
	rec, err := s.GetCompleted(context.Background(), "nowhere.txt")
	if err != nil {
		t.Fatalf("miss must not error: %v", err)
	}
	if rec != nil {
		t.Errorf("rec = %+v, want nil", rec)
	}
}

func TestSaveAndGetCompleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := sampleRecord("case/doc.txt", "completed")
	if err := s.SaveExtraction(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.GetCompleted(ctx, "case/doc.txt")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out == nil {
		t.Fatal("expected a hit")
	}
	if out.ExtractedText != in.ExtractedText || out.Method != in.Method {
		t.Errorf("round trip mismatch: %+v", out)
	}
	if out.Confidence != in.Confidence || out.WordCount != in.WordCount {
		t.Errorf("numeric fields mismatch: %+v", out)
	}
}

func TestGetCompletedSkipsNonCompleted(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveExtraction(ctx, sampleRecord("case/flagged.png", "needs_review")); err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, err := s.GetCompleted(ctx, "case/flagged.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Errorf("non-completed row served as cache hit: %+v", rec)
	}
}

func TestSaveExtractionUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleRecord("case/doc.txt", "completed")
	if err := s.SaveExtraction(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := sampleRecord("case/doc.txt", "completed")
	second.ExtractedText = "re-extracted body"
	second.Confidence = 0.8
	if err := s.SaveExtraction(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	out, err := s.GetCompleted(ctx, "case/doc.txt")
	if err != nil || out == nil {
		t.Fatalf("get: %v %v", out, err)
	}
	if out.ExtractedText != "re-extracted body" || out.Confidence != 0.8 {
		t.Errorf("upsert did not replace: %+v", out)
	}
}

func TestLegacyTableFallback(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO case_documents (storage_path, extracted_text, extraction_method,
			confidence, structured_data, status, page_count, word_count, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"legacy/old.pdf", "legacy body", "fallback-pdf", 0.7, nil, "completed", 2, 2,
		time.Now().UTC())
	if err != nil {
		t.Fatalf("seed legacy row: %v", err)
	}

	out, err := s.GetCompleted(ctx, "legacy/old.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out == nil || out.ExtractedText != "legacy body" {
		t.Errorf("legacy fallback missed: %+v", out)
	}
}

func TestInsertReviewItem(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	item := &ReviewItem{
		ID:                uuid.New(),
		CaseID:            "case-1",
		DocumentID:        "docs/scan.png",
		ExtractedText:     "smudged",
		Confidence:        0.4,
		Method:            "ocr",
		UncertainSegments: []byte(`[{"text":"smudged"}]`),
		Status:            "pending",
		Priority:          10,
	}
	if err := s.InsertReviewItem(ctx, item); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var count int
	var priority int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(priority) FROM review_queue WHERE case_id = ?`, "case-1").
		Scan(&count, &priority)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 || priority != 10 {
		t.Errorf("count=%d priority=%d", count, priority)
	}
}
