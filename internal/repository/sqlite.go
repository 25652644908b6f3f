package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements DocumentStore and ReviewStore on a local or
// in-memory SQLite database, for batch runs without a Postgres deployment.
type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (and bootstraps) a SQLite store. Use ":memory:" for
// throwaway runs.
func OpenSQLite(ctx context.Context, dsn string, log *slog.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	s := &SQLiteStore{db: db, log: log}
	if err := s.bootstrap(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info("sqlite store ready", "dsn", dsn)
	return s, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		storage_path      TEXT PRIMARY KEY,
		extracted_text    TEXT NOT NULL,
		extraction_method TEXT NOT NULL,
		confidence        REAL NOT NULL,
		structured_data   BLOB,
		status            TEXT NOT NULL,
		page_count        INTEGER NOT NULL DEFAULT 0,
		word_count        INTEGER NOT NULL DEFAULT 0,
		extracted_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS case_documents (
		storage_path      TEXT PRIMARY KEY,
		extracted_text    TEXT NOT NULL,
		extraction_method TEXT NOT NULL,
		confidence        REAL NOT NULL,
		structured_data   BLOB,
		status            TEXT NOT NULL,
		page_count        INTEGER NOT NULL DEFAULT 0,
		word_count        INTEGER NOT NULL DEFAULT 0,
		extracted_at      TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS review_queue (
		id                 TEXT PRIMARY KEY,
		case_id            TEXT NOT NULL,
		document_id        TEXT NOT NULL,
		extracted_text     TEXT NOT NULL,
		confidence         REAL NOT NULL,
		extraction_method  TEXT NOT NULL,
		uncertain_segments BLOB,
		status             TEXT NOT NULL,
		priority           INTEGER NOT NULL
	)`,
}

func (s *SQLiteStore) bootstrap(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap sqlite schema: %w", err)
		}
	}
	return nil
}

const liteSelectDocument = `
SELECT storage_path, extracted_text, extraction_method, confidence,
       structured_data, status, page_count, word_count, extracted_at
FROM documents
WHERE storage_path = ? AND status = 'completed'`

const liteSelectLegacyDocument = `
SELECT storage_path, extracted_text, extraction_method, confidence,
       structured_data, status, page_count, word_count, extracted_at
FROM case_documents
WHERE storage_path = ? AND extracted_text <> ''`

func (s *SQLiteStore) GetCompleted(ctx context.Context, storagePath string) (*DocumentRecord, error) {
	rec, err := s.selectOne(ctx, liteSelectDocument, storagePath)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	return s.selectOne(ctx, liteSelectLegacyDocument, storagePath)
}

func (s *SQLiteStore) selectOne(ctx context.Context, query, storagePath string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := s.db.QueryRowContext(ctx, query, storagePath).Scan(
		&rec.StoragePath, &rec.ExtractedText, &rec.Method, &rec.Confidence,
		&rec.StructuredData, &rec.Status, &rec.PageCount, &rec.WordCount,
		&rec.ExtractedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", storagePath, err)
	}
	return &rec, nil
}

const liteUpsertDocument = `
INSERT INTO documents (storage_path, extracted_text, extraction_method,
                       confidence, structured_data, status, page_count,
                       word_count, extracted_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (storage_path) DO UPDATE SET
    extracted_text    = excluded.extracted_text,
    extraction_method = excluded.extraction_method,
    confidence        = excluded.confidence,
    structured_data   = excluded.structured_data,
    status            = excluded.status,
    page_count        = excluded.page_count,
    word_count        = excluded.word_count,
    extracted_at      = excluded.extracted_at`

func (s *SQLiteStore) SaveExtraction(ctx context.Context, rec *DocumentRecord) error {
	_, err := s.db.ExecContext(ctx, liteUpsertDocument,
		rec.StoragePath, rec.ExtractedText, rec.Method, rec.Confidence,
		rec.StructuredData, rec.Status, rec.PageCount, rec.WordCount,
		rec.ExtractedAt,
	)
	if err != nil {
		return fmt.Errorf("save extraction %s: %w", rec.StoragePath, err)
	}
	return nil
}

const liteInsertReviewItem = `
INSERT INTO review_queue (id, case_id, document_id, extracted_text,
                          confidence, extraction_method, uncertain_segments,
                          status, priority)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) InsertReviewItem(ctx context.Context, item *ReviewItem) error {
	_, err := s.db.ExecContext(ctx, liteInsertReviewItem,
		item.ID.String(), item.CaseID, item.DocumentID, item.ExtractedText,
		item.Confidence, item.Method, item.UncertainSegments,
		item.Status, item.Priority,
	)
	if err != nil {
		return fmt.Errorf("insert review item %s: %w", item.DocumentID, err)
	}
	return nil
}
