package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

// OpenPool creates a configured pgx pool.
func OpenPool(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "v0-cracker-extract"

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return pool, nil
}

// PostgresStore implements DocumentStore and ReviewStore on a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewPostgresStore(pool *pgxpool.Pool, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresStore{pool: pool, log: log}
}

const pgSelectDocument = `
SELECT storage_path, extracted_text, extraction_method, confidence,
       structured_data, status, page_count, word_count, extracted_at
FROM documents
WHERE storage_path = $1 AND status = 'completed'`

const pgSelectLegacyDocument = `
SELECT storage_path, extracted_text, extraction_method, confidence,
       structured_data, status, page_count, word_count, extracted_at
FROM case_documents
WHERE storage_path = $1 AND extracted_text <> ''`

func (s *PostgresStore) GetCompleted(ctx context.Context, storagePath string) (*DocumentRecord, error) {
	rec, err := s.selectOne(ctx, pgSelectDocument, storagePath)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return rec, nil
	}
	// Early case files predate the documents table.
	return s.selectOne(ctx, pgSelectLegacyDocument, storagePath)
}

func (s *PostgresStore) selectOne(ctx context.Context, query, storagePath string) (*DocumentRecord, error) {
	var rec DocumentRecord
	err := s.pool.QueryRow(ctx, query, storagePath).Scan(
		&rec.StoragePath, &rec.ExtractedText, &rec.Method, &rec.Confidence,
		&rec.StructuredData, &rec.Status, &rec.PageCount, &rec.WordCount,
		&rec.ExtractedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document %s: %w", storagePath, err)
	}
	return &rec, nil
}

const pgUpsertDocument = `
INSERT INTO documents (storage_path, extracted_text, extraction_method,
                       confidence, structured_data, status, page_count,
                       word_count, extracted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (storage_path) DO UPDATE SET
    extracted_text    = EXCLUDED.extracted_text,
    extraction_method = EXCLUDED.extraction_method,
    confidence        = EXCLUDED.confidence,
    structured_data   = EXCLUDED.structured_data,
    status            = EXCLUDED.status,
    page_count        = EXCLUDED.page_count,
    word_count        = EXCLUDED.word_count,
    extracted_at      = EXCLUDED.extracted_at`

func (s *PostgresStore) SaveExtraction(ctx context.Context, rec *DocumentRecord) error {
	_, err := s.pool.Exec(ctx, pgUpsertDocument,
		rec.StoragePath, rec.ExtractedText, rec.Method, rec.Confidence,
		rec.StructuredData, rec.Status, rec.PageCount, rec.WordCount,
		rec.ExtractedAt,
	)
	if err != nil {
		return fmt.Errorf("save extraction %s: %w", rec.StoragePath, err)
	}
	return nil
}

const pgInsertReviewItem = `
INSERT INTO review_queue (id, case_id, document_id, extracted_text,
                          confidence, extraction_method, uncertain_segments,
                          status, priority)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func (s *PostgresStore) InsertReviewItem(ctx context.Context, item *ReviewItem) error {
	_, err := s.pool.Exec(ctx, pgInsertReviewItem,
		item.ID, item.CaseID, item.DocumentID, item.ExtractedText,
		item.Confidence, item.Method, item.UncertainSegments,
		item.Status, item.Priority,
	)
	if err != nil {
		return fmt.Errorf("insert review item %s: %w", item.DocumentID, err)
	}
	return nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging database")
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}
