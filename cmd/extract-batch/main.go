package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/samrosenbaum/v0-cracker-sub004/internal/batch"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/cache"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/extract"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/ingest"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/repository"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/review"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/storage"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/transcribe"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem       = flag.Bool("inmem", false, "use an in-memory SQLite database instead of Postgres")
		dir         = flag.String("dir", "", "directory of documents to process")
		paths       = flag.String("paths", "", "comma-separated storage paths to process")
		caseID      = flag.String("case", "local-batch", "case id attached to review items")
		concurrency = flag.Int("concurrency", 0, "window size (0 = BATCH_CONCURRENCY or default)")
	)
	flag.Parse()

	if *dir == "" && *paths == "" {
		printError("Error: --dir or --paths is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := common.LoadConfig()

	docs, err := collectPaths(*dir, *paths, logger)
	if err != nil {
		logger.Error("collecting input paths", "error", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		logger.Warn("nothing to process", "dir", *dir)
		return
	}

	store, cleanup, err := openStore(ctx, cfg, *inmem, logger)
	if err != nil {
		logger.Error("failed to open document store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	downloader, err := openDownloader(ctx, cfg, *dir, logger)
	if err != nil {
		logger.Error("failed to configure storage", "error", err)
		os.Exit(1)
	}

	router := extract.NewRouter(extract.Config{OCR: cfg.OCR}, logger,
		extract.WithDownloader(downloader),
		extract.WithTranscriber(transcribe.NewClient(cfg.Transcribe, logger)),
	)
	service := cache.NewService(router, store, logger)
	dispatcher := review.NewDispatcher(store, logger)
	orchestrator := batch.NewOrchestrator(service, logger)

	c := *concurrency
	if c <= 0 {
		c = cfg.Batch.Concurrency
	}
	results := orchestrator.ExtractMany(ctx, docs, c)

	var reviewed, failed int
	for path, res := range results {
		if res.Error != "" {
			failed++
		}
		if res.NeedsReview {
			if dispatcher.Dispatch(ctx, *caseID, path, res) {
				reviewed++
			}
		}
	}

	logger.Info("batch complete",
		"documents", len(results), "failed", failed, "queued_for_review", reviewed)
}

// collectPaths merges the --paths list with a recursive scan of --dir.
func collectPaths(dir, list string, logger *slog.Logger) ([]string, error) {
	var out []string
	for _, p := range strings.Split(list, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if dir == "" {
		return out, nil
	}
	keys, stats, err := ingest.ScanDirectory(dir)
	if err != nil {
		return nil, err
	}
	logger.Info("scanned directory",
		"dir", dir, "matched", stats.Matched, "skipped", stats.Skipped)
	return append(out, keys...), nil
}

type combinedStore interface {
	repository.DocumentStore
	repository.ReviewStore
}

func openStore(ctx context.Context, cfg *common.Config, inmem bool, logger *slog.Logger) (combinedStore, func(), error) {
	if inmem {
		lite, err := repository.OpenSQLite(ctx, ":memory:", logger)
		if err != nil {
			return nil, nil, err
		}
		return lite, func() { _ = lite.Close() }, nil
	}
	if cfg.Database.DSN == "" {
		return nil, nil, fmt.Errorf("DB_URL is required (or pass --inmem)")
	}
	pool, err := repository.OpenPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewPostgresStore(pool, logger), pool.Close, nil
}

func openDownloader(ctx context.Context, cfg *common.Config, dir string, logger *slog.Logger) (storage.Downloader, error) {
	if dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		return storage.NewLocalDir(abs), nil
	}
	if cfg.Storage.LocalRoot != "" {
		return storage.NewLocalDir(cfg.Storage.LocalRoot), nil
	}
	return storage.NewS3Client(ctx, cfg.Storage, logger)
}
