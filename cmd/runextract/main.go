package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/extract"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/transcribe"
)

// runextract extracts a single file and prints the result JSON to stdout.
// It never touches a database; use it to eyeball what the pipeline makes of
// one document.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "runextract <file-path>")
		os.Exit(2)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	router := extract.NewRouter(extract.Config{OCR: cfg.OCR}, logger,
		extract.WithTranscriber(transcribe.NewClient(cfg.Transcribe, logger)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	res := router.Extract(ctx, filepath.Base(path), data)
	dur := time.Since(start)

	logger.Info("extraction finished",
		"path", path, "method", res.Method, "confidence", res.Confidence,
		"words", res.WordCount(), "needs_review", res.NeedsReview,
		"duration_ms", dur.Milliseconds())

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Error("marshal result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if res.Error != "" {
		os.Exit(1)
	}
}
