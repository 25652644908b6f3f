// Package extract turns heterogeneous source files into normalized text with
// an honest confidence signal. The Router inspects the file extension, picks
// a strategy, and always returns an ExtractionResult: strategy errors,
// storage failures, and panics all become failure results, never Go errors.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/storage"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/structured"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/transcribe"
)

// Transcriber is the speech-to-text collaborator boundary.
type Transcriber interface {
	Configured() bool
	Transcribe(ctx context.Context, filename string, data []byte) (transcribe.Transcription, error)
}

// Config carries the engine settings the strategies need.
type Config struct {
	OCR common.OCRConfig
}

// Router dispatches extraction by file extension.
type Router struct {
	cfg         Config
	runner      Runner
	store       storage.Downloader
	transcriber Transcriber
	logger      *slog.Logger
}

// Option mutates a Router during construction.
type Option func(*Router)

// WithRunner substitutes the external-command runner (tests).
func WithRunner(r Runner) Option {
	return func(rt *Router) { rt.runner = r }
}

// WithDownloader sets the storage collaborator used to resolve paths when no
// byte buffer is supplied.
func WithDownloader(d storage.Downloader) Option {
	return func(rt *Router) { rt.store = d }
}

// WithTranscriber sets the speech-to-text collaborator.
func WithTranscriber(t Transcriber) Option {
	return func(rt *Router) { rt.transcriber = t }
}

func NewRouter(cfg Config, logger *slog.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OCR.Tesseract == "" {
		cfg.OCR.Tesseract = "tesseract"
	}
	if cfg.OCR.TesseractLang == "" {
		cfg.OCR.TesseractLang = "eng"
	}
	r := &Router{cfg: cfg, runner: execRunner{}, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract routes path (used only for its extension) plus a byte buffer to
// exactly one strategy. A nil buffer is resolved through the storage
// collaborator first; that download is the only work permitted to
// short-circuit dispatch, and its failure is still returned as a result.
func (r *Router) Extract(ctx context.Context, path string, data []byte) (res ExtractionResult) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("extraction panicked", "path", path, "panic", rec)
			res = r.finalize(failureResult("", common.CodeExtractionPanic, fmt.Sprintf("%v", rec)))
		}
	}()

	if data == nil {
		var err error
		data, err = r.download(ctx, path)
		if err != nil {
			r.logger.Error("storage download failed", "path", path, "error", err)
			return r.finalize(failureResult("", common.CodeStorageDownloadFailed, err.Error()))
		}
	}

	ext := constants.NormalizeExt(filepath.Ext(path))
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res = r.extractPDF(ctx, data)
	case constants.IMAGE:
		res = r.extractImage(ctx, path, data)
	case constants.AUDIO:
		res = r.extractAudio(ctx, path, data)
	case constants.TEXT:
		res = r.extractPlainText(data)
	case constants.CSV:
		res = r.extractCSV(path, data)
	case constants.DOCX:
		res = r.extractDocx(data)
	case constants.DOC:
		res = failureResult(constants.MethodUnsupported, common.CodeUnsupportedFormat,
			"legacy .doc is not supported; convert the file to .docx and re-upload")
	case constants.SPREADSHEET:
		res = r.extractSpreadsheet(path, data)
	default:
		r.logger.Warn("unsupported extension", "path", path, "ext", ext)
		res = failureResult(constants.MethodUnsupported, common.CodeUnsupportedFormat,
			fmt.Sprintf("no extractor for extension %q", ext))
	}
	return r.finalize(res)
}

func (r *Router) download(ctx context.Context, path string) ([]byte, error) {
	if r.store == nil {
		return nil, fmt.Errorf("no storage collaborator configured and no buffer supplied")
	}
	return r.store.Download(ctx, path)
}

// finalize applies the result invariants: confidence clamped to [0,1],
// needsReview derived, structured facts mined from any meaningful text.
func (r *Router) finalize(res ExtractionResult) ExtractionResult {
	if res.Confidence < 0 {
		res.Confidence = 0
	}
	if res.Confidence > 1 {
		res.Confidence = 1
	}
	if res.Confidence < 0.5 || len(res.UncertainSegments) > 0 || res.Error != "" {
		res.NeedsReview = true
	}
	if res.Text != "" && res.Text != PlaceholderNoText {
		mined := structured.Extract(res.Text)
		if res.StructuredData != nil && len(res.StructuredData.Tables) > 0 {
			mined.Tables = res.StructuredData.Tables
		}
		res.StructuredData = mined
	}
	return res
}

// failureResult builds the canonical zero-confidence failure shape. The code
// prefix in Error and metadata errorCode are matched by persistence logic.
func failureResult(method, code, message string) ExtractionResult {
	return ExtractionResult{
		Text:        "",
		Method:      method,
		Confidence:  0,
		Error:       code + ": " + message,
		NeedsReview: true,
		Metadata:    map[string]any{"errorCode": code},
	}
}
