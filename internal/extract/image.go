package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

// A word below this confidence (tesseract scale, 0-100) is a candidate
// uncertain segment.
const wordConfidenceThreshold = 60

// overallReviewThreshold flags whole-image OCR results for review.
const overallReviewThreshold = 0.75

// Short glue words are not worth a reviewer's time even when the engine is
// unsure about them.
var ocrStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "of": {}, "to": {}, "in": {}, "and": {},
	"or": {}, "is": {}, "at": {}, "on": {}, "it": {}, "as": {}, "be": {},
}

// tsvWord is one level-5 row of tesseract's TSV output.
type tsvWord struct {
	block, par, line         int
	left, top, width, height int
	conf                     float64
	text                     string
}

// extractImage runs tesseract once in TSV mode, which yields the text, the
// per-word confidences, and the word bounding boxes in a single pass.
func (r *Router) extractImage(ctx context.Context, path string, data []byte) ExtractionResult {
	tmp, cleanup, err := writeTempFile(data, filepath.Ext(path))
	if err != nil {
		return failureResult(constants.MethodOCR, common.CodeOCRFailed, err.Error())
	}
	defer cleanup()

	args := []string{tmp, "stdout", "-l", r.cfg.OCR.TesseractLang}
	if r.cfg.OCR.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(r.cfg.OCR.PSM))
	}
	if r.cfg.OCR.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(r.cfg.OCR.OEM))
	}
	if r.cfg.OCR.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.OCR.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := r.runner.Run(ctx, r.cfg.OCR.Tesseract, args...)
	if err != nil {
		return failureResult(constants.MethodOCR, common.CodeOCRFailed,
			fmt.Sprintf("tesseract: %v: %s", err, truncate(string(errb), 512)))
	}

	words := parseTSVWords(string(out))
	if len(words) == 0 {
		return ExtractionResult{
			Text:        PlaceholderNoText,
			Method:      constants.MethodOCR,
			Confidence:  0.1,
			NeedsReview: true,
			Metadata:    map[string]any{"words": 0},
		}
	}

	text := joinWords(words)
	overall := meanConfidence(words)
	segments := uncertainSegments(words)

	return ExtractionResult{
		Text:              text,
		Method:            constants.MethodOCR,
		Confidence:        overall,
		NeedsReview:       overall < overallReviewThreshold || len(segments) > 0,
		UncertainSegments: segments,
		Metadata: map[string]any{
			"words":          len(words),
			"uncertainWords": len(segments),
		},
	}
}

// parseTSVWords keeps only level-5 (word) rows with a real confidence.
// TSV columns: level page block par line word left top width height conf text.
func parseTSVWords(tsv string) []tsvWord {
	var words []tsvWord
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[0] != "5" {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		words = append(words, tsvWord{
			block:  atoiDefault(cols[2]),
			par:    atoiDefault(cols[3]),
			line:   atoiDefault(cols[4]),
			left:   atoiDefault(cols[6]),
			top:    atoiDefault(cols[7]),
			width:  atoiDefault(cols[8]),
			height: atoiDefault(cols[9]),
			conf:   conf,
			text:   text,
		})
	}
	return words
}

func atoiDefault(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

// joinWords rebuilds running text: spaces within a line, newlines across
// lines and paragraphs.
func joinWords(words []tsvWord) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			prev := words[i-1]
			if w.block != prev.block || w.par != prev.par || w.line != prev.line {
				sb.WriteByte('\n')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(w.text)
	}
	return sb.String()
}

func meanConfidence(words []tsvWord) float64 {
	var sum float64
	for _, w := range words {
		sum += w.conf
	}
	return sum / float64(len(words)) / 100.0
}

// uncertainSegments flags words that are both low-confidence and important
// enough to warrant targeted correction.
func uncertainSegments(words []tsvWord) []UncertainSegment {
	var segs []UncertainSegment
	for i, w := range words {
		if w.conf >= wordConfidenceThreshold {
			continue
		}
		if !importantWord(w.text) {
			continue
		}
		segs = append(segs, UncertainSegment{
			Text:       w.text,
			Confidence: w.conf / 100.0,
			Position:   BoundingBox{X: w.left, Y: w.top, Width: w.width, Height: w.height},
			WordIndex:  i,
		})
	}
	return segs
}

func importantWord(w string) bool {
	if len(w) < 2 {
		return false
	}
	_, stop := ocrStopwords[strings.ToLower(w)]
	return !stop
}

// writeTempFile spills a buffer to disk for engines that only take paths.
func writeTempFile(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp("", "vc-extract-*"+ext)
	if err != nil {
		return "", nil, fmt.Errorf("temp file: %w", err)
	}
	name := f.Name()
	cleanup := func() { _ = os.Remove(name) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return name, cleanup, nil
}
