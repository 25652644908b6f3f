package extract

import (
	"github.com/samrosenbaum/v0-cracker-sub004/internal/structured"
)

// PlaceholderNoText is returned as the result text when extraction succeeded
// mechanically but yielded nothing meaningful.
const PlaceholderNoText = "[No extractable text found]"

// BoundingBox locates an OCR word on the source image, in pixels.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// UncertainSegment is one OCR-flagged token below the trust threshold,
// carrying its own location and confidence for targeted human correction.
// Created only by the OCR strategy; never mutated after creation.
type UncertainSegment struct {
	Text         string      `json:"text"`
	Confidence   float64     `json:"confidence"`
	Position     BoundingBox `json:"position"`
	Alternatives []string    `json:"alternatives,omitempty"`
	WordIndex    int         `json:"wordIndex"`
}

// ExtractionResult is the central artifact of the pipeline. Every strategy
// returns one; none of them propagate errors to the caller.
//
// Invariants: Confidence is always within [0,1]; NeedsReview is true whenever
// Confidence < 0.5, UncertainSegments is non-empty, or Error is set; Method
// names the strategy whose output is actually returned, after any fallback.
type ExtractionResult struct {
	Text              string             `json:"text"`
	Method            string             `json:"method"`
	Confidence        float64            `json:"confidence"`
	PageCount         int                `json:"pageCount,omitempty"`
	Error             string             `json:"error,omitempty"`
	NeedsReview       bool               `json:"needsReview"`
	UncertainSegments []UncertainSegment `json:"uncertainSegments,omitempty"`
	StructuredData    *structured.Data   `json:"structuredData,omitempty"`
	Metadata          map[string]any     `json:"metadata,omitempty"`
}

// WordCount returns the whitespace-token count of the extracted text,
// excluding the empty-text placeholder.
func (r *ExtractionResult) WordCount() int {
	if r.Text == "" || r.Text == PlaceholderNoText {
		return 0
	}
	n := 0
	inWord := false
	for _, c := range r.Text {
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
