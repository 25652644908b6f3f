package extract

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/structured"
)

const csvConfidence = 0.95

// extractCSV renders a single implicit table the same way the spreadsheet
// extractor renders sheets.
func (r *Router) extractCSV(path string, data []byte) ExtractionResult {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are common in exported case data

	records, err := reader.ReadAll()
	if err != nil {
		return failureResult(constants.MethodCSV, common.CodeCSVFailed, err.Error())
	}

	if len(records) == 0 {
		// The format itself parsed correctly, so this is mid-trust, not zero.
		return ExtractionResult{
			Text:        PlaceholderNoText,
			Method:      constants.MethodCSV,
			Confidence:  0.5,
			NeedsReview: true,
			Metadata:    map[string]any{"rows": 0},
		}
	}

	table := tableFromRows(sheetName(path), records)
	text := strings.TrimSpace(renderRows(table.Headers, table.Rows))
	if text == "" {
		// Header-only file: nothing to analyze beyond the column names.
		text = strings.Join(table.Headers, " | ")
	}

	return ExtractionResult{
		Text:           text,
		Method:         constants.MethodCSV,
		Confidence:     csvConfidence,
		Metadata:       map[string]any{"rows": len(table.Rows)},
		StructuredData: &structured.Data{Tables: []structured.Table{table}},
	}
}
