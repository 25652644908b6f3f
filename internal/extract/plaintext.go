package extract

import (
	"github.com/samrosenbaum/v0-cracker-sub004/constants"
)

// extractPlainText decodes the buffer as UTF-8 verbatim. Text files carry no
// extraction uncertainty, so confidence is fixed at 1.0 and the content
// round-trips byte for byte.
func (r *Router) extractPlainText(data []byte) ExtractionResult {
	return ExtractionResult{
		Text:       string(data),
		Method:     constants.MethodPlainText,
		Confidence: 1.0,
		Metadata:   map[string]any{"bytes": len(data)},
	}
}
