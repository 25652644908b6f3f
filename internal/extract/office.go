package extract

import (
	"bytes"
	"strings"
	"unicode"

	"code.sajari.com/docconv"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

// More warnings than this and the document goes to a reviewer even when the
// body text looks plausible.
const docxWarningLimit = 5

// extractDocx pulls raw text from a .docx archive. docconv surfaces no
// warning channel, so conversion warnings are derived from a garbage-rune
// scan of the output lines.
func (r *Router) extractDocx(data []byte) ExtractionResult {
	body, meta, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return failureResult(constants.MethodDocx, common.CodeOfficeExtractionFailed, err.Error())
	}

	body = strings.TrimSpace(body)
	warnings := scanConversionWarnings(body)

	res := ExtractionResult{
		Method:   constants.MethodDocx,
		Metadata: map[string]any{"warnings": len(warnings)},
	}
	if len(warnings) > 0 {
		res.Metadata["warningSamples"] = warnings[:min(len(warnings), 3)]
	}
	if pages, ok := meta["PageCount"]; ok {
		res.Metadata["reportedPages"] = pages
	}

	switch {
	case body == "":
		res.Text = PlaceholderNoText
		res.Confidence = 0.1
		res.NeedsReview = true
	case len(warnings) > docxWarningLimit:
		res.Text = body
		res.Confidence = 0.85
		res.NeedsReview = true
	case len(warnings) > 0:
		res.Text = body
		res.Confidence = 0.85
	default:
		res.Text = body
		res.Confidence = 0.95
	}
	return res
}

// scanConversionWarnings flags lines whose content suggests a lossy
// conversion: replacement characters, private-use glyphs, stray controls.
func scanConversionWarnings(body string) []string {
	var warnings []string
	for _, line := range strings.Split(body, "\n") {
		if hasGarbageRune(line) {
			warnings = append(warnings, strings.TrimSpace(line))
		}
	}
	return warnings
}

func hasGarbageRune(s string) bool {
	for _, r := range s {
		if r == unicode.ReplacementChar {
			return true
		}
		if r >= 0xE000 && r <= 0xF8FF { // private use area
			return true
		}
		if r < 0x20 && r != '\t' && r != '\r' {
			return true
		}
	}
	return false
}
