package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/samrosenbaum/v0-cracker-sub004/constants"
	"github.com/samrosenbaum/v0-cracker-sub004/internal/common"
)

// Non-recoverable reasons. Retrying these with the fallback extractor is
// known to be futile, so the chain halts immediately.
const (
	pdfReasonInvalid    = "invalid"
	pdfReasonMissing    = "missing"
	pdfReasonEncrypted  = "password-protected"
	pdfReasonUnexpected = "unexpected-response"
)

// pdfError is the tagged variant every native-parsing call site returns, so
// the chain's fallback decision is a pattern match rather than string
// sniffing at the decision point.
type pdfError struct {
	reason      string // empty when recoverable
	recoverable bool
	cause       error
}

func (e *pdfError) Error() string {
	if e.reason != "" {
		return fmt.Sprintf("pdf %s: %v", e.reason, e.cause)
	}
	return fmt.Sprintf("pdf: %v", e.cause)
}

func (e *pdfError) Unwrap() error { return e.cause }

// classifyPDFError tags a pdfcpu error at the call site. Anything outside
// the fixed non-recoverable set is recoverable and triggers the fallback.
func classifyPDFError(err error) *pdfError {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "password") || strings.Contains(msg, "encrypt"):
		return &pdfError{reason: pdfReasonEncrypted, cause: err}
	case strings.Contains(msg, "no such file") || strings.Contains(msg, "not found"):
		return &pdfError{reason: pdfReasonMissing, cause: err}
	case strings.Contains(msg, "corrupt") || strings.Contains(msg, "invalid") ||
		strings.Contains(msg, "malformed") || strings.Contains(msg, "xref") ||
		strings.Contains(msg, "header") || strings.Contains(msg, "eof"):
		return &pdfError{reason: pdfReasonInvalid, cause: err}
	case strings.Contains(msg, "unexpected"):
		return &pdfError{reason: pdfReasonUnexpected, cause: err}
	default:
		return &pdfError{recoverable: true, cause: err}
	}
}

// extractPDF runs the two-layer chain: primary per-page extraction via
// pdfcpu, then the whole-document docconv fallback for recoverable errors.
func (r *Router) extractPDF(ctx context.Context, data []byte) ExtractionResult {
	res, perr := r.primaryPDF(ctx, data)
	if perr == nil {
		return res
	}
	if !perr.recoverable {
		f := failureResult(constants.MethodPrimaryPDF, common.CodePDFExtractionFailed, perr.Error())
		f.Metadata["reason"] = perr.reason
		return f
	}

	r.logger.Warn("primary pdf extraction failed, trying fallback", "error", perr.cause)
	fres := r.fallbackPDF(data)
	if fres.Metadata == nil {
		fres.Metadata = map[string]any{}
	}
	fres.Metadata["fallback"] = true
	return fres
}

func (r *Router) primaryPDF(ctx context.Context, data []byte) (ExtractionResult, *pdfError) {
	pctx, perr := openPDF(data)
	if perr != nil {
		return ExtractionResult{}, perr
	}

	var sb strings.Builder
	for page := 1; page <= pctx.PageCount; page++ {
		if err := ctx.Err(); err != nil {
			return ExtractionResult{}, &pdfError{recoverable: true, cause: err}
		}
		text, err := pageContentText(pctx, page)
		if err != nil {
			return ExtractionResult{}, classifyPDFError(err)
		}
		if sb.Len() > 0 && text != "" {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return pdfResult(constants.MethodPrimaryPDF, sb.String(), pctx.PageCount), nil
}

func (r *Router) fallbackPDF(data []byte) ExtractionResult {
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return failureResult(constants.MethodFallbackPDF, common.CodePDFExtractionFailed, err.Error())
	}
	// pdftotext emits a form feed between pages.
	pages := 1 + strings.Count(body, "\f")
	return pdfResult(constants.MethodFallbackPDF, body, pages)
}

// ExtractPDFPage is the page-level variant of the chain. When per-page
// granularity is unavailable (primary engine failed recoverably, or the page
// itself won't parse) it extracts the entire document via the fallback and
// says so in metadata, rather than failing outright.
func (r *Router) ExtractPDFPage(ctx context.Context, path string, data []byte, page int) ExtractionResult {
	if data == nil {
		var err error
		data, err = r.download(ctx, path)
		if err != nil {
			return r.finalize(failureResult("", common.CodeStorageDownloadFailed, err.Error()))
		}
	}

	pctx, perr := openPDF(data)
	if perr != nil {
		if !perr.recoverable {
			f := failureResult(constants.MethodPrimaryPDF, common.CodePDFExtractionFailed, perr.Error())
			f.Metadata["reason"] = perr.reason
			return r.finalize(f)
		}
		return r.finalize(r.wholeDocumentFallback(data, page))
	}

	if page < 1 || page > pctx.PageCount {
		return r.finalize(failureResult(constants.MethodPrimaryPDF, common.CodePDFExtractionFailed,
			fmt.Sprintf("page %d out of range 1..%d", page, pctx.PageCount)))
	}

	text, err := pageContentText(pctx, page)
	if err != nil {
		return r.finalize(r.wholeDocumentFallback(data, page))
	}

	res := pdfResult(constants.MethodPrimaryPDF, text, 1)
	res.PageCount = pctx.PageCount
	res.Metadata["page"] = page
	return r.finalize(res)
}

func (r *Router) wholeDocumentFallback(data []byte, page int) ExtractionResult {
	res := r.fallbackPDF(data)
	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	res.Metadata["fallback"] = true
	res.Metadata["pageGranularity"] = "unavailable"
	res.Metadata["requestedPage"] = page
	return res
}

// PDFPageCount is a lightweight variant of the same initialization path with
// its own fallback to the whole-document extractor's page count.
func (r *Router) PDFPageCount(ctx context.Context, data []byte) (int, error) {
	pctx, perr := openPDF(data)
	if perr == nil {
		return pctx.PageCount, nil
	}
	if !perr.recoverable {
		return 0, perr
	}
	body, _, err := docconv.ConvertPDF(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return 1 + strings.Count(body, "\f"), nil
}

func openPDF(data []byte) (*model.Context, *pdfError) {
	conf := model.NewDefaultConfiguration()
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, classifyPDFError(err)
	}
	return pctx, nil
}

// pageContentText extracts one page's text. The page reader is acquired and
// fully consumed inside this scope on every path.
func pageContentText(pctx *model.Context, page int) (string, error) {
	rd, err := pdfcpu.ExtractPageContent(pctx, page)
	if err != nil {
		return "", err
	}
	stream, err := io.ReadAll(rd)
	if err != nil {
		return "", err
	}
	return contentStreamText(stream), nil
}

// pdfResult builds the result shape shared by primary and fallback,
// applying the confidence heuristic.
func pdfResult(method, text string, pages int) ExtractionResult {
	text = strings.TrimSpace(text)
	res := ExtractionResult{
		Method:    method,
		PageCount: pages,
		Metadata:  map[string]any{"pageCount": pages},
	}
	if text == "" {
		res.Text = PlaceholderNoText
		res.Confidence = 0.1
		res.NeedsReview = true
		return res
	}
	res.Text = text
	res.Confidence = pdfConfidence(len(text), pages)
	return res
}

// pdfConfidence scales trust with text density: roughly 1500 extractable
// characters per page reads as fully confident, floored at 0.4 and capped
// at 0.95 because layout extraction is never certain.
func pdfConfidence(textLen, pages int) float64 {
	if pages < 1 {
		pages = 1
	}
	return min(0.95, max(0.4, float64(textLen)/float64(pages*1500)))
}

// pdfLiteral matches PDF string literals, including escaped parens.
var pdfLiteral = regexp.MustCompile(`\((?:\\.|[^\\)])*\)`)

// contentStreamText recovers show-text operands (Tj, TJ, ') from a decoded
// content stream and normalizes the spacing operators around them.
func contentStreamText(stream []byte) string {
	var sb strings.Builder

	for _, raw := range bytes.Split(stream, []byte{'\n'}) {
		line := bytes.TrimSpace(raw)
		if len(line) == 0 {
			continue
		}
		switch {
		case bytes.HasSuffix(line, []byte("Tj")) || bytes.HasSuffix(line, []byte("TJ")):
			writeLiterals(&sb, line, false)
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			writeLiterals(&sb, line, true)
		case bytes.HasSuffix(line, []byte("Td")) || bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return collapseWhitespace(sb.String())
}

func writeLiterals(sb *strings.Builder, line []byte, newline bool) {
	for _, m := range pdfLiteral.FindAll(line, -1) {
		text := decodePDFLiteral(m[1 : len(m)-1])
		if text == "" {
			continue
		}
		if newline {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
}

// decodePDFLiteral resolves backslash escapes, including octal sequences.
func decodePDFLiteral(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' || i+1 >= len(raw) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := raw[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(e)
		default:
			if e < '0' || e > '7' {
				sb.WriteByte(e)
				break
			}
			val := int(e - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// collapseWhitespace folds runs of spaces and keeps at most single newlines.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	space, nl := false, false
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			nl = true
		case r == ' ' || r == '\t':
			space = true
		default:
			if nl && sb.Len() > 0 {
				sb.WriteByte('\n')
			} else if space && sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			space, nl = false, false
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}
