package constants

import "strings"

// Format is the family of extraction strategy a file routes to.
type Format string

const (
	Unknown     Format = ""
	PDF         Format = "PDF"
	IMAGE       Format = "IMAGE"
	AUDIO       Format = "AUDIO"
	TEXT        Format = "TEXT"
	DOCX        Format = "DOCX"
	DOC         Format = "DOC"
	SPREADSHEET Format = "SPREADSHEET"
	CSV         Format = "CSV"
)

// Extraction method names. Stored in the documents table and reported in
// every ExtractionResult, so these exact strings are load-bearing.
const (
	MethodPrimaryPDF    = "primary-pdf"
	MethodFallbackPDF   = "fallback-pdf"
	MethodOCR           = "ocr"
	MethodTranscription = "transcription"
	MethodDocx          = "docx"
	MethodSpreadsheet   = "spreadsheet"
	MethodCSV           = "csv"
	MethodPlainText     = "plain-text"
	MethodCached        = "cached"
	MethodUnsupported   = "unsupported"
)

var extToFormat = map[string]Format{
	"pdf":  PDF,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"gif":  IMAGE,
	"bmp":  IMAGE,
	"tiff": IMAGE,
	"webp": IMAGE,
	"mp3":  AUDIO,
	"wav":  AUDIO,
	"m4a":  AUDIO,
	"ogg":  AUDIO,
	"flac": AUDIO,
	"txt":  TEXT,
	"md":   TEXT,
	"log":  TEXT,
	"csv":  CSV,
	"docx": DOCX,
	"doc":  DOC,
	"xlsx": SPREADSHEET,
	"xls":  SPREADSHEET,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the format family for a normalized extension,
// or "" when the extension is unsupported.
func MapExtToFormat(ext string) Format {
	return extToFormat[NormalizeExt(ext)]
}
