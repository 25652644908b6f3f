package common

import (
	"errors"
	"fmt"
)

// Stable failure codes persisted into ExtractionResult.Error and the
// documents table. Downstream persistence matches on these strings.
const (
	CodeUnsupportedFormat        = "UNSUPPORTED_FORMAT"
	CodeStorageDownloadFailed    = "STORAGE_DOWNLOAD_FAILED"
	CodePDFExtractionFailed      = "PDF_EXTRACTION_FAILED"
	CodeOCRFailed                = "OCR_FAILED"
	CodeTranscriptionFailed      = "TRANSCRIPTION_FAILED"
	CodeTranscriptionUnavailable = "TRANSCRIPTION_UNCONFIGURED"
	CodeOfficeExtractionFailed   = "OFFICE_EXTRACTION_FAILED"
	CodeSpreadsheetFailed        = "SPREADSHEET_EXTRACTION_FAILED"
	CodeCSVFailed                = "CSV_EXTRACTION_FAILED"
	CodeExtractionPanic          = "EXTRACTION_PANIC"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// ErrInvalidInput is the cause attached to configuration validation failures.
var ErrInvalidInput = errors.New("invalid input")

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
