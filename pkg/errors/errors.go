// Package errors provides the application error taxonomy for the evidence
// extraction service.
//
// Errors are grouped into categories (file access, acquisition, extraction,
// export, configuration, internal) with stable machine-readable codes. Every
// error carries an optional suggestion and a context map so the CLI can
// render actionable messages, and wraps its cause with a stack trace via
// github.com/pkg/errors.
//
// Note that per-document parse findings (missing fields, invalid IBANs and
// so on) are NOT errors in this package's sense: those are recorded as parse
// error codes on the evidence record itself and never abort processing. This
// package covers failures of the run machinery around the records.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile          ErrorCategory = "file"
	CategoryAcquisition   ErrorCategory = "acquisition"
	CategoryExtraction    ErrorCategory = "extraction"
	CategoryExport        ErrorCategory = "export"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryInternal      ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeDirectoryError ErrorCode = "directory_error"

	// Acquisition errors
	CodePDFUnreadable    ErrorCode = "pdf_unreadable"
	CodeEmptyDocument    ErrorCode = "empty_document"
	CodeUnsupportedInput ErrorCode = "unsupported_input"

	// Extraction errors
	CodePatternCompile ErrorCode = "pattern_compile"
	CodeProcessingError ErrorCode = "processing_error"

	// Export errors
	CodeWriteFailed     ErrorCode = "write_failed"
	CodeWorkbookFailed  ErrorCode = "workbook_failed"
	CodeEncodingFailed  ErrorCode = "encoding_failed"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// EvidenceError is the base error type for all application errors
type EvidenceError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *EvidenceError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *EvidenceError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *EvidenceError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryAcquisition, CategoryExtraction:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryExport, CategoryInternal:
		return 5
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *EvidenceError) WithContext(key string, value interface{}) *EvidenceError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *EvidenceError) WithSuggestion(suggestion string) *EvidenceError {
	e.Suggestion = suggestion
	return e
}

// New creates a new EvidenceError
func New(category ErrorCategory, code ErrorCode, message string) *EvidenceError {
	return &EvidenceError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with EvidenceError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *EvidenceError {
	if err == nil {
		return nil
	}

	return &EvidenceError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *EvidenceError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *EvidenceError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// AcquisitionError creates a text-acquisition error. These are usually
// swallowed into the evidence record rather than returned, but the acquire
// package still reports them through this constructor so callers that do
// want to fail fast (e.g. a single-file debug invocation) get full context.
func AcquisitionError(code ErrorCode, path string, err error) *EvidenceError {
	var message string
	var suggestion string

	switch code {
	case CodePDFUnreadable:
		message = fmt.Sprintf("unable to read PDF content from %s", path)
		suggestion = "verify the file is a valid PDF and not corrupted or encrypted"
	case CodeEmptyDocument:
		message = fmt.Sprintf("document %s contains no extractable text", path)
		suggestion = "the file may be a scanned image; route it through an OCR step"
	case CodeUnsupportedInput:
		message = fmt.Sprintf("unsupported input file: %s", path)
		suggestion = "convert the document to PDF before processing"
	default:
		message = fmt.Sprintf("acquisition error for %s", path)
		suggestion = "check the input file and try again"
	}

	var result *EvidenceError
	if err != nil {
		result = Wrap(err, CategoryAcquisition, code, message)
	} else {
		result = New(CategoryAcquisition, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ExportError creates an export-related error
func ExportError(code ErrorCode, target string, err error) *EvidenceError {
	var message string
	var suggestion string

	switch code {
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write export file: %s", target)
		suggestion = "check the output directory exists and is writable"
	case CodeWorkbookFailed:
		message = fmt.Sprintf("failed to build XLSX workbook: %s", target)
		suggestion = "check available disk space and retry"
	case CodeEncodingFailed:
		message = fmt.Sprintf("failed to encode export payload: %s", target)
		suggestion = "this is likely a bug; re-run with --verbose and report it"
	default:
		message = fmt.Sprintf("export error: %s", target)
		suggestion = "check the export target and try again"
	}

	var result *EvidenceError
	if err != nil {
		result = Wrap(err, CategoryExport, code, message)
	} else {
		result = New(CategoryExport, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("target", target)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *EvidenceError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration value and format"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: '%s'", setting)
		suggestion = "provide the required configuration value"
	default:
		message = fmt.Sprintf("configuration error for '%s': %v", setting, value)
		suggestion = "check the configuration and try again"
	}

	var result *EvidenceError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(message string, err error) *EvidenceError {
	var result *EvidenceError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}

	return result.WithSuggestion("this is likely a bug; please report it with the full error output")
}

// AsEvidenceError attempts to extract an EvidenceError from any error
func AsEvidenceError(err error) (*EvidenceError, bool) {
	if err == nil {
		return nil, false
	}

	var evidenceErr *EvidenceError
	if errors.As(err, &evidenceErr) {
		return evidenceErr, true
	}

	return nil, false
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if evidenceErr, ok := AsEvidenceError(err); ok {
		return evidenceErr.Category == category
	}
	return false
}

// IsCode checks if an error has a specific error code
func IsCode(err error, code ErrorCode) bool {
	if evidenceErr, ok := AsEvidenceError(err); ok {
		return evidenceErr.Code == code
	}
	return false
}
