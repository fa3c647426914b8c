// Package models defines the core data structures for invoice evidence
// processing.
//
// The central type is EvidenceRecord: the immutable per-file extraction
// result plus its verdict. Every ingested file produces exactly one record,
// even on total extraction failure - evidence is never dropped. Records are
// constructed once by the classifier and never mutated in place; corrections
// (such as merging upload-layer errors) always produce a new record value.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Status is the review verdict of an evidence record.
type Status string

const (
	// StatusOK means the record is complete and payment-ready.
	StatusOK Status = "ok"
	// StatusNeedsReview means a human must inspect the record before any
	// payment is executed.
	StatusNeedsReview Status = "needs_review"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	return s == StatusOK || s == StatusNeedsReview
}

// EvidenceType describes what kind of source document produced the record.
type EvidenceType string

const (
	EvidencePDFText EvidenceType = "pdf_text"
	EvidencePDFScan EvidenceType = "pdf_scan"
	EvidenceImage   EvidenceType = "image"
	EvidenceXML     EvidenceType = "xml"
	EvidenceUnknown EvidenceType = "unknown"
)

// String returns the string representation of EvidenceType
func (e EvidenceType) String() string {
	return string(e)
}

// IsValid checks if the evidence type is valid
func (e EvidenceType) IsValid() bool {
	switch e {
	case EvidencePDFText, EvidencePDFScan, EvidenceImage, EvidenceXML, EvidenceUnknown:
		return true
	default:
		return false
	}
}

// ExtractionMethod describes how the source text was obtained.
type ExtractionMethod string

const (
	MethodPDFText ExtractionMethod = "pdf_text"
	MethodOCR     ExtractionMethod = "ocr"
	MethodXML     ExtractionMethod = "xml"
	MethodUnknown ExtractionMethod = "unknown"
)

// String returns the string representation of ExtractionMethod
func (m ExtractionMethod) String() string {
	return string(m)
}

// IsValid checks if the extraction method is valid
func (m ExtractionMethod) IsValid() bool {
	switch m {
	case MethodPDFText, MethodOCR, MethodXML, MethodUnknown:
		return true
	default:
		return false
	}
}

// Parse error codes recorded on evidence records. The Prefix* constants are
// completed with a detail suffix at detection time, e.g.
// "pdf_read_error:corrupted xref".
const (
	CodeInvoiceNumberMissing    = "invoice_number_missing"
	CodeInvoiceDateMissing      = "invoice_date_missing"
	CodeTotalAmountMissing      = "total_amount_missing"
	CodeTotalAmountInvalid      = "total_amount_invalid"
	CodeTotalAmountNonPositive  = "total_amount_non_positive"
	CodeTotalAmountFromFilename = "total_amount_from_filename"
	CodeIBANMissingOrInvalid    = "iban_missing_or_invalid"
	CodeCurrencyMissing         = "currency_missing"

	PrefixPDFReadError      = "pdf_read_error:"
	PrefixOCRError          = "ocr_error:"
	PrefixUnsupportedFormat = "unsupported_format:"
	PrefixNonPDFEvidence    = "non_pdf_evidence:"
	PrefixFileWriteError    = "file_write_error:"
	PrefixUploadReadError   = "upload_read_error:"
)

// IsInformationalCode reports whether a parse error code merely annotates
// how a value was recovered, without flagging the record for review.
func IsInformationalCode(code string) bool {
	return code == CodeTotalAmountFromFilename
}

// PreviewLimit is the maximum number of characters of source text kept on a
// record for human audit. The preview is never used for re-parsing.
const PreviewLimit = 1200

// FileIdentity identifies a source document by location and content. The
// SHA256 digest is a content-addressed fingerprint for audit purposes, not
// a primary key: duplicate uploads simply yield records with equal hashes.
type FileIdentity struct {
	Path   string `json:"file_path"`
	Name   string `json:"file_name"`
	SHA256 string `json:"sha256"`
}

// EvidenceRecord is the immutable per-file extraction result plus verdict.
//
// TotalAmount is nil when no amount could be recovered. InvoiceDate holds
// the raw matched string: date formats are deliberately not canonicalized so
// the audit trail shows exactly what the document said. ParseErrors keeps
// detection order and may contain duplicates; the ordering is significant
// for remediation mapping and audit readability.
type EvidenceRecord struct {
	FilePath         string           `json:"file_path"`
	FileName         string           `json:"file_name"`
	SHA256           string           `json:"sha256"`
	EvidenceType     EvidenceType     `json:"evidence_type"`
	ExtractionMethod ExtractionMethod `json:"extraction_method"`
	TextPreview      string           `json:"text_preview"`
	InvoiceNumber    string           `json:"invoice_number"`
	InvoiceDate      string           `json:"invoice_date"`
	TotalAmount      *float64         `json:"total_amount"`
	Currency         string           `json:"currency"`
	IBAN             string           `json:"iban"`
	BIC              string           `json:"bic"`
	Status           Status           `json:"status"`
	PaymentReady     bool             `json:"payment_ready"`
	ParseErrors      []string         `json:"parse_errors"`
}

// MarshalJSON ensures parse_errors serializes as an empty array rather than
// null when no codes were recorded.
func (r EvidenceRecord) MarshalJSON() ([]byte, error) {
	type Alias EvidenceRecord
	aux := struct {
		Alias
		ParseErrors []string `json:"parse_errors"`
	}{
		Alias:       (Alias)(r),
		ParseErrors: r.ParseErrors,
	}
	if aux.ParseErrors == nil {
		aux.ParseErrors = []string{}
	}
	return json.Marshal(aux)
}

// MergeErrors returns a copy of the record with the given upstream errors
// appended. If any errors were added the verdict is downgraded: status is
// forced to needs_review and payment readiness is cleared. A merge never
// upgrades a record.
func (r EvidenceRecord) MergeErrors(errs []string) EvidenceRecord {
	if len(errs) == 0 {
		return r
	}
	merged := r
	merged.ParseErrors = make([]string, 0, len(r.ParseErrors)+len(errs))
	merged.ParseErrors = append(merged.ParseErrors, r.ParseErrors...)
	merged.ParseErrors = append(merged.ParseErrors, errs...)
	merged.Status = StatusNeedsReview
	merged.PaymentReady = false
	return merged
}

// HasErrorWithPrefix reports whether any recorded parse error starts with
// the given prefix.
func (r EvidenceRecord) HasErrorWithPrefix(prefix string) bool {
	for _, code := range r.ParseErrors {
		if strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// FlatFieldOrder is the fixed column order for tabular exports.
var FlatFieldOrder = []string{
	"file_path",
	"file_name",
	"sha256",
	"evidence_type",
	"extraction_method",
	"invoice_number",
	"invoice_date",
	"total_amount",
	"currency",
	"iban",
	"bic",
	"status",
	"payment_ready",
	"parse_errors",
}

// FlatRow projects the record onto the fixed tabular field order. The parse
// error list is joined with ';' for tabular formats; JSON exports keep it as
// an ordered list.
func (r EvidenceRecord) FlatRow() []string {
	amount := ""
	if r.TotalAmount != nil {
		amount = FormatAmount(*r.TotalAmount)
	}
	return []string{
		r.FilePath,
		r.FileName,
		r.SHA256,
		r.EvidenceType.String(),
		r.ExtractionMethod.String(),
		r.InvoiceNumber,
		r.InvoiceDate,
		amount,
		r.Currency,
		r.IBAN,
		r.BIC,
		r.Status.String(),
		strconv.FormatBool(r.PaymentReady),
		strings.Join(r.ParseErrors, ";"),
	}
}

// FormatAmount renders a monetary value with two decimal places, the
// convention used across all tabular exports.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
