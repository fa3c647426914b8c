// Package classifier derives the verdict of an evidence record.
//
// Classification is a single-shot decision with two terminal states, ok and
// needs_review: extracted and validated fields go in, an immutable
// EvidenceRecord with status, payment readiness and an ordered error code
// list comes out. There are no retries; later upstream corrections go
// through EvidenceRecord.MergeErrors, which can only downgrade a verdict.
package classifier

import (
	"strings"

	"golang-invoice-evidence-service/internal/models"
	"golang-invoice-evidence-service/internal/textproc"
)

// Extraction is the classifier input: every field the extractors and
// validators recovered for one document, plus any acquisition-stage error
// codes. Zero values mean "absent".
type Extraction struct {
	Identity         models.FileIdentity
	EvidenceType     models.EvidenceType
	ExtractionMethod models.ExtractionMethod
	TextPreview      string

	InvoiceNumber  string
	InvoiceDate    string
	RawAmount      string // locale-formatted body match
	FilenameAmount string // last-resort token recovered from the file name
	Currency       string
	IBAN           string // already checksum-validated, "" if none passed
	BIC            string

	// AcquisitionErrors holds codes recorded before extraction could run
	// (pdf_read_error:*, ocr_error:*, unsupported_format:*,
	// non_pdf_evidence:*). When present, field-level classification is
	// skipped: the document produced no fields to classify.
	AcquisitionErrors []string
}

// Classify builds the evidence record for one document.
//
// Error codes accumulate in detection order: invoice number, invoice date,
// amount, IBAN, currency. Payment readiness requires a positive amount, a
// checksum-valid IBAN and a recognized currency - it never depends on the
// invoice number. Status is ok only when the record is payment-ready and no
// non-informational code was recorded.
func Classify(ex Extraction) models.EvidenceRecord {
	record := models.EvidenceRecord{
		FilePath:         ex.Identity.Path,
		FileName:         ex.Identity.Name,
		SHA256:           ex.Identity.SHA256,
		EvidenceType:     ex.EvidenceType,
		ExtractionMethod: ex.ExtractionMethod,
		TextPreview:      ex.TextPreview,
		InvoiceNumber:    ex.InvoiceNumber,
		InvoiceDate:      ex.InvoiceDate,
		Currency:         ex.Currency,
		IBAN:             ex.IBAN,
		BIC:              ex.BIC,
	}

	if len(ex.AcquisitionErrors) > 0 {
		// Nothing was extracted; the acquisition codes are the whole story.
		record.ParseErrors = append([]string(nil), ex.AcquisitionErrors...)
		record.Status = models.StatusNeedsReview
		record.PaymentReady = false
		return record
	}

	var codes []string

	if ex.InvoiceNumber == "" {
		codes = append(codes, models.CodeInvoiceNumberMissing)
	}
	if ex.InvoiceDate == "" {
		codes = append(codes, models.CodeInvoiceDateMissing)
	}

	record.TotalAmount, codes = resolveAmount(ex, codes)

	if ex.IBAN == "" {
		codes = append(codes, models.CodeIBANMissingOrInvalid)
	}
	if ex.Currency == "" {
		codes = append(codes, models.CodeCurrencyMissing)
	}

	record.ParseErrors = codes
	record.PaymentReady = record.TotalAmount != nil && *record.TotalAmount > 0 &&
		record.IBAN != "" && record.Currency != ""
	record.Status = deriveStatus(record.PaymentReady, codes)
	return record
}

// resolveAmount normalizes the body amount or falls back to the filename
// token, appending the appropriate codes in detection order.
func resolveAmount(ex Extraction, codes []string) (*float64, []string) {
	if ex.RawAmount != "" {
		value, ok := textproc.NormalizeAmount(ex.RawAmount)
		if !ok {
			return nil, append(codes, models.CodeTotalAmountInvalid)
		}
		if value <= 0 {
			return &value, append(codes, models.CodeTotalAmountNonPositive)
		}
		return &value, codes
	}

	if ex.FilenameAmount != "" {
		value, ok := textproc.NormalizeAmount(ex.FilenameAmount)
		if ok {
			codes = append(codes, models.CodeTotalAmountFromFilename)
			if value <= 0 {
				return &value, append(codes, models.CodeTotalAmountNonPositive)
			}
			return &value, codes
		}
	}

	return nil, append(codes, models.CodeTotalAmountMissing)
}

// deriveStatus decides the terminal state. Informational codes (such as
// total_amount_from_filename) do not force a review on their own.
func deriveStatus(paymentReady bool, codes []string) models.Status {
	if !paymentReady {
		return models.StatusNeedsReview
	}
	for _, code := range codes {
		if !models.IsInformationalCode(code) {
			return models.StatusNeedsReview
		}
	}
	return models.StatusOK
}

// remediationChecks is the fixed evaluation order for suggested actions.
// The produced action order follows this table, not the record's original
// error order - audit output must be reproducible.
var remediationChecks = []struct {
	action  string
	applies func(code string) bool
}{
	{"Fill IBAN", func(c string) bool { return c == models.CodeIBANMissingOrInvalid }},
	{"Fill amount", func(c string) bool {
		return c == models.CodeTotalAmountMissing || c == models.CodeTotalAmountInvalid ||
			c == models.CodeTotalAmountNonPositive
	}},
	{"Fill invoice number", func(c string) bool { return c == models.CodeInvoiceNumberMissing }},
	{"Fill invoice date", func(c string) bool { return c == models.CodeInvoiceDateMissing }},
	{"Check PDF file", func(c string) bool { return strings.HasPrefix(c, models.PrefixPDFReadError) }},
	{"Review scan quality", func(c string) bool { return strings.HasPrefix(c, models.PrefixOCRError) }},
	{"Convert to PDF", func(c string) bool { return strings.HasPrefix(c, models.PrefixUnsupportedFormat) }},
	{"Provide PDF version", func(c string) bool { return strings.HasPrefix(c, models.PrefixNonPDFEvidence) }},
}

// SuggestAction maps a record's accumulated error codes to a comma-joined
// list of human actions for the review queue. When no recognized code
// matches, the generic fallback asks for a manual review.
func SuggestAction(codes []string) string {
	var actions []string
	for _, check := range remediationChecks {
		for _, code := range codes {
			if check.applies(code) {
				actions = append(actions, check.action)
				break
			}
		}
	}
	if len(actions) == 0 {
		return "Review evidence manually"
	}
	return strings.Join(actions, ", ")
}
