// Package exporter projects processing run results into their export views
// and serializes them.
//
// Three logical views exist over the same record set, each preserving the
// processing insertion order:
//   - full audit: every record with every field, the durable trail
//   - payment subset: payment-ready records shaped for a payment batch
//   - review subset: needs_review records with a suggested action for the
//     review queue
//
// Supported serializations: console summary, JSON (audit payload shape),
// CSV (flat rows) and an XLSX workbook with one sheet per view.
package exporter

import (
	"time"

	"golang-invoice-evidence-service/internal/classifier"
	"golang-invoice-evidence-service/internal/engine"
	"golang-invoice-evidence-service/internal/models"
)

// AuditPayload is the durable JSON export shape: the run identity plus the
// full ordered record list. The review payload reuses the identical shape,
// filtered to needs_review.
type AuditPayload struct {
	RunID     string                  `json:"run_id"`
	Timestamp string                  `json:"timestamp"`
	Records   []models.EvidenceRecord `json:"records"`
}

// NewAuditPayload builds the full audit view of a run.
func NewAuditPayload(result *engine.RunResult) AuditPayload {
	records := result.Records
	if records == nil {
		records = []models.EvidenceRecord{}
	}
	return AuditPayload{
		RunID:     result.RunID,
		Timestamp: result.Timestamp.UTC().Format(time.RFC3339),
		Records:   records,
	}
}

// NewReviewPayload builds the review view: same payload shape, records
// filtered to needs_review.
func NewReviewPayload(result *engine.RunResult) AuditPayload {
	filtered := make([]models.EvidenceRecord, 0, len(result.Records))
	for _, record := range result.Records {
		if record.Status == models.StatusNeedsReview {
			filtered = append(filtered, record)
		}
	}
	return AuditPayload{
		RunID:     result.RunID,
		Timestamp: result.Timestamp.UTC().Format(time.RFC3339),
		Records:   filtered,
	}
}

// PaymentRow is one payment-ready record shaped for a payment batch export.
// The beneficiary is not separately captured by the extractors yet, so it
// is emitted as "unknown"; the reference falls back to the file name when
// no invoice number was found.
type PaymentRow struct {
	Beneficiary string  `json:"beneficiary"`
	IBAN        string  `json:"iban"`
	BIC         string  `json:"bic"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Reference   string  `json:"reference"`
}

// PaymentRows projects the payment-ready subset of a run.
func PaymentRows(records []models.EvidenceRecord) []PaymentRow {
	rows := make([]PaymentRow, 0, len(records))
	for _, record := range records {
		if !record.PaymentReady || record.TotalAmount == nil {
			continue
		}
		reference := record.InvoiceNumber
		if reference == "" {
			reference = record.FileName
		}
		rows = append(rows, PaymentRow{
			Beneficiary: "unknown",
			IBAN:        record.IBAN,
			BIC:         record.BIC,
			Amount:      *record.TotalAmount,
			Currency:    record.Currency,
			Reference:   reference,
		})
	}
	return rows
}

// ReviewEntry is one needs_review record shaped for the review queue.
type ReviewEntry struct {
	FilePath         string                  `json:"file_path"`
	FileName         string                  `json:"file_name"`
	SHA256           string                  `json:"sha256"`
	ExtractionMethod models.ExtractionMethod `json:"extraction_method"`
	TextPreview      string                  `json:"text_preview"`
	ParseErrors      []string                `json:"parse_errors"`
	SuggestedAction  string                  `json:"suggested_action"`
}

// ReviewEntries projects the review subset of a run, attaching the
// remediation advisor's suggested action to each entry.
func ReviewEntries(records []models.EvidenceRecord) []ReviewEntry {
	entries := make([]ReviewEntry, 0, len(records))
	for _, record := range records {
		if record.Status != models.StatusNeedsReview {
			continue
		}
		entries = append(entries, ReviewEntry{
			FilePath:         record.FilePath,
			FileName:         record.FileName,
			SHA256:           record.SHA256,
			ExtractionMethod: record.ExtractionMethod,
			TextPreview:      record.TextPreview,
			ParseErrors:      record.ParseErrors,
			SuggestedAction:  classifier.SuggestAction(record.ParseErrors),
		})
	}
	return entries
}
