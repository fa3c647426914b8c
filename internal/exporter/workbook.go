package exporter

import (
	"github.com/xuri/excelize/v2"

	"golang-invoice-evidence-service/internal/engine"
	"golang-invoice-evidence-service/internal/models"
	apperrors "golang-invoice-evidence-service/pkg/errors"
)

// BuildWorkbook renders a run into an XLSX workbook with one sheet per
// export view: the full audit trail, the payment-ready subset and the
// review queue.
func BuildWorkbook(result *engine.RunResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const auditSheet = "Audit"
	if err := f.SetSheetName("Sheet1", auditSheet); err != nil {
		return nil, apperrors.ExportError(apperrors.CodeWorkbookFailed, auditSheet, err)
	}
	if err := writeAuditSheet(f, auditSheet, result.Records); err != nil {
		return nil, err
	}
	if err := writePaymentSheet(f, result.Records); err != nil {
		return nil, err
	}
	if err := writeReviewSheet(f, result.Records); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.ExportError(apperrors.CodeWorkbookFailed, "workbook buffer", err)
	}
	return buf.Bytes(), nil
}

func writeAuditSheet(f *excelize.File, sheet string, records []models.EvidenceRecord) error {
	writeHeaderRow(f, sheet, models.FlatFieldOrder)

	row := 2
	for _, record := range records {
		for col, value := range record.FlatRow() {
			setCell(f, sheet, col+1, row, value)
		}
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 44) // file path
	_ = f.SetColWidth(sheet, "B", "B", 28) // file name
	_ = f.SetColWidth(sheet, "C", "C", 20) // sha256
	_ = f.SetColWidth(sheet, "F", "G", 18) // invoice number / date
	_ = f.SetColWidth(sheet, "J", "J", 28) // iban
	_ = f.SetColWidth(sheet, "N", "N", 48) // parse errors
	return nil
}

func writePaymentSheet(f *excelize.File, records []models.EvidenceRecord) error {
	const sheet = "Payment"
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.ExportError(apperrors.CodeWorkbookFailed, sheet, err)
	}

	writeHeaderRow(f, sheet, []string{"beneficiary", "iban", "bic", "amount", "currency", "reference"})

	row := 2
	for _, payment := range PaymentRows(records) {
		setCell(f, sheet, 1, row, payment.Beneficiary)
		setCell(f, sheet, 2, row, payment.IBAN)
		setCell(f, sheet, 3, row, payment.BIC)
		setCell(f, sheet, 4, row, models.FormatAmount(payment.Amount))
		setCell(f, sheet, 5, row, payment.Currency)
		setCell(f, sheet, 6, row, payment.Reference)
		row++
	}

	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "F", "F", 24)
	return nil
}

func writeReviewSheet(f *excelize.File, records []models.EvidenceRecord) error {
	const sheet = "Review"
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.ExportError(apperrors.CodeWorkbookFailed, sheet, err)
	}

	writeHeaderRow(f, sheet, []string{"file_name", "sha256", "extraction_method", "suggested_action", "text_preview"})

	row := 2
	for _, entry := range ReviewEntries(records) {
		setCell(f, sheet, 1, row, entry.FileName)
		setCell(f, sheet, 2, row, entry.SHA256)
		setCell(f, sheet, 3, row, entry.ExtractionMethod.String())
		setCell(f, sheet, 4, row, entry.SuggestedAction)
		setCell(f, sheet, 5, row, truncate(entry.TextPreview, 200))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "D", "D", 40)
	_ = f.SetColWidth(sheet, "E", "E", 72)
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		setCell(f, sheet, i+1, 1, header)
	}
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, value)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
