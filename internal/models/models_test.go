package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusValidation(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusOK, true},
		{StatusNeedsReview, true},
		{Status("approved"), false},
		{Status(""), false},
	}

	for _, tt := range tests {
		if got := tt.status.IsValid(); got != tt.valid {
			t.Errorf("IsValid(%q) = %t, expected %t", tt.status, got, tt.valid)
		}
	}
}

func TestEvidenceTypeValidation(t *testing.T) {
	for _, et := range []EvidenceType{EvidencePDFText, EvidencePDFScan, EvidenceImage, EvidenceXML, EvidenceUnknown} {
		if !et.IsValid() {
			t.Errorf("expected %q to be valid", et)
		}
	}
	if EvidenceType("docx").IsValid() {
		t.Error("unexpected valid evidence type")
	}
}

func TestExtractionMethodValidation(t *testing.T) {
	for _, m := range []ExtractionMethod{MethodPDFText, MethodOCR, MethodXML, MethodUnknown} {
		if !m.IsValid() {
			t.Errorf("expected %q to be valid", m)
		}
	}
	if ExtractionMethod("manual").IsValid() {
		t.Error("unexpected valid extraction method")
	}
}

func TestIsInformationalCode(t *testing.T) {
	if !IsInformationalCode(CodeTotalAmountFromFilename) {
		t.Error("filename amount recovery is informational")
	}
	for _, code := range []string{
		CodeInvoiceNumberMissing,
		CodeInvoiceDateMissing,
		CodeTotalAmountMissing,
		CodeTotalAmountInvalid,
		CodeTotalAmountNonPositive,
		CodeIBANMissingOrInvalid,
		CodeCurrencyMissing,
		PrefixPDFReadError + "corrupted xref",
	} {
		if IsInformationalCode(code) {
			t.Errorf("%q must not be informational", code)
		}
	}
}

func TestMarshalJSON_EmptyParseErrors(t *testing.T) {
	amount := 10.0
	record := EvidenceRecord{
		FilePath:    "in/a.pdf",
		FileName:    "a.pdf",
		TotalAmount: &amount,
		Status:      StatusOK,
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"parse_errors":[]`) {
		t.Errorf("expected empty array for parse_errors, got %s", data)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("nothing should serialize as null here, got %s", data)
	}
}

func TestMarshalJSON_NilAmount(t *testing.T) {
	record := EvidenceRecord{FileName: "a.pdf"}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"total_amount":null`) {
		t.Errorf("missing amount must serialize as null, got %s", data)
	}

	amount := 99.9
	record.TotalAmount = &amount
	data, err = json.Marshal(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), `"total_amount":99.9`) {
		t.Errorf("expected amount in output, got %s", data)
	}
}

func TestMergeErrors(t *testing.T) {
	amount := 150.0
	base := EvidenceRecord{
		FileName:     "a.pdf",
		TotalAmount:  &amount,
		IBAN:         "DE89370400440532013000",
		Currency:     "EUR",
		Status:       StatusOK,
		PaymentReady: true,
		ParseErrors:  []string{CodeInvoiceDateMissing},
	}

	merged := base.MergeErrors([]string{PrefixFileWriteError + "disk full"})

	if merged.Status != StatusNeedsReview {
		t.Errorf("expected needs_review, got %q", merged.Status)
	}
	if merged.PaymentReady {
		t.Error("payment readiness must be cleared on merge")
	}
	if len(merged.ParseErrors) != 2 || merged.ParseErrors[0] != CodeInvoiceDateMissing {
		t.Errorf("existing codes must precede merged ones: %v", merged.ParseErrors)
	}
	if merged.ParseErrors[1] != PrefixFileWriteError+"disk full" {
		t.Errorf("unexpected merged code: %v", merged.ParseErrors)
	}

	// Original record is untouched.
	if base.Status != StatusOK || !base.PaymentReady || len(base.ParseErrors) != 1 {
		t.Errorf("merge mutated the original record: %+v", base)
	}
}

func TestMergeErrors_NoErrors(t *testing.T) {
	base := EvidenceRecord{Status: StatusOK, PaymentReady: true}
	merged := base.MergeErrors(nil)
	if merged.Status != StatusOK || !merged.PaymentReady {
		t.Error("empty merge must not downgrade the record")
	}
}

func TestHasErrorWithPrefix(t *testing.T) {
	record := EvidenceRecord{ParseErrors: []string{
		CodeInvoiceNumberMissing,
		PrefixOCRError + "no text layer detected",
	}}

	if !record.HasErrorWithPrefix(PrefixOCRError) {
		t.Error("expected ocr_error prefix to be found")
	}
	if record.HasErrorWithPrefix(PrefixPDFReadError) {
		t.Error("unexpected pdf_read_error prefix")
	}
}

func TestFlatRow(t *testing.T) {
	amount := 1234.5
	record := EvidenceRecord{
		FilePath:         "in/re_1.pdf",
		FileName:         "re_1.pdf",
		SHA256:           "abc123",
		EvidenceType:     EvidencePDFText,
		ExtractionMethod: MethodPDFText,
		InvoiceNumber:    "RE-1",
		InvoiceDate:      "15.03.2024",
		TotalAmount:      &amount,
		Currency:         "EUR",
		IBAN:             "DE89370400440532013000",
		BIC:              "COBADEFF",
		Status:           StatusOK,
		PaymentReady:     true,
		ParseErrors:      []string{CodeTotalAmountFromFilename, CodeCurrencyMissing},
	}

	row := record.FlatRow()
	if len(row) != len(FlatFieldOrder) {
		t.Fatalf("row length %d does not match field order length %d", len(row), len(FlatFieldOrder))
	}

	expected := []string{
		"in/re_1.pdf", "re_1.pdf", "abc123", "pdf_text", "pdf_text",
		"RE-1", "15.03.2024", "1234.50", "EUR",
		"DE89370400440532013000", "COBADEFF", "ok", "true",
		CodeTotalAmountFromFilename + ";" + CodeCurrencyMissing,
	}
	for i, want := range expected {
		if row[i] != want {
			t.Errorf("column %s: expected %q, got %q", FlatFieldOrder[i], want, row[i])
		}
	}
}

func TestFlatRow_MissingAmount(t *testing.T) {
	record := EvidenceRecord{Status: StatusNeedsReview}
	row := record.FlatRow()
	if row[7] != "" {
		t.Errorf("nil amount must render empty, got %q", row[7])
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{1234.5, "1234.50"},
		{0, "0.00"},
		{99.999, "100.00"},
		{7.5, "7.50"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.value); got != tt.expected {
			t.Errorf("FormatAmount(%v) = %q, expected %q", tt.value, got, tt.expected)
		}
	}
}
