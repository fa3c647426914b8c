package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"golang-invoice-evidence-service/internal/engine"
	"golang-invoice-evidence-service/internal/models"
)

func TestOutputFormatValidation(t *testing.T) {
	for _, f := range []OutputFormat{FormatConsole, FormatJSON, FormatCSV, FormatXLSX} {
		if !f.IsValid() {
			t.Errorf("expected %q to be valid", f)
		}
	}
	for _, f := range []OutputFormat{"pdf", "yaml", ""} {
		if f.IsValid() {
			t.Errorf("expected %q to be invalid", f)
		}
	}
}

func TestNewExporter_RejectsInvalidFormat(t *testing.T) {
	config := DefaultConfig()
	config.Format = OutputFormat("yaml")
	if _, err := NewExporter(config, nil); err == nil {
		t.Error("expected configuration error")
	}
}

func TestNewExporter_NilConfig(t *testing.T) {
	e, err := NewExporter(nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.config.Format != FormatConsole {
		t.Errorf("nil config must fall back to defaults, got %q", e.config.Format)
	}
}

func TestGenerate_NilResult(t *testing.T) {
	e, _ := NewExporter(nil, nil)
	if err := e.Generate(nil, &bytes.Buffer{}); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestGenerateConsole(t *testing.T) {
	e, _ := NewExporter(&Config{Format: FormatConsole}, nil)
	var buf bytes.Buffer
	if err := e.Generate(sampleRun(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Run ID: abc123def4",
		"Processed:     3",
		"Payment-ready: 2",
		"Needs review:  2",
		"RE-2024-001",
		"DE89370400440532013000",
		"scan.pdf",
		"Review scan quality",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateJSON(t *testing.T) {
	e, _ := NewExporter(&Config{Format: FormatJSON}, nil)
	var buf bytes.Buffer
	if err := e.Generate(sampleRun(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload AuditPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if payload.RunID != "abc123def4" || len(payload.Records) != 3 {
		t.Errorf("unexpected payload: run_id=%q records=%d", payload.RunID, len(payload.Records))
	}
	if payload.Timestamp != "2024-03-15T10:30:00Z" {
		t.Errorf("unexpected timestamp %q", payload.Timestamp)
	}
	// Error-free records keep an empty array rather than null.
	if !strings.Contains(buf.String(), `"parse_errors": []`) {
		t.Error("expected empty parse_errors array in JSON output")
	}
}

func TestGenerateCSV(t *testing.T) {
	e, _ := NewExporter(&Config{Format: FormatCSV, CSVDelimiter: ',', CSVHeaders: true}, nil)
	var buf bytes.Buffer
	if err := e.Generate(sampleRun(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(models.FlatFieldOrder) || rows[0][0] != "file_path" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
	if rows[1][5] != "RE-2024-001" || rows[1][7] != "1234.56" {
		t.Errorf("unexpected first data row: %v", rows[1])
	}
	if rows[3][13] != models.PrefixOCRError+"no text layer detected" {
		t.Errorf("unexpected parse errors column: %v", rows[3])
	}
}

func TestGenerateCSV_Semicolon(t *testing.T) {
	e, _ := NewExporter(&Config{Format: FormatCSV, CSVDelimiter: ';', CSVHeaders: false}, nil)
	var buf bytes.Buffer
	if err := e.Generate(sampleRun(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reader := csv.NewReader(&buf)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("expected 3 rows without headers, got %d", len(rows))
	}
}

func TestBuildWorkbook(t *testing.T) {
	workbook, err := BuildWorkbook(sampleRun())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(workbook))
	if err != nil {
		t.Fatalf("workbook does not open: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	expected := []string{"Audit", "Payment", "Review"}
	if len(sheets) != len(expected) {
		t.Fatalf("expected sheets %v, got %v", expected, sheets)
	}
	for i, name := range expected {
		if sheets[i] != name {
			t.Errorf("sheet %d: expected %s, got %s", i, name, sheets[i])
		}
	}

	// Audit sheet: header plus one row per record.
	auditRows, err := f.GetRows("Audit")
	if err != nil {
		t.Fatalf("reading audit sheet: %v", err)
	}
	if len(auditRows) != 4 {
		t.Errorf("expected 4 audit rows, got %d", len(auditRows))
	}
	if auditRows[0][0] != "file_path" {
		t.Errorf("unexpected audit header: %v", auditRows[0])
	}

	paymentRows, err := f.GetRows("Payment")
	if err != nil {
		t.Fatalf("reading payment sheet: %v", err)
	}
	if len(paymentRows) != 3 {
		t.Errorf("expected header plus 2 payment rows, got %d", len(paymentRows))
	}

	reviewRows, err := f.GetRows("Review")
	if err != nil {
		t.Fatalf("reading review sheet: %v", err)
	}
	if len(reviewRows) != 3 {
		t.Errorf("expected header plus 2 review rows, got %d", len(reviewRows))
	}
	if reviewRows[1][3] != "Fill invoice number, Fill invoice date" {
		t.Errorf("unexpected suggested action: %v", reviewRows[1])
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	e, _ := NewExporter(nil, nil)
	outputDir := t.TempDir()

	files, err := e.WriteRunArtifacts(sampleRun(), outputDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := "evidence_abc123def4_20240315T103000Z"
	if !strings.HasSuffix(files.AuditJSON, base+"_audit.json") {
		t.Errorf("unexpected audit path %s", files.AuditJSON)
	}
	if !strings.HasSuffix(files.ReviewJSON, base+"_review.json") {
		t.Errorf("unexpected review path %s", files.ReviewJSON)
	}
	if !strings.HasSuffix(files.Workbook, base+".xlsx") {
		t.Errorf("unexpected workbook path %s", files.Workbook)
	}

	auditData, err := os.ReadFile(files.AuditJSON)
	if err != nil {
		t.Fatalf("audit file missing: %v", err)
	}
	var audit AuditPayload
	if err := json.Unmarshal(auditData, &audit); err != nil {
		t.Fatalf("audit file is not valid JSON: %v", err)
	}
	if len(audit.Records) != 3 {
		t.Errorf("expected 3 audit records, got %d", len(audit.Records))
	}

	reviewData, err := os.ReadFile(files.ReviewJSON)
	if err != nil {
		t.Fatalf("review file missing: %v", err)
	}
	var review AuditPayload
	if err := json.Unmarshal(reviewData, &review); err != nil {
		t.Fatalf("review file is not valid JSON: %v", err)
	}
	if len(review.Records) != 2 {
		t.Errorf("expected 2 review records, got %d", len(review.Records))
	}

	if _, err := os.Stat(files.Workbook); err != nil {
		t.Errorf("workbook missing: %v", err)
	}
}

func TestWriteRunArtifacts_CreatesOutputDir(t *testing.T) {
	e, _ := NewExporter(nil, nil)
	outputDir := t.TempDir() + "/nested/out"

	result := &engine.RunResult{
		RunID:     "ffffffffff",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if _, err := e.WriteRunArtifacts(result, outputDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(outputDir); err != nil {
		t.Errorf("output directory not created: %v", err)
	}
}
