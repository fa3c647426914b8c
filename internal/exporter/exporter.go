package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang-invoice-evidence-service/internal/engine"
	"golang-invoice-evidence-service/internal/models"
	apperrors "golang-invoice-evidence-service/pkg/errors"
	"golang-invoice-evidence-service/pkg/logger"
)

// OutputFormat represents the supported export output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
	FormatXLSX    OutputFormat = "xlsx"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV, FormatXLSX:
		return true
	default:
		return false
	}
}

// Config holds configuration options for export generation
type Config struct {
	Format       OutputFormat `json:"format"`
	CSVDelimiter rune         `json:"csv_delimiter"`
	CSVHeaders   bool         `json:"csv_headers"`
}

// DefaultConfig returns a default export configuration
func DefaultConfig() *Config {
	return &Config{
		Format:       FormatConsole,
		CSVDelimiter: ',',
		CSVHeaders:   true,
	}
}

// Validate validates the export configuration
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return apperrors.ConfigurationError(
			apperrors.CodeInvalidConfig, "format", string(c.Format), nil,
		).WithSuggestion("use one of: console, json, csv, xlsx")
	}
	return nil
}

// Exporter serializes run results into the configured format.
type Exporter struct {
	config *Config
	logger logger.Logger
}

// NewExporter creates an exporter with the given configuration.
func NewExporter(config *Config, log logger.Logger) (*Exporter, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Exporter{config: config, logger: log.WithComponent("exporter")}, nil
}

// Generate writes the run result to the writer in the configured format.
// XLSX is binary; the writer receives the raw workbook bytes.
func (e *Exporter) Generate(result *engine.RunResult, writer io.Writer) error {
	if result == nil {
		return apperrors.InternalError("run result cannot be nil", nil)
	}

	switch e.config.Format {
	case FormatConsole:
		return e.generateConsole(result, writer)
	case FormatJSON:
		return e.generateJSON(result, writer)
	case FormatCSV:
		return e.generateCSV(result, writer)
	case FormatXLSX:
		workbook, err := BuildWorkbook(result)
		if err != nil {
			return err
		}
		_, err = writer.Write(workbook)
		return err
	default:
		return apperrors.ConfigurationError(
			apperrors.CodeInvalidConfig, "format", string(e.config.Format), nil)
	}
}

// generateConsole writes a human-readable run summary.
func (e *Exporter) generateConsole(result *engine.RunResult, writer io.Writer) error {
	payments := PaymentRows(result.Records)
	reviews := ReviewEntries(result.Records)

	fmt.Fprintf(writer, "EVIDENCE EXTRACTION REPORT\n")
	fmt.Fprintf(writer, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(writer, "Generated: %s\n\n", result.Timestamp.UTC().Format(time.RFC3339))

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Processed:     %d\n", len(result.Records))
	fmt.Fprintf(writer, "Payment-ready: %d\n", len(payments))
	fmt.Fprintf(writer, "Needs review:  %d\n\n", len(reviews))

	if len(payments) > 0 {
		fmt.Fprintf(writer, "=== PAYMENT-READY ===\n")
		for _, row := range payments {
			fmt.Fprintf(writer, "%-24s %s %s %s %s\n",
				row.Reference, row.IBAN, row.BIC,
				models.FormatAmount(row.Amount), row.Currency)
		}
		fmt.Fprintf(writer, "\n")
	}

	if len(reviews) > 0 {
		fmt.Fprintf(writer, "=== NEEDS REVIEW ===\n")
		for _, entry := range reviews {
			fmt.Fprintf(writer, "%-32s %s\n", entry.FileName, entry.SuggestedAction)
		}
	}
	return nil
}

// generateJSON writes the full audit payload.
func (e *Exporter) generateJSON(result *engine.RunResult, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(NewAuditPayload(result)); err != nil {
		return apperrors.ExportError(apperrors.CodeEncodingFailed, "audit json", err)
	}
	return nil
}

// generateCSV writes every record as one flat row in the fixed field order.
func (e *Exporter) generateCSV(result *engine.RunResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = e.config.CSVDelimiter
	defer csvWriter.Flush()

	if e.config.CSVHeaders {
		if err := csvWriter.Write(models.FlatFieldOrder); err != nil {
			return apperrors.ExportError(apperrors.CodeWriteFailed, "csv headers", err)
		}
	}
	for _, record := range result.Records {
		if err := csvWriter.Write(record.FlatRow()); err != nil {
			return apperrors.ExportError(apperrors.CodeWriteFailed, "csv row", err)
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

// ExportedFiles lists the artifacts produced by WriteRunArtifacts.
type ExportedFiles struct {
	AuditJSON  string `json:"audit_json"`
	ReviewJSON string `json:"review_json"`
	Workbook   string `json:"workbook"`
}

// WriteRunArtifacts writes the durable per-run export files into outputDir:
// the audit JSON (the durable record of the run), the review-only JSON and
// the XLSX workbook. File names embed the run ID and a UTC timestamp.
func (e *Exporter) WriteRunArtifacts(result *engine.RunResult, outputDir string) (*ExportedFiles, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apperrors.FileError(apperrors.CodeDirectoryError, outputDir, err)
	}

	stamp := result.Timestamp.UTC().Format("20060102T150405Z")
	base := fmt.Sprintf("evidence_%s_%s", result.RunID, stamp)
	files := &ExportedFiles{
		AuditJSON:  filepath.Join(outputDir, base+"_audit.json"),
		ReviewJSON: filepath.Join(outputDir, base+"_review.json"),
		Workbook:   filepath.Join(outputDir, base+".xlsx"),
	}

	if err := writeJSONFile(files.AuditJSON, NewAuditPayload(result)); err != nil {
		return nil, err
	}
	if err := writeJSONFile(files.ReviewJSON, NewReviewPayload(result)); err != nil {
		return nil, err
	}

	workbook, err := BuildWorkbook(result)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(files.Workbook, workbook, 0644); err != nil {
		return nil, apperrors.ExportError(apperrors.CodeWriteFailed, files.Workbook, err)
	}

	e.logger.WithFields(logger.Fields{
		"run_id":   result.RunID,
		"audit":    files.AuditJSON,
		"review":   files.ReviewJSON,
		"workbook": files.Workbook,
	}).Info("run artifacts written")
	return files, nil
}

func writeJSONFile(path string, payload AuditPayload) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		file.Close()
		return apperrors.ExportError(apperrors.CodeEncodingFailed, path, err)
	}
	return file.Close()
}
