package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"golang-invoice-evidence-service/cmd/evidence/config"
	"golang-invoice-evidence-service/internal/acquire"
	"golang-invoice-evidence-service/internal/engine"
	"golang-invoice-evidence-service/internal/exporter"
	apperrors "golang-invoice-evidence-service/pkg/errors"
	"golang-invoice-evidence-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the process command
var (
	inputDir     string
	inputFiles   []string
	outputDir    string
	outputFormat string
	outputFile   string
	workers      int
	previewLimit int
	bicDenylist  []string
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract and classify invoice evidence",
	Long: `Process runs the evidence extraction pipeline over a set of invoice
documents: text acquisition, field extraction, IBAN/BIC validation and
classification into payment-ready or needs-review records.

Input is either a directory of documents or an explicit file list. Every
input file yields exactly one record in the output, including unreadable
or unsupported files, which surface as flagged review entries.

Examples:
  # Process a directory and write audit/review/workbook artifacts
  evidence process --input-dir ./invoices --output-dir ./exports

  # Explicit files with a JSON report on stdout
  evidence process --files invoice1.pdf,invoice2.pdf --format json

  # CSV report into a file, eight parallel workers
  evidence process --input-dir ./invoices --format csv \
    --output-file records.csv --workers 8

  # Extend the BIC false-positive denylist for a noisy corpus
  evidence process --input-dir ./invoices --bic-denylist RECHNUNG,LIEFERUNG`,

	PreRunE: validateProcessFlags,
	RunE:    runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	// Input flags
	processCmd.Flags().StringVarP(&inputDir, "input-dir", "i", "", "directory of invoice documents to process")
	processCmd.Flags().StringSliceVar(&inputFiles, "files", []string{}, "comma-separated list of document paths to process")

	// Output flags
	processCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for audit/review/workbook artifacts (optional)")
	processCmd.Flags().StringVarP(&outputFormat, "format", "f", "console", "report format: console, json, csv, xlsx")
	processCmd.Flags().StringVar(&outputFile, "output-file", "", "report file path (default: stdout)")

	// Engine flags
	processCmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of documents processed in parallel")
	processCmd.Flags().IntVar(&previewLimit, "preview-limit", 1200, "max characters of source text kept per record for audit")
	processCmd.Flags().StringSliceVar(&bicDenylist, "bic-denylist", nil, "additional words rejected as BIC candidates")

	// Bind flags to viper
	viper.BindPFlag("input-dir", processCmd.Flags().Lookup("input-dir"))
	viper.BindPFlag("files", processCmd.Flags().Lookup("files"))
	viper.BindPFlag("output-dir", processCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("format", processCmd.Flags().Lookup("format"))
	viper.BindPFlag("output-file", processCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("workers", processCmd.Flags().Lookup("workers"))
	viper.BindPFlag("preview-limit", processCmd.Flags().Lookup("preview-limit"))
	viper.BindPFlag("bic-denylist", processCmd.Flags().Lookup("bic-denylist"))
}

func validateProcessFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputDir = viper.GetString("input-dir")
	inputFiles = viper.GetStringSlice("files")
	outputDir = viper.GetString("output-dir")
	outputFormat = viper.GetString("format")
	outputFile = viper.GetString("output-file")
	workers = viper.GetInt("workers")
	previewLimit = viper.GetInt("preview-limit")
	bicDenylist = viper.GetStringSlice("bic-denylist")

	if inputDir == "" && len(inputFiles) == 0 {
		return apperrors.ConfigurationError(
			apperrors.CodeMissingConfig, "input", nil, nil,
		).WithSuggestion("provide --input-dir or --files")
	}

	if inputDir != "" {
		info, err := os.Stat(inputDir)
		if err != nil {
			return apperrors.FileError(apperrors.CodeFileNotFound, inputDir, err)
		}
		if !info.IsDir() {
			return apperrors.FileError(apperrors.CodeDirectoryError, inputDir, nil).
				WithSuggestion("--input-dir must point to a directory; use --files for single documents")
		}
	}

	if !exporter.OutputFormat(outputFormat).IsValid() {
		return apperrors.ConfigurationError(
			apperrors.CodeInvalidConfig, "format", outputFormat, nil,
		).WithSuggestion("use one of: console, json, csv, xlsx")
	}

	if workers < 1 {
		return apperrors.ConfigurationError(
			apperrors.CodeInvalidConfig, "workers", workers, nil,
		).WithSuggestion("use a worker count of at least 1")
	}

	return nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	log, err := config.CreateLogger(verbose)
	if err != nil {
		return err
	}
	logger.SetGlobalLogger(log)

	engineCfg := config.CreateEngineConfig(workers, previewLimit, bicDenylist)
	if err := engineCfg.Validate(); err != nil {
		return err
	}

	exportCfg := config.CreateExportConfig(outputFormat)
	exp, err := exporter.NewExporter(exportCfg, log)
	if err != nil {
		return err
	}

	files, err := resolveInputFiles()
	if err != nil {
		return err
	}

	source := acquire.NewSource(acquire.NewFitzExtractor(), log)
	eng := engine.New(source, engineCfg, log)
	result := eng.ProcessRun(context.Background(), files)

	if outputDir != "" {
		artifacts, err := exp.WriteRunArtifacts(result, outputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Artifacts written:\n  audit:    %s\n  review:   %s\n  workbook: %s\n",
			artifacts.AuditJSON, artifacts.ReviewJSON, artifacts.Workbook)
	}

	writer := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return apperrors.ExportError(apperrors.CodeWriteFailed, outputFile, err)
		}
		defer f.Close()
		writer = f
	}
	return exp.Generate(result, writer)
}

// resolveInputFiles merges --input-dir and --files into one deterministic,
// de-duplicated input list.
func resolveInputFiles() ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	if inputDir != "" {
		listed, err := acquire.ListInputFiles(inputDir)
		if err != nil {
			return nil, apperrors.FileError(apperrors.CodeDirectoryError, inputDir, err)
		}
		sort.Strings(listed)
		for _, path := range listed {
			add(path)
		}
	}
	for _, path := range inputFiles {
		add(path)
	}

	if len(files) == 0 {
		return nil, apperrors.ConfigurationError(
			apperrors.CodeInvalidConfig, "input", inputDir, nil,
		).WithSuggestion("the input directory contains no processable files")
	}
	return files, nil
}
