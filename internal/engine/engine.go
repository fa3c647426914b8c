// Package engine orchestrates the evidence extraction pipeline.
//
// Per document the flow is: acquire text, normalize it, run the field
// extractors, validate bank identifiers, classify. Each document is
// processed start to finish with no suspension points; the stages after
// acquisition are pure and perform no I/O. Documents within a run are
// independent, so the run orchestrator fans out across a bounded worker
// pool while preserving input order in the result slice.
//
// The engine upholds a strict never-drop contract: every input file yields
// exactly one evidence record, with total processing failure degrading to a
// maximally-flagged record rather than an omitted file.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"golang-invoice-evidence-service/internal/acquire"
	"golang-invoice-evidence-service/internal/bankid"
	"golang-invoice-evidence-service/internal/classifier"
	"golang-invoice-evidence-service/internal/extractors"
	"golang-invoice-evidence-service/internal/models"
	"golang-invoice-evidence-service/internal/textproc"
	"golang-invoice-evidence-service/pkg/logger"
)

// Config holds engine behavior settings.
type Config struct {
	// Workers bounds the number of documents processed concurrently.
	Workers int
	// PreviewLimit caps the audit text preview length in runes.
	PreviewLimit int
	// BIC configures BIC candidate selection.
	BIC *bankid.BICConfig
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:      4,
		PreviewLimit: models.PreviewLimit,
		BIC:          bankid.DefaultBICConfig(),
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errInvalidWorkers(c.Workers)
	}
	if c.PreviewLimit < 0 {
		return errInvalidPreview(c.PreviewLimit)
	}
	return nil
}

// DocumentSource acquires raw text and identity for an input file. The
// production implementation is acquire.Source; tests substitute fakes.
type DocumentSource interface {
	Acquire(ctx context.Context, path string) acquire.Document
}

// Engine runs the extraction pipeline.
type Engine struct {
	config *Config
	source DocumentSource
	logger logger.Logger
}

// New creates an engine. A nil config falls back to defaults.
func New(source DocumentSource, config *Config, log logger.Logger) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BIC == nil {
		config.BIC = bankid.DefaultBICConfig()
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Engine{
		config: config,
		source: source,
		logger: log.WithComponent("engine"),
	}
}

// RunResult is the outcome of one processing run.
type RunResult struct {
	RunID     string                  `json:"run_id"`
	Timestamp time.Time               `json:"timestamp"`
	Records   []models.EvidenceRecord `json:"records"`
}

// ProcessFile processes a single input file into its evidence record.
func (e *Engine) ProcessFile(ctx context.Context, path string) models.EvidenceRecord {
	doc := e.source.Acquire(ctx, path)
	record := e.classifyDocument(doc)

	e.logger.WithFields(logger.Fields{
		"file":          doc.Identity.Name,
		"status":        record.Status.String(),
		"payment_ready": record.PaymentReady,
		"parse_errors":  len(record.ParseErrors),
	}).Debug("document processed")
	return record
}

// ProcessRun processes all files with a bounded worker pool and returns the
// records in input order under a fresh run ID.
func (e *Engine) ProcessRun(ctx context.Context, files []string) *RunResult {
	result := &RunResult{
		RunID:     NewRunID(),
		Timestamp: time.Now().UTC(),
		Records:   make([]models.EvidenceRecord, len(files)),
	}

	e.logger.WithFields(logger.Fields{
		"run_id":  result.RunID,
		"files":   len(files),
		"workers": e.config.Workers,
	}).Info("starting processing run")

	progress := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "process_evidence",
		Total:     int64(len(files)),
		Logger:    e.logger,
	})

	semaphore := make(chan struct{}, e.config.Workers)
	var wg sync.WaitGroup
	for i, path := range files {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result.Records[index] = e.ProcessFile(ctx, path)
			progress.Increment()
		}(i, path)
	}
	wg.Wait()
	progress.Complete()

	okCount := 0
	for _, record := range result.Records {
		if record.Status == models.StatusOK {
			okCount++
		}
	}
	e.logger.WithFields(logger.Fields{
		"run_id":       result.RunID,
		"processed":    len(result.Records),
		"ok":           okCount,
		"needs_review": len(result.Records) - okCount,
	}).Info("processing run complete")

	return result
}

// classifyDocument runs the pure pipeline stages on one acquired document.
func (e *Engine) classifyDocument(doc acquire.Document) models.EvidenceRecord {
	ex := classifier.Extraction{
		Identity:          doc.Identity,
		EvidenceType:      doc.EvidenceType,
		ExtractionMethod:  doc.ExtractionMethod,
		AcquisitionErrors: doc.Errors,
	}

	if len(doc.Errors) > 0 {
		return classifier.Classify(ex)
	}

	text := textproc.NormalizeText(doc.Text)
	ex.TextPreview = textproc.Preview(text, e.config.PreviewLimit)

	if m, ok := extractors.InvoiceNumber(text); ok {
		ex.InvoiceNumber = m.Value
	}
	if m, ok := extractors.InvoiceDate(text); ok {
		ex.InvoiceDate = m.Value
	}
	if m, ok := extractors.RawAmount(text); ok {
		ex.RawAmount = m.Value
	} else if m, ok := extractors.AmountFromFilename(doc.Identity.Name); ok {
		ex.FilenameAmount = m.Value
	}
	if m, ok := extractors.Currency(text); ok {
		ex.Currency = m.Value
	}
	if iban, ok := bankid.FindIBAN(text); ok {
		ex.IBAN = iban
	}
	if bic, ok := e.config.BIC.FindBIC(text); ok {
		ex.BIC = bic
	}

	return classifier.Classify(ex)
}

// NewRunID returns a short random run identifier, unique enough to key
// export files within an output directory.
func NewRunID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:10]
}
