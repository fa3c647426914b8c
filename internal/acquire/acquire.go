// Package acquire obtains raw document text and file identity for the
// extraction engine.
//
// This is the only pipeline stage that performs I/O. It follows the same
// never-drop contract as the rest of the system: acquisition failures are
// converted into parse error codes on a degraded Document instead of being
// returned, so every input file still reaches classification. Callers who
// need a timeout on text acquisition impose it through the context; the
// downstream engine stages are pure and need none.
package acquire

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang-invoice-evidence-service/internal/models"
	"golang-invoice-evidence-service/pkg/logger"
)

// Document is the acquisition result for one input file. When Errors is
// non-empty the Text is unusable and the engine skips extraction.
type Document struct {
	Identity         models.FileIdentity
	EvidenceType     models.EvidenceType
	ExtractionMethod models.ExtractionMethod
	Text             string
	Errors           []string
}

// PDFTextExtractor extracts the text layer from PDF bytes. Implemented by
// FitzExtractor in production and by fakes in engine tests.
type PDFTextExtractor interface {
	ExtractText(content []byte) (string, error)
}

// nonPDFEvidenceTypes maps accepted non-PDF suffixes onto their evidence
// type. These files are kept as evidence but produce no extractable text.
var nonPDFEvidenceTypes = map[string]models.EvidenceType{
	".png":  models.EvidenceImage,
	".jpg":  models.EvidenceImage,
	".jpeg": models.EvidenceImage,
	".xml":  models.EvidenceXML,
	".zip":  models.EvidenceUnknown,
}

// Source acquires documents from the local filesystem.
type Source struct {
	pdf    PDFTextExtractor
	logger logger.Logger
}

// NewSource creates a filesystem document source. A nil extractor disables
// PDF text extraction, degrading every PDF to a pdf_read_error record.
func NewSource(pdf PDFTextExtractor, log logger.Logger) *Source {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Source{pdf: pdf, logger: log.WithComponent("acquire")}
}

// Acquire reads and classifies one input file. It never returns an error:
// every failure mode degrades to codes on the Document so the file still
// yields exactly one evidence record.
func (s *Source) Acquire(ctx context.Context, path string) Document {
	name := filepath.Base(path)
	doc := Document{
		Identity:         models.FileIdentity{Path: path, Name: name},
		EvidenceType:     models.EvidenceUnknown,
		ExtractionMethod: models.MethodUnknown,
	}

	if err := ctx.Err(); err != nil {
		doc.Errors = append(doc.Errors, models.PrefixUploadReadError+err.Error())
		return doc
	}

	content, err := os.ReadFile(path)
	if err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("failed to read input file")
		doc.Errors = append(doc.Errors, models.PrefixUploadReadError+err.Error())
		return doc
	}
	doc.Identity.SHA256 = HashBytes(content)

	suffix := strings.ToLower(filepath.Ext(name))
	switch {
	case suffix == ".pdf":
		s.acquirePDF(&doc, content)
	default:
		if evidenceType, ok := nonPDFEvidenceTypes[suffix]; ok {
			doc.EvidenceType = evidenceType
			doc.Errors = append(doc.Errors, models.PrefixNonPDFEvidence+suffixOrUnknown(suffix))
		} else {
			doc.Errors = append(doc.Errors, models.PrefixUnsupportedFormat+suffixOrUnknown(suffix))
		}
	}
	return doc
}

func (s *Source) acquirePDF(doc *Document, content []byte) {
	if s.pdf == nil {
		doc.EvidenceType = models.EvidencePDFText
		doc.Errors = append(doc.Errors, models.PrefixPDFReadError+"no pdf extractor configured")
		return
	}

	text, err := s.pdf.ExtractText(content)
	if err != nil {
		s.logger.WithError(err).WithField("path", doc.Identity.Path).Warn("pdf text extraction failed")
		doc.EvidenceType = models.EvidencePDFText
		doc.Errors = append(doc.Errors, models.PrefixPDFReadError+err.Error())
		return
	}

	if strings.TrimSpace(text) == "" {
		// A PDF without a text layer is a scan; OCR is a separate system
		// and its absence is recorded rather than guessed around.
		doc.EvidenceType = models.EvidencePDFScan
		doc.ExtractionMethod = models.MethodOCR
		doc.Errors = append(doc.Errors, models.PrefixOCRError+"no text layer detected")
		return
	}

	doc.EvidenceType = models.EvidencePDFText
	doc.ExtractionMethod = models.MethodPDFText
	doc.Text = text
}

// HashBytes returns the hex-encoded SHA-256 digest of content, the
// content-addressed fingerprint kept on every evidence record.
func HashBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func suffixOrUnknown(suffix string) string {
	if suffix == "" {
		return "unknown"
	}
	return suffix
}

// ListInputFiles expands a directory into a sorted list of regular files,
// skipping hidden entries. Used by the CLI's --input-dir mode.
func ListInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}
