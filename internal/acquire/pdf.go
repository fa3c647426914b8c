package acquire

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// FitzExtractor extracts PDF text layers with MuPDF via go-fitz. Page texts
// are joined with newlines, matching how invoice layouts read top to bottom.
type FitzExtractor struct{}

// NewFitzExtractor returns a MuPDF-backed PDF text extractor.
func NewFitzExtractor() *FitzExtractor {
	return &FitzExtractor{}
}

// ExtractText implements PDFTextExtractor.
func (e *FitzExtractor) ExtractText(content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for page := 0; page < doc.NumPage(); page++ {
		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("extracting text from page %d: %w", page+1, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n"), nil
}
