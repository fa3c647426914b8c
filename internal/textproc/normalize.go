// Package textproc provides text and amount normalization for invoice
// documents.
//
// Invoice PDFs and OCR output routinely contain no-break spaces and narrow
// no-break spaces used as thousands separators ("1 250,00"), which break
// downstream pattern matching. NormalizeText collapses these whitespace
// variants without removing any semantic content.
//
// NormalizeAmount converts a locale-formatted numeric string into a float
// value under a deliberate European-locale assumption: a comma is the
// decimal separator and dots are thousands separators. Dotted strings with
// no comma (US convention, "1234.56") are rejected rather than guessed at.
package textproc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// whitespaceVariants maps exotic space characters onto a plain space.
// U+00A0 (no-break space) and U+202F (narrow no-break space) appear in
// machine-generated invoices as grouping separators; U+2009 (thin space)
// shows up in OCR output.
var whitespaceVariants = strings.NewReplacer(
	" ", " ",
	" ", " ",
	" ", " ",
	"\t", " ",
)

// NormalizeText collapses whitespace variants in raw extracted text so the
// field extractors can rely on plain spaces. The transformation removes no
// semantic content and is idempotent: normalizing twice yields the same
// string as normalizing once.
func NormalizeText(text string) string {
	return whitespaceVariants.Replace(text)
}

// NormalizeAmount parses a locale-formatted amount string.
//
// Algorithm: strip spaces and no-break spaces; when a comma is present,
// remove dots (thousands separators) and replace the comma with a decimal
// point; when no comma is present, a dotted string is ambiguous under the
// European-locale assumption and is rejected. Plain integer strings parse
// as whole currency units. Returns ok=false on any non-numeric residue.
//
// Zero or negative results are accepted here; the classifier flags them as
// non-positive. The comma-as-decimal assumption misparses nothing but does
// reject US-locale input; that gap is intentional and covered by tests.
func NormalizeAmount(raw string) (float64, bool) {
	value := strings.TrimSpace(NormalizeText(raw))
	value = strings.ReplaceAll(value, " ", "")
	if value == "" {
		return 0, false
	}

	if strings.Contains(value, ",") {
		value = strings.ReplaceAll(value, ".", "")
		value = strings.Replace(value, ",", ".", 1)
		// A second comma means the string was never a single amount.
		if strings.Contains(value, ",") {
			return 0, false
		}
	} else if strings.Contains(value, ".") {
		// No decimal comma: "1234.56" could be a US decimal or a German
		// thousands group. Refuse to guess.
		return 0, false
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return 0, false
	}
	return dec.InexactFloat64(), true
}

// Preview returns the first limit characters of text for human audit,
// counted in runes so multi-byte characters are never split.
func Preview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
