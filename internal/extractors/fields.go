// Package extractors implements field recognition over normalized invoice
// text.
//
// Each extractor is a pure function from text to an optional match. Fields
// with multiple labelling conventions (German labels, English labels, the
// terse "RE:" shorthand) carry a prioritized list of patterns tried in a
// fixed, deterministic order: the first pattern with any match wins and its
// first capture group, trimmed of surrounding whitespace, becomes the field
// value. There is no partial merging across multiple matches of the same
// field.
//
// Extractors are independent of one another: absence of one field never
// blocks extraction of the others.
package extractors

import (
	"regexp"
	"strings"
)

// FieldPattern is one tagged recognition pattern for a field. The label
// names the convention the pattern covers and surfaces in debug logs.
type FieldPattern struct {
	Label   string
	Pattern *regexp.Regexp
}

// Match is a successful field recognition: the captured raw value and the
// label of the pattern that produced it.
type Match struct {
	Value   string
	Pattern string
}

// Invoice number conventions, most specific first. German label forms are
// tried before the generic "RE:" shorthand so a document carrying both
// yields the labelled number.
var invoiceNumberPatterns = []FieldPattern{
	{Label: "rechnungsnummer", Pattern: regexp.MustCompile(`(?i)Rechnungsnummer\s*[:#]?\s*([A-Za-z0-9\-/]+)`)},
	{Label: "invoice_number", Pattern: regexp.MustCompile(`(?i)Invoice\s*Number\s*[:#]?\s*([A-Za-z0-9\-/]+)`)},
	{Label: "re_shorthand", Pattern: regexp.MustCompile(`(?i)\bRE\s*[:#]?\s*(\d+)`)},
}

// Invoice date formats. The dotted day-first form dominates German invoices;
// ISO dates appear in machine-generated documents. The raw matched string is
// kept as-is - date canonicalization is deliberately out of scope.
var invoiceDatePatterns = []FieldPattern{
	{Label: "dotted_dmy", Pattern: regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\b`)},
	{Label: "iso", Pattern: regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)},
}

// Amount labels, German before English. The numeric capture is kept tight
// (must start and end with a digit) so trailing punctuation never leaks into
// the raw amount. The currency token is optional here; currency presence is
// established by its own extractor.
var amountPatterns = []FieldPattern{
	{Label: "gesamtbetrag", Pattern: regexp.MustCompile(`(?i)(?:Gesamtbetrag|Rechnungsbetrag|Insgesamt)\s*[:#]?\s*(\d[\d.,]*\d|\d)\s*(?:EUR|€)?`)},
	{Label: "total", Pattern: regexp.MustCompile(`(?i)Total(?:\s*Amount)?\s*[:#]?\s*(\d[\d.,]*\d|\d)\s*(?:EUR|€)?`)},
}

// currencyPattern recognizes the single supported currency token. Multi-
// currency reconciliation is a non-goal; any EUR marker fixes the code.
var currencyPattern = regexp.MustCompile(`\bEUR\b|€`)

// filenameAmountPattern recovers a European-formatted amount embedded in a
// file name, e.g. "rechnung_1.250,00.pdf".
var filenameAmountPattern = regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*,\d{2})`)

func firstMatch(patterns []FieldPattern, text string) (Match, bool) {
	for _, fp := range patterns {
		if m := fp.Pattern.FindStringSubmatch(text); m != nil {
			return Match{Value: strings.TrimSpace(m[1]), Pattern: fp.Label}, true
		}
	}
	return Match{}, false
}

// InvoiceNumber extracts the invoice number token, if any.
func InvoiceNumber(text string) (Match, bool) {
	return firstMatch(invoiceNumberPatterns, text)
}

// InvoiceDate extracts the raw invoice date string, if any.
func InvoiceDate(text string) (Match, bool) {
	return firstMatch(invoiceDatePatterns, text)
}

// RawAmount extracts the raw, still locale-formatted amount string from the
// document body, if any.
func RawAmount(text string) (Match, bool) {
	return firstMatch(amountPatterns, text)
}

// Currency reports the recognized currency code, if any marker is present.
func Currency(text string) (Match, bool) {
	if currencyPattern.MatchString(text) {
		return Match{Value: "EUR", Pattern: "eur_token"}, true
	}
	return Match{}, false
}

// AmountFromFilename is the last-resort amount heuristic: some scanning
// workflows encode the invoice total in the file name. A hit here is
// informational, not a substitute for body extraction.
func AmountFromFilename(name string) (Match, bool) {
	if m := filenameAmountPattern.FindStringSubmatch(name); m != nil {
		return Match{Value: m[1], Pattern: "filename"}, true
	}
	return Match{}, false
}
