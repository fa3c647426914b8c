package bankid

import (
	"regexp"
	"strings"
)

// bicShape matches candidate BICs: a six-letter institution and country
// part followed by a two-character location code and an optional
// three-character branch code.
var bicShape = regexp.MustCompile(`\b[A-Z]{6}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`)

// DefaultBICDenylist holds common German invoice words that share the BIC
// shape (any eight-letter uppercase word qualifies). No checksum exists for
// BICs, so shape-only matching needs this guard. The list is deliberately
// configurable: extend it per document corpus as false positives surface.
func DefaultBICDenylist() []string {
	return []string{
		"RECHNUNG", // invoice
		"REFERENZ", // reference
		"KUNDENNR", // customer number label
		"GUTHABEN", // credit balance
		"INTERNET",
		"DOKUMENT",
		"DEUTSCHLAND",
		"RECHNUNGSNR",
	}
}

// BICConfig configures BIC candidate selection.
type BICConfig struct {
	// Denylist holds uppercase words rejected as BIC candidates even when
	// they match the shape.
	Denylist []string
}

// DefaultBICConfig returns a BICConfig with the default denylist.
func DefaultBICConfig() *BICConfig {
	return &BICConfig{Denylist: DefaultBICDenylist()}
}

// FindBIC scans text for a plausible BIC and returns the first candidate,
// in scan order, that has length exactly 8 or 11 and is not denylisted.
// Absence of a BIC is not a failure: records without one remain
// classifiable, so the caller records no error code for ok=false.
func (c *BICConfig) FindBIC(text string) (string, bool) {
	denied := make(map[string]bool, len(c.Denylist))
	for _, word := range c.Denylist {
		denied[strings.ToUpper(word)] = true
	}

	for _, candidate := range bicShape.FindAllString(strings.ToUpper(text), -1) {
		if len(candidate) != 8 && len(candidate) != 11 {
			continue
		}
		if denied[candidate] {
			continue
		}
		return candidate, true
	}
	return "", false
}
