// Package bankid validates bank identifiers found in invoice text.
//
// IBAN candidates are located by shape, structurally checked, and then
// proven with the ISO 7064 mod-97 checksum; the first candidate in text-scan
// order that passes both checks wins. BIC candidates have no checksum, so
// selection relies on shape, exact length (8 or 11) and a configurable
// denylist of words that accidentally share the BIC shape.
package bankid

import (
	"regexp"
	"strings"
)

// ibanShape matches candidate IBANs in whitespace-stripped uppercase text:
// a two-letter country code, two check digits, and 11 to 30 alphanumerics.
// Structural validation narrows the length afterwards; the checksum does
// the real work of discarding false positives.
var ibanShape = regexp.MustCompile(`[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}`)

var whitespaceStripper = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", " ", "", " ", "")

// FindIBAN scans text for IBAN candidates and returns the first one, in
// scan order, that passes both structural and checksum validation. All
// other candidates are discarded even if valid. Returns ok=false when no
// candidate validates.
//
// Whitespace is stripped before scanning because IBANs are conventionally
// printed in groups of four ("DE89 3704 0044 ...").
func FindIBAN(text string) (string, bool) {
	compact := whitespaceStripper.Replace(strings.ToUpper(text))
	for _, candidate := range ibanShape.FindAllString(compact, -1) {
		// The shape match is greedy and can swallow trailing alphanumeric
		// noise ("...013000BIC" once whitespace is gone), so shrink the
		// candidate from the right until the checksum proves a prefix.
		for end := len(candidate); end >= 15; end-- {
			if ValidateIBAN(candidate[:end]) {
				return candidate[:end], true
			}
		}
	}
	return "", false
}

// ValidateIBAN reports whether the candidate is structurally sound and
// passes the ISO 7064 mod-97 checksum. The candidate must already be
// uppercase with no internal whitespace.
func ValidateIBAN(candidate string) bool {
	if len(candidate) < 15 || len(candidate) > 34 {
		return false
	}
	for i, r := range candidate {
		switch {
		case i < 2:
			if r < 'A' || r > 'Z' {
				return false
			}
		case i < 4:
			if r < '0' || r > '9' {
				return false
			}
		default:
			if !isAlnumUpper(r) {
				return false
			}
		}
	}
	return mod97(rearrange(candidate)) == 1
}

// rearrange moves the country code and check digits to the end, per ISO
// 13616: "DE89xxxx" becomes "xxxxDE89".
func rearrange(iban string) string {
	return iban[4:] + iban[:4]
}

// mod97 reduces the rearranged candidate modulo 97. Letters expand to their
// numeric value (A=10 .. Z=35), producing a numeral far too large for any
// integer type, so the remainder is folded one decimal digit at a time.
func mod97(s string) int {
	remainder := 0
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			// Two-digit expansion: A=10 ... Z=35.
			v := int(r) - 55
			remainder = (remainder*10 + v/10) % 97
			remainder = (remainder*10 + v%10) % 97
		} else {
			remainder = (remainder*10 + int(r-'0')) % 97
		}
	}
	return remainder
}

func isAlnumUpper(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
