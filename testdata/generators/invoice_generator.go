// Command invoice_generator produces synthetic invoice PDF fixtures for
// exercising the evidence pipeline end to end.
//
// The generated corpus mixes complete invoices with degraded cases (missing
// fields, scans without a text layer, non-PDF evidence) in configurable
// ratios, and writes an expected.json manifest describing what each file
// should classify as. Run it, then point the evidence CLI at the output
// directory and diff the results against the manifest.
//
// Usage:
//
//	go run invoice_generator.go -output-dir=../generated -count=50 -seed=42
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"golang-invoice-evidence-service/internal/bankid"
)

// InvoiceTemplate holds the fields baked into one synthetic invoice.
type InvoiceTemplate struct {
	FileName      string `json:"file_name"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceDate   string `json:"invoice_date,omitempty"`
	Amount        string `json:"amount,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	BIC           string `json:"bic,omitempty"`
	ExpectStatus  string `json:"expect_status"`
}

var bics = []string{"COBADEFF", "MARKDEF1100", "DEUTDEFF", "GENODEF1S04"}

func main() {
	var (
		outputDir   = flag.String("output-dir", "../generated", "Output directory for generated files")
		count       = flag.Int("count", 20, "Number of complete invoices to generate")
		degraded    = flag.Int("degraded", 5, "Number of degraded cases per kind (missing field, scan, non-pdf)")
		seed        = flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible generation")
		minAmount   = flag.Float64("min-amount", 1.00, "Minimum invoice amount")
		maxAmount   = flag.Float64("max-amount", 25000.00, "Maximum invoice amount")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	var manifest []InvoiceTemplate

	for i := 0; i < *count; i++ {
		tpl := completeInvoice(rng, i, *minAmount, *maxAmount)
		if err := writeInvoicePDF(*outputDir, tpl); err != nil {
			log.Fatalf("Failed to write %s: %v", tpl.FileName, err)
		}
		manifest = append(manifest, tpl)
	}

	for i := 0; i < *degraded; i++ {
		tpl := completeInvoice(rng, *count+i, *minAmount, *maxAmount)
		tpl.FileName = fmt.Sprintf("missing_iban_%03d.pdf", i)
		tpl.IBAN = ""
		tpl.BIC = ""
		tpl.ExpectStatus = "needs_review"
		if err := writeInvoicePDF(*outputDir, tpl); err != nil {
			log.Fatalf("Failed to write %s: %v", tpl.FileName, err)
		}
		manifest = append(manifest, tpl)
	}

	for i := 0; i < *degraded; i++ {
		name := fmt.Sprintf("scan_%03d.pdf", i)
		if err := os.WriteFile(filepath.Join(*outputDir, name), buildPDF(nil), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		manifest = append(manifest, InvoiceTemplate{FileName: name, ExpectStatus: "needs_review"})
	}

	for i := 0; i < *degraded; i++ {
		name := fmt.Sprintf("foto_%03d.png", i)
		if err := os.WriteFile(filepath.Join(*outputDir, name), []byte("\x89PNG\r\n\x1a\nstub"), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		manifest = append(manifest, InvoiceTemplate{FileName: name, ExpectStatus: "needs_review"})
	}

	manifestPath := filepath.Join(*outputDir, "expected.json")
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode manifest: %v", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		log.Fatalf("Failed to write manifest: %v", err)
	}

	fmt.Printf("Generated %d files in %s (seed %d)\n", len(manifest), *outputDir, *seed)
	fmt.Printf("Manifest: %s\n", manifestPath)
}

func completeInvoice(rng *rand.Rand, index int, minAmount, maxAmount float64) InvoiceTemplate {
	amount := decimal.NewFromFloat(minAmount +
		rng.Float64()*(maxAmount-minAmount)).Round(2)

	day := 1 + rng.Intn(28)
	month := 1 + rng.Intn(12)

	return InvoiceTemplate{
		FileName:      fmt.Sprintf("rechnung_%03d.pdf", index),
		InvoiceNumber: fmt.Sprintf("RE-2024-%04d", 1+rng.Intn(9999)),
		InvoiceDate:   fmt.Sprintf("%02d.%02d.2024", day, month),
		Amount:        germanAmount(amount),
		IBAN:          randomGermanIBAN(rng),
		BIC:           bics[rng.Intn(len(bics))],
		ExpectStatus:  "ok",
	}
}

func writeInvoicePDF(dir string, tpl InvoiceTemplate) error {
	var lines []string
	// Company names sharing the 8/11-character BIC shape would shadow the
	// real BIC in shape-only scanning, so the letterhead avoids them.
	lines = append(lines, "Musterbau KG")
	if tpl.InvoiceNumber != "" {
		lines = append(lines, "Rechnungsnummer: "+tpl.InvoiceNumber)
	}
	if tpl.InvoiceDate != "" {
		lines = append(lines, "Datum: "+tpl.InvoiceDate)
	}
	if tpl.Amount != "" {
		lines = append(lines, "Gesamtbetrag: "+tpl.Amount+" EUR")
	}
	if tpl.IBAN != "" {
		lines = append(lines, "IBAN: "+groupByFour(tpl.IBAN))
	}
	if tpl.BIC != "" {
		lines = append(lines, "BIC: "+tpl.BIC)
	}
	return os.WriteFile(filepath.Join(dir, tpl.FileName), buildPDF(lines), 0644)
}

// germanAmount renders a decimal in the German convention: dot-grouped
// thousands, comma decimal separator.
func germanAmount(d decimal.Decimal) string {
	plain := d.StringFixed(2)
	parts := strings.SplitN(plain, ".", 2)
	intPart := parts[0]

	var grouped []string
	for len(intPart) > 3 {
		grouped = append([]string{intPart[len(intPart)-3:]}, grouped...)
		intPart = intPart[:len(intPart)-3]
	}
	grouped = append([]string{intPart}, grouped...)
	return strings.Join(grouped, ".") + "," + parts[1]
}

// randomGermanIBAN builds a DE IBAN with correct ISO 7064 check digits and
// asserts it against the production validator.
func randomGermanIBAN(rng *rand.Rand) string {
	bban := make([]byte, 18)
	for i := range bban {
		bban[i] = byte('0' + rng.Intn(10))
	}

	// Check digits: 98 minus the mod-97 remainder of BBAN + "DE00" with
	// letters expanded (D=13, E=14).
	numeric := string(bban) + "131400"
	remainder := 0
	for _, r := range numeric {
		remainder = (remainder*10 + int(r-'0')) % 97
	}
	check := 98 - remainder

	iban := fmt.Sprintf("DE%02d%s", check, bban)
	if !bankid.ValidateIBAN(iban) {
		log.Fatalf("Generated IBAN failed validation: %s", iban)
	}
	return iban
}

func groupByFour(iban string) string {
	var groups []string
	for len(iban) > 4 {
		groups = append(groups, iban[:4])
		iban = iban[4:]
	}
	groups = append(groups, iban)
	return strings.Join(groups, " ")
}

// buildPDF assembles a minimal single-page PDF with an uncompressed text
// stream. No lines yields a valid page without a text layer, which the
// pipeline classifies as a scan.
func buildPDF(lines []string) []byte {
	var content strings.Builder
	if len(lines) > 0 {
		content.WriteString("BT /F1 11 Tf 50 790 Td\n")
		for i, line := range lines {
			if i > 0 {
				content.WriteString("0 -14 Td\n")
			}
			fmt.Fprintf(&content, "(%s) Tj\n", escapeText(line))
		}
		content.WriteString("ET")
	}
	stream := content.String()

	var buf bytes.Buffer
	offsets := make([]int, 6)
	buf.WriteString("%PDF-1.4\n")

	writeObj := func(num int, body string) {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] "+
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	writeObj(4, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	writeObj(5, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xrefOffset := buf.Len()
	buf.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefOffset)
	return buf.Bytes()
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return s
}
