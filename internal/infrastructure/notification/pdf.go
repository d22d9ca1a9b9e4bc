// Package notification delivers activation credentials out of band: a PDF
// credential sheet mailed over SMTP, produced by an asynchronous dispatcher
// so license creation never waits on delivery.
package notification

import (
	"bytes"
	"fmt"
	"strings"
)

// CredentialSheet renders a single-page PDF listing the delivery details.
// The writer emits the fixed five-object document (catalog, page tree, page,
// content stream, font) that every viewer accepts; no external renderer is
// involved.
func CredentialSheet(customerName, systemID, password string) []byte {
	lines := []string{
		"License Credential Sheet",
		"",
		"Customer: " + customerName,
		"System ID: " + systemID,
		"Activation Password: " + password,
		"",
		"Keep this document confidential.",
	}

	var content bytes.Buffer
	content.WriteString("BT\n/F1 12 Tf\n50 770 Td\n14 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj\nT*\n", escapePDFText(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var doc bytes.Buffer
	doc.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = doc.Len()
		fmt.Fprintf(&doc, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefOffset := doc.Len()
	fmt.Fprintf(&doc, "xref\n0 %d\n", len(objects)+1)
	doc.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&doc, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&doc, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefOffset)
	return doc.Bytes()
}

func escapePDFText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
