// Package service holds the pure domain logic and the collaborator ports of
// the license lifecycle.
package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/embedpro/pids-licensing/pkg/constants"
)

// FormatSystemID derives the deterministic system identifier:
//
//	CFS30_{CUST}_{SITE}{SEQ}_{MMYYYY}_{DEVICES}
//
// CUST is the first three letters of the customer name uppercased, SITE the
// first two of the site name. SEQ encodes the customer's license ordinal so
// the ID width stays stable: "CS3" below ten, "C42" below a hundred, the
// bare number beyond that.
func FormatSystemID(customerName, siteName string, deviceCount, sequence int, generated time.Time) string {
	return fmt.Sprintf("%s_%s_%s%s_%s_%d",
		constants.SystemIDPrefix,
		upperPrefix(customerName, 3),
		upperPrefix(siteName, 2),
		sequenceTag(sequence),
		generated.Format("012006"),
		deviceCount,
	)
}

func upperPrefix(s string, n int) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > n {
		s = s[:n]
	}
	return s
}

func sequenceTag(n int) string {
	switch {
	case n < 10:
		return fmt.Sprintf("CS%d", n)
	case n < 100:
		return fmt.Sprintf("C%d", n)
	default:
		return fmt.Sprintf("%d", n)
	}
}
