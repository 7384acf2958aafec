// Package export renders citizen data as CSV or JSON statements and as the
// plain-text benefit summary shared through the clipboard.
package export

import (
	"fmt"
	"time"

	"github.com/sadopc/civic/internal/domain"
)

// Currency is the denomination of every amount in the portal.
const Currency = "MDL"

// BenefitSummary is the text copied when a benefit is shared.
func BenefitSummary(b domain.Benefit) string {
	return fmt.Sprintf("Benefit Update for %s:\nName: %s\nStatus: %s\nNext Payment: %s\nAnnual Amount: %s %s",
		b.Recipient, b.Name, b.Status, b.NextPaymentDate, b.AnnualAmount.String(), Currency)
}

// FileName is the default statement file name for format on day now.
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("civic-statement-%s.%s", now.Format(domain.DateLayout), format)
}

func formatPaid(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(domain.PaymentDateLayout)
}
