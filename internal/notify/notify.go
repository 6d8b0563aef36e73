// Package notify implements the alert sink boundary. Alerts are
// fire-and-forget: a send failure is reported to the caller but never
// retried.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcChen/job-tracker/internal/offer"
)

// Alerter sends one formatted alert message.
type Alerter interface {
	Send(ctx context.Context, msg string) error
}

// FormatOffer renders the alert text for one accepted offer. Business France
// postings get the VIE-specific wording, everything else the generic one.
func FormatOffer(o offer.Offer) string {
	orNA := func(s string) string {
		if s == "" {
			return offer.NotAvailable
		}
		return s
	}

	var b strings.Builder
	if o.Source == offer.SourceBusinessFrance {
		b.WriteString("New VIE Job Alert!\n")
		fmt.Fprintf(&b, "Title: %s\n", o.Title)
		fmt.Fprintf(&b, "Company: %s\n", o.Company)
		fmt.Fprintf(&b, "Location: %s\n", o.Location)
		fmt.Fprintf(&b, "Duration: %s\n", orNA(o.Duration))
		return b.String()
	}

	b.WriteString("New Job Alert!\n")
	fmt.Fprintf(&b, "Title: %s\n", o.Title)
	fmt.Fprintf(&b, "Company: %s\n", o.Company)
	fmt.Fprintf(&b, "Source: %s\n", o.Source)
	fmt.Fprintf(&b, "Location: %s\n", o.Location)
	fmt.Fprintf(&b, "Contract Type: %s\n", orNA(string(o.ContractType)))
	fmt.Fprintf(&b, "URL: %s\n", o.URL)
	return b.String()
}
