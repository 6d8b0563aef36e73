// Package filter centralizes the include/exclude keyword policy applied to
// extracted offers, so no adapter carries its own filtering logic.
package filter

import (
	"strings"

	"github.com/MarcChen/job-tracker/internal/offer"
)

// Keywords holds the include/exclude lists applied to every offer title.
type Keywords struct {
	Include []string
	Exclude []string
}

// ShouldSkip reports whether an offer with the given title is out of scope,
// and the matched keyword when it is. Matching is case- and
// diacritic-insensitive. An empty include list accepts everything.
func (k Keywords) ShouldSkip(title string) (bool, string) {
	folded := offer.Fold(title)

	if len(k.Include) > 0 {
		matched := false
		for _, kw := range k.Include {
			if strings.Contains(folded, offer.Fold(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return true, "no include keyword matched"
		}
	}

	for _, kw := range k.Exclude {
		if kw == "" {
			continue
		}
		if strings.Contains(folded, offer.Fold(kw)) {
			return true, "excluded keyword " + kw
		}
	}
	return false, ""
}
