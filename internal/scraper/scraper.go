// Package scraper defines the contract every source adapter implements and
// the shared pagination machinery they build on. Per-site DOM quirks stay
// inside the adapter packages; the pipeline never sees a selector.
package scraper

import (
	"context"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/offer"
)

// Handle is an opaque per-offer reference produced by LoadAllOffers and
// consumed by ExtractOffer: a DOM locator for card-based sources, a detail
// page URL for sources that expose one page per offer.
type Handle any

// Adapter is implemented once per supported job site.
type Adapter interface {
	// Name is the human-readable adapter name used in logs and reports.
	Name() string

	// Source is the canonical source this adapter feeds.
	Source() offer.Source

	// LoadAllOffers drives the session through the site's pagination
	// mechanism until the full result set is revealed, and returns one
	// handle per offer in page order. An error here means the source
	// contributes nothing this run.
	LoadAllOffers(ctx context.Context, s *browser.Session) ([]Handle, error)

	// ExtractOffer reads the raw field bag for one handle. An error is a
	// per-offer failure: the caller logs it and moves to the next handle.
	ExtractOffer(ctx context.Context, s *browser.Session, h Handle) (offer.RawFields, error)
}

// TotalReporter is implemented by adapters whose source announces a total
// result count; the pipeline logs it against the extracted count.
type TotalReporter interface {
	TotalOffers() int
}
