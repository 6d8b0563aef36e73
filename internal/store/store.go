// Package store implements the remote storage boundary: one bulk read of all
// known offers for dedup preload and one create operation per accepted offer.
package store

import (
	"context"
	"errors"

	"github.com/MarcChen/job-tracker/internal/offer"
)

// ErrUnavailable marks failures that make the remote store unusable for the
// run (network failure, auth rejection, server errors).
var ErrUnavailable = errors.New("store unavailable")

// Store is the full storage-sink contract consumed by the pipeline.
type Store interface {
	// ListKnownOffers reads every stored offer's identity, paging through
	// the backend's native page-size limit until exhausted.
	ListKnownOffers(ctx context.Context) ([]offer.Identity, error)
	// SaveOffer persists one validated offer.
	SaveOffer(ctx context.Context, o offer.Offer) error
}
