// Package dedup holds the run-lifetime index of every offer already stored
// remotely. The remote store caps query result pages, so per-offer existence
// checks against it can miss older records; instead the whole key universe is
// materialized once at startup and is authoritative for the rest of the run.
package dedup

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/MarcChen/job-tracker/internal/offer"
)

// Lister is the slice of the store boundary the index needs: one bulk read
// of the dedup-contributing attributes of every stored offer, with the
// store's native pagination handled internally.
type Lister interface {
	ListKnownOffers(ctx context.Context) ([]offer.Identity, error)
}

// Index is the in-memory set of known dedup keys. It is owned by the single
// run goroutine and is never persisted.
type Index struct {
	keys mapset.Set[string]
}

// Preload builds the index from a full read of the remote store. A failure
// here is fatal for the run; no offer can be safely deduplicated without the
// complete key universe.
func Preload(ctx context.Context, lister Lister) (*Index, error) {
	known, err := lister.ListKnownOffers(ctx)
	if err != nil {
		return nil, fmt.Errorf("preloading dedup index: %w", err)
	}

	idx := &Index{keys: mapset.NewThreadUnsafeSet[string]()}
	for _, id := range known {
		idx.keys.Add(id.DedupKey())
	}
	return idx, nil
}

// Contains reports whether key is already known.
func (i *Index) Contains(key string) bool {
	return i.keys.Contains(key)
}

// Record marks key as known for the remainder of the run.
func (i *Index) Record(key string) {
	i.keys.Add(key)
}

// Len returns the number of known keys.
func (i *Index) Len() int {
	return i.keys.Cardinality()
}
