package dedup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcChen/job-tracker/internal/offer"
)

type fakeLister struct {
	ids []offer.Identity
	err error
}

func (f *fakeLister) ListKnownOffers(ctx context.Context) ([]offer.Identity, error) {
	return f.ids, f.err
}

func TestPreload(t *testing.T) {
	lister := &fakeLister{ids: []offer.Identity{
		{Title: "Data Engineer", Company: "Air France", Location: "Paris", Source: "Air France"},
		{Title: "  DATA engineer ", Company: "air france", Location: "paris", Source: "Air France"},
		{Title: "ML Engineer", Company: "Apple", Location: "Paris", Source: "Apple"},
	}}

	idx, err := Preload(context.Background(), lister)
	require.NoError(t, err)

	// the first two rows normalize to the same key
	assert.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains(lister.ids[0].DedupKey()))
}

func TestPreloadFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("store unreachable")}

	idx, err := Preload(context.Background(), lister)
	assert.Nil(t, idx)
	assert.Error(t, err)
}

func TestRecordAndContains(t *testing.T) {
	idx, err := Preload(context.Background(), &fakeLister{})
	require.NoError(t, err)

	o := offer.Offer{Title: "Go Dev", Company: "WTTJ Corp", Location: "Lyon", Source: offer.SourceWTTJ}
	key := o.DedupKey()

	assert.False(t, idx.Contains(key))
	idx.Record(key)
	assert.True(t, idx.Contains(key))
	assert.Equal(t, 1, idx.Len())
}
