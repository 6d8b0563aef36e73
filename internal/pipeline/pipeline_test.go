package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/filter"
	"github.com/MarcChen/job-tracker/internal/offer"
	"github.com/MarcChen/job-tracker/internal/scraper"
)

// fakeAdapter serves canned raw fields as handles. A handle that is an error
// makes ExtractOffer fail with it.
type fakeAdapter struct {
	name    string
	source  offer.Source
	handles []scraper.Handle
	loadErr error
}

func (f *fakeAdapter) Name() string         { return f.name }
func (f *fakeAdapter) Source() offer.Source { return f.source }

func (f *fakeAdapter) LoadAllOffers(ctx context.Context, _ *browser.Session) ([]scraper.Handle, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.handles, nil
}

func (f *fakeAdapter) ExtractOffer(ctx context.Context, _ *browser.Session, h scraper.Handle) (offer.RawFields, error) {
	if err, ok := h.(error); ok {
		return offer.RawFields{}, err
	}
	return h.(offer.RawFields), nil
}

type fakeStore struct {
	known   []offer.Identity
	saved   []offer.Offer
	listErr error
	saveErr error
}

func (f *fakeStore) ListKnownOffers(ctx context.Context) ([]offer.Identity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := append([]offer.Identity{}, f.known...)
	for _, o := range f.saved {
		out = append(out, offer.Identity{
			Title: o.Title, Company: o.Company, Location: o.Location, Source: string(o.Source),
		})
	}
	return out, nil
}

func (f *fakeStore) SaveOffer(ctx context.Context, o offer.Offer) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, o)
	return nil
}

type fakeAlerter struct {
	sent    []string
	sendErr error
}

func (f *fakeAlerter) Send(ctx context.Context, msg string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func rawOffer(title string) offer.RawFields {
	return offer.RawFields{
		Title:    title,
		Company:  "Acme",
		Location: "Paris",
		URL:      "https://jobs.example.com/" + title,
	}
}

func TestRunPersistsOnlyNewOffers(t *testing.T) {
	st := &fakeStore{known: []offer.Identity{
		{Title: "Data Engineer", Company: "Acme", Location: "Paris", Source: string(offer.SourceApple)},
	}}
	al := &fakeAlerter{}
	ad := &fakeAdapter{
		name:   "apple",
		source: offer.SourceApple,
		handles: []scraper.Handle{
			rawOffer("Data Engineer"), // already known
			rawOffer("ML Engineer"),
		},
	}

	p := New(nil, st, al, []scraper.Adapter{ad}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scraped())
	assert.Equal(t, 1, report.SkippedDuplicate())
	assert.Equal(t, 1, report.Persisted())
	require.Len(t, st.saved, 1)
	assert.Equal(t, "ML Engineer", st.saved[0].Title)
	require.Len(t, al.sent, 1)
	assert.Contains(t, al.sent[0], "ML Engineer")
}

func TestRunIsIdempotent(t *testing.T) {
	st := &fakeStore{}
	handles := []scraper.Handle{rawOffer("Data Engineer"), rawOffer("ML Engineer")}

	run := func() *Report {
		ad := &fakeAdapter{name: "apple", source: offer.SourceApple, handles: handles}
		p := New(nil, st, nil, []scraper.Adapter{ad}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
		report, err := p.Run(context.Background())
		require.NoError(t, err)
		return report
	}

	first := run()
	assert.Equal(t, 2, first.Persisted())

	second := run()
	assert.Equal(t, 0, second.Persisted())
	assert.Equal(t, 2, second.SkippedDuplicate())
	assert.Len(t, st.saved, 2)
}

func TestRunDedupesWithinRunAcrossSources(t *testing.T) {
	st := &fakeStore{}
	raw := rawOffer("Data Engineer")
	a := &fakeAdapter{name: "apple-1", source: offer.SourceApple, handles: []scraper.Handle{raw}}
	b := &fakeAdapter{name: "apple-2", source: offer.SourceApple, handles: []scraper.Handle{raw}}

	p := New(nil, st, nil, []scraper.Adapter{a, b}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Persisted())
	assert.Equal(t, 1, report.SkippedDuplicate())
}

func TestSourceFailureDoesNotAbortRun(t *testing.T) {
	st := &fakeStore{}
	ok := &fakeAdapter{name: "apple", source: offer.SourceApple, handles: []scraper.Handle{rawOffer("Data Engineer")}}
	bad := &fakeAdapter{name: "air france", source: offer.SourceAirFrance, loadErr: errors.New("page layout changed")}

	p := New(nil, st, nil, []scraper.Adapter{bad, ok}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Sources, 2)
	assert.Error(t, report.Sources[0].Err)
	assert.NoError(t, report.Sources[1].Err)
	assert.Equal(t, 1, report.Persisted())
	assert.False(t, report.AllSourcesFailed())
}

func TestPreloadFailureIsFatal(t *testing.T) {
	st := &fakeStore{listErr: errors.New("connection refused")}
	p := New(nil, st, nil, nil, filter.Keywords{})

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, IsFatal(err))
}

func TestPersistFailureBlocksAlert(t *testing.T) {
	st := &fakeStore{saveErr: errors.New("rate limited")}
	al := &fakeAlerter{}
	ad := &fakeAdapter{name: "apple", source: offer.SourceApple, handles: []scraper.Handle{rawOffer("Data Engineer")}}

	p := New(nil, st, al, []scraper.Adapter{ad}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Persisted())
	assert.Equal(t, 1, report.Sources[0].SinkFailures)
	assert.Empty(t, al.sent)
}

func TestAlertFailureKeepsPersistence(t *testing.T) {
	st := &fakeStore{}
	al := &fakeAlerter{sendErr: errors.New("service not enabled")}
	ad := &fakeAdapter{name: "apple", source: offer.SourceApple, handles: []scraper.Handle{rawOffer("Data Engineer")}}

	p := New(nil, st, al, []scraper.Adapter{ad}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Persisted())
	assert.Equal(t, 1, report.Sources[0].SinkFailures)
	assert.Len(t, st.saved, 1)
}

func TestFilterSkipsBeforeValidation(t *testing.T) {
	st := &fakeStore{}
	ad := &fakeAdapter{
		name:   "apple",
		source: offer.SourceApple,
		handles: []scraper.Handle{
			rawOffer("Senior Data Engineer"),
			rawOffer("Data Engineer Intern"),
		},
	}
	kw := filter.Keywords{Exclude: []string{"intern"}}

	p := New(nil, st, nil, []scraper.Adapter{ad}, kw, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.SkippedFilter())
	assert.Equal(t, 1, report.Persisted())
}

func TestInvalidOfferIsDroppedNotFatal(t *testing.T) {
	st := &fakeStore{}
	missingCompany := rawOffer("Data Engineer")
	missingCompany.Company = "N/A"

	ad := &fakeAdapter{
		name:    "apple",
		source:  offer.SourceApple,
		handles: []scraper.Handle{missingCompany, rawOffer("ML Engineer")},
	}
	p := New(nil, st, nil, []scraper.Adapter{ad}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sources[0].SkippedInvalid)
	assert.Equal(t, 1, report.Persisted())
}

func TestExtractionFailureSkipsOffer(t *testing.T) {
	st := &fakeStore{}
	ad := &fakeAdapter{
		name:    "apple",
		source:  offer.SourceApple,
		handles: []scraper.Handle{errors.New("stale locator"), rawOffer("Data Engineer")},
	}
	p := New(nil, st, nil, []scraper.Adapter{ad}, filter.Keywords{}, WithSleep(func(time.Duration) {}))
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.FailedExtraction())
	assert.Equal(t, 1, report.Persisted())
}

func TestAlertsAreSpacedOut(t *testing.T) {
	st := &fakeStore{}
	al := &fakeAlerter{}
	ad := &fakeAdapter{
		name:    "apple",
		source:  offer.SourceApple,
		handles: []scraper.Handle{rawOffer("Data Engineer"), rawOffer("ML Engineer"), rawOffer("Platform Engineer")},
	}

	var slept []time.Duration
	p := New(nil, st, al, []scraper.Adapter{ad}, filter.Keywords{},
		WithAlertSpacing(2*time.Second),
		WithSleep(func(d time.Duration) { slept = append(slept, d) }))
	_, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, al.sent, 3)
	// no pause before the first alert, one before each subsequent one
	require.Len(t, slept, 2)
	assert.Equal(t, 2*time.Second, slept[0])
}

func TestCancelledContextStopsSource(t *testing.T) {
	st := &fakeStore{}
	ad := &fakeAdapter{name: "apple", source: offer.SourceApple, handles: []scraper.Handle{rawOffer("Data Engineer")}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(nil, st, nil, []scraper.Adapter{ad}, filter.Keywords{})
	report, err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, report.Sources, 1)
	assert.ErrorIs(t, report.Sources[0].Err, context.Canceled)
	assert.Equal(t, 0, report.Persisted())
}
