// Package pipeline drives a scraping run end to end: preload the dedup
// index, then for each source load, extract, validate, filter, dedup-check
// and fan accepted offers out to the storage and alert sinks.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/dedup"
	"github.com/MarcChen/job-tracker/internal/filter"
	"github.com/MarcChen/job-tracker/internal/notify"
	"github.com/MarcChen/job-tracker/internal/offer"
	"github.com/MarcChen/job-tracker/internal/scraper"
	"github.com/MarcChen/job-tracker/internal/store"
)

// DefaultAlertSpacing is the minimum delay between successive alert sends;
// the SMS gateway rejects bursts.
const DefaultAlertSpacing = time.Second

// SourceResult aggregates one source's contribution to the run.
type SourceResult struct {
	Name             string
	Err              error
	Scraped          int
	SkippedFilter    int
	SkippedInvalid   int
	SkippedDuplicate int
	Persisted        int
	FailedExtraction int
	SinkFailures     int
}

// Report is the run's final accounting, attributing every skip and failure
// to a source so systemic failures stand out from routine noise.
type Report struct {
	KnownOffers int
	Sources     []SourceResult
}

func (r *Report) total(f func(SourceResult) int) int {
	sum := 0
	for _, s := range r.Sources {
		sum += f(s)
	}
	return sum
}

func (r *Report) Scraped() int   { return r.total(func(s SourceResult) int { return s.Scraped }) }
func (r *Report) Persisted() int { return r.total(func(s SourceResult) int { return s.Persisted }) }
func (r *Report) SkippedDuplicate() int {
	return r.total(func(s SourceResult) int { return s.SkippedDuplicate })
}
func (r *Report) SkippedFilter() int {
	return r.total(func(s SourceResult) int { return s.SkippedFilter })
}
func (r *Report) FailedExtraction() int {
	return r.total(func(s SourceResult) int { return s.FailedExtraction })
}

// AllSourcesFailed reports whether every source ended in a load failure.
func (r *Report) AllSourcesFailed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Err == nil {
			return false
		}
	}
	return true
}

// Log writes the run summary.
func (r *Report) Log() {
	for _, s := range r.Sources {
		if s.Err != nil {
			log.Printf("source %s: FAILED: %v", s.Name, s.Err)
			continue
		}
		log.Printf("source %s: scraped=%d skipped-filter=%d skipped-invalid=%d skipped-duplicate=%d persisted=%d failed-extraction=%d sink-failures=%d",
			s.Name, s.Scraped, s.SkippedFilter, s.SkippedInvalid, s.SkippedDuplicate, s.Persisted, s.FailedExtraction, s.SinkFailures)
	}
	log.Printf("run totals: scraped=%d skipped-filter=%d skipped-duplicate=%d persisted=%d failed-extraction=%d (index preloaded with %d known offers)",
		r.Scraped(), r.SkippedFilter(), r.SkippedDuplicate(), r.Persisted(), r.FailedExtraction(), r.KnownOffers)
}

// Pipeline owns one run's collaborators. Sources share the one browser
// session and run sequentially in configured order, so later sources see the
// dedup index as mutated by earlier ones.
type Pipeline struct {
	session  *browser.Session
	store    store.Store
	alerter  notify.Alerter
	adapters []scraper.Adapter
	keywords filter.Keywords

	alertSpacing time.Duration
	sleep        func(time.Duration)
	alertsSent   int
}

type Option func(*Pipeline)

// WithAlertSpacing overrides the minimum delay between alert sends.
func WithAlertSpacing(d time.Duration) Option {
	return func(p *Pipeline) { p.alertSpacing = d }
}

// WithSleep replaces the spacing sleep, for tests.
func WithSleep(f func(time.Duration)) Option {
	return func(p *Pipeline) { p.sleep = f }
}

// New assembles a pipeline. alerter may be nil when alerting is disabled.
func New(session *browser.Session, st store.Store, alerter notify.Alerter,
	adapters []scraper.Adapter, keywords filter.Keywords, opts ...Option) *Pipeline {
	p := &Pipeline{
		session:      session,
		store:        st,
		alerter:      alerter,
		adapters:     adapters,
		keywords:     keywords,
		alertSpacing: DefaultAlertSpacing,
		sleep:        time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full scraping run. The returned error is non-nil only for
// run-fatal conditions (dedup preload failure); per-source and per-offer
// failures are carried in the report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	idx, err := dedup.Preload(ctx, p.store)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	log.Printf("dedup index preloaded with %d known offers", idx.Len())

	report := &Report{KnownOffers: idx.Len()}
	for _, a := range p.adapters {
		log.Printf("starting source: %s", a.Name())
		res := p.runSource(ctx, a, idx)
		report.Sources = append(report.Sources, res)
	}
	return report, nil
}

func (p *Pipeline) runSource(ctx context.Context, a scraper.Adapter, idx *dedup.Index) SourceResult {
	res := SourceResult{Name: a.Name()}

	handles, err := a.LoadAllOffers(ctx, p.session)
	if err != nil {
		// fatal for this source only; the run continues
		res.Err = fmt.Errorf("loading offers: %w", err)
		return res
	}
	if tr, ok := a.(scraper.TotalReporter); ok && tr.TotalOffers() > 0 {
		log.Printf("source %s: %d handles collected, site announced %d offers", a.Name(), len(handles), tr.TotalOffers())
	}

	for _, h := range handles {
		if ctx.Err() != nil {
			res.Err = ctx.Err()
			return res
		}

		raw, err := a.ExtractOffer(ctx, p.session, h)
		if err != nil {
			res.FailedExtraction++
			log.Printf("source %s: extraction failed: %v", a.Name(), err)
			continue
		}
		res.Scraped++

		if skip, reason := p.keywords.ShouldSkip(raw.Title); skip {
			res.SkippedFilter++
			log.Printf("source %s: skipping %q: %s", a.Name(), raw.Title, reason)
			continue
		}

		o, err := offer.Normalize(raw, a.Source())
		if err != nil {
			res.SkippedInvalid++
			log.Printf("source %s: dropping offer: %v", a.Name(), err)
			continue
		}

		key := o.DedupKey()
		if idx.Contains(key) {
			res.SkippedDuplicate++
			continue
		}
		idx.Record(key)

		// persist first; an alert must never fire for an unsaved offer,
		// and an alert failure must never roll persistence back
		if err := p.store.SaveOffer(ctx, o); err != nil {
			res.SinkFailures++
			log.Printf("source %s: persisting %q failed: %v", a.Name(), o.Title, err)
			continue
		}
		res.Persisted++

		if p.alerter == nil {
			continue
		}
		if p.alertsSent > 0 {
			p.sleep(p.alertSpacing)
		}
		p.alertsSent++
		if err := p.alerter.Send(ctx, notify.FormatOffer(o)); err != nil {
			res.SinkFailures++
			log.Printf("source %s: alert for %q failed: %v", a.Name(), o.Title, err)
		}
	}
	return res
}

// IsFatal reports whether err aborts a whole run rather than one source.
func IsFatal(err error) bool {
	return errors.Is(err, store.ErrUnavailable)
}
