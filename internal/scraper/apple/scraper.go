// Apple careers. Results live in an accordion list paged by a chevron
// next-button; each offer links to a detail page, so handles are detail
// URLs. Company and contract type are fixed by the site itself.
package apple

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/offer"
	"github.com/MarcChen/job-tracker/internal/scraper"
)

const defaultURL = "https://jobs.apple.com/fr-fr/search?sort=relevance&location=france-FRAC"

const (
	cookieAgreeSelector = "#didomi-notice-agree-button"
	totalSelector       = ".t-eyebrow-reduced"
	rowSelector         = "li[data-core-accordion-item]"
	titleLinkSelector   = "a.link-inline.t-intro.word-wrap-break-word"
	nextPageSelector    = "button.icon.icon-chevronend:not([disabled])"
)

var totalRe = regexp.MustCompile(`(\d+)`)

type Scraper struct {
	url   string
	total int
}

func New() *Scraper {
	return &Scraper{url: defaultURL}
}

func (s *Scraper) Name() string         { return "Apple" }
func (s *Scraper) Source() offer.Source { return offer.SourceApple }
func (s *Scraper) TotalOffers() int     { return s.total }

func (s *Scraper) LoadAllOffers(ctx context.Context, sess *browser.Session) ([]scraper.Handle, error) {
	if err := sess.Navigate(s.url); err != nil {
		return nil, err
	}
	sess.ClickIfVisible(cookieAgreeSelector, 3*time.Second)

	if err := sess.WaitVisible(totalSelector, 15*time.Second); err != nil {
		return nil, fmt.Errorf("result count never appeared: %w", err)
	}
	txt, err := sess.Text(totalSelector)
	if err != nil {
		return nil, err
	}
	m := totalRe.FindStringSubmatch(txt)
	if m == nil {
		return nil, fmt.Errorf("could not parse total offers from %q", txt)
	}
	s.total, _ = strconv.Atoi(m[1])

	var (
		urls []string
		seen = map[string]struct{}{}
	)
	collect := func() error {
		if err := sess.WaitVisible(titleLinkSelector, 15*time.Second); err != nil {
			return err
		}
		rows, err := sess.All(rowSelector)
		if err != nil {
			return err
		}
		for _, row := range rows {
			href, err := row.Locator(titleLinkSelector).First().GetAttribute("href")
			if err != nil || href == "" {
				continue
			}
			href = absoluteURL(href)
			if _, dup := seen[href]; dup {
				continue
			}
			seen[href] = struct{}{}
			urls = append(urls, href)
		}
		return nil
	}

	if err := collect(); err != nil {
		return nil, fmt.Errorf("reading first result page: %w", err)
	}

	cycle := scraper.Cycle{
		HasNext: func() (bool, error) {
			if s.total > 0 && len(urls) >= s.total {
				return false, nil
			}
			return sess.Page().Locator(nextPageSelector).First().IsVisible()
		},
		Advance: func() error {
			if err := sess.ScrollIntoView(nextPageSelector); err != nil {
				return err
			}
			if err := sess.Click(nextPageSelector); err != nil {
				return err
			}
			browser.RandomDelay(1500, 2500)
			return collect()
		},
		Count: func() (int, error) {
			return len(urls), nil
		},
	}
	if _, err := scraper.LoadAll(ctx, cycle, scraper.MaxPageCycles); err != nil {
		return nil, err
	}

	handles := make([]scraper.Handle, len(urls))
	for i, u := range urls {
		handles[i] = u
	}
	return handles, nil
}

func (s *Scraper) ExtractOffer(ctx context.Context, sess *browser.Session, h scraper.Handle) (offer.RawFields, error) {
	url, ok := h.(string)
	if !ok {
		return offer.RawFields{}, fmt.Errorf("unexpected handle type %T", h)
	}

	if err := sess.Navigate(url); err != nil {
		return offer.RawFields{}, err
	}
	browser.RandomDelay(1000, 3000)

	text := func(sel string) string {
		v, err := sess.Text(sel)
		if err != nil {
			return ""
		}
		return v
	}

	title := text("#jobdetails-postingtitle")
	if title == "" {
		return offer.RawFields{}, fmt.Errorf("detail page has no title: %w", browser.ErrNotFound)
	}

	sections := []string{
		text("#jobdetails-jobdetails-jobsummary-content-row"),
		text("#jobdetails-jobdetails-jobdescription-content-row"),
		text("#jobdetails-jobdetails-minimumqualifications-content-row"),
		text("#jobdetails-jobdetails-preferredqualifications-content-row"),
	}
	var parts []string
	for _, sec := range sections {
		if sec != "" {
			parts = append(parts, sec)
		}
	}

	return offer.RawFields{
		Title:        title,
		Company:      "Apple",
		Location:     text("#jobdetails-joblocation"),
		URL:          url,
		ContractType: string(offer.ContractPermanent),
		Reference:    text("#jobdetails-jobnumber"),
		ScheduleType: text("#jobdetails-weeklyhours"),
		Description:  strings.Join(parts, "\n"),
	}, nil
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://jobs.apple.com" + href
}
