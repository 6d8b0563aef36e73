// Welcome to the Jungle. The search page takes a keyword and a location,
// results are paged with a next-button control, and each offer links to a
// detail page; handles are detail URLs.
package wttj

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/offer"
	"github.com/MarcChen/job-tracker/internal/scraper"
)

const defaultURL = "https://www.welcometothejungle.com/fr/jobs"

const (
	countryStaySelector  = "button[data-testid='country-banner-stay-button']"
	locationField        = "#search-location-field"
	locationClearButton  = "button[data-testid='clear-dropdown-search']"
	queryField           = "#search-query-field"
	resultsCountSelector = "div[data-testid='jobs-search-results-count']"
	resultRowSelector    = "li[data-testid='search-results-list-item-wrapper']"
	nextPageSelector     = "nav[aria-label='Pagination'] li:last-child a"
)

// consent banner variants seen on the site
var consentSelectors = []string{
	"#axeptio_btn_dismiss",
	"#axeptio_btn_configure",
	"#axeptio_btn_acceptAll",
}

type Scraper struct {
	url      string
	keyword  string
	location string
	total    int
}

func New(keyword, location string) *Scraper {
	return &Scraper{url: defaultURL, keyword: keyword, location: location}
}

func (s *Scraper) Name() string {
	return fmt.Sprintf("Welcome to the Jungle (%s)", s.keyword)
}
func (s *Scraper) Source() offer.Source { return offer.SourceWTTJ }
func (s *Scraper) TotalOffers() int     { return s.total }

func (s *Scraper) LoadAllOffers(ctx context.Context, sess *browser.Session) ([]scraper.Handle, error) {
	if err := sess.Navigate(s.url); err != nil {
		return nil, err
	}

	for _, sel := range consentSelectors {
		if sess.ClickIfVisible(sel, 3*time.Second) {
			// the overlay blocks the search fields until it is gone
			sess.WaitHidden(sel, 5*time.Second)
			break
		}
	}
	sess.ClickIfVisible(countryStaySelector, 5*time.Second)

	if s.location != "" {
		sess.ClickIfVisible(locationClearButton, 3*time.Second)
		if err := sess.Fill(locationField, s.location); err != nil {
			return nil, fmt.Errorf("filling location filter: %w", err)
		}
		browser.RandomDelay(800, 1500)
		if err := sess.Press(locationField, "Enter"); err != nil {
			return nil, err
		}
	}
	if err := sess.Fill(queryField, s.keyword); err != nil {
		return nil, fmt.Errorf("filling search query: %w", err)
	}
	if err := sess.Press(queryField, "Enter"); err != nil {
		return nil, err
	}
	browser.RandomDelay(1000, 2000)

	if err := sess.WaitVisible(resultsCountSelector, 10*time.Second); err != nil {
		return nil, fmt.Errorf("result count never appeared: %w", err)
	}
	if txt, err := sess.Text(resultsCountSelector); err == nil {
		if fields := strings.Fields(txt); len(fields) > 0 {
			s.total, _ = strconv.Atoi(fields[0])
		}
	}

	var (
		urls []string
		seen = map[string]struct{}{}
	)
	collect := func() error {
		if err := sess.WaitVisible(resultRowSelector, 10*time.Second); err != nil {
			return err
		}
		rows, err := sess.All(resultRowSelector)
		if err != nil {
			return err
		}
		for _, row := range rows {
			href, err := row.Locator("a").First().GetAttribute("href")
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
			browser.RandomDelay(1000, 2000)
			if err := sess.Click(nextPageSelector); err != nil {
				return err
			}
			browser.RandomDelay(1000, 3000)
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

	title := text("h2[data-testid='job-title'], h1")
	if title == "" {
		return offer.RawFields{}, fmt.Errorf("detail page has no title: %w", browser.ErrNotFound)
	}

	var descLines []string
	if remote := text("div[data-testid='job-detail-remote']"); remote != "" && remote != "Télétravail non renseigné" {
		descLines = append(descLines, "Remote : "+remote)
	}
	if perks := text("div[data-testid='perks_and_benefits_block']"); perks != "" {
		descLines = append(descLines, "Benefits : "+perks)
	}
	if body := text("div[data-testid='job-section-description']"); body != "" {
		descLines = append(descLines, body)
	}

	raw := offer.RawFields{
		Title:        title,
		Company:      text("a[data-testid='job-company-link'] span"),
		Location:     text("div[data-testid='job-detail-location'] span"),
		URL:          url,
		Salary:       scraper.SplitPart(text("div[data-testid='job-detail-salary']"), "Salaire :", 1),
		ContractType: text("div[data-testid='job-detail-contract-type']"),
		ScheduleType: text("div[data-testid='job-detail-schedule']"),
		Description:  strings.Join(descLines, "\n"),
	}
	return raw, nil
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://www.welcometothejungle.com" + href
}
