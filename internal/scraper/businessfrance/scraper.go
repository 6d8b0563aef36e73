// Business France "Mon VIE-VIA" portal. The listing reveals more results
// through a "Voir Plus d'Offres" button; every offer is a card on the one
// page, so handles are card locators.
package businessfrance

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/offer"
	"github.com/MarcChen/job-tracker/internal/scraper"
)

const defaultURL = "https://mon-vie-via.businessfrance.fr/offres/recherche?query=Data"

const (
	cardSelector     = ".figure-item"
	loadMoreSelector = ".see-more-btn"
	countSelector    = ".count"
)

type Scraper struct {
	url   string
	total int
}

func New() *Scraper {
	return &Scraper{url: defaultURL}
}

// NewWithURL is used by tests and alternative search queries.
func NewWithURL(url string) *Scraper {
	return &Scraper{url: url}
}

func (s *Scraper) Name() string        { return "Business France (VIE)" }
func (s *Scraper) Source() offer.Source { return offer.SourceBusinessFrance }

// TotalOffers returns the result count the portal announced, 0 if unread.
func (s *Scraper) TotalOffers() int { return s.total }

func (s *Scraper) LoadAllOffers(ctx context.Context, sess *browser.Session) ([]scraper.Handle, error) {
	if err := sess.Navigate(s.url); err != nil {
		return nil, err
	}
	browser.RandomDelay(2000, 4000)
	browser.SmoothScroll(sess.Page())

	if err := sess.WaitVisible(cardSelector, 15*time.Second); err != nil {
		return nil, fmt.Errorf("offer list never appeared: %w", err)
	}

	if txt, err := sess.Text(countSelector); err == nil {
		if fields := strings.Fields(txt); len(fields) > 0 {
			s.total, _ = strconv.Atoi(fields[0])
		}
	}

	loadMore := sess.Page().Locator(loadMoreSelector).First()
	cycle := scraper.Cycle{
		HasNext: func() (bool, error) {
			return loadMore.IsVisible()
		},
		Advance: func() error {
			if err := sess.ScrollIntoView(loadMoreSelector); err != nil {
				return err
			}
			if err := sess.Click(loadMoreSelector); err != nil {
				return err
			}
			browser.RandomDelay(1500, 2500)
			return nil
		},
		Count: func() (int, error) {
			return sess.Count(cardSelector)
		},
	}

	count, err := scraper.LoadAll(ctx, cycle, scraper.MaxPageCycles)
	if err != nil {
		return nil, err
	}
	log.Printf("business france: %d offers revealed (portal announced %d)", count, s.total)

	cards, err := sess.All(cardSelector)
	if err != nil {
		return nil, err
	}
	handles := make([]scraper.Handle, len(cards))
	for i, c := range cards {
		handles[i] = c
	}
	return handles, nil
}

func (s *Scraper) ExtractOffer(ctx context.Context, sess *browser.Session, h scraper.Handle) (offer.RawFields, error) {
	card, ok := h.(playwright.Locator)
	if !ok {
		return offer.RawFields{}, fmt.Errorf("unexpected handle type %T", h)
	}

	const fieldTimeout = 2 * time.Second
	title := browser.SafeText(card.Locator("h2").First(), fieldTimeout)
	if title == "" {
		return offer.RawFields{}, fmt.Errorf("offer card has no title: %w", browser.ErrNotFound)
	}

	raw := offer.RawFields{
		Title:    title,
		Company:  browser.SafeText(card.Locator(".organization").First(), fieldTimeout),
		Location: browser.SafeText(card.Locator(".location").First(), fieldTimeout),
		URL:      s.url,
	}

	if href, err := card.Locator("a").First().GetAttribute("href"); err == nil && href != "" {
		raw.URL = absoluteURL(href)
	}

	// card detail rows: contract type, duration, views, candidates
	if details, err := card.Locator("li").All(); err == nil {
		get := func(i int) string {
			if i < len(details) {
				return browser.SafeText(details[i], fieldTimeout)
			}
			return ""
		}
		raw.ContractType = get(0)
		raw.Duration = get(1)
		raw.Views = leadingInt(get(2))
		raw.Candidates = leadingInt(get(3))
	}

	return raw, nil
}

func leadingInt(s string) int {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0
	}
	n, _ := strconv.Atoi(fields[0])
	return n
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return "https://mon-vie-via.businessfrance.fr" + href
}
