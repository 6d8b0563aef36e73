// Air France careers site. Results are paged with a numbered pagination
// control; each offer links to a detail page, so handles are detail URLs and
// extraction navigates per offer.
package airfrance

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/MarcChen/job-tracker/internal/browser"
	"github.com/MarcChen/job-tracker/internal/offer"
	"github.com/MarcChen/job-tracker/internal/scraper"
)

const defaultURL = "https://recrutement.airfrance.com/offre-de-emploi/liste-offres.aspx"

const (
	cookieAgreeSelector = "#didomi-notice-agree-button"
	keywordSelector     = "input[name*='OfferCriteria_Keywords']"
	contractSelector    = "#ctl00_ctl00_moteurRapideOffre_ctl00_EngineCriteriaCollection_Contract"
	searchSelector      = "#ctl00_ctl00_moteurRapideOffre_BT_recherche"
	totalSelector       = "#ctl00_ctl00_corpsRoot_corps_PaginationLower_TotalOffers"
	listItemSelector    = ".ts-offer-list-item"
	titleLinkSelector   = ".ts-offer-list-item__title-link"
	nextPageSelector    = "#ctl00_ctl00_corpsRoot_corps_Pagination_linkSuivPage"
)

type Scraper struct {
	url          string
	keyword      string
	contractType string
	total        int
}

func New(keyword, contractType string) *Scraper {
	return &Scraper{url: defaultURL, keyword: keyword, contractType: contractType}
}

func (s *Scraper) Name() string         { return "Air France" }
func (s *Scraper) Source() offer.Source { return offer.SourceAirFrance }
func (s *Scraper) TotalOffers() int     { return s.total }

func (s *Scraper) LoadAllOffers(ctx context.Context, sess *browser.Session) ([]scraper.Handle, error) {
	if err := sess.Navigate(s.url); err != nil {
		return nil, err
	}
	sess.ClickIfVisible(cookieAgreeSelector, 3*time.Second)

	if s.keyword != "" {
		if err := sess.Fill(keywordSelector, s.keyword); err != nil {
			return nil, fmt.Errorf("filling keyword filter: %w", err)
		}
	}
	if s.contractType != "" {
		_, err := sess.Page().Locator(contractSelector).SelectOption(playwright.SelectOptionValues{
			Labels: &[]string{s.contractType},
		})
		if err != nil {
			return nil, fmt.Errorf("selecting contract type: %w", err)
		}
	}
	if err := sess.Click(searchSelector); err != nil {
		return nil, fmt.Errorf("submitting search: %w", err)
	}

	if err := sess.WaitVisible(totalSelector, 15*time.Second); err != nil {
		return nil, fmt.Errorf("result count never appeared: %w", err)
	}
	if txt, err := sess.Text(totalSelector); err == nil {
		if fields := strings.Fields(txt); len(fields) > 0 {
			s.total, _ = strconv.Atoi(fields[0])
		}
	}

	var (
		urls []string
		seen = map[string]struct{}{}
	)
	collect := func() error {
		if err := sess.WaitVisible(listItemSelector, 10*time.Second); err != nil {
			return err
		}
		links, err := sess.All(listItemSelector + " " + titleLinkSelector)
		if err != nil {
			return err
		}
		for _, link := range links {
			href, err := link.GetAttribute("href")
			if err != nil || href == "" {
				continue
			}
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

	next := sess.Page().Locator(nextPageSelector).First()
	cycle := scraper.Cycle{
		HasNext: func() (bool, error) {
			return next.IsVisible()
		},
		Advance: func() error {
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

	title := text("h1.ts-offer-page__title span:first-child")
	if title == "" {
		return offer.RawFields{}, fmt.Errorf("detail page has no title: %w", browser.ErrNotFound)
	}

	raw := offer.RawFields{
		Title:        title,
		Company:      scraper.SplitPart(attr(sess, "div.ts-offer-page__entity-logo img", "alt"), " - ", 1),
		Location:     scraper.SplitPart(text("#fldlocation_location_geographicalareacollection"), ",", 0),
		URL:          url,
		ContractType: text("#fldjobdescription_contract"),
		Duration:     text("#fldjobdescription_contractlength"),
		Reference:    scraper.SplitPart(text(".ts-offer-page__reference"), "Référence", 1),
		ScheduleType: text("#fldjobdescription_customcodetablevalue3"),
	}

	desc := strings.TrimSpace(text("#fldjobdescription_longtext1") + "\n" + text("#fldjobdescription_description1"))
	raw.Description = desc

	return raw, nil
}

func attr(sess *browser.Session, sel, name string) string {
	v, err := sess.Attribute(sel, name)
	if err != nil {
		return ""
	}
	return v
}
