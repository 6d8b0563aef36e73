package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/MarcChen/job-tracker/internal/offer"
)

const (
	notionBaseURL = "https://api.notion.com"
	notionVersion = "2022-06-28"

	// Notion caps query pages at 100 results; ListKnownOffers follows
	// next_cursor until has_more is false.
	notionPageSize = 100
)

// NotionStore persists offers as pages of a Notion workspace database.
type NotionStore struct {
	client     *http.Client
	baseURL    string
	token      string
	databaseID string
}

func NewNotionStore(token, databaseID string) *NotionStore {
	return &NotionStore{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    notionBaseURL,
		token:      token,
		databaseID: databaseID,
	}
}

type notionText struct {
	PlainText string `json:"plain_text,omitempty"`
	Text      struct {
		Content string `json:"content"`
	} `json:"text"`
}

func (t notionText) content() string {
	if t.PlainText != "" {
		return t.PlainText
	}
	return t.Text.Content
}

type notionSelect struct {
	Name string `json:"name"`
}

type notionProperty struct {
	Title    []notionText  `json:"title,omitempty"`
	RichText []notionText  `json:"rich_text,omitempty"`
	Select   *notionSelect `json:"select,omitempty"`
	URL      string        `json:"url,omitempty"`
}

type notionPage struct {
	ID         string                    `json:"id"`
	Properties map[string]notionProperty `json:"properties"`
}

type notionQueryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

// ListKnownOffers reads the whole database, transparently following the
// query cursor until the backend reports no more pages.
func (s *NotionStore) ListKnownOffers(ctx context.Context) ([]offer.Identity, error) {
	var (
		ids    []offer.Identity
		seen   = map[string]struct{}{}
		cursor string
	)
	for {
		body := map[string]any{"page_size": notionPageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}

		var resp notionQueryResponse
		url := fmt.Sprintf("%s/v1/databases/%s/query", s.baseURL, s.databaseID)
		if err := s.do(ctx, http.MethodPost, url, body, &resp); err != nil {
			return nil, fmt.Errorf("querying workspace database: %w", err)
		}

		for _, page := range resp.Results {
			if _, dup := seen[page.ID]; dup {
				continue
			}
			seen[page.ID] = struct{}{}
			ids = append(ids, identityFromPage(page))
		}

		if !resp.HasMore || resp.NextCursor == "" || resp.NextCursor == cursor {
			// has_more without a usable cursor would replay the same
			// page forever
			return ids, nil
		}
		cursor = resp.NextCursor
	}
}

func identityFromPage(page notionPage) offer.Identity {
	return offer.Identity{
		Title:    titleOf(page.Properties),
		Company:  selectOf(page.Properties, "Company"),
		Location: selectOf(page.Properties, "Location"),
		Source:   selectOf(page.Properties, "Source"),
	}
}

func titleOf(props map[string]notionProperty) string {
	if title := props["Title"].Title; len(title) > 0 {
		return title[0].content()
	}
	return ""
}

func selectOf(props map[string]notionProperty, name string) string {
	if sel := props[name].Select; sel != nil {
		return sel.Name
	}
	return ""
}

// SaveOffer creates one database page with the offer's properties.
func (s *NotionStore) SaveOffer(ctx context.Context, o offer.Offer) error {
	payload := map[string]any{
		"parent":     map[string]any{"database_id": s.databaseID},
		"properties": pageProperties(o),
	}
	url := s.baseURL + "/v1/pages"
	if err := s.do(ctx, http.MethodPost, url, payload, nil); err != nil {
		return fmt.Errorf("creating page for %q: %w", o.Title, err)
	}
	return nil
}

// pageProperties maps an offer onto the database's property schema. Absent
// optional fields are written as the N/A sentinel so select columns keep a
// consistent option set.
func pageProperties(o offer.Offer) map[string]any {
	orNA := func(s string) string {
		if s == "" {
			return offer.NotAvailable
		}
		return s
	}

	props := map[string]any{
		"Title":         titleProp(o.Title),
		"Company":       selectProp(o.Company),
		"Location":      selectProp(o.Location),
		"Source":        selectProp(string(o.Source)),
		"URL":           map[string]any{"url": o.URL},
		"Contract Type": selectProp(orNA(string(o.ContractType))),
		"Salary":        richTextProp(orNA(o.Salary)),
		"Duration":      richTextProp(orNA(o.Duration)),
		"Reference":     richTextProp(orNA(o.Reference)),
		"Schedule Type": selectProp(orNA(o.ScheduleType)),
		"Description":   richTextProp(orNA(o.Description)),
	}
	if o.Views > 0 {
		props["Views"] = map[string]any{"number": o.Views}
	}
	if o.Candidates > 0 {
		props["Candidates"] = map[string]any{"number": o.Candidates}
	}
	return props
}

func titleProp(s string) map[string]any {
	return map[string]any{
		"title": []map[string]any{{"type": "text", "text": map[string]any{"content": s}}},
	}
}

func richTextProp(s string) map[string]any {
	return map[string]any{
		"rich_text": []map[string]any{{"type": "text", "text": map[string]any{"content": s}}},
	}
}

func selectProp(s string) map[string]any {
	return map[string]any{"select": map[string]any{"name": s}}
}

// ArchiveDuplicates archives every page whose dedup key repeats an earlier
// page, keeping the first occurrence. Maintenance helper, not part of a
// scraping run.
func (s *NotionStore) ArchiveDuplicates(ctx context.Context) (int, error) {
	var (
		cursor   string
		seen     = map[string]struct{}{}
		archived int
	)
	for {
		body := map[string]any{"page_size": notionPageSize}
		if cursor != "" {
			body["start_cursor"] = cursor
		}
		var resp notionQueryResponse
		url := fmt.Sprintf("%s/v1/databases/%s/query", s.baseURL, s.databaseID)
		if err := s.do(ctx, http.MethodPost, url, body, &resp); err != nil {
			return archived, err
		}

		for _, page := range resp.Results {
			key := identityFromPage(page).DedupKey()
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				continue
			}
			url := s.baseURL + "/v1/pages/" + page.ID
			if err := s.do(ctx, http.MethodPatch, url, map[string]any{"archived": true}, nil); err != nil {
				log.Printf("archiving duplicate page %s: %v", page.ID, err)
				continue
			}
			archived++
		}

		if !resp.HasMore || resp.NextCursor == "" || resp.NextCursor == cursor {
			return archived, nil
		}
		cursor = resp.NextCursor
	}
}

func (s *NotionStore) do(ctx context.Context, method, url string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
