package store

import (
	"context"
	"fmt"
	"time"

	supabase "github.com/nedpals/supabase-go"

	"github.com/MarcChen/job-tracker/internal/offer"
)

// SupabaseStore is the alternative storage backend, persisting offers to a
// Supabase table instead of the workspace database.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

func NewSupabaseStore(url, key, table string) (*SupabaseStore, error) {
	if url == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if table == "" {
		table = "offers"
	}
	return &SupabaseStore{client: supabase.CreateClient(url, key), table: table}, nil
}

type supabaseRow struct {
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Source       string    `json:"source"`
	URL          string    `json:"url"`
	ScrapedAt    time.Time `json:"scraped_at"`
	ContractType string    `json:"contract_type,omitempty"`
	Salary       string    `json:"salary,omitempty"`
	Duration     string    `json:"duration,omitempty"`
	Reference    string    `json:"reference,omitempty"`
	ScheduleType string    `json:"schedule_type,omitempty"`
	Description  string    `json:"description,omitempty"`
}

func (s *SupabaseStore) ListKnownOffers(ctx context.Context) ([]offer.Identity, error) {
	var rows []supabaseRow
	if err := s.client.DB.From(s.table).Select("title,company,location,source").Execute(&rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	ids := make([]offer.Identity, len(rows))
	for i, r := range rows {
		ids[i] = offer.Identity{Title: r.Title, Company: r.Company, Location: r.Location, Source: r.Source}
	}
	return ids, nil
}

func (s *SupabaseStore) SaveOffer(ctx context.Context, o offer.Offer) error {
	row := supabaseRow{
		Title:        o.Title,
		Company:      o.Company,
		Location:     o.Location,
		Source:       string(o.Source),
		URL:          o.URL,
		ScrapedAt:    o.ScrapedAt,
		ContractType: string(o.ContractType),
		Salary:       o.Salary,
		Duration:     o.Duration,
		Reference:    o.Reference,
		ScheduleType: o.ScheduleType,
		Description:  o.Description,
	}

	var inserted []supabaseRow
	if err := s.client.DB.From(s.table).Insert(row).Execute(&inserted); err != nil {
		return fmt.Errorf("inserting offer %q: %w", o.Title, err)
	}
	return nil
}
