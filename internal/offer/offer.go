// Canonical job offer model shared by every scraper, the dedup index and the
// storage/alert sinks. A scraper produces a RawFields bag; Normalize turns it
// into a validated Offer. Nothing downstream of Normalize may see dirty text.

package offer

import (
	"strings"
	"time"
)

// Source identifies one of the supported job portals.
type Source string

const (
	SourceBusinessFrance Source = "Business France"
	SourceAirFrance      Source = "Air France"
	SourceApple          Source = "Apple"
	SourceWTTJ           Source = "Welcome to the Jungle"
)

// Sources lists every supported portal in the order they are run.
func Sources() []Source {
	return []Source{SourceBusinessFrance, SourceAirFrance, SourceApple, SourceWTTJ}
}

// ParseSource maps a free-text source name to the closed enumeration.
func ParseSource(s string) (Source, bool) {
	for _, src := range Sources() {
		if strings.EqualFold(strings.TrimSpace(s), string(src)) {
			return src, true
		}
	}
	return "", false
}

// ContractType is the closed enumeration of employment contract types.
// The empty value means "unknown / not provided".
type ContractType string

const (
	ContractPermanent  ContractType = "CDI"
	ContractFixedTerm  ContractType = "CDD"
	ContractInternship ContractType = "Stage"
	ContractFreelance  ContractType = "Freelance"
	ContractTemporary  ContractType = "Temporary"
	ContractFullTime   ContractType = "Full-time"
	ContractPartTime   ContractType = "Part-time"
	ContractVIE        ContractType = "VIE"
	ContractOther      ContractType = "Other"
)

func contractTypes() []ContractType {
	return []ContractType{
		ContractPermanent, ContractFixedTerm, ContractInternship,
		ContractFreelance, ContractTemporary, ContractFullTime,
		ContractPartTime, ContractVIE, ContractOther,
	}
}

// RawFields is the untyped field bag a scraper reads from one offer element.
// Absent fields are "" or the NotAvailable sentinel; both mean the same thing
// to Normalize. The bag is discarded once the offer is normalized.
type RawFields struct {
	Title        string
	Company      string
	Location     string
	URL          string
	ContractType string
	Salary       string
	Duration     string
	Reference    string
	ScheduleType string
	Description  string

	// Business France exposes applicant statistics on each card.
	Views      int
	Candidates int
}

// Offer is the validated, canonical job posting record.
type Offer struct {
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Location  string    `json:"location"`
	Source    Source    `json:"source"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`

	ContractType ContractType `json:"contract_type,omitempty"`
	Salary       string       `json:"salary,omitempty"`
	Duration     string       `json:"duration,omitempty"`
	Reference    string       `json:"reference,omitempty"`
	ScheduleType string       `json:"schedule_type,omitempty"`
	Description  string       `json:"description,omitempty"`

	Views      int `json:"views,omitempty"`
	Candidates int `json:"candidates,omitempty"`
}

// Identity carries the dedup-contributing attributes of a stored offer.
// Store backends return these during index preload.
type Identity struct {
	Title    string
	Company  string
	Location string
	Source   string
}

// DedupKey returns the stored offer's novelty fingerprint.
func (id Identity) DedupKey() string {
	return joinKey(id.Title, id.Company, id.Location, id.Source)
}

// DedupKey returns the offer's novelty fingerprint. Two offers with equal
// keys are the same real-world posting regardless of other fields.
func (o Offer) DedupKey() string {
	return joinKey(o.Title, o.Company, o.Location, string(o.Source))
}
