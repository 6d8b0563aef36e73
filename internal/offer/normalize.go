package offer

import (
	"fmt"
	"strings"
	"time"
)

// NotAvailable is the sentinel scrapers emit when a field could not be read.
const NotAvailable = "N/A"

// DescriptionLimit caps the description length before persistence; the
// workspace store rejects rich-text blocks above 2000 characters.
const DescriptionLimit = 2000

const (
	maxTitleLen    = 500
	maxCompanyLen  = 200
	maxLocationLen = 200
	maxOptionalLen = 100
)

// ValidationError reports the specific constraint a raw offer violated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid offer: %s %s", e.Field, e.Reason)
}

// isAbsent reports whether a raw field value carries no information.
func isAbsent(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "n/a", "not available":
		return true
	}
	return false
}

// Normalize converts a raw field bag into a validated Offer. Every string
// field is trimmed; required fields must be present, non-sentinel and within
// length bounds; optional fields collapse to empty when absent. The returned
// error is always a *ValidationError.
func Normalize(raw RawFields, source Source) (Offer, error) {
	if _, ok := ParseSource(string(source)); !ok {
		return Offer{}, &ValidationError{Field: "source", Reason: fmt.Sprintf("unknown value %q", source)}
	}

	title, err := requiredField("title", raw.Title, maxTitleLen)
	if err != nil {
		return Offer{}, err
	}
	company, err := requiredField("company", raw.Company, maxCompanyLen)
	if err != nil {
		return Offer{}, err
	}
	location, err := requiredField("location", raw.Location, maxLocationLen)
	if err != nil {
		return Offer{}, err
	}

	url := strings.TrimSpace(raw.URL)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return Offer{}, &ValidationError{Field: "url", Reason: "must start with http:// or https://"}
	}

	o := Offer{
		Title:        title,
		Company:      company,
		Location:     location,
		Source:       source,
		URL:          url,
		ScrapedAt:    time.Now(),
		ContractType: NormalizeContractType(raw.ContractType),
		Views:        raw.Views,
		Candidates:   raw.Candidates,
	}

	optional := []struct {
		name string
		src  string
		dst  *string
	}{
		{"salary", raw.Salary, &o.Salary},
		{"duration", raw.Duration, &o.Duration},
		{"reference", raw.Reference, &o.Reference},
		{"schedule_type", raw.ScheduleType, &o.ScheduleType},
	}
	for _, f := range optional {
		v := strings.TrimSpace(f.src)
		if isAbsent(v) {
			continue
		}
		if len([]rune(v)) > maxOptionalLen {
			return Offer{}, &ValidationError{Field: f.name, Reason: fmt.Sprintf("exceeds %d characters", maxOptionalLen)}
		}
		*f.dst = v
	}

	if desc := strings.TrimSpace(raw.Description); !isAbsent(desc) {
		o.Description = clip(desc, DescriptionLimit)
	}

	return o, nil
}

func requiredField(name, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if isAbsent(v) {
		return "", &ValidationError{Field: name, Reason: "is required"}
	}
	if len([]rune(v)) > max {
		return "", &ValidationError{Field: name, Reason: fmt.Sprintf("exceeds %d characters", max)}
	}
	return v, nil
}

// clip truncates s to at most limit runes, preserving the prefix.
func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// contractVocabulary maps substrings of free-text site vocabulary to contract
// types, checked in order after an exact enum-value match fails. The VIE
// entries must come before "intern": "International Volunteer" contains both.
var contractVocabulary = []struct {
	substr string
	ct     ContractType
}{
	{"cdi", ContractPermanent},
	{"permanent", ContractPermanent},
	{"cdd", ContractFixedTerm},
	{"fixed", ContractFixedTerm},
	{"vie", ContractVIE},
	{"volunteer", ContractVIE},
	{"stage", ContractInternship},
	{"intern", ContractInternship},
	{"freelance", ContractFreelance},
	{"temporar", ContractTemporary},
	{"full", ContractFullTime},
	{"part", ContractPartTime},
}

// NormalizeContractType maps a free-text contract label to the closed
// enumeration: case-insensitive exact match first, then substring vocabulary.
// Absent or unrecognized values yield the empty ContractType, never an error.
func NormalizeContractType(raw string) ContractType {
	v := strings.TrimSpace(raw)
	if isAbsent(v) {
		return ""
	}
	for _, ct := range contractTypes() {
		if strings.EqualFold(v, string(ct)) {
			return ct
		}
	}
	lower := strings.ToLower(v)
	for _, entry := range contractVocabulary {
		if strings.Contains(lower, entry.substr) {
			return entry.ct
		}
	}
	return ""
}
