// Load envs from .env
// Load YAML config
// Validate per selected backend
// Provide default values

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	// Storage backend: "notion" (default) or "supabase".
	StoreBackend string `yaml:"store_backend"`
	// Alert backend: "sms" (default), "telegram" or "none".
	AlertBackend string `yaml:"alert_backend"`

	NotionToken      string `yaml:"notion_token" env:"NOTION_API"`
	NotionDatabaseID string `yaml:"notion_database_id" env:"DATABASE_ID"`

	FreeMobileUserID string `yaml:"free_mobile_user_id" env:"FREE_MOBILE_USER_ID"`
	FreeMobileAPIKey string `yaml:"free_mobile_api_key" env:"FREE_MOBILE_API_KEY"`

	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	SupabaseURL string `yaml:"supabase_url" env:"SUPABASE_URL"`
	SupabaseKey string `yaml:"supabase_key" env:"SUPABASE_KEY"`

	Headless bool `yaml:"headless"`
	// Cron expression; empty means a single one-shot run.
	Schedule string `yaml:"schedule"`

	// Extra title keywords merged on top of the defaults.
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// Load reads the optional YAML file at path, then applies .env and process
// environment overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StoreBackend: "notion",
		AlertBackend: "sms",
		Headless:     true,
	}

	if path == "" {
		path = DefaultPath
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	overrideString(&cfg.NotionToken, "NOTION_API")
	overrideString(&cfg.NotionDatabaseID, "DATABASE_ID")
	overrideString(&cfg.FreeMobileUserID, "FREE_MOBILE_USER_ID")
	overrideString(&cfg.FreeMobileAPIKey, "FREE_MOBILE_API_KEY")
	overrideString(&cfg.TelegramToken, "TELEGRAM_BOT_TOKEN")
	overrideString(&cfg.SupabaseURL, "SUPABASE_URL")
	overrideString(&cfg.SupabaseKey, "SUPABASE_KEY")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	return cfg, nil
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ConfigError reports a missing or inconsistent configuration setting.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Setting, e.Reason)
}

// Validate checks that the selected backends have their credentials. The
// returned error is always a *ConfigError.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case "notion":
		if c.NotionToken == "" || c.NotionDatabaseID == "" {
			return &ConfigError{Setting: "store_backend", Reason: "notion requires NOTION_API and DATABASE_ID"}
		}
	case "supabase":
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return &ConfigError{Setting: "store_backend", Reason: "supabase requires SUPABASE_URL and SUPABASE_KEY"}
		}
	default:
		return &ConfigError{Setting: "store_backend", Reason: fmt.Sprintf("unknown value %q", c.StoreBackend)}
	}

	switch c.AlertBackend {
	case "sms":
		if c.FreeMobileUserID == "" || c.FreeMobileAPIKey == "" {
			return &ConfigError{Setting: "alert_backend", Reason: "sms requires FREE_MOBILE_USER_ID and FREE_MOBILE_API_KEY"}
		}
	case "telegram":
		if c.TelegramToken == "" || c.TelegramChatID == 0 {
			return &ConfigError{Setting: "alert_backend", Reason: "telegram requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID"}
		}
	case "none":
	default:
		return &ConfigError{Setting: "alert_backend", Reason: fmt.Sprintf("unknown value %q", c.AlertBackend)}
	}
	return nil
}

// Filters returns the default include/exclude keyword lists merged with the
// configured extras.
func (c *Config) Filters() (include, exclude []string) {
	include = append(defaultInclude(), c.Include...)
	exclude = append(defaultExclude(), c.Exclude...)
	return include, exclude
}

func defaultInclude() []string {
	return []string{
		"data engineer",
		"data scientist",
		"machine learning",
		"artificial intelligence",
		"big data",
		"science",
		"GCP",
		"Data platform",
		"Cloud Database",
		"deep learning",
		"software",
		"developer",
		"neural networks",
		"computer vision",
		"vision",
		"data mining",
		"predictive modeling",
		"language processing",
	}
}

func defaultExclude() []string {
	return []string{"stage", "intern", "apprenti", "apprentice", "alternance"}
}

// SourceSpec describes one runnable scraper entry of the registry.
type SourceSpec struct {
	ID          string
	Name        string
	Description string
	Category    string
	Keyword     string
	Location    string
	Contract    string
}

// Registry lists the runnable scrapers in run order.
func Registry() []SourceSpec {
	return []SourceSpec{
		{
			ID:          "1",
			Name:        "Business France (VIE)",
			Description: "VIE offers from the Business France portal",
			Category:    "VIE",
		},
		{
			ID:          "2",
			Name:        "Air France",
			Description: "Job offers from the Air France careers page",
			Category:    "CDI",
			Keyword:     "data",
			Contract:    "CDI",
		},
		{
			ID:          "3",
			Name:        "Apple",
			Description: "Job offers from Apple careers (France)",
			Category:    "CDI",
		},
		{
			ID:          "4",
			Name:        "Welcome to the Jungle (Data Engineer)",
			Description: "Data Engineer positions from WTTJ (Île-de-France)",
			Category:    "CDI",
			Keyword:     "data engineer",
			Location:    "Île-de-France",
		},
		{
			ID:          "5",
			Name:        "Welcome to the Jungle (AI)",
			Description: "AI positions from WTTJ (Île-de-France)",
			Category:    "CDI",
			Keyword:     "artificial intelligence",
			Location:    "Île-de-France",
		},
	}
}

// selection groups, keyed by their aliases
var groups = map[string][]string{
	"all":                     {"1", "2", "3", "4", "5"},
	"vie":                     {"1"},
	"business-france":         {"1"},
	"businessfrance":          {"1"},
	"cdi":                     {"2", "3", "4", "5"},
	"tech":                    {"3", "4", "5"},
	"technology":              {"3", "4", "5"},
	"wttj":                    {"4", "5"},
	"welcome-to-the-jungle":   {"4", "5"},
	"airfrance":               {"2"},
	"air-france":              {"2"},
	"apple":                   {"3"},
	"data":                    {"4"},
	"data-engineer":           {"4"},
	"dataengineer":            {"4"},
	"ai":                      {"5"},
	"artificial-intelligence": {"5"},
	"french-companies":        {"1", "2"},
	"france":                  {"1", "2"},
}

// ParseSelection resolves a selection string (a named group or a
// comma-separated list of registry IDs) to source specs in registry order.
func ParseSelection(selection string) ([]SourceSpec, error) {
	selection = strings.ToLower(strings.TrimSpace(selection))
	if selection == "" {
		selection = "all"
	}

	ids, ok := groups[selection]
	if !ok {
		for _, tok := range strings.Split(selection, ",") {
			tok = strings.TrimSpace(tok)
			if !validID(tok) {
				return nil, fmt.Errorf("invalid scraper ID %q, available: %s", tok, strings.Join(registryIDs(), ", "))
			}
			ids = append(ids, tok)
		}
	}

	seen := map[string]bool{}
	var specs []SourceSpec
	for _, spec := range Registry() {
		for _, id := range ids {
			if id == spec.ID && !seen[id] {
				seen[id] = true
				specs = append(specs, spec)
			}
		}
	}
	return specs, nil
}

func validID(id string) bool {
	for _, spec := range Registry() {
		if spec.ID == id {
			return true
		}
	}
	return false
}

func registryIDs() []string {
	var ids []string
	for _, spec := range Registry() {
		ids = append(ids, spec.ID)
	}
	return ids
}
