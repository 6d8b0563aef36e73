package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "notion", cfg.StoreBackend)
	assert.Equal(t, "sms", cfg.AlertBackend)
	assert.True(t, cfg.Headless)
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
alert_backend: telegram
notion_token: from-yaml
notion_database_id: db-1
telegram_token: yaml-token
telegram_chat_id: 7
exclude: ["lead"]
`), 0o644))

	t.Setenv("NOTION_API", "from-env")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.NotionToken)
	assert.Equal(t, "db-1", cfg.NotionDatabaseID)
	assert.Equal(t, "telegram", cfg.AlertBackend)
	assert.Equal(t, int64(42), cfg.TelegramChatID)

	_, exclude := cfg.Filters()
	assert.Contains(t, exclude, "lead")
	assert.Contains(t, exclude, "alternance")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "notion ok",
			cfg: Config{
				StoreBackend: "notion", AlertBackend: "none",
				NotionToken: "t", NotionDatabaseID: "db",
			},
		},
		{
			name:    "notion missing creds",
			cfg:     Config{StoreBackend: "notion", AlertBackend: "none"},
			wantErr: "NOTION_API",
		},
		{
			name: "supabase missing key",
			cfg: Config{
				StoreBackend: "supabase", AlertBackend: "none",
				SupabaseURL: "https://x.supabase.co",
			},
			wantErr: "SUPABASE_KEY",
		},
		{
			name: "sms missing creds",
			cfg: Config{
				StoreBackend: "notion", AlertBackend: "sms",
				NotionToken: "t", NotionDatabaseID: "db",
			},
			wantErr: "FREE_MOBILE_USER_ID",
		},
		{
			name:    "unknown store backend",
			cfg:     Config{StoreBackend: "redis", AlertBackend: "none"},
			wantErr: `unknown value "redis"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSelectionGroups(t *testing.T) {
	tests := []struct {
		selection string
		wantIDs   []string
	}{
		{"all", []string{"1", "2", "3", "4", "5"}},
		{"", []string{"1", "2", "3", "4", "5"}},
		{"vie", []string{"1"}},
		{"CDI", []string{"2", "3", "4", "5"}},
		{"wttj", []string{"4", "5"}},
		{"french-companies", []string{"1", "2"}},
		{"1,3,5", []string{"1", "3", "5"}},
		{"3,1", []string{"1", "3"}}, // registry order, not selection order
	}
	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			specs, err := ParseSelection(tt.selection)
			require.NoError(t, err)
			var ids []string
			for _, s := range specs {
				ids = append(ids, s.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParseSelectionRejectsUnknownID(t *testing.T) {
	_, err := ParseSelection("1,9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"9"`)
}
