package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"luckydraw/internal/models"
	"luckydraw/internal/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "luckydraw.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, storage.DefaultLedgerKey, cfg.Store.Key)
	require.Len(t, cfg.Tiers, 5)
	require.Equal(t, "consolation", cfg.Tiers[4].Key)
	require.Equal(t, 30, cfg.Tiers[4].WinnerCount)
	require.Equal(t, []string{"employees", "guests"}, cfg.Tiers[4].EligibleRosters)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":9000"

[store]
backend = "sqlite"
sqlite_path = "/tmp/draw.db"

[[rosters]]
name = "staff"
data = "S1,Sam"

[[tiers]]
key = "grand"
display_name = "Grand prize"
icon = "🏆"
winner_count = 2
eligible_rosters = ["staff"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.Server.Addr)
	require.Equal(t, ",", cfg.Server.Delimiter)
	require.Equal(t, "sqlite", cfg.Store.Backend)
	require.Equal(t, "/tmp/draw.db", cfg.Store.Options().SQLitePath)
	require.Equal(t, storage.DefaultLedgerKey, cfg.Store.Key)
	require.Equal(t, []RosterConfig{{Name: "staff", Data: "S1,Sam"}}, cfg.Rosters)
	require.Equal(t, []models.Tier{{
		Key:             "grand",
		DisplayName:     "Grand prize",
		Icon:            "🏆",
		WinnerCount:     2,
		EligibleRosters: []string{"staff"},
	}}, cfg.Tiers)
}

func TestLoad_FileKeepsDefaultLists(t *testing.T) {
	cfg, err := Load(writeConfig(t, "[server]\nverbose = true\n"))
	require.NoError(t, err)
	require.True(t, cfg.Server.Verbose)
	require.Equal(t, Default().Tiers, cfg.Tiers)
	require.Equal(t, Default().Rosters, cfg.Rosters)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("LUCKYDRAW_ADDR", ":9090")
	t.Setenv("LUCKYDRAW_NODE_ID", "7")
	t.Setenv("LUCKYDRAW_STORE_BACKEND", "redis")
	t.Setenv("LUCKYDRAW_STORE_REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, int64(7), cfg.Server.NodeID)
	require.Equal(t, "redis", cfg.Store.Backend)
	require.Equal(t, "redis:6379", cfg.Store.RedisAddr)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "[server\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "no rosters", mutate: func(c *Config) { c.Rosters = nil }},
		{name: "no tiers", mutate: func(c *Config) { c.Tiers = nil }},
		{name: "duplicate roster", mutate: func(c *Config) { c.Rosters = append(c.Rosters, c.Rosters[0]) }},
		{name: "roster without source", mutate: func(c *Config) { c.Rosters[0].Path = "" }},
		{name: "duplicate tier", mutate: func(c *Config) { c.Tiers[1].Key = c.Tiers[0].Key }},
		{name: "zero winner count", mutate: func(c *Config) { c.Tiers[0].WinnerCount = 0 }},
		{name: "tier without roster", mutate: func(c *Config) { c.Tiers[0].EligibleRosters = nil }},
		{
			name:    "tier with unknown roster",
			mutate:  func(c *Config) { c.Tiers[0].EligibleRosters = []string{"vip"} },
			wantErr: models.ErrUnknownRoster,
		},
		{name: "node id out of range", mutate: func(c *Config) { c.Server.NodeID = 2048 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.name == "defaults are valid" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
