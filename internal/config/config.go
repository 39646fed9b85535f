package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"luckydraw/internal/models"
	"luckydraw/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. LUCKYDRAW_ADDR.
const EnvPrefix = "LUCKYDRAW_"

type Config struct {
	Server  ServerConfig   `toml:"server"`
	Store   StoreConfig    `toml:"store"`
	Rosters []RosterConfig `toml:"rosters"`
	Tiers   []models.Tier  `toml:"tiers"`
}

type ServerConfig struct {
	Addr      string `toml:"addr" env:"ADDR"`
	Verbose   bool   `toml:"verbose" env:"VERBOSE"`
	Delimiter string `toml:"delimiter" env:"DELIMITER"`
	NodeID    int64  `toml:"node_id" env:"NODE_ID"`
}

type StoreConfig struct {
	Backend       string `toml:"backend" env:"BACKEND"`
	Key           string `toml:"key" env:"KEY"`
	Dir           string `toml:"dir" env:"DIR"`
	RedisAddr     string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `toml:"redis_db" env:"REDIS_DB"`
	SQLitePath    string `toml:"sqlite_path" env:"SQLITE_PATH"`
}

// Options converts the store section into storage.Options.
func (s StoreConfig) Options() storage.Options {
	return storage.Options{
		Backend:       s.Backend,
		Dir:           s.Dir,
		RedisAddr:     s.RedisAddr,
		RedisPassword: s.RedisPassword,
		RedisDB:       s.RedisDB,
		SQLitePath:    s.SQLitePath,
	}
}

// RosterConfig names a roster and where its text comes from. Data, when set,
// is used instead of reading Path.
type RosterConfig struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
	Data string `toml:"data"`
}

// Default returns the configuration of the reference year-end party:
// four employee-only tiers and a consolation tier open to guests too.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			Delimiter: ",",
			NodeID:    1,
		},
		Store: StoreConfig{
			Backend:    storage.BackendFile,
			Key:        storage.DefaultLedgerKey,
			Dir:        "data",
			RedisAddr:  "localhost:6379",
			SQLitePath: "luckydraw.db",
		},
		Rosters: []RosterConfig{
			{Name: "employees", Path: "rosters/employees.txt"},
			{Name: "guests", Path: "rosters/guests.txt"},
		},
		Tiers: []models.Tier{
			{Key: "special", DisplayName: "Giải Đặc Biệt", Icon: "🏆", WinnerCount: 1, EligibleRosters: []string{"employees"}},
			{Key: "first", DisplayName: "Giải Nhất", Icon: "🥇", WinnerCount: 1, EligibleRosters: []string{"employees"}},
			{Key: "second", DisplayName: "Giải Nhì", Icon: "🥈", WinnerCount: 2, EligibleRosters: []string{"employees"}},
			{Key: "third", DisplayName: "Giải Ba", Icon: "🥉", WinnerCount: 3, EligibleRosters: []string{"employees"}},
			{Key: "consolation", DisplayName: "Khuyến Khích", Icon: "🎁", WinnerCount: 30, EligibleRosters: []string{"employees", "guests"}},
		},
	}
}

// Load builds the configuration from defaults, the optional TOML file at path
// and LUCKYDRAW_* environment variables, in that order of precedence.
// A file that lists rosters or tiers replaces the default lists entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		defaults := Default()
		cfg.Rosters, cfg.Tiers = nil, nil
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if cfg.Rosters == nil {
			cfg.Rosters = defaults.Rosters
		}
		if cfg.Tiers == nil {
			cfg.Tiers = defaults.Tiers
		}
	}

	if err := env.ParseWithOptions(&cfg.Server, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := env.ParseWithOptions(&cfg.Store, env.Options{Prefix: EnvPrefix + "STORE_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the roster and tier lists for consistency.
func (c *Config) Validate() error {
	if len(c.Rosters) == 0 {
		return errors.New("config: at least one roster is required")
	}
	if len(c.Tiers) == 0 {
		return errors.New("config: at least one tier is required")
	}
	if c.Server.NodeID < 0 || c.Server.NodeID > 1023 {
		return fmt.Errorf("config: node_id must be between 0 and 1023, got %d", c.Server.NodeID)
	}

	rosters := make(map[string]bool, len(c.Rosters))
	for _, r := range c.Rosters {
		if r.Name == "" {
			return errors.New("config: roster without name")
		}
		if rosters[r.Name] {
			return fmt.Errorf("config: duplicate roster %q", r.Name)
		}
		if r.Path == "" && r.Data == "" {
			return fmt.Errorf("config: roster %q needs a path or inline data", r.Name)
		}
		rosters[r.Name] = true
	}

	tiers := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.Key == "" {
			return errors.New("config: tier without key")
		}
		if tiers[t.Key] {
			return fmt.Errorf("config: duplicate tier %q", t.Key)
		}
		tiers[t.Key] = true
		if t.WinnerCount < 1 {
			return fmt.Errorf("config: tier %q winner_count must be at least 1", t.Key)
		}
		if len(t.EligibleRosters) == 0 {
			return fmt.Errorf("config: tier %q has no eligible_rosters", t.Key)
		}
		for _, name := range t.EligibleRosters {
			if !rosters[name] {
				return fmt.Errorf("config: tier %q: %w: %s", t.Key, models.ErrUnknownRoster, name)
			}
		}
	}
	return nil
}
