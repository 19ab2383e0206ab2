package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Database struct {
	// Path of the sqlite database file. ":memory:" is accepted for
	// throwaway runs.
	Path string `yaml:"path"`
}

type Auth struct {
	SessionTTLDays int  `yaml:"session_ttl_days"`
	BcryptCost     int  `yaml:"bcrypt_cost"`
	CookieSecure   bool `yaml:"cookie_secure"`
}

func Default() *Config {
	return &Config{
		Server:   Server{Addr: ":8080"},
		Database: Database{Path: "data/taskdesk.db"},
		Auth: Auth{
			SessionTTLDays: 7,
			BcryptCost:     12,
		},
	}
}

// Load reads the yaml config at path, falling back to defaults when the file
// does not exist. Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/taskdesk.db"
	}
	if cfg.Auth.SessionTTLDays <= 0 {
		cfg.Auth.SessionTTLDays = 7
	}
	if cfg.Auth.BcryptCost <= 0 {
		cfg.Auth.BcryptCost = 12
	}
	return cfg, nil
}
