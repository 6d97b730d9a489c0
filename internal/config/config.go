// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the server and the CLI.
type Config struct {
	// Cloud Run sets PORT; API_PORT is the local override.
	Port    string `env:"PORT"`
	APIPort string `env:"API_PORT" envDefault:"8080"`

	UnitData   string `env:"UNIT_DATA" envDefault:"data/unit_data.csv"`
	AlliedDeck string `env:"ALLIED_DECK"`
	JapanDeck  string `env:"JAPAN_DECK"`

	// Empty keeps reports in memory only.
	ReportDB      string `env:"REPORT_DB"`
	ReportHistory int    `env:"REPORT_HISTORY" envDefault:"200"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	APIBase string `env:"EOTS_API_BASE"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ReportHistory <= 0 {
		return Config{}, fmt.Errorf("parse env: REPORT_HISTORY must be positive, got %d", cfg.ReportHistory)
	}
	return cfg, nil
}

// Addr is the listen address, preferring PORT over API_PORT.
func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = strings.TrimSpace(c.APIPort)
	}
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
