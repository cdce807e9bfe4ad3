package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete replay configuration.
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Data       DataConfig       `json:"data" yaml:"data"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}

// AccountConfig sets the starting ledger state.
type AccountConfig struct {
	ID       string  `json:"id" yaml:"id"`
	Currency string  `json:"currency" yaml:"currency"`
	Cash     float64 `json:"cash" yaml:"cash"`
}

// SimulationConfig bounds the replay window and decision cadence.
type SimulationConfig struct {
	Start     string   `json:"start" yaml:"start"`
	End       string   `json:"end" yaml:"end"`
	Frequency string   `json:"frequency" yaml:"frequency"` // "daily" or "hourly"
	Universe  []string `json:"universe,omitempty" yaml:"universe,omitempty"`
}

// DataConfig points at the candle dataset and decision script.
type DataConfig struct {
	Candles   string `json:"candles" yaml:"candles"`     // JSONL (.gz/.xz ok) or CSV
	Decisions string `json:"decisions" yaml:"decisions"` // JSONL decision log
}

// JournalConfig selects the audit backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "jsonl", "csv" or "sqlite"
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

// Window parses the simulation bounds. Either side may be empty, meaning
// unbounded on that side.
func (s SimulationConfig) Window() (start, end time.Time, err error) {
	if s.Start != "" {
		start, err = parseStamp(s.Start)
		if err != nil {
			return start, end, fmt.Errorf("simulation.start: %w", err)
		}
	}
	if s.End != "" {
		end, err = parseStamp(s.End)
		if err != nil {
			return start, end, fmt.Errorf("simulation.end: %w", err)
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, fmt.Errorf("simulation.end %s before simulation.start %s", s.End, s.Start)
	}
	return start, end, nil
}

func parseStamp(stamp string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("bad timestamp %q", stamp)
}

// LoadFromFile loads a YAML or JSON config and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the config as YAML (.yaml/.yml) or indented JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Cash <= 0 {
		return fmt.Errorf("account.cash must be positive")
	}
	if c.Simulation.Frequency != "daily" && c.Simulation.Frequency != "hourly" {
		return fmt.Errorf("simulation.frequency must be 'daily' or 'hourly'")
	}
	if _, _, err := c.Simulation.Window(); err != nil {
		return err
	}
	for _, sym := range c.Simulation.Universe {
		if strings.TrimSpace(sym) == "" {
			return fmt.Errorf("simulation.universe contains an empty instrument")
		}
	}
	if c.Data.Candles == "" {
		return fmt.Errorf("data.candles is required")
	}
	switch c.Journal.Type {
	case "jsonl", "sqlite":
		if c.Journal.Path == "" {
			return fmt.Errorf("journal.path required for %s journal", c.Journal.Type)
		}
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for csv journal")
		}
	case "", "none":
		// No journal is fine for exploratory runs.
	default:
		return fmt.Errorf("journal.type must be 'jsonl', 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a runnable starting configuration.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			ID:       "BENCH-001",
			Currency: "USD",
			Cash:     10000,
		},
		Simulation: SimulationConfig{
			Frequency: "daily",
			Universe:  []string{"AAPL", "MSFT", "NVDA"},
		},
		Data: DataConfig{
			Candles:   "./merged.jsonl",
			Decisions: "./decisions.jsonl",
		},
		Journal: JournalConfig{
			Type: "jsonl",
			Path: "./journal.jsonl",
		},
	}
}
