package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/ratrace/board"
	"github.com/rustyeddy/ratrace/engine"
	"github.com/rustyeddy/ratrace/game"
	"github.com/rustyeddy/ratrace/internal/money"
	"github.com/rustyeddy/ratrace/ledger"
	"github.com/rustyeddy/ratrace/setup"
)

// Config represents the complete game configuration
type Config struct {
	Game      GameConfig      `json:"game" yaml:"game"`
	Rules     RulesConfig     `json:"rules" yaml:"rules"`
	Timings   TimingsConfig   `json:"timings" yaml:"timings"`
	Players   []PlayerConfig  `json:"players" yaml:"players"`
	Journal   JournalConfig   `json:"journal" yaml:"journal"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
}

// GameConfig contains session-wide parameters
type GameConfig struct {
	Difficulty string  `json:"difficulty" yaml:"difficulty" env:"RATRACE_DIFFICULTY"`
	Seed       int64   `json:"seed" yaml:"seed" env:"RATRACE_SEED"` // 0 picks a random seed
	Deck       string  `json:"deck,omitempty" yaml:"deck,omitempty" env:"RATRACE_DECK"`
	Speed      float64 `json:"speed" yaml:"speed" env:"RATRACE_SPEED"`
	MaxTurns   int     `json:"max_turns" yaml:"max_turns" env:"RATRACE_MAX_TURNS"`
}

// RulesConfig contains the economic constants
type RulesConfig struct {
	TaxRate       string `json:"tax_rate" yaml:"tax_rate"`
	ChildCost     int    `json:"child_cost" yaml:"child_cost"`
	DealThreshold int    `json:"deal_threshold" yaml:"deal_threshold"`
}

// TimingsConfig contains the pacing delays as duration strings, e.g. "1.5s"
type TimingsConfig struct {
	Think         string `json:"think" yaml:"think"`
	Travel        string `json:"travel" yaml:"travel"`
	CardMinimum   string `json:"card_minimum" yaml:"card_minimum"`
	DecisionDelay string `json:"decision_delay" yaml:"decision_delay"`
	Stamp         string `json:"stamp" yaml:"stamp"`
	AutoClose     string `json:"auto_close" yaml:"auto_close"`
	Watchdog      string `json:"watchdog" yaml:"watchdog"`
	CardFetch     string `json:"card_fetch" yaml:"card_fetch"`
}

// PlayerConfig describes one seat
type PlayerConfig struct {
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Mode       string `json:"mode" yaml:"mode"` // "human" or "automated"
	Profession string `json:"profession,omitempty" yaml:"profession,omitempty"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type" env:"RATRACE_JOURNAL_TYPE"` // "none", "csv" or "sqlite"
	File   string `json:"file,omitempty" yaml:"file,omitempty" env:"RATRACE_JOURNAL_FILE"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty" env:"RATRACE_JOURNAL_DB"`
}

// TelemetryConfig contains logging and tracing parameters
type TelemetryConfig struct {
	LogLevel     string `json:"log_level" yaml:"log_level" env:"RATRACE_LOG_LEVEL"`
	LogFormat    string `json:"log_format" yaml:"log_format" env:"RATRACE_LOG_FORMAT"` // "console" or "json"
	OTLPEndpoint string `json:"otlp_endpoint,omitempty" yaml:"otlp_endpoint,omitempty" env:"RATRACE_OTLP_ENDPOINT"`
	ServiceName  string `json:"service_name" yaml:"service_name" env:"RATRACE_SERVICE_NAME"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
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

// ApplyEnv overrides fields from RATRACE_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := setup.ParseDifficulty(c.Game.Difficulty); err != nil {
		return fmt.Errorf("game.difficulty: %w", err)
	}
	if c.Game.Speed <= 0 {
		return fmt.Errorf("game.speed must be positive")
	}
	if c.Game.MaxTurns < 0 {
		return fmt.Errorf("game.max_turns must not be negative")
	}
	if _, err := c.Rules.Ledger(); err != nil {
		return err
	}
	if c.Rules.ChildCost < 0 {
		return fmt.Errorf("rules.child_cost must not be negative")
	}
	if c.Rules.DealThreshold <= 0 {
		return fmt.Errorf("rules.deal_threshold must be positive")
	}
	if _, err := c.Timings.Engine(); err != nil {
		return err
	}
	if _, err := c.Seats(); err != nil {
		return err
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.File == "" {
			return fmt.Errorf("journal file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	switch c.Telemetry.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("telemetry.log_format must be 'console' or 'json'")
	}
	return nil
}

// Ledger converts the rules section.
func (r RulesConfig) Ledger() (ledger.Rules, error) {
	rate, err := money.ParseRate(r.TaxRate)
	if err != nil {
		return ledger.Rules{}, fmt.Errorf("rules.tax_rate: %w", err)
	}
	if rate.IsNegative() {
		return ledger.Rules{}, fmt.Errorf("rules.tax_rate must not be negative")
	}
	return ledger.Rules{TaxRate: rate, ChildCost: r.ChildCost}, nil
}

// Resolver builds the space resolver for these rules.
func (r RulesConfig) Resolver() (board.Resolver, error) {
	lr, err := r.Ledger()
	if err != nil {
		return board.Resolver{}, err
	}
	return board.Resolver{Rules: lr, DealThreshold: r.DealThreshold}, nil
}

// Engine parses every delay. Empty fields keep the engine default.
func (t TimingsConfig) Engine() (engine.Timings, error) {
	out := engine.DefaultTimings()
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"think", t.Think, &out.Think},
		{"travel", t.Travel, &out.Travel},
		{"card_minimum", t.CardMinimum, &out.CardMinimum},
		{"decision_delay", t.DecisionDelay, &out.DecisionDelay},
		{"stamp", t.Stamp, &out.Stamp},
		{"auto_close", t.AutoClose, &out.AutoClose},
		{"watchdog", t.Watchdog, &out.Watchdog},
		{"card_fetch", t.CardFetch, &out.CardFetch},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return engine.Timings{}, fmt.Errorf("timings.%s: %w", f.name, err)
		}
		if d < 0 {
			return engine.Timings{}, fmt.Errorf("timings.%s must not be negative", f.name)
		}
		*f.dst = d
	}
	return out, nil
}

// Seats converts the players section.
func (c *Config) Seats() ([]setup.Seat, error) {
	if len(c.Players) < setup.MinPlayers || len(c.Players) > setup.MaxPlayers {
		return nil, fmt.Errorf("players: %w: got %d", setup.ErrPlayerCount, len(c.Players))
	}
	seats := make([]setup.Seat, 0, len(c.Players))
	for i, p := range c.Players {
		mode := game.ControlMode(strings.ToLower(p.Mode))
		if !mode.Valid() {
			return nil, fmt.Errorf("players[%d]: %w: %q", i, setup.ErrUnknownMode, p.Mode)
		}
		if p.Profession != "" {
			if _, ok := setup.Lookup(p.Profession); !ok {
				return nil, fmt.Errorf("players[%d]: %w: %q", i, setup.ErrUnknownProfession, p.Profession)
			}
		}
		seats = append(seats, setup.Seat{Name: p.Name, Mode: mode, Profession: p.Profession})
	}
	return seats, nil
}

// Default returns a configuration with sensible defaults: four automated
// players at medium difficulty, no durable journal.
func Default() *Config {
	t := engine.DefaultTimings()
	return &Config{
		Game: GameConfig{
			Difficulty: string(setup.Medium),
			Speed:      1,
			MaxTurns:   200,
		},
		Rules: RulesConfig{
			TaxRate:       "0.2",
			ChildCost:     240,
			DealThreshold: board.DefaultDealThreshold,
		},
		Timings: TimingsConfig{
			Think:         t.Think.String(),
			Travel:        t.Travel.String(),
			CardMinimum:   t.CardMinimum.String(),
			DecisionDelay: t.DecisionDelay.String(),
			Stamp:         t.Stamp.String(),
			AutoClose:     t.AutoClose.String(),
			Watchdog:      t.Watchdog.String(),
			CardFetch:     t.CardFetch.String(),
		},
		Players: []PlayerConfig{
			{Mode: string(game.Automated)},
			{Mode: string(game.Automated)},
			{Mode: string(game.Automated)},
			{Mode: string(game.Automated)},
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Telemetry: TelemetryConfig{
			LogLevel:    "info",
			LogFormat:   "console",
			ServiceName: "ratrace",
		},
	}
}
