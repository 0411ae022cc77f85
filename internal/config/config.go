// Package config loads the table setup from a YAML file: who sits where,
// which agents drive them, and the house rules.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Agent kinds for a seat.
const (
	AgentHeuristic = "heuristic"
	AgentLLM       = "llm"
)

// SeatConfig describes one player at the table.
type SeatConfig struct {
	Name    string `yaml:"name"`
	Color   string `yaml:"color"`
	Agent   string `yaml:"agent"`   // heuristic or llm
	Persona string `yaml:"persona"` // llm only
}

// Config is the full table setup.
type Config struct {
	Seats []SeatConfig `yaml:"seats"`

	BoardMode string `yaml:"board_mode"` // classic or procedural
	MaxPoints int    `yaml:"max_points"`
	Seed      int64  `yaml:"seed"` // 0 means random

	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`

	DBPath        string `yaml:"db_path"`
	ArchivePath   string `yaml:"archive_path"`
	SpectatorPort int    `yaml:"spectator_port"` // 0 disables the spectator API

	Rules Rules `yaml:"rules"`
}

// Rules are the controller policy knobs.
type Rules struct {
	SetupRetries     int `yaml:"setup_retries"`
	MandatoryRetries int `yaml:"mandatory_retries"`
	MainActionCap    int `yaml:"main_action_cap"`
	NegotiationCap   int `yaml:"negotiation_cap"`
	PrivateChatCap   int `yaml:"private_chat_cap"`
	DecisionTimeoutS int `yaml:"decision_timeout_seconds"`
	MaxRounds        int `yaml:"max_rounds"`
}

// Default returns a playable three-seat heuristic table.
func Default() Config {
	return Config{
		Seats: []SeatConfig{
			{Name: "Alice", Color: "red", Agent: AgentHeuristic},
			{Name: "Bob", Color: "blue", Agent: AgentHeuristic},
			{Name: "Carol", Color: "white", Agent: AgentHeuristic},
		},
		BoardMode: "classic",
		MaxPoints: 10,
		Model:     "claude-sonnet-4-20250514",
		APIKeyEnv: "ANTHROPIC_API_KEY",
		DBPath:    "games.db",
		Rules: Rules{
			SetupRetries:     3,
			MandatoryRetries: 1,
			MainActionCap:    10,
			NegotiationCap:   6,
			PrivateChatCap:   7,
			DecisionTimeoutS: 90,
			MaxRounds:        200,
		},
	}
}

// Load reads path and merges it over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects tables that cannot be seated.
func (c Config) Validate() error {
	if len(c.Seats) < 3 || len(c.Seats) > 4 {
		return fmt.Errorf("need 3 or 4 seats, got %d", len(c.Seats))
	}
	names := make(map[string]bool, len(c.Seats))
	for i, s := range c.Seats {
		if s.Name == "" {
			return fmt.Errorf("seat %d has no name", i)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate seat name %q", s.Name)
		}
		names[s.Name] = true
		switch s.Agent {
		case AgentHeuristic, AgentLLM:
		default:
			return fmt.Errorf("seat %q: unknown agent kind %q", s.Name, s.Agent)
		}
	}
	switch c.BoardMode {
	case "classic", "procedural":
	default:
		return fmt.Errorf("unknown board_mode %q", c.BoardMode)
	}
	if c.MaxPoints < 3 {
		return fmt.Errorf("max_points %d is below a winnable threshold", c.MaxPoints)
	}
	return nil
}

// DecisionTimeout returns the agent decision deadline as a duration.
func (r Rules) DecisionTimeout() time.Duration {
	return time.Duration(r.DecisionTimeoutS) * time.Second
}

// APIKey resolves the model key from the configured environment variable.
func (c Config) APIKey() string {
	return os.Getenv(c.APIKeyEnv)
}
