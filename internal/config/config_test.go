package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
seats:
  - {name: Rex, color: red, agent: llm, persona: "aggressive trader"}
  - {name: Sam, color: blue, agent: heuristic}
  - {name: Tia, color: white, agent: heuristic}
max_points: 8
board_mode: procedural
rules:
  main_action_cap: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxPoints != 8 || cfg.BoardMode != "procedural" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Rules.MainActionCap != 5 {
		t.Errorf("rules override not applied: %+v", cfg.Rules)
	}
	// Untouched knobs keep their defaults.
	if cfg.Rules.NegotiationCap != 6 || cfg.Model == "" {
		t.Errorf("defaults lost on merge: %+v", cfg)
	}
	if cfg.Seats[0].Persona != "aggressive trader" {
		t.Errorf("persona not loaded: %+v", cfg.Seats[0])
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"two seats", `
seats:
  - {name: A, agent: heuristic}
  - {name: B, agent: heuristic}
`},
		{"duplicate names", `
seats:
  - {name: A, agent: heuristic}
  - {name: A, agent: heuristic}
  - {name: B, agent: heuristic}
`},
		{"unknown agent", `
seats:
  - {name: A, agent: psychic}
  - {name: B, agent: heuristic}
  - {name: C, agent: heuristic}
`},
		{"bad board mode", `
board_mode: spherical
seats:
  - {name: A, agent: heuristic}
  - {name: B, agent: heuristic}
  - {name: C, agent: heuristic}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
