package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestEmbeddedMatchesDefaults(t *testing.T) {
	cfg := DefaultRules()
	cfg.Power.Start = -1 // make sure the unmarshal overwrites it
	if err := yaml.Unmarshal(defaultRulesYAML, &cfg); err != nil {
		t.Fatalf("embedded rules.yaml does not parse: %v", err)
	}
	if cfg != DefaultRules() {
		t.Errorf("embedded rules differ from DefaultRules():\n%+v\n%+v", cfg, DefaultRules())
	}
}

func TestGridDimensions(t *testing.T) {
	g := DefaultRules().Grid
	if g.Width() != 44 {
		t.Errorf("Width() = %d, expected 44", g.Width())
	}
	if g.Height() != 8 {
		t.Errorf("Height() = %d, expected 8", g.Height())
	}
}

func TestLoadRulesCustomPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("power:\n  start: 30\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() failed: %v", err)
	}
	if cfg.Power.Start != 30 {
		t.Errorf("Power.Start = %d, expected 30", cfg.Power.Start)
	}
	if cfg.Limits.MoveMax != 3 {
		t.Errorf("Limits.MoveMax = %d, expected default 3", cfg.Limits.MoveMax)
	}
}

func TestLoadRulesMissingCustom(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadRules() with missing custom path should fail")
	}
}

func TestLoadRulesInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("limits:\n  move_max: 0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	_, err := LoadRules(path)
	if !errors.Is(err, ErrInvalidRules) {
		t.Errorf("LoadRules() error = %v, expected ErrInvalidRules", err)
	}
}

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in      string
		want    DifficultyPreset
		wantErr bool
	}{
		{"", DifficultyNormal, false},
		{"easy", DifficultyEasy, false},
		{"hard", DifficultyHard, false},
		{"fixed", DifficultyFixed, false},
		{"nightmare", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePreset(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParsePreset(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParsePreset(%q) = %q, expected %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestApplyPreset(t *testing.T) {
	tests := []struct {
		preset      DifficultyPreset
		start       int
		turnsToFail int
		upkeep      int
	}{
		{DifficultyEasy, 160, 3, 1},
		{DifficultyNormal, 120, 2, 1},
		{DifficultyHard, 80, 1, 1},
		{DifficultyFixed, 120, 2, 0},
	}

	for _, tc := range tests {
		t.Run(string(tc.preset), func(t *testing.T) {
			cfg := DefaultRules()
			ApplyPreset(&cfg, tc.preset)
			if cfg.Power.Start != tc.start {
				t.Errorf("Power.Start = %d, expected %d", cfg.Power.Start, tc.start)
			}
			if cfg.Power.LowPowerTurnsToFail != tc.turnsToFail {
				t.Errorf("LowPowerTurnsToFail = %d, expected %d", cfg.Power.LowPowerTurnsToFail, tc.turnsToFail)
			}
			if cfg.Power.MaintenancePerDrone != tc.upkeep {
				t.Errorf("MaintenancePerDrone = %d, expected %d", cfg.Power.MaintenancePerDrone, tc.upkeep)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s produced invalid rules: %v", tc.preset, err)
			}
		})
	}
}

func TestResolvePreset(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		recorded DifficultyPreset
		want     DifficultyPreset
		wantErr  bool
	}{
		{"nothing set", "", "", DifficultyNormal, false},
		{"recorded only", "", DifficultyHard, DifficultyHard, false},
		{"flag wins", "easy", DifficultyHard, DifficultyEasy, false},
		{"bad recorded", "", "nightmare", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolvePreset(tc.flag, tc.recorded)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ResolvePreset() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ResolvePreset() = %q, expected %q", got, tc.want)
			}
		})
	}
}

func TestIsFixedPreset(t *testing.T) {
	for _, p := range []DifficultyPreset{DifficultyEasy, DifficultyNormal, DifficultyHard} {
		if IsFixedPreset(p) {
			t.Errorf("IsFixedPreset(%q) = true", p)
		}
	}
	if !IsFixedPreset(DifficultyFixed) {
		t.Error("IsFixedPreset(fixed) = false")
	}
}
