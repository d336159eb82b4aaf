package config

import "fmt"

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset converts a flag value into a preset. Empty means normal.
func ParsePreset(s string) (DifficultyPreset, error) {
	switch p := DifficultyPreset(s); p {
	case "":
		return DifficultyNormal, nil
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p, nil
	default:
		return "", fmt.Errorf("unknown preset %q (want easy, normal, hard or fixed)", s)
	}
}

// ResolvePreset picks the preset for a replay: the flag when set, else the
// recorded one, else normal.
func ResolvePreset(flag string, recorded DifficultyPreset) (DifficultyPreset, error) {
	if flag == "" {
		flag = string(recorded)
	}
	return ParsePreset(flag)
}

// IsFixedPreset returns true if the preset disables the power drain.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}

// ApplyPreset modifies the rules based on a difficulty preset.
// Normal leaves the loaded values untouched.
func ApplyPreset(cfg *Rules, preset DifficultyPreset) {
	switch preset {
	case DifficultyEasy:
		cfg.Power.Start += 40
		cfg.Power.LowPowerTurnsToFail++
		cfg.Console.PowerRestore += 5
	case DifficultyHard:
		cfg.Power.Start = max(cfg.Power.Start-40, 20)
		cfg.Power.LowPowerTurnsToFail = 1
		cfg.Costs.Hack++
	case DifficultyFixed:
		// Scripted replays and tests: no upkeep, so power only moves on actions.
		cfg.Power.MaintenancePerDrone = 0
	}
}
