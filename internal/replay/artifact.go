package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

// Artifact is a recorded run. Commands alone are enough to reproduce it;
// the remaining fields are evidence to check a reproduction against.
type Artifact struct {
	Seed  int64 `json:"seed"`
	Turns int   `json:"turns"`
	// Preset is the difficulty the run was recorded under. Empty means normal.
	Preset       config.DifficultyPreset `json:"preset,omitempty"`
	Start        *sim.StartOptions       `json:"start,omitempty"`
	Commands     []sim.Batch             `json:"commands"`
	Events       []sim.Events            `json:"events,omitempty"`
	Observations []sim.Observation       `json:"observations,omitempty"`
	TurnHashes   []string                `json:"turnHashes,omitempty"`
	FinalHash    string                  `json:"finalHash,omitempty"`
}

// batch returns the commands of a zero-based turn; missing turns are empty.
func (a *Artifact) batch(turn int) sim.Batch {
	if turn < len(a.Commands) {
		return a.Commands[turn]
	}
	return nil
}

func (a *Artifact) startOptions() sim.StartOptions {
	if a.Start == nil {
		return sim.StartOptions{}
	}
	return *a.Start
}

// CommandLog is a command script for Record. Seed and Turns are optional
// and only fill in what the caller does not pin.
type CommandLog struct {
	Seed     *int64      `json:"seed,omitempty"`
	Turns    *int        `json:"turns,omitempty"`
	Commands []sim.Batch `json:"commands"`
}

// ParseCommands accepts either {"seed", "turns", "commands"} or a bare array
// of per-turn command arrays.
func ParseCommands(data []byte) (CommandLog, error) {
	var cl CommandLog
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return cl, fmt.Errorf("replay: empty command file")
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &cl.Commands); err != nil {
			return cl, fmt.Errorf("replay: command list: %w", err)
		}
		return cl, nil
	}
	if err := json.Unmarshal(trimmed, &cl); err != nil {
		return cl, fmt.Errorf("replay: command log: %w", err)
	}
	return cl, nil
}

// LoadCommands reads a command script from disk.
func LoadCommands(path string) (CommandLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CommandLog{}, fmt.Errorf("replay: %w", err)
	}
	return ParseCommands(data)
}
