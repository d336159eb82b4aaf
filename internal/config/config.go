// Package config provides YAML-based rules loading and difficulty presets for
// the raid kernel. Rules are the tuning constants every rule module reads:
// grid shape, power economy, action limits and costs, cover values.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidRules is wrapped by every Validate failure.
var ErrInvalidRules = errors.New("config: invalid rules")

// Rules contains all tuning for one raid.
type Rules struct {
	Grid    GridRules    `yaml:"grid"`
	Power   PowerRules   `yaml:"power"`
	Limits  ActionLimits `yaml:"limits"`
	Costs   ActionCosts  `yaml:"costs"`
	Combat  CombatRules  `yaml:"combat"`
	Console ConsoleRules `yaml:"console"`
}

// GridRules defines the procedural layout.
type GridRules struct {
	RoomWidth     int `yaml:"room_width"`
	RoomHeight    int `yaml:"room_height"`
	RoomCount     int `yaml:"room_count"`
	CorridorWidth int `yaml:"corridor_width"`
}

// Width is the total grid width: rooms plus one corridor column between each pair.
func (g GridRules) Width() int {
	return g.RoomCount*g.RoomWidth + (g.RoomCount-1)*g.CorridorWidth
}

// Height is the total grid height.
func (g GridRules) Height() int {
	return g.RoomHeight
}

// PowerRules defines the shared power reserve.
type PowerRules struct {
	Start                int  `yaml:"start"`
	MaintenancePerDrone  int  `yaml:"maintenance_per_drone"`
	LowPowerThreshold    int  `yaml:"low_power_threshold"`
	LowPowerMovePenalty  int  `yaml:"low_power_move_penalty"`
	LowPowerTurnsToFail  int  `yaml:"low_power_turns_to_fail"`
	LowPowerHackDisabled bool `yaml:"low_power_hack_disabled"`
}

// ActionLimits bounds movement and carrying.
type ActionLimits struct {
	MoveMax         int `yaml:"move_max"`
	DashMax         int `yaml:"dash_max"`
	BackpackSlots   int `yaml:"backpack_slots"`
	SealedItemLimit int `yaml:"sealed_item_limit"`
}

// ActionCosts is the base power price of each command.
type ActionCosts struct {
	Dash       int `yaml:"dash"`
	Shoot      int `yaml:"shoot"`
	Reload     int `yaml:"reload"`
	UseItem    int `yaml:"use_item"`
	Hack       int `yaml:"hack"`
	ForceDoor  int `yaml:"force_door"`
	SealAction int `yaml:"seal_action"`
	SealExtra  int `yaml:"seal_extra"`
}

// CombatRules holds cover reductions.
type CombatRules struct {
	CoverHalf int `yaml:"cover_half"`
	CoverFull int `yaml:"cover_full"`
}

// ConsoleRules defines what a hacked console yields.
type ConsoleRules struct {
	PowerRestore int `yaml:"power_restore"`
}

// Validate reports the first nonsensical value.
func (r Rules) Validate() error {
	checks := []struct {
		ok   bool
		what string
	}{
		{r.Grid.RoomWidth >= 3, "grid.room_width must be at least 3"},
		{r.Grid.RoomHeight >= 3, "grid.room_height must be at least 3"},
		{r.Grid.RoomCount >= 4, "grid.room_count must be at least 4"},
		{r.Grid.CorridorWidth == 1, "grid.corridor_width must be 1"},
		{r.Power.MaintenancePerDrone >= 0, "power.maintenance_per_drone must not be negative"},
		{r.Power.LowPowerMovePenalty >= 0, "power.low_power_move_penalty must not be negative"},
		{r.Power.LowPowerTurnsToFail >= 1, "power.low_power_turns_to_fail must be at least 1"},
		{r.Limits.MoveMax >= 1, "limits.move_max must be at least 1"},
		{r.Limits.DashMax >= r.Limits.MoveMax, "limits.dash_max must be at least move_max"},
		{r.Limits.BackpackSlots >= 0, "limits.backpack_slots must not be negative"},
		{r.Combat.CoverHalf >= 0 && r.Combat.CoverFull >= r.Combat.CoverHalf, "combat cover must satisfy 0 <= half <= full"},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrInvalidRules, c.what)
		}
	}
	return nil
}
