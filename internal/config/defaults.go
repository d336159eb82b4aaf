package config

import (
	_ "embed"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the built-in rules.
func DefaultRules() Rules {
	return Rules{
		Grid: GridRules{
			RoomWidth:     8,
			RoomHeight:    8,
			RoomCount:     5,
			CorridorWidth: 1,
		},
		Power: PowerRules{
			Start:                120,
			MaintenancePerDrone:  1,
			LowPowerThreshold:    0,
			LowPowerMovePenalty:  1,
			LowPowerTurnsToFail:  2,
			LowPowerHackDisabled: true,
		},
		Limits: ActionLimits{
			MoveMax:         3,
			DashMax:         6,
			BackpackSlots:   8,
			SealedItemLimit: 1,
		},
		Costs: ActionCosts{
			Dash:       1,
			Shoot:      1,
			Reload:     1,
			UseItem:    1,
			Hack:       2,
			ForceDoor:  2,
			SealAction: 1,
			SealExtra:  5,
		},
		Combat: CombatRules{
			CoverHalf: 1,
			CoverFull: 2,
		},
		Console: ConsoleRules{
			PowerRestore: 10,
		},
	}
}
