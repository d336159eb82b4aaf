package sim

import "github.com/vovakirdan/raid-kernel/internal/catalog"

// Power event reasons.
const (
	PowerReasonMaintenance = "maintenance"
	PowerReasonAction      = "action"
	PowerReasonConsole     = "console"
)

// ApplyMaintenance charges upkeep for every living drone. The reserve may go
// negative.
func (e *Engine) ApplyMaintenance(s *GameState, events *Events) {
	cost := len(s.UnitsOf(FactionDrone, true)) * e.rules.Power.MaintenancePerDrone
	if cost > 0 {
		s.Power -= cost
		events.emit(PowerConsumedEvent{Amount: cost, Reason: PowerReasonMaintenance})
	}
}

// UpdateLowPower advances or clears the low-power counter.
func (e *Engine) UpdateLowPower(s *GameState, events *Events) {
	if s.Power <= e.rules.Power.LowPowerThreshold {
		s.LowPower.Active = true
		s.LowPower.Turns++
		events.emit(PowerLowEvent{Turns: s.LowPower.Turns})
		return
	}
	s.LowPower = LowPower{}
}

// ApplyActionPowerCosts charges every command in unit-id order. Commands the
// reserve cannot cover are rejected; commands of dead or missing units are
// dropped. The returned commands are sorted by unit id.
func (e *Engine) ApplyActionPowerCosts(s *GameState, cmds []Command, events *Events) ([]Command, error) {
	sorted := sortByActor(cmds)
	approved := make([]Command, 0, len(sorted))
	for _, c := range sorted {
		u := s.Units[c.Actor()]
		if u == nil || !u.Alive() {
			continue
		}
		cost, err := e.ActionCost(u, c)
		if err != nil {
			return nil, err
		}
		if cost > s.Power {
			events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonInsufficientPower})
			continue
		}
		if cost > 0 {
			s.Power -= cost
			events.emit(PowerConsumedEvent{Amount: cost, Reason: PowerReasonAction})
		}
		approved = append(approved, c)
	}
	return approved, nil
}

// ActionCost returns the power price of a command for a unit.
func (e *Engine) ActionCost(u *Unit, c Command) (int, error) {
	costs := e.rules.Costs
	tr, err := e.traits(u)
	if err != nil {
		return 0, err
	}
	switch c := c.(type) {
	case DashCommand:
		return max(0, costs.Dash+tr.DashCostMod), nil
	case ShootCommand:
		return costs.Shoot, nil
	case ReloadCommand:
		return costs.Reload, nil
	case UseItemCommand:
		return costs.UseItem, nil
	case HackCommand:
		if c.Force {
			return costs.ForceDoor, nil
		}
		jam := 0
		if u.HasStatus(catalog.StatusJammed) {
			jam = 1
		}
		return max(1, costs.Hack+tr.HackCostMod+jam), nil
	case LootCommand:
		return max(0, tr.LootCostMod), nil
	case SealCommand:
		return costs.SealAction + costs.SealExtra, nil
	}
	return 0, nil
}

// CanHack reports whether hacking is allowed in the current power state.
func (e *Engine) CanHack(s *GameState) bool {
	return !(s.LowPower.Active && e.rules.Power.LowPowerHackDisabled)
}
