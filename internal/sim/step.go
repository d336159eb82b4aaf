package sim

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
)

// Mission failure reasons.
const (
	FailurePowerOut  = "power_out"
	FailureSquadWipe = "squad_wipe"
)

// StepResult is the outcome of one turn.
type StepResult struct {
	NextState   *GameState
	Events      Events
	Observation Observation
}

type pendingHeal struct {
	targetID string
	amount   int
}

type pendingStatus struct {
	targetID string
	status   catalog.StatusID
	turns    int
}

type pendingSmoke struct {
	center core.Vec2
	radius int
	turns  int
}

// turn collects the deferred effects of one step.
type turn struct {
	damage   []PendingDamage
	heals    []pendingHeal
	statuses []pendingStatus
	smoke    []pendingSmoke
	seals    []SealCommand
}

// Step resolves one turn. The input state is never modified.
//
// Rejected commands surface as events. The only errors are static-data
// faults such as a unit referencing an item the catalog does not know.
func (e *Engine) Step(state *GameState, cmds []Command) (StepResult, error) {
	s := state.Clone()
	var events Events

	if s.Terminal() {
		return StepResult{NextState: s, Events: Events{}, Observation: BuildObservation(s, PhaseResolution)}, nil
	}

	e.ApplyMaintenance(s, &events)
	e.UpdateLowPower(s, &events)

	player := dedupeCommands(filterDroneCommands(s, cmds), &events)
	paid, err := e.ApplyActionPowerCosts(s, player, &events)
	if err != nil {
		return StepResult{}, err
	}
	enemy, err := e.BuildEnemyCommands(s)
	if err != nil {
		return StepResult{}, err
	}

	all := dedupeCommands(append(append([]Command{}, paid...), enemy...), &events)

	var moves, others []Command
	for _, c := range all {
		if _, ok := movePath(c); ok {
			moves = append(moves, c)
		} else {
			others = append(others, c)
		}
	}

	e.resolveMovement(s, moves, &events)

	var t turn
	for _, c := range others {
		if err := e.resolveCommand(s, c, &t, &events); err != nil {
			return StepResult{}, err
		}
	}

	damaged := ApplyDamage(s, t.damage, &events)
	ApplyKnockback(s, t.damage)
	applyHeals(s, t.heals, &events)
	applyStatuses(s, t.statuses, &events)
	applySmoke(s, t.smoke)

	resolveSeals(s, t.seals, damaged, &events)

	TickStatuses(s)
	tickSmoke(s)

	if s.Power > e.rules.Power.LowPowerThreshold && s.LowPower.Active {
		s.LowPower = LowPower{}
	}

	if s.Mission.Status == MissionInProgress {
		if s.LowPower.Active && s.LowPower.Turns >= e.rules.Power.LowPowerTurnsToFail {
			e.fail(s, FailurePowerOut, &events)
		}
		if len(s.UnitsOf(FactionDrone, true)) == 0 {
			e.fail(s, FailureSquadWipe, &events)
		}
	}

	s.Turn++
	if events == nil {
		events = Events{}
	}
	e.logger.Debug("turn resolved",
		"turn", state.Turn, "events", len(events), "power", s.Power, "mission", s.Mission.Status)

	return StepResult{NextState: s, Events: events, Observation: BuildObservation(s, PhaseResolution)}, nil
}

func (e *Engine) fail(s *GameState, reason string, events *Events) {
	s.Mission.Status = MissionFailed
	s.Mission.FailureReason = reason
	events.emit(MissionFailedEvent{Reason: reason})
	e.logger.Warn("mission failed", "reason", reason, "turn", s.Turn, "seed", s.Seed)
}

// filterDroneCommands keeps commands issued for existing drones only.
func filterDroneCommands(s *GameState, cmds []Command) []Command {
	out := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		if c == nil {
			continue
		}
		if u := s.Units[c.Actor()]; u != nil && u.Faction == FactionDrone {
			out = append(out, c)
		}
	}
	return out
}

// dedupeCommands keeps the first command per unit and rejects the rest.
func dedupeCommands(cmds []Command, events *Events) []Command {
	seen := mapset.New[string]()
	out := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		if seen.Has(c.Actor()) {
			events.emit(CommandFailedEvent{UnitID: c.Actor(), Reason: ReasonDuplicateCommand})
			continue
		}
		seen.Put(c.Actor())
		out = append(out, c)
	}
	return out
}

// resolveMovement moves units in id order. Units walk their path up to the
// allowance and stop before the first impassable tile; intermediate tiles may
// hold other units. A move whose final tile is already occupied fails, so
// the unit with the smaller id wins a contested tile.
func (e *Engine) resolveMovement(s *GameState, cmds []Command, events *Events) {
	occupied := livingOccupancy(s)
	for _, c := range sortByActor(cmds) {
		u := s.Units[c.Actor()]
		if u == nil || !u.Alive() {
			continue
		}
		if u.HasStatus(catalog.StatusEMP) {
			events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonEMP})
			continue
		}
		path, _ := movePath(c)
		from := u.Pos
		if !validPath(from, path) {
			events.emit(MovementResolvedEvent{UnitID: u.ID, From: from, To: from, Success: false})
			continue
		}

		limit := e.rules.Limits.MoveMax
		if c.Type() == CmdDash {
			limit = e.rules.Limits.DashMax
		}
		if s.LowPower.Active {
			limit -= e.rules.Power.LowPowerMovePenalty
		}
		allowed := max(0, limit)
		if len(path) > allowed+1 {
			path = path[:allowed+1]
		}

		dest := from
		for _, p := range path[1:] {
			if !IsPassable(&s.Grid, p, s.Doors) {
				break
			}
			dest = p
		}

		if dest == from {
			events.emit(MovementResolvedEvent{UnitID: u.ID, From: from, To: from, Success: true})
			continue
		}
		if occupied.Has(dest) {
			events.emit(MovementResolvedEvent{UnitID: u.ID, From: from, To: from, Success: false})
			continue
		}
		occupied.Remove(from)
		occupied.Put(dest)
		u.Pos = dest
		events.emit(MovementResolvedEvent{UnitID: u.ID, From: from, To: dest, Success: true})
	}
}

// validPath requires a non-empty path starting at the unit with unit steps.
func validPath(from core.Vec2, path []core.Vec2) bool {
	if len(path) == 0 || path[0] != from {
		return false
	}
	for i := 1; i < len(path); i++ {
		if path[i-1].Manhattan(path[i]) != 1 {
			return false
		}
	}
	return true
}

func (e *Engine) resolveCommand(s *GameState, c Command, t *turn, events *Events) error {
	u := s.Units[c.Actor()]
	if u == nil || !u.Alive() {
		return nil
	}
	if u.HasStatus(catalog.StatusEMP) {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonEMP})
		return nil
	}

	switch c := c.(type) {
	case ShootCommand:
		return e.resolveShoot(s, u, c, t, events)
	case ReloadCommand:
		if u.Loadout == nil {
			events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNoLoadout})
			return nil
		}
		u.Loadout.Primary.Ammo = u.Loadout.Primary.MaxAmmo
	case HackCommand:
		switch {
		case !e.CanHack(s):
			events.emit(HackFailedEvent{ObjectID: c.ObjectID, Reason: ReasonLowPower})
		case c.Force:
			TryOpenDoor(s, u, c.ObjectID, MethodForce, events)
		case s.Doors[c.ObjectID] != nil:
			TryOpenDoor(s, u, c.ObjectID, MethodHack, events)
		default:
			e.TryUseConsole(s, u, c.ObjectID, events)
		}
	case LootCommand:
		crate := s.Crates[c.CrateID]
		if crate == nil {
			events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonMissingCrate})
			return nil
		}
		TryLoot(u, crate, events)
	case UseItemCommand:
		return e.resolveUseItem(u, c, t, events)
	case ExtractCommand:
		ApplyExtraction(s, u, events)
	case SealCommand:
		// Seals resolve after damage, see resolveSeals.
		t.seals = append(t.seals, c)
	}
	return nil
}

func (e *Engine) resolveShoot(s *GameState, u *Unit, c ShootCommand, t *turn, events *Events) error {
	target := s.Units[c.TargetID]
	if target == nil || !target.Alive() {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonInvalidTarget})
		return nil
	}

	var profile AttackProfile
	if u.Faction == FactionDrone {
		if u.Loadout == nil {
			events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNoWeapon})
			return nil
		}
		weapon, err := e.cat.Item(u.Loadout.Primary.ItemID)
		if err != nil {
			return err
		}
		if u.Loadout.Primary.Ammo <= 0 {
			events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonEmptyAmmo})
			return nil
		}
		profile = ItemProfile(weapon)
	} else {
		tmpl, err := e.cat.Enemy(u.TypeID)
		if err != nil {
			return err
		}
		profile = EnemyProfile(tmpl)
	}

	if !CanShoot(s, u, target, profile.Range) {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNoLOS})
		return nil
	}
	if u.Loadout != nil && u.Faction == FactionDrone {
		u.Loadout.Primary.Ammo--
	}
	events.emit(ShotFiredEvent{AttackerID: u.ID, TargetID: target.ID, Damage: profile.Damage})
	t.damage = append(t.damage, BuildDamage(s, e.rules.Combat, u, target, profile))
	return nil
}

func (e *Engine) resolveUseItem(u *Unit, c UseItemCommand, t *turn, events *Events) error {
	if u.Loadout == nil {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNoItems})
		return nil
	}
	var slot *ConsumableState
	for i := range u.Loadout.Consumables {
		if cs := &u.Loadout.Consumables[i]; cs.ItemID == c.ItemID && cs.Charges > 0 {
			slot = cs
			break
		}
	}
	if slot == nil {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonMissingItem})
		return nil
	}
	item, err := e.cat.Item(c.ItemID)
	if err != nil {
		return err
	}
	slot.Charges--
	if item.Effect == nil {
		return nil
	}

	targetID := c.TargetID
	if targetID == "" {
		targetID = u.ID
	}
	fx := item.Effect
	switch fx.Type {
	case catalog.EffectHeal:
		tr, err := e.traits(u)
		if err != nil {
			return err
		}
		t.heals = append(t.heals, pendingHeal{targetID: targetID, amount: fx.Amount + tr.RepairBonus})
	case catalog.EffectStatus:
		status := fx.Status
		if status == "" {
			status = catalog.StatusEMP
		}
		t.statuses = append(t.statuses, pendingStatus{targetID: targetID, status: status, turns: orDefault(fx.Duration, 1)})
	case catalog.EffectSmoke:
		center := u.Pos
		if c.TargetPos != nil {
			center = *c.TargetPos
		}
		t.smoke = append(t.smoke, pendingSmoke{center: center, radius: orDefault(fx.Radius, 1), turns: orDefault(fx.Duration, 1)})
	}
	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func applyHeals(s *GameState, heals []pendingHeal, events *Events) {
	for _, h := range heals {
		target := s.Units[h.targetID]
		if target == nil || !target.Alive() || h.amount <= 0 {
			continue
		}
		target.HP = min(target.MaxHP, target.HP+h.amount)
		events.emit(DamageAppliedEvent{TargetID: target.ID, Amount: -h.amount, HPLeft: target.HP})
	}
}

func applyStatuses(s *GameState, statuses []pendingStatus, events *Events) {
	for _, st := range statuses {
		target := s.Units[st.targetID]
		if target == nil {
			continue
		}
		ApplyStatus(target, st.status, st.turns)
		events.emit(StatusAppliedEvent{TargetID: target.ID, StatusID: st.status, Turns: st.turns})
	}
}

// applySmoke fills a Manhattan diamond around each center.
func applySmoke(s *GameState, smoke []pendingSmoke) {
	for _, sm := range smoke {
		for y := sm.center.Y - sm.radius; y <= sm.center.Y+sm.radius; y++ {
			for x := sm.center.X - sm.radius; x <= sm.center.X+sm.radius; x++ {
				pos := core.V(x, y)
				tile := s.Grid.Tile(pos)
				if tile == nil || sm.center.Manhattan(pos) > sm.radius {
					continue
				}
				tile.Smoke = max(tile.Smoke, sm.turns)
			}
		}
	}
}

// resolveSeals runs the SEAL commands that passed the EMP gate. A unit hit
// this turn loses its seal.
func resolveSeals(s *GameState, seals []SealCommand, damaged mapset.Set[string], events *Events) {
	for _, seal := range seals {
		u := s.Units[seal.UnitID]
		if u == nil || !u.Alive() {
			continue
		}
		if damaged.Has(u.ID) {
			events.emit(SealFailedEvent{UnitID: u.ID, Reason: ReasonTookDamage})
			continue
		}
		TrySeal(u, seal.ItemID, events)
	}
}

func tickSmoke(s *GameState) {
	for i := range s.Grid.Tiles {
		if t := &s.Grid.Tiles[i]; t.Smoke > 0 {
			t.Smoke--
		}
	}
}
