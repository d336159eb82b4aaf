package sim

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
)

func TestStepDoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 21)
	before := s.Clone()

	step(t, e, s,
		ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"},
		MoveCommand{UnitID: "drone-2", Path: []core.Vec2{core.V(2, 1), core.V(3, 1)}},
		UseItemCommand{UnitID: "drone-4", ItemID: "smoke-canister"},
	)
	if !reflect.DeepEqual(s, before) {
		t.Error("Step() modified its input state")
	}
}

func TestStepDeterministic(t *testing.T) {
	e := newTestEngine(t)
	a := newTestState(t, e, 1234)
	b := newTestState(t, e, 1234)

	batch := []Command{
		ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"},
		ReloadCommand{UnitID: "drone-2"},
		UseItemCommand{UnitID: "drone-4", ItemID: "repair-foam", TargetID: "drone-1"},
		HackCommand{UnitID: "drone-3", ObjectID: "door-1"},
	}
	for turn := 1; turn <= 8; turn++ {
		ra := step(t, e, a, batch...)
		rb := step(t, e, b, batch...)
		if !reflect.DeepEqual(ra.NextState, rb.NextState) {
			t.Fatalf("turn %d: states diverged", turn)
		}
		if !reflect.DeepEqual(ra.Events, rb.Events) {
			t.Fatalf("turn %d: events diverged", turn)
		}
		if !reflect.DeepEqual(ra.Observation, rb.Observation) {
			t.Fatalf("turn %d: observations diverged", turn)
		}
		a, b = ra.NextState, rb.NextState
	}
}

func TestTerminalStateIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	for _, status := range []MissionStatus{MissionFailed, MissionExtracted} {
		s := newTestState(t, e, 3)
		s.Mission.Status = status

		res := step(t, e, s, ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"})
		if !reflect.DeepEqual(res.NextState, s) {
			t.Errorf("%s: state changed", status)
		}
		if res.NextState == s {
			t.Errorf("%s: returned the input pointer", status)
		}
		if res.Events == nil || len(res.Events) != 0 {
			t.Errorf("%s: events = %v, expected empty", status, res.Events)
		}
		if res.Observation.Phase != PhaseResolution || res.Observation.Turn != s.Turn {
			t.Errorf("%s: observation = phase %s turn %d", status, res.Observation.Phase, res.Observation.Turn)
		}
	}
}

func TestStepAdvancesTurn(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 3)
	res := step(t, e, s)
	if res.NextState.Turn != 2 || res.Observation.Turn != 2 {
		t.Errorf("turn = %d (observation %d), expected 2", res.NextState.Turn, res.Observation.Turn)
	}
}

func TestDroneShootsEnemy(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 21)
	// Clear (2,1) so enemy-1 can stand next to drone-1.
	s.Units["drone-2"].Pos = core.V(5, 5)
	s.Units["enemy-1"].Pos = core.V(2, 1)

	res := step(t, e, s, ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"})

	shots := eventsFor(res.Events, func(ev ShotFiredEvent) bool { return ev.AttackerID == "drone-1" })
	if len(shots) != 1 || shots[0].TargetID != "enemy-1" || shots[0].Damage != 4 {
		t.Errorf("ShotFired = %+v, expected drone-1 -> enemy-1 for 4", shots)
	}
	hits := eventsFor(res.Events, func(ev DamageAppliedEvent) bool { return ev.TargetID == "enemy-1" })
	if len(hits) != 1 || hits[0].Amount <= 0 {
		t.Errorf("DamageApplied = %+v, expected positive damage on enemy-1", hits)
	}
	if ammo := res.NextState.Units["drone-1"].Loadout.Primary.Ammo; ammo != 5 {
		t.Errorf("Ammo = %d, expected 5", ammo)
	}
}

func TestShootFailures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *GameState)
		cmd    ShootCommand
		reason string
	}{
		{
			name:   "unknown target",
			cmd:    ShootCommand{UnitID: "drone-1", TargetID: "enemy-9"},
			reason: ReasonInvalidTarget,
		},
		{
			name:   "dead target",
			setup:  func(s *GameState) { s.Units["enemy-1"].HP = 0 },
			cmd:    ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"},
			reason: ReasonInvalidTarget,
		},
		{
			name:   "empty magazine",
			setup:  func(s *GameState) { s.Units["drone-1"].Loadout.Primary.Ammo = 0 },
			cmd:    ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"},
			reason: ReasonEmptyAmmo,
		},
		{
			name:   "behind a door",
			cmd:    ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"},
			reason: ReasonNoLOS,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			s := newTestState(t, e, 21)
			if tc.setup != nil {
				tc.setup(s)
			}
			res := step(t, e, s, tc.cmd)
			failed := eventsFor(res.Events, func(ev CommandFailedEvent) bool { return ev.UnitID == "drone-1" })
			if len(failed) != 1 || failed[0].Reason != tc.reason {
				t.Errorf("CommandFailed = %+v, expected %s", failed, tc.reason)
			}
		})
	}
}

func TestReloadRefills(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 21)
	s.Units["drone-1"].Loadout.Primary.Ammo = 0
	res := step(t, e, s, ReloadCommand{UnitID: "drone-1"})
	if w := res.NextState.Units["drone-1"].Loadout.Primary; w.Ammo != w.MaxAmmo {
		t.Errorf("Ammo = %d, expected %d", w.Ammo, w.MaxAmmo)
	}
}

func TestEmptyMoveFails(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 21)

	res := step(t, e, s, MoveCommand{UnitID: "drone-1"})
	moves := eventsFor(res.Events, func(ev MovementResolvedEvent) bool { return ev.UnitID == "drone-1" })
	if len(moves) != 1 || moves[0].Success {
		t.Errorf("MovementResolved = %+v, expected one failure", moves)
	}
	if res.NextState.Units["drone-1"].Pos != core.V(1, 1) {
		t.Errorf("drone-1 moved to %v", res.NextState.Units["drone-1"].Pos)
	}
}

func TestMovementConflictSmallerIDWins(t *testing.T) {
	e := newTestEngine(t)
	orders := map[string][]Command{
		"drone-1 first": {
			MoveCommand{UnitID: "drone-1", Path: []core.Vec2{core.V(1, 1), core.V(2, 1)}},
			MoveCommand{UnitID: "drone-2", Path: []core.Vec2{core.V(3, 1), core.V(2, 1)}},
		},
		"drone-2 first": {
			MoveCommand{UnitID: "drone-2", Path: []core.Vec2{core.V(3, 1), core.V(2, 1)}},
			MoveCommand{UnitID: "drone-1", Path: []core.Vec2{core.V(1, 1), core.V(2, 1)}},
		},
	}
	for name, cmds := range orders {
		t.Run(name, func(t *testing.T) {
			s := newTestState(t, e, 5)
			killEnemies(s)
			s.Units["drone-2"].Pos = core.V(3, 1)

			res := step(t, e, s, cmds...)
			if got := res.NextState.Units["drone-1"].Pos; got != core.V(2, 1) {
				t.Errorf("drone-1 at %v, expected (2,1)", got)
			}
			if got := res.NextState.Units["drone-2"].Pos; got != core.V(3, 1) {
				t.Errorf("drone-2 at %v, expected (3,1)", got)
			}
			lost := eventsFor(res.Events, func(ev MovementResolvedEvent) bool { return ev.UnitID == "drone-2" })
			if len(lost) != 1 || lost[0].Success {
				t.Errorf("drone-2 movement = %+v, expected failure", lost)
			}
		})
	}
}

func TestMovementRules(t *testing.T) {
	tests := []struct {
		name     string
		start    core.Vec2
		dash     bool
		path     []core.Vec2
		expected core.Vec2
		success  bool
	}{
		{
			name:     "passes through a teammate",
			start:    core.V(1, 1),
			path:     []core.Vec2{core.V(1, 1), core.V(2, 1), core.V(3, 1)},
			expected: core.V(3, 1),
			success:  true,
		},
		{
			name:     "stops before a closed door",
			start:    core.V(5, 4),
			path:     []core.Vec2{core.V(5, 4), core.V(6, 4), core.V(7, 4), core.V(8, 4)},
			expected: core.V(7, 4),
			success:  true,
		},
		{
			name:     "move is capped",
			start:    core.V(1, 5),
			path:     []core.Vec2{core.V(1, 5), core.V(2, 5), core.V(3, 5), core.V(4, 5), core.V(5, 5), core.V(6, 5)},
			expected: core.V(4, 5),
			success:  true,
		},
		{
			name:     "dash goes further",
			start:    core.V(1, 5),
			dash:     true,
			path:     []core.Vec2{core.V(1, 5), core.V(2, 5), core.V(3, 5), core.V(4, 5), core.V(5, 5), core.V(6, 5)},
			expected: core.V(6, 5),
			success:  true,
		},
		{
			name:     "path must start at the unit",
			start:    core.V(1, 1),
			path:     []core.Vec2{core.V(3, 3), core.V(3, 4)},
			expected: core.V(1, 1),
			success:  false,
		},
		{
			name:     "no teleporting",
			start:    core.V(1, 1),
			path:     []core.Vec2{core.V(1, 1), core.V(3, 1)},
			expected: core.V(1, 1),
			success:  false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			s := newTestState(t, e, 5)
			killEnemies(s)
			s.Units["drone-1"].Pos = tc.start

			var cmd Command = MoveCommand{UnitID: "drone-1", Path: tc.path}
			if tc.dash {
				cmd = DashCommand{UnitID: "drone-1", Path: tc.path}
			}
			res := step(t, e, s, cmd)
			if got := res.NextState.Units["drone-1"].Pos; got != tc.expected {
				t.Errorf("drone-1 at %v, expected %v", got, tc.expected)
			}
			ev, ok := findEvent[MovementResolvedEvent](res.Events)
			if !ok || ev.Success != tc.success || ev.From != tc.start || ev.To != tc.expected {
				t.Errorf("MovementResolved = %+v, expected %v -> %v success=%v", ev, tc.start, tc.expected, tc.success)
			}
		})
	}
}

func TestDuplicateCommandsRejected(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	killEnemies(s)

	res := step(t, e, s,
		MoveCommand{UnitID: "drone-1", Path: []core.Vec2{core.V(1, 1), core.V(1, 0)}},
		ReloadCommand{UnitID: "drone-1"},
	)
	if ev, ok := findEvent[CommandFailedEvent](res.Events); !ok || ev.UnitID != "drone-1" || ev.Reason != ReasonDuplicateCommand {
		t.Errorf("CommandFailed = %+v, expected duplicate_command", ev)
	}
	// Only upkeep is charged: the reload never ran.
	if res.NextState.Power != 120-4 {
		t.Errorf("Power = %d, expected 116", res.NextState.Power)
	}
}

func TestCommandsForEnemiesIgnored(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	killEnemies(s)
	u := setEnemy(t, e, s, "enemy-1", "sentry-turret", core.V(13, 4))

	res := step(t, e, s, MoveCommand{UnitID: "enemy-1", Path: []core.Vec2{u.Pos, u.Pos.Add(0, 1)}})
	if got := res.NextState.Units["enemy-1"].Pos; got != u.Pos {
		t.Errorf("enemy-1 moved to %v", got)
	}
	if len(res.Events.OfType(EvMovementResolved)) != 0 {
		t.Errorf("events = %v, expected no movement", res.Events)
	}
}

func TestEMPBlocksActions(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	killEnemies(s)
	ApplyStatus(s.Units["drone-1"], catalog.StatusEMP, 1)
	ApplyStatus(s.Units["drone-2"], catalog.StatusEMP, 1)

	res := step(t, e, s,
		MoveCommand{UnitID: "drone-1", Path: []core.Vec2{core.V(1, 1), core.V(1, 0)}},
		ReloadCommand{UnitID: "drone-2"},
	)
	failed := eventsFor(res.Events, func(ev CommandFailedEvent) bool { return ev.Reason == ReasonEMP })
	if len(failed) != 2 {
		t.Errorf("EMP failures = %+v, expected 2", failed)
	}
	if res.NextState.Units["drone-1"].HasStatus(catalog.StatusEMP) {
		t.Error("EMP should have expired at the end of the turn")
	}
}

func TestUseItemHeal(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	killEnemies(s)
	s.Units["drone-1"].HP = 4

	res := step(t, e, s, UseItemCommand{UnitID: "drone-4", ItemID: "repair-foam", TargetID: "drone-1"})
	// repair-foam heals 3, the patcher adds 2.
	if hp := res.NextState.Units["drone-1"].HP; hp != 9 {
		t.Errorf("drone-1 HP = %d, expected 9", hp)
	}
	if ev, ok := findEvent[DamageAppliedEvent](res.Events); !ok || ev.Amount != -5 {
		t.Errorf("DamageApplied = %+v, expected -5", ev)
	}
	for _, c := range res.NextState.Units["drone-4"].Loadout.Consumables {
		if c.ItemID == "repair-foam" && c.Charges != 1 {
			t.Errorf("repair-foam charges = %d, expected 1", c.Charges)
		}
	}

	// Healing never exceeds max hp.
	res = step(t, e, res.NextState, UseItemCommand{UnitID: "drone-4", ItemID: "repair-foam", TargetID: "drone-1"})
	if hp := res.NextState.Units["drone-1"].HP; hp != 10 {
		t.Errorf("drone-1 HP = %d, expected 10", hp)
	}

	res = step(t, e, res.NextState, UseItemCommand{UnitID: "drone-4", ItemID: "repair-foam"})
	if ev, _ := findEvent[CommandFailedEvent](res.Events); ev.Reason != ReasonMissingItem {
		t.Errorf("reason = %q, expected %q once charges run out", ev.Reason, ReasonMissingItem)
	}
}

func TestUseItemSmoke(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	killEnemies(s)
	center := core.V(4, 4)

	res := step(t, e, s, UseItemCommand{UnitID: "drone-1", ItemID: "smoke-canister", TargetPos: &center})
	g := &res.NextState.Grid
	tests := []struct {
		pos      core.Vec2
		expected int
	}{
		{center, 1},
		{core.V(5, 4), 1},
		{core.V(4, 3), 1},
		{core.V(5, 5), 0},
		{core.V(6, 4), 0},
	}
	for _, tc := range tests {
		if got := g.Tile(tc.pos).Smoke; got != tc.expected {
			t.Errorf("smoke at %v = %d, expected %d", tc.pos, got, tc.expected)
		}
	}
	if LineOfSight(g, res.NextState.Doors, core.V(2, 4), core.V(6, 4)) {
		t.Error("smoke should block sight")
	}

	res = step(t, e, res.NextState)
	if got := res.NextState.Grid.Tile(center).Smoke; got != 0 {
		t.Errorf("smoke after two turns = %d, expected 0", got)
	}
}

func TestUseItemStatus(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	killEnemies(s)
	s.Units["drone-1"].Loadout.Consumables = []ConsumableState{{ItemID: "marker-beacon", Charges: 2}}

	res := step(t, e, s, UseItemCommand{UnitID: "drone-1", ItemID: "marker-beacon", TargetID: "enemy-2"})
	if ev, ok := findEvent[StatusAppliedEvent](res.Events); !ok || ev.TargetID != "enemy-2" || ev.StatusID != catalog.StatusMarked || ev.Turns != 2 {
		t.Errorf("StatusApplied = %+v, expected MARKED 2 on enemy-2", ev)
	}
	if got := res.NextState.Units["enemy-2"].StatusTurns(catalog.StatusMarked); got != 1 {
		t.Errorf("MARKED turns after tick = %d, expected 1", got)
	}
}

func TestCoilCannonShreds(t *testing.T) {
	e := newTestEngine(t)
	s, err := e.NewState(21, StartOptions{Loadout: catalog.Loadout{Primary: "coil-cannon"}})
	if err != nil {
		t.Fatalf("NewState() failed: %v", err)
	}
	killEnemies(s)
	setEnemy(t, e, s, "enemy-1", "sentry-turret", core.V(4, 1))
	s.Units["enemy-1"].Armor = 2

	res := step(t, e, s, ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"})
	if ev, ok := findEvent[StatusAppliedEvent](res.Events); !ok || ev.StatusID != catalog.StatusShred {
		t.Errorf("StatusApplied = %+v, expected SHRED", ev)
	}
	hit, _ := findEvent[DamageAppliedEvent](res.Events)
	if hit.Amount != 3 {
		t.Errorf("first hit = %d, expected 3", hit.Amount)
	}
	if !res.NextState.Units["enemy-1"].HasStatus(catalog.StatusShred) {
		t.Fatal("SHRED should outlast the turn")
	}

	res = step(t, e, res.NextState, ShootCommand{UnitID: "drone-1", TargetID: "enemy-1"})
	hits := eventsFor(res.Events, func(ev DamageAppliedEvent) bool { return ev.TargetID == "enemy-1" })
	if len(hits) != 1 || hits[0].Amount != 4 {
		t.Errorf("shredded hit = %+v, expected 4", hits)
	}
}

func TestSquadWipe(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 5)
	for _, u := range s.UnitsOf(FactionDrone, false) {
		u.HP = 0
	}
	res := step(t, e, s)
	if res.NextState.Mission.Status != MissionFailed || res.NextState.Mission.FailureReason != FailureSquadWipe {
		t.Errorf("mission = %+v, expected FAILED squad_wipe", res.NextState.Mission)
	}
	if res.NextState.Power != 120 {
		t.Errorf("Power = %d, expected no upkeep for dead drones", res.NextState.Power)
	}

	after := step(t, e, res.NextState, ReloadCommand{UnitID: "drone-1"})
	if len(after.Events) != 0 {
		t.Errorf("events after failure = %v, expected none", after.Events)
	}
}
