package sim

import (
	"testing"

	"github.com/vovakirdan/raid-kernel/internal/core"
)

func TestBuildObservation(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 8)
	s.Doors["door-2"].Open = true
	s.Units["drone-2"].Inventory.SealedItem = &ItemStack{ItemID: "data-core", Size: 1}
	s.Units["drone-2"].Inventory.Backpack = []ItemStack{{ItemID: "fuel-cell", Size: 2}}

	obs := BuildObservation(s, PhaseCommand)
	if obs.Phase != PhaseCommand || obs.Turn != 1 || obs.Seed != 8 || obs.Power != 120 {
		t.Errorf("header = %+v", obs)
	}
	if len(obs.Units) != 8 {
		t.Fatalf("len(Units) = %d, expected 8", len(obs.Units))
	}
	for i := 1; i < len(obs.Units); i++ {
		if obs.Units[i-1].ID >= obs.Units[i].ID {
			t.Errorf("units not sorted: %s before %s", obs.Units[i-1].ID, obs.Units[i].ID)
		}
	}
	if len(obs.Inventory) != 4 {
		t.Errorf("len(Inventory) = %d, expected one per drone", len(obs.Inventory))
	}
	inv := obs.Inventory[1]
	if inv.UnitID != "drone-2" || inv.BackpackUsed != 2 || inv.SealedItem == nil || *inv.SealedItem != "data-core" {
		t.Errorf("drone-2 inventory = %+v", inv)
	}

	var types []string
	for _, obj := range obs.VisibleObjects {
		if len(types) == 0 || types[len(types)-1] != obj.Type {
			types = append(types, obj.Type)
		}
	}
	if len(types) != 3 || types[0] != ObjectDoor || types[1] != ObjectConsole || types[2] != ObjectCrate {
		t.Errorf("object groups = %v, expected door, console, crate", types)
	}

	states := map[string]string{"door-1": "locked", "door-2": "open", "door-4": "closed"}
	for id, expected := range states {
		obj, ok := obs.Object(id)
		if !ok || obj.State != expected {
			t.Errorf("%s state = %q, expected %q", id, obj.State, expected)
		}
	}
}

func TestObservationIsDetached(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 8)
	obs := BuildObservation(s, PhaseResolution)

	obs.Grid.Tiles[0].Smoke = 9
	obs.Units[0].Statuses = append(obs.Units[0].Statuses, Status{ID: "EMP", Turns: 1})
	if s.Grid.Tiles[0].Smoke != 0 {
		t.Error("observation shares tiles with the state")
	}
	if u := s.Units[obs.Units[0].ID]; len(u.Statuses) == len(obs.Units[0].Statuses) {
		t.Error("observation shares statuses with the state")
	}
}

func TestObservationPathing(t *testing.T) {
	e := newTestEngine(t)
	s := newTestState(t, e, 8)
	obs := BuildObservation(s, PhaseCommand)

	from, to := core.V(5, 4), core.V(10, 4)
	if got := obs.FindPath(from, to, false); len(got) != 1 {
		t.Errorf("FindPath through a closed door = %v, expected [from]", got)
	}
	path := obs.FindPath(from, to, true)
	if len(path) != 6 || path[len(path)-1] != to {
		t.Errorf("FindPath through doors = %v, expected 6 tiles", path)
	}
	if obs.LineOfSight(from, to) {
		t.Error("sight through a closed door")
	}

	u, ok := obs.Unit("drone-1")
	if !ok || u.Pos != core.V(1, 1) {
		t.Errorf("Unit(drone-1) = %+v, %v", u, ok)
	}
}
