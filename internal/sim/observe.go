package sim

import (
	"github.com/vovakirdan/raid-kernel/internal/core"
)

// Phase labels where in the turn an observation was taken.
type Phase string

const (
	PhaseCommand    Phase = "COMMAND"
	PhaseExecute    Phase = "EXECUTE"
	PhaseResolution Phase = "RESOLUTION"
)

// Object types in an observation.
const (
	ObjectDoor    = "door"
	ObjectConsole = "console"
	ObjectCrate   = "crate"
)

// Observation is a read-only snapshot for renderers and controllers.
// It shares no memory with the state it was built from.
type Observation struct {
	Turn           int                 `json:"turn"`
	Phase          Phase               `json:"phase"`
	Seed           int64               `json:"seed"`
	Power          int                 `json:"power"`
	LowPowerState  LowPower            `json:"lowPowerState"`
	Grid           Grid                `json:"grid"`
	Units          []ObservedUnit      `json:"units"`
	Inventory      []ObservedInventory `json:"inventory"`
	VisibleObjects []ObservedObject    `json:"visibleObjects"`
}

// ObservedUnit is the public face of a unit.
type ObservedUnit struct {
	ID       string    `json:"id"`
	TypeID   string    `json:"typeId"`
	Faction  Faction   `json:"faction"`
	Pos      core.Vec2 `json:"pos"`
	HP       int       `json:"hp"`
	Armor    int       `json:"armor"`
	Statuses []Status  `json:"statuses"`
}

// ObservedInventory summarises a drone's carrying state.
type ObservedInventory struct {
	UnitID           string  `json:"unitId"`
	BackpackUsed     int     `json:"backpackUsed"`
	BackpackCapacity int     `json:"backpackCapacity"`
	SealedItem       *string `json:"sealedItem"`
}

// ObservedObject is a door, console or crate with a coarse state:
// open/locked/closed, used/ready or opened/sealed.
type ObservedObject struct {
	ID    string    `json:"id"`
	Pos   core.Vec2 `json:"pos"`
	Type  string    `json:"type"`
	State string    `json:"state"`
}

// BuildObservation snapshots s. Units are listed by id; objects are listed
// doors first, then consoles, then crates, each group by id.
func BuildObservation(s *GameState, phase Phase) Observation {
	obs := Observation{
		Turn:          s.Turn,
		Phase:         phase,
		Seed:          s.Seed,
		Power:         s.Power,
		LowPowerState: s.LowPower,
		Grid: Grid{
			Width:  s.Grid.Width,
			Height: s.Grid.Height,
			Tiles:  append([]Tile(nil), s.Grid.Tiles...),
		},
		Units:          []ObservedUnit{},
		Inventory:      []ObservedInventory{},
		VisibleObjects: []ObservedObject{},
	}

	for _, u := range s.SortedUnits() {
		obs.Units = append(obs.Units, ObservedUnit{
			ID:       u.ID,
			TypeID:   u.TypeID,
			Faction:  u.Faction,
			Pos:      u.Pos,
			HP:       u.HP,
			Armor:    u.Armor,
			Statuses: append([]Status{}, u.Statuses...),
		})
		if u.Faction != FactionDrone || u.Inventory == nil {
			continue
		}
		inv := ObservedInventory{
			UnitID:           u.ID,
			BackpackUsed:     u.Inventory.Used(),
			BackpackCapacity: u.Inventory.Capacity,
		}
		if u.Inventory.SealedItem != nil {
			id := u.Inventory.SealedItem.ItemID
			inv.SealedItem = &id
		}
		obs.Inventory = append(obs.Inventory, inv)
	}

	for _, d := range sortedValues(s.Doors) {
		state := "closed"
		switch {
		case d.Open:
			state = "open"
		case d.Locked:
			state = "locked"
		}
		obs.VisibleObjects = append(obs.VisibleObjects, ObservedObject{ID: d.ID, Pos: d.Pos, Type: ObjectDoor, State: state})
	}
	for _, c := range sortedValues(s.Consoles) {
		state := "ready"
		if c.Used {
			state = "used"
		}
		obs.VisibleObjects = append(obs.VisibleObjects, ObservedObject{ID: c.ID, Pos: c.Pos, Type: ObjectConsole, State: state})
	}
	for _, c := range sortedValues(s.Crates) {
		state := "sealed"
		if c.Opened {
			state = "opened"
		}
		obs.VisibleObjects = append(obs.VisibleObjects, ObservedObject{ID: c.ID, Pos: c.Pos, Type: ObjectCrate, State: state})
	}
	return obs
}

// Unit returns an observed unit by id.
func (o *Observation) Unit(id string) (ObservedUnit, bool) {
	for _, u := range o.Units {
		if u.ID == id {
			return u, true
		}
	}
	return ObservedUnit{}, false
}

// Object returns an observed object by id.
func (o *Observation) Object(id string) (ObservedObject, bool) {
	for _, obj := range o.VisibleObjects {
		if obj.ID == id {
			return obj, true
		}
	}
	return ObservedObject{}, false
}

// FindPath plans a route over the observed grid. Closed doors count as
// passable when throughDoors is set, so a controller can route to a door
// it intends to open.
func (o *Observation) FindPath(from, to core.Vec2, throughDoors bool) []core.Vec2 {
	open := map[string]bool{}
	for _, obj := range o.VisibleObjects {
		if obj.Type == ObjectDoor {
			open[obj.ID] = obj.State == "open"
		}
	}
	return findPath(&o.Grid, from, to, func(p core.Vec2) bool {
		t := o.Grid.Tile(p)
		if t == nil || t.Terrain == TerrainWall {
			return false
		}
		if t.DoorID != "" {
			return throughDoors || open[t.DoorID]
		}
		return true
	})
}

// LineOfSight checks sight over the observed grid.
func (o *Observation) LineOfSight(from, to core.Vec2) bool {
	doors := map[string]*Door{}
	for _, obj := range o.VisibleObjects {
		if obj.Type == ObjectDoor {
			doors[obj.ID] = &Door{ID: obj.ID, Pos: obj.Pos, Open: obj.State == "open"}
		}
	}
	return LineOfSight(&o.Grid, doors, from, to)
}
