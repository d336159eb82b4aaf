// Package sim is the deterministic raid kernel.
//
// A GameState plus one batch of commands goes into Engine.Step; a fresh
// GameState, an ordered event log and an Observation come out. Step never
// mutates its input and never draws randomness, so replaying the same seed
// and command stream reproduces every turn exactly.
package sim

import (
	"slices"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
	"github.com/vovakirdan/raid-kernel/internal/rng"
)

// Faction separates the squad from hostiles.
type Faction string

const (
	FactionDrone Faction = "drone"
	FactionEnemy Faction = "enemy"
)

// Terrain is the base kind of a tile.
type Terrain string

const (
	TerrainFloor Terrain = "floor"
	TerrainWall  Terrain = "wall"
)

// Cover is the protection a tile grants to a unit standing on it.
type Cover string

const (
	CoverNone Cover = ""
	CoverHalf Cover = "half"
	CoverFull Cover = "full"
)

// MissionStatus only ever moves away from InProgress.
type MissionStatus string

const (
	MissionInProgress MissionStatus = "IN_PROGRESS"
	MissionExtracted  MissionStatus = "EXTRACTED"
	MissionFailed     MissionStatus = "FAILED"
)

// Status is a timed effect on a unit.
type Status struct {
	ID    catalog.StatusID `json:"id"`
	Turns int              `json:"turns"`
}

// ItemStack is an item occupying backpack or crate space.
type ItemStack struct {
	ItemID string `json:"itemId"`
	Size   int    `json:"size"`
}

// WeaponState tracks ammunition for an equipped weapon.
type WeaponState struct {
	ItemID  string `json:"itemId"`
	Ammo    int    `json:"ammo"`
	MaxAmmo int    `json:"maxAmmo"`
}

// ConsumableState tracks the remaining charges of a consumable.
type ConsumableState struct {
	ItemID  string `json:"itemId"`
	Charges int    `json:"charges"`
}

// Loadout is what a drone carries into the raid.
type Loadout struct {
	Primary     WeaponState       `json:"primary"`
	Secondary   WeaponState       `json:"secondary"`
	Modules     []string          `json:"modules"`
	Consumables []ConsumableState `json:"consumables"`
}

// Inventory is a drone's backpack and seal slot.
type Inventory struct {
	Backpack   []ItemStack `json:"backpack"`
	Capacity   int         `json:"capacity"`
	SealedItem *ItemStack  `json:"sealedItem"`
}

// Used returns the total size of everything in the backpack.
func (inv *Inventory) Used() int {
	used := 0
	for _, it := range inv.Backpack {
		used += it.Size
	}
	return used
}

// CanFit reports whether an item of the given size still fits.
func (inv *Inventory) CanFit(size int) bool {
	return inv.Used()+size <= inv.Capacity
}

// Unit is any drone or enemy on the grid.
type Unit struct {
	ID        string     `json:"id"`
	TypeID    string     `json:"typeId"`
	Faction   Faction    `json:"faction"`
	Pos       core.Vec2  `json:"pos"`
	HP        int        `json:"hp"`
	MaxHP     int        `json:"maxHp"`
	Armor     int        `json:"armor"`
	Statuses  []Status   `json:"statuses"`
	Loadout   *Loadout   `json:"loadout,omitempty"`
	Inventory *Inventory `json:"inventory,omitempty"`
	AIRole    string     `json:"aiRole,omitempty"`
}

// Alive reports whether the unit still acts. Dead units are inert.
func (u *Unit) Alive() bool {
	return u.HP > 0
}

// HasStatus reports whether the status is active on the unit.
func (u *Unit) HasStatus(id catalog.StatusID) bool {
	for _, s := range u.Statuses {
		if s.ID == id && s.Turns > 0 {
			return true
		}
	}
	return false
}

// StatusTurns returns the remaining turns of a status, or 0.
func (u *Unit) StatusTurns(id catalog.StatusID) int {
	for _, s := range u.Statuses {
		if s.ID == id {
			return s.Turns
		}
	}
	return 0
}

// Tile is one grid cell.
type Tile struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Terrain    Terrain `json:"terrain"`
	Cover      Cover   `json:"cover,omitempty"`
	Smoke      int     `json:"smoke,omitempty"`
	DoorID     string  `json:"doorId,omitempty"`
	ConsoleID  string  `json:"consoleId,omitempty"`
	CrateID    string  `json:"crateId,omitempty"`
	Extraction bool    `json:"extraction,omitempty"`
}

// Grid is a row-major tile map.
type Grid struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Tiles  []Tile `json:"tiles"`
}

// Door blocks movement and sight until opened.
type Door struct {
	ID     string    `json:"id"`
	Pos    core.Vec2 `json:"pos"`
	Locked bool      `json:"locked"`
	Open   bool      `json:"open"`
}

// Console restores power once when hacked.
type Console struct {
	ID   string    `json:"id"`
	Pos  core.Vec2 `json:"pos"`
	Used bool      `json:"used"`
}

// Crate holds loot until picked.
type Crate struct {
	ID     string      `json:"id"`
	Pos    core.Vec2   `json:"pos"`
	Items  []ItemStack `json:"items"`
	Opened bool        `json:"opened"`
}

// LowPower tracks how long the reserve has been at or below the threshold.
type LowPower struct {
	Active bool `json:"active"`
	Turns  int  `json:"turns"`
}

// Mission is the overall outcome.
type Mission struct {
	Status        MissionStatus `json:"status"`
	FailureReason string        `json:"failureReason,omitempty"`
}

// GameState is the complete world at a turn boundary.
type GameState struct {
	Seed          int64               `json:"seed"`
	RNG           rng.Stream          `json:"rng"`
	Turn          int                 `json:"turn"`
	Power         int                 `json:"power"`
	LowPower      LowPower            `json:"lowPower"`
	Grid          Grid                `json:"grid"`
	Doors         map[string]*Door    `json:"doors"`
	Consoles      map[string]*Console `json:"consoles"`
	Crates        map[string]*Crate   `json:"crates"`
	Units         map[string]*Unit    `json:"units"`
	ExtractionPos core.Vec2           `json:"extractionPos"`
	Mission       Mission             `json:"mission"`
}

// Terminal reports whether the mission has ended.
func (s *GameState) Terminal() bool {
	return s.Mission.Status != MissionInProgress
}

// Unit returns a unit by id, or nil.
func (s *GameState) Unit(id string) *Unit {
	return s.Units[id]
}

// SortedUnits returns all units ordered by id.
func (s *GameState) SortedUnits() []*Unit {
	return sortedValues(s.Units)
}

// UnitsOf returns the units of a faction ordered by id, optionally only living ones.
func (s *GameState) UnitsOf(f Faction, aliveOnly bool) []*Unit {
	var out []*Unit
	for _, u := range s.SortedUnits() {
		if u.Faction != f || (aliveOnly && !u.Alive()) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func sortedValues[T any](m map[string]*T) []*T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// Clone returns a deep copy sharing no memory with s.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Grid.Tiles = slices.Clone(s.Grid.Tiles)

	c.Doors = make(map[string]*Door, len(s.Doors))
	for id, d := range s.Doors {
		cp := *d
		c.Doors[id] = &cp
	}
	c.Consoles = make(map[string]*Console, len(s.Consoles))
	for id, con := range s.Consoles {
		cp := *con
		c.Consoles[id] = &cp
	}
	c.Crates = make(map[string]*Crate, len(s.Crates))
	for id, cr := range s.Crates {
		cp := *cr
		cp.Items = slices.Clone(cr.Items)
		c.Crates[id] = &cp
	}
	c.Units = make(map[string]*Unit, len(s.Units))
	for id, u := range s.Units {
		c.Units[id] = u.clone()
	}
	return &c
}

func (u *Unit) clone() *Unit {
	cp := *u
	cp.Statuses = slices.Clone(u.Statuses)
	if u.Loadout != nil {
		l := *u.Loadout
		l.Modules = slices.Clone(u.Loadout.Modules)
		l.Consumables = slices.Clone(u.Loadout.Consumables)
		cp.Loadout = &l
	}
	if u.Inventory != nil {
		inv := *u.Inventory
		inv.Backpack = slices.Clone(u.Inventory.Backpack)
		if u.Inventory.SealedItem != nil {
			sealed := *u.Inventory.SealedItem
			inv.SealedItem = &sealed
		}
		cp.Inventory = &inv
	}
	return &cp
}
