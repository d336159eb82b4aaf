// Package catalog holds the static game data the raid kernel reads: items,
// drone and enemy templates, the squad roster and room templates.
//
// A Catalog is built once, validated in full, and then passed by pointer to
// whoever needs it. It is never mutated after Load returns.
package catalog

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/raid-kernel/internal/core"
)

// Lookup errors. All of them indicate broken data and are fatal to the caller.
var (
	ErrUnknownItem = errors.New("catalog: unknown item")
	ErrUnknownUnit = errors.New("catalog: unknown unit template")
	ErrInvalid     = errors.New("catalog: invalid data")
)

// StatusID names a timed status effect.
type StatusID string

const (
	StatusEMP    StatusID = "EMP"
	StatusJammed StatusID = "JAMMED"
	StatusShred  StatusID = "SHRED"
	StatusMarked StatusID = "MARKED"
)

// Valid reports whether s is one of the known statuses.
func (s StatusID) Valid() bool {
	switch s {
	case StatusEMP, StatusJammed, StatusShred, StatusMarked:
		return true
	}
	return false
}

// ItemKind classifies items.
type ItemKind string

const (
	KindWeapon     ItemKind = "weapon"
	KindModule     ItemKind = "module"
	KindConsumable ItemKind = "consumable"
	KindLoot       ItemKind = "loot"
)

// EffectType is what a consumable does when used.
type EffectType string

const (
	EffectHeal   EffectType = "heal"
	EffectStatus EffectType = "status"
	EffectSmoke  EffectType = "smoke"
)

// StatusGrant is a status applied by a hit.
type StatusGrant struct {
	Status StatusID `yaml:"status" json:"status"`
	Turns  int      `yaml:"turns" json:"turns"`
}

// Effect describes a consumable's use. Zero fields fall back to defaults
// chosen by the rules.
type Effect struct {
	Type     EffectType `yaml:"type"`
	Amount   int        `yaml:"amount"`
	Status   StatusID   `yaml:"status"`
	Duration int        `yaml:"duration"`
	Radius   int        `yaml:"radius"`
}

// ItemDef is one entry of the item catalog.
type ItemDef struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	Kind        ItemKind     `yaml:"kind"`
	Slot        string       `yaml:"slot"` // "primary" or "secondary" for weapons
	Size        int          `yaml:"size"`
	Damage      int          `yaml:"damage"`
	Range       int          `yaml:"range"`
	MaxAmmo     int          `yaml:"max_ammo"`
	Charges     int          `yaml:"charges"`
	Effect      *Effect      `yaml:"effect"`
	StatusOnHit *StatusGrant `yaml:"status_on_hit"`
}

// Traits are per-template modifiers. Only drones carry them.
type Traits struct {
	HackCostMod      int  `yaml:"hack_cost_mod"`
	RepairBonus      int  `yaml:"repair_bonus"`
	LootCostMod      int  `yaml:"loot_cost_mod"`
	DashCostMod      int  `yaml:"dash_cost_mod"`
	StartOfFightMark bool `yaml:"start_of_fight_mark"`
}

// DroneTemplate defines a squad drone.
type DroneTemplate struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	HP     int    `yaml:"hp"`
	Armor  int    `yaml:"armor"`
	Traits Traits `yaml:"traits"`
}

// EnemyWeapon is the built-in weapon of an enemy template.
type EnemyWeapon struct {
	Damage int `yaml:"damage"`
	Range  int `yaml:"range"`
}

// EnemyTemplate defines a hostile unit.
type EnemyTemplate struct {
	ID          string       `yaml:"id"`
	Name        string       `yaml:"name"`
	HP          int          `yaml:"hp"`
	Armor       int          `yaml:"armor"`
	Role        string       `yaml:"role"`
	Weapon      EnemyWeapon  `yaml:"weapon"`
	StatusOnHit *StatusGrant `yaml:"status_on_hit"`
	Knockback   int          `yaml:"knockback"`
}

// SquadSlot places one drone template at mission start.
type SquadSlot struct {
	Template string    `yaml:"template"`
	Pos      core.Vec2 `yaml:"pos"`
}

// Loadout names the items every drone starts with.
type Loadout struct {
	Primary     string   `yaml:"primary" json:"primary,omitempty"`
	Secondary   string   `yaml:"secondary" json:"secondary,omitempty"`
	Modules     []string `yaml:"modules" json:"modules,omitempty"`
	Consumables []string `yaml:"consumables" json:"consumables,omitempty"`
}

// RoomTemplate is a character map for one room.
type RoomTemplate struct {
	ID    string   `yaml:"id"`
	Tiles []string `yaml:"tiles"`
}

// Reserved room ids with a fixed place in the layout.
const (
	RoomStart      = "start"
	RoomPower      = "power"
	RoomLoot       = "loot"
	RoomExtraction = "extraction"
	RoomStandard   = "standard"
)

// Catalog is the validated, immutable game data.
type Catalog struct {
	items   []ItemDef
	drones  []DroneTemplate
	enemies []EnemyTemplate
	rooms   []RoomTemplate

	itemIndex  map[string]int
	droneIndex map[string]int
	enemyIndex map[string]int
	roomIndex  map[string]int

	Squad          []SquadSlot
	DefaultLoadout Loadout

	// Digest is the SHA-256 of the source files, in load order.
	Digest string
}

// Item returns an item definition by id.
func (c *Catalog) Item(id string) (ItemDef, error) {
	i, ok := c.itemIndex[id]
	if !ok {
		return ItemDef{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return c.items[i], nil
}

// Items returns all items in catalog order.
func (c *Catalog) Items() []ItemDef {
	return append([]ItemDef(nil), c.items...)
}

// LootItems returns the loot-kind items in catalog order.
func (c *Catalog) LootItems() []ItemDef {
	var out []ItemDef
	for _, it := range c.items {
		if it.Kind == KindLoot {
			out = append(out, it)
		}
	}
	return out
}

// Drone returns a drone template by id.
func (c *Catalog) Drone(id string) (DroneTemplate, error) {
	i, ok := c.droneIndex[id]
	if !ok {
		return DroneTemplate{}, fmt.Errorf("%w: drone %q", ErrUnknownUnit, id)
	}
	return c.drones[i], nil
}

// Drones returns all drone templates in catalog order.
func (c *Catalog) Drones() []DroneTemplate {
	return append([]DroneTemplate(nil), c.drones...)
}

// Enemy returns an enemy template by id.
func (c *Catalog) Enemy(id string) (EnemyTemplate, error) {
	i, ok := c.enemyIndex[id]
	if !ok {
		return EnemyTemplate{}, fmt.Errorf("%w: enemy %q", ErrUnknownUnit, id)
	}
	return c.enemies[i], nil
}

// Enemies returns all enemy templates in catalog order.
func (c *Catalog) Enemies() []EnemyTemplate {
	return append([]EnemyTemplate(nil), c.enemies...)
}

// Room returns a room template by id.
func (c *Catalog) Room(id string) (RoomTemplate, bool) {
	i, ok := c.roomIndex[id]
	if !ok {
		return RoomTemplate{}, false
	}
	return c.rooms[i], true
}

// Rooms returns all room templates in catalog order.
func (c *Catalog) Rooms() []RoomTemplate {
	return append([]RoomTemplate(nil), c.rooms...)
}

// StandardRooms returns the templates free for random placement: every room
// except the reserved ones, or all rooms when nothing else exists.
func (c *Catalog) StandardRooms() []RoomTemplate {
	var out []RoomTemplate
	for _, r := range c.rooms {
		switch r.ID {
		case RoomStart, RoomPower, RoomLoot, RoomExtraction:
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return c.Rooms()
	}
	return out
}
