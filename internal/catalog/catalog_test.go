package catalog

import (
	"errors"
	"testing"
	"testing/fstest"
)

func loadDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() failed: %v", err)
	}
	return c
}

func TestDefaultCatalog(t *testing.T) {
	c := loadDefault(t)

	rifle, err := c.Item("arc-rifle")
	if err != nil {
		t.Fatalf("Item(arc-rifle) failed: %v", err)
	}
	if rifle.Kind != KindWeapon || rifle.Slot != "primary" || rifle.Damage != 4 {
		t.Errorf("arc-rifle = %+v, expected primary weapon with damage 4", rifle)
	}

	cannon, err := c.Item("coil-cannon")
	if err != nil {
		t.Fatalf("Item(coil-cannon) failed: %v", err)
	}
	if cannon.StatusOnHit == nil || cannon.StatusOnHit.Status != StatusShred {
		t.Errorf("coil-cannon should apply SHRED, got %+v", cannon.StatusOnHit)
	}

	if len(c.Squad) != 4 {
		t.Errorf("Squad has %d slots, expected 4", len(c.Squad))
	}
	if len(c.Digest) != 64 {
		t.Errorf("Digest = %q, expected 64 hex chars", c.Digest)
	}
}

func TestLookupErrors(t *testing.T) {
	c := loadDefault(t)

	if _, err := c.Item("plasma-sword"); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("Item(unknown) error = %v, expected ErrUnknownItem", err)
	}
	if _, err := c.Drone("nope"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("Drone(unknown) error = %v, expected ErrUnknownUnit", err)
	}
	if _, err := c.Enemy("nope"); !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("Enemy(unknown) error = %v, expected ErrUnknownUnit", err)
	}
	if _, ok := c.Room("nope"); ok {
		t.Error("Room(unknown) should report false")
	}
}

func TestLootItemsOrder(t *testing.T) {
	c := loadDefault(t)
	loot := c.LootItems()
	if len(loot) == 0 {
		t.Fatal("LootItems() is empty")
	}
	if loot[0].ID != "relic-case" {
		t.Errorf("first loot item = %q, expected relic-case", loot[0].ID)
	}
	for _, it := range loot {
		if it.Kind != KindLoot {
			t.Errorf("LootItems() returned %q of kind %q", it.ID, it.Kind)
		}
	}
}

func TestStandardRoomsExcludeReserved(t *testing.T) {
	c := loadDefault(t)
	for _, r := range c.StandardRooms() {
		switch r.ID {
		case RoomStart, RoomPower, RoomLoot, RoomExtraction:
			t.Errorf("StandardRooms() contains reserved room %q", r.ID)
		}
	}
}

func TestRoomsAreEightByEight(t *testing.T) {
	c := loadDefault(t)
	for _, r := range c.Rooms() {
		if len(r.Tiles) != 8 {
			t.Errorf("room %q has %d rows, expected 8", r.ID, len(r.Tiles))
		}
		for y, row := range r.Tiles {
			if len(row) != 8 {
				t.Errorf("room %q row %d has width %d, expected 8", r.ID, y, len(row))
			}
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c := loadDefault(t)
	items := c.Items()
	items[0].Damage = 999
	again, _ := c.Item(items[0].ID)
	if again.Damage == 999 {
		t.Error("Items() leaked the internal slice")
	}
}

const validUnits = `
squad:
  - {template: d1, pos: {x: 1, y: 1}}
default_loadout:
  primary: gun
  secondary: pistol
drones:
  - {id: d1, name: D, hp: 5, armor: 0}
enemies:
  - {id: e1, name: E, hp: 5, armor: 0, role: turret, weapon: {damage: 1, range: 3}}
`

const validItems = `
- {id: gun, name: Gun, kind: weapon, slot: primary, size: 1, damage: 2, range: 3, max_ammo: 2}
- {id: pistol, name: Pistol, kind: weapon, slot: secondary, size: 1, damage: 1, range: 2, max_ammo: 2}
`

const validRooms = `
- id: start
  tiles: ["###", "#.#", "###"]
`

func TestLoadFSValidation(t *testing.T) {
	tests := []struct {
		name  string
		items string
		units string
		rooms string
	}{
		{
			name:  "unknown field",
			items: validItems + "- {id: x, name: X, kind: loot, size: 1, weight: 3}\n",
			units: validUnits,
			rooms: validRooms,
		},
		{
			name:  "duplicate item id",
			items: validItems + "- {id: gun, name: Gun, kind: loot, size: 1}\n",
			units: validUnits,
			rooms: validRooms,
		},
		{
			name:  "unknown kind",
			items: validItems + "- {id: hat, name: Hat, kind: cosmetic, size: 1}\n",
			units: validUnits,
			rooms: validRooms,
		},
		{
			name:  "loadout references missing item",
			items: "- {id: gun, name: Gun, kind: weapon, slot: primary, size: 1, damage: 2, range: 3, max_ammo: 2}\n",
			units: validUnits,
			rooms: validRooms,
		},
		{
			name:  "ragged room",
			items: validItems,
			units: validUnits,
			rooms: "- id: start\n  tiles: [\"###\", \"#.\", \"###\"]\n",
		},
		{
			name:  "bad room glyph",
			items: validItems,
			units: validUnits,
			rooms: "- id: start\n  tiles: [\"###\", \"#?#\", \"###\"]\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				itemsFile: {Data: []byte(tc.items)},
				unitsFile: {Data: []byte(tc.units)},
				roomsFile: {Data: []byte(tc.rooms)},
			}
			if _, err := LoadFS(fsys); err == nil {
				t.Error("LoadFS() should have failed")
			}
		})
	}
}

func TestLoadFSMinimal(t *testing.T) {
	fsys := fstest.MapFS{
		itemsFile: {Data: []byte(validItems)},
		unitsFile: {Data: []byte(validUnits)},
		roomsFile: {Data: []byte(validRooms)},
	}
	c, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS() failed: %v", err)
	}
	if got := len(c.StandardRooms()); got != 1 {
		t.Errorf("StandardRooms() should fall back to all rooms, got %d", got)
	}
}
