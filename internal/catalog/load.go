package catalog

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	itemsFile = "items.yaml"
	unitsFile = "units.yaml"
	roomsFile = "rooms.yaml"
)

type unitsDoc struct {
	Squad          []SquadSlot     `yaml:"squad"`
	DefaultLoadout Loadout         `yaml:"default_loadout"`
	Drones         []DroneTemplate `yaml:"drones"`
	Enemies        []EnemyTemplate `yaml:"enemies"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the built-in catalog. It is loaded once and shared.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultCat, defaultErr = LoadFS(sub)
	})
	return defaultCat, defaultErr
}

// Load reads items.yaml, units.yaml and rooms.yaml from dir.
func Load(dir string) (*Catalog, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads and validates a catalog from fsys.
// Unknown YAML keys, dangling references and malformed rooms are rejected.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	h := sha256.New()

	var items []ItemDef
	if err := decodeFile(fsys, itemsFile, &items, h.Write); err != nil {
		return nil, err
	}
	var units unitsDoc
	if err := decodeFile(fsys, unitsFile, &units, h.Write); err != nil {
		return nil, err
	}
	var rooms []RoomTemplate
	if err := decodeFile(fsys, roomsFile, &rooms, h.Write); err != nil {
		return nil, err
	}

	c := &Catalog{
		items:          items,
		drones:         units.Drones,
		enemies:        units.Enemies,
		rooms:          rooms,
		Squad:          units.Squad,
		DefaultLoadout: units.DefaultLoadout,
		Digest:         hex.EncodeToString(h.Sum(nil)),
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, dst any, digest func([]byte) (int, error)) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: cannot read %s: %w", name, err)
	}
	_, _ = digest(data)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("catalog: cannot parse %s: %w", name, err)
	}
	return nil
}

func (c *Catalog) index() error {
	var err error
	if c.itemIndex, err = buildIndex("item", c.items, func(it ItemDef) string { return it.ID }); err != nil {
		return err
	}
	if c.droneIndex, err = buildIndex("drone", c.drones, func(d DroneTemplate) string { return d.ID }); err != nil {
		return err
	}
	if c.enemyIndex, err = buildIndex("enemy", c.enemies, func(e EnemyTemplate) string { return e.ID }); err != nil {
		return err
	}
	if c.roomIndex, err = buildIndex("room", c.rooms, func(r RoomTemplate) string { return r.ID }); err != nil {
		return err
	}
	return nil
}

func buildIndex[T any](what string, list []T, id func(T) string) (map[string]int, error) {
	idx := make(map[string]int, len(list))
	for i, v := range list {
		key := id(v)
		if key == "" {
			return nil, fmt.Errorf("%w: %s #%d has no id", ErrInvalid, what, i)
		}
		if _, dup := idx[key]; dup {
			return nil, fmt.Errorf("%w: duplicate %s id %q", ErrInvalid, what, key)
		}
		idx[key] = i
	}
	return idx, nil
}

func (c *Catalog) validate() error {
	for _, it := range c.items {
		if err := validateItem(it); err != nil {
			return err
		}
	}
	for _, d := range c.drones {
		if d.HP < 1 || d.Armor < 0 {
			return fmt.Errorf("%w: drone %q needs hp >= 1 and armor >= 0", ErrInvalid, d.ID)
		}
	}
	if len(c.enemies) == 0 {
		return fmt.Errorf("%w: no enemy templates", ErrInvalid)
	}
	for _, e := range c.enemies {
		if e.HP < 1 || e.Armor < 0 || e.Role == "" {
			return fmt.Errorf("%w: enemy %q needs hp >= 1, armor >= 0 and a role", ErrInvalid, e.ID)
		}
		if e.Weapon.Range < 1 || e.Weapon.Damage < 0 || e.Knockback < 0 {
			return fmt.Errorf("%w: enemy %q has a bad weapon", ErrInvalid, e.ID)
		}
		if err := validateGrant(e.ID, e.StatusOnHit); err != nil {
			return err
		}
	}
	if len(c.Squad) == 0 {
		return fmt.Errorf("%w: empty squad", ErrInvalid)
	}
	for _, s := range c.Squad {
		if _, err := c.Drone(s.Template); err != nil {
			return fmt.Errorf("%w: squad references %v", ErrInvalid, err)
		}
	}
	if err := c.validateLoadout(c.DefaultLoadout); err != nil {
		return err
	}
	if len(c.rooms) == 0 {
		return fmt.Errorf("%w: no room templates", ErrInvalid)
	}
	for _, r := range c.rooms {
		if err := validateRoom(r); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(it ItemDef) error {
	if it.Size < 0 {
		return fmt.Errorf("%w: item %q has negative size", ErrInvalid, it.ID)
	}
	switch it.Kind {
	case KindWeapon:
		if it.Slot != "primary" && it.Slot != "secondary" {
			return fmt.Errorf("%w: weapon %q needs slot primary or secondary", ErrInvalid, it.ID)
		}
		if it.Range < 1 || it.MaxAmmo < 1 || it.Damage < 0 {
			return fmt.Errorf("%w: weapon %q needs range >= 1, max_ammo >= 1 and damage >= 0", ErrInvalid, it.ID)
		}
	case KindConsumable:
		if it.Charges < 1 || it.Effect == nil {
			return fmt.Errorf("%w: consumable %q needs charges and an effect", ErrInvalid, it.ID)
		}
		switch it.Effect.Type {
		case EffectHeal, EffectSmoke:
		case EffectStatus:
			if it.Effect.Status != "" && !it.Effect.Status.Valid() {
				return fmt.Errorf("%w: consumable %q grants unknown status %q", ErrInvalid, it.ID, it.Effect.Status)
			}
		default:
			return fmt.Errorf("%w: consumable %q has unknown effect %q", ErrInvalid, it.ID, it.Effect.Type)
		}
	case KindModule:
	case KindLoot:
		if it.Size < 1 {
			return fmt.Errorf("%w: loot %q needs size >= 1", ErrInvalid, it.ID)
		}
	default:
		return fmt.Errorf("%w: item %q has unknown kind %q", ErrInvalid, it.ID, it.Kind)
	}
	return validateGrant(it.ID, it.StatusOnHit)
}

func validateGrant(owner string, g *StatusGrant) error {
	if g == nil {
		return nil
	}
	if !g.Status.Valid() || g.Turns < 1 {
		return fmt.Errorf("%w: %q has a bad status_on_hit", ErrInvalid, owner)
	}
	return nil
}

// ValidateLoadout checks that every slot names an item of the right kind.
func (c *Catalog) ValidateLoadout(l Loadout) error {
	return c.validateLoadout(l)
}

func (c *Catalog) validateLoadout(l Loadout) error {
	check := func(id string, kind ItemKind, slot string) error {
		it, err := c.Item(id)
		if err != nil {
			return fmt.Errorf("%w: loadout references %v", ErrInvalid, err)
		}
		if it.Kind != kind || (slot != "" && it.Slot != slot) {
			return fmt.Errorf("%w: loadout item %q is not a %s %s", ErrInvalid, id, slot, kind)
		}
		return nil
	}
	if err := check(l.Primary, KindWeapon, "primary"); err != nil {
		return err
	}
	if err := check(l.Secondary, KindWeapon, "secondary"); err != nil {
		return err
	}
	for _, m := range l.Modules {
		if err := check(m, KindModule, ""); err != nil {
			return err
		}
	}
	for _, cons := range l.Consumables {
		if err := check(cons, KindConsumable, ""); err != nil {
			return err
		}
	}
	return nil
}

func validateRoom(r RoomTemplate) error {
	if len(r.Tiles) == 0 {
		return fmt.Errorf("%w: room %q has no rows", ErrInvalid, r.ID)
	}
	width := len(r.Tiles[0])
	for y, row := range r.Tiles {
		if len(row) != width {
			return fmt.Errorf("%w: room %q row %d has width %d, expected %d", ErrInvalid, r.ID, y, len(row), width)
		}
		if i := strings.IndexFunc(row, func(ch rune) bool { return !strings.ContainsRune("#.HFCLE", ch) }); i >= 0 {
			return fmt.Errorf("%w: room %q has unknown tile %q at (%d,%d)", ErrInvalid, r.ID, row[i], i, y)
		}
	}
	return nil
}
