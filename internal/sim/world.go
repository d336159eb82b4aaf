package sim

import (
	"fmt"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
	"github.com/vovakirdan/raid-kernel/internal/rng"
)

// StartOptions adjusts a mission at creation. Zero values keep the rules
// and catalog defaults.
type StartOptions struct {
	// PowerBudget replaces the starting power reserve.
	PowerBudget int `json:"powerBudget,omitempty"`
	// BackpackCapacity replaces the per-drone backpack size.
	BackpackCapacity int `json:"backpackCapacity,omitempty"`
	// Loadout replaces the default loadout for every drone. Empty slots keep
	// the catalog default.
	Loadout catalog.Loadout `json:"loadout"`
}

// NewState creates the initial state of a mission: the procedural grid,
// the squad in the start room and one enemy in every other room.
func (e *Engine) NewState(seed int64, opts StartOptions) (*GameState, error) {
	stream := rng.New(seed)
	layout, stream, err := BuildRaidGrid(stream, e.cat, e.rules.Grid)
	if err != nil {
		return nil, err
	}

	loadout := e.mergeLoadout(opts.Loadout)
	if err := e.cat.ValidateLoadout(loadout); err != nil {
		return nil, err
	}
	capacity := e.rules.Limits.BackpackSlots
	if opts.BackpackCapacity > 0 {
		capacity = opts.BackpackCapacity
	}

	s := &GameState{
		Seed:          seed,
		Turn:          1,
		Power:         e.rules.Power.Start,
		Grid:          layout.Grid,
		Doors:         layout.Doors,
		Consoles:      layout.Consoles,
		Crates:        layout.Crates,
		Units:         map[string]*Unit{},
		ExtractionPos: layout.ExtractionPos,
		Mission:       Mission{Status: MissionInProgress},
	}
	if opts.PowerBudget > 0 {
		s.Power = opts.PowerBudget
	}

	for i, slot := range e.cat.Squad {
		tmpl, err := e.cat.Drone(slot.Template)
		if err != nil {
			return nil, err
		}
		l, err := e.buildLoadout(loadout)
		if err != nil {
			return nil, err
		}
		id := fmt.Sprintf("drone-%d", i+1)
		s.Units[id] = &Unit{
			ID:       id,
			TypeID:   tmpl.ID,
			Faction:  FactionDrone,
			Pos:      slot.Pos,
			HP:       tmpl.HP,
			MaxHP:    tmpl.HP,
			Armor:    tmpl.Armor,
			Statuses: []Status{},
			Loadout:  l,
			Inventory: &Inventory{
				Backpack: []ItemStack{},
				Capacity: capacity,
			},
		}
	}

	occupied := livingOccupancy(s)
	enemies := e.cat.Enemies()
	g := e.rules.Grid
	for roomIndex := 1; roomIndex < g.RoomCount; roomIndex++ {
		var tmpl catalog.EnemyTemplate
		tmpl, stream, err = rng.PickOne(stream, enemies)
		if err != nil {
			return nil, fmt.Errorf("sim: enemy roster: %w", err)
		}
		id := fmt.Sprintf("enemy-%d", roomIndex)
		pos := core.V(roomOffset(g, roomIndex)+g.RoomWidth/2, g.RoomHeight/2)
		if !IsPassable(&s.Grid, pos, s.Doors) || occupied.Has(pos) {
			var ok bool
			pos, stream, ok = FindOpenTile(&s.Grid, s.Doors, occupied, stream)
			if !ok {
				return nil, fmt.Errorf("sim: no free tile for %s", id)
			}
		}
		occupied.Put(pos)
		s.Units[id] = &Unit{
			ID:       id,
			TypeID:   tmpl.ID,
			Faction:  FactionEnemy,
			Pos:      pos,
			HP:       tmpl.HP,
			MaxHP:    tmpl.HP,
			Armor:    tmpl.Armor,
			Statuses: []Status{},
			AIRole:   tmpl.Role,
		}
	}

	scout, err := e.squadHasScout(s)
	if err != nil {
		return nil, err
	}
	if scout {
		if enemies := s.UnitsOf(FactionEnemy, true); len(enemies) > 0 {
			enemies[0].Statuses = append(enemies[0].Statuses, Status{ID: catalog.StatusMarked, Turns: 1})
		}
	}

	s.RNG = stream
	e.logger.Debug("mission created", "seed", seed, "units", len(s.Units), "power", s.Power)
	return s, nil
}

func (e *Engine) squadHasScout(s *GameState) (bool, error) {
	for _, u := range s.UnitsOf(FactionDrone, false) {
		tr, err := e.traits(u)
		if err != nil {
			return false, err
		}
		if tr.StartOfFightMark {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) mergeLoadout(o catalog.Loadout) catalog.Loadout {
	l := e.cat.DefaultLoadout
	if o.Primary != "" {
		l.Primary = o.Primary
	}
	if o.Secondary != "" {
		l.Secondary = o.Secondary
	}
	if o.Modules != nil {
		l.Modules = o.Modules
	}
	if o.Consumables != nil {
		l.Consumables = o.Consumables
	}
	return l
}

func (e *Engine) buildLoadout(l catalog.Loadout) (*Loadout, error) {
	primary, err := e.weaponState(l.Primary)
	if err != nil {
		return nil, err
	}
	secondary, err := e.weaponState(l.Secondary)
	if err != nil {
		return nil, err
	}
	out := &Loadout{
		Primary:     primary,
		Secondary:   secondary,
		Modules:     append([]string{}, l.Modules...),
		Consumables: make([]ConsumableState, 0, len(l.Consumables)),
	}
	for _, id := range l.Consumables {
		it, err := e.cat.Item(id)
		if err != nil {
			return nil, err
		}
		out.Consumables = append(out.Consumables, ConsumableState{ItemID: id, Charges: max(it.Charges, 1)})
	}
	return out, nil
}

func (e *Engine) weaponState(id string) (WeaponState, error) {
	it, err := e.cat.Item(id)
	if err != nil {
		return WeaponState{}, err
	}
	if it.MaxAmmo <= 0 {
		return WeaponState{}, fmt.Errorf("%w: weapon %q has no max_ammo", catalog.ErrInvalid, id)
	}
	return WeaponState{ItemID: id, Ammo: it.MaxAmmo, MaxAmmo: it.MaxAmmo}, nil
}

// AdjustPower changes the reserve from outside the turn loop (mission
// scripting, debug tools). Unlike upkeep and action costs, the result is
// clamped at zero.
func AdjustPower(s *GameState, delta int) {
	s.Power = max(0, s.Power+delta)
}
