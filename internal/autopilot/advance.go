package autopilot

import (
	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
	"github.com/vovakirdan/raid-kernel/internal/registry"
	"github.com/vovakirdan/raid-kernel/internal/sim"
)

func init() {
	registry.Register("advance", func(cat *catalog.Catalog) registry.Policy { return NewAdvance(cat) })
}

// Advance pushes every drone toward the extraction tile. Each turn a drone
// extracts if it can, otherwise shoots the nearest enemy it can hit,
// otherwise opens the next door on its route or walks toward it.
//
// Observations do not expose ammunition, so Advance counts the shots it
// has ordered and reloads when the magazine should be empty.
type Advance struct {
	rangeTiles int
	magazine   int
	shots      map[string]int
}

// NewAdvance sizes the firing envelope from the catalog's default primary
// weapon. A nil catalog yields a policy that never shoots.
func NewAdvance(cat *catalog.Catalog) *Advance {
	a := &Advance{shots: map[string]int{}}
	if cat == nil {
		return a
	}
	if w, err := cat.Item(cat.DefaultLoadout.Primary); err == nil {
		a.rangeTiles = w.Range
		a.magazine = w.MaxAmmo
	}
	return a
}

func (a *Advance) ID() string    { return "advance" }
func (a *Advance) Title() string { return "Advance to Extraction" }

// Plan issues at most one command per living drone, in unit-id order.
func (a *Advance) Plan(obs sim.Observation) []sim.Command {
	exit, hasExit := extractionTile(obs.Grid)
	doors := closedDoors(obs)
	claimed := map[string]bool{}

	var enemies []sim.ObservedUnit
	for _, u := range obs.Units {
		if u.Faction == sim.FactionEnemy && u.HP > 0 {
			enemies = append(enemies, u)
		}
	}

	var cmds []sim.Command
	for _, d := range obs.Units {
		if d.Faction != sim.FactionDrone || d.HP <= 0 {
			continue
		}
		if hasExit && d.Pos == exit {
			cmds = append(cmds, sim.ExtractCommand{UnitID: d.ID})
			continue
		}
		if target, ok := a.target(&obs, d, enemies); ok {
			if a.magazine > 0 && a.shots[d.ID] >= a.magazine {
				a.shots[d.ID] = 0
				cmds = append(cmds, sim.ReloadCommand{UnitID: d.ID})
				continue
			}
			a.shots[d.ID]++
			cmds = append(cmds, sim.ShootCommand{UnitID: d.ID, TargetID: target})
			continue
		}
		if !hasExit {
			continue
		}

		path := obs.FindPath(d.Pos, exit, true)
		if len(path) < 2 {
			continue
		}
		for i := 1; i < len(path); i++ {
			doorID, closed := doors[path[i]]
			if !closed {
				continue
			}
			if i == 1 {
				if !claimed[doorID] {
					claimed[doorID] = true
					cmds = append(cmds, sim.HackCommand{
						UnitID:   d.ID,
						ObjectID: doorID,
						Force:    obs.LowPowerState.Active,
					})
				}
				path = nil
			} else {
				path = path[:i]
			}
			break
		}
		if len(path) >= 2 {
			cmds = append(cmds, sim.MoveCommand{UnitID: d.ID, Path: path})
		}
	}
	return cmds
}

// target picks the closest enemy in range and sight; ties go to the lower id.
func (a *Advance) target(obs *sim.Observation, d sim.ObservedUnit, enemies []sim.ObservedUnit) (string, bool) {
	if a.rangeTiles <= 0 {
		return "", false
	}
	best, bestDist := "", 0
	for _, e := range enemies {
		dist := d.Pos.Manhattan(e.Pos)
		if dist > a.rangeTiles || !obs.LineOfSight(d.Pos, e.Pos) {
			continue
		}
		if best == "" || dist < bestDist {
			best, bestDist = e.ID, dist
		}
	}
	return best, best != ""
}

func extractionTile(g sim.Grid) (core.Vec2, bool) {
	for _, t := range g.Tiles {
		if t.Extraction {
			return core.V(t.X, t.Y), true
		}
	}
	return core.Vec2{}, false
}

// closedDoors maps the position of every door that is not open to its id.
func closedDoors(obs sim.Observation) map[core.Vec2]string {
	out := map[core.Vec2]string{}
	for _, obj := range obs.VisibleObjects {
		if obj.Type == sim.ObjectDoor && obj.State != "open" {
			out[obj.Pos] = obj.ID
		}
	}
	return out
}
