package sim

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/core"
	"github.com/vovakirdan/raid-kernel/internal/rng"
)

// InBounds reports whether pos lies on the grid.
func (g *Grid) InBounds(pos core.Vec2) bool {
	return pos.X >= 0 && pos.Y >= 0 && pos.X < g.Width && pos.Y < g.Height
}

// Tile returns the tile at pos, or nil when out of bounds.
func (g *Grid) Tile(pos core.Vec2) *Tile {
	if !g.InBounds(pos) {
		return nil
	}
	return &g.Tiles[pos.Y*g.Width+pos.X]
}

// IsPassable reports whether a unit may stand on pos.
// Walls and closed doors block; a door tile without a registered door blocks too.
func IsPassable(g *Grid, pos core.Vec2, doors map[string]*Door) bool {
	t := g.Tile(pos)
	if t == nil || t.Terrain == TerrainWall {
		return false
	}
	if t.DoorID != "" {
		d := doors[t.DoorID]
		return d != nil && d.Open
	}
	return true
}

// IsTransparent reports whether sight passes through pos.
// Active smoke blocks sight but not movement.
func IsTransparent(g *Grid, pos core.Vec2, doors map[string]*Door) bool {
	t := g.Tile(pos)
	if t == nil || t.Terrain == TerrainWall {
		return false
	}
	if t.DoorID != "" {
		if d := doors[t.DoorID]; d != nil && !d.Open {
			return false
		}
	}
	return t.Smoke <= 0
}

// CoverReduction returns the damage reduction granted by the tile at pos.
func CoverReduction(g *Grid, pos core.Vec2, rules config.CombatRules) int {
	t := g.Tile(pos)
	if t == nil {
		return 0
	}
	switch t.Cover {
	case CoverFull:
		return rules.CoverFull
	case CoverHalf:
		return rules.CoverHalf
	}
	return 0
}

// LineOfSight walks an integer line from from to to. Every tile on the way,
// the target included and the origin excluded, must be transparent.
func LineOfSight(g *Grid, doors map[string]*Door, from, to core.Vec2) bool {
	dx := core.Abs(to.X - from.X)
	dy := core.Abs(to.Y - from.Y)
	x, y := from.X, from.Y
	xInc, yInc := -1, -1
	if to.X > from.X {
		xInc = 1
	}
	if to.Y > from.Y {
		yInc = 1
	}
	errTerm := dx - dy

	for n := 1 + dx + dy; n > 0; n-- {
		if x != from.X || y != from.Y {
			if !IsTransparent(g, core.V(x, y), doors) {
				return false
			}
		}
		if x == to.X && y == to.Y {
			break
		}
		if errTerm > 0 {
			x += xInc
			errTerm -= 2 * dy
		} else {
			y += yInc
			errTerm += 2 * dx
		}
	}
	return true
}

// FindPath returns the shortest 4-directional path from from to to, both
// ends included. Expansion order is east, west, south, north. When to is
// unreachable the result is just [from].
func FindPath(g *Grid, doors map[string]*Door, from, to core.Vec2) []core.Vec2 {
	return findPath(g, from, to, func(p core.Vec2) bool { return IsPassable(g, p, doors) })
}

func findPath(g *Grid, from, to core.Vec2, passable func(core.Vec2) bool) []core.Vec2 {
	cameFrom := map[core.Vec2]core.Vec2{}
	visited := mapset.New[core.Vec2]()
	visited.Put(from)
	queue := []core.Vec2{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			break
		}
		for _, next := range current.Neighbors4() {
			if visited.Has(next) || !passable(next) {
				continue
			}
			visited.Put(next)
			cameFrom[next] = current
			queue = append(queue, next)
		}
	}

	if !visited.Has(to) {
		return []core.Vec2{from}
	}

	var path []core.Vec2
	for p := to; ; p = cameFrom[p] {
		path = append(path, p)
		if p == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindOpenTile draws random interior tiles until one is passable and not in
// occupied. After 1000 misses it takes the first free interior tile in row
// order, and reports false when there is none.
func FindOpenTile(g *Grid, doors map[string]*Door, occupied mapset.Set[core.Vec2], stream rng.Stream) (core.Vec2, rng.Stream, bool) {
	free := func(pos core.Vec2) bool {
		return IsPassable(g, pos, doors) && !occupied.Has(pos)
	}
	for attempt := 0; attempt < 1000; attempt++ {
		var x, y int
		x, stream = stream.Int(1, g.Width-2)
		y, stream = stream.Int(1, g.Height-2)
		if pos := core.V(x, y); free(pos) {
			return pos, stream, true
		}
	}
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			if pos := core.V(x, y); free(pos) {
				return pos, stream, true
			}
		}
	}
	return core.V(1, 1), stream, false
}

// adjacent reports orthogonal adjacency or the same tile.
func adjacent(a, b core.Vec2) bool {
	return a.Manhattan(b) <= 1
}
