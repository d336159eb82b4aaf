package sim

import (
	"fmt"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/config"
	"github.com/vovakirdan/raid-kernel/internal/core"
	"github.com/vovakirdan/raid-kernel/internal/rng"
)

// Crate loot rolls draw this many items, inclusive.
const (
	crateMinItems = 2
	crateMaxItems = 3
)

// Layout is the static part of a freshly generated raid.
type Layout struct {
	Grid          Grid
	Doors         map[string]*Door
	Consoles      map[string]*Console
	Crates        map[string]*Crate
	ExtractionPos core.Vec2
}

// roomOffset is the x coordinate of the left edge of room i.
func roomOffset(g config.GridRules, i int) int {
	return i * (g.RoomWidth + g.CorridorWidth)
}

// BuildRaidGrid assembles a linear chain of rooms separated by wall
// corridors, each corridor pierced by one closed door. Room 0 is the start
// room, rooms 1 and 2 the power and loot rooms, the last room holds the
// extraction tile; the rest are drawn from the standard pool.
func BuildRaidGrid(stream rng.Stream, cat *catalog.Catalog, g config.GridRules) (Layout, rng.Stream, error) {
	width, height := g.Width(), g.Height()
	l := Layout{
		Grid:          Grid{Width: width, Height: height, Tiles: make([]Tile, 0, width*height)},
		Doors:         map[string]*Door{},
		Consoles:      map[string]*Console{},
		Crates:        map[string]*Crate{},
		ExtractionPos: core.V(width-2, height/2),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			l.Grid.Tiles = append(l.Grid.Tiles, Tile{X: x, Y: y, Terrain: TerrainWall})
		}
	}

	fallback, ok := cat.Room(catalog.RoomStandard)
	if !ok {
		fallback = cat.Rooms()[0]
	}
	reserved := func(id string) catalog.RoomTemplate {
		if r, ok := cat.Room(id); ok {
			return r
		}
		return fallback
	}
	lootPool := cat.LootItems()

	for roomIndex := 0; roomIndex < g.RoomCount; roomIndex++ {
		var tmpl catalog.RoomTemplate
		switch {
		case roomIndex == 0:
			tmpl = reserved(catalog.RoomStart)
		case roomIndex == 1:
			tmpl = reserved(catalog.RoomPower)
		case roomIndex == 2:
			tmpl = reserved(catalog.RoomLoot)
		case roomIndex == g.RoomCount-1:
			tmpl = reserved(catalog.RoomExtraction)
		default:
			var err error
			tmpl, stream, err = rng.PickOne(stream, cat.StandardRooms())
			if err != nil {
				return Layout{}, stream, fmt.Errorf("sim: room %d: %w", roomIndex, err)
			}
		}
		if len(tmpl.Tiles) < g.RoomHeight || len(tmpl.Tiles[0]) < g.RoomWidth {
			return Layout{}, stream, fmt.Errorf("sim: room template %q is smaller than %dx%d", tmpl.ID, g.RoomWidth, g.RoomHeight)
		}

		offsetX := roomOffset(g, roomIndex)
		for y := 0; y < g.RoomHeight; y++ {
			row := tmpl.Tiles[y]
			for x := 0; x < g.RoomWidth; x++ {
				ch := row[x]
				pos := core.V(offsetX+x, y)
				tile := l.Grid.Tile(pos)
				applyTemplateChar(tile, ch)

				switch ch {
				case 'C':
					id := fmt.Sprintf("console-%d-%d-%d", roomIndex, x, y)
					tile.ConsoleID = id
					l.Consoles[id] = &Console{ID: id, Pos: pos}
				case 'L':
					id := fmt.Sprintf("crate-%d-%d-%d", roomIndex, x, y)
					tile.CrateID = id
					var items []ItemStack
					var err error
					items, stream, err = rollCrateLoot(stream, lootPool)
					if err != nil {
						return Layout{}, stream, fmt.Errorf("sim: crate %s: %w", id, err)
					}
					l.Crates[id] = &Crate{ID: id, Pos: pos, Items: items}
				case 'E':
					if roomIndex == g.RoomCount-1 {
						tile.Extraction = true
						l.ExtractionPos = pos
					}
				}
			}
		}

		if roomIndex < g.RoomCount-1 {
			corridorX := offsetX + g.RoomWidth
			for y := 0; y < g.RoomHeight; y++ {
				l.Grid.Tile(core.V(corridorX, y)).Terrain = TerrainWall
			}
			doorPos := core.V(corridorX, g.RoomHeight/2)
			id := fmt.Sprintf("door-%d", roomIndex+1)
			doorTile := l.Grid.Tile(doorPos)
			doorTile.Terrain = TerrainFloor
			doorTile.DoorID = id
			l.Doors[id] = &Door{ID: id, Pos: doorPos, Locked: roomIndex%2 == 0}
		}
	}

	if t := l.Grid.Tile(l.ExtractionPos); t != nil && !t.Extraction {
		t.Extraction = true
		if t.Terrain == TerrainWall {
			t.Terrain = TerrainFloor
		}
	}
	return l, stream, nil
}

func applyTemplateChar(t *Tile, ch byte) {
	if ch == '#' {
		t.Terrain = TerrainWall
		return
	}
	t.Terrain = TerrainFloor
	t.Cover = CoverNone
	switch ch {
	case 'H':
		t.Cover = CoverHalf
	case 'F':
		t.Cover = CoverFull
	}
}

func rollCrateLoot(stream rng.Stream, pool []catalog.ItemDef) ([]ItemStack, rng.Stream, error) {
	count, stream := stream.Int(crateMinItems, crateMaxItems)
	items := make([]ItemStack, 0, count)
	for i := 0; i < count; i++ {
		var it catalog.ItemDef
		var err error
		it, stream, err = rng.PickOne(stream, pool)
		if err != nil {
			return nil, stream, err
		}
		items = append(items, ItemStack{ItemID: it.ID, Size: it.Size})
	}
	return items, stream, nil
}
